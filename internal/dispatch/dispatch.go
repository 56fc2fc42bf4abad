// Package dispatch binds message patterns to use-cases. One controller per
// service, each returning a ready dispatcher for the bus.
package dispatch

import (
	"encoding/json"

	"backend/internal/rpc"
	"backend/pkg/apperr"
)

// bindFilter decodes a list command's filter. Unlike write commands, an
// absent body is fine: it means default paging, no filters.
func bindFilter(env rpc.Envelope, dst interface{}) error {
	if len(env.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Body, dst); err != nil {
		return apperr.Validation(apperr.FieldError{Field: "body", Reason: "malformed JSON: " + err.Error()})
	}
	return nil
}

// requireID guards the by-id commands: the envelope must carry a target.
func requireID(env rpc.Envelope) (string, error) {
	if env.ID == "" {
		return "", apperr.Validation(apperr.FieldError{Field: "id", Reason: "required"})
	}
	return env.ID, nil
}
