package rpc

import (
	"encoding/json"

	"backend/pkg/apperr"
)

// Caller identifies who issued a command. It is forwarded to the audit sink
// and never used for business decisions.
type Caller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tracing is opaque request context forwarded to the audit sink.
type Tracing struct {
	RequestID string `json:"request_id"`
	Origin    string `json:"origin"`
}

// Envelope is the payload carried by every write command:
// {body, id?, user, tracing, action?}.
type Envelope struct {
	Body    json.RawMessage `json:"body,omitempty"`
	ID      string          `json:"id,omitempty"`
	User    Caller          `json:"user"`
	Tracing Tracing         `json:"tracing"`
	Action  string          `json:"action,omitempty"`
}

// Bind decodes the envelope body into dst and validates it against its
// binding tags. A failure short-circuits with a structured validation error
// before any domain logic runs.
func (e Envelope) Bind(dst interface{}) error {
	if len(e.Body) == 0 {
		return apperr.Validation(apperr.FieldError{Field: "body", Reason: "required"})
	}
	if err := json.Unmarshal(e.Body, dst); err != nil {
		return apperr.Validation(apperr.FieldError{Field: "body", Reason: "malformed JSON: " + err.Error()})
	}
	return ValidateCommand(dst)
}

// NewEnvelope marshals body into a command envelope. Used by client proxies.
func NewEnvelope(body interface{}) (Envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, apperr.Internal("marshal envelope body: %s", err.Error())
	}
	return Envelope{Body: raw}, nil
}

// Search is a free-text search over a caller-specified subset of text fields.
type Search struct {
	Term   string   `json:"term"`
	Fields []string `json:"fields"`
}

// Sort is a single-field sort directive.
type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"` // "asc" or "desc"
}

// ListQuery is the common part of every list command. Domain filters are
// declared on the embedding query struct.
type ListQuery struct {
	Search Search `json:"search"`
	Sort   Sort   `json:"sort"`
	Limit  int    `json:"limit"`
	Page   int    `json:"page"`
}

// Page is the standard list reply: {docs[], limit, page, total}.
type Page struct {
	Docs  interface{} `json:"docs"`
	Limit int         `json:"limit"`
	Page  int         `json:"page"`
	Total int64       `json:"total"`
}
