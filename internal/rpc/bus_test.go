package rpc

import (
	"context"
	"errors"
	"testing"

	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBusRequest(t *testing.T) {
	bus := NewLocalBus()

	d := NewDispatcher("quality")
	d.Handle("QC_SAMPLES_GET_BY_ID", func(ctx context.Context, env Envelope) (interface{}, error) {
		if env.ID == "" {
			return nil, apperr.Validation(apperr.FieldError{Field: "id", Reason: "required"})
		}
		return map[string]string{"id": env.ID, "status": "PENDING"}, nil
	})
	bus.Register(d)

	t.Run("round trip", func(t *testing.T) {
		var out map[string]string
		err := bus.Request(context.Background(), "quality", "QC_SAMPLES_GET_BY_ID", Envelope{ID: "abc"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "abc", out["id"])
	})

	t.Run("nil out discards the reply", func(t *testing.T) {
		err := bus.Request(context.Background(), "quality", "QC_SAMPLES_GET_BY_ID", Envelope{ID: "abc"}, nil)
		require.NoError(t, err)
	})

	t.Run("handler error surfaces typed", func(t *testing.T) {
		err := bus.Request(context.Background(), "quality", "QC_SAMPLES_GET_BY_ID", Envelope{}, nil)
		require.Error(t, err)

		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
	})

	t.Run("unknown service", func(t *testing.T) {
		err := bus.Request(context.Background(), "warehouse", "PUTAWAYS_CREATE", Envelope{}, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("unknown pattern", func(t *testing.T) {
		err := bus.Request(context.Background(), "quality", "NO_SUCH_PATTERN", Envelope{}, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})
}
