package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCmd struct {
	Name string `json:"name" binding:"required"`
}

func TestDispatchUnknownPattern(t *testing.T) {
	d := NewDispatcher("catalog")

	reply := d.Dispatch(context.Background(), "NO_SUCH_PATTERN", Envelope{})
	assert.False(t, reply.OK)
	require.NotNil(t, reply.Error)
	assert.Equal(t, apperr.KindBadRequest, reply.Error.Kind)
	assert.Equal(t, "unknownPattern", reply.Error.Code)
}

func TestDispatchSuccess(t *testing.T) {
	d := NewDispatcher("catalog")
	d.Handle("ECHO", func(ctx context.Context, env Envelope) (interface{}, error) {
		var cmd echoCmd
		if err := env.Bind(&cmd); err != nil {
			return nil, err
		}
		return map[string]string{"name": cmd.Name}, nil
	})

	env, err := NewEnvelope(echoCmd{Name: "paracetamol"})
	require.NoError(t, err)

	reply := d.Dispatch(context.Background(), "ECHO", env)
	require.True(t, reply.OK)

	var out map[string]string
	require.NoError(t, json.Unmarshal(reply.Data, &out))
	assert.Equal(t, "paracetamol", out["name"])
}

func TestDispatchBindValidation(t *testing.T) {
	d := NewDispatcher("catalog")
	called := false
	d.Handle("ECHO", func(ctx context.Context, env Envelope) (interface{}, error) {
		var cmd echoCmd
		if err := env.Bind(&cmd); err != nil {
			return nil, err
		}
		called = true
		return cmd, nil
	})

	t.Run("missing body", func(t *testing.T) {
		reply := d.Dispatch(context.Background(), "ECHO", Envelope{})
		assert.False(t, reply.OK)
		require.NotNil(t, reply.Error)
		assert.Equal(t, apperr.KindValidation, reply.Error.Kind)
	})

	t.Run("missing required field", func(t *testing.T) {
		env, err := NewEnvelope(map[string]string{})
		require.NoError(t, err)

		reply := d.Dispatch(context.Background(), "ECHO", env)
		assert.False(t, reply.OK)
		require.NotNil(t, reply.Error)
		assert.Equal(t, apperr.KindValidation, reply.Error.Kind)
		require.NotEmpty(t, reply.Error.Fields)
		assert.Equal(t, "name", reply.Error.Fields[0].Field)
	})

	assert.False(t, called, "validation failures must short-circuit before the use-case")
}

func TestDispatchErrorMapping(t *testing.T) {
	d := NewDispatcher("catalog")
	d.Handle("FAIL_DOMAIN", func(ctx context.Context, env Envelope) (interface{}, error) {
		return nil, apperr.Conflict("drugDiscontinued", "drug is discontinued")
	})
	d.Handle("FAIL_FOREIGN", func(ctx context.Context, env Envelope) (interface{}, error) {
		return nil, assert.AnError
	})

	domain := d.Dispatch(context.Background(), "FAIL_DOMAIN", Envelope{})
	assert.False(t, domain.OK)
	require.NotNil(t, domain.Error)
	assert.Equal(t, apperr.KindConflict, domain.Error.Kind)
	assert.Equal(t, "drugDiscontinued", domain.Error.Code)

	// Foreign errors cross the boundary as internal, never raw.
	foreign := d.Dispatch(context.Background(), "FAIL_FOREIGN", Envelope{})
	assert.False(t, foreign.OK)
	require.NotNil(t, foreign.Error)
	assert.Equal(t, apperr.KindInternal, foreign.Error.Kind)
}
