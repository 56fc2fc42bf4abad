package rpc

import (
	"context"
	"net/http/httptest"
	"testing"

	"backend/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRPCServer(t *testing.T, identity gin.HandlerFunc) (*httptest.Server, *LocalBus) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := NewLocalBus()
	router := gin.New()
	if identity != nil {
		router.Use(identity)
	}
	Mount(router, bus)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, bus
}

func TestHTTPBusRequest(t *testing.T) {
	srv, bus := newRPCServer(t, nil)

	d := NewDispatcher("catalog")
	d.Handle("MATERIALS_GET_BY_ID", func(ctx context.Context, env Envelope) (interface{}, error) {
		if env.ID != "mat-1" {
			return nil, apperr.NotFound("materialNotFound", "material %s not found", env.ID)
		}
		return map[string]string{"id": "mat-1", "code": "API-001"}, nil
	})
	bus.Register(d)

	remote := NewHTTPBus(srv.URL)

	t.Run("round trip", func(t *testing.T) {
		var out map[string]string
		err := remote.Request(context.Background(), "catalog", "MATERIALS_GET_BY_ID", Envelope{ID: "mat-1"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "API-001", out["code"])
	})

	t.Run("error crosses the wire typed", func(t *testing.T) {
		err := remote.Request(context.Background(), "catalog", "MATERIALS_GET_BY_ID", Envelope{ID: "mat-2"}, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("unknown service maps to not found", func(t *testing.T) {
		err := remote.Request(context.Background(), "identity", "USERS_GET_BY_ID", Envelope{}, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestMountCallerOverride(t *testing.T) {
	srv, bus := newRPCServer(t, func(c *gin.Context) {
		c.Set("callerID", "user-from-token")
		c.Set("callerName", "Authenticated User")
		c.Next()
	})

	var seen Caller
	d := NewDispatcher("quality")
	d.Handle("DEVIATIONS_CREATE", func(ctx context.Context, env Envelope) (interface{}, error) {
		seen = env.User
		return map[string]string{"status": "OPEN"}, nil
	})
	bus.Register(d)

	remote := NewHTTPBus(srv.URL)
	env := Envelope{User: Caller{ID: "spoofed", Name: "Spoofed"}}
	require.NoError(t, remote.Request(context.Background(), "quality", "DEVIATIONS_CREATE", env, nil))

	// The identity recovered from the request wins over the payload claim.
	assert.Equal(t, "user-from-token", seen.ID)
	assert.Equal(t, "Authenticated User", seen.Name)
}
