package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"backend/pkg/apperr"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// request is the HTTP carrier for one bus message.
type request struct {
	Pattern string   `json:"pattern"`
	Payload Envelope `json:"payload"`
}

// Mount exposes every dispatcher on the bus as POST /rpc/:service.
// The HTTP layer only carries the envelope; all semantics live in the
// dispatchers.
func Mount(router gin.IRouter, bus *LocalBus) {
	router.POST("/rpc/:service", func(c *gin.Context) {
		d, ok := bus.Dispatcher(c.Param("service"))
		if !ok {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "unknown service"))
			return
		}

		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "malformed rpc request: "+err.Error()))
			return
		}

		// Caller identity recovered by the middleware wins over whatever the
		// payload claims.
		if id, exists := c.Get("callerID"); exists {
			req.Payload.User.ID, _ = id.(string)
			if name, nameSet := c.Get("callerName"); nameSet {
				req.Payload.User.Name, _ = name.(string)
			}
		}

		c.JSON(http.StatusOK, d.Dispatch(c.Request.Context(), req.Pattern, req.Payload))
	})
}

// HTTPBus forwards requests to peer processes exposing the same /rpc mount.
// It satisfies Bus so local and remote topologies are interchangeable.
type HTTPBus struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBus(baseURL string) *HTTPBus {
	return &HTTPBus{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *HTTPBus) Request(ctx context.Context, service, pattern string, env Envelope, out interface{}) error {
	body, err := json.Marshal(request{Pattern: pattern, Payload: env})
	if err != nil {
		return apperr.Internal("marshal rpc request: %s", err.Error())
	}

	url := fmt.Sprintf("%s/rpc/%s", b.baseURL, service)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperr.Internal("build rpc request: %s", err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return apperr.Internal("rpc transport: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperr.NotFound("serviceNotFound", "no service registered as %s", service)
	}
	if resp.StatusCode != http.StatusOK {
		return apperr.Internal("rpc transport: unexpected status %d", resp.StatusCode)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return apperr.Internal("decode rpc reply: %s", err.Error())
	}
	return decodeReply(reply, out)
}
