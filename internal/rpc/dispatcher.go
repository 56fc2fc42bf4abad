package rpc

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"backend/pkg/apperr"
)

// HandlerFunc is a use-case entry point bound to a message pattern.
type HandlerFunc func(ctx context.Context, env Envelope) (interface{}, error)

// Reply is the wire-level result of dispatching one message.
type Reply struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *apperr.Error   `json:"error,omitempty"`
}

// Dispatcher is a service's entry point: a fixed table of
// message pattern -> use-case bindings.
type Dispatcher struct {
	service  string
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewDispatcher(service string) *Dispatcher {
	return &Dispatcher{
		service:  service,
		handlers: make(map[string]HandlerFunc),
	}
}

func (d *Dispatcher) Service() string {
	return d.service
}

// Handle binds a message pattern to a use-case.
func (d *Dispatcher) Handle(pattern string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[pattern] = h
}

// Patterns lists the registered message patterns.
func (d *Dispatcher) Patterns() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for p := range d.handlers {
		out = append(out, p)
	}
	return out
}

// Dispatch invokes the use-case bound to pattern and maps its outcome to a
// Reply the caller can branch on. Errors are never retried here.
func (d *Dispatcher) Dispatch(ctx context.Context, pattern string, env Envelope) Reply {
	d.mu.RLock()
	h, ok := d.handlers[pattern]
	d.mu.RUnlock()
	if !ok {
		return errorReply(apperr.BadRequest("unknownPattern", "service %s has no handler for pattern %s", d.service, pattern))
	}

	result, err := h(ctx, env)
	if err != nil {
		return errorReply(apperr.From(err))
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("rpc: %s %s: marshal reply failed: %v", d.service, pattern, err)
		return errorReply(apperr.Internal("marshal reply: %s", err.Error()))
	}
	return Reply{OK: true, Data: data}
}

func errorReply(err *apperr.Error) Reply {
	return Reply{OK: false, Error: err}
}
