package rpc

import (
	"context"
	"encoding/json"
	"sync"

	"backend/pkg/apperr"
)

// Bus is the request/reply channel between services. Calls are synchronous
// from the caller's point of view; the transport behind it is a wiring choice.
type Bus interface {
	Request(ctx context.Context, service, pattern string, env Envelope, out interface{}) error
}

// LocalBus routes requests to dispatchers living in the same process.
type LocalBus struct {
	mu          sync.RWMutex
	dispatchers map[string]*Dispatcher
}

func NewLocalBus() *LocalBus {
	return &LocalBus{dispatchers: make(map[string]*Dispatcher)}
}

// Register attaches a service dispatcher to the bus.
func (b *LocalBus) Register(d *Dispatcher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatchers[d.Service()] = d
}

// Dispatcher returns the dispatcher registered for a service.
func (b *LocalBus) Dispatcher(service string) (*Dispatcher, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.dispatchers[service]
	return d, ok
}

func (b *LocalBus) Request(ctx context.Context, service, pattern string, env Envelope, out interface{}) error {
	d, ok := b.Dispatcher(service)
	if !ok {
		return apperr.NotFound("serviceNotFound", "no service registered as %s", service)
	}
	return decodeReply(d.Dispatch(ctx, pattern, env), out)
}

// decodeReply maps a Reply back into an error the caller can branch on, and
// unmarshals the data into out when provided.
func decodeReply(reply Reply, out interface{}) error {
	if !reply.OK {
		if reply.Error != nil {
			return reply.Error
		}
		return apperr.Internal("reply carried no error detail")
	}
	if out == nil || len(reply.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(reply.Data, out); err != nil {
		return apperr.Internal("decode reply: %s", err.Error())
	}
	return nil
}
