package dispatch

import (
	"context"

	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/service"
	"backend/pkg/apperr"
)

// NewWarehouseDispatcher wires the putaway use-cases.
func NewWarehouseDispatcher(putaways service.PutawayService) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceWarehouse)

	d.Handle(rpc.PutawaysCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreatePutawayDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return putaways.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.PutawaysUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "store":
			var req service.StorePutawayDTO
			if err := env.Bind(&req); err != nil {
				return nil, err
			}
			return putaways.Store(ctx, env.User, env.Tracing, id, req)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown putaway action %s", env.Action)
		}
	})

	d.Handle(rpc.PutawaysGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return putaways.GetByID(ctx, id)
	})

	d.Handle(rpc.PutawaysList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.PutawayFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return putaways.List(ctx, filter)
	})

	return d
}
