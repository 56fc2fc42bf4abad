package dispatch

import (
	"context"

	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/service"
	"backend/pkg/apperr"
)

// NewQualityDispatcher wires the QC sample and deviation use-cases. Sample
// state changes multiplex over QC_SAMPLES_UPDATE via the envelope action.
func NewQualityDispatcher(samples service.QCSampleService, deviations service.DeviationService) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceQuality)

	d.Handle(rpc.QCSamplesCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateQCSampleDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return samples.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.QCSamplesUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "assign":
			var req service.AssignQCSampleDTO
			if err := env.Bind(&req); err != nil {
				return nil, err
			}
			return samples.Assign(ctx, env.User, env.Tracing, id, req)
		case "complete":
			var req service.CloseQCSampleDTO
			if err := bindFilter(env, &req); err != nil {
				return nil, err
			}
			return samples.Complete(ctx, env.User, env.Tracing, id, req)
		case "fail":
			var req service.CloseQCSampleDTO
			if err := bindFilter(env, &req); err != nil {
				return nil, err
			}
			return samples.Fail(ctx, env.User, env.Tracing, id, req)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown qc sample action %s", env.Action)
		}
	})

	d.Handle(rpc.QCSamplesDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, samples.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.QCSamplesGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return samples.GetByID(ctx, id)
	})

	d.Handle(rpc.QCSamplesList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.QCSampleFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return samples.List(ctx, filter)
	})

	d.Handle(rpc.DeviationsCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateDeviationDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return deviations.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.DeviationsUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "close":
			var req service.CloseDeviationDTO
			if err := bindFilter(env, &req); err != nil {
				return nil, err
			}
			return deviations.Close(ctx, env.User, env.Tracing, id, req)
		case "":
			var req service.UpdateDeviationDTO
			if err := env.Bind(&req); err != nil {
				return nil, err
			}
			return deviations.Update(ctx, env.User, env.Tracing, id, req)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown deviation action %s", env.Action)
		}
	})

	d.Handle(rpc.DeviationsDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, deviations.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.DeviationsGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return deviations.GetByID(ctx, id)
	})

	d.Handle(rpc.DeviationsList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.DeviationFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return deviations.List(ctx, filter)
	})

	return d
}
