package dispatch

import (
	"context"

	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/service"
	"backend/pkg/apperr"
)

// NewCatalogDispatcher wires the drug and material use-cases. Drug lifecycle
// transitions multiplex over DRUGS_UPDATE via the envelope action.
func NewCatalogDispatcher(drugs service.DrugService, materials service.MaterialService) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceCatalog)

	d.Handle(rpc.DrugsCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateDrugDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return drugs.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.DrugsUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "submit":
			return drugs.SubmitForApproval(ctx, env.User, env.Tracing, id)
		case "approve":
			return drugs.Approve(ctx, env.User, env.Tracing, id)
		case "reject":
			return drugs.Reject(ctx, env.User, env.Tracing, id)
		case "discontinue":
			return drugs.Discontinue(ctx, env.User, env.Tracing, id)
		case "":
			var req service.UpdateDrugDTO
			if err := env.Bind(&req); err != nil {
				return nil, err
			}
			return drugs.Update(ctx, env.User, env.Tracing, id, req)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown drug action %s", env.Action)
		}
	})

	d.Handle(rpc.DrugsDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, drugs.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.DrugsGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return drugs.GetByID(ctx, id)
	})

	d.Handle(rpc.DrugsList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.DrugFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return drugs.List(ctx, filter)
	})

	d.Handle(rpc.MaterialsCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateMaterialDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return materials.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.MaterialsUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.UpdateMaterialDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return materials.Update(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.MaterialsDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, materials.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.MaterialsGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return materials.GetByID(ctx, id)
	})

	d.Handle(rpc.MaterialsList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var q rpc.ListQuery
		if err := bindFilter(env, &q); err != nil {
			return nil, err
		}
		return materials.List(ctx, q)
	})

	return d
}
