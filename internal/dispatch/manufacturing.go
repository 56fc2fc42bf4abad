package dispatch

import (
	"context"

	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/service"
	"backend/pkg/apperr"
)

// NewManufacturingDispatcher wires the work order, BOM and batch use-cases.
func NewManufacturingDispatcher(
	workOrders service.WorkOrderService,
	boms service.BOMService,
	batches service.BatchService,
) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceManufacturing)

	d.Handle(rpc.WorkOrdersCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateWorkOrderDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return workOrders.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.WorkOrdersUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "release":
			return workOrders.Release(ctx, env.User, env.Tracing, id)
		case "hold":
			return workOrders.Hold(ctx, env.User, env.Tracing, id)
		case "resume":
			return workOrders.Resume(ctx, env.User, env.Tracing, id)
		case "complete":
			return workOrders.Complete(ctx, env.User, env.Tracing, id)
		case "cancel":
			return workOrders.Cancel(ctx, env.User, env.Tracing, id)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown work order action %s", env.Action)
		}
	})

	d.Handle(rpc.WorkOrdersDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, workOrders.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.WorkOrdersGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return workOrders.GetByID(ctx, id)
	})

	d.Handle(rpc.WorkOrdersList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.WorkOrderFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return workOrders.List(ctx, filter)
	})

	d.Handle(rpc.BOMsCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateBOMDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return boms.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.BOMsActivate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return boms.Activate(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.BOMsGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return boms.GetByID(ctx, id)
	})

	d.Handle(rpc.BOMsList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.BOMFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return boms.List(ctx, filter)
	})

	d.Handle(rpc.BatchesCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateBatchDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.BatchesExecuteStep, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.ExecuteStepDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.ExecuteStep(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.BatchesRecordConsumption, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.RecordConsumptionDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.RecordConsumption(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.BatchesSubmitToQC, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.SubmitBatchToQCDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.SubmitToQC(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.BatchesComplete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.CompleteBatchDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.Complete(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.BatchesReportFault, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.ReportFaultDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.ReportFault(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.BatchesReceiveFG, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.ReceiveFinishedGoodsDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return batches.ReceiveFinishedGoods(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.BatchesDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, batches.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.BatchesGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return batches.GetByID(ctx, id)
	})

	d.Handle(rpc.BatchesList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.BatchFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return batches.List(ctx, filter)
	})

	return d
}
