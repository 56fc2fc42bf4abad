package dispatch

import (
	"context"

	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/service"
	"backend/pkg/apperr"
)

// NewProcurementDispatcher wires the supplier, contract and purchase order
// use-cases.
func NewProcurementDispatcher(
	suppliers service.SupplierService,
	contracts service.ContractService,
	purchaseOrders service.PurchaseOrderService,
) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceProcurement)

	d.Handle(rpc.SuppliersCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateSupplierDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return suppliers.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.SuppliersUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "blacklist":
			return suppliers.Blacklist(ctx, env.User, env.Tracing, id)
		case "reinstate":
			return suppliers.Reinstate(ctx, env.User, env.Tracing, id)
		case "":
			var req service.UpdateSupplierDTO
			if err := env.Bind(&req); err != nil {
				return nil, err
			}
			return suppliers.Update(ctx, env.User, env.Tracing, id, req)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown supplier action %s", env.Action)
		}
	})

	d.Handle(rpc.SuppliersDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, suppliers.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.SuppliersGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return suppliers.GetByID(ctx, id)
	})

	d.Handle(rpc.SuppliersList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.SupplierFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return suppliers.List(ctx, filter)
	})

	d.Handle(rpc.ContractCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateContractDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return contracts.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.ContractUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		switch env.Action {
		case "activate":
			return contracts.Activate(ctx, env.User, env.Tracing, id)
		default:
			return nil, apperr.BadRequest("unknownAction", "unknown contract action %s", env.Action)
		}
	})

	d.Handle(rpc.ContractRenew, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.RenewContractDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return contracts.Renew(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.ContractTerminate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return contracts.Terminate(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.ContractDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, contracts.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.ContractGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return contracts.GetByID(ctx, id)
	})

	d.Handle(rpc.ContractList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.ContractFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return contracts.List(ctx, filter)
	})

	d.Handle(rpc.PurchaseOrdersCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreatePurchaseOrderDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return purchaseOrders.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.PurchaseOrdersApprove, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return purchaseOrders.Approve(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.PurchaseOrdersCancel, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return purchaseOrders.Cancel(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.PurchaseOrdersReceive, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.ReceivePurchaseOrderDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return purchaseOrders.Receive(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.PurchaseOrdersDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, purchaseOrders.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.PurchaseOrdersGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return purchaseOrders.GetByID(ctx, id)
	})

	d.Handle(rpc.PurchaseOrdersList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var filter repository.PurchaseOrderFilter
		if err := bindFilter(env, &filter); err != nil {
			return nil, err
		}
		return purchaseOrders.List(ctx, filter)
	})

	return d
}
