package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type PurchaseOrderItemDTO struct {
	MaterialID string          `json:"material_id" binding:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type CreatePurchaseOrderDTO struct {
	PONumber     string                 `json:"po_number" binding:"required"`
	SupplierID   string                 `json:"supplier_id" binding:"required,uuid"`
	SiteID       string                 `json:"site_id" binding:"required"`
	ExpectedDate time.Time              `json:"expected_date"`
	Items        []PurchaseOrderItemDTO `json:"items" binding:"required,min=1,dive"`
}

type ReceiveItemDTO struct {
	MaterialID       string          `json:"material_id" binding:"required,uuid"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

type ReceivePurchaseOrderDTO struct {
	Items []ReceiveItemDTO `json:"items" binding:"required,min=1,dive"`
}

// --- Interface ---

type PurchaseOrderService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreatePurchaseOrderDTO) (*model.PurchaseOrder, error)
	Approve(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.PurchaseOrder, error)
	Cancel(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.PurchaseOrder, error)
	Receive(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ReceivePurchaseOrderDTO) (*model.PurchaseOrder, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter repository.PurchaseOrderFilter) (rpc.Page, error)
}

type purchaseOrderService struct {
	repo      repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	materials rpcclient.MaterialClient
	tx        repository.TransactionManager
	audit     AuditService
}

func NewPurchaseOrderService(
	repo repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	materials rpcclient.MaterialClient,
	tx repository.TransactionManager,
	audit AuditService,
) PurchaseOrderService {
	return &purchaseOrderService{
		repo:      repo,
		suppliers: suppliers,
		materials: materials,
		tx:        tx,
		audit:     audit,
	}
}

// --- Implementation ---

// Create validates the supplier locally and every material through the
// catalog service (fail-fast on the first miss), enforces poNumber
// uniqueness, derives item totals and the order total, and persists order
// plus items as one unit. The write is atomic for this aggregate only.
func (s *purchaseOrderService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreatePurchaseOrderDTO) (*model.PurchaseOrder, error) {
	supplierID, err := parseID(req.SupplierID, "supplier_id")
	if err != nil {
		return nil, err
	}

	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, notFoundOr(err, "supplierNotFound", "supplier %s not found", req.SupplierID)
	}

	items := make([]model.PurchaseOrderItem, 0, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, apperr.Validation(apperr.FieldError{Field: "items[" + itoa(i) + "].quantity", Reason: "must be greater than zero"})
		}
		if item.UnitPrice.IsNegative() {
			return nil, apperr.Validation(apperr.FieldError{Field: "items[" + itoa(i) + "].unit_price", Reason: "must not be negative"})
		}

		materialID, err := parseID(item.MaterialID, "items["+itoa(i)+"].material_id")
		if err != nil {
			return nil, err
		}
		if _, err := s.materials.GetByID(ctx, item.MaterialID); err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return nil, apperr.NotFound("materialNotFound", "material %s not found", item.MaterialID)
			}
			return nil, err
		}

		lineTotal := item.Quantity.Mul(item.UnitPrice)
		total = total.Add(lineTotal)
		items = append(items, model.PurchaseOrderItem{
			MaterialID: materialID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: lineTotal,
		})
	}

	_, lookupErr := s.repo.FindByNumber(ctx, req.PONumber)
	if err := checkUnique(lookupErr, "poNumberExists", "purchase order %s already exists", req.PONumber); err != nil {
		return nil, err
	}

	po := model.PurchaseOrder{
		PONumber:     req.PONumber,
		SupplierID:   supplierID,
		SiteID:       req.SiteID,
		ExpectedDate: req.ExpectedDate,
		Status:       model.POStatusPendingApproval,
		TotalAmount:  total,
		Items:        items,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, &po)
	})
	if err != nil {
		return nil, apperr.Internal("create purchase order: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPurchaseOrderCreated, po.ID.String(), po.PONumber, map[string]interface{}{
		"supplier_id":  po.SupplierID.String(),
		"total_amount": po.TotalAmount.String(),
		"items":        len(po.Items),
	})

	return &po, nil
}

// Approve moves a pending order to Approved. The status write is a
// compare-and-swap so two concurrent approvals cannot both win.
func (s *purchaseOrderService) Approve(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.PurchaseOrder, error) {
	poID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	po, err := s.repo.FindByID(ctx, poID)
	if err != nil {
		return nil, notFoundOr(err, "purchaseOrderNotFound", "purchase order %s not found", id)
	}

	switch po.Status {
	case model.POStatusApproved:
		return nil, apperr.Conflict("alreadyApproved", "purchase order %s is already approved", po.PONumber)
	case model.POStatusCancelled:
		return nil, apperr.BadRequest("cannotApproveCancelledPO", "purchase order %s is cancelled", po.PONumber)
	case model.POStatusRejected, model.POStatusFullyReceived, model.POStatusPartiallyReceived:
		return nil, apperr.BadRequest("invalidTransition", "purchase order %s cannot be approved from %s", po.PONumber, po.Status)
	}

	updated, err := s.repo.UpdateStatus(ctx, poID, []string{model.POStatusDraft, model.POStatusPendingApproval}, model.POStatusApproved)
	if err != nil {
		return nil, apperr.Internal("approve purchase order: %s", err.Error())
	}
	if !updated {
		// Lost the race against a concurrent transition.
		return nil, apperr.Conflict("alreadyApproved", "purchase order %s was approved concurrently", po.PONumber)
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPurchaseOrderApproved, po.ID.String(), po.PONumber, nil)

	return s.repo.FindByID(ctx, poID)
}

// Cancel is terminal from any non-terminal state.
func (s *purchaseOrderService) Cancel(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.PurchaseOrder, error) {
	poID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	po, err := s.repo.FindByID(ctx, poID)
	if err != nil {
		return nil, notFoundOr(err, "purchaseOrderNotFound", "purchase order %s not found", id)
	}

	switch po.Status {
	case model.POStatusCancelled, model.POStatusFullyReceived, model.POStatusRejected:
		return nil, apperr.BadRequest("invalidTransition", "purchase order %s cannot be cancelled from %s", po.PONumber, po.Status)
	}

	nonTerminal := []string{model.POStatusDraft, model.POStatusPendingApproval, model.POStatusApproved, model.POStatusPartiallyReceived}
	updated, err := s.repo.UpdateStatus(ctx, poID, nonTerminal, model.POStatusCancelled)
	if err != nil {
		return nil, apperr.Internal("cancel purchase order: %s", err.Error())
	}
	if !updated {
		return nil, apperr.Conflict("concurrentTransition", "purchase order %s changed state concurrently", po.PONumber)
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPurchaseOrderCancelled, po.ID.String(), po.PONumber, nil)

	return s.repo.FindByID(ctx, poID)
}

// Receive records received quantities against an approved order and moves it
// to PartiallyReceived or FullyReceived.
func (s *purchaseOrderService) Receive(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ReceivePurchaseOrderDTO) (*model.PurchaseOrder, error) {
	poID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	po, err := s.repo.FindByID(ctx, poID)
	if err != nil {
		return nil, notFoundOr(err, "purchaseOrderNotFound", "purchase order %s not found", id)
	}

	if po.Status != model.POStatusApproved && po.Status != model.POStatusPartiallyReceived {
		return nil, apperr.BadRequest("invalidTransition", "purchase order %s cannot receive goods from %s", po.PONumber, po.Status)
	}

	received := make(map[string]decimal.Decimal, len(req.Items))
	for i, item := range req.Items {
		if item.ReceivedQuantity.LessThanOrEqual(decimal.Zero) {
			return nil, apperr.Validation(apperr.FieldError{Field: "items[" + itoa(i) + "].received_quantity", Reason: "must be greater than zero"})
		}
		received[item.MaterialID] = item.ReceivedQuantity
	}

	fullyReceived := true
	for i := range po.Items {
		item := &po.Items[i]
		if qty, ok := received[item.MaterialID.String()]; ok {
			item.ReceivedQuantity = item.ReceivedQuantity.Add(qty)
		}
		if item.ReceivedQuantity.LessThan(item.Quantity) {
			fullyReceived = false
		}
	}

	if fullyReceived {
		po.Status = model.POStatusFullyReceived
	} else {
		po.Status = model.POStatusPartiallyReceived
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, po)
	})
	if err != nil {
		return nil, apperr.Internal("receive purchase order: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPurchaseOrderReceived, po.ID.String(), po.PONumber, map[string]interface{}{
		"status": po.Status,
	})

	return po, nil
}

func (s *purchaseOrderService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	poID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	po, err := s.repo.FindByID(ctx, poID)
	if err != nil {
		return notFoundOr(err, "purchaseOrderNotFound", "purchase order %s not found", id)
	}

	if _, err := s.repo.SoftDelete(ctx, poID); err != nil {
		return apperr.Internal("delete purchase order: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPurchaseOrderDeleted, po.ID.String(), po.PONumber, nil)
	return nil
}

func (s *purchaseOrderService) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	poID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	po, err := s.repo.FindByID(ctx, poID)
	if err != nil {
		return nil, notFoundOr(err, "purchaseOrderNotFound", "purchase order %s not found", id)
	}
	return po, nil
}

func (s *purchaseOrderService) List(ctx context.Context, filter repository.PurchaseOrderFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	orders, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list purchase orders: %s", err.Error())
	}
	return rpc.Page{Docs: orders, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
