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

type CreateWorkOrderDTO struct {
	WONumber        string    `json:"wo_number" binding:"required"`
	DrugID          string    `json:"drug_id" binding:"required,uuid"`
	SiteID          string    `json:"site_id" binding:"required"`
	PlannedQuantity string    `json:"planned_quantity" binding:"required"`
	Unit            string    `json:"unit" binding:"required"`
	BOMVersion      int       `json:"bom_version" binding:"required,min=1"`
	Priority        string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	PlannedStart    time.Time `json:"planned_start"`
	PlannedEnd      time.Time `json:"planned_end"`
	AssignedTo      string    `json:"assigned_to" binding:"omitempty,uuid"`
}

// --- Interface ---

type WorkOrderService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateWorkOrderDTO) (*model.WorkOrder, error)
	Release(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error)
	Hold(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error)
	Resume(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error)
	Complete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error)
	Cancel(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.WorkOrder, error)
	List(ctx context.Context, filter repository.WorkOrderFilter) (rpc.Page, error)
}

type workOrderService struct {
	repo  repository.WorkOrderRepository
	boms  repository.BOMRepository
	drugs rpcclient.DrugClient
	audit AuditService
}

func NewWorkOrderService(repo repository.WorkOrderRepository, boms repository.BOMRepository, drugs rpcclient.DrugClient, audit AuditService) WorkOrderService {
	return &workOrderService{repo: repo, boms: boms, drugs: drugs, audit: audit}
}

// --- Implementation ---

func (s *workOrderService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateWorkOrderDTO) (*model.WorkOrder, error) {
	drugID, err := parseID(req.DrugID, "drug_id")
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(req.PlannedQuantity)
	if err != nil || !quantity.IsPositive() {
		return nil, apperr.Validation(apperr.FieldError{Field: "planned_quantity", Reason: "must be a positive decimal"})
	}

	// Drug lives in another service; the reference check crosses the bus.
	drug, err := s.drugs.GetByID(ctx, req.DrugID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("drugNotFound", "drug %s not found", req.DrugID)
		}
		return nil, err
	}
	if drug.Status != model.DrugStatusApproved {
		return nil, apperr.BadRequest("drugNotApproved", "drug %s is not approved for production", drug.Code)
	}

	if _, err := s.boms.FindByDrugVersion(ctx, drugID, req.BOMVersion); err != nil {
		return nil, notFoundOr(err, "bomVersionNotFound", "bom version %d for drug %s not found", req.BOMVersion, req.DrugID)
	}

	_, lookupErr := s.repo.FindByNumber(ctx, req.WONumber)
	if err := checkUnique(lookupErr, "woNumberExists", "work order %s already exists", req.WONumber); err != nil {
		return nil, err
	}

	wo := model.WorkOrder{
		WONumber:        req.WONumber,
		DrugID:          drugID,
		SiteID:          req.SiteID,
		PlannedQuantity: quantity,
		Unit:            req.Unit,
		BOMVersion:      req.BOMVersion,
		Status:          model.WOStatusDraft,
		Priority:        req.Priority,
		PlannedStart:    req.PlannedStart,
		PlannedEnd:      req.PlannedEnd,
	}
	if wo.Priority == "" {
		wo.Priority = "MEDIUM"
	}
	if req.AssignedTo != "" {
		assignee, err := parseID(req.AssignedTo, "assigned_to")
		if err != nil {
			return nil, err
		}
		wo.AssignedTo = &assignee
	}

	if err := s.repo.Create(ctx, &wo); err != nil {
		return nil, apperr.Internal("create work order: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionWorkOrderCreated, wo.ID.String(), wo.WONumber, map[string]interface{}{
		"drug_id":     wo.DrugID.String(),
		"bom_version": wo.BOMVersion,
	})

	return &wo, nil
}

func (s *workOrderService) Release(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.WOStatusDraft}, model.WOStatusPlanned, model.ActionWorkOrderReleased)
}

func (s *workOrderService) Hold(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.WOStatusPlanned, model.WOStatusInProgress}, model.WOStatusOnHold, model.ActionWorkOrderHeld)
}

func (s *workOrderService) Resume(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.WOStatusOnHold}, model.WOStatusInProgress, model.ActionWorkOrderReleased)
}

func (s *workOrderService) Complete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error) {
	wo, err := s.transition(ctx, caller, tracing, id,
		[]string{model.WOStatusInProgress}, model.WOStatusCompleted, model.ActionWorkOrderCompleted)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	wo.ActualEnd = &now
	if err := s.repo.Update(ctx, wo); err != nil {
		return nil, apperr.Internal("update work order: %s", err.Error())
	}
	return wo, nil
}

func (s *workOrderService) Cancel(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.WorkOrder, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.WOStatusDraft, model.WOStatusPlanned, model.WOStatusInProgress, model.WOStatusOnHold},
		model.WOStatusCancelled, model.ActionWorkOrderCancelled)
}

func (s *workOrderService) transition(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, from []string, to, action string) (*model.WorkOrder, error) {
	woID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	wo, err := s.repo.FindByID(ctx, woID)
	if err != nil {
		return nil, notFoundOr(err, "workOrderNotFound", "work order %s not found", id)
	}

	allowed := false
	for _, f := range from {
		if wo.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.BadRequest("invalidTransition", "work order %s cannot move from %s to %s", wo.WONumber, wo.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, woID, from, to)
	if err != nil {
		return nil, apperr.Internal("update work order status: %s", err.Error())
	}
	if !updated {
		return nil, apperr.Conflict("concurrentUpdate", "work order %s was modified concurrently", wo.WONumber)
	}

	s.audit.Record(ctx, caller, tracing, action, wo.ID.String(), wo.WONumber, map[string]interface{}{
		"from": wo.Status,
		"to":   to,
	})

	wo.Status = to
	return wo, nil
}

func (s *workOrderService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	woID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	wo, err := s.repo.FindByID(ctx, woID)
	if err != nil {
		return notFoundOr(err, "workOrderNotFound", "work order %s not found", id)
	}

	if _, err := s.repo.SoftDelete(ctx, woID); err != nil {
		return apperr.Internal("delete work order: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionWorkOrderDeleted, wo.ID.String(), wo.WONumber, nil)
	return nil
}

func (s *workOrderService) GetByID(ctx context.Context, id string) (*model.WorkOrder, error) {
	woID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	wo, err := s.repo.FindByID(ctx, woID)
	if err != nil {
		return nil, notFoundOr(err, "workOrderNotFound", "work order %s not found", id)
	}
	return wo, nil
}

func (s *workOrderService) List(ctx context.Context, filter repository.WorkOrderFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	orders, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list work orders: %s", err.Error())
	}
	return rpc.Page{Docs: orders, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
