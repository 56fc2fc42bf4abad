package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreatePutawayDTO struct {
	PutawayNumber string `json:"putaway_number" binding:"required"`
	BatchID       string `json:"batch_id" binding:"omitempty,uuid"`
	DrugID        string `json:"drug_id" binding:"required,uuid"`
	Quantity      string `json:"quantity" binding:"required"`
	Location      string `json:"location"`
}

type StorePutawayDTO struct {
	Location string `json:"location" binding:"required"`
}

// --- Interface ---

type PutawayService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreatePutawayDTO) (*model.Putaway, error)
	Store(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req StorePutawayDTO) (*model.Putaway, error)
	GetByID(ctx context.Context, id string) (*model.Putaway, error)
	List(ctx context.Context, filter repository.PutawayFilter) (rpc.Page, error)
}

type putawayService struct {
	repo  repository.PutawayRepository
	audit AuditService
}

func NewPutawayService(repo repository.PutawayRepository, audit AuditService) PutawayService {
	return &putawayService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *putawayService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreatePutawayDTO) (*model.Putaway, error) {
	_, lookupErr := s.repo.FindByNumber(ctx, req.PutawayNumber)
	if err := checkUnique(lookupErr, "putawayNumberExists", "putaway %s already exists", req.PutawayNumber); err != nil {
		return nil, err
	}

	drugID, err := parseID(req.DrugID, "drug_id")
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || quantity.IsNegative() {
		return nil, apperr.Validation(apperr.FieldError{Field: "quantity", Reason: "must be a non-negative decimal"})
	}

	putaway := model.Putaway{
		PutawayNumber: req.PutawayNumber,
		DrugID:        drugID,
		Quantity:      quantity,
		Location:      req.Location,
		Status:        model.PutawayStatusPending,
	}
	if req.BatchID != "" {
		batchID, err := parseID(req.BatchID, "batch_id")
		if err != nil {
			return nil, err
		}
		putaway.BatchID = &batchID
	}

	if err := s.repo.Create(ctx, &putaway); err != nil {
		return nil, apperr.Internal("create putaway: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPutawayCreated, putaway.ID.String(), putaway.PutawayNumber, map[string]interface{}{
		"drug_id":  putaway.DrugID.String(),
		"quantity": putaway.Quantity.String(),
	})

	return &putaway, nil
}

func (s *putawayService) Store(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req StorePutawayDTO) (*model.Putaway, error) {
	putawayID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	putaway, err := s.repo.FindByID(ctx, putawayID)
	if err != nil {
		return nil, notFoundOr(err, "putawayNotFound", "putaway %s not found", id)
	}
	if putaway.Status == model.PutawayStatusStored {
		return nil, apperr.Conflict("alreadyStored", "putaway %s is already stored", putaway.PutawayNumber)
	}

	putaway.Location = req.Location
	putaway.Status = model.PutawayStatusStored

	if err := s.repo.Update(ctx, putaway); err != nil {
		return nil, apperr.Internal("store putaway: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPutawayStored, putaway.ID.String(), putaway.PutawayNumber, map[string]interface{}{
		"location": putaway.Location,
	})

	return putaway, nil
}

func (s *putawayService) GetByID(ctx context.Context, id string) (*model.Putaway, error) {
	putawayID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	putaway, err := s.repo.FindByID(ctx, putawayID)
	if err != nil {
		return nil, notFoundOr(err, "putawayNotFound", "putaway %s not found", id)
	}
	return putaway, nil
}

func (s *putawayService) List(ctx context.Context, filter repository.PutawayFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	putaways, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list putaways: %s", err.Error())
	}
	return rpc.Page{Docs: putaways, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
