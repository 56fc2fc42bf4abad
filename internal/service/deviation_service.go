package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/pkg/apperr"
	"backend/pkg/pagination"
)

// --- DTOs ---

type CreateDeviationDTO struct {
	DeviationNumber string `json:"deviation_number" binding:"required"`
	Severity        string `json:"severity" binding:"required,oneof=MINOR MAJOR CRITICAL"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
}

type UpdateDeviationDTO struct {
	Severity         string `json:"severity" binding:"omitempty,oneof=MINOR MAJOR CRITICAL"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	RootCause        string `json:"root_cause"`
	CorrectiveAction string `json:"corrective_action"`
	Status           string `json:"status" binding:"omitempty,oneof=OPEN UNDER_INVESTIGATION CAPA_PENDING"`
}

type CloseDeviationDTO struct {
	RootCause        string `json:"root_cause"`
	CorrectiveAction string `json:"corrective_action"`
}

// --- Interface ---

type DeviationService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateDeviationDTO) (*model.Deviation, error)
	Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateDeviationDTO) (*model.Deviation, error)
	Close(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseDeviationDTO) (*model.Deviation, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.Deviation, error)
	List(ctx context.Context, filter repository.DeviationFilter) (rpc.Page, error)
}

type deviationService struct {
	repo  repository.DeviationRepository
	audit AuditService
}

func NewDeviationService(repo repository.DeviationRepository, audit AuditService) DeviationService {
	return &deviationService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *deviationService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateDeviationDTO) (*model.Deviation, error) {
	_, lookupErr := s.repo.FindByNumber(ctx, req.DeviationNumber)
	if err := checkUnique(lookupErr, "deviationNumberExists", "deviation %s already exists", req.DeviationNumber); err != nil {
		return nil, err
	}

	deviation := model.Deviation{
		DeviationNumber: req.DeviationNumber,
		Severity:        req.Severity,
		Status:          model.DeviationStatusOpen,
		Title:           req.Title,
		Description:     req.Description,
	}

	if err := s.repo.Create(ctx, &deviation); err != nil {
		return nil, apperr.Internal("create deviation: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionDeviationCreated, deviation.ID.String(), deviation.DeviationNumber, map[string]interface{}{
		"severity": deviation.Severity,
	})

	return &deviation, nil
}

func (s *deviationService) Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateDeviationDTO) (*model.Deviation, error) {
	deviationID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	deviation, err := s.repo.FindByID(ctx, deviationID)
	if err != nil {
		return nil, notFoundOr(err, "deviationNotFound", "deviation %s not found", id)
	}
	if deviation.Status == model.DeviationStatusClosed {
		return nil, apperr.Conflict("deviationClosed", "deviation %s is closed", deviation.DeviationNumber)
	}

	if req.Severity != "" {
		deviation.Severity = req.Severity
	}
	if req.Title != "" {
		deviation.Title = req.Title
	}
	if req.Description != "" {
		deviation.Description = req.Description
	}
	if req.RootCause != "" {
		deviation.RootCause = req.RootCause
	}
	if req.CorrectiveAction != "" {
		deviation.CorrectiveAction = req.CorrectiveAction
	}
	if req.Status != "" {
		deviation.Status = req.Status
	}

	if err := s.repo.Update(ctx, deviation); err != nil {
		return nil, apperr.Internal("update deviation: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionDeviationUpdated, deviation.ID.String(), deviation.DeviationNumber, nil)
	return deviation, nil
}

// Close is idempotent. Closing an already closed deviation returns it
// unchanged; the original closer and timestamp are preserved.
func (s *deviationService) Close(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseDeviationDTO) (*model.Deviation, error) {
	deviationID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	deviation, err := s.repo.FindByID(ctx, deviationID)
	if err != nil {
		return nil, notFoundOr(err, "deviationNotFound", "deviation %s not found", id)
	}
	if deviation.Status == model.DeviationStatusClosed {
		return deviation, nil
	}

	now := time.Now()
	deviation.Status = model.DeviationStatusClosed
	deviation.ClosedAt = &now
	if closerID, err := parseID(caller.ID, "user"); err == nil {
		deviation.ClosedBy = &closerID
	}
	if req.RootCause != "" {
		deviation.RootCause = req.RootCause
	}
	if req.CorrectiveAction != "" {
		deviation.CorrectiveAction = req.CorrectiveAction
	}

	if err := s.repo.Update(ctx, deviation); err != nil {
		return nil, apperr.Internal("close deviation: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionDeviationClosed, deviation.ID.String(), deviation.DeviationNumber, nil)
	return deviation, nil
}

func (s *deviationService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	deviationID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDelete(ctx, deviationID)
	if err != nil {
		return apperr.Internal("delete deviation: %s", err.Error())
	}
	if !deleted {
		return apperr.NotFound("deviationNotFound", "deviation %s not found", id)
	}
	return nil
}

func (s *deviationService) GetByID(ctx context.Context, id string) (*model.Deviation, error) {
	deviationID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	deviation, err := s.repo.FindByID(ctx, deviationID)
	if err != nil {
		return nil, notFoundOr(err, "deviationNotFound", "deviation %s not found", id)
	}
	return deviation, nil
}

func (s *deviationService) List(ctx context.Context, filter repository.DeviationFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	deviations, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list deviations: %s", err.Error())
	}
	return rpc.Page{Docs: deviations, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
