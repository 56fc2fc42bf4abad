package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/pkg/apperr"
	"backend/pkg/pagination"
)

// --- DTOs ---

type CreateDrugDTO struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	DosageForm string `json:"dosage_form"`
	Strength   string `json:"strength"`
}

type UpdateDrugDTO struct {
	Name       string `json:"name"`
	DosageForm string `json:"dosage_form"`
	Strength   string `json:"strength"`
}

// --- Interface ---

type DrugService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateDrugDTO) (*model.Drug, error)
	Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateDrugDTO) (*model.Drug, error)
	SubmitForApproval(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error)
	Approve(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error)
	Reject(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error)
	Discontinue(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.Drug, error)
	List(ctx context.Context, filter repository.DrugFilter) (rpc.Page, error)
}

type drugService struct {
	repo  repository.DrugRepository
	audit AuditService
}

func NewDrugService(repo repository.DrugRepository, audit AuditService) DrugService {
	return &drugService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *drugService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateDrugDTO) (*model.Drug, error) {
	_, lookupErr := s.repo.FindByCode(ctx, req.Code)
	if err := checkUnique(lookupErr, "drugCodeExists", "drug %s already exists", req.Code); err != nil {
		return nil, err
	}

	drug := model.Drug{
		Code:       req.Code,
		Name:       req.Name,
		DosageForm: req.DosageForm,
		Strength:   req.Strength,
		Status:     model.DrugStatusDraft,
	}

	if err := s.repo.Create(ctx, &drug); err != nil {
		return nil, apperr.Internal("create drug: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionDrugCreated, drug.ID.String(), drug.Code, nil)
	return &drug, nil
}

func (s *drugService) Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateDrugDTO) (*model.Drug, error) {
	drugID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	drug, err := s.repo.FindByID(ctx, drugID)
	if err != nil {
		return nil, notFoundOr(err, "drugNotFound", "drug %s not found", id)
	}
	if drug.Status == model.DrugStatusDiscontinued {
		return nil, apperr.Conflict("drugDiscontinued", "drug %s is discontinued", drug.Code)
	}

	if req.Name != "" {
		drug.Name = req.Name
	}
	if req.DosageForm != "" {
		drug.DosageForm = req.DosageForm
	}
	if req.Strength != "" {
		drug.Strength = req.Strength
	}

	if err := s.repo.Update(ctx, drug); err != nil {
		return nil, apperr.Internal("update drug: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionDrugUpdated, drug.ID.String(), drug.Code, nil)
	return drug, nil
}

func (s *drugService) SubmitForApproval(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.DrugStatusDraft, model.DrugStatusRejected},
		model.DrugStatusPendingApproval, model.ActionDrugSubmitted)
}

func (s *drugService) Approve(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.DrugStatusPendingApproval},
		model.DrugStatusApproved, model.ActionDrugApproved)
}

func (s *drugService) Reject(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.DrugStatusPendingApproval},
		model.DrugStatusRejected, model.ActionDrugRejected)
}

func (s *drugService) Discontinue(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Drug, error) {
	return s.transition(ctx, caller, tracing, id,
		[]string{model.DrugStatusApproved},
		model.DrugStatusDiscontinued, model.ActionDrugDiscontinued)
}

// transition moves a drug between lifecycle states with a guarded update so
// two concurrent commands cannot both win.
func (s *drugService) transition(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, from []string, to, action string) (*model.Drug, error) {
	drugID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	drug, err := s.repo.FindByID(ctx, drugID)
	if err != nil {
		return nil, notFoundOr(err, "drugNotFound", "drug %s not found", id)
	}

	allowed := false
	for _, f := range from {
		if drug.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.BadRequest("invalidTransition", "drug %s cannot move from %s to %s", drug.Code, drug.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, drugID, from, to)
	if err != nil {
		return nil, apperr.Internal("update drug status: %s", err.Error())
	}
	if !updated {
		return nil, apperr.Conflict("concurrentUpdate", "drug %s was modified concurrently", drug.Code)
	}

	s.audit.Record(ctx, caller, tracing, action, drug.ID.String(), drug.Code, map[string]interface{}{
		"from": drug.Status,
		"to":   to,
	})

	drug.Status = to
	return drug, nil
}

func (s *drugService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	drugID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	drug, err := s.repo.FindByID(ctx, drugID)
	if err != nil {
		return notFoundOr(err, "drugNotFound", "drug %s not found", id)
	}

	if _, err := s.repo.SoftDelete(ctx, drugID); err != nil {
		return apperr.Internal("delete drug: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionDrugDeleted, drug.ID.String(), drug.Code, nil)
	return nil
}

func (s *drugService) GetByID(ctx context.Context, id string) (*model.Drug, error) {
	drugID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	drug, err := s.repo.FindByID(ctx, drugID)
	if err != nil {
		return nil, notFoundOr(err, "drugNotFound", "drug %s not found", id)
	}
	return drug, nil
}

func (s *drugService) List(ctx context.Context, filter repository.DrugFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	drugs, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list drugs: %s", err.Error())
	}
	return rpc.Page{Docs: drugs, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
