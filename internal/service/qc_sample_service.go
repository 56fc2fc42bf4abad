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

type CreateQCSampleDTO struct {
	SampleNumber string `json:"sample_number" binding:"required"`
	SourceType   string `json:"source_type" binding:"required,oneof=GOODS_RECEIPT BATCH"`
	SourceID     string `json:"source_id" binding:"required,uuid"`
	MaterialID   string `json:"material_id" binding:"omitempty,uuid"`
	Priority     string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
}

type AssignQCSampleDTO struct {
	AssignedTo string `json:"assigned_to" binding:"required,uuid"`
}

type CloseQCSampleDTO struct {
	ResultNotes string `json:"result_notes"`
}

// --- Interface ---

type QCSampleService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateQCSampleDTO) (*model.QCSample, error)
	Assign(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req AssignQCSampleDTO) (*model.QCSample, error)
	Complete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseQCSampleDTO) (*model.QCSample, error)
	Fail(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseQCSampleDTO) (*model.QCSample, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.QCSample, error)
	List(ctx context.Context, filter repository.QCSampleFilter) (rpc.Page, error)
}

type qcSampleService struct {
	repo  repository.QCSampleRepository
	audit AuditService
}

func NewQCSampleService(repo repository.QCSampleRepository, audit AuditService) QCSampleService {
	return &qcSampleService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *qcSampleService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateQCSampleDTO) (*model.QCSample, error) {
	_, lookupErr := s.repo.FindByNumber(ctx, req.SampleNumber)
	if err := checkUnique(lookupErr, "sampleNumberExists", "qc sample %s already exists", req.SampleNumber); err != nil {
		return nil, err
	}

	sourceID, err := parseID(req.SourceID, "source_id")
	if err != nil {
		return nil, err
	}

	sample := model.QCSample{
		SampleNumber: req.SampleNumber,
		SourceType:   req.SourceType,
		SourceID:     sourceID,
		Status:       model.QCStatusPending,
		Priority:     req.Priority,
	}
	if sample.Priority == "" {
		sample.Priority = model.QCPriorityMedium
	}
	if req.MaterialID != "" {
		materialID, err := parseID(req.MaterialID, "material_id")
		if err != nil {
			return nil, err
		}
		sample.MaterialID = materialID
	}

	if err := s.repo.Create(ctx, &sample); err != nil {
		return nil, apperr.Internal("create qc sample: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionQCSampleCreated, sample.ID.String(), sample.SampleNumber, map[string]interface{}{
		"source_type": sample.SourceType,
		"source_id":   sample.SourceID.String(),
	})

	return &sample, nil
}

// Assign sets the assignee and forces the sample to InProgress without
// checking the current status. Re-assigning an InProgress or even a
// terminal sample silently overwrites the assignee; this mirrors observed
// production behavior and is pinned by tests.
func (s *qcSampleService) Assign(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req AssignQCSampleDTO) (*model.QCSample, error) {
	sampleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	sample, err := s.repo.FindByID(ctx, sampleID)
	if err != nil {
		return nil, notFoundOr(err, "qcSampleNotFound", "qc sample %s not found", id)
	}

	assignee, err := parseID(req.AssignedTo, "assigned_to")
	if err != nil {
		return nil, err
	}

	sample.AssignedTo = &assignee
	sample.Status = model.QCStatusInProgress

	if err := s.repo.Update(ctx, sample); err != nil {
		return nil, apperr.Internal("assign qc sample: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionQCSampleAssigned, sample.ID.String(), sample.SampleNumber, map[string]interface{}{
		"assigned_to": req.AssignedTo,
	})

	return sample, nil
}

func (s *qcSampleService) Complete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseQCSampleDTO) (*model.QCSample, error) {
	return s.finish(ctx, caller, tracing, id, req, model.QCStatusCompleted, model.ActionQCSampleCompleted)
}

func (s *qcSampleService) Fail(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseQCSampleDTO) (*model.QCSample, error) {
	return s.finish(ctx, caller, tracing, id, req, model.QCStatusFailed, model.ActionQCSampleFailed)
}

// finish sets a terminal status. The pass/fail judgement and any follow-up
// Deviation creation are driven by the caller; the core only stores the
// outcome.
func (s *qcSampleService) finish(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CloseQCSampleDTO, status, action string) (*model.QCSample, error) {
	sampleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	sample, err := s.repo.FindByID(ctx, sampleID)
	if err != nil {
		return nil, notFoundOr(err, "qcSampleNotFound", "qc sample %s not found", id)
	}

	sample.Status = status
	if req.ResultNotes != "" {
		sample.ResultNotes = req.ResultNotes
	}

	if err := s.repo.Update(ctx, sample); err != nil {
		return nil, apperr.Internal("update qc sample: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, action, sample.ID.String(), sample.SampleNumber, nil)
	return sample, nil
}

func (s *qcSampleService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	sampleID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDelete(ctx, sampleID)
	if err != nil {
		return apperr.Internal("delete qc sample: %s", err.Error())
	}
	if !deleted {
		return apperr.NotFound("qcSampleNotFound", "qc sample %s not found", id)
	}
	return nil
}

func (s *qcSampleService) GetByID(ctx context.Context, id string) (*model.QCSample, error) {
	sampleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	sample, err := s.repo.FindByID(ctx, sampleID)
	if err != nil {
		return nil, notFoundOr(err, "qcSampleNotFound", "qc sample %s not found", id)
	}
	return sample, nil
}

func (s *qcSampleService) List(ctx context.Context, filter repository.QCSampleFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	samples, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list qc samples: %s", err.Error())
	}
	return rpc.Page{Docs: samples, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
