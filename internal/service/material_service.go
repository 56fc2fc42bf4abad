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

type CreateMaterialDTO struct {
	Code              string `json:"code" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Unit              string `json:"unit" binding:"required"`
	StorageConditions string `json:"storage_conditions"`
}

type UpdateMaterialDTO struct {
	Name              string `json:"name"`
	Unit              string `json:"unit"`
	StorageConditions string `json:"storage_conditions"`
}

// --- Interface ---

type MaterialService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateMaterialDTO) (*model.Material, error)
	Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateMaterialDTO) (*model.Material, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.Material, error)
	List(ctx context.Context, q rpc.ListQuery) (rpc.Page, error)
}

type materialService struct {
	repo  repository.MaterialRepository
	audit AuditService
}

func NewMaterialService(repo repository.MaterialRepository, audit AuditService) MaterialService {
	return &materialService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *materialService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateMaterialDTO) (*model.Material, error) {
	_, lookupErr := s.repo.FindByCode(ctx, req.Code)
	if err := checkUnique(lookupErr, "materialCodeExists", "material %s already exists", req.Code); err != nil {
		return nil, err
	}

	material := model.Material{
		Code:              req.Code,
		Name:              req.Name,
		Unit:              req.Unit,
		StorageConditions: req.StorageConditions,
	}

	if err := s.repo.Create(ctx, &material); err != nil {
		return nil, apperr.Internal("create material: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionMaterialCreated, material.ID.String(), material.Code, nil)
	return &material, nil
}

func (s *materialService) Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateMaterialDTO) (*model.Material, error) {
	materialID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		return nil, notFoundOr(err, "materialNotFound", "material %s not found", id)
	}

	if req.Name != "" {
		material.Name = req.Name
	}
	if req.Unit != "" {
		material.Unit = req.Unit
	}
	if req.StorageConditions != "" {
		material.StorageConditions = req.StorageConditions
	}

	if err := s.repo.Update(ctx, material); err != nil {
		return nil, apperr.Internal("update material: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionMaterialUpdated, material.ID.String(), material.Code, nil)
	return material, nil
}

func (s *materialService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	materialID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		return notFoundOr(err, "materialNotFound", "material %s not found", id)
	}

	if _, err := s.repo.SoftDelete(ctx, materialID); err != nil {
		return apperr.Internal("delete material: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionMaterialDeleted, material.ID.String(), material.Code, nil)
	return nil
}

func (s *materialService) GetByID(ctx context.Context, id string) (*model.Material, error) {
	materialID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		return nil, notFoundOr(err, "materialNotFound", "material %s not found", id)
	}
	return material, nil
}

func (s *materialService) List(ctx context.Context, q rpc.ListQuery) (rpc.Page, error) {
	p := pagination.Clamp(q.Page, q.Limit)
	materials, total, err := s.repo.List(ctx, q, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list materials: %s", err.Error())
	}
	return rpc.Page{Docs: materials, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
