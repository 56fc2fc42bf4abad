package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/pkg/apperr"
)

// --- DTOs ---

type CreatePermissionDTO struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Group string `json:"group" binding:"required"`
}

// --- Interface ---

type PermissionService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreatePermissionDTO) (*model.Permission, error)
	GetByID(ctx context.Context, id string) (*model.Permission, error)
	List(ctx context.Context) ([]model.Permission, error)
}

type permissionService struct {
	repo  repository.PermissionRepository
	audit AuditService
}

func NewPermissionService(repo repository.PermissionRepository, audit AuditService) PermissionService {
	return &permissionService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *permissionService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreatePermissionDTO) (*model.Permission, error) {
	_, lookupErr := s.repo.FindByCode(ctx, req.Code)
	if err := checkUnique(lookupErr, "permissionCodeExists", "permission %s already exists", req.Code); err != nil {
		return nil, err
	}

	perm := model.Permission{
		Code:  req.Code,
		Name:  req.Name,
		Group: req.Group,
	}

	if err := s.repo.Create(ctx, &perm); err != nil {
		return nil, apperr.Internal("create permission: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionPermissionCreated, perm.ID.String(), perm.Code, nil)
	return &perm, nil
}

func (s *permissionService) GetByID(ctx context.Context, id string) (*model.Permission, error) {
	permID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	perm, err := s.repo.FindByID(ctx, permID)
	if err != nil {
		return nil, notFoundOr(err, "permissionNotFound", "permission %s not found", id)
	}
	return perm, nil
}

func (s *permissionService) List(ctx context.Context) ([]model.Permission, error) {
	perms, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("list permissions: %s", err.Error())
	}
	return perms, nil
}
