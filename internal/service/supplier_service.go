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

type CreateSupplierDTO struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

type UpdateSupplierDTO struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

// --- Interface ---

type SupplierService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateSupplierDTO) (*model.Supplier, error)
	Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateSupplierDTO) (*model.Supplier, error)
	Blacklist(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Supplier, error)
	Reinstate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Supplier, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.Supplier, error)
	List(ctx context.Context, filter repository.SupplierFilter) (rpc.Page, error)
}

type supplierService struct {
	repo  repository.SupplierRepository
	audit AuditService
}

func NewSupplierService(repo repository.SupplierRepository, audit AuditService) SupplierService {
	return &supplierService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *supplierService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateSupplierDTO) (*model.Supplier, error) {
	_, lookupErr := s.repo.FindByCode(ctx, req.Code)
	if err := checkUnique(lookupErr, "supplierCodeExists", "supplier %s already exists", req.Code); err != nil {
		return nil, err
	}

	supplier := model.Supplier{
		Code:    req.Code,
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Status:  model.SupplierStatusActive,
	}

	if err := s.repo.Create(ctx, &supplier); err != nil {
		return nil, apperr.Internal("create supplier: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionSupplierCreated, supplier.ID.String(), supplier.Code, nil)
	return &supplier, nil
}

func (s *supplierService) Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateSupplierDTO) (*model.Supplier, error) {
	supplierID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplierNotFound", "supplier %s not found", id)
	}

	if req.Name != "" {
		supplier.Name = req.Name
	}
	if req.Contact != "" {
		supplier.Contact = req.Contact
	}
	if req.Phone != "" {
		supplier.Phone = req.Phone
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, apperr.Internal("update supplier: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionSupplierUpdated, supplier.ID.String(), supplier.Code, nil)
	return supplier, nil
}

func (s *supplierService) Blacklist(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Supplier, error) {
	return s.setStatus(ctx, caller, tracing, id, model.SupplierStatusBlacklisted, model.ActionSupplierBlacklisted)
}

func (s *supplierService) Reinstate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Supplier, error) {
	return s.setStatus(ctx, caller, tracing, id, model.SupplierStatusActive, model.ActionSupplierUpdated)
}

func (s *supplierService) setStatus(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id, status, action string) (*model.Supplier, error) {
	supplierID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplierNotFound", "supplier %s not found", id)
	}
	if supplier.Status == status {
		return supplier, nil
	}

	supplier.Status = status
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, apperr.Internal("update supplier: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, action, supplier.ID.String(), supplier.Code, map[string]interface{}{
		"status": status,
	})
	return supplier, nil
}

func (s *supplierService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	supplierID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return notFoundOr(err, "supplierNotFound", "supplier %s not found", id)
	}

	if _, err := s.repo.SoftDelete(ctx, supplierID); err != nil {
		return apperr.Internal("delete supplier: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionSupplierDeleted, supplier.ID.String(), supplier.Code, nil)
	return nil
}

func (s *supplierService) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	supplierID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplierNotFound", "supplier %s not found", id)
	}
	return supplier, nil
}

func (s *supplierService) List(ctx context.Context, filter repository.SupplierFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	suppliers, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list suppliers: %s", err.Error())
	}
	return rpc.Page{Docs: suppliers, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
