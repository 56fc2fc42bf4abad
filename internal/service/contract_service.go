package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateContractDTO struct {
	ContractNumber string    `json:"contract_number" binding:"required"`
	SupplierID     string    `json:"supplier_id" binding:"required,uuid"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
	Value          string    `json:"value" binding:"required"`
}

type RenewContractDTO struct {
	EndDate time.Time `json:"end_date" binding:"required"`
	Value   string    `json:"value"`
}

// --- Interface ---

type ContractService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateContractDTO) (*model.Contract, error)
	Activate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Contract, error)
	Renew(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RenewContractDTO) (*model.Contract, error)
	Terminate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Contract, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.Contract, error)
	List(ctx context.Context, filter repository.ContractFilter) (rpc.Page, error)
}

type contractService struct {
	repo      repository.ContractRepository
	suppliers repository.SupplierRepository
	audit     AuditService
}

func NewContractService(repo repository.ContractRepository, suppliers repository.SupplierRepository, audit AuditService) ContractService {
	return &contractService{repo: repo, suppliers: suppliers, audit: audit}
}

// --- Implementation ---

func (s *contractService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateContractDTO) (*model.Contract, error) {
	supplierID, err := parseID(req.SupplierID, "supplier_id")
	if err != nil {
		return nil, err
	}

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplierNotFound", "supplier %s not found", req.SupplierID)
	}
	if supplier.Status == model.SupplierStatusBlacklisted {
		return nil, apperr.BadRequest("supplierBlacklisted", "supplier %s is blacklisted", supplier.Code)
	}

	if !req.EndDate.After(req.StartDate) {
		return nil, apperr.Validation(apperr.FieldError{Field: "end_date", Reason: "must be after start_date"})
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil || value.IsNegative() {
		return nil, apperr.Validation(apperr.FieldError{Field: "value", Reason: "must be a non-negative decimal"})
	}

	_, lookupErr := s.repo.FindByNumber(ctx, req.ContractNumber)
	if err := checkUnique(lookupErr, "contractNumberExists", "contract %s already exists", req.ContractNumber); err != nil {
		return nil, err
	}

	contract := model.Contract{
		ContractNumber: req.ContractNumber,
		SupplierID:     supplierID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Value:          value,
		Status:         model.ContractStatusDraft,
	}

	if err := s.repo.Create(ctx, &contract); err != nil {
		return nil, apperr.Internal("create contract: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionContractCreated, contract.ID.String(), contract.ContractNumber, map[string]interface{}{
		"supplier_id": contract.SupplierID.String(),
		"value":       contract.Value.String(),
	})

	return &contract, nil
}

func (s *contractService) Activate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Contract, error) {
	contractID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		return nil, notFoundOr(err, "contractNotFound", "contract %s not found", id)
	}
	if contract.Status != model.ContractStatusDraft {
		return nil, apperr.BadRequest("invalidTransition", "contract %s cannot be activated from %s", contract.ContractNumber, contract.Status)
	}

	updated, err := s.repo.UpdateStatus(ctx, contractID, []string{model.ContractStatusDraft}, model.ContractStatusActive)
	if err != nil {
		return nil, apperr.Internal("activate contract: %s", err.Error())
	}
	if !updated {
		return nil, apperr.Conflict("concurrentUpdate", "contract %s was modified concurrently", contract.ContractNumber)
	}

	s.audit.Record(ctx, caller, tracing, model.ActionContractActivated, contract.ID.String(), contract.ContractNumber, nil)
	contract.Status = model.ContractStatusActive
	return contract, nil
}

// Renew extends an active or expired contract, pushing out the end date and
// optionally restating the value. Terminated contracts stay terminated.
func (s *contractService) Renew(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RenewContractDTO) (*model.Contract, error) {
	contractID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		return nil, notFoundOr(err, "contractNotFound", "contract %s not found", id)
	}
	if contract.Status == model.ContractStatusTerminated {
		return nil, apperr.Conflict("contractTerminated", "contract %s is terminated", contract.ContractNumber)
	}
	if !req.EndDate.After(contract.EndDate) {
		return nil, apperr.Validation(apperr.FieldError{Field: "end_date", Reason: "must extend the current end date"})
	}

	contract.EndDate = req.EndDate
	contract.Status = model.ContractStatusActive
	if req.Value != "" {
		value, err := decimal.NewFromString(req.Value)
		if err != nil || value.IsNegative() {
			return nil, apperr.Validation(apperr.FieldError{Field: "value", Reason: "must be a non-negative decimal"})
		}
		contract.Value = value
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, apperr.Internal("renew contract: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionContractRenewed, contract.ID.String(), contract.ContractNumber, map[string]interface{}{
		"end_date": contract.EndDate.Format(time.RFC3339),
	})
	return contract, nil
}

func (s *contractService) Terminate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.Contract, error) {
	contractID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		return nil, notFoundOr(err, "contractNotFound", "contract %s not found", id)
	}
	if contract.Status == model.ContractStatusTerminated {
		return contract, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, contractID,
		[]string{model.ContractStatusDraft, model.ContractStatusActive, model.ContractStatusExpired},
		model.ContractStatusTerminated)
	if err != nil {
		return nil, apperr.Internal("terminate contract: %s", err.Error())
	}
	if !updated {
		return nil, apperr.Conflict("concurrentUpdate", "contract %s was modified concurrently", contract.ContractNumber)
	}

	s.audit.Record(ctx, caller, tracing, model.ActionContractTerminated, contract.ID.String(), contract.ContractNumber, nil)
	contract.Status = model.ContractStatusTerminated
	return contract, nil
}

func (s *contractService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	contractID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		return notFoundOr(err, "contractNotFound", "contract %s not found", id)
	}

	if _, err := s.repo.SoftDelete(ctx, contractID); err != nil {
		return apperr.Internal("delete contract: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionContractDeleted, contract.ID.String(), contract.ContractNumber, nil)
	return nil
}

func (s *contractService) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	contractID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		return nil, notFoundOr(err, "contractNotFound", "contract %s not found", id)
	}
	return contract, nil
}

func (s *contractService) List(ctx context.Context, filter repository.ContractFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	contracts, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list contracts: %s", err.Error())
	}
	return rpc.Page{Docs: contracts, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
