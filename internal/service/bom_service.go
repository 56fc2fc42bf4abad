package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type BOMItemDTO struct {
	MaterialID       string `json:"material_id" binding:"required,uuid"`
	QuantityPerBatch string `json:"quantity_per_batch" binding:"required"`
	TolerancePercent string `json:"tolerance_percent"`
	IsCritical       bool   `json:"is_critical"`
}

type CreateBOMDTO struct {
	BOMNumber    string       `json:"bom_number" binding:"required"`
	DrugID       string       `json:"drug_id" binding:"required,uuid"`
	BatchSize    string       `json:"batch_size" binding:"required"`
	YieldPercent string       `json:"yield_percent"`
	Items        []BOMItemDTO `json:"items" binding:"required,min=1,dive"`
}

// --- Interface ---

type BOMService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateBOMDTO) (*model.BOM, error)
	Activate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.BOM, error)
	GetByID(ctx context.Context, id string) (*model.BOM, error)
	List(ctx context.Context, filter repository.BOMFilter) (rpc.Page, error)
}

type bomService struct {
	repo      repository.BOMRepository
	materials rpcclient.MaterialClient
	tx        repository.TransactionManager
	audit     AuditService
}

func NewBOMService(repo repository.BOMRepository, materials rpcclient.MaterialClient, tx repository.TransactionManager, audit AuditService) BOMService {
	return &bomService{repo: repo, materials: materials, tx: tx, audit: audit}
}

// --- Implementation ---

// Create allocates the next version number for the drug. Version assignment
// and insert are not atomic across processes; the unique index on
// (drug_id, version) is the backstop.
func (s *bomService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateBOMDTO) (*model.BOM, error) {
	drugID, err := parseID(req.DrugID, "drug_id")
	if err != nil {
		return nil, err
	}

	batchSize, err := decimal.NewFromString(req.BatchSize)
	if err != nil || !batchSize.IsPositive() {
		return nil, apperr.Validation(apperr.FieldError{Field: "batch_size", Reason: "must be a positive decimal"})
	}

	yield := decimal.NewFromInt(100)
	if req.YieldPercent != "" {
		yield, err = decimal.NewFromString(req.YieldPercent)
		if err != nil || yield.IsNegative() || yield.GreaterThan(decimal.NewFromInt(100)) {
			return nil, apperr.Validation(apperr.FieldError{Field: "yield_percent", Reason: "must be between 0 and 100"})
		}
	}

	_, lookupErr := s.repo.FindByNumber(ctx, req.BOMNumber)
	if err := checkUnique(lookupErr, "bomNumberExists", "bom %s already exists", req.BOMNumber); err != nil {
		return nil, err
	}

	items := make([]model.BOMItem, 0, len(req.Items))
	for i, item := range req.Items {
		materialID, err := parseID(item.MaterialID, "items["+itoa(i)+"].material_id")
		if err != nil {
			return nil, err
		}

		quantity, err := decimal.NewFromString(item.QuantityPerBatch)
		if err != nil || !quantity.IsPositive() {
			return nil, apperr.Validation(apperr.FieldError{Field: "items[" + itoa(i) + "].quantity_per_batch", Reason: "must be a positive decimal"})
		}

		tolerance := decimal.Zero
		if item.TolerancePercent != "" {
			tolerance, err = decimal.NewFromString(item.TolerancePercent)
			if err != nil || tolerance.IsNegative() {
				return nil, apperr.Validation(apperr.FieldError{Field: "items[" + itoa(i) + "].tolerance_percent", Reason: "must be a non-negative decimal"})
			}
		}

		if _, err := s.materials.GetByID(ctx, item.MaterialID); err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return nil, apperr.NotFound("materialNotFound", "material %s not found", item.MaterialID)
			}
			return nil, err
		}

		items = append(items, model.BOMItem{
			MaterialID:       materialID,
			QuantityPerBatch: quantity,
			TolerancePercent: tolerance,
			IsCritical:       item.IsCritical,
			Sequence:         i + 1,
		})
	}

	maxVersion, err := s.repo.MaxVersionForDrug(ctx, drugID)
	if err != nil {
		return nil, apperr.Internal("resolve bom version: %s", err.Error())
	}

	bom := model.BOM{
		BOMNumber:    req.BOMNumber,
		DrugID:       drugID,
		Version:      maxVersion + 1,
		Status:       model.BOMStatusDraft,
		BatchSize:    batchSize,
		YieldPercent: yield,
		Items:        items,
	}

	if err := s.repo.Create(ctx, &bom); err != nil {
		return nil, apperr.Internal("create bom: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBOMCreated, bom.ID.String(), bom.BOMNumber, map[string]interface{}{
		"drug_id": bom.DrugID.String(),
		"version": bom.Version,
	})

	return &bom, nil
}

// Activate promotes the BOM and obsoletes any other Active version of the
// same drug in one transaction, keeping at most one Active version.
func (s *bomService) Activate(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) (*model.BOM, error) {
	bomID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	bom, err := s.repo.FindByID(ctx, bomID)
	if err != nil {
		return nil, notFoundOr(err, "bomNotFound", "bom %s not found", id)
	}
	if bom.Status == model.BOMStatusActive {
		return bom, nil
	}
	if bom.Status == model.BOMStatusObsolete {
		return nil, apperr.Conflict("bomObsolete", "bom %s is obsolete", bom.BOMNumber)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ObsoleteActiveVersions(txCtx, bom.DrugID, bom.ID); err != nil {
			return err
		}
		bom.Status = model.BOMStatusActive
		return s.repo.Update(txCtx, bom)
	})
	if err != nil {
		return nil, apperr.Internal("activate bom: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBOMActivated, bom.ID.String(), bom.BOMNumber, map[string]interface{}{
		"drug_id": bom.DrugID.String(),
		"version": bom.Version,
	})

	return bom, nil
}

func (s *bomService) GetByID(ctx context.Context, id string) (*model.BOM, error) {
	bomID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	bom, err := s.repo.FindByID(ctx, bomID)
	if err != nil {
		return nil, notFoundOr(err, "bomNotFound", "bom %s not found", id)
	}
	return bom, nil
}

func (s *bomService) List(ctx context.Context, filter repository.BOMFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	boms, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list boms: %s", err.Error())
	}
	return rpc.Page{Docs: boms, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
