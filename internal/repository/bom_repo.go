package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BOMFilter struct {
	rpc.ListQuery
	DrugID string `json:"drug_id"`
	Status string `json:"status"`
}

type BOMRepository interface {
	Create(ctx context.Context, b *model.BOM) error
	Update(ctx context.Context, b *model.BOM) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BOM, error)
	FindByNumber(ctx context.Context, number string) (*model.BOM, error)
	FindByDrugVersion(ctx context.Context, drugID uuid.UUID, version int) (*model.BOM, error)
	MaxVersionForDrug(ctx context.Context, drugID uuid.UUID) (int, error)
	List(ctx context.Context, filter BOMFilter, offset, limit int) ([]model.BOM, int64, error)
	// ObsoleteActiveVersions marks every Active BOM of the drug Obsolete,
	// except the one being activated.
	ObsoleteActiveVersions(ctx context.Context, drugID, exceptID uuid.UUID) error
}

type bomRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) BOMRepository {
	return &bomRepository{db: db}
}

func (r *bomRepository) Create(ctx context.Context, b *model.BOM) error {
	return GetDB(ctx, r.db).Create(b).Error
}

func (r *bomRepository) Update(ctx context.Context, b *model.BOM) error {
	return GetDB(ctx, r.db).Save(b).Error
}

func (r *bomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BOM, error) {
	var b model.BOM
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sequence asc") }).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bomRepository) FindByNumber(ctx context.Context, number string) (*model.BOM, error) {
	var b model.BOM
	if err := GetDB(ctx, r.db).Where("bom_number = ?", number).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bomRepository) FindByDrugVersion(ctx context.Context, drugID uuid.UUID, version int) (*model.BOM, error) {
	var b model.BOM
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sequence asc") }).
		Where("drug_id = ? AND version = ?", drugID, version).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bomRepository) MaxVersionForDrug(ctx context.Context, drugID uuid.UUID) (int, error) {
	var max int
	err := GetDB(ctx, r.db).Model(&model.BOM{}).
		Where("drug_id = ?", drugID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max, err
}

var bomSearchFields = map[string]bool{"bom_number": true}
var bomSortFields = map[string]bool{"bom_number": true, "version": true, "status": true, "created_at": true}

func (r *bomRepository) List(ctx context.Context, filter BOMFilter, offset, limit int) ([]model.BOM, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.BOM{})
	if filter.DrugID != "" {
		db = db.Where("drug_id = ?", filter.DrugID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	db = applySearch(db, filter.Search, bomSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boms []model.BOM
	if err := applySort(db, filter.Sort, bomSortFields).Offset(offset).Limit(limit).Find(&boms).Error; err != nil {
		return nil, 0, err
	}
	return boms, total, nil
}

func (r *bomRepository) ObsoleteActiveVersions(ctx context.Context, drugID, exceptID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.BOM{}).
		Where("drug_id = ? AND status = ? AND id <> ?", drugID, model.BOMStatusActive, exceptID).
		Update("status", model.BOMStatusObsolete).Error
}
