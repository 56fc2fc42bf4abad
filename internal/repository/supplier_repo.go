package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierFilter struct {
	rpc.ListQuery
	Status string `json:"status"`
}

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	Update(ctx context.Context, s *model.Supplier) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	FindByCode(ctx context.Context, code string) (*model.Supplier, error)
	List(ctx context.Context, filter SupplierFilter, offset, limit int) ([]model.Supplier, int64, error)
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, s *model.Supplier) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *supplierRepository) Update(ctx context.Context, s *model.Supplier) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *supplierRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Supplier{})
	return res.RowsAffected > 0, res.Error
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	if err := GetDB(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepository) FindByCode(ctx context.Context, code string) (*model.Supplier, error) {
	var s model.Supplier
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

var supplierSearchFields = map[string]bool{"code": true, "name": true, "contact": true}
var supplierSortFields = map[string]bool{"code": true, "name": true, "status": true, "created_at": true}

func (r *supplierRepository) List(ctx context.Context, filter SupplierFilter, offset, limit int) ([]model.Supplier, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Supplier{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	db = applySearch(db, filter.Search, supplierSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var suppliers []model.Supplier
	if err := applySort(db, filter.Sort, supplierSortFields).Offset(offset).Limit(limit).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}
