package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) error
	Update(ctx context.Context, m *model.Material) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindByCode(ctx context.Context, code string) (*model.Material, error)
	List(ctx context.Context, q rpc.ListQuery, offset, limit int) ([]model.Material, int64, error)
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, m *model.Material) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *materialRepository) Update(ctx context.Context, m *model.Material) error {
	return GetDB(ctx, r.db).Save(m).Error
}

func (r *materialRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Material{})
	return res.RowsAffected > 0, res.Error
}

func (r *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	if err := GetDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *materialRepository) FindByCode(ctx context.Context, code string) (*model.Material, error) {
	var m model.Material
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

var materialSearchFields = map[string]bool{"code": true, "name": true}
var materialSortFields = map[string]bool{"code": true, "name": true, "unit": true, "created_at": true}

func (r *materialRepository) List(ctx context.Context, q rpc.ListQuery, offset, limit int) ([]model.Material, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Material{})
	db = applySearch(db, q.Search, materialSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var materials []model.Material
	if err := applySort(db, q.Sort, materialSortFields).Offset(offset).Limit(limit).Find(&materials).Error; err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}
