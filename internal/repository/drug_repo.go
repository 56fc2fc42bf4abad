package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DrugFilter struct {
	rpc.ListQuery
	Status string `json:"status"`
}

type DrugRepository interface {
	Create(ctx context.Context, d *model.Drug) error
	Update(ctx context.Context, d *model.Drug) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Drug, error)
	FindByCode(ctx context.Context, code string) (*model.Drug, error)
	List(ctx context.Context, filter DrugFilter, offset, limit int) ([]model.Drug, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
}

type drugRepository struct {
	db *gorm.DB
}

func NewDrugRepository(db *gorm.DB) DrugRepository {
	return &drugRepository{db: db}
}

func (r *drugRepository) Create(ctx context.Context, d *model.Drug) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *drugRepository) Update(ctx context.Context, d *model.Drug) error {
	return GetDB(ctx, r.db).Save(d).Error
}

func (r *drugRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Drug{})
	return res.RowsAffected > 0, res.Error
}

func (r *drugRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Drug, error) {
	var d model.Drug
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *drugRepository) FindByCode(ctx context.Context, code string) (*model.Drug, error) {
	var d model.Drug
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

var drugSearchFields = map[string]bool{"code": true, "name": true, "dosage_form": true}
var drugSortFields = map[string]bool{"code": true, "name": true, "status": true, "created_at": true}

func (r *drugRepository) List(ctx context.Context, filter DrugFilter, offset, limit int) ([]model.Drug, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Drug{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	db = applySearch(db, filter.Search, drugSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var drugs []model.Drug
	if err := applySort(db, filter.Sort, drugSortFields).Offset(offset).Limit(limit).Find(&drugs).Error; err != nil {
		return nil, 0, err
	}
	return drugs, total, nil
}

func (r *drugRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Drug{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
