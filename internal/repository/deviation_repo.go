package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviationFilter struct {
	rpc.ListQuery
	Status   string `json:"status"`
	Severity string `json:"severity"`
}

type DeviationRepository interface {
	Create(ctx context.Context, d *model.Deviation) error
	Update(ctx context.Context, d *model.Deviation) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deviation, error)
	FindByNumber(ctx context.Context, number string) (*model.Deviation, error)
	List(ctx context.Context, filter DeviationFilter, offset, limit int) ([]model.Deviation, int64, error)
}

type deviationRepository struct {
	db *gorm.DB
}

func NewDeviationRepository(db *gorm.DB) DeviationRepository {
	return &deviationRepository{db: db}
}

func (r *deviationRepository) Create(ctx context.Context, d *model.Deviation) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *deviationRepository) Update(ctx context.Context, d *model.Deviation) error {
	return GetDB(ctx, r.db).Save(d).Error
}

func (r *deviationRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Deviation{})
	return res.RowsAffected > 0, res.Error
}

func (r *deviationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Deviation, error) {
	var d model.Deviation
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviationRepository) FindByNumber(ctx context.Context, number string) (*model.Deviation, error) {
	var d model.Deviation
	if err := GetDB(ctx, r.db).Where("deviation_number = ?", number).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

var deviationSearchFields = map[string]bool{"deviation_number": true, "title": true, "description": true, "root_cause": true}
var deviationSortFields = map[string]bool{"deviation_number": true, "severity": true, "status": true, "created_at": true}

func (r *deviationRepository) List(ctx context.Context, filter DeviationFilter, offset, limit int) ([]model.Deviation, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Deviation{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		db = db.Where("severity = ?", filter.Severity)
	}
	db = applySearch(db, filter.Search, deviationSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deviations []model.Deviation
	if err := applySort(db, filter.Sort, deviationSortFields).Offset(offset).Limit(limit).Find(&deviations).Error; err != nil {
		return nil, 0, err
	}
	return deviations, total, nil
}
