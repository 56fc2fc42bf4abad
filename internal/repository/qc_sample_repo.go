package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QCSampleFilter struct {
	rpc.ListQuery
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	AssignedTo string `json:"assigned_to"`
}

type QCSampleRepository interface {
	Create(ctx context.Context, s *model.QCSample) error
	Update(ctx context.Context, s *model.QCSample) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.QCSample, error)
	FindByNumber(ctx context.Context, sampleNumber string) (*model.QCSample, error)
	List(ctx context.Context, filter QCSampleFilter, offset, limit int) ([]model.QCSample, int64, error)
}

type qcSampleRepository struct {
	db *gorm.DB
}

func NewQCSampleRepository(db *gorm.DB) QCSampleRepository {
	return &qcSampleRepository{db: db}
}

func (r *qcSampleRepository) Create(ctx context.Context, s *model.QCSample) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *qcSampleRepository) Update(ctx context.Context, s *model.QCSample) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *qcSampleRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.QCSample{})
	return res.RowsAffected > 0, res.Error
}

func (r *qcSampleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.QCSample, error) {
	var s model.QCSample
	if err := GetDB(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *qcSampleRepository) FindByNumber(ctx context.Context, sampleNumber string) (*model.QCSample, error) {
	var s model.QCSample
	if err := GetDB(ctx, r.db).Where("sample_number = ?", sampleNumber).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

var qcSearchFields = map[string]bool{"sample_number": true, "result_notes": true}
var qcSortFields = map[string]bool{"sample_number": true, "status": true, "priority": true, "created_at": true}

func (r *qcSampleRepository) List(ctx context.Context, filter QCSampleFilter, offset, limit int) ([]model.QCSample, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.QCSample{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != "" {
		db = db.Where("assigned_to = ?", filter.AssignedTo)
	}
	db = applySearch(db, filter.Search, qcSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var samples []model.QCSample
	if err := applySort(db, filter.Sort, qcSortFields).Offset(offset).Limit(limit).Find(&samples).Error; err != nil {
		return nil, 0, err
	}
	return samples, total, nil
}
