package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchFilter struct {
	rpc.ListQuery
	Status      string `json:"status"`
	WorkOrderID string `json:"work_order_id"`
	DrugID      string `json:"drug_id"`
}

type BatchRepository interface {
	Create(ctx context.Context, b *model.Batch) error
	Update(ctx context.Context, b *model.Batch) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Batch, error)
	FindByNumber(ctx context.Context, number string) (*model.Batch, error)
	List(ctx context.Context, filter BatchFilter, offset, limit int) ([]model.Batch, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
	FindStep(ctx context.Context, batchID uuid.UUID, stepNumber int) (*model.BatchStep, error)
	UpdateStep(ctx context.Context, step *model.BatchStep) error
	FindConsumption(ctx context.Context, batchID, materialID uuid.UUID, lot string) (*model.MaterialConsumption, error)
	SaveConsumption(ctx context.Context, c *model.MaterialConsumption) error
}

type batchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, b *model.Batch) error {
	return GetDB(ctx, r.db).Create(b).Error
}

func (r *batchRepository) Update(ctx context.Context, b *model.Batch) error {
	return GetDB(ctx, r.db).Save(b).Error
}

func (r *batchRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Batch{})
	return res.RowsAffected > 0, res.Error
}

func (r *batchRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	var b model.Batch
	err := GetDB(ctx, r.db).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_number asc") }).
		Preload("Consumptions").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *batchRepository) FindByNumber(ctx context.Context, number string) (*model.Batch, error) {
	var b model.Batch
	if err := GetDB(ctx, r.db).Where("batch_number = ?", number).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

var batchSearchFields = map[string]bool{"batch_number": true, "site_id": true}
var batchSortFields = map[string]bool{"batch_number": true, "status": true, "priority": true, "created_at": true}

func (r *batchRepository) List(ctx context.Context, filter BatchFilter, offset, limit int) ([]model.Batch, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Batch{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.WorkOrderID != "" {
		db = db.Where("work_order_id = ?", filter.WorkOrderID)
	}
	if filter.DrugID != "" {
		db = db.Where("drug_id = ?", filter.DrugID)
	}
	db = applySearch(db, filter.Search, batchSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []model.Batch
	if err := applySort(db, filter.Sort, batchSortFields).Offset(offset).Limit(limit).Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (r *batchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Batch{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *batchRepository) FindStep(ctx context.Context, batchID uuid.UUID, stepNumber int) (*model.BatchStep, error) {
	var step model.BatchStep
	err := GetDB(ctx, r.db).
		Where("batch_id = ? AND step_number = ?", batchID, stepNumber).
		First(&step).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *batchRepository) UpdateStep(ctx context.Context, step *model.BatchStep) error {
	return GetDB(ctx, r.db).Save(step).Error
}

func (r *batchRepository) FindConsumption(ctx context.Context, batchID, materialID uuid.UUID, lot string) (*model.MaterialConsumption, error) {
	var c model.MaterialConsumption
	err := GetDB(ctx, r.db).
		Where("batch_id = ? AND material_id = ? AND batch_number = ?", batchID, materialID, lot).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *batchRepository) SaveConsumption(ctx context.Context, c *model.MaterialConsumption) error {
	return GetDB(ctx, r.db).Save(c).Error
}
