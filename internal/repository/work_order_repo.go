package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkOrderFilter struct {
	rpc.ListQuery
	Status string `json:"status"`
	DrugID string `json:"drug_id"`
}

type WorkOrderRepository interface {
	Create(ctx context.Context, wo *model.WorkOrder) error
	Update(ctx context.Context, wo *model.WorkOrder) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	FindByNumber(ctx context.Context, number string) (*model.WorkOrder, error)
	List(ctx context.Context, filter WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
}

type workOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) Create(ctx context.Context, wo *model.WorkOrder) error {
	return GetDB(ctx, r.db).Create(wo).Error
}

func (r *workOrderRepository) Update(ctx context.Context, wo *model.WorkOrder) error {
	return GetDB(ctx, r.db).Save(wo).Error
}

func (r *workOrderRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WorkOrder{})
	return res.RowsAffected > 0, res.Error
}

func (r *workOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	if err := GetDB(ctx, r.db).First(&wo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepository) FindByNumber(ctx context.Context, number string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	if err := GetDB(ctx, r.db).Where("wo_number = ?", number).First(&wo).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

var woSearchFields = map[string]bool{"wo_number": true, "site_id": true}
var woSortFields = map[string]bool{"wo_number": true, "status": true, "priority": true, "planned_start": true, "created_at": true}

func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.WorkOrder{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.DrugID != "" {
		db = db.Where("drug_id = ?", filter.DrugID)
	}
	db = applySearch(db, filter.Search, woSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.WorkOrder
	if err := applySort(db, filter.Sort, woSortFields).Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *workOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.WorkOrder{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
