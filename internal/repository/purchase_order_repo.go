package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderFilter narrows a purchase order list query
type PurchaseOrderFilter struct {
	rpc.ListQuery
	Status     string `json:"status"`
	SupplierID string `json:"supplier_id"`
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	Update(ctx context.Context, po *model.PurchaseOrder) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByNumber(ctx context.Context, poNumber string) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter, offset, limit int) ([]model.PurchaseOrder, int64, error)
	// UpdateStatus performs a compare-and-swap status transition: the write
	// lands only if the current status is one of from. Returns whether a row
	// was updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(po).Error
}

func (r *purchaseOrderRepository) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Save(po).Error
}

func (r *purchaseOrderRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PurchaseOrder{})
	return res.RowsAffected > 0, res.Error
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).Preload("Items").First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).Preload("Items").Where("po_number = ?", poNumber).First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

var poSearchFields = map[string]bool{"po_number": true, "site_id": true}
var poSortFields = map[string]bool{"po_number": true, "status": true, "expected_date": true, "total_amount": true, "created_at": true}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter, offset, limit int) ([]model.PurchaseOrder, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != "" {
		db = db.Where("supplier_id = ?", filter.SupplierID)
	}
	db = applySearch(db, filter.Search, poSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.PurchaseOrder
	db = applySort(db, filter.Sort, poSortFields)
	if err := db.Preload("Items").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
