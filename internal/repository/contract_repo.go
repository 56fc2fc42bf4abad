package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractFilter struct {
	rpc.ListQuery
	Status     string `json:"status"`
	SupplierID string `json:"supplier_id"`
}

type ContractRepository interface {
	Create(ctx context.Context, c *model.Contract) error
	Update(ctx context.Context, c *model.Contract) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	FindByNumber(ctx context.Context, number string) (*model.Contract, error)
	List(ctx context.Context, filter ContractFilter, offset, limit int) ([]model.Contract, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, c *model.Contract) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *contractRepository) Update(ctx context.Context, c *model.Contract) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *contractRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Contract{})
	return res.RowsAffected > 0, res.Error
}

func (r *contractRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	if err := GetDB(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepository) FindByNumber(ctx context.Context, number string) (*model.Contract, error) {
	var c model.Contract
	if err := GetDB(ctx, r.db).Where("contract_number = ?", number).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

var contractSearchFields = map[string]bool{"contract_number": true}
var contractSortFields = map[string]bool{"contract_number": true, "status": true, "start_date": true, "end_date": true, "value": true, "created_at": true}

func (r *contractRepository) List(ctx context.Context, filter ContractFilter, offset, limit int) ([]model.Contract, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Contract{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != "" {
		db = db.Where("supplier_id = ?", filter.SupplierID)
	}
	db = applySearch(db, filter.Search, contractSearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []model.Contract
	if err := applySort(db, filter.Sort, contractSortFields).Offset(offset).Limit(limit).Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *contractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Contract{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
