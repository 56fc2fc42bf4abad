package repository

import (
	"context"

	"backend/internal/model"
	"backend/internal/rpc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PutawayFilter struct {
	rpc.ListQuery
	Status  string `json:"status"`
	BatchID string `json:"batch_id"`
}

type PutawayRepository interface {
	Create(ctx context.Context, p *model.Putaway) error
	Update(ctx context.Context, p *model.Putaway) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Putaway, error)
	FindByNumber(ctx context.Context, number string) (*model.Putaway, error)
	List(ctx context.Context, filter PutawayFilter, offset, limit int) ([]model.Putaway, int64, error)
}

type putawayRepository struct {
	db *gorm.DB
}

func NewPutawayRepository(db *gorm.DB) PutawayRepository {
	return &putawayRepository{db: db}
}

func (r *putawayRepository) Create(ctx context.Context, p *model.Putaway) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *putawayRepository) Update(ctx context.Context, p *model.Putaway) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *putawayRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Putaway, error) {
	var p model.Putaway
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *putawayRepository) FindByNumber(ctx context.Context, number string) (*model.Putaway, error) {
	var p model.Putaway
	if err := GetDB(ctx, r.db).Where("putaway_number = ?", number).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

var putawaySearchFields = map[string]bool{"putaway_number": true, "location": true}
var putawaySortFields = map[string]bool{"putaway_number": true, "status": true, "created_at": true}

func (r *putawayRepository) List(ctx context.Context, filter PutawayFilter, offset, limit int) ([]model.Putaway, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Putaway{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.BatchID != "" {
		db = db.Where("batch_id = ?", filter.BatchID)
	}
	db = applySearch(db, filter.Search, putawaySearchFields)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var putaways []model.Putaway
	if err := applySort(db, filter.Sort, putawaySortFields).Offset(offset).Limit(limit).Find(&putaways).Error; err != nil {
		return nil, 0, err
	}
	return putaways, total, nil
}
