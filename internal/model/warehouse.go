package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PutawayStatus constants
const (
	PutawayStatusPending = "PENDING"
	PutawayStatusStored  = "STORED"
)

// Putaway records finished goods entering warehouse storage
type Putaway struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PutawayNumber string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"putaway_number"`
	BatchID       *uuid.UUID      `gorm:"type:uuid;index" json:"batch_id"`
	DrugID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"drug_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Location      string          `gorm:"type:varchar(100)" json:"location"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Putaway) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
