package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrugStatus constants
const (
	DrugStatusDraft           = "DRAFT"
	DrugStatusPendingApproval = "PENDING_APPROVAL"
	DrugStatusApproved        = "APPROVED"
	DrugStatusRejected        = "REJECTED"
	DrugStatusDiscontinued    = "DISCONTINUED"
)

// Drug represents a finished product definition in the catalog
type Drug struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	DosageForm string         `gorm:"type:varchar(100)" json:"dosage_form"` // tablet, capsule, syrup...
	Strength   string         `gorm:"type:varchar(100)" json:"strength"`
	Status     string         `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Drug) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Material represents a raw or packaging material consumed in manufacturing
// and purchased through purchase orders
type Material struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code              string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	Unit              string         `gorm:"type:varchar(20);not null" json:"unit"` // kg, L, pcs
	StorageConditions string         `gorm:"type:varchar(255)" json:"storage_conditions"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
