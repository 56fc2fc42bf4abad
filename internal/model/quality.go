package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QCSampleSource constants
const (
	QCSourceGoodsReceipt = "GOODS_RECEIPT"
	QCSourceBatch        = "BATCH"
)

// QCSampleStatus constants
const (
	QCStatusPending    = "PENDING"
	QCStatusInProgress = "IN_PROGRESS"
	QCStatusCompleted  = "COMPLETED"
	QCStatusFailed     = "FAILED"
)

// QCSamplePriority constants
const (
	QCPriorityLow    = "LOW"
	QCPriorityMedium = "MEDIUM"
	QCPriorityHigh   = "HIGH"
)

// QCSample represents a sample drawn from a goods receipt or a production
// batch, waiting for lab testing
type QCSample struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SampleNumber string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"sample_number"`
	SourceType   string         `gorm:"type:varchar(30);not null" json:"source_type"` // GOODS_RECEIPT, BATCH
	SourceID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"source_id"`
	MaterialID   uuid.UUID      `gorm:"type:uuid;index" json:"material_id"`
	Status       string         `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Priority     string         `gorm:"type:varchar(10);not null;default:'MEDIUM';index" json:"priority"`
	AssignedTo   *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_to"`
	ResultNotes  string         `gorm:"type:text" json:"result_notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *QCSample) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DeviationStatus constants. Close is one-way.
const (
	DeviationStatusOpen               = "OPEN"
	DeviationStatusUnderInvestigation = "UNDER_INVESTIGATION"
	DeviationStatusCAPAPending        = "CAPA_PENDING"
	DeviationStatusClosed             = "CLOSED"
)

// DeviationSeverity constants
const (
	DeviationSeverityMinor    = "MINOR"
	DeviationSeverityMajor    = "MAJOR"
	DeviationSeverityCritical = "CRITICAL"
)

// Deviation records a non-conformance (e.g. a failed QC test) requiring
// investigation and closure
type Deviation struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DeviationNumber string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"deviation_number"`
	Severity        string         `gorm:"type:varchar(20);not null;index" json:"severity"`
	Status          string         `gorm:"type:varchar(30);not null;default:'OPEN';index" json:"status"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	RootCause       string         `gorm:"type:text" json:"root_cause"`
	CorrectiveAction string        `gorm:"type:text" json:"corrective_action"`
	ClosedBy        *uuid.UUID     `gorm:"type:uuid" json:"closed_by"`
	ClosedAt        *time.Time     `json:"closed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Deviation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
