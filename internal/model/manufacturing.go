package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkOrderStatus constants
const (
	WOStatusDraft      = "DRAFT"
	WOStatusPlanned    = "PLANNED"
	WOStatusInProgress = "IN_PROGRESS"
	WOStatusOnHold     = "ON_HOLD"
	WOStatusCompleted  = "COMPLETED"
	WOStatusCancelled  = "CANCELLED"
)

// WorkOrder represents a planned production run for a drug
type WorkOrder struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	WONumber        string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"wo_number"`
	DrugID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"drug_id"`
	SiteID          string          `gorm:"type:varchar(100);not null" json:"site_id"`
	PlannedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"planned_quantity"`
	Unit            string          `gorm:"type:varchar(20);not null" json:"unit"`
	BOMVersion      int             `gorm:"not null" json:"bom_version"`
	Status          string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Priority        string          `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	PlannedStart    time.Time       `json:"planned_start"`
	PlannedEnd      time.Time       `json:"planned_end"`
	ActualStart     *time.Time      `json:"actual_start"`
	ActualEnd       *time.Time      `json:"actual_end"`
	AssignedTo      *uuid.UUID      `gorm:"type:uuid" json:"assigned_to"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// BatchStatus constants
const (
	BatchStatusDraft      = "DRAFT"
	BatchStatusPlanned    = "PLANNED"
	BatchStatusInProgress = "IN_PROGRESS"
	BatchStatusQCPending  = "QC_PENDING"
	BatchStatusCompleted  = "COMPLETED"
	BatchStatusCancelled  = "CANCELLED"
	BatchStatusFailed     = "FAILED"
)

// Batch is one production run of a WorkOrder, tracked step by step
type Batch struct {
	ID               uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	BatchNumber      string                `gorm:"type:varchar(100);uniqueIndex;not null" json:"batch_number"`
	WorkOrderID      uuid.UUID             `gorm:"type:uuid;not null;index" json:"work_order_id"`
	DrugID           uuid.UUID             `gorm:"type:uuid;not null;index" json:"drug_id"`
	SiteID           string                `gorm:"type:varchar(100);not null" json:"site_id"`
	PlannedQuantity  decimal.Decimal       `gorm:"type:decimal(18,4);not null" json:"planned_quantity"`
	ActualQuantity   decimal.NullDecimal   `gorm:"type:decimal(18,4)" json:"actual_quantity"` // set on completion
	BOMVersion       int                   `gorm:"not null" json:"bom_version"`
	Status           string                `gorm:"type:varchar(20);not null;default:'PLANNED';index" json:"status"`
	Priority         string                `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	HasFault         bool                  `gorm:"default:false" json:"has_fault"`
	FaultDescription string                `gorm:"type:text" json:"fault_description"`
	QCSampleID       *uuid.UUID            `gorm:"type:uuid" json:"qc_sample_id"` // set when submitted to QC
	PutawayID        *uuid.UUID            `gorm:"type:uuid" json:"putaway_id"`   // set on receipt of finished goods
	Steps            []BatchStep           `gorm:"foreignKey:BatchID" json:"steps"`
	Consumptions     []MaterialConsumption `gorm:"foreignKey:BatchID" json:"consumptions"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	DeletedAt        gorm.DeletedAt        `gorm:"index" json:"-"`
}

func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BatchStepStatus constants
const (
	StepStatusPending    = "PENDING"
	StepStatusInProgress = "IN_PROGRESS"
	StepStatusCompleted  = "COMPLETED"
	StepStatusSkipped    = "SKIPPED"
	StepStatusFailed     = "FAILED"
)

// BatchStep is one execution step within a batch. StepNumber is the
// execution order, unique within the batch.
type BatchStep struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_batch_step" json:"batch_id"`
	StepNumber  int        `gorm:"not null;uniqueIndex:idx_batch_step" json:"step_number"`
	Instruction string     `gorm:"type:text;not null" json:"instruction"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PerformedBy *uuid.UUID `gorm:"type:uuid" json:"performed_by"`
	PerformedAt *time.Time `json:"performed_at"`
	ESignature  string     `gorm:"type:varchar(255)" json:"e_signature"`
	Parameters  string     `gorm:"type:text" json:"parameters"`  // serialized structured parameters
	Attachments string     `gorm:"type:text" json:"attachments"` // serialized attachment refs
}

func (s *BatchStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ConsumptionStatus constants
const (
	ConsumptionStatusPending  = "PENDING"
	ConsumptionStatusConsumed = "CONSUMED"
	ConsumptionStatusRejected = "REJECTED"
)

// MaterialConsumption records planned vs actual consumed quantity of a
// material lot within a batch. Tolerance is informational, taken from the
// BOM item; actual vs planned comparison is the caller's concern.
type MaterialConsumption struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	BatchNumber     string          `gorm:"type:varchar(100)" json:"batch_number"` // lot number of the consumed material
	PlannedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"planned_quantity"`
	ActualQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"actual_quantity"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (c *MaterialConsumption) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BOMStatus constants
const (
	BOMStatusDraft       = "DRAFT"
	BOMStatusUnderReview = "UNDER_REVIEW"
	BOMStatusApproved    = "APPROVED"
	BOMStatusActive      = "ACTIVE"
	BOMStatusObsolete    = "OBSOLETE"
)

// BOM is a versioned recipe for producing a drug. Version increases
// monotonically per drug; only one version may be Active at a time.
type BOM struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BOMNumber    string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"bom_number"`
	DrugID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_bom_drug_version" json:"drug_id"`
	Version      int             `gorm:"not null;uniqueIndex:idx_bom_drug_version" json:"version"`
	Status       string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	BatchSize    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"batch_size"`
	YieldPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:100" json:"yield_percent"`
	Items        []BOMItem       `gorm:"foreignKey:BOMID" json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (b *BOM) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BOMItem is one material line of a BOM, ordered by Sequence
type BOMItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BOMID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"bom_id"`
	MaterialID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	QuantityPerBatch decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_per_batch"`
	TolerancePercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"tolerance_percent"`
	IsCritical       bool            `gorm:"default:false" json:"is_critical"`
	Sequence         int             `gorm:"not null" json:"sequence"`
}

func (i *BOMItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
