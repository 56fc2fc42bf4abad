package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierStatus constants
const (
	SupplierStatusActive      = "ACTIVE"
	SupplierStatusBlacklisted = "BLACKLISTED"
)

// Supplier represents an approved vendor of materials
type Supplier struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Contact   string         `gorm:"type:varchar(255)" json:"contact"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Status    string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ContractStatus constants
const (
	ContractStatusDraft      = "DRAFT"
	ContractStatusActive     = "ACTIVE"
	ContractStatusExpired    = "EXPIRED"
	ContractStatusTerminated = "TERMINATED"
)

// Contract represents a supply agreement with a supplier
type Contract struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNumber string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"contract_number"`
	SupplierID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier       *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Value          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"value"`
	Status         string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PurchaseOrderStatus constants. Transitions only move forward except
// Cancel, which is terminal from any non-terminal state.
const (
	POStatusDraft             = "DRAFT"
	POStatusPendingApproval   = "PENDING_APPROVAL"
	POStatusApproved          = "APPROVED"
	POStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	POStatusFullyReceived     = "FULLY_RECEIVED"
	POStatusCancelled         = "CANCELLED"
	POStatusRejected          = "REJECTED"
)

// PurchaseOrder represents an order of materials placed with a supplier.
// TotalAmount is derived: it must equal the sum of item totals at creation.
type PurchaseOrder struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	PONumber     string              `gorm:"type:varchar(100);uniqueIndex;not null" json:"po_number"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier     *Supplier           `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	SiteID       string              `gorm:"type:varchar(100);not null" json:"site_id"`
	ExpectedDate time.Time           `json:"expected_date"`
	Status       string              `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	DeletedAt    gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (po *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	return nil
}

// PurchaseOrderItem is a line item within a PurchaseOrder.
// TotalPrice = Quantity * UnitPrice.
type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	MaterialID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"received_quantity"`
}

func (i *PurchaseOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
