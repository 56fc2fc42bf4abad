package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action names
const (
	ActionPurchaseOrderCreated   = "purchase-order-created"
	ActionPurchaseOrderApproved  = "purchase-order-approved"
	ActionPurchaseOrderCancelled = "purchase-order-cancelled"
	ActionPurchaseOrderReceived  = "purchase-order-received"
	ActionPurchaseOrderDeleted   = "purchase-order-deleted"
	ActionQCSampleCreated        = "qc-sample-created"
	ActionQCSampleAssigned       = "qc-sample-assigned"
	ActionQCSampleCompleted      = "qc-sample-completed"
	ActionQCSampleFailed         = "qc-sample-failed"
	ActionDeviationCreated       = "deviation-created"
	ActionDeviationUpdated       = "deviation-updated"
	ActionDeviationClosed        = "deviation-closed"
	ActionBatchCreated           = "batch-created"
	ActionBatchStepExecuted      = "batch-step-executed"
	ActionBatchSubmittedToQC     = "batch-submitted-to-qc"
	ActionBatchCompleted         = "batch-completed"
	ActionBatchFaultReported     = "batch-fault-reported"
	ActionFinishedGoodsReceived  = "finished-goods-received"
	ActionContractRenewed        = "contract-renewed"
	ActionContractTerminated     = "contract-terminated"
	ActionDrugApproved           = "drug-approved"
	ActionDrugRejected           = "drug-rejected"
	ActionRolePermissionAdded    = "role-permission-added"
	ActionRolePermissionRemoved  = "role-permission-removed"
	ActionDrugCreated            = "drug-created"
	ActionDrugUpdated            = "drug-updated"
	ActionDrugDeleted            = "drug-deleted"
	ActionDrugSubmitted          = "drug-submitted-for-approval"
	ActionDrugDiscontinued       = "drug-discontinued"
	ActionMaterialCreated        = "material-created"
	ActionMaterialUpdated        = "material-updated"
	ActionMaterialDeleted        = "material-deleted"
	ActionSupplierCreated        = "supplier-created"
	ActionSupplierUpdated        = "supplier-updated"
	ActionSupplierBlacklisted    = "supplier-blacklisted"
	ActionSupplierDeleted        = "supplier-deleted"
	ActionContractCreated        = "contract-created"
	ActionContractActivated      = "contract-activated"
	ActionContractDeleted        = "contract-deleted"
	ActionWorkOrderCreated       = "work-order-created"
	ActionWorkOrderReleased      = "work-order-released"
	ActionWorkOrderHeld          = "work-order-held"
	ActionWorkOrderCompleted     = "work-order-completed"
	ActionWorkOrderCancelled     = "work-order-cancelled"
	ActionWorkOrderDeleted       = "work-order-deleted"
	ActionBOMCreated             = "bom-created"
	ActionBOMActivated           = "bom-activated"
	ActionBOMDeleted             = "bom-deleted"
	ActionBatchDeleted           = "batch-deleted"
	ActionConsumptionRecorded    = "batch-consumption-recorded"
	ActionPutawayCreated         = "putaway-created"
	ActionPutawayStored          = "putaway-stored"
	ActionRoleCreated            = "role-created"
	ActionRoleUpdated            = "role-updated"
	ActionRoleDeleted            = "role-deleted"
	ActionPermissionCreated      = "permission-created"
	ActionPermissionDeleted      = "permission-deleted"
	ActionUserCreated            = "user-created"
	ActionUserUpdated            = "user-updated"
	ActionUserDeleted            = "user-deleted"
)

// AuditLog tracks who did what to which aggregate when. Writes are
// best-effort and never fail the parent command.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string    `gorm:"type:varchar(100);index" json:"actor_id"`
	ActorName  string    `gorm:"type:varchar(255)" json:"actor_name"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(100);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	RequestID  string    `gorm:"type:varchar(100);index" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
