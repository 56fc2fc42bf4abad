package rpc

// Service names on the bus
const (
	ServiceIdentity      = "identity"
	ServiceCatalog       = "catalog"
	ServiceProcurement   = "procurement"
	ServiceQuality       = "quality"
	ServiceManufacturing = "manufacturing"
	ServiceWarehouse     = "warehouse"
	ServiceAudit         = "audit"
)

// Message patterns. Each names exactly one use-case on a service's
// dispatcher.
const (
	RoleCreate           = "ROLE_CREATE"
	RoleList             = "ROLE_LIST"
	RoleGetByID          = "ROLE_GET_BY_ID"
	RoleUpdate           = "ROLE_UPDATE"
	RoleDelete           = "ROLE_DELETE"
	RoleAddPermission    = "ROLE_ADD_PERMISSION"
	RoleRemovePermission = "ROLE_REMOVE_PERMISSION"
	PermissionGetByID    = "PERMISSION_GET_BY_ID"
	PermissionList       = "PERMISSION_LIST"
	UsersCreate          = "USERS_CREATE"
	UsersList            = "USERS_LIST"
	UsersGetByID         = "USERS_GET_BY_ID"

	DrugsCreate  = "DRUGS_CREATE"
	DrugsList    = "DRUGS_LIST"
	DrugsGetByID = "DRUGS_GET_BY_ID"
	DrugsUpdate  = "DRUGS_UPDATE"
	DrugsDelete  = "DRUGS_DELETE"

	MaterialsCreate  = "MATERIALS_CREATE"
	MaterialsList    = "MATERIALS_LIST"
	MaterialsGetByID = "MATERIALS_GET_BY_ID"
	MaterialsUpdate  = "MATERIALS_UPDATE"
	MaterialsDelete  = "MATERIALS_DELETE"

	SuppliersCreate  = "SUPPLIERS_CREATE"
	SuppliersList    = "SUPPLIERS_LIST"
	SuppliersGetByID = "SUPPLIERS_GET_BY_ID"
	SuppliersUpdate  = "SUPPLIERS_UPDATE"
	SuppliersDelete  = "SUPPLIERS_DELETE"

	ContractCreate    = "CONTRACT_CREATE"
	ContractList      = "CONTRACT_LIST"
	ContractGetByID   = "CONTRACT_GET_BY_ID"
	ContractUpdate    = "CONTRACT_UPDATE"
	ContractDelete    = "CONTRACT_DELETE"
	ContractRenew     = "CONTRACT_RENEW"
	ContractTerminate = "CONTRACT_TERMINATE"

	PurchaseOrdersCreate  = "PURCHASE_ORDERS_CREATE"
	PurchaseOrdersList    = "PURCHASE_ORDERS_LIST"
	PurchaseOrdersGetByID = "PURCHASE_ORDERS_GET_BY_ID"
	PurchaseOrdersApprove = "PURCHASE_ORDERS_APPROVE"
	PurchaseOrdersCancel  = "PURCHASE_ORDERS_CANCEL"
	PurchaseOrdersReceive = "PURCHASE_ORDERS_RECEIVE"
	PurchaseOrdersDelete  = "PURCHASE_ORDERS_DELETE"

	QCSamplesCreate  = "QC_SAMPLES_CREATE"
	QCSamplesList    = "QC_SAMPLES_LIST"
	QCSamplesGetByID = "QC_SAMPLES_GET_BY_ID"
	QCSamplesUpdate  = "QC_SAMPLES_UPDATE" // action=assign|complete|fail
	QCSamplesDelete  = "QC_SAMPLES_DELETE"

	DeviationsCreate  = "DEVIATIONS_CREATE"
	DeviationsList    = "DEVIATIONS_LIST"
	DeviationsGetByID = "DEVIATIONS_GET_BY_ID"
	DeviationsUpdate  = "DEVIATIONS_UPDATE" // action=close
	DeviationsDelete  = "DEVIATIONS_DELETE"

	WorkOrdersCreate  = "WORK_ORDERS_CREATE"
	WorkOrdersList    = "WORK_ORDERS_LIST"
	WorkOrdersGetByID = "WORK_ORDERS_GET_BY_ID"
	WorkOrdersUpdate  = "WORK_ORDERS_UPDATE" // action=release|hold|complete|cancel
	WorkOrdersDelete  = "WORK_ORDERS_DELETE"

	BOMsCreate   = "BOMS_CREATE"
	BOMsList     = "BOMS_LIST"
	BOMsGetByID  = "BOMS_GET_BY_ID"
	BOMsActivate = "BOMS_ACTIVATE"

	BatchesCreate            = "BATCHES_CREATE"
	BatchesList              = "BATCHES_LIST"
	BatchesGetByID           = "BATCHES_GET_BY_ID"
	BatchesExecuteStep       = "BATCHES_EXECUTE_STEP"
	BatchesRecordConsumption = "BATCHES_RECORD_CONSUMPTION"
	BatchesSubmitToQC        = "BATCHES_SUBMIT_TO_QC"
	BatchesComplete          = "BATCHES_COMPLETE"
	BatchesReportFault       = "BATCHES_REPORT_FAULT"
	BatchesReceiveFG         = "BATCHES_RECEIVE_FINISHED_GOODS"
	BatchesDelete            = "BATCHES_DELETE"

	PutawaysCreate  = "PUTAWAYS_CREATE"
	PutawaysList    = "PUTAWAYS_LIST"
	PutawaysGetByID = "PUTAWAYS_GET_BY_ID"
	PutawaysUpdate  = "PUTAWAYS_UPDATE" // action=store

	AuditList = "AUDIT_LIST"
)
