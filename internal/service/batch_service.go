package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type BatchStepDTO struct {
	StepNumber  int    `json:"step_number" binding:"required,min=1"`
	Instruction string `json:"instruction" binding:"required"`
}

type CreateBatchDTO struct {
	BatchNumber     string         `json:"batch_number" binding:"required"`
	WorkOrderID     string         `json:"work_order_id" binding:"required,uuid"`
	PlannedQuantity string         `json:"planned_quantity" binding:"required"`
	Priority        string         `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Steps           []BatchStepDTO `json:"steps" binding:"required,min=1,dive"`
}

type ExecuteStepDTO struct {
	StepNumber int    `json:"step_number" binding:"required,min=1"`
	Status     string `json:"status" binding:"required,oneof=COMPLETED SKIPPED FAILED"`
	ESignature string `json:"e_signature" binding:"required"`
	Parameters string `json:"parameters"`
}

type RecordConsumptionDTO struct {
	MaterialID     string `json:"material_id" binding:"required,uuid"`
	LotNumber      string `json:"lot_number" binding:"required"`
	ActualQuantity string `json:"actual_quantity" binding:"required"`
}

type SubmitBatchToQCDTO struct {
	SampleNumber string `json:"sample_number" binding:"required"`
	Priority     string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
}

type CompleteBatchDTO struct {
	ActualQuantity string `json:"actual_quantity" binding:"required"`
}

type ReportFaultDTO struct {
	Description string `json:"description" binding:"required"`
	Fatal       bool   `json:"fatal"`
}

type ReceiveFinishedGoodsDTO struct {
	PutawayNumber string `json:"putaway_number" binding:"required"`
	Location      string `json:"location"`
}

// --- Interface ---

type BatchService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateBatchDTO) (*model.Batch, error)
	ExecuteStep(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ExecuteStepDTO) (*model.Batch, error)
	RecordConsumption(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RecordConsumptionDTO) (*model.Batch, error)
	SubmitToQC(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req SubmitBatchToQCDTO) (*model.Batch, error)
	Complete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CompleteBatchDTO) (*model.Batch, error)
	ReportFault(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ReportFaultDTO) (*model.Batch, error)
	ReceiveFinishedGoods(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ReceiveFinishedGoodsDTO) (*model.Batch, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*model.Batch, error)
	List(ctx context.Context, filter repository.BatchFilter) (rpc.Page, error)
}

type batchService struct {
	repo       repository.BatchRepository
	workOrders repository.WorkOrderRepository
	boms       repository.BOMRepository
	qcSamples  rpcclient.QCSampleClient
	putaways   rpcclient.PutawayClient
	tx         repository.TransactionManager
	audit      AuditService
}

func NewBatchService(
	repo repository.BatchRepository,
	workOrders repository.WorkOrderRepository,
	boms repository.BOMRepository,
	qcSamples rpcclient.QCSampleClient,
	putaways rpcclient.PutawayClient,
	tx repository.TransactionManager,
	audit AuditService,
) BatchService {
	return &batchService{
		repo:       repo,
		workOrders: workOrders,
		boms:       boms,
		qcSamples:  qcSamples,
		putaways:   putaways,
		tx:         tx,
		audit:      audit,
	}
}

// --- Implementation ---

// Create opens a batch under a released work order. Steps come from the
// command; planned consumptions are seeded from the work order's BOM version,
// scaled by planned quantity over the BOM batch size.
func (s *batchService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateBatchDTO) (*model.Batch, error) {
	woID, err := parseID(req.WorkOrderID, "work_order_id")
	if err != nil {
		return nil, err
	}

	wo, err := s.workOrders.FindByID(ctx, woID)
	if err != nil {
		return nil, notFoundOr(err, "workOrderNotFound", "work order %s not found", req.WorkOrderID)
	}
	switch wo.Status {
	case model.WOStatusPlanned, model.WOStatusInProgress:
	default:
		return nil, apperr.BadRequest("workOrderNotReleased", "work order %s is %s", wo.WONumber, wo.Status)
	}

	quantity, err := decimal.NewFromString(req.PlannedQuantity)
	if err != nil || !quantity.IsPositive() {
		return nil, apperr.Validation(apperr.FieldError{Field: "planned_quantity", Reason: "must be a positive decimal"})
	}

	seen := make(map[int]bool, len(req.Steps))
	steps := make([]model.BatchStep, 0, len(req.Steps))
	for i, step := range req.Steps {
		if seen[step.StepNumber] {
			return nil, apperr.Validation(apperr.FieldError{Field: "steps[" + itoa(i) + "].step_number", Reason: "duplicate step number"})
		}
		seen[step.StepNumber] = true
		steps = append(steps, model.BatchStep{
			StepNumber:  step.StepNumber,
			Instruction: step.Instruction,
			Status:      model.StepStatusPending,
		})
	}

	bom, err := s.boms.FindByDrugVersion(ctx, wo.DrugID, wo.BOMVersion)
	if err != nil {
		return nil, notFoundOr(err, "bomVersionNotFound", "bom version %d for drug %s not found", wo.BOMVersion, wo.DrugID)
	}

	_, lookupErr := s.repo.FindByNumber(ctx, req.BatchNumber)
	if err := checkUnique(lookupErr, "batchNumberExists", "batch %s already exists", req.BatchNumber); err != nil {
		return nil, err
	}

	scale := quantity.Div(bom.BatchSize)
	consumptions := make([]model.MaterialConsumption, 0, len(bom.Items))
	for _, item := range bom.Items {
		consumptions = append(consumptions, model.MaterialConsumption{
			MaterialID:      item.MaterialID,
			PlannedQuantity: item.QuantityPerBatch.Mul(scale),
			Status:          model.ConsumptionStatusPending,
		})
	}

	batch := model.Batch{
		BatchNumber:     req.BatchNumber,
		WorkOrderID:     wo.ID,
		DrugID:          wo.DrugID,
		SiteID:          wo.SiteID,
		PlannedQuantity: quantity,
		BOMVersion:      wo.BOMVersion,
		Status:          model.BatchStatusPlanned,
		Priority:        req.Priority,
		Steps:           steps,
		Consumptions:    consumptions,
	}
	if batch.Priority == "" {
		batch.Priority = wo.Priority
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &batch); err != nil {
			return err
		}
		if wo.Status == model.WOStatusPlanned {
			now := time.Now()
			wo.Status = model.WOStatusInProgress
			wo.ActualStart = &now
			return s.workOrders.Update(txCtx, wo)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("create batch: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBatchCreated, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"work_order_id": batch.WorkOrderID.String(),
		"bom_version":   batch.BOMVersion,
	})

	return &batch, nil
}

// ExecuteStep records the outcome of one step. A Completed step is immutable;
// re-execution is rejected rather than overwritten.
func (s *batchService) ExecuteStep(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ExecuteStepDTO) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	switch batch.Status {
	case model.BatchStatusPlanned, model.BatchStatusInProgress:
	default:
		return nil, apperr.BadRequest("batchNotExecutable", "batch %s is %s", batch.BatchNumber, batch.Status)
	}

	step, err := s.repo.FindStep(ctx, batchID, req.StepNumber)
	if err != nil {
		return nil, notFoundOr(err, "stepNotFound", "step %d of batch %s not found", req.StepNumber, batch.BatchNumber)
	}
	if step.Status == model.StepStatusCompleted {
		return nil, apperr.Conflict("stepAlreadyCompleted", "step %d of batch %s is already completed", step.StepNumber, batch.BatchNumber)
	}

	now := time.Now()
	step.Status = req.Status
	step.PerformedAt = &now
	step.ESignature = req.ESignature
	step.Parameters = req.Parameters
	if performer, err := parseID(caller.ID, "user"); err == nil {
		step.PerformedBy = &performer
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateStep(txCtx, step); err != nil {
			return err
		}
		if batch.Status == model.BatchStatusPlanned {
			updated, err := s.repo.UpdateStatus(txCtx, batchID, []string{model.BatchStatusPlanned}, model.BatchStatusInProgress)
			if err != nil {
				return err
			}
			if updated {
				batch.Status = model.BatchStatusInProgress
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("execute step: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBatchStepExecuted, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"step_number": step.StepNumber,
		"status":      step.Status,
	})

	return s.repo.FindByID(ctx, batchID)
}

// RecordConsumption posts the actual quantity against a planned line. An
// unplanned material and lot creates a new consumption line.
func (s *batchService) RecordConsumption(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RecordConsumptionDTO) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	switch batch.Status {
	case model.BatchStatusPlanned, model.BatchStatusInProgress:
	default:
		return nil, apperr.BadRequest("batchNotExecutable", "batch %s is %s", batch.BatchNumber, batch.Status)
	}

	materialID, err := parseID(req.MaterialID, "material_id")
	if err != nil {
		return nil, err
	}

	actual, err := decimal.NewFromString(req.ActualQuantity)
	if err != nil || actual.IsNegative() {
		return nil, apperr.Validation(apperr.FieldError{Field: "actual_quantity", Reason: "must be a non-negative decimal"})
	}

	consumption, err := s.repo.FindConsumption(ctx, batchID, materialID, req.LotNumber)
	if err != nil {
		// Fall back to an unlotted planned line before creating a new one.
		var planned *model.MaterialConsumption
		for i := range batch.Consumptions {
			c := &batch.Consumptions[i]
			if c.MaterialID == materialID && c.BatchNumber == "" && c.Status == model.ConsumptionStatusPending {
				planned = c
				break
			}
		}
		if planned != nil {
			consumption = planned
		} else {
			consumption = &model.MaterialConsumption{
				BatchID:    batchID,
				MaterialID: materialID,
			}
		}
	}

	consumption.BatchNumber = req.LotNumber
	consumption.ActualQuantity = actual
	consumption.Status = model.ConsumptionStatusConsumed

	if err := s.repo.SaveConsumption(ctx, consumption); err != nil {
		return nil, apperr.Internal("record consumption: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionConsumptionRecorded, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"material_id":     req.MaterialID,
		"lot_number":      req.LotNumber,
		"actual_quantity": actual.String(),
	})

	return s.repo.FindByID(ctx, batchID)
}

// SubmitToQC requires every step resolved, then asks the quality service for
// a sample over the bus. The sample create and the local status change are
// separate writes: if the status update fails after the sample exists, the
// link is still recorded on the batch by id.
func (s *batchService) SubmitToQC(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req SubmitBatchToQCDTO) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	if batch.Status != model.BatchStatusInProgress {
		return nil, apperr.BadRequest("batchNotInProgress", "batch %s is %s", batch.BatchNumber, batch.Status)
	}
	for _, step := range batch.Steps {
		if step.Status == model.StepStatusPending || step.Status == model.StepStatusInProgress {
			return nil, apperr.BadRequest("stepsUnfinished", "step %d of batch %s is not finished", step.StepNumber, batch.BatchNumber)
		}
	}

	sample, err := s.qcSamples.Create(ctx, caller, rpcclient.CreateQCSampleCmd{
		SampleNumber: req.SampleNumber,
		SourceType:   model.QCSourceBatch,
		SourceID:     batch.ID.String(),
		Priority:     req.Priority,
	})
	if err != nil {
		return nil, err
	}

	sampleID, err := parseID(sample.ID, "qc_sample_id")
	if err != nil {
		return nil, apperr.Internal("quality service returned invalid sample id %q", sample.ID)
	}

	batch.QCSampleID = &sampleID
	batch.Status = model.BatchStatusQCPending
	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, apperr.Internal("update batch after qc submit: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBatchSubmittedToQC, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"qc_sample_id":  sample.ID,
		"sample_number": sample.SampleNumber,
	})

	return batch, nil
}

func (s *batchService) Complete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req CompleteBatchDTO) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	if batch.Status != model.BatchStatusQCPending {
		return nil, apperr.BadRequest("batchNotQCPending", "batch %s is %s", batch.BatchNumber, batch.Status)
	}

	actual, err := decimal.NewFromString(req.ActualQuantity)
	if err != nil || actual.IsNegative() {
		return nil, apperr.Validation(apperr.FieldError{Field: "actual_quantity", Reason: "must be a non-negative decimal"})
	}

	updated, err := s.repo.UpdateStatus(ctx, batchID, []string{model.BatchStatusQCPending}, model.BatchStatusCompleted)
	if err != nil {
		return nil, apperr.Internal("complete batch: %s", err.Error())
	}
	if !updated {
		return nil, apperr.Conflict("concurrentUpdate", "batch %s was modified concurrently", batch.BatchNumber)
	}

	batch.Status = model.BatchStatusCompleted
	batch.ActualQuantity = decimal.NewNullDecimal(actual)
	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, apperr.Internal("update batch: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBatchCompleted, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"actual_quantity": actual.String(),
	})

	return batch, nil
}

// ReportFault flags the batch. A fatal fault fails the batch outright; a
// non-fatal one leaves the lifecycle where it is.
func (s *batchService) ReportFault(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ReportFaultDTO) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	switch batch.Status {
	case model.BatchStatusCompleted, model.BatchStatusCancelled:
		return nil, apperr.Conflict("batchFinished", "batch %s is %s", batch.BatchNumber, batch.Status)
	}

	batch.HasFault = true
	batch.FaultDescription = req.Description
	if req.Fatal {
		batch.Status = model.BatchStatusFailed
	}

	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, apperr.Internal("report fault: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBatchFaultReported, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"description": req.Description,
		"fatal":       req.Fatal,
	})

	return batch, nil
}

// ReceiveFinishedGoods registers the completed batch with the warehouse and
// links the resulting putaway.
func (s *batchService) ReceiveFinishedGoods(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req ReceiveFinishedGoodsDTO) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	if batch.Status != model.BatchStatusCompleted {
		return nil, apperr.BadRequest("batchNotCompleted", "batch %s is %s", batch.BatchNumber, batch.Status)
	}
	if batch.PutawayID != nil {
		return nil, apperr.Conflict("alreadyReceived", "batch %s already has a putaway", batch.BatchNumber)
	}
	if !batch.ActualQuantity.Valid {
		return nil, apperr.Conflict("missingActualQuantity", "batch %s has no recorded actual quantity", batch.BatchNumber)
	}

	putaway, err := s.putaways.Create(ctx, caller, rpcclient.CreatePutawayCmd{
		PutawayNumber: req.PutawayNumber,
		BatchID:       batch.ID.String(),
		DrugID:        batch.DrugID.String(),
		Quantity:      batch.ActualQuantity.Decimal.String(),
		Location:      req.Location,
	})
	if err != nil {
		return nil, err
	}

	putawayID, err := parseID(putaway.ID, "putaway_id")
	if err != nil {
		return nil, apperr.Internal("warehouse service returned invalid putaway id %q", putaway.ID)
	}

	batch.PutawayID = &putawayID
	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, apperr.Internal("update batch after receipt: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionFinishedGoodsReceived, batch.ID.String(), batch.BatchNumber, map[string]interface{}{
		"putaway_id":     putaway.ID,
		"putaway_number": putaway.PutawayNumber,
	})

	return batch, nil
}

func (s *batchService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	batchID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	if batch.Status == model.BatchStatusInProgress || batch.Status == model.BatchStatusQCPending {
		return apperr.Conflict("batchActive", "batch %s is %s", batch.BatchNumber, batch.Status)
	}

	if _, err := s.repo.SoftDelete(ctx, batchID); err != nil {
		return apperr.Internal("delete batch: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionBatchDeleted, batch.ID.String(), batch.BatchNumber, nil)
	return nil
}

func (s *batchService) GetByID(ctx context.Context, id string) (*model.Batch, error) {
	batchID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batchNotFound", "batch %s not found", id)
	}
	return batch, nil
}

func (s *batchService) List(ctx context.Context, filter repository.BatchFilter) (rpc.Page, error) {
	p := pagination.Clamp(filter.Page, filter.Limit)
	batches, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list batches: %s", err.Error())
	}
	return rpc.Page{Docs: batches, Limit: p.Limit, Page: p.Page, Total: total}, nil
}
