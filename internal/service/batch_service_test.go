package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mfgFixture struct {
	db        *gorm.DB
	workOrder *model.WorkOrder
	bom       *model.BOM
	batches   BatchService
	qcSamples *fakeQCSampleClient
	putaways  *fakePutawayClient
	materialA uuid.UUID
}

func newMfgFixture(t *testing.T) *mfgFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	drugID := uuid.New()
	materialA := uuid.New()

	bomRepo := repository.NewBOMRepository(db)
	bom := &model.BOM{
		BOMNumber: "BOM-001",
		DrugID:    drugID,
		Version:   1,
		Status:    model.BOMStatusActive,
		BatchSize: decimal.NewFromInt(100),
		Items: []model.BOMItem{
			{MaterialID: materialA, QuantityPerBatch: decimal.NewFromInt(20), Sequence: 1},
		},
	}
	require.NoError(t, bomRepo.Create(ctx, bom))

	woRepo := repository.NewWorkOrderRepository(db)
	wo := &model.WorkOrder{
		WONumber:        "WO-001",
		DrugID:          drugID,
		SiteID:          "SITE-1",
		PlannedQuantity: decimal.NewFromInt(200),
		Unit:            "kg",
		BOMVersion:      1,
		Status:          model.WOStatusPlanned,
		Priority:        "MEDIUM",
	}
	require.NoError(t, woRepo.Create(ctx, wo))

	qcSamples := &fakeQCSampleClient{reply: rpcclient.QCSampleRef{ID: uuid.NewString(), Status: model.QCStatusPending}}
	putaways := &fakePutawayClient{reply: rpcclient.PutawayRef{ID: uuid.NewString(), Status: model.PutawayStatusPending}}

	batches := NewBatchService(
		repository.NewBatchRepository(db),
		woRepo,
		bomRepo,
		qcSamples,
		putaways,
		repository.NewTransactionManager(db),
		newTestAudit(t, db),
	)

	return &mfgFixture{
		db:        db,
		workOrder: wo,
		bom:       bom,
		batches:   batches,
		qcSamples: qcSamples,
		putaways:  putaways,
		materialA: materialA,
	}
}

func (f *mfgFixture) createBatch(t *testing.T, number string) *model.Batch {
	t.Helper()
	batch, err := f.batches.Create(context.Background(), testCaller, testTracing, CreateBatchDTO{
		BatchNumber:     number,
		WorkOrderID:     f.workOrder.ID.String(),
		PlannedQuantity: "200",
		Steps: []BatchStepDTO{
			{StepNumber: 1, Instruction: "Dispense raw materials"},
			{StepNumber: 2, Instruction: "Blend for 30 minutes"},
		},
	})
	require.NoError(t, err)
	return batch
}

func (f *mfgFixture) executeAllSteps(t *testing.T, batchID string) {
	t.Helper()
	for _, step := range []int{1, 2} {
		_, err := f.batches.ExecuteStep(context.Background(), testCaller, testTracing, batchID, ExecuteStepDTO{
			StepNumber: step,
			Status:     model.StepStatusCompleted,
			ESignature: "sig-tester",
		})
		require.NoError(t, err)
	}
}

func TestBatchCreate(t *testing.T) {
	t.Run("seeds steps and scaled consumptions", func(t *testing.T) {
		f := newMfgFixture(t)

		batch := f.createBatch(t, "B-0001")
		assert.Equal(t, model.BatchStatusPlanned, batch.Status)
		assert.Equal(t, 1, batch.BOMVersion)
		require.Len(t, batch.Steps, 2)
		assert.Equal(t, model.StepStatusPending, batch.Steps[0].Status)

		// 200 planned over a 100-unit BOM batch doubles every line.
		require.Len(t, batch.Consumptions, 1)
		assert.True(t, batch.Consumptions[0].PlannedQuantity.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, model.ConsumptionStatusPending, batch.Consumptions[0].Status)
	})

	t.Run("starts the planned work order", func(t *testing.T) {
		f := newMfgFixture(t)

		f.createBatch(t, "B-0002")

		wo, err := repository.NewWorkOrderRepository(f.db).FindByID(context.Background(), f.workOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, model.WOStatusInProgress, wo.Status)
		assert.NotNil(t, wo.ActualStart)
	})

	t.Run("duplicate step numbers rejected", func(t *testing.T) {
		f := newMfgFixture(t)

		_, err := f.batches.Create(context.Background(), testCaller, testTracing, CreateBatchDTO{
			BatchNumber:     "B-0003",
			WorkOrderID:     f.workOrder.ID.String(),
			PlannedQuantity: "100",
			Steps: []BatchStepDTO{
				{StepNumber: 1, Instruction: "a"},
				{StepNumber: 1, Instruction: "b"},
			},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestBatchExecuteStep(t *testing.T) {
	t.Run("first step moves the batch in progress", func(t *testing.T) {
		f := newMfgFixture(t)
		batch := f.createBatch(t, "B-0010")

		updated, err := f.batches.ExecuteStep(context.Background(), testCaller, testTracing, batch.ID.String(), ExecuteStepDTO{
			StepNumber: 1,
			Status:     model.StepStatusCompleted,
			ESignature: "sig-tester",
		})
		require.NoError(t, err)
		assert.Equal(t, model.BatchStatusInProgress, updated.Status)
		assert.Equal(t, model.StepStatusCompleted, updated.Steps[0].Status)
		assert.NotNil(t, updated.Steps[0].PerformedAt)
	})

	t.Run("completed step cannot be re-executed", func(t *testing.T) {
		f := newMfgFixture(t)
		batch := f.createBatch(t, "B-0011")

		_, err := f.batches.ExecuteStep(context.Background(), testCaller, testTracing, batch.ID.String(), ExecuteStepDTO{
			StepNumber: 1, Status: model.StepStatusCompleted, ESignature: "sig-1",
		})
		require.NoError(t, err)

		_, err = f.batches.ExecuteStep(context.Background(), testCaller, testTracing, batch.ID.String(), ExecuteStepDTO{
			StepNumber: 1, Status: model.StepStatusCompleted, ESignature: "sig-2",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestBatchRecordConsumption(t *testing.T) {
	f := newMfgFixture(t)
	batch := f.createBatch(t, "B-0020")

	updated, err := f.batches.RecordConsumption(context.Background(), testCaller, testTracing, batch.ID.String(), RecordConsumptionDTO{
		MaterialID:     f.materialA.String(),
		LotNumber:      "LOT-77",
		ActualQuantity: "39.5",
	})
	require.NoError(t, err)

	require.Len(t, updated.Consumptions, 1, "posting against the planned line must not add a row")
	consumption := updated.Consumptions[0]
	assert.Equal(t, model.ConsumptionStatusConsumed, consumption.Status)
	assert.Equal(t, "LOT-77", consumption.BatchNumber)
	assert.True(t, consumption.ActualQuantity.Equal(decimal.RequireFromString("39.5")))
}

func TestBatchSubmitToQC(t *testing.T) {
	t.Run("creates a linked sample and parks the batch", func(t *testing.T) {
		f := newMfgFixture(t)
		batch := f.createBatch(t, "B-0030")
		f.executeAllSteps(t, batch.ID.String())

		submitted, err := f.batches.SubmitToQC(context.Background(), testCaller, testTracing, batch.ID.String(), SubmitBatchToQCDTO{
			SampleNumber: "QC-B-0030",
		})
		require.NoError(t, err)
		assert.Equal(t, model.BatchStatusQCPending, submitted.Status)
		require.NotNil(t, submitted.QCSampleID)

		require.Len(t, f.qcSamples.created, 1)
		cmd := f.qcSamples.created[0]
		assert.Equal(t, model.QCSourceBatch, cmd.SourceType)
		assert.Equal(t, batch.ID.String(), cmd.SourceID)
	})

	t.Run("unfinished steps block submission", func(t *testing.T) {
		f := newMfgFixture(t)
		batch := f.createBatch(t, "B-0031")

		_, err := f.batches.ExecuteStep(context.Background(), testCaller, testTracing, batch.ID.String(), ExecuteStepDTO{
			StepNumber: 1, Status: model.StepStatusCompleted, ESignature: "sig",
		})
		require.NoError(t, err)

		_, err = f.batches.SubmitToQC(context.Background(), testCaller, testTracing, batch.ID.String(), SubmitBatchToQCDTO{
			SampleNumber: "QC-B-0031",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
		assert.Empty(t, f.qcSamples.created, "no sample may be created when the guard fails")
	})
}

func TestBatchCompleteAndReceive(t *testing.T) {
	f := newMfgFixture(t)
	batch := f.createBatch(t, "B-0040")
	f.executeAllSteps(t, batch.ID.String())

	_, err := f.batches.SubmitToQC(context.Background(), testCaller, testTracing, batch.ID.String(), SubmitBatchToQCDTO{SampleNumber: "QC-B-0040"})
	require.NoError(t, err)

	completed, err := f.batches.Complete(context.Background(), testCaller, testTracing, batch.ID.String(), CompleteBatchDTO{ActualQuantity: "195"})
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, completed.Status)
	require.True(t, completed.ActualQuantity.Valid)

	received, err := f.batches.ReceiveFinishedGoods(context.Background(), testCaller, testTracing, batch.ID.String(), ReceiveFinishedGoodsDTO{
		PutawayNumber: "PUT-0040",
		Location:      "FG-A-01",
	})
	require.NoError(t, err)
	require.NotNil(t, received.PutawayID)

	require.Len(t, f.putaways.created, 1)
	cmd := f.putaways.created[0]
	assert.Equal(t, batch.ID.String(), cmd.BatchID)
	assert.Equal(t, "195", cmd.Quantity)

	// A second receipt must not create a second putaway.
	_, err = f.batches.ReceiveFinishedGoods(context.Background(), testCaller, testTracing, batch.ID.String(), ReceiveFinishedGoodsDTO{
		PutawayNumber: "PUT-0041",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Len(t, f.putaways.created, 1)
}

func TestBatchReportFault(t *testing.T) {
	f := newMfgFixture(t)
	batch := f.createBatch(t, "B-0050")

	flagged, err := f.batches.ReportFault(context.Background(), testCaller, testTracing, batch.ID.String(), ReportFaultDTO{
		Description: "temperature excursion during blending",
	})
	require.NoError(t, err)
	assert.True(t, flagged.HasFault)
	assert.Equal(t, model.BatchStatusPlanned, flagged.Status, "non-fatal fault keeps the lifecycle")

	failed, err := f.batches.ReportFault(context.Background(), testCaller, testTracing, batch.ID.String(), ReportFaultDTO{
		Description: "contamination confirmed",
		Fatal:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, failed.Status)
}
