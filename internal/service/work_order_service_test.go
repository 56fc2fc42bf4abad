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
)

type woFixture struct {
	svc    WorkOrderService
	drugs  *fakeDrugClient
	drugID string
}

func newWOFixture(t *testing.T) *woFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	drugID := uuid.NewString()
	drugs := &fakeDrugClient{drugs: map[string]rpcclient.DrugRef{
		drugID: {ID: drugID, Code: "DRG-100", Name: "Amoxicillin", Status: model.DrugStatusApproved},
	}}

	bomRepo := repository.NewBOMRepository(db)
	require.NoError(t, bomRepo.Create(ctx, &model.BOM{
		BOMNumber: "BOM-WO-1",
		DrugID:    uuid.MustParse(drugID),
		Version:   1,
		Status:    model.BOMStatusActive,
		BatchSize: decimal.NewFromInt(100),
		Items: []model.BOMItem{
			{MaterialID: uuid.New(), QuantityPerBatch: decimal.NewFromInt(10), Sequence: 1},
		},
	}))

	svc := NewWorkOrderService(repository.NewWorkOrderRepository(db), bomRepo, drugs, newTestAudit(t, db))
	return &woFixture{svc: svc, drugs: drugs, drugID: drugID}
}

func (f *woFixture) create(t *testing.T, number string) *model.WorkOrder {
	t.Helper()
	wo, err := f.svc.Create(context.Background(), testCaller, testTracing, CreateWorkOrderDTO{
		WONumber:        number,
		DrugID:          f.drugID,
		SiteID:          "SITE-1",
		PlannedQuantity: "500",
		Unit:            "kg",
		BOMVersion:      1,
	})
	require.NoError(t, err)
	return wo
}

func TestWorkOrderCreate(t *testing.T) {
	t.Run("new order starts as draft", func(t *testing.T) {
		f := newWOFixture(t)
		wo := f.create(t, "WO-100")
		assert.Equal(t, model.WOStatusDraft, wo.Status)
	})

	t.Run("drug must be approved", func(t *testing.T) {
		f := newWOFixture(t)
		draftDrug := uuid.NewString()
		f.drugs.drugs[draftDrug] = rpcclient.DrugRef{ID: draftDrug, Status: model.DrugStatusDraft}

		_, err := f.svc.Create(context.Background(), testCaller, testTracing, CreateWorkOrderDTO{
			WONumber:        "WO-101",
			DrugID:          draftDrug,
			SiteID:          "SITE-1",
			PlannedQuantity: "10",
			Unit:            "kg",
			BOMVersion:      1,
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})

	t.Run("bom version must exist", func(t *testing.T) {
		f := newWOFixture(t)

		_, err := f.svc.Create(context.Background(), testCaller, testTracing, CreateWorkOrderDTO{
			WONumber:        "WO-102",
			DrugID:          f.drugID,
			SiteID:          "SITE-1",
			PlannedQuantity: "10",
			Unit:            "kg",
			BOMVersion:      9,
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestWorkOrderLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("release then hold and resume", func(t *testing.T) {
		f := newWOFixture(t)
		wo := f.create(t, "WO-110")

		released, err := f.svc.Release(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.WOStatusPlanned, released.Status)

		held, err := f.svc.Hold(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.WOStatusOnHold, held.Status)

		resumed, err := f.svc.Resume(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.WOStatusInProgress, resumed.Status)

		completed, err := f.svc.Complete(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.WOStatusCompleted, completed.Status)
		assert.NotNil(t, completed.ActualEnd)
	})

	t.Run("draft cannot be held", func(t *testing.T) {
		f := newWOFixture(t)
		wo := f.create(t, "WO-111")

		_, err := f.svc.Hold(ctx, testCaller, testTracing, wo.ID.String())
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})

	t.Run("completed order cannot be cancelled", func(t *testing.T) {
		f := newWOFixture(t)
		wo := f.create(t, "WO-112")

		_, err := f.svc.Release(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		_, err = f.svc.Hold(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		_, err = f.svc.Resume(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		_, err = f.svc.Complete(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, testCaller, testTracing, wo.ID.String())
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})

	t.Run("cancel from draft", func(t *testing.T) {
		f := newWOFixture(t)
		wo := f.create(t, "WO-113")

		cancelled, err := f.svc.Cancel(ctx, testCaller, testTracing, wo.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.WOStatusCancelled, cancelled.Status)
	})
}
