package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDrugService(t *testing.T) DrugService {
	t.Helper()
	db := newTestDB(t)
	return NewDrugService(repository.NewDrugRepository(db), newTestAudit(t, db))
}

func createDrug(t *testing.T, svc DrugService, code string) *model.Drug {
	t.Helper()
	drug, err := svc.Create(context.Background(), testCaller, testTracing, CreateDrugDTO{
		Code:       code,
		Name:       "Paracetamol 500mg",
		DosageForm: "TABLET",
		Strength:   "500mg",
	})
	require.NoError(t, err)
	return drug
}

func approveDrug(t *testing.T, svc DrugService, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SubmitForApproval(ctx, testCaller, testTracing, id)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, testCaller, testTracing, id)
	require.NoError(t, err)
}

func TestDrugLifecycle(t *testing.T) {
	t.Run("draft to approved", func(t *testing.T) {
		svc := newDrugService(t)
		drug := createDrug(t, svc, "DRG-001")
		assert.Equal(t, model.DrugStatusDraft, drug.Status)

		submitted, err := svc.SubmitForApproval(context.Background(), testCaller, testTracing, drug.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.DrugStatusPendingApproval, submitted.Status)

		approved, err := svc.Approve(context.Background(), testCaller, testTracing, drug.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.DrugStatusApproved, approved.Status)
	})

	t.Run("rejected drug can be resubmitted", func(t *testing.T) {
		svc := newDrugService(t)
		drug := createDrug(t, svc, "DRG-002")
		ctx := context.Background()

		_, err := svc.SubmitForApproval(ctx, testCaller, testTracing, drug.ID.String())
		require.NoError(t, err)
		rejected, err := svc.Reject(ctx, testCaller, testTracing, drug.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.DrugStatusRejected, rejected.Status)

		resubmitted, err := svc.SubmitForApproval(ctx, testCaller, testTracing, drug.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.DrugStatusPendingApproval, resubmitted.Status)
	})

	t.Run("approve requires pending approval", func(t *testing.T) {
		svc := newDrugService(t)
		drug := createDrug(t, svc, "DRG-003")

		_, err := svc.Approve(context.Background(), testCaller, testTracing, drug.ID.String())
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})

	t.Run("discontinued drug rejects edits", func(t *testing.T) {
		svc := newDrugService(t)
		drug := createDrug(t, svc, "DRG-004")
		approveDrug(t, svc, drug.ID.String())

		_, err := svc.Discontinue(context.Background(), testCaller, testTracing, drug.ID.String())
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), testCaller, testTracing, drug.ID.String(), UpdateDrugDTO{Name: "renamed"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestDrugCreateDuplicateCode(t *testing.T) {
	svc := newDrugService(t)
	createDrug(t, svc, "DRG-010")

	_, err := svc.Create(context.Background(), testCaller, testTracing, CreateDrugDTO{
		Code: "DRG-010",
		Name: "duplicate",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
