package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQCSampleService(t *testing.T) QCSampleService {
	t.Helper()
	db := newTestDB(t)
	return NewQCSampleService(repository.NewQCSampleRepository(db), newTestAudit(t, db))
}

func createSample(t *testing.T, svc QCSampleService, number string) *model.QCSample {
	t.Helper()
	sample, err := svc.Create(context.Background(), testCaller, testTracing, CreateQCSampleDTO{
		SampleNumber: number,
		SourceType:   model.QCSourceGoodsReceipt,
		SourceID:     uuid.NewString(),
	})
	require.NoError(t, err)
	return sample
}

func TestQCSampleCreate(t *testing.T) {
	svc := newQCSampleService(t)

	sample := createSample(t, svc, "QC-0001")
	assert.Equal(t, model.QCStatusPending, sample.Status)
	assert.Equal(t, model.QCPriorityMedium, sample.Priority)
	assert.Nil(t, sample.AssignedTo)

	_, err := svc.Create(context.Background(), testCaller, testTracing, CreateQCSampleDTO{
		SampleNumber: "QC-0001",
		SourceType:   model.QCSourceBatch,
		SourceID:     uuid.NewString(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestQCSampleAssign(t *testing.T) {
	t.Run("assignment moves pending to in progress", func(t *testing.T) {
		svc := newQCSampleService(t)
		sample := createSample(t, svc, "QC-0002")

		analyst := uuid.NewString()
		assigned, err := svc.Assign(context.Background(), testCaller, testTracing, sample.ID.String(), AssignQCSampleDTO{AssignedTo: analyst})
		require.NoError(t, err)
		assert.Equal(t, model.QCStatusInProgress, assigned.Status)
		require.NotNil(t, assigned.AssignedTo)
		assert.Equal(t, analyst, assigned.AssignedTo.String())
	})

	t.Run("re-assignment overwrites the assignee", func(t *testing.T) {
		svc := newQCSampleService(t)
		sample := createSample(t, svc, "QC-0003")

		first := uuid.NewString()
		second := uuid.NewString()

		_, err := svc.Assign(context.Background(), testCaller, testTracing, sample.ID.String(), AssignQCSampleDTO{AssignedTo: first})
		require.NoError(t, err)

		reassigned, err := svc.Assign(context.Background(), testCaller, testTracing, sample.ID.String(), AssignQCSampleDTO{AssignedTo: second})
		require.NoError(t, err)
		require.NotNil(t, reassigned.AssignedTo)
		assert.Equal(t, second, reassigned.AssignedTo.String())
		assert.Equal(t, model.QCStatusInProgress, reassigned.Status)
	})

	t.Run("assignment after completion still lands", func(t *testing.T) {
		svc := newQCSampleService(t)
		sample := createSample(t, svc, "QC-0004")

		_, err := svc.Complete(context.Background(), testCaller, testTracing, sample.ID.String(), CloseQCSampleDTO{ResultNotes: "all tests passed"})
		require.NoError(t, err)

		late := uuid.NewString()
		assigned, err := svc.Assign(context.Background(), testCaller, testTracing, sample.ID.String(), AssignQCSampleDTO{AssignedTo: late})
		require.NoError(t, err)
		assert.Equal(t, model.QCStatusInProgress, assigned.Status)
	})
}

func TestQCSampleComplete(t *testing.T) {
	svc := newQCSampleService(t)
	sample := createSample(t, svc, "QC-0005")

	completed, err := svc.Complete(context.Background(), testCaller, testTracing, sample.ID.String(), CloseQCSampleDTO{ResultNotes: "within spec limits"})
	require.NoError(t, err)
	assert.Equal(t, model.QCStatusCompleted, completed.Status)
	assert.Equal(t, "within spec limits", completed.ResultNotes)
}

func TestQCSampleFail(t *testing.T) {
	svc := newQCSampleService(t)
	sample := createSample(t, svc, "QC-0006")

	failed, err := svc.Fail(context.Background(), testCaller, testTracing, sample.ID.String(), CloseQCSampleDTO{ResultNotes: "assay out of range"})
	require.NoError(t, err)
	assert.Equal(t, model.QCStatusFailed, failed.Status)
}

func TestQCSampleList(t *testing.T) {
	svc := newQCSampleService(t)
	createSample(t, svc, "QC-0010")
	createSample(t, svc, "QC-0011")

	sample := createSample(t, svc, "QC-0012")
	_, err := svc.Fail(context.Background(), testCaller, testTracing, sample.ID.String(), CloseQCSampleDTO{})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), repository.QCSampleFilter{Status: model.QCStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
