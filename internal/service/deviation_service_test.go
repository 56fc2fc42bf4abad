package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeviationService(t *testing.T) DeviationService {
	t.Helper()
	db := newTestDB(t)
	return NewDeviationService(repository.NewDeviationRepository(db), newTestAudit(t, db))
}

func createDeviation(t *testing.T, svc DeviationService, number string) *model.Deviation {
	t.Helper()
	deviation, err := svc.Create(context.Background(), testCaller, testTracing, CreateDeviationDTO{
		DeviationNumber: number,
		Severity:        model.DeviationSeverityMajor,
		Title:           "Assay result out of specification",
	})
	require.NoError(t, err)
	return deviation
}

func TestDeviationCreate(t *testing.T) {
	svc := newDeviationService(t)

	deviation := createDeviation(t, svc, "DEV-0001")
	assert.Equal(t, model.DeviationStatusOpen, deviation.Status)
	assert.Nil(t, deviation.ClosedAt)

	_, err := svc.Create(context.Background(), testCaller, testTracing, CreateDeviationDTO{
		DeviationNumber: "DEV-0001",
		Severity:        model.DeviationSeverityMinor,
		Title:           "duplicate",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestDeviationClose(t *testing.T) {
	t.Run("close records closer and timestamp", func(t *testing.T) {
		svc := newDeviationService(t)
		deviation := createDeviation(t, svc, "DEV-0002")

		closed, err := svc.Close(context.Background(), testCaller, testTracing, deviation.ID.String(), CloseDeviationDTO{
			RootCause:        "analyst used expired reagent",
			CorrectiveAction: "reagent stock rotation added to SOP",
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeviationStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedAt)
		require.NotNil(t, closed.ClosedBy)
		assert.Equal(t, testCaller.ID, closed.ClosedBy.String())
	})

	t.Run("second close is a no-op", func(t *testing.T) {
		svc := newDeviationService(t)
		deviation := createDeviation(t, svc, "DEV-0003")

		first, err := svc.Close(context.Background(), testCaller, testTracing, deviation.ID.String(), CloseDeviationDTO{})
		require.NoError(t, err)
		firstClosedAt := *first.ClosedAt

		time.Sleep(5 * time.Millisecond)

		second, err := svc.Close(context.Background(), testCaller, testTracing, deviation.ID.String(), CloseDeviationDTO{})
		require.NoError(t, err)
		assert.Equal(t, model.DeviationStatusClosed, second.Status)
		require.NotNil(t, second.ClosedAt)
		assert.True(t, second.ClosedAt.Equal(firstClosedAt), "close timestamp must not move on repeat close")
	})
}

func TestDeviationUpdate(t *testing.T) {
	svc := newDeviationService(t)
	deviation := createDeviation(t, svc, "DEV-0004")

	updated, err := svc.Update(context.Background(), testCaller, testTracing, deviation.ID.String(), UpdateDeviationDTO{
		Status:    model.DeviationStatusUnderInvestigation,
		RootCause: "under review",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DeviationStatusUnderInvestigation, updated.Status)

	_, err = svc.Close(context.Background(), testCaller, testTracing, deviation.ID.String(), CloseDeviationDTO{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), testCaller, testTracing, deviation.ID.String(), UpdateDeviationDTO{Title: "late edit"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
