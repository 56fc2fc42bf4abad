package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contractFixture struct {
	contracts ContractService
	suppliers SupplierService
	supplier  *model.Supplier
}

func newContractFixture(t *testing.T) *contractFixture {
	t.Helper()
	db := newTestDB(t)
	audit := newTestAudit(t, db)

	supplierRepo := repository.NewSupplierRepository(db)
	suppliers := NewSupplierService(supplierRepo, audit)
	contracts := NewContractService(repository.NewContractRepository(db), supplierRepo, audit)

	supplier, err := suppliers.Create(context.Background(), testCaller, testTracing, CreateSupplierDTO{
		Code: "SUP-100",
		Name: "Hoa Binh Chemicals",
	})
	require.NoError(t, err)

	return &contractFixture{contracts: contracts, suppliers: suppliers, supplier: supplier}
}

func (f *contractFixture) create(t *testing.T, number string) *model.Contract {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	contract, err := f.contracts.Create(context.Background(), testCaller, testTracing, CreateContractDTO{
		ContractNumber: number,
		SupplierID:     f.supplier.ID.String(),
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, 0),
		Value:          "250000",
	})
	require.NoError(t, err)
	return contract
}

func TestContractCreate(t *testing.T) {
	t.Run("new contract starts as draft", func(t *testing.T) {
		f := newContractFixture(t)

		contract := f.create(t, "CT-0001")
		assert.Equal(t, model.ContractStatusDraft, contract.Status)
		assert.True(t, contract.Value.Equal(decimal.NewFromInt(250000)))

		_, err := f.contracts.Create(context.Background(), testCaller, testTracing, CreateContractDTO{
			ContractNumber: "CT-0001",
			SupplierID:     f.supplier.ID.String(),
			StartDate:      time.Now(),
			EndDate:        time.Now().AddDate(1, 0, 0),
			Value:          "1",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("end date must follow start date", func(t *testing.T) {
		f := newContractFixture(t)
		start := time.Now()

		_, err := f.contracts.Create(context.Background(), testCaller, testTracing, CreateContractDTO{
			ContractNumber: "CT-0002",
			SupplierID:     f.supplier.ID.String(),
			StartDate:      start,
			EndDate:        start,
			Value:          "100",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("blacklisted supplier cannot contract", func(t *testing.T) {
		f := newContractFixture(t)

		_, err := f.suppliers.Blacklist(context.Background(), testCaller, testTracing, f.supplier.ID.String())
		require.NoError(t, err)

		_, err = f.contracts.Create(context.Background(), testCaller, testTracing, CreateContractDTO{
			ContractNumber: "CT-0003",
			SupplierID:     f.supplier.ID.String(),
			StartDate:      time.Now(),
			EndDate:        time.Now().AddDate(1, 0, 0),
			Value:          "100",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})

	t.Run("unknown supplier", func(t *testing.T) {
		f := newContractFixture(t)

		_, err := f.contracts.Create(context.Background(), testCaller, testTracing, CreateContractDTO{
			ContractNumber: "CT-0004",
			SupplierID:     uuid.NewString(),
			StartDate:      time.Now(),
			EndDate:        time.Now().AddDate(1, 0, 0),
			Value:          "100",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestContractActivate(t *testing.T) {
	f := newContractFixture(t)
	contract := f.create(t, "CT-0010")

	activated, err := f.contracts.Activate(context.Background(), testCaller, testTracing, contract.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusActive, activated.Status)

	_, err = f.contracts.Activate(context.Background(), testCaller, testTracing, contract.ID.String())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestContractRenew(t *testing.T) {
	t.Run("renewal extends the end date and restates value", func(t *testing.T) {
		f := newContractFixture(t)
		contract := f.create(t, "CT-0020")

		_, err := f.contracts.Activate(context.Background(), testCaller, testTracing, contract.ID.String())
		require.NoError(t, err)

		newEnd := contract.EndDate.AddDate(1, 0, 0)
		renewed, err := f.contracts.Renew(context.Background(), testCaller, testTracing, contract.ID.String(), RenewContractDTO{
			EndDate: newEnd,
			Value:   "300000",
		})
		require.NoError(t, err)
		assert.True(t, renewed.EndDate.Equal(newEnd))
		assert.True(t, renewed.Value.Equal(decimal.NewFromInt(300000)))
		assert.Equal(t, model.ContractStatusActive, renewed.Status)
	})

	t.Run("renewal must push the end date out", func(t *testing.T) {
		f := newContractFixture(t)
		contract := f.create(t, "CT-0021")

		_, err := f.contracts.Renew(context.Background(), testCaller, testTracing, contract.ID.String(), RenewContractDTO{
			EndDate: contract.EndDate,
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("terminated contracts stay terminated", func(t *testing.T) {
		f := newContractFixture(t)
		contract := f.create(t, "CT-0022")

		_, err := f.contracts.Terminate(context.Background(), testCaller, testTracing, contract.ID.String())
		require.NoError(t, err)

		_, err = f.contracts.Renew(context.Background(), testCaller, testTracing, contract.ID.String(), RenewContractDTO{
			EndDate: contract.EndDate.AddDate(1, 0, 0),
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestContractTerminate(t *testing.T) {
	f := newContractFixture(t)
	contract := f.create(t, "CT-0030")

	terminated, err := f.contracts.Terminate(context.Background(), testCaller, testTracing, contract.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusTerminated, terminated.Status)

	// Terminating again returns the contract unchanged.
	again, err := f.contracts.Terminate(context.Background(), testCaller, testTracing, contract.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusTerminated, again.Status)
}
