package service

import (
	"context"
	"sync"
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

type poFixture struct {
	db        *gorm.DB
	svc       PurchaseOrderService
	repo      repository.PurchaseOrderRepository
	supplier  model.Supplier
	materials *fakeMaterialClient
	matA      string
	matB      string
}

func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	db := newTestDB(t)

	supplierRepo := repository.NewSupplierRepository(db)
	supplier := model.Supplier{Code: "SUP-001", Name: "Acme Chemicals", Status: model.SupplierStatusActive}
	require.NoError(t, supplierRepo.Create(context.Background(), &supplier))

	matA := uuid.NewString()
	matB := uuid.NewString()
	materials := &fakeMaterialClient{materials: map[string]rpcclient.MaterialRef{
		matA: {ID: matA, Code: "MAT-A", Name: "API powder", Unit: "kg"},
		matB: {ID: matB, Code: "MAT-B", Name: "Excipient", Unit: "kg"},
	}}

	repo := repository.NewPurchaseOrderRepository(db)
	svc := NewPurchaseOrderService(repo, supplierRepo, materials, repository.NewTransactionManager(db), newTestAudit(t, db))

	return &poFixture{
		db:        db,
		svc:       svc,
		repo:      repo,
		supplier:  supplier,
		materials: materials,
		matA:      matA,
		matB:      matB,
	}
}

func (f *poFixture) createDTO(poNumber string) CreatePurchaseOrderDTO {
	return CreatePurchaseOrderDTO{
		PONumber:   poNumber,
		SupplierID: f.supplier.ID.String(),
		SiteID:     "SITE-1",
		Items: []PurchaseOrderItemDTO{
			{MaterialID: f.matA, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5)},
			{MaterialID: f.matB, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(15)},
		},
	}
}

func TestPurchaseOrderCreate(t *testing.T) {
	t.Run("derives item totals and order total", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0001"))
		require.NoError(t, err)

		assert.Equal(t, model.POStatusPendingApproval, po.Status)
		assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(110)), "expected 110, got %s", po.TotalAmount)
		require.Len(t, po.Items, 2)
		assert.True(t, po.Items[0].TotalPrice.Equal(decimal.NewFromInt(50)))
		assert.True(t, po.Items[1].TotalPrice.Equal(decimal.NewFromInt(60)))
	})

	t.Run("duplicate po number conflicts", func(t *testing.T) {
		f := newPOFixture(t)

		_, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0001"))
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0001"))
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("unknown supplier writes nothing", func(t *testing.T) {
		f := newPOFixture(t)

		dto := f.createDTO("PO-0002")
		dto.SupplierID = uuid.NewString()

		_, err := f.svc.Create(context.Background(), testCaller, testTracing, dto)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

		var count int64
		require.NoError(t, f.db.Model(&model.PurchaseOrder{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("unknown material fails fast", func(t *testing.T) {
		f := newPOFixture(t)

		dto := f.createDTO("PO-0003")
		dto.Items[1].MaterialID = uuid.NewString()

		_, err := f.svc.Create(context.Background(), testCaller, testTracing, dto)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		f := newPOFixture(t)

		dto := f.createDTO("PO-0004")
		dto.Items[0].Quantity = decimal.Zero

		_, err := f.svc.Create(context.Background(), testCaller, testTracing, dto)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestPurchaseOrderApprove(t *testing.T) {
	t.Run("pending to approved", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0010"))
		require.NoError(t, err)

		approved, err := f.svc.Approve(context.Background(), testCaller, testTracing, po.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.POStatusApproved, approved.Status)
	})

	t.Run("second approval conflicts", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0011"))
		require.NoError(t, err)

		_, err = f.svc.Approve(context.Background(), testCaller, testTracing, po.ID.String())
		require.NoError(t, err)

		_, err = f.svc.Approve(context.Background(), testCaller, testTracing, po.ID.String())
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("cancelled order cannot be approved", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0012"))
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), testCaller, testTracing, po.ID.String())
		require.NoError(t, err)

		_, err = f.svc.Approve(context.Background(), testCaller, testTracing, po.ID.String())
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "cannotApproveCancelledPO", appErr.Code)
	})

	t.Run("concurrent approvals produce one winner", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0013"))
		require.NoError(t, err)

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.svc.Approve(context.Background(), testCaller, testTracing, po.ID.String())
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				assert.True(t, apperr.IsKind(err, apperr.KindConflict))
			}
		}
		assert.Equal(t, 1, wins)

		current, err := f.svc.GetByID(context.Background(), po.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.POStatusApproved, current.Status)
	})
}

func TestPurchaseOrderReceive(t *testing.T) {
	t.Run("partial then full receipt", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0020"))
		require.NoError(t, err)
		_, err = f.svc.Approve(context.Background(), testCaller, testTracing, po.ID.String())
		require.NoError(t, err)

		partial, err := f.svc.Receive(context.Background(), testCaller, testTracing, po.ID.String(), ReceivePurchaseOrderDTO{
			Items: []ReceiveItemDTO{{MaterialID: f.matA, ReceivedQuantity: decimal.NewFromInt(10)}},
		})
		require.NoError(t, err)
		assert.Equal(t, model.POStatusPartiallyReceived, partial.Status)

		full, err := f.svc.Receive(context.Background(), testCaller, testTracing, po.ID.String(), ReceivePurchaseOrderDTO{
			Items: []ReceiveItemDTO{{MaterialID: f.matB, ReceivedQuantity: decimal.NewFromInt(4)}},
		})
		require.NoError(t, err)
		assert.Equal(t, model.POStatusFullyReceived, full.Status)
	})

	t.Run("draft order cannot receive", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0021"))
		require.NoError(t, err)

		_, err = f.svc.Receive(context.Background(), testCaller, testTracing, po.ID.String(), ReceivePurchaseOrderDTO{
			Items: []ReceiveItemDTO{{MaterialID: f.matA, ReceivedQuantity: decimal.NewFromInt(1)}},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})
}

func TestPurchaseOrderDelete(t *testing.T) {
	f := newPOFixture(t)

	po, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO("PO-0030"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), testCaller, testTracing, po.ID.String()))

	_, err = f.svc.GetByID(context.Background(), po.ID.String())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPurchaseOrderList(t *testing.T) {
	f := newPOFixture(t)

	for _, n := range []string{"PO-0040", "PO-0041", "PO-0042"} {
		_, err := f.svc.Create(context.Background(), testCaller, testTracing, f.createDTO(n))
		require.NoError(t, err)
	}

	page, err := f.svc.List(context.Background(), repository.PurchaseOrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
}
