package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayment(id, memberID string, status models.PaymentStatus) models.Payment {
	return models.Payment{
		ID:       id,
		MemberID: memberID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:   status,
	}
}

func TestPaymentRepositoryLoadUnknownStatus(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()
	require.NoError(t, kv.Put(ctx, KeyPayments, []byte(`[{"id":"p1","member_id":"m1","status":"weird"}]`)))

	repo := NewPaymentRepository(kv)
	assert.ErrorIs(t, repo.Load(ctx), ErrMalformedState)
}

func TestPaymentRepositoryCreateBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newFakeKeyValueStore())
	require.NoError(t, repo.Load(ctx))

	batch := []models.Payment{
		testPayment("p1", "m1", models.PaymentPending),
		testPayment("p2", "m2", models.PaymentPending),
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	require.NoError(t, repo.CreateBatch(ctx, nil), "пустая пачка не является ошибкой")

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPaymentRepositoryUpdateBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newFakeKeyValueStore())
	require.NoError(t, repo.Load(ctx))
	require.NoError(t, repo.CreateBatch(ctx, []models.Payment{
		testPayment("p1", "m1", models.PaymentPending),
		testPayment("p2", "m2", models.PaymentPending),
	}))

	updated := testPayment("p1", "m1", models.PaymentOverdue)
	require.NoError(t, repo.UpdateBatch(ctx, []models.Payment{updated}))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentOverdue, got.Status)

	missing := testPayment("nope", "m1", models.PaymentPending)
	assert.ErrorIs(t, repo.UpdateBatch(ctx, []models.Payment{missing}), ErrPaymentNotFound)
}

func TestPaymentRepositoryUpdateBatchRollback(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()
	repo := NewPaymentRepository(kv)
	require.NoError(t, repo.Load(ctx))
	require.NoError(t, repo.Create(ctx, ptrPayment(testPayment("p1", "m1", models.PaymentPending))))

	kv.failPuts = true
	err := repo.UpdateBatch(ctx, []models.Payment{testPayment("p1", "m1", models.PaymentOverdue)})
	require.Error(t, err)

	kv.failPuts = false
	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status, "неудачная запись не должна менять состояние в памяти")
}

func ptrPayment(p models.Payment) *models.Payment {
	return &p
}
