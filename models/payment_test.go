package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	payment := Payment{
		Status:  PaymentPending,
		DueDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.False(t, payment.IsOverdue(now), "платёж со сроком сегодня не просрочен")

	payment.DueDate = time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.True(t, payment.IsOverdue(now))

	payment.Status = PaymentPaid
	assert.False(t, payment.IsOverdue(now), "оплаченный платёж не бывает просрочен")

	payment.Status = PaymentCancelled
	assert.False(t, payment.IsOverdue(now))
}

func TestPaymentDaysOverdue(t *testing.T) {
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	payment := Payment{
		Status:  PaymentPending,
		DueDate: time.Date(2025, 3, 5, 23, 59, 0, 0, time.UTC),
	}
	assert.Equal(t, 10, payment.DaysOverdue(now), "время суток не влияет на количество дней")

	payment.DueDate = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, payment.DaysOverdue(now))

	payment.Status = PaymentPaid
	payment.DueDate = time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, payment.DaysOverdue(now))
}

func TestPaymentEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	payment := Payment{
		Status:  PaymentPending,
		Amount:  decimal.NewFromInt(50),
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, PaymentOverdue, payment.EffectiveStatus(now),
		"pending с прошедшим сроком считается просроченным без фоновой проверки")

	payment.DueDate = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PaymentPending, payment.EffectiveStatus(now))

	payment.Status = PaymentCancelled
	payment.DueDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PaymentCancelled, payment.EffectiveStatus(now))
}

func TestPaymentTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentOverdue, true},
		{PaymentPending, PaymentCancelled, true},
		{PaymentOverdue, PaymentPaid, true},
		{PaymentOverdue, PaymentCancelled, true},
		{PaymentOverdue, PaymentPending, false},
		{PaymentPaid, PaymentPending, false},
		{PaymentPaid, PaymentCancelled, false},
		{PaymentCancelled, PaymentPending, true},
		{PaymentCancelled, PaymentPaid, false},
	}

	for _, tc := range cases {
		payment := Payment{Status: tc.from}
		require.Equal(t, tc.allowed, payment.CanTransitionTo(tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}
