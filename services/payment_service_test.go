package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestPaymentService(env *testEnv) *paymentService {
	svc := NewPaymentService(env.paymentRepo, env.memberRepo).(*paymentService)
	svc.now = testClock
	return svc
}

func TestGenerateMonthlyPayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	bob := env.addMember(t, "Bob Sidorov", "bob@club.local", 75)

	svc := newTestPaymentService(env)
	created, err := svc.GenerateMonthlyPayments(ctx, testClock())
	require.NoError(t, err)
	require.Len(t, created, 2)

	byMember := make(map[string]models.Payment, len(created))
	for _, p := range created {
		byMember[p.MemberID] = p
	}

	expectedDue := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.True(t, byMember[alice.ID].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, byMember[bob.ID].Amount.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, expectedDue, byMember[alice.ID].DueDate, "срок взноса - пятое число месяца")
	assert.Equal(t, models.PaymentPending, byMember[alice.ID].Status)
}

func TestGenerateMonthlyPaymentsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addMember(t, "Alice Petrova", "alice@club.local", 50)

	svc := newTestPaymentService(env)
	first, err := svc.GenerateMonthlyPayments(ctx, testClock())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.GenerateMonthlyPayments(ctx, testClock())
	require.NoError(t, err)
	assert.Empty(t, second, "повторный запуск в том же месяце ничего не создаёт")

	all, err := svc.GetAllPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenerateMonthlyPaymentsCancelledDoesNotCover(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addMember(t, "Alice Petrova", "alice@club.local", 50)

	svc := newTestPaymentService(env)
	first, err := svc.GenerateMonthlyPayments(ctx, testClock())
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = svc.Cancel(ctx, first[0].ID, "billing mistake")
	require.NoError(t, err)

	regenerated, err := svc.GenerateMonthlyPayments(ctx, testClock())
	require.NoError(t, err)
	assert.Len(t, regenerated, 1, "отменённый платёж не закрывает месяц")
}

func TestGenerateMonthlyPaymentsUsesCurrentFee(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)

	svc := newTestPaymentService(env)
	march, err := svc.GenerateMonthlyPayments(ctx, testClock())
	require.NoError(t, err)
	require.Len(t, march, 1)

	memberSvc := NewMemberService(env.memberRepo).(*memberService)
	memberSvc.now = testClock
	_, err = memberSvc.UpdateMember(ctx, member.ID, UpdateMemberInput{
		Name:       member.Name,
		Email:      member.Email,
		Age:        member.Age,
		MonthlyFee: decimal.NewFromInt(90),
	})
	require.NoError(t, err)

	april, err := svc.GenerateMonthlyPayments(ctx, testClock().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, april, 1)

	assert.True(t, april[0].Amount.Equal(decimal.NewFromInt(90)), "новый взнос действует со следующего месяца")
	got, err := svc.GetPaymentByID(ctx, march[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(50)), "уже созданный платёж не пересчитывается")
}

func TestAddPaymentValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestPaymentService(env)

	_, err := svc.AddPayment(ctx, AddPaymentInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "member_id")
	assert.Contains(t, validation.Fields, "amount")
	assert.Contains(t, validation.Fields, "due_date")
}

func TestAddPaymentUnknownMember(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestPaymentService(env)

	_, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: "ghost",
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	payment, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	method := "cash"
	paid, err := svc.MarkPaid(ctx, payment.ID, MarkPaidInput{PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Status)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, testClock(), *paid.PaymentDate, "без явной даты берётся текущий момент")
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, "cash", *paid.PaymentMethod)

	_, err = svc.MarkPaid(ctx, payment.ID, MarkPaidInput{})
	assert.ErrorIs(t, err, ErrPaymentNotPayable, "оплаченный платёж нельзя оплатить повторно")
}

func TestMarkPaidFromOverdue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	// срок уже прошёл относительно testClock, фоновая проверка не запускалась
	payment, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	when := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC)
	paid, err := svc.MarkPaid(ctx, payment.ID, MarkPaidInput{PaymentDate: &when})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Status)
	assert.Equal(t, when, *paid.PaymentDate)
}

func TestMarkPaidCancelled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	payment, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, payment.ID, "left the club")
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, payment.ID, MarkPaidInput{})
	assert.ErrorIs(t, err, ErrPaymentNotPayable)
}

func TestCancelAndReactivate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	payment, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, payment.ID, "duplicate charge")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, cancelled.Status)
	assert.Equal(t, "duplicate charge", cancelled.Notes, "причина отмены сохраняется в заметках")

	again, err := svc.Cancel(ctx, payment.ID, "another reason")
	require.NoError(t, err, "повторная отмена не является ошибкой")
	assert.Equal(t, "duplicate charge", again.Notes, "повторная отмена не перезаписывает причину")

	restored, err := svc.Reactivate(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, restored.Status)
	assert.Empty(t, restored.Notes, "реактивация очищает причину отмены")

	_, err = svc.Reactivate(ctx, payment.ID)
	assert.ErrorIs(t, err, ErrPaymentNotReactivatable)
}

func TestCancelPaidPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	payment, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, payment.ID, MarkPaidInput{})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, payment.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrPaymentNotCancellable)
}

func TestCheckOverduePayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	bob := env.addMember(t, "Bob Sidorov", "bob@club.local", 75)
	svc := newTestPaymentService(env)

	pastDue := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	futureDue := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	overdueP, err := svc.AddPayment(ctx, AddPaymentInput{MemberID: alice.ID, Amount: decimal.NewFromInt(50), DueDate: pastDue})
	require.NoError(t, err)
	freshP, err := svc.AddPayment(ctx, AddPaymentInput{MemberID: bob.ID, Amount: decimal.NewFromInt(75), DueDate: futureDue})
	require.NoError(t, err)

	count, err := svc.CheckOverduePayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.GetPaymentByID(ctx, overdueP.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentOverdue, got.Status)

	got, err = svc.GetPaymentByID(ctx, freshP.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)

	count, err = svc.CheckOverduePayments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "повторная проверка ничего не переводит")
}

func TestGetPaymentsByStatusUsesEffectiveStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	// pending с прошедшим сроком, фоновая проверка его ещё не трогала
	_, err := svc.AddPayment(ctx, AddPaymentInput{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(50),
		DueDate:  time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	overdue, err := svc.GetPaymentsByStatus(ctx, models.PaymentOverdue)
	require.NoError(t, err)
	assert.Len(t, overdue, 1, "просроченный pending виден в выборке overdue")

	pending, err := svc.GetPaymentsByStatus(ctx, models.PaymentPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGetFinancialStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	add := func(amount int64, due time.Time) *models.Payment {
		p, err := svc.AddPayment(ctx, AddPaymentInput{MemberID: member.ID, Amount: decimal.NewFromInt(amount), DueDate: due})
		require.NoError(t, err)
		return p
	}

	future := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

	paid := add(100, future)
	_, err := svc.MarkPaid(ctx, paid.ID, MarkPaidInput{})
	require.NoError(t, err)
	add(40, future)
	add(60, past)
	dropped := add(500, future)
	_, err = svc.Cancel(ctx, dropped.ID, "mistake")
	require.NoError(t, err)

	stats, err := svc.GetFinancialStats(ctx)
	require.NoError(t, err)

	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(100)))
	assert.True(t, stats.PendingRevenue.Equal(decimal.NewFromInt(40)))
	assert.True(t, stats.OverdueRevenue.Equal(decimal.NewFromInt(60)), "отменённые суммы не учитываются")
	assert.Equal(t, 4, stats.TotalPayments)
	assert.Equal(t, 1, stats.PaidPayments)
	assert.Equal(t, 1, stats.OverduePayments)
	assert.InDelta(t, 1.0/3.0, stats.PaymentRate, 1e-9, "доля оплаченных считается без отменённых")
}

func TestGetMonthlyReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestPaymentService(env)

	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)

	paid, err := svc.AddPayment(ctx, AddPaymentInput{MemberID: member.ID, Amount: decimal.NewFromInt(50), DueDate: march})
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, paid.ID, MarkPaidInput{})
	require.NoError(t, err)

	_, err = svc.AddPayment(ctx, AddPaymentInput{MemberID: member.ID, Amount: decimal.NewFromInt(50), DueDate: march})
	require.NoError(t, err)

	cancelled, err := svc.AddPayment(ctx, AddPaymentInput{MemberID: member.ID, Amount: decimal.NewFromInt(50), DueDate: march})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, cancelled.ID, "mistake")
	require.NoError(t, err)

	_, err = svc.AddPayment(ctx, AddPaymentInput{MemberID: member.ID, Amount: decimal.NewFromInt(50), DueDate: april})
	require.NoError(t, err)

	report, err := svc.GetMonthlyReport(ctx, time.March, 2025)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Month)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, 2, report.Total, "отменённые и чужие месяцы не входят в отчёт")
	assert.Equal(t, 1, report.Paid)
	assert.Equal(t, 1, report.Overdue, "мартовский pending на 10 марта уже просрочен")
	assert.Zero(t, report.Pending)
	assert.True(t, report.Revenue.Equal(decimal.NewFromInt(50)))
}

func TestGenerationIdempotencyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		env := newTestEnv(t)
		svc := newTestPaymentService(env)

		memberCount := rapid.IntRange(0, 8).Draw(t, "members")
		for i := 0; i < memberCount; i++ {
			env.addMember(t, fmt.Sprintf("Member %02d", i), fmt.Sprintf("member%02d@club.local", i), int64(10+i))
		}

		runs := rapid.IntRange(1, 4).Draw(t, "runs")
		for i := 0; i < runs; i++ {
			_, err := svc.GenerateMonthlyPayments(ctx, testClock())
			require.NoError(t, err)
		}

		all, err := svc.GetAllPayments(ctx)
		require.NoError(t, err)
		assert.Len(t, all, memberCount, "сколько участников, столько взносов за месяц, независимо от числа запусков")
	})
}
