package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestEquipmentService(env *testEnv) *equipmentService {
	svc := NewEquipmentService(env.equipmentRepo, env.loanRepo, env.memberRepo).(*equipmentService)
	svc.now = testClock
	return svc
}

func (e *testEnv) addEquipment(t testingT, svc EquipmentService, name string, category models.EquipmentCategory, quantity int) *models.Equipment {
	t.Helper()

	equipment, err := svc.AddEquipment(context.Background(), AddEquipmentInput{
		Name:         name,
		Category:     category,
		Quantity:     quantity,
		Condition:    models.ConditionGood,
		PurchaseDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return equipment
}

func TestAddEquipment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestEquipmentService(env)

	equipment := env.addEquipment(t, svc, "Мячи волейбольные", models.CategoryBall, 10)

	assert.Equal(t, 10, equipment.Available, "вся партия доступна при добавлении")
	assert.Equal(t, testClock(), equipment.LastMaintenance)
	assert.Equal(t, testClock().Add(30*24*time.Hour), equipment.NextMaintenance, "интервал мячей - 30 дней")

	_, err := svc.AddEquipment(ctx, AddEquipmentInput{Category: "hoverboard", Quantity: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoanAccounting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 10)

	loan, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           4,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanActive, loan.Status)
	assert.Equal(t, member.Name, loan.MemberName, "имя участника кэшируется в выдаче")

	got, err := svc.GetEquipmentByID(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Available)

	// остаток 6, запросить 7 нельзя
	_, err = svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           7,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	returned, err := svc.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, returned.Status)
	require.NotNil(t, returned.ActualReturnDate)

	got, err = svc.GetEquipmentByID(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Available)

	again, err := svc.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err, "повторный возврат не является ошибкой")
	assert.Equal(t, models.LoanReturned, again.Status)

	got, err = svc.GetEquipmentByID(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Available, "повторный возврат не раздувает остаток")
}

func TestCreateLoanRollsBackOnReserveFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 5)

	env.kv.failPutsFor(repositories.KeyEquipment, true)
	_, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           3,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	env.kv.failPutsFor(repositories.KeyEquipment, false)

	loans, err := svc.GetAllLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans, "выдача без списания остатка не остаётся в журнале")

	got, err := svc.GetEquipmentByID(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Available)
}

func TestReturnLoanRollsBackOnReleaseFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 5)

	loan, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           2,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	env.kv.failPutsFor(repositories.KeyEquipment, true)
	_, err = svc.ReturnLoan(ctx, loan.ID)
	require.Error(t, err)
	env.kv.failPutsFor(repositories.KeyEquipment, false)

	got, err := svc.GetLoanByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanActive, got.Status, "возврат без зачисления остатка откатывается")
	assert.Nil(t, got.ActualReturnDate)

	returned, err := svc.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err, "после восстановления записи возврат проходит")
	assert.Equal(t, models.LoanReturned, returned.Status)

	restored, err := svc.GetEquipmentByID(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Available)
}

func TestCreateLoanUnknownMember(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 10)

	_, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           "ghost",
		Quantity:           1,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestDeleteEquipmentWithActiveLoans(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Сетки", models.CategoryNet, 2)

	loan, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           1,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteEquipment(ctx, equipment.ID), ErrEquipmentHasActiveLoans)

	_, err = svc.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteEquipment(ctx, equipment.ID), "после возврата позицию можно удалить")
}

func TestUpdateEquipmentQuantityBelowLoaned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 10)

	_, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           4,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = svc.UpdateEquipment(ctx, equipment.ID, UpdateEquipmentInput{
		Name:      "Мячи",
		Quantity:  3,
		Condition: models.ConditionGood,
	})
	assert.ErrorIs(t, err, ErrQuantityBelowLoaned, "на руках 4 единицы")

	updated, err := svc.UpdateEquipment(ctx, equipment.ID, UpdateEquipmentInput{
		Name:      "Мячи",
		Quantity:  6,
		Condition: models.ConditionFair,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Quantity)
	assert.Equal(t, 2, updated.Available, "доступный остаток пересчитан от выданного")
}

func TestMarkMaintenanceDone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Форма", models.CategoryUniform, 15)

	// делаем позицию просроченной по обслуживанию
	svc.now = func() time.Time { return testClock().AddDate(0, 7, 0) }

	due, err := svc.GetMaintenanceDue(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)

	serviced, err := svc.MarkMaintenanceDone(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, svc.now(), serviced.LastMaintenance)
	assert.Equal(t, svc.now().Add(180*24*time.Hour), serviced.NextMaintenance, "интервал формы - 180 дней")

	due, err = svc.GetMaintenanceDue(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestGetOverdueLoans(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 10)

	late, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           1,
		ExpectedReturnDate: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		Quantity:           1,
		ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	overdue, err := svc.GetOverdueLoans(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
}

func TestGetEquipmentStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestEquipmentService(env)
	balls := env.addEquipment(t, svc, "Мячи", models.CategoryBall, 10)
	env.addEquipment(t, svc, "Сетки", models.CategoryNet, 2)

	_, err := svc.CreateLoan(ctx, CreateLoanInput{
		EquipmentID:        balls.ID,
		MemberID:           member.ID,
		Quantity:           3,
		ExpectedReturnDate: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	stats, err := svc.GetEquipmentStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalEquipment)
	assert.Equal(t, 12, stats.TotalItems)
	assert.Equal(t, 9, stats.AvailableItems)
	assert.Equal(t, 3, stats.LoanedItems)
	assert.Equal(t, 1, stats.OverdueLoans)
	assert.Zero(t, stats.NeedsMaintenance)
}

// Инвариант остатка: после любой последовательности выдач и возвратов
// 0 <= Available <= Quantity, а занятое равно сумме активных выдач.
func TestLoanAvailabilityInvariantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		env := newTestEnv(t)
		member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
		svc := newTestEquipmentService(env)

		quantity := rapid.IntRange(1, 12).Draw(t, "quantity")
		equipment := env.addEquipment(t, svc, "Мячи", models.CategoryBall, quantity)

		var active []string
		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(active) > 0 && rapid.Bool().Draw(t, "return") {
				idx := rapid.IntRange(0, len(active)-1).Draw(t, "loanIdx")
				_, err := svc.ReturnLoan(ctx, active[idx])
				require.NoError(t, err)
				active = append(active[:idx], active[idx+1:]...)
				continue
			}

			ask := rapid.IntRange(1, quantity).Draw(t, "ask")
			loan, err := svc.CreateLoan(ctx, CreateLoanInput{
				EquipmentID:        equipment.ID,
				MemberID:           member.ID,
				Quantity:           ask,
				ExpectedReturnDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
			})
			if err != nil {
				require.ErrorIs(t, err, ErrInsufficientQuantity)
				continue
			}
			active = append(active, loan.ID)
		}

		got, err := svc.GetEquipmentByID(ctx, equipment.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got.Available, 0)
		require.LessOrEqual(t, got.Available, got.Quantity)

		loans, err := svc.GetAllLoans(ctx)
		require.NoError(t, err)
		loanedOut := 0
		for i := range loans {
			if loans[i].Status == models.LoanActive {
				loanedOut += loans[i].Quantity
			}
		}
		require.Equal(t, got.Quantity-got.Available, loanedOut)
	})
}
