package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
)

// dueSoonWindowDays - за сколько дней до срока платёж попадает в напоминания.
const dueSoonWindowDays = 3

// Broadcaster рассылает события подписчикам комнаты. Реализуется realtime.Hub.
type Broadcaster interface {
	BroadcastToRoom(room string, eventType string, payload interface{})
}

type ReminderService interface {
	GetReminders(ctx context.Context) ([]models.Reminder, error)
	PublishReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	paymentRepo repositories.PaymentRepository
	memberRepo  repositories.MemberRepository
	sessionRepo repositories.SessionRepository
	hub         Broadcaster
	now         func() time.Time
}

// NewReminderService создаёт движок напоминаний. hub может быть nil,
// тогда PublishReminders только пересчитывает список.
func NewReminderService(
	paymentRepo repositories.PaymentRepository,
	memberRepo repositories.MemberRepository,
	sessionRepo repositories.SessionRepository,
	hub Broadcaster,
) ReminderService {
	return &reminderService{
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		sessionRepo: sessionRepo,
		hub:         hub,
		now:         time.Now,
	}
}

// GetReminders пересчитывает напоминания с нуля: просроченные платежи,
// платежи со сроком в ближайшие дни и сегодняшние тренировки. Ничего
// не сохраняется, список производен от текущего состояния.
func (s *reminderService) GetReminders(ctx context.Context) ([]models.Reminder, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments for reminders: %w", err)
	}
	members, err := s.memberRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members for reminders: %w", err)
	}
	sessions, err := s.sessionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for reminders: %w", err)
	}

	memberNames := make(map[string]string, len(members))
	for i := range members {
		memberNames[members[i].ID] = members[i].Name
	}

	now := s.now()
	today := models.DateOnly(now)
	reminders := make([]models.Reminder, 0)

	for i := range payments {
		p := &payments[i]
		name, known := memberNames[p.MemberID]
		if !known {
			// платежи отчисленных участников в напоминания не попадают
			continue
		}
		switch p.EffectiveStatus(now) {
		case models.PaymentOverdue:
			days := p.DaysOverdue(now)
			reminders = append(reminders, models.Reminder{
				Type:        models.ReminderPayment,
				Level:       models.ReminderOverdue,
				Title:       fmt.Sprintf("Overdue payment: %s", name),
				Description: fmt.Sprintf("Payment of %s is %d day(s) overdue", p.Amount.StringFixed(2), days),
				Days:        days,
			})
		case models.PaymentPending:
			due := models.DateOnly(p.DueDate)
			daysUntil := int(due.Sub(today) / (24 * time.Hour))
			if daysUntil >= 0 && daysUntil <= dueSoonWindowDays {
				level := models.ReminderDueSoon
				if daysUntil == 0 {
					level = models.ReminderToday
				}
				reminders = append(reminders, models.Reminder{
					Type:        models.ReminderPayment,
					Level:       level,
					Title:       fmt.Sprintf("Upcoming payment: %s", name),
					Description: fmt.Sprintf("Payment of %s is due in %d day(s)", p.Amount.StringFixed(2), daysUntil),
					Days:        daysUntil,
				})
			}
		}
	}

	for i := range sessions {
		session := &sessions[i]
		if !sameCalendarDay(session.Date, now) {
			continue
		}
		reminders = append(reminders, models.Reminder{
			Type:        models.ReminderTraining,
			Level:       models.ReminderToday,
			Title:       "Training session today",
			Description: fmt.Sprintf("Training at %s, %s", session.Time, session.Location),
		})
	}

	return reminders, nil
}

// PublishReminders пересчитывает напоминания и рассылает их подписчикам.
// Возвращает количество напоминаний.
func (s *reminderService) PublishReminders(ctx context.Context) (int, error) {
	reminders, err := s.GetReminders(ctx)
	if err != nil {
		return 0, err
	}
	if s.hub != nil && len(reminders) > 0 {
		s.hub.BroadcastToRoom("reminders", "REMINDERS_UPDATED", reminders)
	}
	return len(reminders), nil
}
