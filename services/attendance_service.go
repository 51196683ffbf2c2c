package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
)

type AttendanceService interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*models.TrainingSession, error)
	GetSessionByID(ctx context.Context, id string) (*models.TrainingSession, error)
	GetAllSessions(ctx context.Context) ([]models.TrainingSession, error)
	UpdateSession(ctx context.Context, id string, input UpdateSessionInput) (*models.TrainingSession, error)
	DeleteSession(ctx context.Context, id string) error
	MarkAttendance(ctx context.Context, sessionID, memberID string, status models.AttendanceStatus) (*models.TrainingSession, error)
	GetSessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error)
	GetMemberAttendanceRate(ctx context.Context, memberID string) (float64, error)
	GetSessionsForDay(ctx context.Context, day time.Time) ([]models.TrainingSession, error)
	GetSessionsForMonth(ctx context.Context, month time.Month, year int) ([]models.TrainingSession, error)
}

type CreateSessionInput struct {
	Date     time.Time `json:"date"`
	Time     string    `json:"time"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

type UpdateSessionInput struct {
	Date     time.Time `json:"date"`
	Time     string    `json:"time"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

type attendanceService struct {
	sessionRepo repositories.SessionRepository
	memberRepo  repositories.MemberRepository
	now         func() time.Time
}

func NewAttendanceService(sessionRepo repositories.SessionRepository, memberRepo repositories.MemberRepository) AttendanceService {
	return &attendanceService{
		sessionRepo: sessionRepo,
		memberRepo:  memberRepo,
		now:         time.Now,
	}
}

func validateSessionFields(date time.Time, location string) *ValidationError {
	v := newValidationError()
	if date.IsZero() {
		v.add("date", "session date is required")
	}
	if location == "" {
		v.add("location", "location is required")
	}
	return v
}

func (s *attendanceService) CreateSession(ctx context.Context, input CreateSessionInput) (*models.TrainingSession, error) {
	if v := validateSessionFields(input.Date, input.Location); v.hasErrors() {
		return nil, v
	}

	session := &models.TrainingSession{
		ID:         uuid.NewString(),
		Date:       input.Date,
		Time:       input.Time,
		Location:   input.Location,
		Notes:      input.Notes,
		Attendance: map[string]models.AttendanceStatus{},
		CreatedAt:  s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create training session: %w", err)
	}
	return session, nil
}

func (s *attendanceService) GetSessionByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get training session %s: %w", id, err)
	}
	return session, nil
}

func (s *attendanceService) GetAllSessions(ctx context.Context) ([]models.TrainingSession, error) {
	sessions, err := s.sessionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get training sessions: %w", err)
	}
	return sessions, nil
}

func (s *attendanceService) UpdateSession(ctx context.Context, id string, input UpdateSessionInput) (*models.TrainingSession, error) {
	session, err := s.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := validateSessionFields(input.Date, input.Location); v.hasErrors() {
		return nil, v
	}

	session.Date = input.Date
	session.Time = input.Time
	session.Location = input.Location
	session.Notes = input.Notes

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update training session %s: %w", id, err)
	}
	return session, nil
}

func (s *attendanceService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete training session %s: %w", id, err)
	}
	return nil
}

// MarkAttendance выставляет отметку участнику. Повторный вызов перезаписывает
// предыдущую отметку, последняя запись выигрывает.
func (s *attendanceService) MarkAttendance(ctx context.Context, sessionID, memberID string, status models.AttendanceStatus) (*models.TrainingSession, error) {
	if !models.ValidAttendanceStatus(status) {
		return nil, ErrInvalidAttendanceStatus
	}

	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to check member %s: %w", memberID, err)
	}

	session, err := s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Attendance == nil {
		session.Attendance = map[string]models.AttendanceStatus{}
	}
	session.Attendance[memberID] = status

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to mark attendance on session %s: %w", sessionID, err)
	}
	return session, nil
}

// GetSessionStats считает отметки одной тренировки. Знаменатель Total -
// текущий размер ростера, поэтому статистика прошлых тренировок меняется
// при приёме и отчислении участников.
func (s *attendanceService) GetSessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error) {
	session, err := s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	total, err := s.memberRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	stats := &models.SessionStats{Total: total}
	for _, status := range session.Attendance {
		switch status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceAbsent:
			stats.Absent++
		case models.AttendanceJustified:
			stats.Justified++
		}
	}
	return stats, nil
}

// GetMemberAttendanceRate - доля тренировок с отметкой present среди всех
// тренировок, где участник отмечен любым статусом. Без отметок возвращает 0.
func (s *attendanceService) GetMemberAttendanceRate(ctx context.Context, memberID string) (float64, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return 0, ErrMemberNotFound
		}
		return 0, fmt.Errorf("failed to check member %s: %w", memberID, err)
	}

	sessions, err := s.sessionRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load sessions: %w", err)
	}

	marked := 0
	present := 0
	for i := range sessions {
		status, ok := sessions[i].Attendance[memberID]
		if !ok {
			continue
		}
		marked++
		if status == models.AttendancePresent {
			present++
		}
	}
	if marked == 0 {
		return 0, nil
	}
	return float64(present) / float64(marked), nil
}

func (s *attendanceService) GetSessionsForDay(ctx context.Context, day time.Time) ([]models.TrainingSession, error) {
	sessions, err := s.sessionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	result := make([]models.TrainingSession, 0)
	for i := range sessions {
		if sameCalendarDay(sessions[i].Date, day) {
			result = append(result, sessions[i])
		}
	}
	return result, nil
}

func (s *attendanceService) GetSessionsForMonth(ctx context.Context, month time.Month, year int) ([]models.TrainingSession, error) {
	sessions, err := s.sessionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	result := make([]models.TrainingSession, 0)
	for i := range sessions {
		if sessions[i].Date.Year() == year && sessions[i].Date.Month() == month {
			result = append(result, sessions[i])
		}
	}
	return result, nil
}
