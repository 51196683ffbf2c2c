package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var ErrSessionNotFound = errors.New("training session not found")

type SessionRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, session *models.TrainingSession) error
	GetByID(ctx context.Context, id string) (*models.TrainingSession, error)
	Update(ctx context.Context, session *models.TrainingSession) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.TrainingSession, error)
	ReplaceAll(ctx context.Context, sessions []models.TrainingSession) error
}

type sessionRepository struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	sessions []models.TrainingSession
}

func NewSessionRepository(kv KeyValueStore) SessionRepository {
	return &sessionRepository{kv: kv, sessions: []models.TrainingSession{}}
}

func validateSession(s *models.TrainingSession) error {
	if s.ID == "" {
		return errors.New("session record without id")
	}
	for memberID, status := range s.Attendance {
		if memberID == "" {
			return fmt.Errorf("session %s has attendance entry without member id", s.ID)
		}
		if !models.ValidAttendanceStatus(status) {
			return fmt.Errorf("session %s has unknown attendance status %q", s.ID, status)
		}
	}
	return nil
}

func (r *sessionRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.TrainingSession
	if err := loadList(ctx, r.kv, KeySessions, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validateSession(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeySessions, err)
		}
		if loaded[i].Attendance == nil {
			loaded[i].Attendance = map[string]models.AttendanceStatus{}
		}
	}
	r.sessions = loaded
	if r.sessions == nil {
		r.sessions = []models.TrainingSession{}
	}
	return nil
}

func (r *sessionRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeySessions, r.sessions)
}

// cloneSession копирует сессию вместе с картой посещаемости, чтобы вызывающий
// код не мутировал состояние репозитория в обход Update.
func cloneSession(s models.TrainingSession) models.TrainingSession {
	attendance := make(map[string]models.AttendanceStatus, len(s.Attendance))
	for memberID, status := range s.Attendance {
		attendance[memberID] = status
	}
	s.Attendance = attendance
	return s
}

func (r *sessionRepository) Create(ctx context.Context, session *models.TrainingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append(r.sessions, cloneSession(*session))
	if err := r.persist(ctx); err != nil {
		r.sessions = r.sessions[:len(r.sessions)-1]
		return err
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.sessions {
		if r.sessions[i].ID == id {
			session := cloneSession(r.sessions[i])
			return &session, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (r *sessionRepository) Update(ctx context.Context, session *models.TrainingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sessions {
		if r.sessions[i].ID == session.ID {
			previous := r.sessions[i]
			r.sessions[i] = cloneSession(*session)
			if err := r.persist(ctx); err != nil {
				r.sessions[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrSessionNotFound
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sessions {
		if r.sessions[i].ID == id {
			removed := r.sessions[i]
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			if err := r.persist(ctx); err != nil {
				r.sessions = append(r.sessions, removed)
				return err
			}
			return nil
		}
	}
	return ErrSessionNotFound
}

func (r *sessionRepository) GetAll(ctx context.Context) ([]models.TrainingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.TrainingSession, 0, len(r.sessions))
	for i := range r.sessions {
		result = append(result, cloneSession(r.sessions[i]))
	}
	return result, nil
}

func (r *sessionRepository) ReplaceAll(ctx context.Context, sessions []models.TrainingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range sessions {
		if err := validateSession(&sessions[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}

	previous := r.sessions
	r.sessions = make([]models.TrainingSession, len(sessions))
	copy(r.sessions, sessions)
	if err := r.persist(ctx); err != nil {
		r.sessions = previous
		return err
	}
	return nil
}
