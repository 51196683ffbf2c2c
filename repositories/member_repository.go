package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberEmailConflict = errors.New("member email conflict")
)

type MemberRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.Member, error)
	Count(ctx context.Context) (int, error)
	ReplaceAll(ctx context.Context, members []models.Member) error
}

type memberRepository struct {
	mu      sync.RWMutex
	kv      KeyValueStore
	members []models.Member
}

func NewMemberRepository(kv KeyValueStore) MemberRepository {
	return &memberRepository{kv: kv, members: []models.Member{}}
}

func validateMember(m *models.Member) error {
	if m.ID == "" {
		return errors.New("member record without id")
	}
	if m.Name == "" {
		return fmt.Errorf("member %s without name", m.ID)
	}
	return nil
}

func (r *memberRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.Member
	if err := loadList(ctx, r.kv, KeyMembers, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validateMember(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeyMembers, err)
		}
	}
	r.members = loaded
	if r.members == nil {
		r.members = []models.Member{}
	}
	return nil
}

func (r *memberRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeyMembers, r.members)
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.members {
		if strings.EqualFold(r.members[i].Email, member.Email) {
			return ErrMemberEmailConflict
		}
	}

	r.members = append(r.members, *member)
	if err := r.persist(ctx); err != nil {
		r.members = r.members[:len(r.members)-1]
		return err
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.members {
		if r.members[i].ID == id {
			member := r.members[i]
			return &member, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.members {
		if r.members[i].ID != member.ID && strings.EqualFold(r.members[i].Email, member.Email) {
			return ErrMemberEmailConflict
		}
	}

	for i := range r.members {
		if r.members[i].ID == member.ID {
			previous := r.members[i]
			r.members[i] = *member
			if err := r.persist(ctx); err != nil {
				r.members[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrMemberNotFound
}

func (r *memberRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.members {
		if r.members[i].ID == id {
			removed := r.members[i]
			r.members = append(r.members[:i], r.members[i+1:]...)
			if err := r.persist(ctx); err != nil {
				r.members = append(r.members, removed)
				return err
			}
			return nil
		}
	}
	return ErrMemberNotFound
}

func (r *memberRepository) GetAll(ctx context.Context) ([]models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Member, len(r.members))
	copy(result, r.members)
	return result, nil
}

func (r *memberRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members), nil
}

func (r *memberRepository) ReplaceAll(ctx context.Context, members []models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range members {
		if err := validateMember(&members[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}

	previous := r.members
	r.members = make([]models.Member, len(members))
	copy(r.members, members)
	if err := r.persist(ctx); err != nil {
		r.members = previous
		return err
	}
	return nil
}
