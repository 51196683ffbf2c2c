package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// memKeyValueStore - хранилище в памяти для тестов сервисного слоя.
// failKeys позволяет имитировать отказ записи для отдельных ключей.
type memKeyValueStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failKeys map[string]bool
}

var errStorePutFailed = errors.New("simulated put failure")

func newMemKeyValueStore() *memKeyValueStore {
	return &memKeyValueStore{
		data:     make(map[string][]byte),
		failKeys: make(map[string]bool),
	}
}

func (s *memKeyValueStore) failPutsFor(key string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKeys[key] = fail
}

func (s *memKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, repositories.ErrKeyNotFound
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (s *memKeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failKeys[key] {
		return errStorePutFailed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// testClock возвращает фиксированный момент времени: 10 марта 2025, полдень.
func testClock() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

// testingT покрывает и *testing.T, и *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type testEnv struct {
	kv            *memKeyValueStore
	memberRepo    repositories.MemberRepository
	paymentRepo   repositories.PaymentRepository
	sessionRepo   repositories.SessionRepository
	equipmentRepo repositories.EquipmentRepository
	loanRepo      repositories.LoanRepository
	messageRepo   repositories.MessageRepository
	userRepo      repositories.UserRepository
	backupRepo    repositories.BackupRepository
}

func newTestEnv(t testingT) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{kv: newMemKeyValueStore()}
	env.memberRepo = repositories.NewMemberRepository(env.kv)
	env.paymentRepo = repositories.NewPaymentRepository(env.kv)
	env.sessionRepo = repositories.NewSessionRepository(env.kv)
	env.equipmentRepo = repositories.NewEquipmentRepository(env.kv)
	env.loanRepo = repositories.NewLoanRepository(env.kv)
	env.messageRepo = repositories.NewMessageRepository(env.kv)
	env.userRepo = repositories.NewUserRepository(env.kv)
	env.backupRepo = repositories.NewBackupRepository(env.kv)

	require.NoError(t, env.memberRepo.Load(ctx))
	require.NoError(t, env.paymentRepo.Load(ctx))
	require.NoError(t, env.sessionRepo.Load(ctx))
	require.NoError(t, env.equipmentRepo.Load(ctx))
	require.NoError(t, env.loanRepo.Load(ctx))
	require.NoError(t, env.messageRepo.Load(ctx))
	require.NoError(t, env.userRepo.Load(ctx))
	require.NoError(t, env.backupRepo.Load(ctx))
	return env
}

func (e *testEnv) addMember(t testingT, name, email string, fee int64) *models.Member {
	t.Helper()

	svc := NewMemberService(e.memberRepo).(*memberService)
	svc.now = testClock

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{
		Name:       name,
		Email:      email,
		Age:        20,
		MonthlyFee: decimal.NewFromInt(fee),
		JoinDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return member
}

// recordingBroadcaster накапливает события вместо рассылки по websocket.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Room    string
	Type    string
	Payload interface{}
}

func (b *recordingBroadcaster) BroadcastToRoom(room string, eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Room: room, Type: eventType, Payload: payload})
}

func (b *recordingBroadcaster) recorded() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]recordedEvent, len(b.events))
	copy(result, b.events)
	return result
}
