package repositories

import (
	"context"
	"errors"
	"sync"
)

// fakeKeyValueStore - хранилище в памяти для тестов репозиториев.
// failPuts позволяет имитировать отказ персистентности.
type fakeKeyValueStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failPuts bool
}

var errPutFailed = errors.New("simulated put failure")

func newFakeKeyValueStore() *fakeKeyValueStore {
	return &fakeKeyValueStore{data: make(map[string][]byte)}
}

func (s *fakeKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (s *fakeKeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPuts {
		return errPutFailed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}
