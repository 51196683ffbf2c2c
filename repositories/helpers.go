package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// loadList читает ключ и декодирует его в dst (указатель на слайс).
// Отсутствие ключа не ошибка - коллекция просто ещё не сохранялась.
// Некорректный JSON - явная ошибка, а не полусобранные объекты.
func loadList(ctx context.Context, kv KeyValueStore, key string, dst interface{}) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrMalformedState, key, err)
	}
	return nil
}

// saveList сериализует коллекцию и перезаписывает ключ целиком.
func saveList(ctx context.Context, kv KeyValueStore, key string, src interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to marshal state for key %q: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
