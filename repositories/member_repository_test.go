package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMember(id, email string) *models.Member {
	return &models.Member{
		ID:         id,
		Name:       "Test Member " + id,
		Email:      email,
		Age:        25,
		MonthlyFee: decimal.NewFromInt(50),
		JoinDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemberRepositoryLoadMissingKey(t *testing.T) {
	kv := newFakeKeyValueStore()
	repo := NewMemberRepository(kv)

	require.NoError(t, repo.Load(context.Background()), "отсутствующий ключ означает пустую коллекцию")

	members, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMemberRepositoryLoadMalformed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()
	require.NoError(t, kv.Put(ctx, KeyMembers, []byte(`{"not":"a list"}`)))

	repo := NewMemberRepository(kv)
	err := repo.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedState)
}

func TestMemberRepositoryLoadRecordWithoutID(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()
	require.NoError(t, kv.Put(ctx, KeyMembers, []byte(`[{"name":"ghost"}]`)))

	repo := NewMemberRepository(kv)
	assert.ErrorIs(t, repo.Load(ctx), ErrMalformedState)
}

func TestMemberRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()
	repo := NewMemberRepository(kv)
	require.NoError(t, repo.Load(ctx))

	member := testMember("m1", "m1@club.local")
	require.NoError(t, repo.Create(ctx, member))

	got, err := repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, member.Email, got.Email)

	got.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, got))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, "m1"))
	_, err = repo.GetByID(ctx, "m1")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberRepositoryEmailConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemberRepository(newFakeKeyValueStore())
	require.NoError(t, repo.Load(ctx))

	require.NoError(t, repo.Create(ctx, testMember("m1", "same@club.local")))
	err := repo.Create(ctx, testMember("m2", "SAME@club.local"))
	assert.ErrorIs(t, err, ErrMemberEmailConflict, "email сравнивается без учёта регистра")
}

func TestMemberRepositoryRollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()
	repo := NewMemberRepository(kv)
	require.NoError(t, repo.Load(ctx))
	require.NoError(t, repo.Create(ctx, testMember("m1", "m1@club.local")))

	kv.failPuts = true
	err := repo.Create(ctx, testMember("m2", "m2@club.local"))
	require.Error(t, err)

	kv.failPuts = false
	members, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1, "неудачная запись не должна оставлять участника в памяти")
}

func TestMemberRepositorySurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKeyValueStore()

	repo := NewMemberRepository(kv)
	require.NoError(t, repo.Load(ctx))
	require.NoError(t, repo.Create(ctx, testMember("m1", "m1@club.local")))

	reloaded := NewMemberRepository(kv)
	require.NoError(t, reloaded.Load(ctx))

	got, err := reloaded.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1@club.local", got.Email)
}
