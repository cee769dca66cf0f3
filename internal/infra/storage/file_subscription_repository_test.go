package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
)

func newTestRepo(t *testing.T) *FileSubscriptionRepository {
	t.Helper()
	return NewFileSubscriptionRepository(filepath.Join(t.TempDir(), "users.json"))
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sub := &subscription.Subscription{
		UserID:         42,
		Faculty:        "Fizika fakulteti",
		FacultyID:      "3",
		Course:         "2",
		Specialization: "Fizika",
		Group:          "911-21",
		NotifyTime:     "07:00",
		NotifyMode:     "tomorrow",
	}
	require.NoError(t, repo.Save(ctx, sub))

	got, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
}

func TestGetMissingUser(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}

func TestSaveOverwritesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &subscription.Subscription{UserID: 7, Group: "911-21"}))
	require.NoError(t, repo.Save(ctx, &subscription.Subscription{UserID: 7, Group: "101-23"}))

	got, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "101-23", got.Group)

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestListSortedByUserID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []int64{30, 10, 20} {
		require.NoError(t, repo.Save(ctx, &subscription.Subscription{UserID: id}))
	}

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, int64(10), subs[0].UserID)
	assert.Equal(t, int64(20), subs[1].UserID)
	assert.Equal(t, int64(30), subs[2].UserID)
}

func TestCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewFileSubscriptionRepository(path)
	ctx := context.Background()

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// Saving over the corrupt file recovers the store.
	require.NoError(t, repo.Save(ctx, &subscription.Subscription{UserID: 5}))
	got, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.UserID)
}
