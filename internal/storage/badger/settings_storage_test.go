package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

func newTestStorage(t *testing.T) interfaces.SettingsStorage {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewSettingsStorage(db, arbor.NewLogger())
}

func TestSettingsRoundTrip(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	settings := &models.UserSettings{
		UserID:       "grower-42",
		LocationName: "Davis, CA",
		Latitude:     38.5449,
		Longitude:    -121.7405,
	}
	require.NoError(t, storage.Upsert(ctx, settings))

	got, err := storage.Get(ctx, "grower-42")
	require.NoError(t, err)
	assert.Equal(t, "Davis, CA", got.LocationName)
	assert.Equal(t, 38.5449, got.Latitude)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSettingsUpsertPreservesCreatedAt(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Upsert(ctx, &models.UserSettings{
		UserID: "grower-42", LocationName: "Davis, CA", Latitude: 38.54, Longitude: -121.74,
	}))

	first, err := storage.Get(ctx, "grower-42")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, storage.Upsert(ctx, &models.UserSettings{
		UserID: "grower-42", LocationName: "Woodland, CA", Latitude: 38.68, Longitude: -121.77,
	}))

	second, err := storage.Get(ctx, "grower-42")
	require.NoError(t, err)
	assert.Equal(t, "Woodland, CA", second.LocationName, "last write wins")
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "CreatedAt preserved on update")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestSettingsUserIDCaseInsensitive(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Upsert(ctx, &models.UserSettings{
		UserID: "Grower-42", LocationName: "Davis, CA",
	}))

	got, err := storage.Get(ctx, "GROWER-42")
	require.NoError(t, err)
	assert.Equal(t, "Davis, CA", got.LocationName)
}

func TestSettingsNotFound(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, interfaces.ErrSettingsNotFound)
}

func TestSettingsDelete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Upsert(ctx, &models.UserSettings{UserID: "grower-42"}))
	require.NoError(t, storage.Delete(ctx, "grower-42"))

	_, err := storage.Get(ctx, "grower-42")
	assert.ErrorIs(t, err, interfaces.ErrSettingsNotFound)

	// Deleting a missing user is not an error
	assert.NoError(t, storage.Delete(ctx, "nobody"))
}

func TestSettingsUpsertRequiresUserID(t *testing.T) {
	storage := newTestStorage(t)
	assert.Error(t, storage.Upsert(context.Background(), &models.UserSettings{}))
}
