package interfaces

import (
	"context"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// SettingsStorage persists per-user location settings.
type SettingsStorage interface {
	// Upsert stores the settings, preserving CreatedAt on updates.
	Upsert(ctx context.Context, settings *models.UserSettings) error

	// Get returns the settings for the user, or ErrSettingsNotFound.
	Get(ctx context.Context, userID string) (*models.UserSettings, error)

	// Delete removes the settings for the user.
	Delete(ctx context.Context, userID string) error
}

// StorageManager owns the storage backend and its typed stores.
type StorageManager interface {
	SettingsStorage() SettingsStorage
	Close() error
}
