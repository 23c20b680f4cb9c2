package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// SettingsStorage implements the SettingsStorage interface for Badger
type SettingsStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSettingsStorage creates a new SettingsStorage instance
func NewSettingsStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SettingsStorage {
	return &SettingsStorage{
		db:     db,
		logger: logger,
	}
}

// normalizeUserID converts a user id to lowercase for case-insensitive storage
func (s *SettingsStorage) normalizeUserID(userID string) string {
	return strings.ToLower(strings.TrimSpace(userID))
}

// Upsert inserts or updates a user's location settings. CreatedAt is
// preserved on updates; repeated writes are last-write-wins.
func (s *SettingsStorage) Upsert(ctx context.Context, settings *models.UserSettings) error {
	if settings == nil || settings.UserID == "" {
		return fmt.Errorf("settings must have a user id")
	}

	userID := s.normalizeUserID(settings.UserID)
	now := time.Now()

	record := *settings
	record.UserID = userID
	record.CreatedAt = now
	record.UpdatedAt = now

	// Check if exists to preserve CreatedAt
	var existing models.UserSettings
	err := s.db.Store().Get(userID, &existing)
	if err == nil {
		record.CreatedAt = existing.CreatedAt
	} else if err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to check settings existence: %w", err)
	}

	if err := s.db.Store().Upsert(userID, &record); err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("location", record.LocationName).
		Msg("User settings saved")

	return nil
}

// Get retrieves a user's settings, or ErrSettingsNotFound
func (s *SettingsStorage) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.Store().Get(s.normalizeUserID(userID), &settings)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &settings, nil
}

// Delete removes a user's settings
func (s *SettingsStorage) Delete(ctx context.Context, userID string) error {
	err := s.db.Store().Delete(s.normalizeUserID(userID), &models.UserSettings{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
