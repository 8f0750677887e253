package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/storage"
)

// ErrCorruptRecord is returned when a stored value cannot be decoded.
var ErrCorruptRecord = errors.New("stored record is corrupt")

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// List returns every registered account in registration order
	List(ctx context.Context) ([]models.Account, error)

	// SaveAll rewrites the whole registry
	SaveAll(ctx context.Context, accounts []models.Account) error

	// FindLegacy returns the single plaintext record written by the
	// browser-era application, or nil if there is none
	FindLegacy(ctx context.Context) (*LegacyAccount, error)

	// DeleteLegacy removes the legacy record
	DeleteLegacy(ctx context.Context) error
}

// TaskRepository defines the interface for task collection data access
type TaskRepository interface {
	// Load returns the owner's collection in insertion order
	Load(ctx context.Context, owner string) ([]models.Task, error)

	// SaveAll rewrites the owner's whole collection
	SaveAll(ctx context.Context, owner string, tasks []models.Task) error
}

// SessionRepository defines the interface for per-device session markers
type SessionRepository interface {
	// Find returns the device's marker, or nil if nobody is remembered
	Find(ctx context.Context, deviceID string) (*models.SessionMarker, error)

	// Save overwrites the device's marker
	Save(ctx context.Context, deviceID string, marker models.SessionMarker) error

	// Delete removes the device's marker
	Delete(ctx context.Context, deviceID string) error
}

// PreferenceRepository defines the interface for per-device preferences
type PreferenceRepository interface {
	// Theme returns the stored theme and whether one was stored
	Theme(ctx context.Context, deviceID string) (string, bool, error)

	// SetTheme stores the theme
	SetTheme(ctx context.Context, deviceID, theme string) error
}

func getJSON(ctx context.Context, s storage.Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	return true, nil
}

func putJSON(ctx context.Context, s storage.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
