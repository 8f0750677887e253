package repository

import (
	"context"

	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/storage"
)

// DeviceStore returns the namespace holding one device's keys.
func DeviceStore(base storage.Store, deviceID string) storage.Store {
	return storage.Prefixed(base, constants.StorageKeyDevicePrefix+deviceID+"/")
}

// StoreSessionRepository keeps one marker per device
type StoreSessionRepository struct {
	store storage.Store
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(store storage.Store) SessionRepository {
	return &StoreSessionRepository{store: store}
}

func (r *StoreSessionRepository) Find(ctx context.Context, deviceID string) (*models.SessionMarker, error) {
	device := DeviceStore(r.store, deviceID)

	for _, key := range []string{constants.StorageKeySession, constants.StorageKeyLegacySession} {
		var marker models.SessionMarker
		ok, err := getJSON(ctx, device, key, &marker)
		if err != nil {
			return nil, err
		}
		if ok && marker.Email != "" {
			return &marker, nil
		}
	}

	return nil, nil
}

func (r *StoreSessionRepository) Save(ctx context.Context, deviceID string, marker models.SessionMarker) error {
	return putJSON(ctx, DeviceStore(r.store, deviceID), constants.StorageKeySession, marker)
}

func (r *StoreSessionRepository) Delete(ctx context.Context, deviceID string) error {
	device := DeviceStore(r.store, deviceID)
	if err := device.Delete(ctx, constants.StorageKeySession); err != nil {
		return err
	}
	return device.Delete(ctx, constants.StorageKeyLegacySession)
}

// StorePreferenceRepository keeps per-device preferences as literal strings
type StorePreferenceRepository struct {
	store storage.Store
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(store storage.Store) PreferenceRepository {
	return &StorePreferenceRepository{store: store}
}

func (r *StorePreferenceRepository) Theme(ctx context.Context, deviceID string) (string, bool, error) {
	return DeviceStore(r.store, deviceID).Get(ctx, constants.StorageKeyTheme)
}

func (r *StorePreferenceRepository) SetTheme(ctx context.Context, deviceID, theme string) error {
	return DeviceStore(r.store, deviceID).Set(ctx, constants.StorageKeyTheme, theme)
}
