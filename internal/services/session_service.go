package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/repository"
)

// SessionService remembers which account is logged in on a device.
type SessionService struct {
	repo repository.SessionRepository
	now  Clock
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo repository.SessionRepository, now Clock) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{repo: repo, now: now}
}

// Start builds the marker for account. Only when remember is set is it
// persisted, replacing whatever marker the device had before.
func (s *SessionService) Start(ctx context.Context, deviceID string, account *models.Account, remember bool) (models.SessionMarker, error) {
	marker := models.SessionMarker{
		Username:  account.Username,
		Email:     account.Email,
		StartedAt: s.now(),
	}

	if !remember {
		return marker, nil
	}

	if err := s.repo.Save(ctx, deviceID, marker); err != nil {
		return models.SessionMarker{}, fmt.Errorf("failed to save session: %w", err)
	}
	return marker, nil
}

// Current returns the device's persisted marker; ok is false when none exists.
func (s *SessionService) Current(ctx context.Context, deviceID string) (models.SessionMarker, bool, error) {
	marker, err := s.repo.Find(ctx, deviceID)
	if err != nil {
		return models.SessionMarker{}, false, fmt.Errorf("failed to read session: %w", err)
	}
	if marker == nil {
		return models.SessionMarker{}, false, nil
	}
	marker.Email = NormalizeEmail(marker.Email)
	return *marker, true, nil
}

// End forgets the device's marker. Ending an absent session succeeds.
func (s *SessionService) End(ctx context.Context, deviceID string) error {
	if err := s.repo.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}
