package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/repository"
)

var ErrInvalidTheme = errors.New(`theme must be "dark" or "light"`)

type PreferenceService struct {
	repo repository.PreferenceRepository
}

func NewPreferenceService(repo repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// Theme returns the device's theme, light when unset.
func (s *PreferenceService) Theme(ctx context.Context, deviceID string) (string, error) {
	theme, ok, err := s.repo.Theme(ctx, deviceID)
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	if !ok || theme != constants.ThemeDark {
		return constants.ThemeLight, nil
	}
	return constants.ThemeDark, nil
}

func (s *PreferenceService) SetTheme(ctx context.Context, deviceID, theme string) error {
	if theme != constants.ThemeDark && theme != constants.ThemeLight {
		return ErrInvalidTheme
	}
	if err := s.repo.SetTheme(ctx, deviceID, theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
