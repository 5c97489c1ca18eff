package service

import (
	"context"

	"github.com/noah-isme/study-planner-api/internal/models"
)

type settingsDocument interface {
	Read(ctx context.Context) (models.Settings, bool)
	Write(ctx context.Context, settings models.Settings) error
	Clear(ctx context.Context) error
}

// SettingsService reads and writes user preferences.
type SettingsService struct {
	settings settingsDocument
}

// NewSettingsService creates a settings service.
func NewSettingsService(settings settingsDocument) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns stored settings or the defaults.
func (s *SettingsService) Get(ctx context.Context) models.Settings {
	return readSettings(ctx, s.settings)
}

// Update replaces the settings.
func (s *SettingsService) Update(ctx context.Context, settings models.Settings) (models.Settings, error) {
	if err := s.settings.Write(ctx, settings); err != nil {
		return models.Settings{}, storeFailure(err, "save settings")
	}
	return settings, nil
}

type settingsReader interface {
	Read(ctx context.Context) (models.Settings, bool)
}

func readSettings(ctx context.Context, r settingsReader) models.Settings {
	if settings, ok := r.Read(ctx); ok {
		return settings
	}
	return models.DefaultSettings()
}
