package driving

import "github.com/custodia-labs/stocksync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key.
	Set(key, value string) error

	// Validate checks that settings are complete enough to run.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
