package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyFTPHost       = "ftp.host"
	keyFTPPort       = "ftp.port"
	keyFTPUser       = "ftp.user"
	keyFTPPassword   = "ftp.password"
	keyFTPRemotePath = "ftp.remote_path"
	keyFTPTimeout    = "ftp.timeout"

	keyFeedLocalPath = "feed.local_path"
	keyFeedSeparator = "feed.separator"
	keyFeedSKUColumn = "feed.sku_column"

	keyCatalogAPIVersion    = "catalog.api_version"
	keyCatalogTimeout       = "catalog.timeout"
	keyCatalogRPS           = "catalog.requests_per_second"
	keyCatalogLevelPageSize = "catalog.inventory_level_page_size"
	keyCatalogLocationPage  = "catalog.location_page_size"

	keyRetryMaxAttempts     = "retry.max_attempts"
	keyRetryInitialInterval = "retry.initial_interval"
	keyRetryMaxInterval     = "retry.max_interval"

	keyServerAddr = "server.addr"

	keySchedulerEnabled = "scheduler.enabled"

	keyLoggingVerbose     = "logging.verbose"
	keyLoggingSampleEvery = "logging.sample_every"

	keyStoreDataDir = "store.data_dir"
)

// schedulerTaskKeys maps task IDs to their config key (underscore version for TOML).
var schedulerTaskKeys = map[string]string{
	domain.TaskIDInventorySync: "inventory_sync",
	domain.TaskIDZeroOut:       "zero_out",
}

// valueKind is the type a config key is stored as.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settingKinds lists the keys accepted by Set.
var settingKinds = map[string]valueKind{
	keyFTPHost:              kindString,
	keyFTPPort:              kindInt,
	keyFTPUser:              kindString,
	keyFTPPassword:          kindString,
	keyFTPRemotePath:        kindString,
	keyFTPTimeout:           kindDuration,
	keyFeedLocalPath:        kindString,
	keyFeedSeparator:        kindString,
	keyFeedSKUColumn:        kindString,
	keyCatalogAPIVersion:    kindString,
	keyCatalogTimeout:       kindDuration,
	keyCatalogRPS:           kindFloat,
	keyCatalogLevelPageSize: kindInt,
	keyCatalogLocationPage:  kindInt,
	keyRetryMaxAttempts:     kindInt,
	keyRetryInitialInterval: kindDuration,
	keyRetryMaxInterval:     kindDuration,
	keyServerAddr:           kindString,
	keySchedulerEnabled:     kindBool,
	keyLoggingVerbose:       kindBool,
	keyLoggingSampleEvery:   kindInt,
	keyStoreDataDir:         kindString,
}

func init() {
	for _, key := range schedulerTaskKeys {
		settingKinds["scheduler."+key+".enabled"] = kindBool
		settingKinds["scheduler."+key+".interval"] = kindDuration
	}
	for _, t := range domain.DefaultLocationTargets() {
		settingKinds["locations."+t.Key+".name"] = kindString
		settingKinds["locations."+t.Key+".column"] = kindString
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		FTP: domain.FTPSettings{
			Host:       s.configStore.GetString(keyFTPHost),
			Port:       s.getInt(keyFTPPort, defaults.FTP.Port),
			User:       s.configStore.GetString(keyFTPUser),
			Password:   s.configStore.GetString(keyFTPPassword),
			RemotePath: s.getString(keyFTPRemotePath, defaults.FTP.RemotePath),
			Timeout:    s.getDuration(keyFTPTimeout, defaults.FTP.Timeout),
		},
		Feed: domain.FeedSettings{
			LocalPath: s.getString(keyFeedLocalPath, defaults.Feed.LocalPath),
			Separator: s.getSeparator(defaults.Feed.Separator),
			SKUColumn: s.getString(keyFeedSKUColumn, defaults.Feed.SKUColumn),
		},
		Catalog: domain.CatalogSettings{
			APIVersion:             s.getString(keyCatalogAPIVersion, defaults.Catalog.APIVersion),
			Timeout:                s.getDuration(keyCatalogTimeout, defaults.Catalog.Timeout),
			RequestsPerSecond:      s.getFloat(keyCatalogRPS, defaults.Catalog.RequestsPerSecond),
			InventoryLevelPageSize: s.getInt(keyCatalogLevelPageSize, defaults.Catalog.InventoryLevelPageSize),
			LocationPageSize:       s.getInt(keyCatalogLocationPage, defaults.Catalog.LocationPageSize),
		},
		Locations: s.getLocations(defaults.Locations),
		Retry: domain.RetrySettings{
			MaxAttempts:     s.getInt(keyRetryMaxAttempts, defaults.Retry.MaxAttempts),
			InitialInterval: s.getDuration(keyRetryInitialInterval, defaults.Retry.InitialInterval),
			MaxInterval:     s.getDuration(keyRetryMaxInterval, defaults.Retry.MaxInterval),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		Scheduler: s.GetSchedulerConfig(),
		Logging: domain.LoggingSettings{
			Verbose:     s.getBool(keyLoggingVerbose, defaults.Logging.Verbose),
			SampleEvery: s.getInt(keyLoggingSampleEvery, defaults.Logging.SampleEvery),
		},
		Store: domain.StoreSettings{
			DataDir: s.configStore.GetString(keyStoreDataDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyFTPHost, settings.FTP.Host},
		{keyFTPPort, settings.FTP.Port},
		{keyFTPUser, settings.FTP.User},
		{keyFTPRemotePath, settings.FTP.RemotePath},
		{keyFTPTimeout, settings.FTP.Timeout.String()},
		{keyFeedLocalPath, settings.Feed.LocalPath},
		{keyFeedSeparator, string(settings.Feed.Separator)},
		{keyFeedSKUColumn, settings.Feed.SKUColumn},
		{keyCatalogAPIVersion, settings.Catalog.APIVersion},
		{keyCatalogTimeout, settings.Catalog.Timeout.String()},
		{keyCatalogRPS, settings.Catalog.RequestsPerSecond},
		{keyCatalogLevelPageSize, settings.Catalog.InventoryLevelPageSize},
		{keyCatalogLocationPage, settings.Catalog.LocationPageSize},
		{keyRetryMaxAttempts, settings.Retry.MaxAttempts},
		{keyRetryInitialInterval, settings.Retry.InitialInterval.String()},
		{keyRetryMaxInterval, settings.Retry.MaxInterval.String()},
		{keyServerAddr, settings.Server.Addr},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keyLoggingVerbose, settings.Logging.Verbose},
		{keyLoggingSampleEvery, settings.Logging.SampleEvery},
		{keyStoreDataDir, settings.Store.DataDir},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Only overwrite the stored password when one is given
	if settings.FTP.Password != "" {
		if err := s.configStore.Set(keyFTPPassword, settings.FTP.Password); err != nil {
			return fmt.Errorf("save %s: %w", keyFTPPassword, err)
		}
	}

	for _, t := range settings.Locations {
		if err := s.configStore.Set("locations."+t.Key+".name", t.Name); err != nil {
			return fmt.Errorf("save location %s: %w", t.Key, err)
		}
		if err := s.configStore.Set("locations."+t.Key+".column", t.Column); err != nil {
			return fmt.Errorf("save location %s: %w", t.Key, err)
		}
	}

	for taskID, configKey := range schedulerTaskKeys {
		taskCfg := settings.Scheduler.GetTaskConfig(taskID)
		prefix := "scheduler." + configKey + "."
		if err := s.configStore.Set(prefix+"enabled", taskCfg.Enabled); err != nil {
			return fmt.Errorf("save scheduler %s: %w", configKey, err)
		}
		if err := s.configStore.Set(prefix+"interval", taskCfg.Interval.String()); err != nil {
			return fmt.Errorf("save scheduler %s: %w", configKey, err)
		}
	}

	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration like 30s or 1h", domain.ErrInvalidInput, key)
		}
		parsed = value
	default:
		if key == keyFeedSeparator && utf8.RuneCountInString(value) != 1 {
			return fmt.Errorf("%w: %s must be a single character", domain.ErrInvalidInput, key)
		}
		parsed = value
	}

	return s.configStore.Set(key, parsed)
}

// Validate checks that settings are complete enough to run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

func validateSettings(settings *domain.AppSettings) error {
	if !settings.FTP.IsConfigured() {
		return fmt.Errorf("%w: ftp.host and ftp.user must be set", domain.ErrInvalidInput)
	}
	if settings.Feed.SKUColumn == "" {
		return fmt.Errorf("%w: feed.sku_column must be set", domain.ErrInvalidInput)
	}
	if len(settings.Locations) == 0 {
		return fmt.Errorf("%w: no target locations configured", domain.ErrInvalidInput)
	}
	for _, t := range settings.Locations {
		if t.Name == "" || t.Column == "" {
			return fmt.Errorf("%w: location %q needs a name and a column", domain.ErrInvalidInput, t.Key)
		}
		if !t.Format.IsValid() {
			return fmt.Errorf("%w: location %q has unknown quantity format %q", domain.ErrInvalidInput, t.Key, t.Format)
		}
	}
	if settings.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	for taskID, configKey := range schedulerTaskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]
		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		taskCfg.Interval = s.getDuration(prefix+"interval", taskCfg.Interval)

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getSeparator(defaultVal rune) rune {
	str := s.configStore.GetString(keyFeedSeparator)
	if utf8.RuneCountInString(str) != 1 {
		return defaultVal
	}
	r, _ := utf8.DecodeRuneInString(str)
	return r
}

// getLocations overlays configured names and columns on the default
// targets. Quantity formats are fixed per target.
func (s *SettingsService) getLocations(defaults []domain.LocationTarget) []domain.LocationTarget {
	targets := make([]domain.LocationTarget, len(defaults))
	for i, t := range defaults {
		prefix := "locations." + t.Key + "."
		t.Name = strings.TrimSpace(s.getString(prefix+"name", t.Name))
		t.Column = strings.TrimSpace(s.getString(prefix+"column", t.Column))
		targets[i] = t
	}
	return targets
}
