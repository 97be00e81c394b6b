package domain

import "time"

// FTPSettings holds the feed server connection.
type FTPSettings struct {
	// Host is the FTP server host name.
	Host string

	// Port is the FTP control port.
	Port int

	// User is the login name.
	User string

	// Password is the login password.
	Password string

	// RemotePath is the feed file path on the server.
	RemotePath string

	// Timeout bounds dialing and each transfer operation.
	Timeout time.Duration
}

// IsConfigured returns true if a host and user are set.
func (f FTPSettings) IsConfigured() bool {
	return f.Host != "" && f.User != ""
}

// FeedSettings describes the feed file layout.
type FeedSettings struct {
	// LocalPath is where the downloaded feed is written.
	LocalPath string

	// Separator is the single-character field separator.
	Separator rune

	// SKUColumn is the column holding the product code.
	SKUColumn string
}

// CatalogSettings holds catalog API tuning.
type CatalogSettings struct {
	// APIVersion is the Admin API version segment of the endpoint.
	APIVersion string

	// Timeout bounds a single API request.
	Timeout time.Duration

	// RequestsPerSecond is the proactive client-side rate limit.
	RequestsPerSecond float64

	// InventoryLevelPageSize is the number of levels fetched per variant.
	InventoryLevelPageSize int

	// LocationPageSize is the number of locations fetched per directory lookup.
	LocationPageSize int
}

// RetrySettings configures retries of transient catalog failures.
type RetrySettings struct {
	// MaxAttempts includes the first attempt. 1 disables retries.
	MaxAttempts int

	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ServerSettings configures the HTTP trigger surface.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// LoggingSettings configures run logging.
type LoggingSettings struct {
	// Verbose enables debug output.
	Verbose bool

	// SampleEvery emits a progress line every N records.
	SampleEvery int
}

// StoreSettings configures local persistence.
type StoreSettings struct {
	// DataDir holds the SQLite database. Empty uses the config directory.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	FTP       FTPSettings
	Feed      FeedSettings
	Catalog   CatalogSettings
	Locations []LocationTarget
	Retry     RetrySettings
	Server    ServerSettings
	Scheduler SchedulerConfig
	Logging   LoggingSettings
	Store     StoreSettings
}

// Target returns the location target with the given key.
func (s AppSettings) Target(key string) (LocationTarget, bool) {
	for _, t := range s.Locations {
		if t.Key == key {
			return t, true
		}
	}
	return LocationTarget{}, false
}

// DefaultAppSettings returns settings matching the supplier feed layout.
// FTP credentials are left unset and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		FTP: FTPSettings{
			Port:       21,
			RemotePath: "/ic_ean_CSV.csv",
			Timeout:    30 * time.Second,
		},
		Feed: FeedSettings{
			LocalPath: "public/CSV/ic_ean_CSV.csv",
			Separator: ';',
			SKUColumn: "PRODUCT_CODE",
		},
		Catalog: CatalogSettings{
			APIVersion:             "2024-10",
			Timeout:                30 * time.Second,
			RequestsPerSecond:      2,
			InventoryLevelPageSize: 250,
			LocationPageSize:       250,
		},
		Locations: DefaultLocationTargets(),
		Retry: RetrySettings{
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		},
		Server: ServerSettings{
			Addr: ":3000",
		},
		Scheduler: DefaultSchedulerConfig(),
		Logging: LoggingSettings{
			SampleEvery: 1000,
		},
	}
}
