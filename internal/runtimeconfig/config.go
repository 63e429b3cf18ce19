package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrDefaultLocaleRequired    = errors.New("portal config: default locale is required")
	ErrDefaultLocaleUnsupported = errors.New("portal config: default locale must be one of the configured locales")
	ErrStorageProviderUnknown   = errors.New("portal config: storage provider is invalid")
	ErrStorageDSNRequired       = errors.New("portal config: storage dsn is required for sql and mongo providers")
	ErrMongoDatabaseRequired    = errors.New("portal config: mongo database name is required")
	ErrTranslationTimeout       = errors.New("portal config: translation timeout must be positive")
	ErrTranslationRetries       = errors.New("portal config: translation retries must be between 0 and 10")
	ErrLoggingProviderUnknown   = errors.New("portal config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("portal config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("portal config: logging format is invalid")
)

// Storage providers understood by the DI container.
const (
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMongo    = "mongo"
)

// Config aggregates the runtime settings of the portal module.
type Config struct {
	DefaultLocale string             `yaml:"default_locale" env:"PORTAL_DEFAULT_LOCALE"`
	Locales       []string           `yaml:"locales" env:"PORTAL_LOCALES" envSeparator:","`
	Storage       StorageConfig      `yaml:"storage"`
	Cache         CacheConfig        `yaml:"cache"`
	Legacy        LegacyConfig       `yaml:"legacy"`
	Translations  TranslationsConfig `yaml:"translations"`
	Media         MediaConfig        `yaml:"media"`
	HTTP          HTTPConfig         `yaml:"http"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// StorageConfig selects the primary store.
type StorageConfig struct {
	Provider string `yaml:"provider" env:"PORTAL_STORAGE_PROVIDER"`
	DSN      string `yaml:"dsn" env:"PORTAL_STORAGE_DSN"`
	// Database names the Mongo database; ignored by SQL providers.
	Database       string        `yaml:"database" env:"PORTAL_STORAGE_DATABASE"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"PORTAL_STORAGE_CONNECT_TIMEOUT"`
}

// CacheConfig toggles the repository cache in front of SQL stores.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" env:"PORTAL_CACHE_ENABLED"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"PORTAL_CACHE_TTL"`
}

// LegacyConfig points at the flat JSON snapshot used for first-read imports.
type LegacyConfig struct {
	Dir string `yaml:"dir" env:"PORTAL_LEGACY_DIR"`
}

// TranslationsConfig bounds the dictionary lookup.
type TranslationsConfig struct {
	Timeout     time.Duration `yaml:"timeout" env:"PORTAL_TRANSLATIONS_TIMEOUT"`
	MaxRetries  int           `yaml:"max_retries" env:"PORTAL_TRANSLATIONS_MAX_RETRIES"`
	BaseBackoff time.Duration `yaml:"base_backoff" env:"PORTAL_TRANSLATIONS_BACKOFF"`
	SetupSecret string        `yaml:"setup_secret" env:"PORTAL_SETUP_SECRET"`
}

// MediaConfig configures the filesystem blob store.
type MediaConfig struct {
	Dir       string `yaml:"dir" env:"PORTAL_MEDIA_DIR"`
	URLPrefix string `yaml:"url_prefix" env:"PORTAL_MEDIA_URL_PREFIX"`
}

// HTTPConfig configures the optional JSON adapter.
type HTTPConfig struct {
	Addr          string `yaml:"addr" env:"PORTAL_HTTP_ADDR"`
	SessionSecret string `yaml:"session_secret" env:"PORTAL_SESSION_SECRET"`
	SessionName   string `yaml:"session_name" env:"PORTAL_SESSION_NAME"`
	CookieSecure  bool   `yaml:"cookie_secure" env:"PORTAL_COOKIE_SECURE"`
}

// LoggingConfig selects a logger provider.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" env:"PORTAL_LOG_PROVIDER"`
	Level     string   `yaml:"level" env:"PORTAL_LOG_LEVEL"`
	Format    string   `yaml:"format" env:"PORTAL_LOG_FORMAT"`
	AddSource bool     `yaml:"add_source" env:"PORTAL_LOG_ADD_SOURCE"`
	Focus     []string `yaml:"focus" env:"PORTAL_LOG_FOCUS" envSeparator:","`
}

// DefaultConfig returns a memory-backed configuration serving Bosnian first
// and English second.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "bs",
		Locales:       []string{"bs", "en"},
		Storage: StorageConfig{
			Provider:       ProviderMemory,
			ConnectTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Legacy: LegacyConfig{
			Dir: "data/json",
		},
		Translations: TranslationsConfig{
			Timeout:     5 * time.Second,
			MaxRetries:  3,
			BaseBackoff: time.Second,
		},
		Media: MediaConfig{
			Dir:       "public/images",
			URLPrefix: "/images",
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			SessionName: "portal_session",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks and returns the first sentinel error
// found.
func (cfg Config) Validate() error {
	locale := strings.TrimSpace(cfg.DefaultLocale)
	if locale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales) > 0 && !slices.Contains(cfg.Locales, locale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnsupported, locale)
	}

	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "", ProviderMemory:
	case ProviderSQLite, ProviderPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	case ProviderMongo:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
		if strings.TrimSpace(cfg.Storage.Database) == "" {
			return ErrMongoDatabaseRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if err := validation.Validate(cfg.Translations.Timeout, validation.Required, validation.Min(time.Millisecond)); err != nil {
		return fmt.Errorf("%w: %s", ErrTranslationTimeout, cfg.Translations.Timeout)
	}
	if err := validation.Validate(cfg.Translations.MaxRetries, validation.Min(0), validation.Max(10)); err != nil {
		return fmt.Errorf("%w: %d", ErrTranslationRetries, cfg.Translations.MaxRetries)
	}

	logProvider := normalize(cfg.Logging.Provider)
	if logProvider != "" && !slices.Contains([]string{"console", "gologger"}, logProvider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
	}
	if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if logProvider == "gologger" {
		if format := normalize(cfg.Logging.Format); format != "" && !slices.Contains([]string{"json", "console", "pretty"}, format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageProvider returns the normalized provider name, memory when unset.
func (cfg Config) StorageProvider() string {
	if provider := normalize(cfg.Storage.Provider); provider != "" {
		return provider
	}
	return ProviderMemory
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}
