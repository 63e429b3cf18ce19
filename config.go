package portal

import "github.com/goliatone/go-portal/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired    = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnsupported = runtimeconfig.ErrDefaultLocaleUnsupported
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrMongoDatabaseRequired    = runtimeconfig.ErrMongoDatabaseRequired
	ErrTranslationTimeout       = runtimeconfig.ErrTranslationTimeout
	ErrTranslationRetries       = runtimeconfig.ErrTranslationRetries
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config             = runtimeconfig.Config
	StorageConfig      = runtimeconfig.StorageConfig
	CacheConfig        = runtimeconfig.CacheConfig
	LegacyConfig       = runtimeconfig.LegacyConfig
	TranslationsConfig = runtimeconfig.TranslationsConfig
	MediaConfig        = runtimeconfig.MediaConfig
	HTTPConfig         = runtimeconfig.HTTPConfig
	LoggingConfig      = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads the optional YAML file at path and PORTAL_* variables.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
