package di

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/contentsync"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/legacy"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/logging/console"
	"github.com/goliatone/go-portal/internal/logging/gologger"
	"github.com/goliatone/go-portal/internal/media"
	"github.com/goliatone/go-portal/internal/migrate"
	"github.com/goliatone/go-portal/internal/ordering"
	"github.com/goliatone/go-portal/internal/runtimeconfig"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/storage"
	"github.com/goliatone/go-portal/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires module dependencies. Store backed repositories sit behind
// proxies so the connection is only opened on first use.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	locales        *locale.Resolver
	connector      *storage.Connector
	opener         storage.Opener
	backends       *backends
	source         legacy.Source
	blobs          interfaces.BlobStore
	now            func() time.Time

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	itemRepo       content.Repository
	dictionaries   i18n.Store
	settingsRepo   settings.Repository
	importer       *migrate.Importer
	engine         *ordering.Engine
	translationSvc *i18n.Resolver
	settingsSvc    *settings.Service
	syncSvc        *contentsync.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithOpener replaces the store opener derived from the storage config.
func WithOpener(open storage.Opener) Option {
	return func(c *Container) {
		c.opener = open
	}
}

// WithCache overrides the repository cache used for SQL stores.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLegacySource overrides the snapshot source read on first access.
func WithLegacySource(source legacy.Source) Option {
	return func(c *Container) {
		c.source = source
	}
}

// WithBlobStore overrides the filesystem media store.
func WithBlobStore(store interfaces.BlobStore) Option {
	return func(c *Container) {
		c.blobs = store
	}
}

// WithClock overrides the clock used for derived fields and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		locales: locale.NewResolver(cfg.DefaultLocale, cfg.Locales),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(cfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.cacheService != nil {
		return
	}
	cacheCfg := repocache.DefaultConfig()
	if c.Config.Cache.DefaultTTL > 0 {
		cacheCfg.TTL = c.Config.Cache.DefaultTTL
	}
	service, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		logging.StorageLogger(c.loggerProvider).Warn("storage.cache_disabled", "error", err)
		return
	}
	c.cacheService = service
	c.keySerializer = repocache.NewDefaultKeySerializer()
}

func (c *Container) configureRepositories() {
	if c.opener == nil && c.Config.StorageProvider() == runtimeconfig.ProviderMemory {
		c.itemRepo = content.NewMemoryRepository()
		c.dictionaries = i18n.NewMemoryStore()
		c.settingsRepo = settings.NewMemoryRepository()
		return
	}

	open := c.opener
	if open == nil {
		open = storage.Open(storage.Config{
			Provider: c.Config.StorageProvider(),
			DSN:      c.Config.Storage.DSN,
			Database: c.Config.Storage.Database,
		}, Schema())
	}
	c.connector = storage.NewConnector(open,
		storage.WithConnectTimeout(c.Config.Storage.ConnectTimeout),
		storage.WithLogger(logging.StorageLogger(c.loggerProvider)),
	)
	c.backends = newBackends(c.connector, c.cacheService, c.keySerializer)
	c.itemRepo = &itemRepositoryProxy{backends: c.backends}
	c.dictionaries = &dictionaryStoreProxy{backends: c.backends}
	c.settingsRepo = &settingsRepositoryProxy{backends: c.backends}
}

func (c *Container) configureServices() {
	if c.source == nil && strings.TrimSpace(c.Config.Legacy.Dir) != "" {
		c.source = legacy.NewFSSource(os.DirFS(c.Config.Legacy.Dir))
	}
	if c.blobs == nil && strings.TrimSpace(c.Config.Media.Dir) != "" {
		c.blobs = media.NewFileStore(c.Config.Media.Dir, c.Config.Media.URLPrefix,
			media.WithLogger(logging.ModuleLogger(c.loggerProvider, "portal.media")))
	}

	c.importer = migrate.NewImporter(c.itemRepo, c.source, c.locales,
		migrate.WithLogger(logging.MigrateLogger(c.loggerProvider)),
		migrate.WithClock(c.now),
	)
	c.engine = ordering.NewEngine(c.itemRepo,
		ordering.WithLogger(logging.OrderingLogger(c.loggerProvider)),
	)

	tr := c.Config.Translations
	c.translationSvc = i18n.NewResolver(c.dictionaries, c.locales,
		i18n.WithTimeout(tr.Timeout),
		i18n.WithRetry(tr.MaxRetries, tr.BaseBackoff),
		i18n.WithLogger(logging.TranslationLogger(c.loggerProvider)),
		i18n.WithClock(c.now),
	)
	c.settingsSvc = settings.NewService(c.settingsRepo, c.locales,
		settings.WithLogger(logging.SettingsLogger(c.loggerProvider)),
		settings.WithClock(c.now),
	)

	c.syncSvc = contentsync.NewService(contentsync.Dependencies{
		Repository:   c.itemRepo,
		Importer:     c.importer,
		Engine:       c.engine,
		Translations: c.translationSvc,
		Settings:     c.settingsSvc,
		Blobs:        c.blobs,
		Locales:      c.locales,
	},
		contentsync.WithLogger(logging.SyncLogger(c.loggerProvider)),
		contentsync.WithClock(c.now),
		contentsync.WithSetupSecret(tr.SetupSecret),
	)
}

// Schema lists the table and index setup run after every new connection.
func Schema() storage.Schema {
	return storage.Schema{
		Bun: []func(context.Context, *bun.DB) error{
			content.EnsureSchema,
			i18n.EnsureSchema,
			settings.EnsureSchema,
		},
		Mongo: []func(context.Context, *mongo.Database) error{
			content.EnsureMongoIndexes,
			i18n.EnsureMongoIndexes,
			settings.EnsureMongoIndexes,
		},
	}
}

// Sync returns the content sync facade.
func (c *Container) Sync() *contentsync.Service {
	return c.syncSvc
}

// Translations returns the translation resolver.
func (c *Container) Translations() *i18n.Resolver {
	return c.translationSvc
}

// Settings returns the settings service.
func (c *Container) Settings() *settings.Service {
	return c.settingsSvc
}

// Locales returns the locale resolver shared by every service.
func (c *Container) Locales() *locale.Resolver {
	return c.locales
}

// LoggerProvider returns the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Close releases the store connection when one was opened.
func (c *Container) Close(ctx context.Context) error {
	if c.connector == nil {
		return nil
	}
	if err := c.connector.Close(ctx); err != nil && !errors.Is(err, storage.ErrClosed) {
		return err
	}
	return nil
}
