// Package portal is the locale-aware content layer of a municipal website:
// news, activities and carousel slides in Bosnian and English, lazily
// imported from the legacy JSON export, kept in manual order, plus UI
// translations and site settings.
package portal

import (
	"context"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/contentsync"
	"github.com/goliatone/go-portal/internal/di"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

type (
	// Service is the content sync facade.
	Service = contentsync.Service
	// Item is a news item, activity or carousel slide.
	Item      = content.Item
	Partition = content.Partition
	Kind      = domain.Kind
	Status    = domain.Status
	// Dictionary maps UI keys to localized text.
	Dictionary = i18n.Dictionary
	Tier       = i18n.Tier
	Settings   = settings.Settings
	Social     = settings.Social
	Principal  = interfaces.Principal
	Option     = di.Option
)

const (
	KindNews     = domain.KindNews
	KindActivity = domain.KindActivity
	KindCarousel = domain.KindCarousel

	StatusUpcoming = domain.StatusUpcoming
	StatusOngoing  = domain.StatusOngoing
	StatusPast     = domain.StatusPast

	RoleAdmin = interfaces.RoleAdmin
)

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithLegacySource   = di.WithLegacySource
	WithBlobStore      = di.WithBlobStore
	WithClock          = di.WithClock
	WithCache          = di.WithCache
	WithOpener         = di.WithOpener

	IsNotFound           = domain.IsNotFound
	IsValidation         = domain.IsValidation
	IsStoreUnavailable   = domain.IsStoreUnavailable
	IsForbidden          = domain.IsForbidden
	IsOrderInconsistency = domain.IsOrderInconsistency
)

// Module is the top level runtime.
type Module struct {
	container *di.Container
}

// New constructs a Module from cfg and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Sync returns the content sync facade.
func (m *Module) Sync() *Service {
	return m.container.Sync()
}

// Translations returns the translation resolver.
func (m *Module) Translations() *i18n.Resolver {
	return m.container.Translations()
}

// Settings returns the settings service.
func (m *Module) Settings() *settings.Service {
	return m.container.Settings()
}

// Close releases the store connection.
func (m *Module) Close(ctx context.Context) error {
	return m.container.Close(ctx)
}
