package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/storage"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
)

// repositorySet groups the repositories bound to one store handle.
type repositorySet struct {
	items        content.Repository
	dictionaries i18n.Store
	settings     settings.Repository
}

// backends builds the repository set for the connector's current handle and
// rebuilds it when the connector hands out a new one.
type backends struct {
	connector     *storage.Connector
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	mu     sync.Mutex
	handle *storage.Handle
	set    *repositorySet
}

func newBackends(connector *storage.Connector, cacheService repocache.CacheService, serializer repocache.KeySerializer) *backends {
	return &backends{
		connector:     connector,
		cacheService:  cacheService,
		keySerializer: serializer,
	}
}

func (b *backends) current(ctx context.Context) (*repositorySet, error) {
	handle, err := b.connector.Get(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "connect")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle == handle && b.set != nil {
		return b.set, nil
	}

	var set *repositorySet
	switch handle.Provider {
	case storage.ProviderSQLite, storage.ProviderPostgres:
		set = &repositorySet{
			items:        content.NewBunRepositoryWithCache(handle.Bun, b.cacheService, b.keySerializer),
			dictionaries: i18n.NewBunStore(handle.Bun),
			settings:     settings.NewBunRepository(handle.Bun),
		}
	case storage.ProviderMongo:
		set = &repositorySet{
			items:        content.NewMongoRepository(handle.Mongo),
			dictionaries: i18n.NewMongoStore(handle.Mongo),
			settings:     settings.NewMongoRepository(handle.Mongo),
		}
	default:
		return nil, domain.StoreUnavailable(fmt.Errorf("unsupported provider %q", handle.Provider), "connect")
	}
	b.handle = handle
	b.set = set
	return set, nil
}

// itemRepositoryProxy routes item calls to the connected store.
type itemRepositoryProxy struct {
	backends *backends
}

func (p *itemRepositoryProxy) List(ctx context.Context, kind domain.Kind, locale string) ([]*content.Item, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.items.List(ctx, kind, locale)
}

func (p *itemRepositoryProxy) GetByID(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.items.GetByID(ctx, id)
}

func (p *itemRepositoryProxy) GetBySlug(ctx context.Context, kind domain.Kind, locale, slug string) (*content.Item, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.items.GetBySlug(ctx, kind, locale, slug)
}

func (p *itemRepositoryProxy) Create(ctx context.Context, item *content.Item) (*content.Item, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.items.Create(ctx, item)
}

func (p *itemRepositoryProxy) Update(ctx context.Context, item *content.Item) (*content.Item, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.items.Update(ctx, item)
}

func (p *itemRepositoryProxy) Delete(ctx context.Context, id uuid.UUID) error {
	set, err := p.backends.current(ctx)
	if err != nil {
		return err
	}
	return set.items.Delete(ctx, id)
}

func (p *itemRepositoryProxy) UpdatePositions(ctx context.Context, partition content.Partition, positions map[uuid.UUID]int) error {
	set, err := p.backends.current(ctx)
	if err != nil {
		return err
	}
	return set.items.UpdatePositions(ctx, partition, positions)
}

// dictionaryStoreProxy routes dictionary calls to the connected store.
type dictionaryStoreProxy struct {
	backends *backends
}

func (p *dictionaryStoreProxy) Get(ctx context.Context, locale string) (*i18n.Record, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.dictionaries.Get(ctx, locale)
}

func (p *dictionaryStoreProxy) Put(ctx context.Context, record *i18n.Record) error {
	set, err := p.backends.current(ctx)
	if err != nil {
		return err
	}
	return set.dictionaries.Put(ctx, record)
}

// settingsRepositoryProxy routes settings calls to the connected store.
type settingsRepositoryProxy struct {
	backends *backends
}

func (p *settingsRepositoryProxy) GetPresentation(ctx context.Context) (*settings.Presentation, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.settings.GetPresentation(ctx)
}

func (p *settingsRepositoryProxy) PutPresentation(ctx context.Context, presentation *settings.Presentation) error {
	set, err := p.backends.current(ctx)
	if err != nil {
		return err
	}
	return set.settings.PutPresentation(ctx, presentation)
}

func (p *settingsRepositoryProxy) GetText(ctx context.Context, locale string) (*settings.LocaleText, error) {
	set, err := p.backends.current(ctx)
	if err != nil {
		return nil, err
	}
	return set.settings.GetText(ctx, locale)
}

func (p *settingsRepositoryProxy) PutText(ctx context.Context, text *settings.LocaleText) error {
	set, err := p.backends.current(ctx)
	if err != nil {
		return err
	}
	return set.settings.PutText(ctx, text)
}

func (p *settingsRepositoryProxy) PutSettings(ctx context.Context, presentation *settings.Presentation, text *settings.LocaleText) error {
	set, err := p.backends.current(ctx)
	if err != nil {
		return err
	}
	return set.settings.PutSettings(ctx, presentation, text)
}
