package contentsync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-portal/internal/authz"
	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/migrate"
	"github.com/goliatone/go-portal/internal/ordering"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/google/uuid"
)

var errNoBlobStore = errors.New("contentsync: no blob store configured")

// Dependencies are the collaborators composed by the Service. Blobs is
// optional; media uploads fail without it.
type Dependencies struct {
	Repository   content.Repository
	Importer     *migrate.Importer
	Engine       *ordering.Engine
	Translations *i18n.Resolver
	Settings     *settings.Service
	Blobs        interfaces.BlobStore
	Locales      *locale.Resolver
}

// Service is the read/write contract of the portal. Every path resolves the
// locale first and every mutation requires the admin role.
type Service struct {
	repo         content.Repository
	importer     *migrate.Importer
	engine       *ordering.Engine
	translations *i18n.Resolver
	settings     *settings.Service
	blobs        interfaces.BlobStore
	locales      *locale.Resolver
	setupSecret  string
	logger       interfaces.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSetupSecret enables the secret-guarded translation setup path.
func WithSetupSecret(secret string) Option {
	return func(s *Service) {
		s.setupSecret = secret
	}
}

func NewService(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		repo:         deps.Repository,
		importer:     deps.Importer,
		engine:       deps.Engine,
		translations: deps.Translations,
		settings:     deps.Settings,
		blobs:        deps.Blobs,
		locales:      deps.Locales,
		logger:       logging.NoOp(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveLocale resolves a requested locale against the supported set.
func (s *Service) ActiveLocale(requested string) string {
	return s.locales.Resolve(requested)
}

// NegotiateLocale prefers an explicit locale and falls back to the
// Accept-Language header.
func (s *Service) NegotiateLocale(explicit, acceptLanguage string) string {
	if strings.TrimSpace(explicit) != "" {
		return s.locales.Resolve(explicit)
	}
	return s.locales.ResolveAcceptLanguage(acceptLanguage)
}

// Locales lists the supported locales, default first.
func (s *Service) Locales() []string {
	return s.locales.Supported()
}

// List returns a partition in manual order, importing it from the legacy
// snapshot on first access.
func (s *Service) List(ctx context.Context, kind domain.Kind, requested string) ([]*content.Item, error) {
	return s.importer.GetOrImport(ctx, kind, requested)
}

// Get returns one item by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "get")
	}
	return item, nil
}

// GetBySlug finds an item by slug in the requested locale and falls back to
// the default locale when the requested one has no such slug.
func (s *Service) GetBySlug(ctx context.Context, kind domain.Kind, requested, slug string) (*content.Item, error) {
	code := s.locales.Resolve(requested)
	slug = strings.TrimSpace(slug)

	candidates := []string{code}
	if def := s.locales.Default(); def != code {
		candidates = append(candidates, def)
	}
	for _, candidate := range candidates {
		if _, err := s.importer.GetOrImport(ctx, kind, candidate); err != nil {
			return nil, err
		}
		item, err := s.repo.GetBySlug(ctx, kind, candidate, slug)
		if err == nil {
			return item, nil
		}
		if !domain.IsNotFound(err) {
			return nil, domain.StoreUnavailable(err, "get_by_slug")
		}
	}
	return nil, domain.NotFound(string(kind), slug, code)
}

// Create stores a new item. News goes to the head of its partition, other
// kinds to the tail.
func (s *Service) Create(ctx context.Context, principal interfaces.Principal, kind domain.Kind, input *content.Item) (*content.Item, error) {
	if err := authz.RequireAdmin(principal, "create "+string(kind)); err != nil {
		return nil, err
	}
	strategy, ok := content.StrategyFor(kind)
	if !ok {
		return nil, domain.NotFound("collection", string(kind), "")
	}

	item := content.CloneItem(input)
	if item == nil {
		item = &content.Item{}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.Locale = s.locales.Resolve(item.Locale)
	item.LegacyID = ""
	now := s.now()
	strategy.Prepare(item, now)
	if err := strategy.Validate(item); err != nil {
		return nil, err
	}

	partition := content.PartitionOf(item)
	// Import first so a new record never shadows the legacy snapshot.
	existing, err := s.importer.GetOrImport(ctx, kind, item.Locale)
	if err != nil {
		return nil, err
	}
	item.Position = len(existing)
	if item.Slug, err = content.UniqueSlug(ctx, s.repo, item, item.Slug); err != nil {
		return nil, domain.StoreUnavailable(err, "create")
	}
	item.CreatedAt = now.UTC()
	item.UpdatedAt = item.CreatedAt

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "create")
	}

	var head []uuid.UUID
	if strategy.PrependNew {
		head = []uuid.UUID{created.ID}
	}
	if _, err := s.engine.Reorder(ctx, partition, head); err != nil {
		s.logger.Warn("sync.position_failed", "id", created.ID, "partition", partition.String(), "error", err)
	}
	s.logger.Info("sync.created", "id", created.ID, "partition", partition.String())
	return s.Get(ctx, created.ID)
}

// Update rewrites an item's editable fields. Kind, locale, position and
// legacy id are kept from the stored record.
func (s *Service) Update(ctx context.Context, principal interfaces.Principal, kind domain.Kind, id uuid.UUID, input *content.Item) (*content.Item, error) {
	if err := authz.RequireAdmin(principal, "update "+string(kind)); err != nil {
		return nil, err
	}
	strategy, ok := content.StrategyFor(kind)
	if !ok {
		return nil, domain.NotFound("collection", string(kind), "")
	}

	item := content.CloneItem(input)
	if item == nil {
		item = &content.Item{}
	}
	item.ID = id
	item.Locale = s.locales.Resolve(item.Locale)
	keepMedia := strings.TrimSpace(item.MediaRef) == ""
	keepPublished := item.PublishedAt == nil
	now := s.now()
	strategy.Prepare(item, now)
	if err := strategy.Validate(item); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "update")
	}
	if existing.Kind != kind {
		return nil, domain.NotFound(string(kind), id.String(), existing.Locale)
	}
	item.Locale = existing.Locale
	item.LegacyID = existing.LegacyID
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = now.UTC()
	if keepMedia && existing.MediaRef != "" {
		item.MediaRef = existing.MediaRef
	}
	if keepPublished && existing.PublishedAt != nil {
		item.PublishedAt = existing.PublishedAt
	}
	if item.Slug, err = content.UniqueSlug(ctx, s.repo, item, item.Slug); err != nil {
		return nil, domain.StoreUnavailable(err, "update")
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "update")
	}
	s.logger.Info("sync.updated", "id", id, "partition", content.PartitionOf(updated).String())
	return updated, nil
}

// Delete removes an item, closes the gap it leaves in the order and drops
// its uploaded media.
func (s *Service) Delete(ctx context.Context, principal interfaces.Principal, id uuid.UUID) error {
	if err := authz.RequireAdmin(principal, "delete"); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.StoreUnavailable(err, "delete")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.StoreUnavailable(err, "delete")
	}

	partition := content.PartitionOf(existing)
	if _, err := s.engine.Reorder(ctx, partition, nil); err != nil {
		s.logger.Warn("sync.position_failed", "id", id, "partition", partition.String(), "error", err)
	}
	s.dropMedia(ctx, existing)
	s.logger.Info("sync.deleted", "id", id, "partition", partition.String())
	return nil
}

func (s *Service) dropMedia(ctx context.Context, item *content.Item) {
	if s.blobs == nil || item.MediaRef == "" {
		return
	}
	if strategy, ok := content.StrategyFor(item.Kind); ok && item.MediaRef == strategy.Placeholder {
		return
	}
	if err := s.blobs.Delete(ctx, item.MediaRef); err != nil {
		s.logger.Debug("sync.media_kept", "ref", item.MediaRef, "error", err)
	}
}
