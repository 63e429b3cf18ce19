package content

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-portal/internal/domain"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// itemNamespace matches the namespace the cache decorator derives from Item.
const itemNamespace = "item"

// BunRepository implements Repository on bun with optional caching.
type BunRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Item]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

// NewBunRepository creates an item repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates an item repository with caching services.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewItemRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(itemNamespace)
	}
	return &BunRepository{
		db:           db,
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
		now:          time.Now,
	}
}

// EnsureSchema creates the items table and its partition indexes.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Item)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	if _, err := db.NewCreateIndex().Model((*Item)(nil)).
		Index("portal_items_partition_slug_idx").
		Unique().
		IfNotExists().
		Column("kind", "locale", "slug").
		Exec(ctx); err != nil {
		return fmt.Errorf("create items slug index: %w", err)
	}
	if _, err := db.NewCreateIndex().Model((*Item)(nil)).
		Index("portal_items_partition_position_idx").
		IfNotExists().
		Column("kind", "locale", "position").
		Exec(ctx); err != nil {
		return fmt.Errorf("create items position index: %w", err)
	}
	return nil
}

// List reads the partition straight from the database. The cached base
// repository keys List calls by their criteria, and raw query processors all
// serialize to the same key, so partition reads never go through it.
func (r *BunRepository) List(ctx context.Context, kind domain.Kind, locale string) ([]*Item, error) {
	records := make([]*Item, 0)
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.kind = ?", kind).
		Where("?TableAlias.locale = ?", locale).
		OrderExpr("?TableAlias.position ASC").
		OrderExpr("?TableAlias.created_at ASC").
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	return records, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "item", id.String(), "")
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, kind domain.Kind, locale, slug string) (*Item, error) {
	records := make([]*Item, 0, 1)
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.kind = ?", kind).
		Where("?TableAlias.locale = ?", locale).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.NotFound(string(kind), slug, locale)
	}
	return records[0], nil
}

func (r *BunRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	record, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// Update writes the editable columns only. Position belongs to
// UpdatePositions and is never written here.
func (r *BunRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	if _, err := r.GetByID(ctx, item.ID); err != nil {
		return nil, err
	}
	_, err := r.repo.Update(ctx, item,
		repository.UpdateByID(item.ID.String()),
		repository.UpdateColumns(
			"slug",
			"title",
			"subtitle",
			"excerpt",
			"body",
			"media_ref",
			"published_at",
			"start_date",
			"end_date",
			"status",
			"button_text",
			"button_link",
			"updated_at",
		),
	)
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, item.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Item{ID: id}); err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) UpdatePositions(ctx context.Context, partition Partition, positions map[uuid.UUID]int) error {
	if len(positions) == 0 {
		return nil
	}
	now := r.now().UTC()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for id, position := range positions {
			res, err := tx.NewUpdate().
				Model((*Item)(nil)).
				Set("position = ?", position).
				Set("updated_at = ?", now).
				Where("id = ?", id).
				Where("kind = ?", partition.Kind).
				Where("locale = ?", partition.Locale).
				Exec(ctx)
			if err != nil {
				return err
			}
			if affected, err := res.RowsAffected(); err == nil && affected == 0 {
				return domain.NotFound("item", id.String(), partition.Locale)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops every cached item query.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key, locale string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return domain.NotFound(resource, key, locale)
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	return namespace + cache.KeySeparator
}
