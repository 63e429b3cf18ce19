package migrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/legacy"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"golang.org/x/sync/singleflight"
)

// Importer lazily bootstraps empty partitions from the legacy snapshot.
// Imports are one-shot: once a partition holds any record the snapshot is
// never read again for it.
type Importer struct {
	repo       content.Repository
	source     legacy.Source
	locales    *locale.Resolver
	strategies map[domain.Kind]Strategy
	logger     interfaces.Logger
	now        func() time.Time
	flights    singleflight.Group

	mu    sync.Mutex
	locks map[content.Partition]*sync.RWMutex
}

// Option customises an Importer.
type Option func(*Importer)

// WithLogger sets the importer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock overrides the clock used for status derivation.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithStrategy registers or replaces the strategy for its kind.
func WithStrategy(strategy Strategy) Option {
	return func(i *Importer) {
		if strategy != nil {
			i.strategies[strategy.Kind()] = strategy
		}
	}
}

// NewImporter wires an importer. A nil source disables importing.
func NewImporter(repo content.Repository, source legacy.Source, locales *locale.Resolver, opts ...Option) *Importer {
	importer := &Importer{
		repo:       repo,
		source:     source,
		locales:    locales,
		strategies: DefaultStrategies(),
		logger:     logging.NoOp(),
		now:        time.Now,
		locks:      make(map[content.Partition]*sync.RWMutex),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(importer)
		}
	}
	return importer
}

// GetOrImport returns the partition for kind in the resolved locale,
// importing it from the legacy snapshot when the store holds no record for
// it. Store and snapshot failures degrade to the records already read (often
// none) and are logged; only an unknown kind or a cancelled context is
// returned as an error.
func (i *Importer) GetOrImport(ctx context.Context, kind domain.Kind, requestedLocale string) ([]*content.Item, error) {
	strategy, ok := i.strategies[kind]
	if !ok {
		return nil, domain.NotFound("collection", string(kind), "")
	}
	loc := i.locales.Resolve(requestedLocale)
	logger := logging.WithPartition(i.logger, string(kind), loc)
	partition := content.Partition{Kind: kind, Locale: loc}
	lock := i.partitionLock(partition)

	// Readers wait for a running import so they never see half of it.
	lock.RLock()
	existing, err := i.repo.List(ctx, kind, loc)
	lock.RUnlock()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("import.list_failed", "error", err)
		return []*content.Item{}, nil
	}
	if len(existing) > 0 || i.source == nil {
		return existing, nil
	}

	result, err, _ := i.flights.Do(partition.String(), func() (any, error) {
		lock.Lock()
		defer lock.Unlock()
		return i.importPartition(context.WithoutCancel(ctx), strategy, partition, logger), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneItems(result.([]*content.Item)), nil
}

// ImportAll runs GetOrImport for every kind and supported locale and
// reports the resulting partition sizes.
func (i *Importer) ImportAll(ctx context.Context) (map[content.Partition]int, error) {
	counts := make(map[content.Partition]int)
	for _, kind := range domain.Kinds() {
		if _, ok := i.strategies[kind]; !ok {
			continue
		}
		for _, loc := range i.locales.Supported() {
			items, err := i.GetOrImport(ctx, kind, loc)
			if err != nil {
				return counts, fmt.Errorf("import %s/%s: %w", kind, loc, err)
			}
			counts[content.Partition{Kind: kind, Locale: loc}] = len(items)
		}
	}
	return counts, nil
}

func (i *Importer) importPartition(ctx context.Context, strategy Strategy, partition content.Partition, logger interfaces.Logger) []*content.Item {
	// A flight that started after another finished must not import twice.
	existing, err := i.repo.List(ctx, partition.Kind, partition.Locale)
	if err != nil {
		logger.Warn("import.list_failed", "error", err)
		return []*content.Item{}
	}
	if len(existing) > 0 {
		return existing
	}

	snapshot, err := i.source.Load(ctx, partition.Kind)
	if err != nil {
		if !errors.Is(err, legacy.ErrNoSnapshot) {
			logger.Warn("import.snapshot_unavailable", "error", err)
		}
		return existing
	}
	records := snapshot[partition.Locale]
	if len(records) == 0 {
		return existing
	}

	now := i.now()
	report := &domain.ImportPartialFailure{Kind: partition.Kind, Locale: partition.Locale}
	items := make([]*content.Item, 0, len(records))
	for _, record := range records {
		item, err := strategy.Transform(record, partition.Locale, now)
		if err != nil {
			report.Failures = append(report.Failures, domain.RecordFailure{
				LegacyID: record.Key(),
				Title:    string(record.Title),
				Err:      err,
			})
			continue
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(a, b int) bool {
		return strategy.Less(items[a], items[b])
	})

	imported := 0
	for position, item := range items {
		item.Position = position
		item.CreatedAt = now
		item.UpdatedAt = now
		if err := i.persist(ctx, item); err != nil {
			report.Failures = append(report.Failures, domain.RecordFailure{
				LegacyID: item.LegacyID,
				Title:    item.Title,
				Err:      err,
			})
			continue
		}
		imported++
	}

	if len(report.Failures) > 0 {
		for _, failure := range report.Failures {
			logger.Error("import.record_failed",
				"legacy_id", failure.LegacyID,
				"title", failure.Title,
				"error", failure.Err,
			)
		}
		logger.Error("import.partial_failure", "failed", len(report.Failures), "imported", imported, "error", report)
	}
	logger.Info("import.completed", "imported", imported, "records", len(records))

	fresh, err := i.repo.List(ctx, partition.Kind, partition.Locale)
	if err != nil {
		logger.Warn("import.reload_failed", "error", err)
		return existing
	}
	return fresh
}

// persist inserts item. An item whose deterministic id is already stored
// was imported by a concurrent process and counts as done.
func (i *Importer) persist(ctx context.Context, item *content.Item) error {
	if item.Slug != "" {
		slug, err := content.UniqueSlug(ctx, i.repo, item, item.Slug)
		if err != nil {
			return err
		}
		item.Slug = slug
	}
	if _, err := i.repo.Create(ctx, item); err != nil {
		if stored, getErr := i.repo.GetByID(ctx, item.ID); getErr == nil && stored != nil {
			return nil
		}
		return err
	}
	return nil
}

func (i *Importer) partitionLock(partition content.Partition) *sync.RWMutex {
	i.mu.Lock()
	defer i.mu.Unlock()
	lock, ok := i.locks[partition]
	if !ok {
		lock = &sync.RWMutex{}
		i.locks[partition] = lock
	}
	return lock
}

func cloneItems(items []*content.Item) []*content.Item {
	out := make([]*content.Item, len(items))
	for idx, item := range items {
		out[idx] = content.CloneItem(item)
	}
	return out
}
