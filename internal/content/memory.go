package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*Item)}
}

func (m *MemoryRepository) List(_ context.Context, kind domain.Kind, locale string) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Item, 0)
	for _, item := range m.items {
		if item.Kind == kind && item.Locale == locale {
			out = append(out, CloneItem(item))
		}
	}
	SortByPosition(out)
	return out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, domain.NotFound("item", id.String(), "")
	}
	return CloneItem(item), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, kind domain.Kind, locale, slug string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if item := m.findSlug(kind, locale, slug); item != nil {
		return CloneItem(item), nil
	}
	return nil, domain.NotFound(string(kind), slug, locale)
}

func (m *MemoryRepository) Create(_ context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, fmt.Errorf("memory repository: nil item")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[item.ID]; exists {
		return nil, fmt.Errorf("memory repository: item %s already exists", item.ID)
	}
	if item.Slug != "" && m.findSlug(item.Kind, item.Locale, item.Slug) != nil {
		return nil, fmt.Errorf("memory repository: slug %q already exists in %s/%s", item.Slug, item.Kind, item.Locale)
	}
	stored := CloneItem(item)
	m.items[stored.ID] = stored
	return CloneItem(stored), nil
}

func (m *MemoryRepository) Update(_ context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, fmt.Errorf("memory repository: nil item")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.items[item.ID]
	if !exists {
		return nil, domain.NotFound("item", item.ID.String(), item.Locale)
	}
	if item.Slug != "" {
		if other := m.findSlug(current.Kind, current.Locale, item.Slug); other != nil && other.ID != item.ID {
			return nil, fmt.Errorf("memory repository: slug %q already exists in %s/%s", item.Slug, current.Kind, current.Locale)
		}
	}
	stored := CloneItem(item)
	stored.Kind = current.Kind
	stored.Locale = current.Locale
	stored.Position = current.Position
	stored.LegacyID = current.LegacyID
	stored.CreatedAt = current.CreatedAt
	m.items[stored.ID] = stored
	return CloneItem(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return domain.NotFound("item", id.String(), "")
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryRepository) UpdatePositions(_ context.Context, partition Partition, positions map[uuid.UUID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range positions {
		item, ok := m.items[id]
		if !ok || PartitionOf(item) != partition {
			return domain.NotFound("item", id.String(), partition.Locale)
		}
	}
	for id, position := range positions {
		m.items[id].Position = position
	}
	return nil
}

func (m *MemoryRepository) findSlug(kind domain.Kind, locale, slug string) *Item {
	if slug == "" {
		return nil
	}
	for _, item := range m.items {
		if item.Kind == kind && item.Locale == locale && item.Slug == slug {
			return item
		}
	}
	return nil
}

// SortByPosition orders items by position, then creation time, then id so
// equal positions still produce a stable order.
func SortByPosition(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}
