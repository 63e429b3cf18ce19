package i18n

import (
	"context"
	"maps"
	"sync"

	"github.com/goliatone/go-portal/internal/domain"
)

// MemoryStore is an in-memory Store for scaffolding and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) Get(_ context.Context, locale string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[locale]
	if !ok {
		return nil, domain.NotFound("dictionary", locale, locale)
	}
	return cloneRecord(record), nil
}

func (m *MemoryStore) Put(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.Locale] = cloneRecord(record)
	return nil
}

func cloneRecord(record *Record) *Record {
	copied := *record
	copied.Entries = maps.Clone(record.Entries)
	return &copied
}
