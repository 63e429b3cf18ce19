package settings

import (
	"context"
	"sync"

	"github.com/goliatone/go-portal/internal/domain"
)

// MemoryRepository keeps settings in process memory.
type MemoryRepository struct {
	mu           sync.RWMutex
	presentation *Presentation
	texts        map[string]LocaleText
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{texts: make(map[string]LocaleText)}
}

func (m *MemoryRepository) GetPresentation(context.Context) (*Presentation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.presentation == nil {
		return nil, domain.NotFound("presentation settings", "", "")
	}
	copied := *m.presentation
	return &copied, nil
}

func (m *MemoryRepository) PutPresentation(_ context.Context, presentation *Presentation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *presentation
	m.presentation = &copied
	return nil
}

func (m *MemoryRepository) GetText(_ context.Context, locale string) (*LocaleText, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.texts[locale]
	if !ok {
		return nil, domain.NotFound("settings", locale, locale)
	}
	return &text, nil
}

func (m *MemoryRepository) PutText(_ context.Context, text *LocaleText) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[text.Locale] = *text
	return nil
}

func (m *MemoryRepository) PutSettings(_ context.Context, presentation *Presentation, text *LocaleText) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *presentation
	m.presentation = &copied
	m.texts[text.Locale] = *text
	return nil
}
