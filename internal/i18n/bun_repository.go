package i18n

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/uptrace/bun"
)

// BunStore implements Store on bun.
type BunStore struct {
	db *bun.DB
}

// NewBunStore creates a bun-backed dictionary store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// EnsureSchema creates the dictionaries table.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create dictionaries table: %w", err)
	}
	return nil
}

func (s *BunStore) Get(ctx context.Context, locale string) (*Record, error) {
	record := new(Record)
	err := s.db.NewSelect().Model(record).Where("?TableAlias.locale = ?", locale).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("dictionary", locale, locale)
		}
		return nil, err
	}
	return record, nil
}

// Put upserts the record keyed by id, swapping every entry in one statement.
func (s *BunStore) Put(ctx context.Context, record *Record) error {
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("entries = EXCLUDED.entries").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
