package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/uptrace/bun"
)

// BunRepository stores settings in two tables.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// EnsureSchema creates the settings tables.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*Presentation)(nil), (*LocaleText)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create settings table: %w", err)
		}
	}
	return nil
}

func (r *BunRepository) GetPresentation(ctx context.Context) (*Presentation, error) {
	presentation := new(Presentation)
	if err := r.db.NewSelect().Model(presentation).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("presentation settings", "", "")
		}
		return nil, err
	}
	return presentation, nil
}

func (r *BunRepository) PutPresentation(ctx context.Context, presentation *Presentation) error {
	return putPresentation(ctx, r.db, presentation)
}

func putPresentation(ctx context.Context, db bun.IDB, presentation *Presentation) error {
	_, err := db.NewInsert().
		Model(presentation).
		On("CONFLICT (id) DO UPDATE").
		Set("logo = EXCLUDED.logo").
		Set("primary_color = EXCLUDED.primary_color").
		Set("accent_color = EXCLUDED.accent_color").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *BunRepository) GetText(ctx context.Context, locale string) (*LocaleText, error) {
	text := new(LocaleText)
	err := r.db.NewSelect().Model(text).Where("?TableAlias.locale = ?", locale).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("settings", locale, locale)
		}
		return nil, err
	}
	return text, nil
}

func (r *BunRepository) PutText(ctx context.Context, text *LocaleText) error {
	return putText(ctx, r.db, text)
}

// PutSettings writes both records in one transaction.
func (r *BunRepository) PutSettings(ctx context.Context, presentation *Presentation, text *LocaleText) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := putPresentation(ctx, tx, presentation); err != nil {
			return err
		}
		return putText(ctx, tx, text)
	})
}

func putText(ctx context.Context, db bun.IDB, text *LocaleText) error {
	_, err := db.NewInsert().
		Model(text).
		On("CONFLICT (id) DO UPDATE").
		Set("site_name = EXCLUDED.site_name").
		Set("site_description = EXCLUDED.site_description").
		Set("contact_email = EXCLUDED.contact_email").
		Set("contact_phone = EXCLUDED.contact_phone").
		Set("address = EXCLUDED.address").
		Set("social = EXCLUDED.social").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
