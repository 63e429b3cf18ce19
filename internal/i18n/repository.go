package i18n

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is the stored dictionary of one locale.
type Record struct {
	bun.BaseModel `bun:"table:portal_dictionaries,alias:pd" json:"-"`

	ID        uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	Locale    string            `bun:"locale,notnull,unique" json:"locale"`
	Entries   map[string]string `bun:"entries,type:jsonb,notnull" json:"entries"`
	CreatedAt time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Store persists one dictionary per locale. Put replaces the whole record.
type Store interface {
	Get(ctx context.Context, locale string) (*Record, error)
	Put(ctx context.Context, record *Record) error
}
