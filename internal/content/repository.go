package content

import (
	"context"

	"github.com/goliatone/go-portal/internal/domain"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository is the store collaborator for list-type content. Every
// implementation keeps (kind, locale, id) and non-empty (kind, locale, slug)
// unique and returns domain not-found errors for missing records.
type Repository interface {
	// List returns a partition in manual order.
	List(ctx context.Context, kind domain.Kind, locale string) ([]*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetBySlug(ctx context.Context, kind domain.Kind, locale, slug string) (*Item, error)
	Create(ctx context.Context, item *Item) (*Item, error)
	// Update rewrites the editable fields and returns the stored record.
	// Kind, locale, position, legacy id and creation time stay as stored, so
	// an edit never undoes a concurrent reorder.
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdatePositions persists positions for a partition as a single unit:
	// either every position is written or none is.
	UpdatePositions(ctx context.Context, partition Partition, positions map[uuid.UUID]int) error
}

// NewItemRepository builds the generic bun repository for items.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(item *Item) uuid.UUID {
			return item.ID
		},
		SetID: func(item *Item, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(item *Item) string {
			if item == nil {
				return ""
			}
			return item.ID.String()
		},
	})
}
