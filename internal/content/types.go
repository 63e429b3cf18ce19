package content

import (
	"time"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Item is a list-type content record (news, activity or carousel slide)
// living in exactly one locale partition.
type Item struct {
	bun.BaseModel `bun:"table:portal_items,alias:pi" json:"-"`

	ID          uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	Kind        domain.Kind   `bun:"kind,notnull" json:"kind"`
	Locale      string        `bun:"locale,notnull" json:"locale"`
	Slug        string        `bun:"slug,nullzero" json:"slug,omitempty"`
	Title       string        `bun:"title,notnull" json:"title"`
	Subtitle    string        `bun:"subtitle" json:"subtitle,omitempty"`
	Excerpt     string        `bun:"excerpt" json:"excerpt,omitempty"`
	Body        string        `bun:"body" json:"body,omitempty"`
	MediaRef    string        `bun:"media_ref" json:"media_ref"`
	PublishedAt *time.Time    `bun:"published_at,nullzero" json:"published_at,omitempty"`
	StartDate   *time.Time    `bun:"start_date,nullzero" json:"start_date,omitempty"`
	EndDate     *time.Time    `bun:"end_date,nullzero" json:"end_date,omitempty"`
	Status      domain.Status `bun:"status,nullzero" json:"status,omitempty"`
	ButtonText  string        `bun:"button_text" json:"button_text,omitempty"`
	ButtonLink  string        `bun:"button_link" json:"button_link,omitempty"`
	Position    int           `bun:"position,notnull,default:0" json:"position"`
	LegacyID    string        `bun:"legacy_id,nullzero" json:"legacy_id,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Partition identifies one ordered collection.
type Partition struct {
	Kind   domain.Kind
	Locale string
}

func (p Partition) String() string {
	return string(p.Kind) + "/" + p.Locale
}

// PartitionOf returns the partition an item belongs to.
func PartitionOf(item *Item) Partition {
	return Partition{Kind: item.Kind, Locale: item.Locale}
}

// CloneItem returns a deep copy of item.
func CloneItem(item *Item) *Item {
	if item == nil {
		return nil
	}
	copied := *item
	copied.PublishedAt = cloneTime(item.PublishedAt)
	copied.StartDate = cloneTime(item.StartDate)
	copied.EndDate = cloneTime(item.EndDate)
	return &copied
}

// IDs returns the ids of items in order.
func IDs(items []*Item) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item != nil {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
