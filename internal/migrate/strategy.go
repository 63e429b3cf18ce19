package migrate

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/identity"
	"github.com/goliatone/go-portal/internal/legacy"
)

var errMissingKey = errors.New("record has no id, slug or title")

// Strategy converts legacy records of one collection into items and decides
// their initial order.
type Strategy interface {
	Kind() domain.Kind
	Transform(record legacy.Record, locale string, now time.Time) (*content.Item, error)
	Less(a, b *content.Item) bool
}

// DefaultStrategies returns the strategies for every collection.
func DefaultStrategies() map[domain.Kind]Strategy {
	return map[domain.Kind]Strategy{
		domain.KindNews:     newsStrategy{base{kind: domain.KindNews}},
		domain.KindActivity: activityStrategy{base{kind: domain.KindActivity}},
		domain.KindCarousel: carouselStrategy{base{kind: domain.KindCarousel}},
	}
}

type base struct {
	kind domain.Kind
}

func (b base) Kind() domain.Kind {
	return b.kind
}

// item builds the fields shared by every collection.
func (b base) item(record legacy.Record, locale string) (*content.Item, error) {
	key := record.Key()
	if key == "" {
		return nil, errMissingKey
	}
	return &content.Item{
		ID:       identity.LegacyItemUUID(string(b.kind), locale, key),
		Kind:     b.kind,
		Locale:   locale,
		Slug:     strings.TrimSpace(string(record.Slug)),
		Title:    strings.TrimSpace(string(record.Title)),
		Excerpt:  record.ExcerptText(),
		Body:     string(record.Content),
		MediaRef: strings.TrimSpace(string(record.Image)),
		LegacyID: key,
	}, nil
}

// finish applies defaults and derived fields, then validates.
func (b base) finish(item *content.Item, now time.Time) (*content.Item, error) {
	strategy, _ := content.StrategyFor(b.kind)
	strategy.Prepare(item, now)
	if err := strategy.Validate(item); err != nil {
		return nil, err
	}
	return item, nil
}

type newsStrategy struct{ base }

func (s newsStrategy) Transform(record legacy.Record, locale string, now time.Time) (*content.Item, error) {
	item, err := s.item(record, locale)
	if err != nil {
		return nil, err
	}
	if item.PublishedAt, err = record.Start(); err != nil {
		return nil, err
	}
	return s.finish(item, now)
}

// Less puts the newest news first.
func (newsStrategy) Less(a, b *content.Item) bool {
	return timeOf(a.PublishedAt).After(timeOf(b.PublishedAt))
}

type activityStrategy struct{ base }

func (s activityStrategy) Transform(record legacy.Record, locale string, now time.Time) (*content.Item, error) {
	item, err := s.item(record, locale)
	if err != nil {
		return nil, err
	}
	if item.StartDate, err = record.Start(); err != nil {
		return nil, err
	}
	if item.EndDate, err = record.End(); err != nil {
		return nil, err
	}
	return s.finish(item, now)
}

// Less orders activities by start date.
func (activityStrategy) Less(a, b *content.Item) bool {
	return timeOf(a.StartDate).Before(timeOf(b.StartDate))
}

type carouselStrategy struct{ base }

func (s carouselStrategy) Transform(record legacy.Record, locale string, now time.Time) (*content.Item, error) {
	item, err := s.item(record, locale)
	if err != nil {
		return nil, err
	}
	item.Subtitle = strings.TrimSpace(string(record.Subtitle))
	item.ButtonText = strings.TrimSpace(string(record.ButtonText))
	item.ButtonLink = strings.TrimSpace(string(record.ButtonLink))
	if record.Order != nil && *record.Order >= 0 {
		item.Position = *record.Order
	}
	return s.finish(item, now)
}

// Less keeps the exported slide order.
func (carouselStrategy) Less(a, b *content.Item) bool {
	return a.Position < b.Position
}

func timeOf(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
