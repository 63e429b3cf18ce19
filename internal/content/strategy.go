package content

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-portal/internal/domain"
)

// KindStrategy holds the per-collection rules shared by the importer, the
// ordering engine and the write paths.
type KindStrategy struct {
	Kind              domain.Kind
	Placeholder       string
	DerivesSlug       bool
	DerivesStatus     bool
	PrependNew        bool
	DefaultButtonLink string
}

var strategies = map[domain.Kind]KindStrategy{
	domain.KindNews: {
		Kind:        domain.KindNews,
		Placeholder: "/images/news-placeholder.jpg",
		DerivesSlug: true,
		PrependNew:  true,
	},
	domain.KindActivity: {
		Kind:          domain.KindActivity,
		Placeholder:   "/images/activity-placeholder.jpg",
		DerivesSlug:   true,
		DerivesStatus: true,
	},
	domain.KindCarousel: {
		Kind:              domain.KindCarousel,
		Placeholder:       "/images/carousel-placeholder.jpg",
		DefaultButtonLink: "#",
	},
}

// StrategyFor returns the strategy registered for kind.
func StrategyFor(kind domain.Kind) (KindStrategy, bool) {
	strategy, ok := strategies[kind]
	return strategy, ok
}

// Prepare fills derived and defaulted fields. It runs on every write so the
// lifecycle status always reflects now.
func (s KindStrategy) Prepare(item *Item, now time.Time) {
	if item == nil {
		return
	}
	item.Kind = s.Kind
	item.Title = strings.TrimSpace(item.Title)
	item.Locale = strings.TrimSpace(item.Locale)
	if strings.TrimSpace(item.MediaRef) == "" {
		item.MediaRef = s.Placeholder
	}
	if s.DerivesSlug && strings.TrimSpace(item.Slug) == "" {
		item.Slug = Slugify(item.Title)
		if item.Slug == "" {
			item.Slug = strings.SplitN(item.ID.String(), "-", 2)[0]
		}
	}
	if s.Kind == domain.KindNews && item.PublishedAt == nil {
		published := now.UTC()
		item.PublishedAt = &published
	}
	if s.DerivesStatus && item.StartDate != nil {
		item.Status = domain.DeriveStatus(*item.StartDate, item.EndDate, now)
	}
	if s.DefaultButtonLink != "" && strings.TrimSpace(item.ButtonLink) == "" {
		item.ButtonLink = s.DefaultButtonLink
	}
}

var errEndBeforeStart = errors.New("must not be before the start date")

// Validate checks the item before any store call.
func (s KindStrategy) Validate(item *Item) error {
	if item == nil {
		return domain.Validation(validation.Errors{"item": validation.ErrRequired}, "invalid "+string(s.Kind))
	}
	err := validation.ValidateStruct(item,
		validation.Field(&item.Locale, validation.Required),
		validation.Field(&item.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&item.Slug,
			validation.When(s.DerivesSlug, validation.Required),
			validation.When(item.Slug != "", validation.By(validSlug)),
		),
		validation.Field(&item.StartDate, validation.When(s.DerivesStatus, validation.Required)),
		validation.Field(&item.EndDate, validation.By(func(value any) error {
			end, _ := value.(*time.Time)
			if end == nil || item.StartDate == nil {
				return nil
			}
			if end.Before(*item.StartDate) {
				return errEndBeforeStart
			}
			return nil
		})),
		validation.Field(&item.Position, validation.Min(0)),
	)
	return domain.Validation(err, "invalid "+string(s.Kind))
}

func validSlug(value any) error {
	slugValue, _ := value.(string)
	if !IsValidSlug(slugValue) {
		return errors.New("must contain only letters, digits, underscores and hyphens")
	}
	return nil
}
