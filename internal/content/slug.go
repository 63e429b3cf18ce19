package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-slug"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	slugPattern   = regexp.MustCompile(`^[\w-]+$`)
)

// maxSlugAttempts bounds the -2, -3, ... suffix search.
const maxSlugAttempts = 100

// Slugify derives a slug from a title: lowercase, whitespace runs become a
// hyphen and non-word characters are stripped. go-slug handles
// transliteration; the regex rule is applied on top so the output always
// satisfies it.
func Slugify(title string) string {
	candidate := strings.TrimSpace(title)
	if candidate == "" {
		return ""
	}
	if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
		candidate = normalized
	}
	candidate = strings.ToLower(candidate)
	candidate = whitespaceRun.ReplaceAllString(candidate, "-")
	candidate = nonWord.ReplaceAllString(candidate, "")
	candidate = hyphenRun.ReplaceAllString(candidate, "-")
	return strings.Trim(candidate, "-")
}

// IsValidSlug reports whether value only holds word characters and hyphens.
func IsValidSlug(value string) bool {
	return slugPattern.MatchString(value)
}

// SlugLookup finds an item by slug inside a partition.
type SlugLookup interface {
	GetBySlug(ctx context.Context, kind domain.Kind, locale, slug string) (*Item, error)
}

// UniqueSlug returns base when it is free in the item's partition, otherwise
// the first free base-2, base-3, ... An item keeping its own slug is free.
func UniqueSlug(ctx context.Context, lookup SlugLookup, item *Item, base string) (string, error) {
	if base == "" {
		return "", nil
	}
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		existing, err := lookup.GetBySlug(ctx, item.Kind, item.Locale, candidate)
		if err != nil {
			if domain.IsNotFound(err) {
				return candidate, nil
			}
			return "", err
		}
		if existing == nil || existing.ID == item.ID {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("content: no free slug for %q after %d attempts", base, maxSlugAttempts)
}
