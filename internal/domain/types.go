package domain

import (
	"strings"
	"time"
)

// Kind identifies a list-type content collection.
type Kind string

const (
	KindNews     Kind = "news"
	KindActivity Kind = "activity"
	KindCarousel Kind = "carousel"
)

// Kinds lists every collection in a stable order.
func Kinds() []Kind {
	return []Kind{KindNews, KindActivity, KindCarousel}
}

// ParseKind accepts singular, plural and mixed case names ("Activities",
// "news", "carousel").
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "news":
		return KindNews, true
	case "activity", "activities":
		return KindActivity, true
	case "carousel", "carousels", "slide", "slides":
		return KindCarousel, true
	default:
		return "", false
	}
}

func (k Kind) String() string {
	return string(k)
}

// Status is the lifecycle state of dated content.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusPast     Status = "past"
)

// DeriveStatus computes the lifecycle status for a start/end window relative
// to now. Comparison happens on calendar days in UTC. A started item without
// an end date is past.
func DeriveStatus(start time.Time, end *time.Time, now time.Time) Status {
	today := day(now)
	if day(start).After(today) {
		return StatusUpcoming
	}
	if end != nil && !day(*end).Before(today) {
		return StatusOngoing
	}
	return StatusPast
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
