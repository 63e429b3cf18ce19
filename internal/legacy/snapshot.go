package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-portal/internal/domain"
)

// ErrNoSnapshot is returned when a kind has no snapshot file.
var ErrNoSnapshot = errors.New("legacy: snapshot not found")

// Record is one entry of the legacy flat-file export. Field aliases of the
// export (summary for excerpt, date for startDate) are kept side by side.
type Record struct {
	ID         Text `json:"id"`
	Slug       Text `json:"slug"`
	Title      Text `json:"title"`
	Subtitle   Text `json:"subtitle"`
	Excerpt    Text `json:"excerpt"`
	Summary    Text `json:"summary"`
	Content    Text `json:"content"`
	Image      Text `json:"image"`
	Date       Text `json:"date"`
	StartDate  Text `json:"startDate"`
	EndDate    Text `json:"endDate"`
	ButtonText Text `json:"buttonText"`
	ButtonLink Text `json:"buttonLink"`
	Order      *int `json:"order"`
}

// Key identifies the record for deterministic ids and failure reports.
func (r Record) Key() string {
	for _, candidate := range []Text{r.ID, r.Slug, r.Title} {
		if value := strings.TrimSpace(string(candidate)); value != "" {
			return value
		}
	}
	return ""
}

// ExcerptText returns excerpt, falling back to summary.
func (r Record) ExcerptText() string {
	if value := strings.TrimSpace(string(r.Excerpt)); value != "" {
		return value
	}
	return strings.TrimSpace(string(r.Summary))
}

// Start parses date, falling back to startDate. A record without either
// returns nil.
func (r Record) Start() (*time.Time, error) {
	value := strings.TrimSpace(string(r.Date))
	if value == "" {
		value = strings.TrimSpace(string(r.StartDate))
	}
	return ParseDate(value)
}

// End parses endDate.
func (r Record) End() (*time.Time, error) {
	return ParseDate(string(r.EndDate))
}

// Snapshot maps a locale code to its records.
type Snapshot map[string][]Record

// Source reads the legacy snapshot of one collection.
type Source interface {
	Load(ctx context.Context, kind domain.Kind) (Snapshot, error)
}

var defaultFiles = map[domain.Kind]string{
	domain.KindNews:     "news.json",
	domain.KindActivity: "activities.json",
	domain.KindCarousel: "carousel.json",
}

// FSSource reads one JSON file per collection from a file system.
type FSSource struct {
	fsys  fs.FS
	files map[domain.Kind]string
}

// NewFSSource reads news.json, activities.json and carousel.json from fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	files := make(map[domain.Kind]string, len(defaultFiles))
	for kind, name := range defaultFiles {
		files[kind] = name
	}
	return &FSSource{fsys: fsys, files: files}
}

// Load reads and decodes the snapshot for kind, wholesale.
func (s *FSSource) Load(ctx context.Context, kind domain.Kind) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, ok := s.files[kind]
	if !ok || s.fsys == nil {
		return nil, ErrNoSnapshot
	}
	payload, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("legacy: read %s: %w", name, err)
	}
	return Decode(payload)
}

// Decode parses a locale-keyed snapshot document.
func Decode(payload []byte) (Snapshot, error) {
	snapshot := Snapshot{}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("legacy: decode snapshot: %w", err)
	}
	return snapshot, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02.01.2006.",
}

// ParseDate accepts the date formats found in the export. Blank input yields
// nil without error.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("legacy: unrecognised date %q", value)
}

// Text decodes JSON strings, numbers and null into a string. Legacy ids
// appear as both.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*t = Text(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("legacy: expected string or number, got %s", data)
	}
	if _, err := strconv.ParseFloat(number.String(), 64); err != nil {
		return err
	}
	*t = Text(number.String())
	return nil
}
