package legacy_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/legacy"
)

func TestFSSourceLoadsLocaleKeyedRecords(t *testing.T) {
	source := legacy.NewFSSource(os.DirFS("testdata"))

	snapshot, err := source.Load(context.Background(), domain.KindActivity)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot["bs"]) != 2 || len(snapshot["en"]) != 1 {
		t.Fatalf("unexpected snapshot sizes: bs=%d en=%d", len(snapshot["bs"]), len(snapshot["en"]))
	}

	first := snapshot["bs"][0]
	if first.Key() != "act-1" || first.ExcerptText() != "Zajednička akcija čišćenja obale rijeke." {
		t.Fatalf("unexpected first record: %+v", first)
	}
	start, err := first.Start()
	if err != nil || start == nil || !start.Equal(time.Date(2023, time.April, 22, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date %v (err=%v)", start, err)
	}
	if end, err := first.End(); err != nil || end != nil {
		t.Fatalf("expected no end date, got %v (err=%v)", end, err)
	}

	if snapshot["bs"][1].Key() != "2" {
		t.Fatalf("numeric ids must decode as text, got %q", snapshot["bs"][1].Key())
	}
}

func TestFSSourceMissingFile(t *testing.T) {
	source := legacy.NewFSSource(fstest.MapFS{})
	if _, err := source.Load(context.Background(), domain.KindNews); !errors.Is(err, legacy.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestFSSourceMalformedFile(t *testing.T) {
	source := legacy.NewFSSource(fstest.MapFS{
		"news.json": &fstest.MapFile{Data: []byte(`{"bs": [ {"title": true} ]`)},
	})
	if _, err := source.Load(context.Background(), domain.KindNews); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-05-01":           time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		"2024-05-01T10:00:00Z": time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC),
		"01.05.2024":           time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := legacy.ParseDate(input)
		if err != nil || got == nil || !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, %v", input, got, err)
		}
	}
	if got, err := legacy.ParseDate("  "); got != nil || err != nil {
		t.Fatalf("blank date should be nil, got %v %v", got, err)
	}
	if _, err := legacy.ParseDate("next tuesday"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
