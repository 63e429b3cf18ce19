package content

import (
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

func TestItemDocumentSurvivesBSON(t *testing.T) {
	published := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	item := &Item{
		ID:          uuid.New(),
		Kind:        domain.KindNews,
		Locale:      "bs",
		Slug:        "otvorenje",
		Title:       "Otvorenje",
		Excerpt:     "Kratko",
		Body:        "<p>Tekst</p>",
		MediaRef:    "media/news/1.jpg",
		PublishedAt: &published,
		Status:      domain.StatusOngoing,
		Position:    3,
		LegacyID:    "41",
		CreatedAt:   published,
		UpdatedAt:   published.Add(time.Hour),
	}

	raw, err := bson.Marshal(toDocument(item))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc itemDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := doc.toItem()
	if err != nil {
		t.Fatalf("toItem: %v", err)
	}

	if got.ID != item.ID || got.Kind != item.Kind || got.Locale != item.Locale || got.Slug != item.Slug {
		t.Fatalf("identity fields changed: %+v", got)
	}
	if got.Position != 3 || got.LegacyID != "41" || got.Status != domain.StatusOngoing {
		t.Fatalf("bookkeeping fields changed: %+v", got)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(published) {
		t.Fatalf("expected published_at %v, got %v", published, got.PublishedAt)
	}
	if got.StartDate != nil || got.EndDate != nil {
		t.Fatalf("expected absent dates to stay nil, got %v %v", got.StartDate, got.EndDate)
	}

	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	for _, key := range []string{"subtitle", "start_date", "end_date", "button_text", "button_link"} {
		if _, ok := fields[key]; ok {
			t.Fatalf("expected blank %q to be omitted, got %v", key, fields[key])
		}
	}
}

func TestItemDocumentRejectsMalformedID(t *testing.T) {
	if _, err := (itemDocument{ID: "not-a-uuid"}).toItem(); err == nil {
		t.Fatalf("expected malformed id to fail")
	}
}

func TestEditableUpdateLeavesBookkeepingAlone(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	doc := toDocument(&Item{
		ID:        uuid.New(),
		Kind:      domain.KindCarousel,
		Locale:    "en",
		Title:     "Welcome",
		MediaRef:  "media/carousel/1.jpg",
		StartDate: &start,
		Position:  7,
		LegacyID:  "9",
		CreatedAt: start,
		UpdatedAt: start,
	})

	update := editableUpdate(doc)
	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %#v", update)
	}
	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatalf("expected $unset document, got %#v", update)
	}

	for _, key := range []string{"position", "kind", "locale", "legacy_id", "created_at", "_id"} {
		if _, ok := set[key]; ok {
			t.Fatalf("expected %q to stay out of $set", key)
		}
		if _, ok := unset[key]; ok {
			t.Fatalf("expected %q to stay out of $unset", key)
		}
	}
	if set["title"] != "Welcome" || set["media_ref"] != "media/carousel/1.jpg" {
		t.Fatalf("unexpected $set: %#v", set)
	}
	if got, ok := set["start_date"].(*time.Time); !ok || !got.Equal(start) {
		t.Fatalf("expected start_date in $set, got %#v", set["start_date"])
	}

	want := map[string]bool{
		"slug": true, "subtitle": true, "excerpt": true, "body": true, "published_at": true,
		"end_date": true, "status": true, "button_text": true, "button_link": true,
	}
	got := map[string]bool{}
	for key := range unset {
		got[key] = true
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected $unset keys: %v", got)
	}
}

func TestEditableUpdateOmitsEmptyUnset(t *testing.T) {
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := toDocument(&Item{
		ID:          uuid.New(),
		Kind:        domain.KindNews,
		Locale:      "en",
		Slug:        "s",
		Title:       "T",
		Subtitle:    "S",
		Excerpt:     "E",
		Body:        "B",
		PublishedAt: &when,
		StartDate:   &when,
		EndDate:     &when,
		Status:      domain.StatusOngoing,
		ButtonText:  "Go",
		ButtonLink:  "/go",
	})
	if _, ok := editableUpdate(doc)["$unset"]; ok {
		t.Fatalf("expected no $unset when every optional field is set")
	}
}
