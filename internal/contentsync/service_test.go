package contentsync_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/contentsync"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/legacy"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/media"
	"github.com/goliatone/go-portal/internal/migrate"
	"github.com/goliatone/go-portal/internal/ordering"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/goliatone/go-portal/pkg/testsupport"
	"github.com/google/uuid"
)

var (
	today = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	admin = interfaces.Principal{ID: "admin-1", Role: interfaces.RoleAdmin}
	guest = interfaces.Principal{ID: "visitor"}
)

type spyRepository struct {
	content.Repository
	writes      atomic.Int32
	beforeFetch func()
}

func (r *spyRepository) GetByID(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	item, err := r.Repository.GetByID(ctx, id)
	if hook := r.beforeFetch; hook != nil {
		r.beforeFetch = nil
		hook()
	}
	return item, err
}

func (r *spyRepository) Create(ctx context.Context, item *content.Item) (*content.Item, error) {
	r.writes.Add(1)
	return r.Repository.Create(ctx, item)
}

func (r *spyRepository) Update(ctx context.Context, item *content.Item) (*content.Item, error) {
	r.writes.Add(1)
	return r.Repository.Update(ctx, item)
}

func (r *spyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.writes.Add(1)
	return r.Repository.Delete(ctx, id)
}

type fixture struct {
	svc  *contentsync.Service
	repo *spyRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	locales := locale.NewResolver("bs", []string{"bs", "en"})
	repo := &spyRepository{Repository: content.NewMemoryRepository()}
	clock := testsupport.FixedClock(today)

	svc := contentsync.NewService(contentsync.Dependencies{
		Repository:   repo,
		Importer:     migrate.NewImporter(repo, legacy.NewFSSource(os.DirFS("../legacy/testdata")), locales, migrate.WithClock(clock)),
		Engine:       ordering.NewEngine(repo),
		Translations: i18n.NewResolver(i18n.NewMemoryStore(), locales),
		Settings:     settings.NewService(settings.NewMemoryRepository(), locales, settings.WithClock(clock)),
		Blobs:        media.NewFileStore(t.TempDir(), "/uploads"),
		Locales:      locales,
	}, contentsync.WithClock(clock), contentsync.WithSetupSecret("let-me-in"))
	return fixture{svc: svc, repo: repo}
}

func titles(items []*content.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func assertDense(t *testing.T, items []*content.Item) {
	t.Helper()
	for idx, item := range items {
		if item.Position != idx {
			t.Fatalf("expected dense positions, item %q at %d has position %d", item.Title, idx, item.Position)
		}
	}
}

func TestListImportsLegacyOnFirstRead(t *testing.T) {
	f := newFixture(t)
	items, err := f.svc.List(context.Background(), domain.KindNews, "bs-BA")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := strings.Join(titles(items), "|")
	if got != "Otvoren novi park|Javna rasprava o budžetu" {
		t.Fatalf("unexpected news order %q", got)
	}
	assertDense(t, items)
}

func TestMutationsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, err := f.svc.List(ctx, domain.KindActivity, "bs")
	if err != nil || len(items) == 0 {
		t.Fatalf("expected imported activities, got %d (%v)", len(items), err)
	}
	before := f.repo.writes.Load()
	id := items[0].ID

	checks := map[string]error{}
	_, checks["create"] = f.svc.Create(ctx, guest, domain.KindNews, &content.Item{Title: "Hack"})
	_, checks["update"] = f.svc.Update(ctx, guest, domain.KindActivity, id, &content.Item{Title: "Hack"})
	checks["delete"] = f.svc.Delete(ctx, guest, id)
	_, checks["reorder"] = f.svc.Reorder(ctx, guest, domain.KindActivity, "bs", []uuid.UUID{id})
	_, checks["move"] = f.svc.MoveDown(ctx, guest, id)
	_, checks["drag"] = f.svc.Drag(ctx, guest, id, 1)
	_, checks["settings"] = f.svc.UpdateSettings(ctx, guest, "bs", settings.Settings{})
	_, checks["media"] = f.svc.UploadMedia(ctx, guest, "a.png", []byte("x"))
	checks["translations"] = f.svc.SetupTranslations(ctx, guest, "wrong", "bs", i18n.Dictionary{"a": "b"})

	for name, err := range checks {
		if !domain.IsForbidden(err) {
			t.Fatalf("%s: expected forbidden, got %v", name, err)
		}
	}
	if got := f.repo.writes.Load(); got != before {
		t.Fatalf("expected no writes from rejected calls, got %d", got-before)
	}
}

func TestCreateValidatesBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), admin, domain.KindActivity, &content.Item{Title: "No start date"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := f.repo.writes.Load(); got != 0 {
		t.Fatalf("expected no store writes, got %d", got)
	}
}

func TestCreateNewsGoesToHead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, admin, domain.KindNews, &content.Item{Locale: "bs", Title: "Nova biblioteka"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "nova-biblioteka" || created.MediaRef != "/images/news-placeholder.jpg" {
		t.Fatalf("unexpected derived fields %+v", created)
	}

	items, err := f.svc.List(ctx, domain.KindNews, "bs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[0].ID != created.ID {
		t.Fatalf("expected new item first, got %v", titles(items))
	}
	assertDense(t, items)
}

func TestCreateActivityAppendsWithDerivedStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	start := testsupport.DatePtr(2024, time.May, 20)
	end := testsupport.DatePtr(2024, time.June, 10)
	created, err := f.svc.Create(ctx, admin, domain.KindActivity, &content.Item{Title: "Sajam knjiga", StartDate: start, EndDate: end})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Locale != "bs" || created.Status != domain.StatusOngoing {
		t.Fatalf("expected ongoing bs activity, got locale %q status %q", created.Locale, created.Status)
	}

	items, err := f.svc.List(ctx, domain.KindActivity, "bs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[2].ID != created.ID {
		t.Fatalf("expected new activity last, got %v", titles(items))
	}
	assertDense(t, items)
}

func TestCreateSuffixesDuplicateSlugs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Create(ctx, admin, domain.KindNews, &content.Item{Title: "Town Fair"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.svc.Create(ctx, admin, domain.KindNews, &content.Item{Title: "Town Fair"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.Slug != "town-fair" || second.Slug != "town-fair-2" {
		t.Fatalf("unexpected slugs %q and %q", first.Slug, second.Slug)
	}
}

func TestGetBySlugFallsBackToDefaultLocale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, admin, domain.KindNews, &content.Item{Locale: "bs", Title: "Samo na bosanskom"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := f.svc.GetBySlug(ctx, domain.KindNews, "en", created.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected fallback to bs item, got %+v", got)
	}

	if _, err := f.svc.GetBySlug(ctx, domain.KindNews, "en", "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateKeepsPlacementAndRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, admin, domain.KindActivity, &content.Item{
		Title:     "Koncert",
		MediaRef:  "/uploads/concert.jpg",
		StartDate: testsupport.DatePtr(2024, time.July, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusUpcoming {
		t.Fatalf("expected upcoming, got %q", created.Status)
	}

	updated, err := f.svc.Update(ctx, admin, domain.KindActivity, created.ID, &content.Item{
		Locale:    "en",
		Title:     "Koncert na trgu",
		StartDate: testsupport.DatePtr(2024, time.May, 1),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusPast {
		t.Fatalf("expected past, got %q", updated.Status)
	}
	if updated.Locale != "bs" || updated.Position != created.Position {
		t.Fatalf("expected locale and position kept, got %q/%d", updated.Locale, updated.Position)
	}
	if updated.MediaRef != "/uploads/concert.jpg" {
		t.Fatalf("expected media kept, got %q", updated.MediaRef)
	}
	if updated.Slug != "koncert-na-trgu" {
		t.Fatalf("expected slug derived from new title, got %q", updated.Slug)
	}

	if _, err := f.svc.Update(ctx, admin, domain.KindNews, created.ID, &content.Item{Title: "x"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for kind mismatch, got %v", err)
	}
}

func TestUpdateDoesNotUndoConcurrentReorder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slides, err := f.svc.List(ctx, domain.KindCarousel, "bs")
	if err != nil || len(slides) != 2 {
		t.Fatalf("expected two slides, got %d (%v)", len(slides), err)
	}
	first, second := slides[0], slides[1]

	f.repo.beforeFetch = func() {
		if _, err := f.svc.Reorder(ctx, admin, domain.KindCarousel, "bs", []uuid.UUID{second.ID}); err != nil {
			t.Errorf("reorder: %v", err)
		}
	}
	updated, err := f.svc.Update(ctx, admin, domain.KindCarousel, first.ID, &content.Item{Title: "Usluge"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Position != 1 {
		t.Fatalf("expected edited slide to report its reordered position, got %d", updated.Position)
	}

	after, err := f.svc.List(ctx, domain.KindCarousel, "bs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := strings.Join(titles(after), "|"); got != "Dobrodošli|Usluge" {
		t.Fatalf("expected reorder to survive the edit, got %q", got)
	}
	assertDense(t, after)
}

func TestDeleteClosesGap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, err := f.svc.List(ctx, domain.KindCarousel, "bs")
	if err != nil || len(items) != 2 {
		t.Fatalf("expected two slides, got %d (%v)", len(items), err)
	}

	if err := f.svc.Delete(ctx, admin, items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rest, err := f.svc.List(ctx, domain.KindCarousel, "bs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != items[1].ID {
		t.Fatalf("unexpected remaining slides %v", titles(rest))
	}
	assertDense(t, rest)

	if err := f.svc.Delete(ctx, admin, items[0].ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestReorderAndMoves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, err := f.svc.List(ctx, domain.KindNews, "bs")
	if err != nil || len(items) != 2 {
		t.Fatalf("expected two news items, got %d (%v)", len(items), err)
	}
	first, second := items[0].ID, items[1].ID

	reordered, err := f.svc.Reorder(ctx, admin, domain.KindNews, "bs", []uuid.UUID{second})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if reordered[0].ID != second || reordered[1].ID != first {
		t.Fatalf("unexpected order after reorder %v", titles(reordered))
	}

	moved, err := f.svc.MoveUp(ctx, admin, first)
	if err != nil {
		t.Fatalf("move up: %v", err)
	}
	if moved[0].ID != first {
		t.Fatalf("expected first back at head, got %v", titles(moved))
	}

	dragged, err := f.svc.Drag(ctx, admin, first, 10)
	if err != nil {
		t.Fatalf("drag: %v", err)
	}
	if dragged[1].ID != first {
		t.Fatalf("expected drag to clamp to the tail, got %v", titles(dragged))
	}
	assertDense(t, dragged)
}

func TestSetupTranslationsWithSecret(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.svc.SetupTranslations(ctx, guest, "let-me-in", "en", i18n.Dictionary{"menu.home": "Start"}); err != nil {
		t.Fatalf("setup with secret: %v", err)
	}
	dict, tier := f.svc.Translations(ctx, "en")
	if tier != i18n.TierStored || dict.T("menu.home") != "Start" {
		t.Fatalf("expected stored dictionary, got %s %v", tier, dict)
	}
	if got := f.svc.T(ctx, "en", "menu.unknown"); got != "menu.unknown" {
		t.Fatalf("expected raw key, got %q", got)
	}
}

func TestUploadMedia(t *testing.T) {
	f := newFixture(t)
	ref, err := f.svc.UploadMedia(context.Background(), admin, "town hall.png", []byte("png"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/town-hall-") || !strings.HasSuffix(ref, ".png") {
		t.Fatalf("unexpected reference %q", ref)
	}
}

type flakyDictionaryStore struct {
	calls atomic.Int32
}

func (s *flakyDictionaryStore) Get(context.Context, string) (*i18n.Record, error) {
	s.calls.Add(1)
	return nil, errors.New("connection refused")
}

func (s *flakyDictionaryStore) Put(context.Context, *i18n.Record) error {
	return errors.New("connection refused")
}

func TestTranslationsRetriesBeforeFallingBack(t *testing.T) {
	locales := locale.NewResolver("bs", []string{"bs", "en"})
	store := &flakyDictionaryStore{}
	svc := contentsync.NewService(contentsync.Dependencies{
		Translations: i18n.NewResolver(store, locales, i18n.WithRetry(3, time.Millisecond)),
		Locales:      locales,
	})

	dict, tier := svc.Translations(context.Background(), "en")
	if tier != i18n.TierLocaleDefault {
		t.Fatalf("expected locale default tier, got %s", tier)
	}
	if got := dict.T("menu.home"); got != "Home" {
		t.Fatalf("expected embedded english table, got %q", got)
	}
	if got := store.calls.Load(); got != 3 {
		t.Fatalf("expected three store attempts, got %d", got)
	}
}
