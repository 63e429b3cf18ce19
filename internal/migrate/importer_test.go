package migrate_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/legacy"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/migrate"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/goliatone/go-portal/pkg/testsupport"
	"github.com/google/uuid"
)

var today = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type countingRepository struct {
	content.Repository
	creates atomic.Int32
	lists   atomic.Int32
	listErr error
}

func (r *countingRepository) Create(ctx context.Context, item *content.Item) (*content.Item, error) {
	r.creates.Add(1)
	return r.Repository.Create(ctx, item)
}

func (r *countingRepository) List(ctx context.Context, kind domain.Kind, loc string) ([]*content.Item, error) {
	r.lists.Add(1)
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.Repository.List(ctx, kind, loc)
}

type failingSource struct{ err error }

func (s failingSource) Load(context.Context, domain.Kind) (legacy.Snapshot, error) {
	return nil, s.err
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.log("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.log("fatal", msg) }
func (l *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return l
}

func (l *recordingLogger) has(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, candidate := range l.entries {
		if candidate == entry {
			return true
		}
	}
	return false
}

func snapshotFS(files map[string]string) legacy.Source {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return legacy.NewFSSource(fsys)
}

func newImporter(repo content.Repository, source legacy.Source, opts ...migrate.Option) *migrate.Importer {
	opts = append([]migrate.Option{migrate.WithClock(testsupport.FixedClock(today))}, opts...)
	return migrate.NewImporter(repo, source, locale.NewResolver("bs", []string{"bs", "en"}), opts...)
}

func TestGetOrImportPastActivityWithoutEndDate(t *testing.T) {
	source := snapshotFS(map[string]string{
		"activities.json": `{"bs": [{"title": "Old Town Walk", "date": "2024-01-15"}]}`,
	})
	importer := newImporter(content.NewMemoryRepository(), source)

	items, err := importer.GetOrImport(context.Background(), domain.KindActivity, "bs")
	if err != nil {
		t.Fatalf("get or import: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Status != domain.StatusPast {
		t.Fatalf("expected past status, got %q", items[0].Status)
	}
	if items[0].Slug == "" || items[0].Slug != "old-town-walk" {
		t.Fatalf("expected slug derived from title, got %q", items[0].Slug)
	}
	if items[0].ID == uuid.Nil {
		t.Fatalf("expected an assigned id")
	}
}

func TestGetOrImportIsIdempotent(t *testing.T) {
	repo := &countingRepository{Repository: content.NewMemoryRepository()}
	importer := newImporter(repo, legacy.NewFSSource(testdataFS()))

	first, err := importer.GetOrImport(context.Background(), domain.KindCarousel, "bs")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	insertsAfterFirst := repo.creates.Load()
	if insertsAfterFirst != 2 {
		t.Fatalf("expected two inserts, got %d", insertsAfterFirst)
	}

	second, err := importer.GetOrImport(context.Background(), domain.KindCarousel, "bs")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if repo.creates.Load() != insertsAfterFirst {
		t.Fatalf("second call inserted %d records", repo.creates.Load()-insertsAfterFirst)
	}
	if !sameIDs(first, second) {
		t.Fatalf("record sets differ: %v vs %v", content.IDs(first), content.IDs(second))
	}
	if first[0].Title != "Usluge građanima" || first[1].ButtonLink != "/about" || first[0].ButtonLink != "#" {
		t.Fatalf("unexpected carousel import: %+v %+v", first[0], first[1])
	}
}

func TestGetOrImportSerializesConcurrentColdReads(t *testing.T) {
	repo := &countingRepository{Repository: content.NewMemoryRepository()}
	importer := newImporter(repo, legacy.NewFSSource(testdataFS()))

	const callers = 24
	var wg sync.WaitGroup
	sizes := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := importer.GetOrImport(context.Background(), domain.KindActivity, "bs")
			if err != nil {
				t.Errorf("get or import: %v", err)
				return
			}
			sizes[i] = len(items)
		}(i)
	}
	wg.Wait()

	if repo.creates.Load() != 2 {
		t.Fatalf("expected exactly two inserts, got %d", repo.creates.Load())
	}
	items, _ := repo.Repository.List(context.Background(), domain.KindActivity, "bs")
	if len(items) != 2 {
		t.Fatalf("expected two stored activities, got %d", len(items))
	}
	for i, size := range sizes {
		if size != 0 && size != 2 {
			t.Fatalf("caller %d saw a partial import of %d items", i, size)
		}
	}
}

func TestGetOrImportToleratesRecordFailures(t *testing.T) {
	logger := &recordingLogger{}
	repo := content.NewMemoryRepository()
	importer := newImporter(repo, legacy.NewFSSource(testdataFS()), migrate.WithLogger(logger))

	items, err := importer.GetOrImport(context.Background(), domain.KindNews, "bs")
	if err != nil {
		t.Fatalf("get or import: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two imported news items, got %d", len(items))
	}
	if items[0].Title != "Otvoren novi park" {
		t.Fatalf("expected newest news first, got %q", items[0].Title)
	}
	if !logger.has("error import.record_failed") || !logger.has("error import.partial_failure") {
		t.Fatalf("expected partial failure to be logged, got %v", logger.entries)
	}
}

func TestGetOrImportSnapshotFailureIsNonFatal(t *testing.T) {
	logger := &recordingLogger{}
	importer := newImporter(content.NewMemoryRepository(), failingSource{err: errors.New("disk on fire")}, migrate.WithLogger(logger))

	items, err := importer.GetOrImport(context.Background(), domain.KindNews, "en")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %d", len(items))
	}
	if !logger.has("warn import.snapshot_unavailable") {
		t.Fatalf("expected snapshot failure to be logged, got %v", logger.entries)
	}
}

func TestGetOrImportStoreFailureDegradesToEmpty(t *testing.T) {
	repo := &countingRepository{Repository: content.NewMemoryRepository(), listErr: errors.New("connection reset")}
	importer := newImporter(repo, legacy.NewFSSource(testdataFS()))

	items, err := importer.GetOrImport(context.Background(), domain.KindNews, "bs")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty degraded result, got %d items, err=%v", len(items), err)
	}
	if repo.creates.Load() != 0 {
		t.Fatalf("nothing must be imported when the store cannot be read")
	}
}

func TestGetOrImportResolvesUnsupportedLocale(t *testing.T) {
	importer := newImporter(content.NewMemoryRepository(), legacy.NewFSSource(testdataFS()))

	items, err := importer.GetOrImport(context.Background(), domain.KindCarousel, "de")
	if err != nil {
		t.Fatalf("get or import: %v", err)
	}
	if len(items) != 2 || items[0].Locale != "bs" {
		t.Fatalf("expected default locale partition, got %d items", len(items))
	}

	empty, err := importer.GetOrImport(context.Background(), domain.KindCarousel, "en")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty en partition, got %d (err=%v)", len(empty), err)
	}
}

func TestImportAll(t *testing.T) {
	importer := newImporter(content.NewMemoryRepository(), legacy.NewFSSource(testdataFS()))

	counts, err := importer.ImportAll(context.Background())
	if err != nil {
		t.Fatalf("import all: %v", err)
	}
	want := map[content.Partition]int{
		{Kind: domain.KindNews, Locale: "bs"}:     2,
		{Kind: domain.KindActivity, Locale: "bs"}: 2,
		{Kind: domain.KindActivity, Locale: "en"}: 1,
		{Kind: domain.KindCarousel, Locale: "bs"}: 2,
	}
	for partition, size := range want {
		if counts[partition] != size {
			t.Fatalf("partition %s: expected %d, got %d", partition, size, counts[partition])
		}
	}
}

func sameIDs(a, b []*content.Item) bool {
	left, right := content.IDs(a), content.IDs(b)
	if len(left) != len(right) {
		return false
	}
	sort.Slice(left, func(i, j int) bool { return left[i].String() < left[j].String() })
	sort.Slice(right, func(i, j int) bool { return right[i].String() < right[j].String() })
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}
