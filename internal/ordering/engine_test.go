package ordering_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/ordering"
	"github.com/goliatone/go-portal/pkg/testsupport"
	"github.com/google/uuid"
)

var newsBS = content.Partition{Kind: domain.KindNews, Locale: "bs"}

func seed(t *testing.T, repo content.Repository, partition content.Partition, n int) []uuid.UUID {
	t.Helper()
	out := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		item := &content.Item{
			ID:        uuid.New(),
			Kind:      partition.Kind,
			Locale:    partition.Locale,
			Title:     "Item",
			Position:  i,
			CreatedAt: time.Date(2024, time.January, 1, 0, 0, i, 0, time.UTC),
		}
		if _, err := repo.Create(context.Background(), item); err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, item.ID)
	}
	return out
}

func stored(t *testing.T, repo content.Repository, partition content.Partition) []uuid.UUID {
	t.Helper()
	items, err := repo.List(context.Background(), partition.Kind, partition.Locale)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return content.IDs(items)
}

func engines(t *testing.T) map[string]content.Repository {
	return map[string]content.Repository{
		"memory": content.NewMemoryRepository(),
		"bun":    content.NewBunRepository(testsupport.NewBunDB(t, content.EnsureSchema)),
	}
}

func TestEngineReorderPersists(t *testing.T) {
	for name, repo := range engines(t) {
		t.Run(name, func(t *testing.T) {
			engine := ordering.NewEngine(repo)
			all := seed(t, repo, newsBS, 4)

			got, err := engine.Reorder(context.Background(), newsBS, []uuid.UUID{all[2], all[0]})
			if err != nil {
				t.Fatalf("reorder: %v", err)
			}
			want := []uuid.UUID{all[2], all[0], all[1], all[3]}
			if !slices.Equal(got, want) {
				t.Fatalf("expected %v, got %v", want, got)
			}
			if persisted := stored(t, repo, newsBS); !slices.Equal(persisted, want) {
				t.Fatalf("persisted order %v, want %v", persisted, want)
			}

			again, err := engine.Reorder(context.Background(), newsBS, want)
			if err != nil || !slices.Equal(again, want) {
				t.Fatalf("reorder must be idempotent: %v %v", again, err)
			}
		})
	}
}

func TestEngineEmptyPartitionIsNoOp(t *testing.T) {
	engine := ordering.NewEngine(content.NewMemoryRepository())
	got, err := engine.Reorder(context.Background(), newsBS, []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty order, got %v", got)
	}
}

func TestEngineMovesAndDrag(t *testing.T) {
	repo := content.NewMemoryRepository()
	engine := ordering.NewEngine(repo)
	all := seed(t, repo, newsBS, 3)
	other := seed(t, repo, content.Partition{Kind: domain.KindNews, Locale: "en"}, 2)
	ctx := context.Background()

	if got, err := engine.MoveUp(ctx, all[0]); err != nil || !slices.Equal(got, all) {
		t.Fatalf("move up at head: %v %v", got, err)
	}
	if got, err := engine.MoveDown(ctx, all[2]); err != nil || !slices.Equal(got, all) {
		t.Fatalf("move down at tail: %v %v", got, err)
	}
	if _, err := engine.MoveDown(ctx, all[0]); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if got := stored(t, repo, newsBS); !slices.Equal(got, []uuid.UUID{all[1], all[0], all[2]}) {
		t.Fatalf("unexpected order after move down: %v", got)
	}
	if _, err := engine.DragReorder(ctx, all[2], 0); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if got := stored(t, repo, newsBS); !slices.Equal(got, []uuid.UUID{all[2], all[1], all[0]}) {
		t.Fatalf("unexpected order after drag: %v", got)
	}
	if got := stored(t, repo, content.Partition{Kind: domain.KindNews, Locale: "en"}); !slices.Equal(got, other) {
		t.Fatalf("other locale partition changed: %v", got)
	}
	if _, err := engine.MoveUp(ctx, uuid.New()); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestEngineConcurrentReordersStayPermutations(t *testing.T) {
	repo := content.NewMemoryRepository()
	engine := ordering.NewEngine(repo)
	all := seed(t, repo, newsBS, 6)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := context.Background()
			switch i % 4 {
			case 0:
				_, _ = engine.Reorder(ctx, newsBS, []uuid.UUID{all[i%6], all[(i+3)%6]})
			case 1:
				_, _ = engine.MoveUp(ctx, all[i%6])
			case 2:
				_, _ = engine.MoveDown(ctx, all[i%6])
			default:
				_, _ = engine.DragReorder(ctx, all[i%6], i%7)
			}
		}(i)
	}
	wg.Wait()

	items, err := repo.List(context.Background(), newsBS.Kind, newsBS.Locale)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !ordering.IsPermutation(all, content.IDs(items)) {
		t.Fatalf("order is not a permutation: %v", content.IDs(items))
	}
	for idx, item := range items {
		if item.Position != idx {
			t.Fatalf("positions must be dense after concurrent writes: %d at %d", item.Position, idx)
		}
	}
}
