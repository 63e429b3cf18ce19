package i18n_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

type blockingStore struct{}

func (blockingStore) Get(ctx context.Context, _ string) (*i18n.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) Put(ctx context.Context, _ *i18n.Record) error {
	<-ctx.Done()
	return ctx.Err()
}

type failingStore struct {
	calls atomic.Int32
	err   error
}

func (s *failingStore) Get(context.Context, string) (*i18n.Record, error) {
	s.calls.Add(1)
	return nil, s.err
}

func (s *failingStore) Put(context.Context, *i18n.Record) error {
	return s.err
}

func locales() *locale.Resolver {
	return locale.NewResolver("bs", []string{"bs", "en"})
}

func TestResolveFallsBackWithinTimeout(t *testing.T) {
	resolver := i18n.NewResolver(blockingStore{}, locales(), i18n.WithTimeout(20*time.Millisecond))

	start := time.Now()
	dict, tier := resolver.Resolve(context.Background(), "en")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("resolve took %s, expected the timeout to cut it short", elapsed)
	}
	if tier != i18n.TierLocaleDefault {
		t.Fatalf("expected locale default tier, got %s", tier)
	}
	if got := dict.T("menu.home"); got != "Home" {
		t.Fatalf("expected english default, got %q", got)
	}
}

func TestResolveUsesSystemDefaultForLocaleWithoutEmbeddedTable(t *testing.T) {
	supported := locale.NewResolver("bs", []string{"bs", "en", "de"})
	resolver := i18n.NewResolver(i18n.NewMemoryStore(), supported)

	dict, tier := resolver.Resolve(context.Background(), "de")
	if tier != i18n.TierSystemDefault {
		t.Fatalf("expected system default tier, got %s", tier)
	}
	if got := dict.T("menu.home"); got != "Početna" {
		t.Fatalf("expected bosnian default, got %q", got)
	}
}

func TestResolveReturnsStoredDictionary(t *testing.T) {
	ctx := context.Background()
	resolver := i18n.NewResolver(i18n.NewMemoryStore(), locales())

	if err := resolver.Setup(ctx, "en", i18n.Dictionary{"menu.home": "Start"}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	dict, tier := resolver.Resolve(ctx, "en-GB")
	if tier != i18n.TierStored {
		t.Fatalf("expected stored tier, got %s", tier)
	}
	if got := dict.T("menu.home"); got != "Start" {
		t.Fatalf("expected stored value, got %q", got)
	}
	if got := dict.T("menu.missing"); got != "menu.missing" {
		t.Fatalf("expected raw key on a miss, got %q", got)
	}
}

func TestSetupReplacesDictionaryWholesale(t *testing.T) {
	ctx := context.Background()
	stores := map[string]i18n.Store{
		"memory": i18n.NewMemoryStore(),
		"bun":    i18n.NewBunStore(testsupport.NewBunDB(t, i18n.EnsureSchema)),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			resolver := i18n.NewResolver(store, locales())
			if err := resolver.Setup(ctx, "bs", i18n.Dictionary{"a": "1", "b": "2"}); err != nil {
				t.Fatalf("first setup: %v", err)
			}
			if err := resolver.Setup(ctx, "bs", i18n.Dictionary{"c": "3"}); err != nil {
				t.Fatalf("second setup: %v", err)
			}
			dict, tier := resolver.Resolve(ctx, "bs")
			if tier != i18n.TierStored {
				t.Fatalf("expected stored tier, got %s", tier)
			}
			if len(dict) != 1 || dict["c"] != "3" {
				t.Fatalf("expected only the second dictionary, got %v", dict)
			}
		})
	}
}

func TestSetupValidates(t *testing.T) {
	resolver := i18n.NewResolver(i18n.NewMemoryStore(), locales())

	if err := resolver.Setup(context.Background(), "bs", i18n.Dictionary{}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty dictionary, got %v", err)
	}
	if err := resolver.Setup(context.Background(), "fr", i18n.Dictionary{"a": "b"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unsupported locale, got %v", err)
	}
}

func TestSetupReportsStoreFailure(t *testing.T) {
	resolver := i18n.NewResolver(blockingStore{}, locales(), i18n.WithTimeout(10*time.Millisecond))

	err := resolver.Setup(context.Background(), "bs", i18n.Dictionary{"a": "b"})
	if !domain.IsStoreUnavailable(err) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestResolveWithRetryIsBounded(t *testing.T) {
	store := &failingStore{err: errors.New("connection reset")}
	resolver := i18n.NewResolver(store, locales(), i18n.WithRetry(3, time.Millisecond))

	_, tier := resolver.ResolveWithRetry(context.Background(), "bs")
	if tier != i18n.TierLocaleDefault {
		t.Fatalf("expected fallback after retries, got %s", tier)
	}
	if got := store.calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestResolveWithRetryDoesNotRetryMissingDictionary(t *testing.T) {
	store := &failingStore{err: domain.NotFound("dictionary", "bs", "bs")}
	resolver := i18n.NewResolver(store, locales(), i18n.WithRetry(5, time.Millisecond))

	if _, tier := resolver.ResolveWithRetry(context.Background(), "bs"); tier != i18n.TierLocaleDefault {
		t.Fatalf("expected locale default, got %s", tier)
	}
	if got := store.calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}
