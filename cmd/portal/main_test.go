package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/internal/logging/console"
)

func useMemoryModule(t *testing.T) **portal.Module {
	t.Helper()
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })

	t.Setenv("PORTAL_SETUP_SECRET", "from-config")

	var built *portal.Module
	moduleBuilder = func(cfg portal.Config) (*portal.Module, error) {
		cfg.Legacy.Dir = "../../internal/legacy/testdata"
		cfg.Media.Dir = t.TempDir()
		module, err := portal.New(cfg, portal.WithLoggerProvider(console.NewProvider(console.Options{Writer: &bytes.Buffer{}})))
		built = module
		return module, err
	}
	return &built
}

func TestRunRequiresCommand(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected usage error")
	}
	if err := run([]string{"publish"}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "publish") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunImportPrintsPartitionCounts(t *testing.T) {
	useMemoryModule(t)

	var out bytes.Buffer
	if err := run([]string{"import"}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "news/bs\t2") {
		t.Fatalf("expected news/bs count in output, got %q", out.String())
	}
}

func TestRunSetupTranslationsUsesConfiguredSecret(t *testing.T) {
	built := useMemoryModule(t)

	file := filepath.Join(t.TempDir(), "bs.yaml")
	if err := os.WriteFile(file, []byte("nav.home: Naslovna\n"), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"setup-translations", "-locale", "bs", "-file", file}, &out); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !strings.Contains(out.String(), "bs: 1 translations stored") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if got := (*built).Sync().T(t.Context(), "bs", "nav.home"); got != "Naslovna" {
		t.Fatalf("expected stored translation, got %q", got)
	}

	err := run([]string{"setup-translations", "-locale", "bs", "-file", file, "-secret", "wrong"}, &out)
	if err == nil || !portal.IsForbidden(err) {
		t.Fatalf("expected forbidden with wrong secret, got %v", err)
	}
}

func TestRunServeRequiresSessionSecret(t *testing.T) {
	useMemoryModule(t)
	t.Setenv("PORTAL_SESSION_SECRET", "short")

	err := run([]string{"serve", "-addr", "127.0.0.1:0"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "session_secret") {
		t.Fatalf("expected session secret error, got %v", err)
	}
}
