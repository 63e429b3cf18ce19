package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/goliatone/go-portal"
	portalhttp "github.com/goliatone/go-portal/internal/http"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/logging"
)

var moduleBuilder = func(cfg portal.Config) (*portal.Module, error) {
	return portal.New(cfg)
}

const usage = `usage: portal <command> [flags]

commands:
  serve                run the JSON API
  import               import the legacy export for every kind and locale
  setup-translations   replace the dictionary of one locale`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("portal: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "import":
		return runImport(args[1:], out)
	case "setup-translations":
		return runSetupTranslations(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func loadModule(fs *flag.FlagSet, args []string) (*portal.Module, portal.Config, error) {
	configPath := fs.String("config", "", "Path to a YAML config file (PORTAL_* variables override it)")
	if err := fs.Parse(args); err != nil {
		return nil, portal.Config{}, err
	}
	cfg, err := portal.LoadConfig(*configPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, cfg, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (defaults to http.addr)")
	module, cfg, err := loadModule(fs, args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if len(cfg.HTTP.SessionSecret) < 32 {
		module.Close(context.Background())
		return errors.New("http.session_secret must hold at least 32 bytes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.HTTPLogger(module.Container().LoggerProvider())
	api := portalhttp.NewAPI(module.Sync(),
		portalhttp.WithLogger(logger),
		portalhttp.WithSessionName(cfg.HTTP.SessionName),
	)
	server := portalhttp.NewServer(cfg.HTTP, api)

	errs := make(chan error, 1)
	go func() {
		logger.Info("http.listen", "addr", cfg.HTTP.Addr)
		errs <- server.Start(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http.shutdown", "error", err)
	}
	return module.Close(shutdownCtx)
}

func runImport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	module, _, err := loadModule(fs, args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer module.Close(ctx)

	counts, err := module.Sync().ImportAll(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	lines := make([]string, 0, len(counts))
	for partition, count := range counts {
		lines = append(lines, fmt.Sprintf("%s\t%d", partition, count))
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func runSetupTranslations(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("setup-translations", flag.ExitOnError)
	code := fs.String("locale", "", "Locale whose dictionary is replaced")
	file := fs.String("file", "", "YAML or JSON dictionary file")
	secret := fs.String("secret", "", "Setup secret (defaults to translations.setup_secret)")
	module, cfg, err := loadModule(fs, args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer module.Close(ctx)

	if *file == "" {
		return errors.New("file is required")
	}
	payload, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read dictionary: %w", err)
	}
	dict, err := i18n.DecodeDictionary(payload)
	if err != nil {
		return err
	}

	presented := *secret
	if presented == "" {
		presented = cfg.Translations.SetupSecret
	}
	if err := module.Sync().SetupTranslations(ctx, portal.Principal{}, presented, *code, dict); err != nil {
		return fmt.Errorf("setup translations: %w", err)
	}
	fmt.Fprintf(out, "%s: %d translations stored\n", *code, len(dict))
	return nil
}
