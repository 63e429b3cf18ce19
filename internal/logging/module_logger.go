package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

const (
	rootModule        = "portal"
	syncModule        = "portal.sync"
	migrateModule     = "portal.migrate"
	orderingModule    = "portal.ordering"
	translationModule = "portal.i18n"
	settingsModule    = "portal.settings"
	storageModule     = "portal.storage"
	httpModule        = "portal.http"
)

const (
	fieldKind   = "kind"
	fieldLocale = "locale"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger so services can run with logging disabled. The module name is
// attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if strings.TrimSpace(module) == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// SyncLogger is used by the content sync facade.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// MigrateLogger is used by the legacy importer.
func MigrateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, migrateModule)
}

// OrderingLogger is used by the ordering engine.
func OrderingLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, orderingModule)
}

// TranslationLogger is used by the translation resolver.
func TranslationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translationModule)
}

// SettingsLogger is used by the site settings service.
func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

// StorageLogger is used by store connectors.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// HTTPLogger is used by the HTTP adapter.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithPartition annotates logger with the collection kind and locale of a
// content partition. Blank values are skipped.
func WithPartition(logger interfaces.Logger, kind, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields[fieldKind] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
