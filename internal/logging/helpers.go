package logging

import (
	"maps"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

// WithFields attaches fields when logger implements FieldsLogger and returns
// logger untouched otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}
