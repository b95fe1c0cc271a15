package logging

import (
	"maps"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// WithFields returns a child logger carrying fields when logger implements
// interfaces.FieldsLogger. Other loggers are returned unchanged.
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

// WithFunction annotates logger with the function name and the argument count of a call.
func WithFunction(logger interfaces.Logger, function string, argc int) interfaces.Logger {
	return WithFields(logger, map[string]any{
		fieldFunction: function,
		fieldArgc:     argc,
	})
}
