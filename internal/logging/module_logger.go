package logging

import (
	"context"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

const (
	rootModule      = "templatefn"
	functionsModule = "templatefn.functions"
	storageModule   = "templatefn.storage"
	commandsModule  = "templatefn.commands"
)

const (
	fieldModule   = "module"
	fieldFunction = "function"
	fieldArgc     = "argc"
)

// ModuleLogger returns the logger for module, falling back to NoOp when provider
// is nil or yields nothing. The module name is attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{fieldModule: module})
}

// FunctionsLogger returns the logger used by the function registry and service.
func FunctionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, functionsModule)
}

// StorageLogger returns the logger used by definition repositories.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// CommandsLogger returns the logger used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
