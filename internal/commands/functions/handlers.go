package functionscmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-templatefn/internal/commands"
	"github.com/goliatone/go-templatefn/internal/logging"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

const (
	invokeOperation = "functions.invoke"
	syncOperation   = "functions.sync_stored"
)

// Syncer reloads stored function definitions and reports how many were applied.
type Syncer interface {
	SyncFunctions(ctx context.Context) (int, error)
}

// SyncFunc adapts a function to Syncer.
type SyncFunc func(ctx context.Context) (int, error)

// SyncFunctions implements Syncer.
func (f SyncFunc) SyncFunctions(ctx context.Context) (int, error) {
	return f(ctx)
}

var (
	_ command.Commander[InvokeFunctionCommand]      = (*InvokeFunctionHandler)(nil)
	_ command.Commander[SyncStoredFunctionsCommand] = (*SyncStoredFunctionsHandler)(nil)
)

// InvokeFunctionHandler executes InvokeFunctionCommand through a FunctionService.
type InvokeFunctionHandler struct {
	inner *commands.Handler[InvokeFunctionCommand]
}

// NewInvokeFunctionHandler creates a handler bound to service.
func NewInvokeFunctionHandler(service interfaces.FunctionService, logger interfaces.Logger, opts ...commands.HandlerOption[InvokeFunctionCommand]) *InvokeFunctionHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg InvokeFunctionCommand) error {
		result, err := service.Call(ctx, msg.Name, msg.Args...)
		if err != nil {
			return err
		}
		if msg.OnResult != nil {
			msg.OnResult(msg.Name, result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[InvokeFunctionCommand]{
		commands.WithLogger[InvokeFunctionCommand](baseLogger),
		commands.WithOperation[InvokeFunctionCommand](invokeOperation),
		commands.WithMessageFields(func(msg InvokeFunctionCommand) map[string]any {
			return map[string]any{
				"function": msg.Name,
				"argc":     len(msg.Args),
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[InvokeFunctionCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &InvokeFunctionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[InvokeFunctionCommand].
func (h *InvokeFunctionHandler) Execute(ctx context.Context, msg InvokeFunctionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncStoredFunctionsHandler executes SyncStoredFunctionsCommand through a Syncer.
type SyncStoredFunctionsHandler struct {
	inner *commands.Handler[SyncStoredFunctionsCommand]
}

// NewSyncStoredFunctionsHandler creates a handler bound to syncer.
func NewSyncStoredFunctionsHandler(syncer Syncer, logger interfaces.Logger, opts ...commands.HandlerOption[SyncStoredFunctionsCommand]) *SyncStoredFunctionsHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SyncStoredFunctionsCommand) error {
		count, err := syncer.SyncFunctions(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"synced_count": count,
			"reason":       msg.Reason,
		}).Info("functions.command.sync_stored.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncStoredFunctionsCommand]{
		commands.WithLogger[SyncStoredFunctionsCommand](baseLogger),
		commands.WithOperation[SyncStoredFunctionsCommand](syncOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncStoredFunctionsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncStoredFunctionsHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncStoredFunctionsCommand].
func (h *SyncStoredFunctionsHandler) Execute(ctx context.Context, msg SyncStoredFunctionsCommand) error {
	return h.inner.Execute(ctx, msg)
}
