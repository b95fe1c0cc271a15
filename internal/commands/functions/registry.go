package functionscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-templatefn/internal/commands"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers produced by RegisterFunctionCommands. Sync is nil
// when no Syncer was supplied.
type HandlerSet struct {
	Invoke *InvokeFunctionHandler
	Sync   *SyncStoredFunctionsHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	syncer            Syncer
	invokeHandlerOpts []commands.HandlerOption[InvokeFunctionCommand]
	syncHandlerOpts   []commands.HandlerOption[SyncStoredFunctionsCommand]
}

// WithSyncer enables the stored function sync handler.
func WithSyncer(syncer Syncer) Option {
	return func(cfg *options) {
		cfg.syncer = syncer
	}
}

// WithInvokeHandlerOptions forwards options to the InvokeFunctionHandler constructor.
func WithInvokeHandlerOptions(opts ...commands.HandlerOption[InvokeFunctionCommand]) Option {
	return func(cfg *options) {
		cfg.invokeHandlerOpts = append(cfg.invokeHandlerOpts, opts...)
	}
}

// WithSyncHandlerOptions forwards options to the SyncStoredFunctionsHandler constructor.
func WithSyncHandlerOptions(opts ...commands.HandlerOption[SyncStoredFunctionsCommand]) Option {
	return func(cfg *options) {
		cfg.syncHandlerOpts = append(cfg.syncHandlerOpts, opts...)
	}
}

// RegisterFunctionCommands builds the function command handlers and registers them with reg.
// A nil reg only builds the handlers.
func RegisterFunctionCommands(reg CommandRegistry, service interfaces.FunctionService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("function command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "functions")

	set := &HandlerSet{
		Invoke: NewInvokeFunctionHandler(service, logger, cfg.invokeHandlerOpts...),
	}
	if cfg.syncer != nil {
		set.Sync = NewSyncStoredFunctionsHandler(cfg.syncer, logger, cfg.syncHandlerOpts...)
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Invoke); err != nil {
			return nil, err
		}
		if set.Sync != nil {
			if err := reg.RegisterCommand(set.Sync); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterSyncCron wires handler into a cron registrar using cfg and msg. The handler runs
// with a background context.
func RegisterSyncCron(reg CronRegistrar, handler *SyncStoredFunctionsHandler, cfg command.HandlerConfig, msg SyncStoredFunctionsCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
