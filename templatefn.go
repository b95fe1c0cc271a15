package templatefn

import (
	"context"
	"io/fs"

	functionscmd "github.com/goliatone/go-templatefn/internal/commands/functions"
	"github.com/goliatone/go-templatefn/internal/di"
	"github.com/goliatone/go-templatefn/internal/functions"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// TemplateFunction is a callable exposed to templates under a name.
type TemplateFunction = interfaces.TemplateFunction

// FunctionFunc adapts an ordinary function to TemplateFunction.
type FunctionFunc = interfaces.FunctionFunc

// FunctionEvaluationError reports that a function could not produce a result.
type FunctionEvaluationError = interfaces.FunctionEvaluationError

// FunctionDefinition describes a registered function.
type FunctionDefinition = interfaces.FunctionDefinition

// FunctionParam declares positional argument coercion.
type FunctionParam = interfaces.FunctionParam

// FunctionParamType names a coercion target.
type FunctionParamType = interfaces.FunctionParamType

// FunctionService exports the service contract backing a Module.
type FunctionService = interfaces.FunctionService

// FunctionMetrics exports the metrics recorder contract.
type FunctionMetrics = interfaces.FunctionMetrics

// LoggerProvider exports the logger provider contract.
type LoggerProvider = interfaces.LoggerProvider

// CacheProvider exports the result cache contract.
type CacheProvider = interfaces.CacheProvider

// CommandHandlers exports the command handler set.
type CommandHandlers = functionscmd.HandlerSet

// InvokeFunctionCommand exports the go-command message that invokes a function.
type InvokeFunctionCommand = functionscmd.InvokeFunctionCommand

// SyncStoredFunctionsCommand exports the go-command message that reloads stored functions.
type SyncStoredFunctionsCommand = functionscmd.SyncStoredFunctionsCommand

const (
	VariadicArgs = interfaces.VariadicArgs

	ParamAny    = interfaces.FunctionParamAny
	ParamString = interfaces.FunctionParamString
	ParamInt    = interfaces.FunctionParamInt
	ParamFloat  = interfaces.FunctionParamFloat
	ParamBool   = interfaces.FunctionParamBool
	ParamArray  = interfaces.FunctionParamArray
	ParamMap    = interfaces.FunctionParamMap
)

var (
	ErrUnknownFunction     = functions.ErrUnknownFunction
	ErrDuplicateDefinition = functions.ErrDuplicateDefinition
	ErrInvalidDefinition   = functions.ErrInvalidDefinition
	ErrArity               = functions.ErrArity
	ErrArgumentType        = functions.ErrArgumentType
	ErrArgumentSchema      = functions.ErrArgumentSchema
	ErrStorageDisabled     = di.ErrStorageDisabled
)

// NewEvaluationError builds an evaluation error with a formatted cause.
func NewEvaluationError(function, format string, args ...any) *FunctionEvaluationError {
	return interfaces.NewEvaluationError(function, format, args...)
}

// IsEvaluationError reports whether err carries a FunctionEvaluationError.
func IsEvaluationError(err error) bool {
	return interfaces.IsEvaluationError(err)
}

// Option customises module wiring.
type Option = di.Option

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithCache           = di.WithCache
	WithMetrics         = di.WithMetrics
	WithManifestFS      = di.WithManifestFS
	WithCommandRegistry = di.WithCommandRegistry
	WithCronRegistrar   = di.WithCronRegistrar
	WithSQLDB           = di.WithSQLDB
	WithBunDB           = di.WithBunDB
	WithRepository      = di.WithRepository
)

// Module represents the top level function runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Functions returns the function service.
func (m *Module) Functions() FunctionService {
	return m.container.Service()
}

// Call invokes the named function.
func (m *Module) Call(ctx context.Context, name string, args ...any) (any, error) {
	return m.container.Service().Call(ctx, name, args...)
}

// Bind resolves name to a TemplateFunction.
func (m *Module) Bind(name string) (TemplateFunction, error) {
	return m.container.Service().Bind(name)
}

// FuncMap returns the catalogue in the shape text/template and html/template expect.
func (m *Module) FuncMap() map[string]any {
	return m.container.Service().FuncMap()
}

// Register adds a definition to the catalogue.
func (m *Module) Register(def FunctionDefinition) error {
	return m.container.Registry().Register(def)
}

// RegisterFunc registers fn under name.
func (m *Module) RegisterFunc(name string, fn TemplateFunction, minArgs, maxArgs int) error {
	return m.Register(FunctionDefinition{
		Name:     name,
		MinArgs:  minArgs,
		MaxArgs:  maxArgs,
		Function: fn,
	})
}

// Define registers an ordinary Go function, deriving arity from its signature.
func (m *Module) Define(name string, fn any) error {
	def, err := functions.Define(name, fn)
	if err != nil {
		return err
	}
	return m.Register(def)
}

// LoadFS registers every template-defined function manifest in fsys matching pattern.
func (m *Module) LoadFS(fsys fs.FS, pattern string) (int, error) {
	return functions.RegisterFS(m.container.Registry(), fsys, pattern)
}

// Definitions lists the registered definitions sorted by name.
func (m *Module) Definitions() []FunctionDefinition {
	return m.container.Registry().List()
}

// SaveFunction validates, registers, and persists a template-defined function manifest.
func (m *Module) SaveFunction(ctx context.Context, source string) (FunctionDefinition, error) {
	return m.container.SaveFunction(ctx, source)
}

// DeleteFunction removes a stored function.
func (m *Module) DeleteFunction(ctx context.Context, name string) error {
	return m.container.DeleteFunction(ctx, name)
}

// SyncFunctions reloads stored functions into the catalogue.
func (m *Module) SyncFunctions(ctx context.Context) (int, error) {
	return m.container.SyncFunctions(ctx)
}

// Commands returns the command handlers, or nil when commands are disabled.
func (m *Module) Commands() *CommandHandlers {
	return m.container.CommandHandlers()
}

// Close releases resources opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
