package interfaces

import (
	"context"
	"time"
)

// TemplateFunction is the invocation contract a template engine uses to evaluate a
// named function during expansion. Arguments arrive in call-site order. A failure
// is reported through an error that is, or wraps, *FunctionEvaluationError.
//
// Implementations decide their own side effects and synchronization; the contract
// makes no guarantee either way.
type TemplateFunction interface {
	Execute(args ...any) (any, error)
}

// FunctionFunc adapts an ordinary Go function to TemplateFunction.
type FunctionFunc func(args ...any) (any, error)

// Execute calls f(args...).
func (f FunctionFunc) Execute(args ...any) (any, error) {
	return f(args...)
}

// FunctionRegistry describes the lifecycle contract for registering and resolving
// function definitions. Implementations must be safe for concurrent use.
type FunctionRegistry interface {
	// Register stores a definition and returns an error when a function with the
	// same name already exists or the definition fails validation.
	Register(definition FunctionDefinition) error

	// Get returns the definition for the supplied function name.
	Get(name string) (FunctionDefinition, bool)

	// List exposes the current catalogue in name order.
	List() []FunctionDefinition

	// Remove deletes the function from the registry. Removing an unknown function
	// must be a no-op.
	Remove(name string)
}

// FunctionInvoker resolves a function by name and executes it.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, args ...any) (any, error)
}

// FunctionService is the entry point used by template engine adapters.
type FunctionService interface {
	Call(ctx context.Context, name string, args ...any) (any, error)
	Bind(name string) (TemplateFunction, error)
	FuncMap() map[string]any
}

// FunctionMetrics records call telemetry.
type FunctionMetrics interface {
	ObserveCallDuration(function string, duration time.Duration)
	IncrementCallError(function string)
	IncrementCacheHit(function string)
}

// VariadicArgs marks an unbounded MaxArgs.
const VariadicArgs = -1

// FunctionDefinition captures the metadata, argument contract, and body of a
// registered function. Exactly one of Function or Template provides the body.
type FunctionDefinition struct {
	Name        string
	Description string
	Category    string

	// MinArgs and MaxArgs bound the accepted arity. MaxArgs of VariadicArgs means
	// no upper bound.
	MinArgs int
	MaxArgs int

	// Params declares positional coercions applied before execution. Arguments
	// beyond len(Params) are passed through untouched.
	Params []FunctionParam

	// ArgsSchema is an optional JSON Schema validated against the argument array.
	ArgsSchema map[string]any

	// Pure functions with a positive CacheTTL have their results memoized.
	Pure     bool
	CacheTTL time.Duration

	Template string
	Function TemplateFunction
}

// FunctionParam describes a single positional parameter.
type FunctionParam struct {
	Name     string
	Type     FunctionParamType
	Validate FunctionValidator
}

// FunctionParamType enumerates the supported argument coercions.
type FunctionParamType string

const (
	FunctionParamAny    FunctionParamType = "any"
	FunctionParamString FunctionParamType = "string"
	FunctionParamInt    FunctionParamType = "int"
	FunctionParamFloat  FunctionParamType = "float"
	FunctionParamBool   FunctionParamType = "bool"
	FunctionParamArray  FunctionParamType = "array"
	FunctionParamMap    FunctionParamType = "map"
)

// FunctionValidator allows definitions to perform custom argument validation.
type FunctionValidator func(value any) error
