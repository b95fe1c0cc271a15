package functions

import "errors"

var (
	// ErrDuplicateDefinition indicates an attempt to register a function name twice.
	ErrDuplicateDefinition = errors.New("functions: duplicate definition")
	// ErrInvalidDefinition occurs when a definition fails validation.
	ErrInvalidDefinition = errors.New("functions: invalid definition")
	// ErrUnknownFunction is returned when no definition matches the requested name.
	ErrUnknownFunction = errors.New("functions: unknown function")
	// ErrArity indicates the call supplied too few or too many arguments.
	ErrArity = errors.New("functions: wrong number of arguments")
	// ErrArgumentType indicates an argument could not be coerced to the declared type.
	ErrArgumentType = errors.New("functions: argument type mismatch")
	// ErrArgumentSchema indicates the argument list failed the definition's JSON Schema.
	ErrArgumentSchema = errors.New("functions: arguments failed schema validation")
	// ErrCallDepthExceeded is returned when nested template-defined calls exceed MaxCallDepth.
	ErrCallDepthExceeded = errors.New("functions: maximum call depth exceeded")
	// ErrNotInitialised is returned by a Service built without an invoker.
	ErrNotInitialised = errors.New("functions: service not initialised")
)
