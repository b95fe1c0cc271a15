package functions

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// Invoker resolves definitions from a registry and executes them under the
// TemplateFunction contract: arity and coercion failures, function errors, and
// panics all come back as *interfaces.FunctionEvaluationError with a nil result.
type Invoker struct {
	registry  interfaces.FunctionRegistry
	validator *Validator
	cache     interfaces.CacheProvider
	metrics   interfaces.FunctionMetrics
	templates sync.Map // name + body -> *template.Template
}

// InvokerOption configures the invoker instance.
type InvokerOption func(*Invoker)

// WithInvokerCache supplies the cache used for pure definitions with a CacheTTL.
func WithInvokerCache(cache interfaces.CacheProvider) InvokerOption {
	return func(i *Invoker) {
		i.cache = cache
	}
}

// WithInvokerMetrics records cache hits on metrics.
func WithInvokerMetrics(metrics interfaces.FunctionMetrics) InvokerOption {
	return func(i *Invoker) {
		if metrics != nil {
			i.metrics = metrics
		}
	}
}

// MaxCallDepth bounds how deeply template-defined functions may call other
// functions, including themselves.
const MaxCallDepth = 64

type callDepthKey struct{}

func callDepth(ctx context.Context) int {
	depth, _ := ctx.Value(callDepthKey{}).(int)
	return depth
}

type callChainKey struct{}

// callFrame records the cache keys being fetched along the current call chain.
type callFrame struct {
	key    string
	parent *callFrame
}

func callChainOf(ctx context.Context) *callFrame {
	frame, _ := ctx.Value(callChainKey{}).(*callFrame)
	return frame
}

func inCallChain(ctx context.Context, key string) bool {
	for frame := callChainOf(ctx); frame != nil; frame = frame.parent {
		if frame.key == key {
			return true
		}
	}
	return false
}

// changeNotifier is implemented by registries that report replaced or removed
// definitions.
type changeNotifier interface {
	OnChange(fn func(name string))
}

// NewInvoker constructs an invoker over registry. A nil validator is replaced
// with NewValidator(). Cached results and parsed templates are dropped when the
// registry reports a definition change.
func NewInvoker(registry interfaces.FunctionRegistry, validator *Validator, opts ...InvokerOption) *Invoker {
	if validator == nil {
		validator = NewValidator()
	}
	i := &Invoker{
		registry:  registry,
		validator: validator,
		metrics:   NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if notifier, ok := registry.(changeNotifier); ok {
		notifier.OnChange(func(name string) {
			_ = i.Forget(context.Background(), name)
		})
	}
	return i
}

// Invoke executes the named function with args.
func (i *Invoker) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	ctx = background(ctx)
	if callDepth(ctx) >= MaxCallDepth {
		return nil, callDepthError(name)
	}

	def, ok := i.registry.Get(name)
	if !ok {
		return nil, &interfaces.FunctionEvaluationError{
			Function: name,
			Cause:    "unknown function",
			Err:      ErrUnknownFunction,
		}
	}

	coerced, err := i.validator.CoerceArgs(def, args)
	if err != nil {
		return nil, &interfaces.FunctionEvaluationError{
			Function: def.Name,
			Cause:    evaluationCause(err),
			Err:      err,
		}
	}

	if !i.cacheable(def) {
		return i.execute(ctx, def, coerced)
	}

	key := buildCacheKey(def, coerced)
	if inCallChain(ctx, key) {
		// the cache waits on in-flight fetches for the same key
		return i.execute(ctx, def, coerced)
	}
	ctx = context.WithValue(ctx, callChainKey{}, &callFrame{key: key, parent: callChainOf(ctx)})

	fetched := false
	var execErr error
	result, err := i.cache.GetOrFetch(ctx, key, def.CacheTTL, func(context.Context) (any, error) {
		fetched = true
		value, err := i.execute(ctx, def, coerced)
		execErr = err
		return value, err
	})
	switch {
	case execErr != nil:
		return nil, execErr
	case err != nil:
		// cache failure, not an evaluation failure
		return i.execute(ctx, def, coerced)
	}
	if !fetched {
		i.metrics.IncrementCacheHit(def.Name)
	}
	return result, nil
}

// Bind returns a TemplateFunction that invokes name through i.
func (i *Invoker) Bind(name string) interfaces.TemplateFunction {
	return interfaces.FunctionFunc(func(args ...any) (any, error) {
		return i.Invoke(context.Background(), name, args...)
	})
}

// Forget drops cached results and parsed templates for name.
func (i *Invoker) Forget(ctx context.Context, name string) error {
	name = NormalizeName(name)
	prefix := name + "\x00"
	i.templates.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			i.templates.Delete(key)
		}
		return true
	})
	if i.cache == nil {
		return nil
	}
	return i.cache.DeleteByPrefix(background(ctx), cachePrefix(name))
}

func (i *Invoker) cacheable(def interfaces.FunctionDefinition) bool {
	return i.cache != nil && def.Pure && def.CacheTTL > 0
}

func (i *Invoker) execute(ctx context.Context, def interfaces.FunctionDefinition, args []any) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = interfaces.NewEvaluationError(def.Name, "panic: %v", recovered)
		}
	}()

	switch {
	case def.Function != nil:
		result, err = def.Function.Execute(args...)
	case strings.TrimSpace(def.Template) != "":
		result, err = i.renderTemplate(ctx, def, args)
		switch {
		case errors.Is(err, ErrCallDepthExceeded):
			err = callDepthError(def.Name)
		case err != nil:
			// keep the outer function as the reported name
			err = &interfaces.FunctionEvaluationError{Function: def.Name, Cause: err.Error(), Err: err}
		}
	default:
		err = &interfaces.FunctionEvaluationError{
			Function: def.Name,
			Cause:    "definition has no function or template",
			Err:      ErrInvalidDefinition,
		}
	}

	if err != nil {
		return nil, interfaces.WrapEvaluationError(def.Name, err)
	}
	return result, nil
}

// renderTemplate runs a template-defined function. The body sees .Args and .Argc
// and may call every function registered at render time. Nested calls run one
// level deeper than ctx.
func (i *Invoker) renderTemplate(ctx context.Context, def interfaces.FunctionDefinition, args []any) (string, error) {
	nested := context.WithValue(ctx, callDepthKey{}, callDepth(ctx)+1)
	funcs := i.funcMap(nested)

	key := def.Name + "\x00" + def.Template
	parsed, ok := i.templates.Load(key)
	if !ok {
		tmpl, err := template.New(def.Name).
			Option("missingkey=error").
			Funcs(funcs).
			Parse(def.Template)
		if err != nil {
			return "", err
		}
		parsed, _ = i.templates.LoadOrStore(key, tmpl)
	}

	tmpl, err := parsed.(*template.Template).Clone()
	if err != nil {
		return "", err
	}
	tmpl.Funcs(funcs)

	var builder strings.Builder
	data := map[string]any{
		"Args": args,
		"Argc": len(args),
	}
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func (i *Invoker) funcMap(ctx context.Context) template.FuncMap {
	defs := i.registry.List()
	funcs := make(template.FuncMap, len(defs))
	for _, def := range defs {
		name := def.Name
		funcs[name] = func(args ...any) (any, error) {
			return i.Invoke(ctx, name, args...)
		}
	}
	return funcs
}

func callDepthError(name string) error {
	return &interfaces.FunctionEvaluationError{
		Function: name,
		Cause:    fmt.Sprintf("maximum call depth %d exceeded", MaxCallDepth),
		Err:      ErrCallDepthExceeded,
	}
}

func cachePrefix(name string) string {
	return "function:" + name + ":"
}

// buildCacheKey scopes keys by function name so a definition change can drop
// them by prefix. The template body is hashed in as well.
func buildCacheKey(def interfaces.FunctionDefinition, args []any) string {
	var builder strings.Builder
	builder.WriteString(def.Template)
	for _, arg := range args {
		builder.WriteString("|")
		builder.WriteString(fmt.Sprintf("%T=%v", arg, arg))
	}
	h := sha1.Sum([]byte(builder.String()))
	return cachePrefix(def.Name) + hex.EncodeToString(h[:])
}

func background(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
