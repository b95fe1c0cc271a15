package functions

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-templatefn/internal/logging"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// Service fronts an invoker with logging and metrics and exposes the function
// catalogue to template engines.
type Service struct {
	registry interfaces.FunctionRegistry
	invoker  interfaces.FunctionInvoker
	logger   interfaces.Logger
	metrics  interfaces.FunctionMetrics
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the metrics recorder used for telemetry.
func WithMetrics(metrics interfaces.FunctionMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewService constructs a function service using the supplied registry and invoker.
func NewService(registry interfaces.FunctionRegistry, invoker interfaces.FunctionInvoker, opts ...ServiceOption) *Service {
	service := &Service{
		registry: registry,
		invoker:  invoker,
		logger:   logging.NoOp(),
		metrics:  NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Call invokes the named function. Failures are returned to the caller untouched
// apart from logging; evaluation errors are never retried here.
func (s *Service) Call(ctx context.Context, name string, args ...any) (any, error) {
	if s.invoker == nil {
		return nil, ErrNotInitialised
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.WithFunction(s.baseLogger(ctx), name, len(args))
	if err := ctx.Err(); err != nil {
		logger.Warn("functions.service.context_done", "error", err)
		return nil, interfaces.WrapEvaluationError(name, err)
	}

	start := time.Now()
	result, err := s.invoker.Invoke(ctx, name, args...)
	elapsed := time.Since(start)
	s.metrics.ObserveCallDuration(name, elapsed)

	fields := map[string]any{
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		s.metrics.IncrementCallError(name)
		fields["error"] = err
		logging.WithFields(logger, fields).Error("functions.service.call_failed")
		return nil, err
	}
	logging.WithFields(logger, fields).Debug("functions.service.call_succeeded")
	return result, nil
}

// Bind resolves name once and returns a TemplateFunction routed through Call.
func (s *Service) Bind(name string) (interfaces.TemplateFunction, error) {
	if s.registry == nil {
		return nil, ErrNotInitialised
	}
	def, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return boundFunction{service: s, name: def.Name}, nil
}

// FuncMap returns every registered function in the shape text/template and
// html/template expect. A non-nil error from a call aborts template execution,
// leaving diagnostics to the engine.
func (s *Service) FuncMap() map[string]any {
	if s.registry == nil {
		return map[string]any{}
	}
	defs := s.registry.List()
	funcs := make(map[string]any, len(defs))
	for _, def := range defs {
		name := def.Name
		funcs[name] = func(args ...any) (any, error) {
			return s.Call(context.Background(), name, args...)
		}
	}
	return funcs
}

// Registry exposes the underlying function registry.
func (s *Service) Registry() interfaces.FunctionRegistry {
	return s.registry
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

type boundFunction struct {
	service *Service
	name    string
}

func (b boundFunction) Execute(args ...any) (any, error) {
	return b.service.Call(context.Background(), b.name, args...)
}

var (
	_ interfaces.FunctionService  = (*Service)(nil)
	_ interfaces.TemplateFunction = boundFunction{}
)
