package functions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"text/template"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

type recordingLogger struct {
	entries []string
	fields  map[string]any
}

func (l *recordingLogger) record(level, msg string) { l.entries = append(l.entries, level+":"+msg) }
func (l *recordingLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any) { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any) { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if l.fields == nil {
		l.fields = map[string]any{}
	}
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	registry, invoker := newBuiltInInvoker(t)
	return NewService(registry, invoker, opts...)
}

func TestService_CallRecordsMetricsAndLogs(t *testing.T) {
	logger := &recordingLogger{}
	metrics := newCountingMetrics()
	service := newTestService(t, WithLogger(logger), WithMetrics(metrics))

	got, err := service.Call(context.Background(), "subtract", 5, 3)
	if err != nil || got != int64(2) {
		t.Fatalf("Call = %#v, %v", got, err)
	}
	if _, err := service.Call(context.Background(), "divide", 1, 0); !interfaces.IsEvaluationError(err) {
		t.Fatalf("expected evaluation error, got %v", err)
	}

	if metrics.durations["subtract"] != 1 || metrics.durations["divide"] != 1 {
		t.Fatalf("expected durations for both calls, got %v", metrics.durations)
	}
	if metrics.errors["divide"] != 1 || metrics.errors["subtract"] != 0 {
		t.Fatalf("unexpected error counts %v", metrics.errors)
	}

	joined := strings.Join(logger.entries, ",")
	if !strings.Contains(joined, "debug:functions.service.call_succeeded") {
		t.Fatalf("expected success log, got %v", logger.entries)
	}
	if !strings.Contains(joined, "error:functions.service.call_failed") {
		t.Fatalf("expected failure log, got %v", logger.entries)
	}
	if logger.fields["function"] != "divide" {
		t.Fatalf("expected function field, got %v", logger.fields)
	}
}

func TestService_CallHonoursCancelledContext(t *testing.T) {
	metrics := newCountingMetrics()
	service := newTestService(t, WithMetrics(metrics))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := service.Call(ctx, "concat", "a")
	if got != nil || !errors.Is(err, context.Canceled) || !interfaces.IsEvaluationError(err) {
		t.Fatalf("expected cancelled evaluation error, got %#v, %v", got, err)
	}
	if metrics.durations["concat"] != 0 {
		t.Fatal("cancelled calls must not reach the invoker")
	}
}

func TestService_NotInitialised(t *testing.T) {
	service := NewService(nil, nil)
	if _, err := service.Call(context.Background(), "concat"); !errors.Is(err, ErrNotInitialised) {
		t.Fatalf("expected ErrNotInitialised, got %v", err)
	}
	if _, err := service.Bind("concat"); !errors.Is(err, ErrNotInitialised) {
		t.Fatalf("expected ErrNotInitialised, got %v", err)
	}
	if len(service.FuncMap()) != 0 {
		t.Fatal("expected empty func map")
	}
}

func TestService_Bind(t *testing.T) {
	service := newTestService(t)

	if _, err := service.Bind("nope"); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}

	fn, err := service.Bind("CONCAT")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	got, err := fn.Execute("x", nil, 1)
	if err != nil || got != "x1" {
		t.Fatalf("Execute = %#v, %v", got, err)
	}
}

func TestService_FuncMapDrivesTextTemplate(t *testing.T) {
	service := newTestService(t)

	tmpl := template.Must(template.New("page").Funcs(service.FuncMap()).Parse(
		`{{ concat "Total: " (add .Price .Tax) }} / {{ slugify .Title }}`,
	))

	var out strings.Builder
	if err := tmpl.Execute(&out, map[string]any{"Price": 10, "Tax": 2, "Title": "Hello World"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); got != "Total: 12 / hello-world" {
		t.Fatalf("unexpected render %q", got)
	}

	failing := template.Must(template.New("fail").Funcs(service.FuncMap()).Parse(`{{ divide 1 0 }}`))
	err := failing.Execute(&out, nil)
	if !interfaces.IsEvaluationError(err) {
		t.Fatalf("expected evaluation error to abort rendering, got %v", err)
	}
}
