package functionscmd

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-templatefn/internal/commands"
	"github.com/goliatone/go-templatefn/internal/commands/fixtures"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

type stubFunctionService struct {
	calls  []string
	result any
	err    error
}

func (s *stubFunctionService) Call(_ context.Context, name string, args ...any) (any, error) {
	s.calls = append(s.calls, name)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubFunctionService) Bind(string) (interfaces.TemplateFunction, error) {
	return nil, errors.New("not implemented")
}

func (s *stubFunctionService) FuncMap() map[string]any { return map[string]any{} }

func TestInvokeFunctionHandlerDeliversResult(t *testing.T) {
	service := &stubFunctionService{result: int64(2)}
	handler := NewInvokeFunctionHandler(service, nil)

	var gotName string
	var gotResult any
	err := handler.Execute(context.Background(), InvokeFunctionCommand{
		Name: "subtract",
		Args: []any{5, 3},
		OnResult: func(name string, result any) {
			gotName, gotResult = name, result
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotName != "subtract" || gotResult != int64(2) {
		t.Fatalf("unexpected result delivery %q=%#v", gotName, gotResult)
	}
}

func TestInvokeFunctionHandlerValidation(t *testing.T) {
	service := &stubFunctionService{}
	handler := NewInvokeFunctionHandler(service, nil)

	err := handler.Execute(context.Background(), InvokeFunctionCommand{Name: "   "})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(service.calls) != 0 {
		t.Fatal("service must not be called for invalid commands")
	}
}

func TestInvokeFunctionHandlerPropagatesEvaluationErrors(t *testing.T) {
	service := &stubFunctionService{err: interfaces.NewEvaluationError("divide", "division by zero")}
	handler := NewInvokeFunctionHandler(service, nil)

	called := false
	err := handler.Execute(context.Background(), InvokeFunctionCommand{
		Name:     "divide",
		Args:     []any{1, 0},
		OnResult: func(string, any) { called = true },
	})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("result sink must not run on failure")
	}
}

func TestSyncStoredFunctionsHandler(t *testing.T) {
	runs := 0
	handler := NewSyncStoredFunctionsHandler(SyncFunc(func(context.Context) (int, error) {
		runs++
		return 3, nil
	}), nil)

	if err := handler.Execute(context.Background(), SyncStoredFunctionsCommand{Reason: "deploy"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if runs != 1 {
		t.Fatalf("expected one sync, got %d", runs)
	}

	failing := NewSyncStoredFunctionsHandler(SyncFunc(func(context.Context) (int, error) {
		return 0, errors.New("database offline")
	}), nil)
	if err := failing.Execute(context.Background(), SyncStoredFunctionsCommand{}); !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestRegisterFunctionCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	set, err := RegisterFunctionCommands(reg, &stubFunctionService{}, nil,
		WithSyncer(SyncFunc(func(context.Context) (int, error) { return 0, nil })),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Invoke == nil || set.Sync == nil {
		t.Fatalf("expected both handlers, got %#v", set)
	}
	if len(reg.Handlers) != 2 || reg.Handlers[0] != set.Invoke || reg.Handlers[1] != set.Sync {
		t.Fatalf("unexpected registrations %#v", reg.Handlers)
	}
}

func TestRegisterFunctionCommandsWithoutSyncer(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	set, err := RegisterFunctionCommands(reg, &stubFunctionService{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Sync != nil || len(reg.Handlers) != 1 {
		t.Fatalf("expected only the invoke handler, got %#v", reg.Handlers)
	}
}

func TestRegisterFunctionCommandsErrors(t *testing.T) {
	if _, err := RegisterFunctionCommands(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil service")
	}

	reg := fixtures.NewRecordingRegistry()
	reg.Err = errors.New("registry closed")
	if _, err := RegisterFunctionCommands(reg, &stubFunctionService{}, nil); !errors.Is(err, reg.Err) {
		t.Fatalf("expected registry error, got %v", err)
	}
}

func TestRegisterFunctionCommandsHandlerOptionsApplied(t *testing.T) {
	invokeApplied := false
	_, err := RegisterFunctionCommands(nil, &stubFunctionService{}, nil,
		WithInvokeHandlerOptions(func(*commands.Handler[InvokeFunctionCommand]) { invokeApplied = true }),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !invokeApplied {
		t.Fatal("expected invoke handler options applied")
	}
}

func TestRegisterSyncCron(t *testing.T) {
	recorder := fixtures.NewCronRecorder()
	runs := 0
	handler := NewSyncStoredFunctionsHandler(SyncFunc(func(context.Context) (int, error) {
		runs++
		return 1, nil
	}), nil)

	cfg := command.HandlerConfig{Expression: "@hourly"}
	if err := RegisterSyncCron(recorder.Registrar(), handler, cfg, SyncStoredFunctionsCommand{Reason: "cron"}); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if len(recorder.Registrations) != 1 {
		t.Fatalf("expected one registration, got %d", len(recorder.Registrations))
	}
	if recorder.Registrations[0].Config.Expression != "@hourly" {
		t.Fatalf("unexpected cron config %+v", recorder.Registrations[0].Config)
	}
	run, ok := recorder.Registrations[0].Handler.(func() error)
	if !ok {
		t.Fatalf("expected func() error handler, got %T", recorder.Registrations[0].Handler)
	}
	if err := run(); err != nil || runs != 1 {
		t.Fatalf("cron handler run = %v, runs=%d", err, runs)
	}

	if err := RegisterSyncCron(nil, handler, cfg, SyncStoredFunctionsCommand{}); err != nil {
		t.Fatalf("nil registrar should be ignored, got %v", err)
	}
}
