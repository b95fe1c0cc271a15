package functions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

func TestDefine(t *testing.T) {
	registry := NewRegistry(NewValidator())

	repeat, err := Define("repeat", strings.Repeat)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if repeat.MinArgs != 2 || repeat.MaxArgs != 2 {
		t.Fatalf("unexpected arity %d..%d", repeat.MinArgs, repeat.MaxArgs)
	}

	sum, err := Define("sum", func(base float64, values ...int) (float64, error) {
		if len(values) == 0 {
			return 0, errors.New("nothing to sum")
		}
		for _, v := range values {
			base += float64(v)
		}
		return base, nil
	})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if sum.MinArgs != 1 || sum.MaxArgs != interfaces.VariadicArgs {
		t.Fatalf("unexpected variadic arity %d..%d", sum.MinArgs, sum.MaxArgs)
	}

	for _, def := range []interfaces.FunctionDefinition{repeat, sum} {
		if err := registry.Register(def); err != nil {
			t.Fatalf("Register %s: %v", def.Name, err)
		}
	}
	invoker := NewInvoker(registry, nil)

	got, err := invoker.Invoke(context.Background(), "repeat", "ab", int64(3))
	if err != nil || got != "ababab" {
		t.Fatalf("repeat = %#v, %v", got, err)
	}
	got, err = invoker.Invoke(context.Background(), "sum", 1, 2, uint8(3))
	if err != nil || got != 6.0 {
		t.Fatalf("sum = %#v, %v", got, err)
	}

	if _, err := invoker.Invoke(context.Background(), "sum", 1); !interfaces.IsEvaluationError(err) {
		t.Fatalf("expected function error as evaluation error, got %v", err)
	}
	if _, err := invoker.Invoke(context.Background(), "repeat", 1, 2); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected argument type error, got %v", err)
	}
}

func TestDefineRejectsInvalidShapes(t *testing.T) {
	tt := map[string]any{
		"not a function": 42,
		"nil function":   (func() string)(nil),
		"no results":     func() {},
		"error only":     func() error { return nil },
		"second not err": func() (string, string) { return "", "" },
	}
	for name, fn := range tt {
		t.Run(name, func(t *testing.T) {
			if _, err := Define("bad", fn); !errors.Is(err, ErrInvalidDefinition) {
				t.Fatalf("expected ErrInvalidDefinition, got %v", err)
			}
		})
	}
}

func TestDefineNilArguments(t *testing.T) {
	def, err := Define("describe", func(value any) string { return fmt.Sprint(value) })
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	got, err := def.Function.Execute(nil)
	if err != nil || got != "<nil>" {
		t.Fatalf("Execute(nil) = %#v, %v", got, err)
	}

	def, _ = Define("length_of", func(s string) int { return len(s) })
	if _, err := def.Function.Execute(nil); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected nil to be rejected for string params, got %v", err)
	}
}

func TestDefineRejectsLossyNumericArguments(t *testing.T) {
	double, err := Define("double", func(n int) int { return n * 2 })
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	size, err := Define("size", func(n uint) uint { return n })
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	small, err := Define("small", func(n int8) int8 { return n })
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	tt := []struct {
		name string
		def  interfaces.FunctionDefinition
		arg  any
	}{
		{"fraction to int", double, 2.9},
		{"negative to uint", size, -1},
		{"overflow int8", small, 300},
		{"huge uint to int", double, uint64(math.MaxUint64)},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got, err := tc.def.Function.Execute(tc.arg); !errors.Is(err, ErrArgumentType) {
				t.Fatalf("Execute(%v) = %#v, %v; want ErrArgumentType", tc.arg, got, err)
			}
		})
	}

	got, err := double.Function.Execute(3.0)
	if err != nil || got != 6 {
		t.Fatalf("Execute(3.0) = %#v, %v", got, err)
	}
}
