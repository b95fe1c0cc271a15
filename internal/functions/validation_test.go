package functions

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

func TestValidator_ValidateDefinition(t *testing.T) {
	validator := NewValidator()

	tt := []struct {
		name    string
		def     interfaces.FunctionDefinition
		wantErr bool
	}{
		{
			name: "function body",
			def:  interfaces.FunctionDefinition{Name: "ok", MaxArgs: variadic, Function: constant(1)},
		},
		{
			name: "template body",
			def:  interfaces.FunctionDefinition{Name: "tmpl", Template: "{{ index .Args 0 | undefined_yet }}", MinArgs: 1, MaxArgs: 1},
		},
		{
			name:    "missing body",
			def:     interfaces.FunctionDefinition{Name: "empty"},
			wantErr: true,
		},
		{
			name:    "invalid name",
			def:     interfaces.FunctionDefinition{Name: "bad-name", Function: constant(1)},
			wantErr: true,
		},
		{
			name:    "max below min",
			def:     interfaces.FunctionDefinition{Name: "arity", MinArgs: 2, MaxArgs: 1, Function: constant(1)},
			wantErr: true,
		},
		{
			name:    "negative min",
			def:     interfaces.FunctionDefinition{Name: "arity", MinArgs: -1, MaxArgs: 1, Function: constant(1)},
			wantErr: true,
		},
		{
			name: "duplicate params",
			def: interfaces.FunctionDefinition{Name: "params", MaxArgs: 2, Function: constant(1), Params: []interfaces.FunctionParam{
				{Name: "a", Type: interfaces.FunctionParamInt},
				{Name: "a", Type: interfaces.FunctionParamInt},
			}},
			wantErr: true,
		},
		{
			name: "unknown param type",
			def: interfaces.FunctionDefinition{Name: "params", MaxArgs: 1, Function: constant(1), Params: []interfaces.FunctionParam{
				{Name: "a", Type: "decimal"},
			}},
			wantErr: true,
		},
		{
			name:    "broken template",
			def:     interfaces.FunctionDefinition{Name: "tmpl", Template: "{{ if }"},
			wantErr: true,
		},
		{
			name:    "broken schema",
			def:     interfaces.FunctionDefinition{Name: "schema", Function: constant(1), ArgsSchema: map[string]any{"type": 12}},
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ValidateDefinition(tc.def)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDefinition) {
					t.Fatalf("expected ErrInvalidDefinition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidator_CoerceArgs(t *testing.T) {
	validator := NewValidator()
	def := interfaces.FunctionDefinition{
		Name:    "coerce",
		MinArgs: 1,
		MaxArgs: variadic,
		Params: []interfaces.FunctionParam{
			{Name: "count", Type: interfaces.FunctionParamInt},
			{Name: "enabled", Type: interfaces.FunctionParamBool},
			{Name: "tags", Type: interfaces.FunctionParamArray},
			{Name: "ratio", Type: interfaces.FunctionParamFloat},
		},
	}

	args := []any{"42", "yes", "a, b,,c", 3}
	got, err := validator.CoerceArgs(def, args)
	if err != nil {
		t.Fatalf("CoerceArgs() error = %v", err)
	}
	if got[0] != 42 || got[1] != true || got[3] != 3.0 {
		t.Fatalf("unexpected coercion %#v", got)
	}
	if tags := got[2].([]any); len(tags) != 3 || tags[2] != "c" {
		t.Fatalf("unexpected array coercion %#v", got[2])
	}
	if args[0] != "42" {
		t.Fatal("CoerceArgs must not modify its input")
	}

	if _, err := validator.CoerceArgs(def, []any{"many"}); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected ErrArgumentType, got %v", err)
	}
	if _, err := validator.CoerceArgs(def, nil); !errors.Is(err, ErrArity) {
		t.Fatalf("expected ErrArity, got %v", err)
	}
}

func TestCoerceInt(t *testing.T) {
	tt := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{name: "int", in: 7, want: 7},
		{name: "int64", in: int64(-3), want: -3},
		{name: "uint8", in: uint8(200), want: 200},
		{name: "integral float", in: 2.0, want: 2},
		{name: "float32", in: float32(4), want: 4},
		{name: "json integer", in: json.Number("3"), want: 3},
		{name: "json integral float", in: json.Number("5.0"), want: 5},
		{name: "string", in: " 12 ", want: 12},
		{name: "fractional float", in: 1.9, wantErr: true},
		{name: "negative fraction", in: -0.5, wantErr: true},
		{name: "nan", in: math.NaN(), wantErr: true},
		{name: "float out of range", in: 1e19, wantErr: true},
		{name: "uint64 max", in: uint64(math.MaxUint64), wantErr: true},
		{name: "json fraction", in: json.Number("2.5"), wantErr: true},
		{name: "text", in: "two", wantErr: true},
		{name: "bool", in: true, wantErr: true},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := coerceInt(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("coerceInt(%v) expected error, got %d", tc.in, got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("coerceInt(%v) = %d, %v; want %d", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestValidator_CustomValidatorRuns(t *testing.T) {
	sentinel := errors.New("too large")
	def := interfaces.FunctionDefinition{
		Name:    "limit",
		MinArgs: 1,
		MaxArgs: 1,
		Params: []interfaces.FunctionParam{{
			Name: "n",
			Type: interfaces.FunctionParamInt,
			Validate: func(value any) error {
				if value.(int) > 10 {
					return sentinel
				}
				return nil
			},
		}},
	}
	if _, err := NewValidator().CoerceArgs(def, []any{11}); !errors.Is(err, sentinel) {
		t.Fatalf("expected custom validator error, got %v", err)
	}
}

func TestValidator_ArgsSchema(t *testing.T) {
	validator := NewValidator()
	def := interfaces.FunctionDefinition{
		Name:    "schema",
		MinArgs: 1,
		MaxArgs: 2,
		ArgsSchema: map[string]any{
			"type":        "array",
			"prefixItems": []any{map[string]any{"type": "string", "minLength": 1}, map[string]any{"type": "integer"}},
		},
	}

	if _, err := validator.CoerceArgs(def, []any{"ok", 3}); err != nil {
		t.Fatalf("expected valid args, got %v", err)
	}
	_, err := validator.CoerceArgs(def, []any{"ok", 1.5})
	if !errors.Is(err, ErrArgumentSchema) {
		t.Fatalf("expected ErrArgumentSchema, got %v", err)
	}
	if !strings.Contains(err.Error(), "/1") {
		t.Fatalf("expected instance location in message, got %v", err)
	}
}

func TestCheckArityMessages(t *testing.T) {
	tt := []struct {
		min, max, argc int
		want           string
	}{
		{2, 2, 1, "expects 2 arguments, got 1"},
		{1, 1, 0, "expects 1 argument, got 0"},
		{1, variadic, 0, "expects at least 1 argument, got 0"},
		{2, 3, 4, "expects 2 to 3 arguments, got 4"},
	}
	for _, tc := range tt {
		err := CheckArity(interfaces.FunctionDefinition{MinArgs: tc.min, MaxArgs: tc.max}, tc.argc)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("CheckArity(%d,%d,%d) = %v, want %q", tc.min, tc.max, tc.argc, err, tc.want)
		}
	}
	if err := CheckArity(interfaces.FunctionDefinition{MinArgs: 0, MaxArgs: variadic}, 9); err != nil {
		t.Fatalf("unexpected error for variadic call: %v", err)
	}
}
