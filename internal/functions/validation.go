package functions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template/parse"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

var namePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validator performs definition validation and argument coercion.
type Validator struct {
	schemas sync.Map // encoded ArgsSchema -> *jsonschema.Schema
}

// NewValidator returns a Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition checks the name, arity bounds, parameter declarations,
// body, and argument schema of def.
func (v *Validator) ValidateDefinition(def interfaces.FunctionDefinition) error {
	err := validation.ValidateStruct(&def,
		validation.Field(&def.Name,
			validation.Required,
			validation.Match(namePattern).Error("must be a lowercase identifier"),
		),
		validation.Field(&def.MinArgs, validation.Min(0)),
		validation.Field(&def.MaxArgs, validation.By(maxArgsRule(def.MinArgs))),
		validation.Field(&def.Params, validation.By(paramsRule)),
		validation.Field(&def.Template, validation.By(templateRule(def.Name))),
		validation.Field(&def.CacheTTL, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.Name, err)
	}

	if def.Function == nil && strings.TrimSpace(def.Template) == "" {
		return fmt.Errorf("%w: %s: function or template is required", ErrInvalidDefinition, def.Name)
	}

	if len(def.ArgsSchema) > 0 {
		if _, err := v.compiledSchema(def.ArgsSchema); err != nil {
			return fmt.Errorf("%w: %s: args schema: %v", ErrInvalidDefinition, def.Name, err)
		}
	}
	return nil
}

func maxArgsRule(minArgs int) validation.RuleFunc {
	return func(value any) error {
		maxArgs, _ := value.(int)
		if maxArgs == interfaces.VariadicArgs {
			return nil
		}
		if maxArgs < 0 {
			return validation.NewError("functions.max_args.invalid", "must be -1 or a non-negative count")
		}
		if maxArgs < minArgs {
			return validation.NewError("functions.max_args.below_min", "must not be lower than min_args")
		}
		return nil
	}
}

func paramsRule(value any) error {
	params, _ := value.([]interfaces.FunctionParam)
	seen := make(map[string]struct{}, len(params))
	for idx, param := range params {
		name := strings.TrimSpace(param.Name)
		if name == "" {
			return validation.NewError("functions.params.name_required", fmt.Sprintf("parameter %d name is required", idx))
		}
		if _, dup := seen[name]; dup {
			return validation.NewError("functions.params.duplicate", fmt.Sprintf("duplicate parameter %q", name))
		}
		seen[name] = struct{}{}

		switch param.Type {
		case "", interfaces.FunctionParamAny,
			interfaces.FunctionParamString,
			interfaces.FunctionParamInt,
			interfaces.FunctionParamFloat,
			interfaces.FunctionParamBool,
			interfaces.FunctionParamArray,
			interfaces.FunctionParamMap:
		default:
			return validation.NewError("functions.params.type", fmt.Sprintf("parameter %q has unknown type %q", name, param.Type))
		}
	}
	return nil
}

// templateRule parses template bodies without resolving function names, since the
// functions a body calls may be registered later.
func templateRule(name string) validation.RuleFunc {
	return func(value any) error {
		body, _ := value.(string)
		if strings.TrimSpace(body) == "" {
			return nil
		}
		tree := parse.New(name)
		tree.Mode = parse.SkipFuncCheck
		if _, err := tree.Parse(body, "", "", map[string]*parse.Tree{}); err != nil {
			return validation.NewError("functions.template.parse", err.Error())
		}
		return nil
	}
}

// CheckArity reports whether argc fits the definition's bounds.
func CheckArity(def interfaces.FunctionDefinition, argc int) error {
	if argc >= def.MinArgs && (def.MaxArgs == interfaces.VariadicArgs || argc <= def.MaxArgs) {
		return nil
	}
	return fmt.Errorf("%w: expects %s, got %d", ErrArity, describeArity(def.MinArgs, def.MaxArgs), argc)
}

func describeArity(minArgs, maxArgs int) string {
	plural := func(n int) string {
		if n == 1 {
			return "1 argument"
		}
		return strconv.Itoa(n) + " arguments"
	}
	switch {
	case maxArgs == interfaces.VariadicArgs:
		return "at least " + plural(minArgs)
	case minArgs == maxArgs:
		return plural(minArgs)
	default:
		return fmt.Sprintf("%d to %s", minArgs, plural(maxArgs))
	}
}

// CoerceArgs checks arity, applies positional coercions and validators, and runs
// the optional argument schema. The input slice is never modified.
func (v *Validator) CoerceArgs(def interfaces.FunctionDefinition, args []any) ([]any, error) {
	if err := CheckArity(def, len(args)); err != nil {
		return nil, err
	}

	out := make([]any, len(args))
	copy(out, args)

	for idx, param := range def.Params {
		if idx >= len(out) {
			break
		}
		coerced, err := coerceValue(param.Type, out[idx])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d (%s): %v", ErrArgumentType, idx+1, param.Name, err)
		}
		if param.Validate != nil {
			if err := param.Validate(coerced); err != nil {
				return nil, fmt.Errorf("argument %d (%s): %w", idx+1, param.Name, err)
			}
		}
		out[idx] = coerced
	}

	if len(def.ArgsSchema) > 0 {
		if err := v.validateArgs(def.ArgsSchema, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func coerceValue(paramType interfaces.FunctionParamType, value any) (any, error) {
	switch paramType {
	case "", interfaces.FunctionParamAny:
		return value, nil
	case interfaces.FunctionParamString:
		return coerceString(value)
	case interfaces.FunctionParamInt:
		return coerceInt(value)
	case interfaces.FunctionParamFloat:
		return coerceFloat(value)
	case interfaces.FunctionParamBool:
		return coerceBool(value)
	case interfaces.FunctionParamArray:
		return coerceArray(value)
	case interfaces.FunctionParamMap:
		return coerceMap(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", paramType)
	}
}

func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}

// coerceInt accepts any integral value that fits in int. Fractional floats and
// out of range values are rejected rather than truncated or wrapped.
func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8, int16, int32, int64:
		i := reflect.ValueOf(v).Int()
		if i < math.MinInt || i > math.MaxInt {
			return 0, fmt.Errorf("%d is out of int range", i)
		}
		return int(i), nil
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(v).Uint()
		if u > math.MaxInt {
			return 0, fmt.Errorf("%d is out of int range", u)
		}
		return int(u), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return coerceInt(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int", v.String())
		}
		return floatToInt(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int", v)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("%v is out of int range", f)
	}
	return int(f), nil
}

func coerceFloat(value any) (float64, error) {
	n, err := toNumber(value)
	if err != nil {
		return 0, err
	}
	return n.float(), nil
}

func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true, nil
		case "0", "false", "f", "no", "n", "off", "":
			return false, nil
		default:
			return false, fmt.Errorf("cannot convert %q to bool", v)
		}
	default:
		if n, err := toNumber(value); err == nil {
			return n.float() != 0, nil
		}
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

func coerceArray(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	default:
		if list, ok := toList(value); ok {
			return list, nil
		}
		return nil, fmt.Errorf("cannot convert %T to array", value)
	}
}

func coerceMap(value any) (map[string]any, error) {
	switch v := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot convert %T to map", value)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

// toList converts slices and arrays of any element type into []any.
func toList(value any) ([]any, bool) {
	if list, ok := value.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// evaluationCause extracts the message to surface to template authors, hiding the
// package prefix carried by sentinel errors.
func evaluationCause(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrArity, ErrArgumentType, ErrArgumentSchema, ErrUnknownFunction} {
		if errors.Is(err, sentinel) {
			return strings.TrimPrefix(msg, "functions: ")
		}
	}
	return msg
}
