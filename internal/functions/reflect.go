package functions

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

var errorType = reflect.TypeFor[error]()

// Define builds a definition from an ordinary Go function. fn must return one
// value, or one value and an error. Arity bounds come from the signature and
// arguments are converted to the declared parameter types before each call.
func Define(name string, fn any) (interfaces.FunctionDefinition, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return interfaces.FunctionDefinition{}, fmt.Errorf("%w: %s: expected a function, got %T", ErrInvalidDefinition, name, fn)
	}
	rt := rv.Type()

	switch {
	case rt.NumOut() == 1 && rt.Out(0) != errorType:
	case rt.NumOut() == 2 && rt.Out(1) == errorType:
	default:
		return interfaces.FunctionDefinition{}, fmt.Errorf("%w: %s: must return a value or a value and an error", ErrInvalidDefinition, name)
	}

	def := interfaces.FunctionDefinition{
		Name:     name,
		MinArgs:  rt.NumIn(),
		MaxArgs:  rt.NumIn(),
		Function: reflectFunction{fn: rv},
	}
	if rt.IsVariadic() {
		def.MinArgs = rt.NumIn() - 1
		def.MaxArgs = interfaces.VariadicArgs
	}
	return def, nil
}

type reflectFunction struct {
	fn reflect.Value
}

func (r reflectFunction) Execute(args ...any) (any, error) {
	rt := r.fn.Type()
	in := make([]reflect.Value, len(args))
	for idx, arg := range args {
		target := paramType(rt, idx)
		if target == nil {
			return nil, fmt.Errorf("%w: expects %d arguments, got %d", ErrArity, rt.NumIn(), len(args))
		}
		value, err := convertArg(arg, target)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrArgumentType, idx+1, err)
		}
		in[idx] = value
	}

	minArgs := rt.NumIn()
	if rt.IsVariadic() {
		minArgs--
	}
	if len(in) < minArgs {
		return nil, fmt.Errorf("%w: expects at least %d arguments, got %d", ErrArity, minArgs, len(in))
	}

	out := r.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func paramType(rt reflect.Type, idx int) reflect.Type {
	last := rt.NumIn() - 1
	switch {
	case rt.IsVariadic() && idx >= last:
		return rt.In(last).Elem()
	case idx <= last:
		return rt.In(idx)
	default:
		return nil
	}
}

func convertArg(arg any, target reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch target.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", target)
	}

	value := reflect.ValueOf(arg)
	if value.Type().AssignableTo(target) {
		return value, nil
	}
	if isNumericKind(value.Kind()) && isNumericKind(target.Kind()) {
		return convertNumber(value, target)
	}
	if target.Kind() == reflect.String && value.Kind() == reflect.String {
		return value.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, target)
}

// convertNumber converts between numeric kinds only when the value survives
// the round trip and keeps its sign.
func convertNumber(value reflect.Value, target reflect.Type) (reflect.Value, error) {
	converted := value.Convert(target)
	lossy := !converted.Convert(value.Type()).Equal(value)
	switch {
	case isSigned(value.Kind()) && isUnsigned(target.Kind()):
		lossy = lossy || value.Int() < 0
	case isUnsigned(value.Kind()) && isSigned(target.Kind()):
		lossy = lossy || converted.Int() < 0
	}
	if lossy {
		return reflect.Value{}, fmt.Errorf("cannot use %v as %s without losing precision", value.Interface(), target)
	}
	return converted, nil
}

func isSigned(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumericKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
