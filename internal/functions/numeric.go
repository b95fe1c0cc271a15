package functions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// number keeps integer arithmetic exact until a float operand shows up.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func intNumber(i int64) number     { return number{i: i} }
func floatNumber(f float64) number { return number{f: f, isFloat: true} }

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n number) value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

func toNumber(value any) (number, error) {
	switch v := value.(type) {
	case int:
		return intNumber(int64(v)), nil
	case int8:
		return intNumber(int64(v)), nil
	case int16:
		return intNumber(int64(v)), nil
	case int32:
		return intNumber(int64(v)), nil
	case int64:
		return intNumber(v), nil
	case uint:
		return uintNumber(uint64(v))
	case uint8:
		return intNumber(int64(v)), nil
	case uint16:
		return intNumber(int64(v)), nil
	case uint32:
		return intNumber(int64(v)), nil
	case uint64:
		return uintNumber(v)
	case float32:
		return floatNumber(float64(v)), nil
	case float64:
		return floatNumber(v), nil
	case json.Number:
		return parseNumber(v.String())
	case string:
		return parseNumber(v)
	default:
		return number{}, fmt.Errorf("cannot use %T as a number", value)
	}
}

func uintNumber(u uint64) (number, error) {
	if u > math.MaxInt64 {
		return floatNumber(float64(u)), nil
	}
	return intNumber(int64(u)), nil
}

func parseNumber(raw string) (number, error) {
	trimmed := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return intNumber(i), nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return floatNumber(f), nil
	}
	return number{}, fmt.Errorf("cannot use %q as a number", raw)
}

func toNumbers(args []any) ([]number, error) {
	out := make([]number, len(args))
	for idx, arg := range args {
		n, err := toNumber(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx+1, err)
		}
		out[idx] = n
	}
	return out, nil
}

var errIntegerOverflow = errors.New("integer overflow")

func addNumbers(a, b number) (number, error) {
	if a.isFloat || b.isFloat {
		return floatNumber(a.float() + b.float()), nil
	}
	sum := a.i + b.i
	if (a.i^sum)&(b.i^sum) < 0 {
		return number{}, errIntegerOverflow
	}
	return intNumber(sum), nil
}

func subtractNumbers(a, b number) (number, error) {
	if a.isFloat || b.isFloat {
		return floatNumber(a.float() - b.float()), nil
	}
	diff := a.i - b.i
	if (a.i^b.i)&(a.i^diff) < 0 {
		return number{}, errIntegerOverflow
	}
	return intNumber(diff), nil
}

func multiplyNumbers(a, b number) (number, error) {
	if a.isFloat || b.isFloat {
		return floatNumber(a.float() * b.float()), nil
	}
	if a.i == 0 || b.i == 0 {
		return intNumber(0), nil
	}
	product := a.i * b.i
	if product/b.i != a.i || (a.i == -1 && b.i == math.MinInt64) || (b.i == -1 && a.i == math.MinInt64) {
		return number{}, errIntegerOverflow
	}
	return intNumber(product), nil
}

// divideNumbers returns an integer when both operands are integers and the
// division is exact, otherwise a float.
func divideNumbers(a, b number) (number, error) {
	if b.float() == 0 {
		return number{}, fmt.Errorf("division by zero")
	}
	if !a.isFloat && !b.isFloat {
		if a.i == math.MinInt64 && b.i == -1 {
			return number{}, errIntegerOverflow
		}
		if a.i%b.i == 0 {
			return intNumber(a.i / b.i), nil
		}
	}
	return floatNumber(a.float() / b.float()), nil
}

func compareNumbers(a, b number) int {
	if !a.isFloat && !b.isFloat {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	af, bf := a.float(), b.float()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}
