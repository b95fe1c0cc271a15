package functions

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

func collectionDefinitions() []interfaces.FunctionDefinition {
	return []interfaces.FunctionDefinition{
		pure(single("first", "Returns the first item or character", func(items []any) (any, error) {
			return at(items, 0), nil
		})),
		pure(single("second", "Returns the second item or character", func(items []any) (any, error) {
			return at(items, 1), nil
		})),
		pure(single("last", "Returns the last item or character", func(items []any) (any, error) {
			return at(items, len(items)-1), nil
		})),
		pure(single("rest", "Returns every item but the first", func(items []any) (any, error) {
			if len(items) == 0 {
				return []any{}, nil
			}
			return slices.Clone(items[1:]), nil
		})),
		pure(single("butlast", "Returns every item but the last", func(items []any) (any, error) {
			if len(items) == 0 {
				return []any{}, nil
			}
			return slices.Clone(items[:len(items)-1]), nil
		})),
		pure(single("sort", "Sorts numbers or strings in ascending order", func(items []any) (any, error) {
			return sortItems(items, false)
		})),
		pure(single("sort_descending", "Sorts numbers or strings in descending order", func(items []any) (any, error) {
			return sortItems(items, true)
		})),
		pure(interfaces.FunctionDefinition{
			Name:        "nth",
			Description: "Returns the item at a zero based index, or the optional default",
			Category:    "collection",
			MinArgs:     2,
			MaxArgs:     3,
			Params: []interfaces.FunctionParam{
				{Name: "collection", Type: interfaces.FunctionParamAny},
				{Name: "index", Type: interfaces.FunctionParamInt},
			},
			Function: interfaces.FunctionFunc(nth),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "length",
			Description: "Counts characters, items, or entries",
			Category:    "collection",
			MinArgs:     1,
			MaxArgs:     1,
			Function:    interfaces.FunctionFunc(length),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "contains",
			Description: "Reports whether a string, list, or map contains the value",
			Category:    "collection",
			MinArgs:     2,
			MaxArgs:     2,
			Function:    interfaces.FunctionFunc(contains),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "index_of",
			Description: "Returns the zero based position of the value, or -1",
			Category:    "collection",
			MinArgs:     2,
			MaxArgs:     2,
			Function:    interfaces.FunctionFunc(indexOf),
		}),
	}
}

// single builds a one argument definition over strings (as characters) and lists.
func single(name, description string, fn func(items []any) (any, error)) interfaces.FunctionDefinition {
	return interfaces.FunctionDefinition{
		Name:        name,
		Description: description,
		Category:    "collection",
		MinArgs:     1,
		MaxArgs:     1,
		Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
			if text, ok := args[0].(string); ok {
				result, err := fn(characters(text))
				if err != nil {
					return nil, err
				}
				return joinCharacters(result), nil
			}
			items, err := itemsOf(args[0])
			if err != nil {
				return nil, err
			}
			return fn(items)
		}),
	}
}

func itemsOf(value any) ([]any, error) {
	if isNil(value) {
		return []any{}, nil
	}
	items, ok := toList(value)
	if !ok {
		return nil, fmt.Errorf("expected a list or string, got %T", value)
	}
	return items, nil
}

func characters(text string) []any {
	out := make([]any, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

// joinCharacters folds character slices back into strings.
func joinCharacters(value any) any {
	items, ok := value.([]any)
	if !ok {
		return value
	}
	var builder strings.Builder
	for _, item := range items {
		s, _ := item.(string)
		builder.WriteString(s)
	}
	return builder.String()
}

func at(items []any, idx int) any {
	if idx < 0 || idx >= len(items) {
		return nil
	}
	return items[idx]
}

func sortItems(items []any, descending bool) ([]any, error) {
	out := slices.Clone(items)
	if len(out) == 0 {
		return out, nil
	}

	var compare func(a, b any) int
	switch out[0].(type) {
	case string:
		for _, item := range out {
			if _, ok := item.(string); !ok {
				return nil, fmt.Errorf("cannot sort mixed %T and %T", out[0], item)
			}
		}
		compare = func(a, b any) int { return cmp.Compare(a.(string), b.(string)) }
	default:
		numbers := make(map[int]number, len(out))
		for idx, item := range out {
			n, err := toNumber(item)
			if err != nil {
				return nil, fmt.Errorf("cannot sort: %w", err)
			}
			numbers[idx] = n
		}
		indexed := make([]int, len(out))
		for i := range indexed {
			indexed[i] = i
		}
		slices.SortStableFunc(indexed, func(a, b int) int {
			if descending {
				return compareNumbers(numbers[b], numbers[a])
			}
			return compareNumbers(numbers[a], numbers[b])
		})
		sorted := make([]any, len(out))
		for i, idx := range indexed {
			sorted[i] = out[idx]
		}
		return sorted, nil
	}

	slices.SortStableFunc(out, func(a, b any) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out, nil
}

func nth(args ...any) (any, error) {
	idx := args[1].(int)
	var items []any
	if text, ok := args[0].(string); ok {
		items = characters(text)
	} else {
		var err error
		if items, err = itemsOf(args[0]); err != nil {
			return nil, err
		}
	}
	if idx >= 0 && idx < len(items) {
		return items[idx], nil
	}
	if len(args) > 2 {
		return args[2], nil
	}
	return nil, fmt.Errorf("index %d out of range for %d items", idx, len(items))
}

func length(args ...any) (any, error) {
	value := args[0]
	if isNil(value) {
		return 0, nil
	}
	if text, ok := value.(string); ok {
		return utf8.RuneCountInString(text), nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), nil
	default:
		return nil, fmt.Errorf("cannot measure %T", value)
	}
}

func contains(args ...any) (any, error) {
	idx, err := indexOf(args...)
	if err == nil {
		return idx.(int) >= 0, nil
	}

	rv := reflect.ValueOf(args[0])
	if rv.Kind() != reflect.Map {
		return nil, err
	}
	key := reflect.ValueOf(args[1])
	if !key.IsValid() || !key.Type().AssignableTo(rv.Type().Key()) {
		return false, nil
	}
	return rv.MapIndex(key).IsValid(), nil
}

func indexOf(args ...any) (any, error) {
	haystack, needle := args[0], args[1]
	if text, ok := haystack.(string); ok {
		sub, err := coerceString(needle)
		if err != nil {
			return nil, err
		}
		pos := strings.Index(text, sub)
		if pos < 0 {
			return -1, nil
		}
		return utf8.RuneCountInString(text[:pos]), nil
	}

	items, ok := toList(haystack)
	if !ok {
		return nil, fmt.Errorf("expected a list or string, got %T", haystack)
	}
	for idx, item := range items {
		if equalValues(item, needle) {
			return idx, nil
		}
	}
	return -1, nil
}

// equalValues compares numbers by value across Go numeric types and everything
// else structurally.
func equalValues(a, b any) bool {
	if na, err := toNumber(a); err == nil && !isString(a) {
		if nb, err := toNumber(b); err == nil && !isString(b) {
			return compareNumbers(na, nb) == 0
		}
	}
	return reflect.DeepEqual(a, b)
}

func isString(value any) bool {
	_, ok := value.(string)
	return ok
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isEmpty(value any) bool {
	if isNil(value) {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}
