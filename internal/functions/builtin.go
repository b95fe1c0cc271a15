package functions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/goliatone/go-templatefn/internal/identity"
	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

const variadic = interfaces.VariadicArgs

// BuiltInDefinitions returns the core function catalogue shipped with go-templatefn.
func BuiltInDefinitions() []interfaces.FunctionDefinition {
	defs := make([]interfaces.FunctionDefinition, 0, 48)
	defs = append(defs, mathDefinitions()...)
	defs = append(defs, textDefinitions()...)
	defs = append(defs, collectionDefinitions()...)
	defs = append(defs, miscDefinitions()...)
	return defs
}

func pure(def interfaces.FunctionDefinition) interfaces.FunctionDefinition {
	def.Pure = true
	return def
}

func mathDefinitions() []interfaces.FunctionDefinition {
	return []interfaces.FunctionDefinition{
		pure(interfaces.FunctionDefinition{
			Name:        "add",
			Description: "Sums two or more numbers",
			Category:    "math",
			MinArgs:     2,
			MaxArgs:     variadic,
			Function:    interfaces.FunctionFunc(foldNumbers(addNumbers)),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "subtract",
			Description: "Subtracts the second number from the first",
			Category:    "math",
			MinArgs:     2,
			MaxArgs:     2,
			Function:    interfaces.FunctionFunc(foldNumbers(subtractNumbers)),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "multiply",
			Description: "Multiplies two or more numbers",
			Category:    "math",
			MinArgs:     2,
			MaxArgs:     variadic,
			Function:    interfaces.FunctionFunc(foldNumbers(multiplyNumbers)),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "divide",
			Description: "Divides the first number by the second",
			Category:    "math",
			MinArgs:     2,
			MaxArgs:     2,
			Function:    interfaces.FunctionFunc(divideFunc),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "max",
			Description: "Returns the largest number",
			Category:    "math",
			MinArgs:     1,
			MaxArgs:     variadic,
			Function:    interfaces.FunctionFunc(pickNumber(1)),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "min",
			Description: "Returns the smallest number",
			Category:    "math",
			MinArgs:     1,
			MaxArgs:     variadic,
			Function:    interfaces.FunctionFunc(pickNumber(-1)),
		}),
	}
}

func foldNumbers(op func(a, b number) (number, error)) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		numbers, err := toNumbers(args)
		if err != nil {
			return nil, err
		}
		acc := numbers[0]
		for _, n := range numbers[1:] {
			if acc, err = op(acc, n); err != nil {
				return nil, err
			}
		}
		return acc.value(), nil
	}
}

func divideFunc(args ...any) (any, error) {
	numbers, err := toNumbers(args)
	if err != nil {
		return nil, err
	}
	quotient, err := divideNumbers(numbers[0], numbers[1])
	if err != nil {
		return nil, err
	}
	return quotient.value(), nil
}

// pickNumber keeps the operand whose comparison against the current pick equals want.
func pickNumber(want int) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) == 1 {
			if list, ok := toList(args[0]); ok {
				if len(list) == 0 {
					return nil, fmt.Errorf("empty list")
				}
				args = list
			}
		}
		numbers, err := toNumbers(args)
		if err != nil {
			return nil, err
		}
		picked := numbers[0]
		for _, n := range numbers[1:] {
			if compareNumbers(n, picked) == want {
				picked = n
			}
		}
		return picked.value(), nil
	}
}

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

func miscDefinitions() []interfaces.FunctionDefinition {
	return []interfaces.FunctionDefinition{
		pure(interfaces.FunctionDefinition{
			Name:        "blank_if_null",
			Description: "Returns an empty string for nil values",
			Category:    "logic",
			MinArgs:     1,
			MaxArgs:     1,
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				if isNil(args[0]) {
					return "", nil
				}
				return args[0], nil
			}),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "default",
			Description: "Returns the fallback when the value is nil or empty",
			Category:    "logic",
			MinArgs:     2,
			MaxArgs:     2,
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				if isEmpty(args[0]) {
					return args[1], nil
				}
				return args[0], nil
			}),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "dump",
			Description: "Encodes a value as JSON",
			Category:    "debug",
			MinArgs:     1,
			MaxArgs:     1,
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				encoded, err := json.Marshal(args[0])
				if err != nil {
					return nil, fmt.Errorf("cannot dump %T: %v", args[0], err)
				}
				return string(encoded), nil
			}),
		}),
		{
			Name:        "slugify",
			Description: "Normalizes text into a URL slug",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Pure:        true,
			CacheTTL:    time.Hour,
			Params:      []interfaces.FunctionParam{{Name: "text", Type: interfaces.FunctionParamString}},
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				return slug.Normalize(args[0].(string))
			}),
		},
		{
			Name:        "markdown",
			Description: "Renders Markdown into HTML",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Pure:        true,
			CacheTTL:    time.Hour,
			Params:      []interfaces.FunctionParam{{Name: "source", Type: interfaces.FunctionParamString}},
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				var buf bytes.Buffer
				if err := markdownEngine.Convert([]byte(args[0].(string)), &buf); err != nil {
					return nil, fmt.Errorf("markdown: %v", err)
				}
				return buf.String(), nil
			}),
		},
		pure(interfaces.FunctionDefinition{
			Name:        "hash_id",
			Description: "Derives a deterministic UUID from the given key",
			Category:    "id",
			MinArgs:     1,
			MaxArgs:     1,
			Params: []interfaces.FunctionParam{{
				Name: "key",
				Type: interfaces.FunctionParamString,
				Validate: func(value any) error {
					if strings.TrimSpace(value.(string)) == "" {
						return fmt.Errorf("key must not be empty")
					}
					return nil
				},
			}},
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				return identity.UUID(args[0].(string)).String(), nil
			}),
		}),
		{
			Name:        "uuid",
			Description: "Generates a random UUID",
			Category:    "id",
			MinArgs:     0,
			MaxArgs:     0,
			Function: interfaces.FunctionFunc(func(...any) (any, error) {
				return uuid.NewString(), nil
			}),
		},
	}
}
