package functions

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

func textDefinitions() []interfaces.FunctionDefinition {
	text := []interfaces.FunctionParam{{Name: "text", Type: interfaces.FunctionParamString}}

	return []interfaces.FunctionDefinition{
		pure(interfaces.FunctionDefinition{
			Name:        "concat",
			Description: "Joins every argument as text",
			Category:    "text",
			MinArgs:     0,
			MaxArgs:     variadic,
			Function:    interfaces.FunctionFunc(concat),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "lower",
			Description: "Lower-cases text",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Params:      text,
			Function:    stringFunc(strings.ToLower),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "upper",
			Description: "Upper-cases text",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Params:      text,
			Function:    stringFunc(strings.ToUpper),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "capitalize",
			Description: "Upper-cases the first letter of text",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Params:      text,
			Function:    stringFunc(capitalize),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "trim",
			Description: "Removes leading and trailing whitespace",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Params:      text,
			Function:    stringFunc(strings.TrimSpace),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "nl2br",
			Description: "Replaces newlines with <br />",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Params:      text,
			Function:    stringFunc(nl2br),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "to_string",
			Description: "Formats any value as text",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     1,
			Params:      text,
			Function:    stringFunc(func(s string) string { return s }),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "center",
			Description: "Centers text within width using an optional pad string",
			Category:    "text",
			MinArgs:     2,
			MaxArgs:     3,
			Params: []interfaces.FunctionParam{
				{Name: "text", Type: interfaces.FunctionParamString},
				{Name: "width", Type: interfaces.FunctionParamInt, Validate: padWidth},
				{Name: "pad", Type: interfaces.FunctionParamString, Validate: notEmptyString},
			},
			Function: interfaces.FunctionFunc(center),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "format",
			Description: "Formats arguments with a printf style pattern",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     variadic,
			Params:      []interfaces.FunctionParam{{Name: "pattern", Type: interfaces.FunctionParamString}},
			Function: interfaces.FunctionFunc(func(args ...any) (any, error) {
				return fmt.Sprintf(args[0].(string), args[1:]...), nil
			}),
		}),
		pure(interfaces.FunctionDefinition{
			Name:        "join",
			Description: "Joins list items with an optional separator",
			Category:    "text",
			MinArgs:     1,
			MaxArgs:     2,
			Params: []interfaces.FunctionParam{
				{Name: "list", Type: interfaces.FunctionParamArray},
				{Name: "separator", Type: interfaces.FunctionParamString},
			},
			Function: interfaces.FunctionFunc(join),
		}),
	}
}

func stringFunc(fn func(string) string) interfaces.FunctionFunc {
	return func(args ...any) (any, error) {
		return fn(args[0].(string)), nil
	}
}

func concat(args ...any) (any, error) {
	var builder strings.Builder
	for _, arg := range args {
		if isNil(arg) {
			continue
		}
		text, _ := coerceString(arg)
		builder.WriteString(text)
	}
	return builder.String(), nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func nl2br(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br />\n")
}

func center(args ...any) (any, error) {
	text := args[0].(string)
	width := args[1].(int)
	pad := " "
	if len(args) > 2 {
		pad = args[2].(string)
	}

	missing := width - utf8.RuneCountInString(text)
	if missing <= 0 {
		return text, nil
	}
	left := missing / 2
	right := missing - left
	return padding(pad, left) + text + padding(pad, right), nil
}

// padding repeats pad until it covers n runes, truncating the last repetition.
func padding(pad string, n int) string {
	runes := []rune(strings.Repeat(pad, n/utf8.RuneCountInString(pad)+1))
	return string(runes[:n])
}

func join(args ...any) (any, error) {
	list := args[0].([]any)
	separator := ""
	if len(args) > 1 {
		separator = args[1].(string)
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i], _ = coerceString(item)
	}
	return strings.Join(parts, separator), nil
}

// MaxPadWidth bounds the width accepted by center.
const MaxPadWidth = 10000

func padWidth(value any) error {
	n, _ := value.(int)
	return validation.Validate(n, validation.Min(0), validation.Max(MaxPadWidth))
}

func notEmptyString(value any) error {
	if s, _ := value.(string); s == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}
