package functions

import (
	"fmt"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// RegisterBuiltIns registers built-in definitions on registry. When names is
// empty every built-in is registered.
func RegisterBuiltIns(registry interfaces.FunctionRegistry, names []string) error {
	if registry == nil {
		return fmt.Errorf("functions: registry is required")
	}

	builtIns := BuiltInDefinitions()
	if len(names) == 0 {
		for _, def := range builtIns {
			if err := registry.Register(def); err != nil {
				return fmt.Errorf("functions: register built-in %q: %w", def.Name, err)
			}
		}
		return nil
	}

	available := make(map[string]interfaces.FunctionDefinition, len(builtIns))
	for _, def := range builtIns {
		available[NormalizeName(def.Name)] = def
	}

	for _, name := range names {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		def, ok := available[key]
		if !ok {
			return fmt.Errorf("functions: built-in %q not found", name)
		}
		if err := registry.Register(def); err != nil {
			return fmt.Errorf("functions: register built-in %q: %w", def.Name, err)
		}
	}
	return nil
}
