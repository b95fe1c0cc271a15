package functions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const argsSchemaResource = "args.schema.json"

func (v *Validator) compiledSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	key := string(encoded)
	if cached, ok := v.schemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(argsSchemaResource, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(argsSchemaResource)
	if err != nil {
		return nil, err
	}
	v.schemas.Store(key, compiled)
	return compiled, nil
}

// validateArgs checks the argument array against schema. Arguments are normalised
// through JSON so Go numeric and struct types validate the way JSON values do.
func (v *Validator) validateArgs(schema map[string]any, args []any) error {
	compiled, err := v.compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArgumentSchema, err)
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: arguments are not JSON encodable: %v", ErrArgumentSchema, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("%w: %v", ErrArgumentSchema, err)
	}

	if err := compiled.Validate(document); err != nil {
		return fmt.Errorf("%w: %s", ErrArgumentSchema, describeSchemaError(err))
	}
	return nil
}

func describeSchemaError(err error) string {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "/"
			}
			issues = append(issues, fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(issues, "; ")
}
