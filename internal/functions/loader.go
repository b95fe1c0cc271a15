package functions

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// manifest is the front matter block of a template-defined function file.
type manifest struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	MinArgs     int            `yaml:"min_args"`
	MaxArgs     *int           `yaml:"max_args"`
	Pure        bool           `yaml:"pure"`
	CacheTTL    string         `yaml:"cache_ttl"`
	Params      []manifestArg  `yaml:"params"`
	ArgsSchema  map[string]any `yaml:"args_schema"`
}

type manifestArg struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadDefinition parses a template-defined function. The YAML front matter holds
// the metadata and the remaining body is the text/template source. A missing
// max_args defaults to min_args.
func LoadDefinition(source []byte) (interfaces.FunctionDefinition, error) {
	var meta manifest
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FunctionDefinition{}, fmt.Errorf("functions: parse manifest: %w", err)
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return interfaces.FunctionDefinition{}, fmt.Errorf("%w: manifest name is required", ErrInvalidDefinition)
	}

	def := interfaces.FunctionDefinition{
		Name:        name,
		Description: strings.TrimSpace(meta.Description),
		Category:    strings.TrimSpace(meta.Category),
		MinArgs:     meta.MinArgs,
		MaxArgs:     meta.MinArgs,
		Pure:        meta.Pure,
		ArgsSchema:  normalizeYAMLMap(meta.ArgsSchema),
		Template:    strings.Trim(string(body), "\r\n"),
	}
	if meta.MaxArgs != nil {
		def.MaxArgs = *meta.MaxArgs
	}
	if ttl := strings.TrimSpace(meta.CacheTTL); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return interfaces.FunctionDefinition{}, fmt.Errorf("%w: %s: cache_ttl: %v", ErrInvalidDefinition, name, err)
		}
		def.CacheTTL = parsed
	}
	for _, param := range meta.Params {
		def.Params = append(def.Params, interfaces.FunctionParam{
			Name: strings.TrimSpace(param.Name),
			Type: interfaces.FunctionParamType(strings.ToLower(strings.TrimSpace(param.Type))),
		})
	}
	return def, nil
}

// LoadFS reads every file in fsys matching pattern (path.Match syntax, applied to
// the base name) and parses it with LoadDefinition. Results follow WalkDir order.
func LoadFS(fsys fs.FS, pattern string) ([]interfaces.FunctionDefinition, error) {
	if pattern == "" {
		pattern = "*.tmpl"
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("functions: invalid manifest pattern %q: %w", pattern, err)
	}

	var defs []interfaces.FunctionDefinition
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if ok, _ := path.Match(pattern, entry.Name()); !ok {
			return nil
		}
		source, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		def, err := LoadDefinition(source)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// RegisterFS loads manifests from fsys and registers them on registry.
func RegisterFS(registry interfaces.FunctionRegistry, fsys fs.FS, pattern string) (int, error) {
	defs, err := LoadFS(fsys, pattern)
	if err != nil {
		return 0, err
	}
	for idx, def := range defs {
		if err := registry.Register(def); err != nil {
			return idx, fmt.Errorf("functions: register %q: %w", def.Name, err)
		}
	}
	return len(defs), nil
}

// normalizeYAMLMap converts the map[any]any values produced by YAML decoding into
// map[string]any so schemas can be JSON encoded.
func normalizeYAMLMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalizeYAMLValue(value)
	}
	return out
}

func normalizeYAMLValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeYAMLMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeYAMLValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAMLValue(item)
		}
		return out
	default:
		return value
	}
}
