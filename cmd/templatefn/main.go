package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/goliatone/go-templatefn"
)

var moduleBuilder = templatefn.New

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("templatefn: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("templatefn", flag.ContinueOnError)
	manifests := fs.String("manifests", "", "Directory of template-defined function manifests")
	pattern := fs.String("pattern", "*.tmpl", "Glob pattern applied to manifest file names")
	builtIns := fs.String("builtins", "", "Comma separated built-ins to load (defaults to all)")
	driver := fs.String("storage-driver", "", "Function storage driver: memory, sqlite3, or postgres")
	dsn := fs.String("dsn", "", "Storage DSN for sql drivers")
	logLevel := fs.String("log-level", "", "Enable go-logger at the given level")
	logFormat := fs.String("log-format", "console", "go-logger output format: json, console, or pretty")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := templatefn.DefaultConfig()
	cfg.Functions.ManifestDir = strings.TrimSpace(*manifests)
	cfg.Functions.ManifestPattern = *pattern
	cfg.Functions.BuiltIns = splitList(*builtIns)
	cfg.Storage.Driver = *driver
	cfg.Storage.DSN = *dsn
	cfg.Commands.Enabled = true
	if level := strings.TrimSpace(*logLevel); level != "" {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Level = level
		cfg.Logging.Format = *logFormat
	}

	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("expected a subcommand: list, call, or render")
	}

	ctx := context.Background()
	switch rest[0] {
	case "list":
		return runList(module, stdout)
	case "call":
		return runCall(ctx, module, rest[1:], stdout)
	case "render":
		return runRender(module, rest[1:], stdout)
	default:
		return fmt.Errorf("unknown subcommand %q", rest[0])
	}
}

func runList(module *templatefn.Module, stdout io.Writer) error {
	for _, def := range module.Definitions() {
		arity := fmt.Sprintf("%d..%d", def.MinArgs, def.MaxArgs)
		if def.MaxArgs == templatefn.VariadicArgs {
			arity = fmt.Sprintf("%d..n", def.MinArgs)
		}
		fmt.Fprintf(stdout, "%-16s %-6s %s\n", def.Name, arity, def.Description)
	}
	return nil
}

// runCall invokes a function through the invoke command handler. Arguments are
// decoded as JSON when possible and passed as strings otherwise.
func runCall(ctx context.Context, module *templatefn.Module, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("call: function name is required")
	}
	handlers := module.Commands()
	if handlers == nil || handlers.Invoke == nil {
		return errors.New("call: command handlers are not configured")
	}

	var result any
	cmd := templatefn.InvokeFunctionCommand{
		Name:     args[0],
		Args:     decodeArgs(args[1:]),
		OnResult: func(_ string, value any) { result = value },
	}
	if err := handlers.Invoke.Execute(ctx, cmd); err != nil {
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintln(stdout, result)
		return nil
	}
	fmt.Fprintln(stdout, string(encoded))
	return nil
}

func runRender(module *templatefn.Module, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("render: template file is required")
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var data any
	if len(args) > 1 {
		decoder := json.NewDecoder(strings.NewReader(args[1]))
		decoder.UseNumber()
		if err := decoder.Decode(&data); err != nil {
			return fmt.Errorf("render: decode data: %w", err)
		}
	}

	tmpl, err := template.New(args[0]).Funcs(module.FuncMap()).Parse(string(source))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	_, err = stdout.Write(buf.Bytes())
	return err
}

func decodeArgs(raw []string) []any {
	out := make([]any, len(raw))
	for i, arg := range raw {
		decoder := json.NewDecoder(strings.NewReader(arg))
		decoder.UseNumber()
		var value any
		if err := decoder.Decode(&value); err != nil || decoder.More() {
			out[i] = arg
			continue
		}
		out[i] = value
	}
	return out
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
