// Package cli implements the credport command: import a vendor CSV file,
// report the outcome and optionally re-export it in another vendor format.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/JonMunkholm/credport/internal/catalog"
	"github.com/JonMunkholm/credport/internal/core"
	_ "github.com/JonMunkholm/credport/internal/core/formats" // Register all formats
	"github.com/JonMunkholm/credport/internal/logging"
)

// Options holds the parsed command line.
type Options struct {
	In         string
	Reference  string
	Format     string
	Generation string
	Catalog    string
	Flatten    bool
	Export     string
	Out        string
	JSON       bool
	LogLevel   string
}

// Env is what the command reads from and writes to.
type Env struct {
	Fs     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
	Getenv func(string) string // Flag defaults; nil reads nothing
}

func (e Env) env(key, fallback string) string {
	if e.Getenv != nil {
		if v := e.Getenv(key); v != "" {
			return v
		}
	}
	return fallback
}

// Run parses args and executes the command.
func Run(ctx context.Context, args []string, env Env) error {
	fs := flag.NewFlagSet("credport", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)

	var opt Options
	fs.StringVar(&opt.In, "in", "-", "CSV file to import, - for stdin")
	fs.StringVar(&opt.Reference, "ref", "", "import reference, names the root folder (default import-<timestamp>)")
	fs.StringVar(&opt.Format, "format", "", "vendor format key; detected from the header when empty")
	fs.StringVar(&opt.Generation, "generation", env.env("IMPORT_SCHEMA_GENERATION", "legacy"), "resource type schema generation: legacy or current")
	fs.StringVar(&opt.Catalog, "catalog", env.env("IMPORT_CATALOG_PATH", ""), "resource type catalog file (YAML or JSON)")
	fs.BoolVar(&opt.Flatten, "flatten", false, "place every resource in the root folder")
	fs.StringVar(&opt.Export, "export", "", "re-export imported resources in this vendor format")
	fs.StringVar(&opt.Out, "out", "-", "export destination, - for stdout")
	fs.BoolVar(&opt.JSON, "json", false, "print the import result as JSON")
	fs.StringVar(&opt.LogLevel, "log-level", env.env("LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return execute(ctx, opt, env)
}

func execute(ctx context.Context, opt Options, env Env) error {
	if env.Now == nil {
		env.Now = time.Now
	}

	generation, err := core.ParseSchemaGeneration(opt.Generation)
	if err != nil {
		return err
	}
	types, err := catalog.Load(env.Fs, opt.Catalog)
	if err != nil {
		return err
	}
	payload, err := readInput(env, opt.In)
	if err != nil {
		return err
	}
	if opt.Reference == "" {
		opt.Reference = core.DefaultReference(env.Now())
	}

	svc := core.NewService(core.ServiceConfig{
		Catalog:        types,
		Generation:     generation,
		FlattenFolders: opt.Flatten,
		Logger:         logging.New(env.Stderr, opt.LogLevel, "text"),
	})

	result, err := svc.Import(ctx, core.ImportRequest{
		Reference: opt.Reference,
		Format:    opt.Format,
		Payload:   payload,
	})
	if err != nil {
		msg := core.MapError(err)
		return fmt.Errorf("%s (%s): %w", msg.Message, msg.Code, err)
	}

	if opt.JSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if opt.Export == "" || opt.Out != "-" {
		printSummary(env.Stdout, result)
	}

	if opt.Export == "" {
		return nil
	}
	data, err := svc.Export(ctx, opt.Export, result.Resources)
	if err != nil {
		return err
	}
	return writeOutput(env, opt.Out, data)
}

func readInput(env Env, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(env.Stdin)
	}
	data, err := afero.ReadFile(env.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(env Env, path string, data []byte) error {
	if path == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}
	if err := afero.WriteFile(env.Fs, path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, res *core.ImportResult) {
	fmt.Fprintf(w, "%s: imported %d of %d rows as %s into %q (%d folders)\n",
		res.SessionID, res.Imported(), res.RowsAttempted, res.Format, res.Reference, len(res.Folders))

	for _, e := range res.ResourceErrors {
		fmt.Fprintf(w, "  line %d: %v [%s]\n", e.Line, e.Err, core.MapError(e.Err).Code)
	}
	for _, e := range res.FolderErrors {
		fmt.Fprintf(w, "  folder %s: %v\n", e.Path, e.Err)
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "  line %d: %s: %s\n", wn.Line, wn.Kind, wn.Message)
	}
}
