// Package main provides the CLI entrypoint for erp-migrator.
//
// erp-migrator moves data from legacy commercial systems into a modern ERP:
//   - Parses database backups (SQL dumps, CSV) into a source schema
//   - Introspects the ERP API's OpenAPI spec into a target schema
//   - Suggests table and field mappings by fuzzy matching
//   - Lets humans review the mapping set as a JSON export
//   - Validates mappings and submits shaped payload batches
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"erp-migrator/internal/client"
	"erp-migrator/internal/config"
	"erp-migrator/internal/introspect"
	"erp-migrator/internal/mapper"
	"erp-migrator/internal/parser"
	"erp-migrator/internal/resolve"
	"erp-migrator/internal/schema"
	"erp-migrator/internal/transform"
	"erp-migrator/internal/validate"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "erp-migrator: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 {
		printUsage()
		return nil
	}

	switch args[1] {
	case "discover":
		return runDiscover(args[2:])
	case "sync":
		return runSync(args[2:])
	case "automap":
		return runAutomap(args[2:])
	case "validate":
		return runValidate(args[2:])
	case "export":
		return runExport(args[2:])
	case "import":
		return runImport(args[2:])
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func printUsage() {
	fmt.Print(`erp-migrator - legacy database to ERP migration tool

Usage:
  erp-migrator discover --backup <file>
  erp-migrator sync     [--config <path>]
  erp-migrator automap  --backup <file> --out <mapping.json> [--config <path>]
  erp-migrator validate --backup <file> --mapping <mapping.json> [--config <path>]
  erp-migrator export   --mapping <mapping.json> --out <file>
  erp-migrator import   --backup <file> --mapping <mapping.json> [--dry-run] [--config <path>]

Commands:
  discover  Parse a backup file and print the discovered schema
  sync      Fetch the ERP API schema and refresh the local cache
  automap   Build a draft mapping set and export it for review
  validate  Check a mapping set and promote clean tables to validated
  export    Re-export a mapping set as normalized JSON
  import    Shape rows through a validated mapping and submit them
  help      Show this help message
`)
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// signalContext cancels on interrupt so a long import stops between
// records instead of mid-request.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runDiscover(args []string) error {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	backup := fs.String("backup", "", "path to the backup file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *backup == "" {
		return fmt.Errorf("missing required flag: --backup")
	}

	p, err := parser.Open(*backup)
	if err != nil {
		return err
	}
	src, err := p.Discover()
	if err != nil {
		return err
	}

	fmt.Printf("Database type: %s\n", src.DatabaseType)
	fmt.Printf("Tables: %d (estimated %d rows)\n\n", len(src.Tables), src.TotalEstimatedRows())
	for _, t := range src.Tables {
		fmt.Printf("  %s (%d columns, ~%d rows)\n", t.Name, len(t.Columns), t.EstimatedRows)
		for _, c := range t.Columns {
			nullable := ""
			if !c.Nullable {
				nullable = " NOT NULL"
			}
			fmt.Printf("    %-30s %s%s\n", c.Name, c.Type, nullable)
		}
	}

	return nil
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	in, closeCache, err := newIntrospector(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	target, err := in.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Synced %s (%s): %d endpoints\n", target.Title, target.Version, len(target.Endpoints))
	for _, ep := range target.Endpoints {
		fmt.Printf("  %-6s %-40s %s (%d fields)\n", ep.Method, ep.Path, ep.Entity, len(ep.Fields))
	}

	return nil
}

func runAutomap(args []string) error {
	fs := flag.NewFlagSet("automap", flag.ContinueOnError)
	backup := fs.String("backup", "", "path to the backup file")
	out := fs.String("out", "", "path for the mapping set export")
	configPath := fs.String("config", "", "path to config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *backup == "" || *out == "" {
		return fmt.Errorf("missing required flags: --backup and --out")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	logger := newLogger()
	reg, _, closeCache, err := loadSchemas(ctx, cfg, *backup)
	if err != nil {
		return err
	}
	defer closeCache()

	b := mapper.NewBuilder(reg, logger)
	b.Threshold = cfg.Mapping.Threshold
	b.Workers = cfg.Mapping.Workers

	set, err := b.AutoMap()
	if err != nil {
		return err
	}

	if err := mapper.ExportFile(*out, set); err != nil {
		return err
	}

	fmt.Printf("Draft mapping set written to %s\n", *out)
	for i := range set.Tables {
		tm := &set.Tables[i]
		if tm.Skip {
			fmt.Printf("  %-30s SKIP (%s)\n", tm.SourceTable, tm.SkipReason)
			continue
		}
		fmt.Printf("  %-30s -> %s (%d mappings, %d unmapped)\n",
			tm.SourceTable, tm.Endpoint, len(tm.Columns), len(tm.Unmapped))
	}
	fmt.Println("\nReview the file, then run validate.")

	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	backup := fs.String("backup", "", "path to the backup file")
	mappingPath := fs.String("mapping", "", "path to the mapping set")
	configPath := fs.String("config", "", "path to config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *backup == "" || *mappingPath == "" {
		return fmt.Errorf("missing required flags: --backup and --mapping")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	reg, _, closeCache, err := loadSchemas(ctx, cfg, *backup)
	if err != nil {
		return err
	}
	defer closeCache()

	set, err := mapper.LoadFile(*mappingPath)
	if err != nil {
		return err
	}

	found, err := validate.NewGate(reg, newLogger()).Validate(set)
	if err != nil {
		return err
	}

	for _, f := range found.Errors {
		fmt.Printf("ERROR   %s\n", f)
	}
	for _, f := range found.Warnings {
		fmt.Printf("WARNING %s\n", f)
	}
	for _, f := range found.Infos {
		fmt.Printf("info    %s\n", f)
	}

	if err := mapper.ExportFile(*mappingPath, set); err != nil {
		return err
	}

	validated := set.Validated()
	fmt.Printf("\n%d of %d tables validated\n", len(validated), len(set.Tables))
	if found.HasErrors() {
		return fmt.Errorf("%d blocking findings, fix the mapping and validate again", len(found.Errors))
	}

	return nil
}

// runExport round-trips a mapping file through Load and ExportFile. Hand
// edits are checked against the mapping schema and rewritten in the
// canonical field order and indentation.
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	mappingPath := fs.String("mapping", "", "path to the mapping set")
	out := fs.String("out", "", "path for the normalized export")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mappingPath == "" || *out == "" {
		return fmt.Errorf("missing required flags: --mapping and --out")
	}

	set, err := mapper.LoadFile(*mappingPath)
	if err != nil {
		return err
	}
	if err := mapper.ExportFile(*out, set); err != nil {
		return err
	}

	fmt.Printf("Normalized mapping set written to %s (%d tables)\n", *out, len(set.Tables))
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	backup := fs.String("backup", "", "path to the backup file")
	mappingPath := fs.String("mapping", "", "path to the mapping set")
	configPath := fs.String("config", "", "path to config.yaml")
	dryRun := fs.Bool("dry-run", false, "shape and count records without calling the API")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *backup == "" || *mappingPath == "" {
		return fmt.Errorf("missing required flags: --backup and --mapping")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	logger := newLogger()
	reg, p, closeCache, err := loadSchemas(ctx, cfg, *backup)
	if err != nil {
		return err
	}
	defer closeCache()

	set, err := mapper.LoadFile(*mappingPath)
	if err != nil {
		return err
	}

	resolver := resolve.NewResolver(reg, transform.NewRegistry(), logger)
	resolver.BatchSize = cfg.API.BatchSize

	rows := make(map[string][]resolve.Row)
	for _, tm := range set.Validated() {
		raw, err := p.Rows(tm.SourceTable)
		if err != nil {
			return err
		}
		shaped := make([]resolve.Row, len(raw))
		for i, r := range raw {
			shaped[i] = resolve.Row(r)
		}
		rows[tm.SourceTable] = shaped
	}

	batches, err := resolver.ResolveSet(set, rows)
	if err != nil {
		return err
	}

	skipped := 0
	for _, b := range batches {
		skipped += len(b.Failures)
		for _, f := range b.Failures {
			fmt.Printf("row %d not shaped (%s): %s\n", f.Index, f.Field, f.Reason)
		}
	}

	c := client.New(cfg.API.BaseURL, cfg.API.Username, cfg.API.Password, logger)
	c.HTTP.Timeout = cfg.API.Timeout.Std()
	c.DryRun = *dryRun

	sum, err := c.SubmitAll(ctx, batches)
	if err != nil {
		return err
	}

	for _, res := range sum.Results {
		for _, f := range res.Failures {
			fmt.Printf("record %d rejected by %s (status %d): %s\n",
				f.Index, res.Endpoint, f.Status, f.Message)
		}
	}
	fmt.Printf("%d records created, %d rejected, %d rows not shaped\n",
		sum.Created, sum.Failed, skipped)

	return nil
}

// newIntrospector wires the schema cache and introspector from config.
func newIntrospector(cfg *config.Config) (*introspect.Introspector, func(), error) {
	cache, err := introspect.OpenCache(cfg.Cache.Path, cfg.Cache.TTL.Std())
	if err != nil {
		return nil, nil, err
	}

	in := introspect.NewIntrospector(cfg.API.BaseURL, cfg.API.Username, cfg.API.Password, cache, newLogger())
	in.Client.Timeout = cfg.API.Timeout.Std()

	return in, func() { cache.Close() }, nil
}

// loadSchemas parses the backup and pairs it with the cached target schema
// in a ready registry. A cache miss tells the operator to sync first.
func loadSchemas(ctx context.Context, cfg *config.Config, backup string) (*schema.Registry, parser.Parser, func(), error) {
	p, err := parser.Open(backup)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := p.Discover()
	if err != nil {
		return nil, nil, nil, err
	}

	in, closeCache, err := newIntrospector(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	target, err := in.Target(ctx)
	if err != nil {
		closeCache()
		return nil, nil, nil, fmt.Errorf("target schema unavailable, run sync first: %w", err)
	}

	reg := schema.NewRegistry()
	reg.RegisterSource(src)
	reg.LoadTarget(target)

	return reg, p, closeCache, nil
}
