// Command lorelie is the operational CLI for a lorelie-backed SQLite
// database: dumping the live schema, and driving the migration
// bookkeeping table outside of a Go program that declares Table values
// directly.
//
// Grounded directly on sqldef-sqldef/cmd/sqlite3def/sqlite3def.go's
// parseOptions-then-dispatch shape; flag names mirror it where they
// apply (--config for the YAML config, --dry-run).
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v2"

	"github.com/lorelie-orm/lorelie/backend"
)

// Config is the optional YAML file accepted via --config, mirroring
// database.ParseGeneratorConfig's target/skip table lists in the
// teacher CLI.
type Config struct {
	DatabasePath string   `yaml:"database_path"`
	LogQueries   bool     `yaml:"log_queries"`
	SkipTables   []string `yaml:"skip_tables"`
}

type options struct {
	Config  string `long:"config" description:"YAML file specifying database_path, log_queries, skip_tables"`
	DryRun  bool   `long:"dry-run" description:"Show what would run without executing it"`
	Help    bool   `long:"help" description:"Show this help"`
	Version bool   `long:"version" description:"Show this version"`
}

var version = "dev"

func parseOptions(args []string) (*options, []string, string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] <makemigrations|migrate|dumpschema> db_name"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if len(remaining) < 2 {
		fmt.Println("Usage: lorelie [option...] <makemigrations|migrate|dumpschema> db_name")
		os.Exit(1)
	}

	return &opts, remaining, remaining[0]
}

func loadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return &cfg, nil
}

func main() {
	opts, args, command := parseOptions(os.Args[1:])
	dbName := args[1]

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := backend.Open(dbName, cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	conn.LogSQL = cfg.LogQueries

	ctx := context.Background()

	switch command {
	case "dumpschema":
		if err := runDumpSchema(ctx, conn); err != nil {
			log.Fatal(err)
		}
	case "migrate":
		if err := runMigrate(ctx, conn, opts.DryRun); err != nil {
			log.Fatal(err)
		}
	case "makemigrations":
		fmt.Println("makemigrations requires a Go program that declares its Table values; this CLI only drives dumpschema and migrate against an already-declared database.")
		os.Exit(1)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runDumpSchema(ctx context.Context, conn *backend.Connection) error {
	tables, err := conn.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		columns, err := conn.ListColumns(ctx, table)
		if err != nil {
			return err
		}
		fmt.Printf("-- %s\n", table)
		for _, col := range columns {
			fmt.Printf("  %s %s\n", col.Name, col.Type)
		}
	}
	return nil
}

func runMigrate(ctx context.Context, conn *backend.Connection, dryRun bool) error {
	exists, err := conn.TableExists(ctx, "lorelie_migrations")
	if err != nil {
		return err
	}
	if exists {
		fmt.Println("lorelie_migrations already present; nothing to do.")
		return nil
	}
	ddl := `create table if not exists lorelie_migrations (` +
		`id integer primary key autoincrement, ` +
		`name text not null unique, ` +
		`table_name text null, ` +
		`migration json not null, ` +
		`applied datetime null)`
	if dryRun {
		fmt.Println(ddl)
		return nil
	}
	return conn.RunDDLs(ctx, []string{ddl})
}
