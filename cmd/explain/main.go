package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"stagedb/catalog"
	"stagedb/core"
	"stagedb/plan"
	"stagedb/planner"
)

func main() {
	metadataPath := flag.String("metadata", "", "path to the catalog metadata JSON file")
	defaultCatalog := flag.String("catalog", "default", "default catalog for unqualified tables")
	defaultSchema := flag.String("schema", "default", "default schema for unqualified tables")
	query := flag.String("query", "", "SQL query to plan; reads stdin when empty")
	broadcastLimit := flag.Int64("broadcast-limit", planner.DefaultOptions().BroadcastRowLimit, "row count below which a join side is broadcast")
	fragments := flag.Bool("fragments", true, "print the fragmented plan instead of the inline tree")
	flag.Parse()

	if err := run(*metadataPath, *defaultCatalog, *defaultSchema, *query, *broadcastLimit, *fragments); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(metadataPath, defaultCatalog, defaultSchema, query string, broadcastLimit int64, fragments bool) error {
	ctx := context.Background()

	var store catalog.MetadataStore
	if metadataPath != "" {
		store = catalog.NewFileMetadataStore(metadataPath)
	} else {
		store = catalog.NewMemoryMetadataStore()
	}
	manager := catalog.NewManager(store, defaultCatalog, defaultSchema)
	manager.SetSchemaReader(catalog.NewCachingSchemaReader(catalog.NewParquetSchemaReader(), catalog.SchemaCacheConfig{
		MaxEntries: 256,
		DefaultTTL: 5 * time.Minute,
		Enabled:    true,
	}))
	if err := manager.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize catalog: %w", err)
	}
	defer manager.Close()

	if query == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read query from stdin: %w", err)
		}
		query = strings.TrimSpace(string(raw))
	}
	if query == "" {
		return fmt.Errorf("no query given")
	}

	frontend := core.NewSQLFrontend(defaultCatalog, defaultSchema)
	root, err := frontend.Parse(query)
	if err != nil {
		return err
	}

	builder := planner.NewBuilder(manager, planner.PlannerOptions{BroadcastRowLimit: broadcastLimit})
	session := &planner.Session{
		QueryID: "explain",
		User:    os.Getenv("USER"),
		Catalog: defaultCatalog,
		Schema:  defaultSchema,
	}
	planned, err := builder.Plan(ctx, session, root)
	if err != nil {
		return err
	}

	if fragments {
		fmt.Print(plan.FormatFragments(planned))
	} else {
		fmt.Print(plan.FormatPlan(planned.Root))
	}
	return nil
}
