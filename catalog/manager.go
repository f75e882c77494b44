package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SchemaReader reads column metadata and statistics out of a table's
// physical files.
type SchemaReader interface {
	ReadSchema(location string) ([]ColumnMetadata, *TableStatistics, error)
}

// Manager is the connector contract adapter: it answers the planner's
// layout and statistics questions on top of a MetadataStore and gates the
// write/DDL surface behind an explicit capability record. The planner
// borrows it read-only during a planning pass and never mutates its state.
type Manager struct {
	store          MetadataStore
	defaultCatalog string
	defaultSchema  string
	capabilities   Capabilities
	mu             sync.RWMutex
	schemaReader   SchemaReader
}

// NewManager creates a new catalog manager
func NewManager(store MetadataStore, defaultCatalog, defaultSchema string) *Manager {
	return &Manager{
		store:          store,
		defaultCatalog: defaultCatalog,
		defaultSchema:  defaultSchema,
	}
}

// Initialize initializes the underlying metadata store
func (m *Manager) Initialize(ctx context.Context) error {
	return m.store.Initialize(ctx)
}

// Close closes the underlying metadata store
func (m *Manager) Close() error {
	return m.store.Close()
}

// SetSchemaReader sets the reader used to discover file schemas and stats
func (m *Manager) SetSchemaReader(reader SchemaReader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaReader = reader
}

// SetCapabilities replaces the connector capability record
func (m *Manager) SetCapabilities(capabilities Capabilities) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capabilities = capabilities
}

// Capabilities returns the connector capability record
func (m *Manager) Capabilities() Capabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.capabilities
}

// Defaults returns the default catalog and schema
func (m *Manager) Defaults() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultCatalog, m.defaultSchema
}

// SetDefaults sets the default catalog and schema
func (m *Manager) SetDefaults(catalog, schema string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultCatalog = catalog
	m.defaultSchema = schema
}

// Resolve parses an identifier against the manager defaults
func (m *Manager) Resolve(identifier string) TableIdentifier {
	catalog, schema := m.Defaults()
	return ParseTableIdentifier(identifier, catalog, schema)
}

// RegisterTable records a table whose data already exists at the given
// locations. When a schema reader is configured and no columns are given,
// the columns and statistics are discovered from the first location.
func (m *Manager) RegisterTable(ctx context.Context, identifier string, locations []string, format string, partitionKeys []string, columns []ColumnMetadata) error {
	if len(locations) == 0 {
		return fmt.Errorf("register table %s: no locations", identifier)
	}

	ident := m.Resolve(identifier)
	var stats *TableStatistics

	m.mu.RLock()
	reader := m.schemaReader
	m.mu.RUnlock()

	if len(columns) == 0 && reader != nil {
		discovered, discoveredStats, err := reader.ReadSchema(locations[0])
		if err != nil {
			return fmt.Errorf("register table %s: read schema from %s: %w", identifier, locations[0], err)
		}
		columns = discovered
		stats = discoveredStats
	}

	return m.store.CreateTable(ctx, &TableMetadata{
		Name:          ident.Table,
		SchemaName:    ident.Schema,
		CatalogName:   ident.Catalog,
		Locations:     locations,
		Format:        format,
		Columns:       columns,
		PartitionKeys: partitionKeys,
		Statistics:    stats,
	})
}

// GetTableLayouts returns the candidate physical layouts for a table
// reference: one per data location, each carrying the table's intrinsic
// partitioning, the unenforced remainder of the constraint, and statistics
// when known. An unknown table yields zero layouts and no error; missing
// metadata is never fatal to planning.
func (m *Manager) GetTableLayouts(ctx context.Context, identifier TableIdentifier, constraint Constraint, desiredColumns []string) ([]TableLayout, error) {
	table, err := m.store.GetTable(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) || errors.Is(err, ErrSchemaNotFound) || errors.Is(err, ErrCatalogNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get layouts for %s: %w", identifier, err)
	}

	var partitioning *LayoutPartitioning
	if len(table.PartitionKeys) > 0 {
		partitioning = &LayoutPartitioning{
			Columns:  append([]string(nil), table.PartitionKeys...),
			Function: "hash",
		}
	}

	locations := table.Locations
	if len(locations) == 0 {
		// Metadata-only table: still one layout so scans stay plannable.
		locations = []string{""}
	}

	layouts := make([]TableLayout, 0, len(locations))
	for i, location := range locations {
		layouts = append(layouts, TableLayout{
			ID: layoutID(i),
			Handle: LayoutHandle{
				Table: identifier,
				Token: fmt.Sprintf("%s/%s", identifier, layoutID(i)),
			},
			Location:     location,
			Partitioning: partitioning,
			// The layouts enforce nothing themselves; the whole
			// predicate summary stays with the scan.
			Unenforced: constraint,
			Statistics: table.Statistics,
		})
	}
	return layouts, nil
}

// TableStatistics returns statistics for a table, or nil when unknown.
func (m *Manager) TableStatistics(ctx context.Context, identifier TableIdentifier) (*TableStatistics, error) {
	layouts, err := m.GetTableLayouts(ctx, identifier, All(), nil)
	if err != nil || len(layouts) == 0 {
		return nil, err
	}
	return layouts[0].Statistics, nil
}

// ResolveWriteLayout returns the single layout a write must target.
// Connectors without insert support refuse; several candidate layouts are
// ambiguous and fatal to the query.
func (m *Manager) ResolveWriteLayout(ctx context.Context, identifier TableIdentifier) (*TableLayout, error) {
	if !m.Capabilities().SupportsInsert {
		return nil, &UnsupportedOperationError{Operation: "INSERT"}
	}

	layouts, err := m.GetTableLayouts(ctx, identifier, All(), nil)
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("resolve write layout: %s: %w", identifier, ErrTableNotFound)
	}
	if len(layouts) > 1 {
		return nil, &AmbiguousLayoutError{Table: identifier, Count: len(layouts)}
	}
	return &layouts[0], nil
}

// CreateTable creates an empty table; refused when the connector lacks DDL
// support.
func (m *Manager) CreateTable(ctx context.Context, identifier string, format string, columns []ColumnMetadata) error {
	if !m.Capabilities().SupportsCreateTable {
		return &UnsupportedOperationError{Operation: "CREATE TABLE"}
	}

	ident := m.Resolve(identifier)
	return m.store.CreateTable(ctx, &TableMetadata{
		Name:        ident.Table,
		SchemaName:  ident.Schema,
		CatalogName: ident.Catalog,
		Format:      format,
		Columns:     columns,
	})
}

// DropTable removes a table; refused when the connector lacks delete
// support.
func (m *Manager) DropTable(ctx context.Context, identifier string) error {
	if !m.Capabilities().SupportsDelete {
		return &UnsupportedOperationError{Operation: "DROP TABLE"}
	}
	return m.store.DeleteTable(ctx, m.Resolve(identifier))
}

// AnalyzeTable refreshes a table's statistics through the schema reader.
func (m *Manager) AnalyzeTable(ctx context.Context, identifier string) (*TableStatistics, error) {
	if !m.Capabilities().SupportsStatistics {
		return nil, &UnsupportedOperationError{Operation: "ANALYZE"}
	}

	ident := m.Resolve(identifier)
	table, err := m.store.GetTable(ctx, ident)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	reader := m.schemaReader
	m.mu.RUnlock()
	if reader == nil || len(table.Locations) == 0 {
		return nil, fmt.Errorf("analyze %s: no schema reader or locations", ident)
	}

	total := &TableStatistics{LastAnalyzed: time.Now()}
	for _, location := range table.Locations {
		_, stats, err := reader.ReadSchema(location)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", ident, err)
		}
		if stats != nil {
			total.RowCount += stats.RowCount
			total.SizeBytes += stats.SizeBytes
		}
	}

	if err := m.store.UpdateTableStatistics(ctx, ident, total); err != nil {
		return nil, err
	}
	return total, nil
}
