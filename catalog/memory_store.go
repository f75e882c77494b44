package catalog

import (
	"context"
	"sync"
	"time"
)

// MemoryMetadataStore is an in-memory implementation of MetadataStore
type MemoryMetadataStore struct {
	mu       sync.RWMutex
	catalogs map[string]*CatalogMetadata
	schemas  map[string]map[string]*SchemaMetadata           // catalogName -> schemaName -> schema
	tables   map[string]map[string]map[string]*TableMetadata // catalogName -> schemaName -> tableName -> table
}

// NewMemoryMetadataStore creates a new in-memory metadata store
func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		catalogs: make(map[string]*CatalogMetadata),
		schemas:  make(map[string]map[string]*SchemaMetadata),
		tables:   make(map[string]map[string]map[string]*TableMetadata),
	}
}

// Initialize creates the default catalog and schema
func (m *MemoryMetadataStore) Initialize(ctx context.Context) error {
	if err := m.CreateCatalog(ctx, &CatalogMetadata{Name: "default"}); err != nil {
		return err
	}
	return m.CreateSchema(ctx, &SchemaMetadata{Name: "default", CatalogName: "default"})
}

// Close clears all data
func (m *MemoryMetadataStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.catalogs = make(map[string]*CatalogMetadata)
	m.schemas = make(map[string]map[string]*SchemaMetadata)
	m.tables = make(map[string]map[string]map[string]*TableMetadata)

	return nil
}

func (m *MemoryMetadataStore) CreateCatalog(ctx context.Context, catalog *CatalogMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.catalogs[catalog.Name]; exists {
		return ErrCatalogExists
	}

	// Copy to avoid external modifications
	catalogCopy := *catalog
	catalogCopy.CreatedAt = time.Now()

	m.catalogs[catalog.Name] = &catalogCopy
	m.schemas[catalog.Name] = make(map[string]*SchemaMetadata)
	m.tables[catalog.Name] = make(map[string]map[string]*TableMetadata)

	return nil
}

func (m *MemoryMetadataStore) ListCatalogs(ctx context.Context) ([]*CatalogMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	catalogs := make([]*CatalogMetadata, 0, len(m.catalogs))
	for _, c := range m.catalogs {
		catalogCopy := *c
		catalogs = append(catalogs, &catalogCopy)
	}
	return catalogs, nil
}

func (m *MemoryMetadataStore) CreateSchema(ctx context.Context, schema *SchemaMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	schemas, exists := m.schemas[schema.CatalogName]
	if !exists {
		return ErrCatalogNotFound
	}
	if _, exists := schemas[schema.Name]; exists {
		return ErrSchemaExists
	}

	schemaCopy := *schema
	schemaCopy.CreatedAt = time.Now()
	schemas[schema.Name] = &schemaCopy
	m.tables[schema.CatalogName][schema.Name] = make(map[string]*TableMetadata)

	return nil
}

func (m *MemoryMetadataStore) ListSchemas(ctx context.Context, catalogName string) ([]*SchemaMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	schemas, exists := m.schemas[catalogName]
	if !exists {
		return nil, ErrCatalogNotFound
	}

	result := make([]*SchemaMetadata, 0, len(schemas))
	for _, s := range schemas {
		schemaCopy := *s
		result = append(result, &schemaCopy)
	}
	return result, nil
}

func (m *MemoryMetadataStore) CreateTable(ctx context.Context, table *TableMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	schemaTables, err := m.schemaTables(table.CatalogName, table.SchemaName)
	if err != nil {
		return err
	}
	if _, exists := schemaTables[table.Name]; exists {
		return ErrTableExists
	}

	tableCopy := *table
	tableCopy.CreatedAt = time.Now()
	tableCopy.UpdatedAt = tableCopy.CreatedAt
	schemaTables[table.Name] = &tableCopy

	return nil
}

func (m *MemoryMetadataStore) GetTable(ctx context.Context, identifier TableIdentifier) (*TableMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	schemaTables, err := m.schemaTables(identifier.Catalog, identifier.Schema)
	if err != nil {
		return nil, err
	}
	table, exists := schemaTables[identifier.Table]
	if !exists {
		return nil, ErrTableNotFound
	}

	tableCopy := *table
	return &tableCopy, nil
}

func (m *MemoryMetadataStore) ListTables(ctx context.Context, catalogName, schemaName string) ([]*TableMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	schemaTables, err := m.schemaTables(catalogName, schemaName)
	if err != nil {
		return nil, err
	}

	tables := make([]*TableMetadata, 0, len(schemaTables))
	for _, t := range schemaTables {
		tableCopy := *t
		tables = append(tables, &tableCopy)
	}
	return tables, nil
}

func (m *MemoryMetadataStore) DeleteTable(ctx context.Context, identifier TableIdentifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	schemaTables, err := m.schemaTables(identifier.Catalog, identifier.Schema)
	if err != nil {
		return err
	}
	if _, exists := schemaTables[identifier.Table]; !exists {
		return ErrTableNotFound
	}
	delete(schemaTables, identifier.Table)

	return nil
}

func (m *MemoryMetadataStore) UpdateTableStatistics(ctx context.Context, identifier TableIdentifier, stats *TableStatistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	schemaTables, err := m.schemaTables(identifier.Catalog, identifier.Schema)
	if err != nil {
		return err
	}
	table, exists := schemaTables[identifier.Table]
	if !exists {
		return ErrTableNotFound
	}

	statsCopy := *stats
	table.Statistics = &statsCopy
	table.UpdatedAt = time.Now()

	return nil
}

// schemaTables returns the table map for a schema; callers hold the lock.
func (m *MemoryMetadataStore) schemaTables(catalogName, schemaName string) (map[string]*TableMetadata, error) {
	catalogTables, exists := m.tables[catalogName]
	if !exists {
		return nil, ErrCatalogNotFound
	}
	schemaTables, exists := catalogTables[schemaName]
	if !exists {
		return nil, ErrSchemaNotFound
	}
	return schemaTables, nil
}
