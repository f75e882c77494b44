package catalog

import "context"

// MetadataStore is the interface for pluggable metadata storage
type MetadataStore interface {
	// Catalog operations
	CreateCatalog(ctx context.Context, catalog *CatalogMetadata) error
	ListCatalogs(ctx context.Context) ([]*CatalogMetadata, error)

	// Schema operations
	CreateSchema(ctx context.Context, schema *SchemaMetadata) error
	ListSchemas(ctx context.Context, catalogName string) ([]*SchemaMetadata, error)

	// Table operations
	CreateTable(ctx context.Context, table *TableMetadata) error
	GetTable(ctx context.Context, identifier TableIdentifier) (*TableMetadata, error)
	ListTables(ctx context.Context, catalogName, schemaName string) ([]*TableMetadata, error)
	DeleteTable(ctx context.Context, identifier TableIdentifier) error

	// Table statistics
	UpdateTableStatistics(ctx context.Context, identifier TableIdentifier, stats *TableStatistics) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
