package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileMetadataStore is a file-backed MetadataStore: a MemoryMetadataStore
// whose contents are snapshotted to a single JSON file after every
// mutation. Good enough for a single planner process; it makes no
// cross-process consistency promises.
type FileMetadataStore struct {
	path string
	mem  *MemoryMetadataStore
}

// metadataSnapshot is the on-disk form of the whole store.
type metadataSnapshot struct {
	Catalogs []*CatalogMetadata `json:"catalogs"`
	Schemas  []*SchemaMetadata  `json:"schemas"`
	Tables   []*TableMetadata   `json:"tables"`
}

// NewFileMetadataStore creates a store persisted at the given file path
func NewFileMetadataStore(path string) *FileMetadataStore {
	return &FileMetadataStore{
		path: path,
		mem:  NewMemoryMetadataStore(),
	}
}

// Initialize loads the snapshot when present, otherwise seeds defaults
func (f *FileMetadataStore) Initialize(ctx context.Context) error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := f.mem.Initialize(ctx); err != nil {
			return err
		}
		return f.save()
	}
	if err != nil {
		return fmt.Errorf("load metadata from %s: %w", f.path, err)
	}

	var snapshot metadataSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode metadata from %s: %w", f.path, err)
	}
	for _, c := range snapshot.Catalogs {
		if err := f.mem.CreateCatalog(ctx, c); err != nil {
			return err
		}
	}
	for _, s := range snapshot.Schemas {
		if err := f.mem.CreateSchema(ctx, s); err != nil {
			return err
		}
	}
	for _, t := range snapshot.Tables {
		if err := f.mem.CreateTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Close persists a final snapshot
func (f *FileMetadataStore) Close() error {
	if err := f.save(); err != nil {
		return err
	}
	return f.mem.Close()
}

func (f *FileMetadataStore) save() error {
	ctx := context.Background()
	snapshot := metadataSnapshot{}

	catalogs, err := f.mem.ListCatalogs(ctx)
	if err != nil {
		return err
	}
	snapshot.Catalogs = catalogs
	for _, c := range catalogs {
		schemas, err := f.mem.ListSchemas(ctx, c.Name)
		if err != nil {
			return err
		}
		snapshot.Schemas = append(snapshot.Schemas, schemas...)
		for _, s := range schemas {
			tables, err := f.mem.ListTables(ctx, c.Name, s.Name)
			if err != nil {
				return err
			}
			snapshot.Tables = append(snapshot.Tables, tables...)
		}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create metadata directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write metadata to %s: %w", f.path, err)
	}
	return nil
}

// mutate runs a memory-store mutation and persists the result
func (f *FileMetadataStore) mutate(err error) error {
	if err != nil {
		return err
	}
	return f.save()
}

func (f *FileMetadataStore) CreateCatalog(ctx context.Context, catalog *CatalogMetadata) error {
	return f.mutate(f.mem.CreateCatalog(ctx, catalog))
}

func (f *FileMetadataStore) ListCatalogs(ctx context.Context) ([]*CatalogMetadata, error) {
	return f.mem.ListCatalogs(ctx)
}

func (f *FileMetadataStore) CreateSchema(ctx context.Context, schema *SchemaMetadata) error {
	return f.mutate(f.mem.CreateSchema(ctx, schema))
}

func (f *FileMetadataStore) ListSchemas(ctx context.Context, catalogName string) ([]*SchemaMetadata, error) {
	return f.mem.ListSchemas(ctx, catalogName)
}

func (f *FileMetadataStore) CreateTable(ctx context.Context, table *TableMetadata) error {
	return f.mutate(f.mem.CreateTable(ctx, table))
}

func (f *FileMetadataStore) GetTable(ctx context.Context, identifier TableIdentifier) (*TableMetadata, error) {
	return f.mem.GetTable(ctx, identifier)
}

func (f *FileMetadataStore) ListTables(ctx context.Context, catalogName, schemaName string) ([]*TableMetadata, error) {
	return f.mem.ListTables(ctx, catalogName, schemaName)
}

func (f *FileMetadataStore) DeleteTable(ctx context.Context, identifier TableIdentifier) error {
	return f.mutate(f.mem.DeleteTable(ctx, identifier))
}

func (f *FileMetadataStore) UpdateTableStatistics(ctx context.Context, identifier TableIdentifier, stats *TableStatistics) error {
	return f.mutate(f.mem.UpdateTableStatistics(ctx, identifier, stats))
}
