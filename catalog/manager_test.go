package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager := NewManager(NewMemoryMetadataStore(), "memory", "default")
	require.NoError(t, manager.Initialize(context.Background()))
	t.Cleanup(func() { manager.Close() })
	return manager
}

func createTable(t *testing.T, manager *Manager, identifier string, locations []string, partitionKeys []string, stats *TableStatistics) {
	t.Helper()
	ident := manager.Resolve(identifier)
	require.NoError(t, manager.store.CreateTable(context.Background(), &TableMetadata{
		Name:          ident.Table,
		SchemaName:    ident.Schema,
		CatalogName:   ident.Catalog,
		Locations:     locations,
		Format:        "parquet",
		PartitionKeys: partitionKeys,
		Statistics:    stats,
	}))
}

func TestGetTableLayouts(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	require.NoError(t, manager.store.CreateCatalog(ctx, &CatalogMetadata{Name: "memory"}))
	require.NoError(t, manager.store.CreateSchema(ctx, &SchemaMetadata{Name: "default", CatalogName: "memory"}))

	createTable(t, manager, "orders",
		[]string{"/data/orders-1.parquet", "/data/orders-2.parquet"},
		[]string{"region"},
		&TableStatistics{RowCount: 500},
	)

	constraint := Constraint{Summary: "price > 10"}
	layouts, err := manager.GetTableLayouts(ctx, manager.Resolve("orders"), constraint, nil)
	require.NoError(t, err)
	require.Len(t, layouts, 2)

	assert.Equal(t, "layout-0", layouts[0].ID)
	assert.Equal(t, "layout-1", layouts[1].ID)
	assert.Equal(t, "/data/orders-1.parquet", layouts[0].Location)
	require.NotNil(t, layouts[0].Partitioning)
	assert.Equal(t, []string{"region"}, layouts[0].Partitioning.Columns)
	assert.Equal(t, "hash", layouts[0].Partitioning.Function)
	// Layouts enforce nothing; the whole predicate is left to the scan.
	assert.Equal(t, "price > 10", layouts[0].Unenforced.Summary)
	require.NotNil(t, layouts[0].Statistics)
	assert.Equal(t, int64(500), layouts[0].Statistics.RowCount)
}

func TestGetTableLayoutsUnknownTable(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)

	layouts, err := manager.GetTableLayouts(ctx, manager.Resolve("nope"), All(), nil)
	require.NoError(t, err)
	assert.Empty(t, layouts)

	layouts, err = manager.GetTableLayouts(ctx, TableIdentifier{Catalog: "nope", Schema: "nope", Table: "nope"}, All(), nil)
	require.NoError(t, err)
	assert.Empty(t, layouts)
}

func TestGetTableLayoutsMetadataOnlyTable(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	manager.SetDefaults("default", "default")
	createTable(t, manager, "empty", nil, nil, nil)

	layouts, err := manager.GetTableLayouts(ctx, manager.Resolve("empty"), All(), nil)
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	assert.Equal(t, "layout-0", layouts[0].ID)
	assert.Empty(t, layouts[0].Location)
	assert.Nil(t, layouts[0].Partitioning)
}

func TestResolveWriteLayout(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	manager.SetDefaults("default", "default")
	createTable(t, manager, "single", []string{"/data/a.parquet"}, nil, nil)
	createTable(t, manager, "split", []string{"/data/a.parquet", "/data/b.parquet"}, nil, nil)

	// Writes are refused until the connector declares insert support.
	_, err := manager.ResolveWriteLayout(ctx, manager.Resolve("single"))
	var unsupported *UnsupportedOperationError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "INSERT", unsupported.Operation)

	manager.SetCapabilities(Capabilities{SupportsInsert: true})

	layout, err := manager.ResolveWriteLayout(ctx, manager.Resolve("single"))
	require.NoError(t, err)
	assert.Equal(t, "/data/a.parquet", layout.Location)

	_, err = manager.ResolveWriteLayout(ctx, manager.Resolve("split"))
	var ambiguous *AmbiguousLayoutError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, 2, ambiguous.Count)

	_, err = manager.ResolveWriteLayout(ctx, manager.Resolve("missing"))
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestDDLCapabilityGates(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	manager.SetDefaults("default", "default")

	var unsupported *UnsupportedOperationError
	err := manager.CreateTable(ctx, "t", "parquet", nil)
	require.True(t, errors.As(err, &unsupported))

	err = manager.DropTable(ctx, "t")
	require.True(t, errors.As(err, &unsupported))

	_, err = manager.AnalyzeTable(ctx, "t")
	require.True(t, errors.As(err, &unsupported))

	manager.SetCapabilities(Capabilities{SupportsCreateTable: true, SupportsDelete: true})
	require.NoError(t, manager.CreateTable(ctx, "t", "parquet", []ColumnMetadata{{Name: "id", Type: "INT64"}}))
	require.NoError(t, manager.DropTable(ctx, "t"))
}

type orderRow struct {
	ID     int64   `parquet:"id"`
	Region string  `parquet:"region"`
	Price  float64 `parquet:"price"`
}

func writeParquetFile(t *testing.T, path string, rows []orderRow) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	writer := parquet.NewGenericWriter[orderRow](file)
	_, err = writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}

func TestParquetSchemaReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.parquet")
	writeParquetFile(t, path, []orderRow{
		{ID: 1, Region: "eu", Price: 10.5},
		{ID: 2, Region: "us", Price: 20.0},
		{ID: 3, Region: "eu", Price: 7.25},
	})

	reader := NewParquetSchemaReader()
	columns, stats, err := reader.ReadSchema(path)
	require.NoError(t, err)

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "region", "price"}, names)

	require.NotNil(t, stats)
	assert.Equal(t, int64(3), stats.RowCount)
	assert.Positive(t, stats.SizeBytes)
}

func TestParquetSchemaReaderMissingFile(t *testing.T) {
	reader := NewParquetSchemaReader()
	_, _, err := reader.ReadSchema(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
}

func TestRegisterTableDiscoversSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.parquet")
	writeParquetFile(t, path, []orderRow{{ID: 1, Region: "eu", Price: 1}})

	manager := newTestManager(t)
	manager.SetDefaults("default", "default")
	manager.SetSchemaReader(NewParquetSchemaReader())

	require.NoError(t, manager.RegisterTable(ctx, "orders", []string{path}, "parquet", nil, nil))

	table, err := manager.store.GetTable(ctx, manager.Resolve("orders"))
	require.NoError(t, err)
	assert.Len(t, table.Columns, 3)
	require.NotNil(t, table.Statistics)
	assert.Equal(t, int64(1), table.Statistics.RowCount)
}

func TestAnalyzeTable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first := filepath.Join(dir, "a.parquet")
	second := filepath.Join(dir, "b.parquet")
	writeParquetFile(t, first, []orderRow{{ID: 1}, {ID: 2}})
	writeParquetFile(t, second, []orderRow{{ID: 3}})

	manager := newTestManager(t)
	manager.SetDefaults("default", "default")
	manager.SetSchemaReader(NewParquetSchemaReader())
	manager.SetCapabilities(Capabilities{SupportsStatistics: true})
	createTable(t, manager, "orders", []string{first, second}, nil, nil)

	stats, err := manager.AnalyzeTable(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.RowCount)

	got, err := manager.TableStatistics(ctx, manager.Resolve("orders"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.RowCount)
}
