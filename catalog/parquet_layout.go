package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"howett.net/ranger"
)

// ParquetSchemaReader discovers table schemas and statistics from parquet
// footers. Locations may be local paths or http(s) URLs; remote files are
// read through HTTP range requests so only the footer is fetched.
type ParquetSchemaReader struct{}

// NewParquetSchemaReader creates a parquet-backed schema reader
func NewParquetSchemaReader() *ParquetSchemaReader {
	return &ParquetSchemaReader{}
}

// ReadSchema reads column metadata and row/byte statistics from a parquet
// file footer.
func (r *ParquetSchemaReader) ReadSchema(location string) ([]ColumnMetadata, *TableStatistics, error) {
	file, closer, size, err := openParquet(location)
	if err != nil {
		return nil, nil, err
	}
	if closer != nil {
		defer closer.Close()
	}

	var columns []ColumnMetadata
	for _, field := range file.Schema().Fields() {
		columns = append(columns, ColumnMetadata{
			Name:     field.Name(),
			Type:     field.Type().String(),
			Nullable: field.Optional(),
		})
	}

	var rows int64
	for _, rg := range file.RowGroups() {
		rows += rg.NumRows()
	}

	return columns, &TableStatistics{
		RowCount:     rows,
		SizeBytes:    size,
		LastAnalyzed: time.Now(),
	}, nil
}

func openParquet(location string) (*parquet.File, *os.File, int64, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		parsedURL, err := url.Parse(location)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("parse location %s: %w", location, err)
		}
		reader, err := ranger.NewReader(&ranger.HTTPRanger{URL: parsedURL})
		if err != nil {
			return nil, nil, 0, fmt.Errorf("open HTTP reader for %s: %w", location, err)
		}
		length, err := reader.Length()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("get content length of %s: %w", location, err)
		}
		file, err := parquet.OpenFile(reader, length)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("open remote parquet file %s: %w", location, err)
		}
		return file, nil, length, nil
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("open %s: %w", location, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, 0, fmt.Errorf("stat %s: %w", location, err)
	}
	file, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, nil, 0, fmt.Errorf("open parquet file %s: %w", location, err)
	}
	return file, f, stat.Size(), nil
}
