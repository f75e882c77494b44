package catalog

import "fmt"

// Errors
var (
	ErrCatalogNotFound = fmt.Errorf("catalog not found")
	ErrSchemaNotFound  = fmt.Errorf("schema not found")
	ErrTableNotFound   = fmt.Errorf("table not found")
	ErrCatalogExists   = fmt.Errorf("catalog already exists")
	ErrSchemaExists    = fmt.Errorf("schema already exists")
	ErrTableExists     = fmt.Errorf("table already exists")
)

// UnsupportedOperationError is returned for writes or DDL the connector does
// not support. Callers surface it verbatim to the query submitter and never
// retry through an alternate path.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("connector does not support %s", e.Operation)
}

// AmbiguousLayoutError is returned when a write path requires exactly one
// partitioning scheme but the connector reported several candidate layouts.
// Fatal to the query; there is no automatic disambiguation.
type AmbiguousLayoutError struct {
	Table TableIdentifier
	Count int
}

func (e *AmbiguousLayoutError) Error() string {
	return fmt.Sprintf("table %s has %d candidate layouts where exactly one partitioning scheme is required", e.Table, e.Count)
}
