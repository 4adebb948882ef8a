package storage

import (
	"database/sql"

	"github.com/dshills/dictcc-mcp/pkg/types"
)

// EntryRows iterates over matched entries one row at a time
type EntryRows struct {
	rows   *sql.Rows
	schema *Schema
	values []sql.NullString
	dest   []interface{}
}

func newEntryRows(rows *sql.Rows, schema *Schema) *EntryRows {
	values := make([]sql.NullString, len(schema.Columns))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	return &EntryRows{rows: rows, schema: schema, values: values, dest: dest}
}

// Next advances to the next row
func (r *EntryRows) Next() bool {
	return r.rows.Next()
}

// Result scans the current row through the store's schema
func (r *EntryRows) Result() (types.SearchResult, error) {
	if err := r.rows.Scan(r.dest...); err != nil {
		return types.SearchResult{}, err
	}
	raw := make([]string, len(r.values))
	for i, v := range r.values {
		raw[i] = v.String
	}
	return r.schema.Build(raw), nil
}

// Err returns the error, if any, that ended iteration
func (r *EntryRows) Err() error {
	return r.rows.Err()
}

// Close releases the underlying rows
func (r *EntryRows) Close() error {
	return r.rows.Close()
}
