package storage

import (
	"strconv"

	"github.com/dshills/dictcc-mcp/pkg/types"
)

// SchemaKind identifies the column layout of a store
type SchemaKind string

const (
	// SchemaStandard is the layout written by the importer
	SchemaStandard SchemaKind = "standard"
	// SchemaRich is the layout of prebuilt stores with grades
	SchemaRich SchemaKind = "rich"
)

const (
	// EntriesTable holds imported dict.cc entries
	EntriesTable = "entries"
	// RichTable holds entries of prebuilt rich stores
	RichTable = "heinzelnisse"
)

// Column maps one positional result column onto a SearchResult field
type Column struct {
	Name   string
	Assign func(r *types.SearchResult, value string)
}

// Schema is the ordered column layout of a store's entry table
type Schema struct {
	Kind    SchemaKind
	Table   string
	Columns []Column
}

// Build converts one row of values, ordered like Columns, into a result
func (s *Schema) Build(values []string) types.SearchResult {
	var r types.SearchResult
	for i, col := range s.Columns {
		if i >= len(values) {
			break
		}
		col.Assign(&r, values[i])
	}
	r.BuildDisplayText(s.Kind != SchemaRich)
	return r
}

// ColumnNames returns the column names in order
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

func assignIndex(r *types.SearchResult, v string) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err == nil {
		r.Index = id
	}
}

// StandardSchema is written by the importer. The *_other columns hold
// the [qualifier] annotation.
var StandardSchema = &Schema{
	Kind:  SchemaStandard,
	Table: EntriesTable,
	Columns: []Column{
		{"id", assignIndex},
		{"left_word", func(r *types.SearchResult, v string) { r.WordLeft = v }},
		{"left_gender", func(r *types.SearchResult, v string) { r.GenderLeft = v }},
		{"left_other", func(r *types.SearchResult, v string) { r.QualifierLeft = v }},
		{"right_word", func(r *types.SearchResult, v string) { r.WordRight = v }},
		{"right_gender", func(r *types.SearchResult, v string) { r.GenderRight = v }},
		{"right_other", func(r *types.SearchResult, v string) { r.QualifierRight = v }},
		{"category", func(r *types.SearchResult, v string) { r.Category = v }},
	},
}

// RichSchema is used by prebuilt stores. The right side comes first.
// The *_optional columns are returned but kept out of DisplayText.
var RichSchema = &Schema{
	Kind:  SchemaRich,
	Table: RichTable,
	Columns: []Column{
		{"id", assignIndex},
		{"right_word", func(r *types.SearchResult, v string) { r.WordRight = v }},
		{"right_gender", func(r *types.SearchResult, v string) { r.GenderRight = v }},
		{"right_optional", func(r *types.SearchResult, v string) { r.QualifierRight = v }},
		{"right_other", func(r *types.SearchResult, v string) { r.OtherRight = v }},
		{"left_word", func(r *types.SearchResult, v string) { r.WordLeft = v }},
		{"left_gender", func(r *types.SearchResult, v string) { r.GenderLeft = v }},
		{"left_optional", func(r *types.SearchResult, v string) { r.QualifierLeft = v }},
		{"left_other", func(r *types.SearchResult, v string) { r.OtherLeft = v }},
		{"category", func(r *types.SearchResult, v string) { r.Category = v }},
		{"grade", func(r *types.SearchResult, v string) { r.Grade = v }},
	},
}

const createEntriesSQL = `CREATE VIRTUAL TABLE entries USING fts5(
	id UNINDEXED,
	left_word, left_gender, left_other,
	right_word, right_gender, right_other,
	category,
	tokenize="unicode61 remove_diacritics 0"
)`
