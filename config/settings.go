// Package config provides configuration structures for the faceted search engine.
// It defines index schemas, per-field capabilities, and server configuration.
package config

import (
	"strings"
)

// FieldType declares how values of an index field are interpreted by
// filters, sorting, and facet aggregation.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeKeyword FieldType = "keyword"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeGeo     FieldType = "geo"
)

// Valid reports whether ft is one of the declared field types.
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldTypeText, FieldTypeKeyword, FieldTypeNumber, FieldTypeDate,
		FieldTypeBoolean, FieldTypeArray, FieldTypeGeo:
		return true
	}
	return false
}

// Orderable reports whether values of this type have a total order usable
// by range filters and plain sorting.
func (ft FieldType) Orderable() bool {
	return ft == FieldTypeNumber || ft == FieldTypeDate
}

// IndexField describes a single field of an index schema and its capabilities.
// A field referenced by a filter, sort, or facet must exist in the schema and
// carry the corresponding capability flag.
type IndexField struct {
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Searchable bool      `json:"searchable"`
	Filterable bool      `json:"filterable"`
	Sortable   bool      `json:"sortable"`
	Facetable  bool      `json:"facetable"`
	Boost      float64   `json:"boost,omitempty"` // Default relevance weight for text matches in this field
}

// IndexSettings contains the full schema for a search index: its unique
// name, its fields, and opaque pass-through sizing hints.
//
// Shards and Replicas are carried for backends that understand them; the
// engine itself never interprets them.
type IndexSettings struct {
	Name     string       `json:"name"`
	Fields   []IndexField `json:"fields"`
	Shards   int          `json:"shards,omitempty"`
	Replicas int          `json:"replicas,omitempty"`
}

// Field returns the schema entry for the named field.
func (settings *IndexSettings) Field(name string) (IndexField, bool) {
	for _, f := range settings.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// SearchableFields returns the names of all searchable text-bearing fields,
// in schema order.
func (settings *IndexSettings) SearchableFields() []string {
	names := make([]string, 0, len(settings.Fields))
	for _, f := range settings.Fields {
		if f.Searchable {
			names = append(names, f.Name)
		}
	}
	return names
}

// Validate checks structural requirements of the schema and returns a list
// of problems. An empty list means the settings are usable.
func (settings *IndexSettings) Validate() []string {
	var problems []string

	if strings.TrimSpace(settings.Name) == "" {
		problems = append(problems, "index name cannot be empty")
	}

	seen := make(map[string]bool)
	for _, f := range settings.Fields {
		if strings.TrimSpace(f.Name) == "" {
			problems = append(problems, "field name cannot be empty or whitespace-only")
			continue
		}
		if seen[f.Name] {
			problems = append(problems, "duplicate field '"+f.Name+"' in schema")
		}
		seen[f.Name] = true

		if !f.Type.Valid() {
			problems = append(problems, "field '"+f.Name+"' has unknown type '"+string(f.Type)+"'")
		}
		if f.Boost < 0 {
			problems = append(problems, "field '"+f.Name+"' has negative boost")
		}
	}

	return problems
}

// ApplyDefaults fills in zero values with usable defaults.
func (settings *IndexSettings) ApplyDefaults() {
	if settings.Fields == nil {
		settings.Fields = []IndexField{}
	}
	for i := range settings.Fields {
		if settings.Fields[i].Type == "" {
			settings.Fields[i].Type = FieldTypeText
		}
		if settings.Fields[i].Boost == 0 {
			settings.Fields[i].Boost = 1.0
		}
	}
	if settings.Shards <= 0 {
		settings.Shards = 1
	}
	if settings.Replicas < 0 {
		settings.Replicas = 0
	}
}
