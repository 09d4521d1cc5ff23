package services

import (
	"time"

	"github.com/rmachado/go-faceted-search/config"
)

// FilterOperator is the closed set of filter operators understood by the
// compiler. Adding an operator requires extending the compiler's exhaustive
// switch, the operator/type compatibility table, and the tests.
type FilterOperator string

const (
	OpEquals             FilterOperator = "equals"
	OpNotEquals          FilterOperator = "not_equals"
	OpContains           FilterOperator = "contains"
	OpNotContains        FilterOperator = "not_contains"
	OpStartsWith         FilterOperator = "starts_with"
	OpEndsWith           FilterOperator = "ends_with"
	OpGreaterThan        FilterOperator = "greater_than"
	OpGreaterThanOrEqual FilterOperator = "greater_than_or_equal"
	OpLessThan           FilterOperator = "less_than"
	OpLessThanOrEqual    FilterOperator = "less_than_or_equal"
	OpBetween            FilterOperator = "between"
	OpIn                 FilterOperator = "in"
	OpNotIn              FilterOperator = "not_in"
	OpExists             FilterOperator = "exists"
	OpNotExists          FilterOperator = "not_exists"
	OpRegex              FilterOperator = "regex"
	OpGeoDistance        FilterOperator = "geo_distance"
	OpGeoBoundingBox     FilterOperator = "geo_bounding_box"
)

// Valid reports whether op is a known operator.
func (op FilterOperator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
		OpBetween, OpIn, OpNotIn, OpExists, OpNotExists, OpRegex,
		OpGeoDistance, OpGeoBoundingBox:
		return true
	}
	return false
}

// ValueKind tags the variant held by a FilterValue.
type ValueKind string

const (
	ValueNone    ValueKind = ""
	ValueText    ValueKind = "text"
	ValueNumber  ValueKind = "number"
	ValueDate    ValueKind = "date"
	ValueBoolean ValueKind = "boolean"
	ValueList    ValueKind = "array"
	ValueGeo     ValueKind = "geo"
)

// GeoPoint is a WGS84 coordinate with an optional radius in kilometers,
// used by geo_distance filters.
type GeoPoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radius_km,omitempty"`
}

// FilterValue is a tagged union carrying a filter operand together with its
// declared type, so operator/type mismatches are caught during compilation
// rather than deep inside evaluation. Construct values through the typed
// helpers (Text, Number, Date, Boolean, List, Geo) rather than literals.
type FilterValue struct {
	Kind    ValueKind     `json:"kind"`
	Text    string        `json:"text,omitempty"`
	Number  float64       `json:"number,omitempty"`
	Date    time.Time     `json:"date,omitempty"`
	Boolean bool          `json:"boolean,omitempty"`
	List    []FilterValue `json:"list,omitempty"`
	Geo     GeoPoint      `json:"geo,omitempty"`
}

// Text builds a text-typed filter value.
func Text(s string) FilterValue { return FilterValue{Kind: ValueText, Text: s} }

// Number builds a number-typed filter value.
func Number(f float64) FilterValue { return FilterValue{Kind: ValueNumber, Number: f} }

// Date builds a date-typed filter value.
func Date(t time.Time) FilterValue { return FilterValue{Kind: ValueDate, Date: t} }

// Boolean builds a boolean-typed filter value.
func Boolean(b bool) FilterValue { return FilterValue{Kind: ValueBoolean, Boolean: b} }

// List builds an array-typed filter value from its elements.
func List(values ...FilterValue) FilterValue { return FilterValue{Kind: ValueList, List: values} }

// Geo builds a geo-typed filter value.
func Geo(lat, lon, radiusKm float64) FilterValue {
	return FilterValue{Kind: ValueGeo, Geo: GeoPoint{Lat: lat, Lon: lon, RadiusKm: radiusKm}}
}

// NoValue builds the empty value used with exists/not_exists.
func NoValue() FilterValue { return FilterValue{Kind: ValueNone} }

// BoolOperator combines the members of a FilterGroup.
type BoolOperator string

const (
	BoolAnd BoolOperator = "and"
	BoolOr  BoolOperator = "or"
)

// SearchFilter is a single declarative filter condition. Nested, when set,
// introduces a boolean sub-tree evaluated in place of flat conjunction.
type SearchFilter struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    FilterValue    `json:"value"`
	Nested   *FilterGroup   `json:"nested,omitempty"`
}

// FilterGroup is an explicit boolean tree of filters. The top level of a
// query is an implicit AND group; sub-groups may switch to OR. Depth is
// bounded during compilation (see compiler.MaxFilterDepth).
type FilterGroup struct {
	Operator BoolOperator   `json:"operator"`
	Filters  []SearchFilter `json:"filters,omitempty"`
	Groups   []FilterGroup  `json:"groups,omitempty"`
}

// SortDirection orders a sort key ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortMode selects how an array-valued field collapses to a single sort key.
// It is only meaningful for array fields.
type SortMode string

const (
	SortModeNone   SortMode = ""
	SortModeMin    SortMode = "min"
	SortModeMax    SortMode = "max"
	SortModeSum    SortMode = "sum"
	SortModeAvg    SortMode = "avg"
	SortModeMedian SortMode = "median"
)

// SortOption is one key of a multi-key sort, applied in list order.
type SortOption struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
	Mode      SortMode      `json:"mode,omitempty"`
}

// Pagination selects the page of results to return. Page and Limit are
// 1-based and must both be >= 1 at execution time.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SearchQuery is the immutable unit of search work. Build instances through
// SearchQueryBuilder; the engine never mutates a query in place.
type SearchQuery struct {
	Query      string             `json:"query,omitempty"`
	Filters    []SearchFilter     `json:"filters,omitempty"`
	Facets     []string           `json:"facets,omitempty"`
	Sort       []SortOption       `json:"sort,omitempty"`
	Pagination Pagination         `json:"pagination"`
	Highlight  bool               `json:"highlight,omitempty"`
	Fuzzy      bool               `json:"fuzzy,omitempty"`
	Boost      map[string]float64 `json:"boost,omitempty"`
}

// FieldCapability names a capability flag of an IndexField, used in
// configuration error messages.
type FieldCapability string

const (
	CapFilterable FieldCapability = "filterable"
	CapSortable   FieldCapability = "sortable"
	CapFacetable  FieldCapability = "facetable"
)

// HasCapability reports whether the field carries the given capability flag.
func HasCapability(f config.IndexField, cap FieldCapability) bool {
	switch cap {
	case CapFilterable:
		return f.Filterable
	case CapSortable:
		return f.Sortable
	case CapFacetable:
		return f.Facetable
	}
	return false
}
