package services

// SearchQueryBuilder assembles a SearchQuery through method chaining. It is
// pure data assembly: no I/O is performed and no validation happens at
// build time. Structural validation (field existence, capability flags,
// operator/type consistency, pagination bounds) is deferred to execution so
// the builder stays composable.
//
// Build may be called more than once; each call returns an independent
// query, so a builder can serve as a template.
type SearchQueryBuilder struct {
	query SearchQuery
}

// NewSearchQueryBuilder returns a builder with page 1 / limit 10 pagination.
func NewSearchQueryBuilder() *SearchQueryBuilder {
	return &SearchQueryBuilder{
		query: SearchQuery{
			Pagination: Pagination{Page: 1, Limit: 10},
		},
	}
}

// SetQuery sets the free-text query string.
func (b *SearchQueryBuilder) SetQuery(text string) *SearchQueryBuilder {
	b.query.Query = text
	return b
}

// AddFilter appends a filter condition. Filters at this level are combined
// with AND during compilation.
func (b *SearchQueryBuilder) AddFilter(field string, operator FilterOperator, value FilterValue) *SearchQueryBuilder {
	b.query.Filters = append(b.query.Filters, SearchFilter{
		Field:    field,
		Operator: operator,
		Value:    value,
	})
	return b
}

// AddNestedFilter appends a boolean sub-group of filters.
func (b *SearchQueryBuilder) AddNestedFilter(group FilterGroup) *SearchQueryBuilder {
	b.query.Filters = append(b.query.Filters, SearchFilter{Nested: &group})
	return b
}

// AddFacet requests facet aggregation for a field. Adding the same field
// twice is a no-op.
func (b *SearchQueryBuilder) AddFacet(field string) *SearchQueryBuilder {
	for _, existing := range b.query.Facets {
		if existing == field {
			return b
		}
	}
	b.query.Facets = append(b.query.Facets, field)
	return b
}

// AddSort appends a sort key. Keys apply in the order they were added.
func (b *SearchQueryBuilder) AddSort(field string, direction SortDirection) *SearchQueryBuilder {
	b.query.Sort = append(b.query.Sort, SortOption{Field: field, Direction: direction})
	return b
}

// AddSortWithMode appends a sort key with an array collapse mode.
func (b *SearchQueryBuilder) AddSortWithMode(field string, direction SortDirection, mode SortMode) *SearchQueryBuilder {
	b.query.Sort = append(b.query.Sort, SortOption{Field: field, Direction: direction, Mode: mode})
	return b
}

// SetPagination sets the requested page and page size.
func (b *SearchQueryBuilder) SetPagination(page, limit int) *SearchQueryBuilder {
	b.query.Pagination = Pagination{Page: page, Limit: limit}
	return b
}

// SetHighlight toggles highlighting of text matches in the results.
func (b *SearchQueryBuilder) SetHighlight(enabled bool) *SearchQueryBuilder {
	b.query.Highlight = enabled
	return b
}

// SetFuzzy toggles typo-tolerant matching of the free-text query.
func (b *SearchQueryBuilder) SetFuzzy(enabled bool) *SearchQueryBuilder {
	b.query.Fuzzy = enabled
	return b
}

// AddBoost sets a per-field relevance weight for text matches.
func (b *SearchQueryBuilder) AddBoost(field string, weight float64) *SearchQueryBuilder {
	if b.query.Boost == nil {
		b.query.Boost = make(map[string]float64)
	}
	b.query.Boost[field] = weight
	return b
}

// Build returns the assembled SearchQuery. All slices and maps are copied
// so later builder calls never mutate a previously returned query.
func (b *SearchQueryBuilder) Build() SearchQuery {
	q := b.query

	if len(b.query.Filters) > 0 {
		q.Filters = make([]SearchFilter, len(b.query.Filters))
		copy(q.Filters, b.query.Filters)
	}
	if len(b.query.Facets) > 0 {
		q.Facets = make([]string, len(b.query.Facets))
		copy(q.Facets, b.query.Facets)
	}
	if len(b.query.Sort) > 0 {
		q.Sort = make([]SortOption, len(b.query.Sort))
		copy(q.Sort, b.query.Sort)
	}
	if len(b.query.Boost) > 0 {
		q.Boost = make(map[string]float64, len(b.query.Boost))
		for field, weight := range b.query.Boost {
			q.Boost[field] = weight
		}
	}

	return q
}
