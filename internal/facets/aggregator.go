// Package facets computes facet aggregations over a filtered result set.
// Facets are always computed before pagination so bucket counts reflect
// every match, not just the returned page.
package facets

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/compiler"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

// numericBucketCount caps the number of equal-width range buckets produced
// for numeric facets.
const numericBucketCount = 5

// geoRingsKm are the ring boundaries for geo distance facets, in km.
var geoRingsKm = []float64{10, 50, 200}

// Aggregate produces one FacetResult per requested field over the full
// filtered result set. Fields that are unknown or not facetable are skipped
// and reported as AggregationError warnings; they never fail the search.
// activeFilters is used to mark buckets already targeted by a filter as
// selected.
func Aggregate(docs []model.Document, facetFields []string, settings *config.IndexSettings, activeFilters []services.SearchFilter) ([]services.FacetResult, []*errors.AggregationError) {
	var results []services.FacetResult
	var warnings []*errors.AggregationError

	selected := selectedValuesByField(activeFilters)

	for _, fieldName := range facetFields {
		field, exists := settings.Field(fieldName)
		if !exists {
			warnings = append(warnings, errors.NewAggregationError(fieldName,
				fmt.Sprintf("field does not exist in index '%s'", settings.Name)))
			continue
		}
		if !services.HasCapability(field, services.CapFacetable) {
			warnings = append(warnings, errors.NewAggregationError(fieldName,
				fmt.Sprintf("field is not %s in index '%s'", services.CapFacetable, settings.Name)))
			continue
		}

		var result services.FacetResult
		var ok bool
		switch field.Type {
		case config.FieldTypeDate:
			result, ok = aggregateDateHistogram(docs, field)
		case config.FieldTypeNumber:
			result, ok = aggregateRanges(docs, field)
		case config.FieldTypeGeo:
			origin, found := geoOrigin(activeFilters, fieldName)
			if !found {
				warnings = append(warnings, errors.NewAggregationError(fieldName,
					"geo facet requires an active geo_distance filter for its origin"))
				continue
			}
			result, ok = aggregateGeoRings(docs, field, origin)
		default:
			// text, keyword, boolean, and array fields all bucket by term.
			result, ok = aggregateTerms(docs, field, selected[fieldName])
		}
		if ok {
			results = append(results, result)
		}
	}

	return results, warnings
}

// aggregateTerms groups documents by the exact value of the field, counting
// occurrences. Array fields contribute one count per element. Buckets are
// ordered by count descending, ties broken by key ascending, so output is
// deterministic.
func aggregateTerms(docs []model.Document, field config.IndexField, selectedKeys map[string]bool) (services.FacetResult, bool) {
	counts := make(map[string]int)

	for _, doc := range docs {
		val, ok := doc[field.Name]
		if !ok || val == nil {
			continue
		}
		for _, key := range termKeys(val) {
			counts[key]++
		}
	}

	buckets := make([]services.FacetBucket, 0, len(counts))
	total := 0
	for key, count := range counts {
		buckets = append(buckets, services.FacetBucket{
			Key:      key,
			Count:    count,
			Selected: selectedKeys[key],
		})
		total += count
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})

	return services.FacetResult{
		Field:   field.Name,
		Name:    field.Name,
		Type:    services.FacetTerms,
		Buckets: buckets,
		Total:   total,
	}, true
}

// aggregateDateHistogram buckets date values at month granularity.
func aggregateDateHistogram(docs []model.Document, field config.IndexField) (services.FacetResult, bool) {
	counts := make(map[string]int)
	starts := make(map[string]time.Time)

	for _, doc := range docs {
		val, ok := doc[field.Name]
		if !ok {
			continue
		}
		t, ok := compiler.ToTime(val)
		if !ok {
			continue
		}
		monthStart := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		key := monthStart.Format("2006-01")
		counts[key]++
		starts[key] = monthStart
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]services.FacetBucket, 0, len(keys))
	total := 0
	for _, key := range keys {
		from := starts[key]
		to := from.AddDate(0, 1, 0)
		buckets = append(buckets, services.FacetBucket{
			Key:   key,
			Count: counts[key],
			From:  timePtr(from),
			To:    timePtr(to),
		})
		total += counts[key]
	}

	return services.FacetResult{
		Field:   field.Name,
		Name:    field.Name,
		Type:    services.FacetDateHistogram,
		Buckets: buckets,
		Total:   total,
	}, true
}

// aggregateRanges partitions numeric values into up to numericBucketCount
// equal-width ranges spanning [min, max] of the observed values.
func aggregateRanges(docs []model.Document, field config.IndexField) (services.FacetResult, bool) {
	var values []float64
	for _, doc := range docs {
		val, ok := doc[field.Name]
		if !ok {
			continue
		}
		if f, ok := compiler.ToFloat64(val); ok {
			values = append(values, f)
		}
	}

	result := services.FacetResult{
		Field:   field.Name,
		Name:    field.Name,
		Type:    services.FacetRange,
		Buckets: []services.FacetBucket{},
	}
	if len(values) == 0 {
		return result, true
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if minVal == maxVal {
		result.Buckets = append(result.Buckets, services.FacetBucket{
			Key:   formatRangeKey(minVal, maxVal),
			Count: len(values),
			Min:   floatPtr(minVal),
			Max:   floatPtr(maxVal),
		})
		result.Total = len(values)
		return result, true
	}

	width := (maxVal - minVal) / numericBucketCount
	counts := make([]int, numericBucketCount)
	for _, v := range values {
		idx := int((v - minVal) / width)
		if idx >= numericBucketCount {
			idx = numericBucketCount - 1 // max value lands in the last bucket
		}
		counts[idx]++
	}

	for i := 0; i < numericBucketCount; i++ {
		lo := minVal + float64(i)*width
		hi := lo + width
		result.Buckets = append(result.Buckets, services.FacetBucket{
			Key:   formatRangeKey(lo, hi),
			Count: counts[i],
			Min:   floatPtr(lo),
			Max:   floatPtr(hi),
		})
		result.Total += counts[i]
	}

	return result, true
}

// aggregateGeoRings buckets documents into distance rings around the origin
// of the query's geo_distance filter.
func aggregateGeoRings(docs []model.Document, field config.IndexField, origin services.GeoPoint) (services.FacetResult, bool) {
	counts := make([]int, len(geoRingsKm)+1)

	for _, doc := range docs {
		point, ok := compiler.ToGeoPoint(doc[field.Name])
		if !ok {
			continue
		}
		dist := compiler.HaversineKm(origin.Lat, origin.Lon, point.Lat, point.Lon)
		idx := len(geoRingsKm)
		for i, boundary := range geoRingsKm {
			if dist <= boundary {
				idx = i
				break
			}
		}
		counts[idx]++
	}

	result := services.FacetResult{
		Field:   field.Name,
		Name:    field.Name,
		Type:    services.FacetGeoDistance,
		Buckets: []services.FacetBucket{},
	}

	prev := 0.0
	for i, boundary := range geoRingsKm {
		result.Buckets = append(result.Buckets, services.FacetBucket{
			Key:   fmt.Sprintf("%g-%gkm", prev, boundary),
			Count: counts[i],
			Min:   floatPtr(prev),
			Max:   floatPtr(boundary),
		})
		result.Total += counts[i]
		prev = boundary
	}
	last := len(geoRingsKm)
	result.Buckets = append(result.Buckets, services.FacetBucket{
		Key:   fmt.Sprintf("%g+km", prev),
		Count: counts[last],
		Min:   floatPtr(prev),
	})
	result.Total += counts[last]

	return result, true
}

// termKeys renders a document value as term bucket keys. Arrays contribute
// one key per element.
func termKeys(val interface{}) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []interface{}:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			keys = append(keys, termKey(item))
		}
		return keys
	default:
		return []string{termKey(val)}
	}
}

func termKey(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// selectedValuesByField walks the active filters (including nested groups)
// and collects the values targeted by equals and in filters, keyed by
// field. These mark facet buckets as selected.
func selectedValuesByField(filters []services.SearchFilter) map[string]map[string]bool {
	selected := make(map[string]map[string]bool)
	var walk func(filters []services.SearchFilter, groups []services.FilterGroup)
	walk = func(filters []services.SearchFilter, groups []services.FilterGroup) {
		for _, f := range filters {
			if f.Nested != nil {
				walk(f.Nested.Filters, f.Nested.Groups)
				continue
			}
			switch f.Operator {
			case services.OpEquals:
				addSelected(selected, f.Field, f.Value)
			case services.OpIn:
				for _, member := range f.Value.List {
					addSelected(selected, f.Field, member)
				}
			}
		}
		for _, g := range groups {
			walk(g.Filters, g.Groups)
		}
	}
	walk(filters, nil)
	return selected
}

func addSelected(selected map[string]map[string]bool, field string, value services.FilterValue) {
	key := ""
	switch value.Kind {
	case services.ValueText:
		key = value.Text
	case services.ValueNumber:
		key = strconv.FormatFloat(value.Number, 'f', -1, 64)
	case services.ValueBoolean:
		key = strconv.FormatBool(value.Boolean)
	default:
		return
	}
	if selected[field] == nil {
		selected[field] = make(map[string]bool)
	}
	selected[field][key] = true
}

// geoOrigin finds the origin point of an active geo_distance filter on the
// given field, searching nested groups too.
func geoOrigin(filters []services.SearchFilter, field string) (services.GeoPoint, bool) {
	for _, f := range filters {
		if f.Nested != nil {
			if origin, ok := geoOrigin(f.Nested.Filters, field); ok {
				return origin, true
			}
			for _, g := range f.Nested.Groups {
				if origin, ok := geoOrigin(g.Filters, field); ok {
					return origin, true
				}
			}
			continue
		}
		if f.Field == field && f.Operator == services.OpGeoDistance && f.Value.Kind == services.ValueGeo {
			return f.Value.Geo, true
		}
	}
	return services.GeoPoint{}, false
}

func formatRangeKey(lo, hi float64) string {
	return fmt.Sprintf("%s-%s",
		strconv.FormatFloat(lo, 'f', -1, 64),
		strconv.FormatFloat(hi, 'f', -1, 64))
}

func floatPtr(f float64) *float64    { return &f }
func timePtr(t time.Time) *time.Time { return &t }
