package search

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/compiler"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/services"
)

// validateSort checks every sort option against the schema before any store
// call: the field must exist and be sortable, and a collapse mode is only
// legal for array fields.
func validateSort(options []services.SortOption, settings *config.IndexSettings) error {
	for _, opt := range options {
		field, exists := settings.Field(opt.Field)
		if !exists {
			return errors.NewConfigError(opt.Field, "sort field does not exist in index")
		}
		if !services.HasCapability(field, services.CapSortable) {
			return errors.NewConfigError(opt.Field,
				fmt.Sprintf("field is not %s", services.CapSortable))
		}

		switch opt.Direction {
		case services.SortAsc, services.SortDesc, "":
		default:
			return errors.NewConfigError(opt.Field,
				fmt.Sprintf("unknown sort direction '%s'", opt.Direction))
		}

		switch opt.Mode {
		case services.SortModeNone:
		case services.SortModeMin, services.SortModeMax, services.SortModeSum,
			services.SortModeAvg, services.SortModeMedian:
			if field.Type != config.FieldTypeArray {
				return errors.NewConfigError(opt.Field,
					fmt.Sprintf("sort mode '%s' is only valid for array fields, field type is '%s'", opt.Mode, field.Type))
			}
		default:
			return errors.NewConfigError(opt.Field,
				fmt.Sprintf("unknown sort mode '%s'", opt.Mode))
		}
	}
	return nil
}

// sortHits applies a stable multi-key sort in option order. Documents
// missing a sort field order after documents that have it, regardless of
// direction. Fully tied hits fall back to document ID ascending so result
// order, and page membership, never depends on store iteration order.
// Options must already be validated.
func sortHits(hits []scoredHit, options []services.SortOption, settings *config.IndexSettings) {
	sort.SliceStable(hits, func(i, j int) bool {
		for _, opt := range options {
			cmp := compareByOption(hits[i], hits[j], opt)
			if cmp != 0 {
				if opt.Direction == services.SortDesc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return hits[i].docID < hits[j].docID
	})
}

// compareByOption compares two hits on one sort key, returning -1, 0, or 1
// in ascending terms. Missing values compare as larger than present ones in
// ascending order and are swapped back for descending, so they always land
// at the end.
func compareByOption(a, b scoredHit, opt services.SortOption) int {
	aKey, aOk := sortKey(a, opt)
	bKey, bOk := sortKey(b, opt)

	if !aOk && !bOk {
		return 0
	}
	if !aOk {
		if opt.Direction == services.SortDesc {
			return -1
		}
		return 1
	}
	if !bOk {
		if opt.Direction == services.SortDesc {
			return 1
		}
		return -1
	}

	return aKey.compare(bKey)
}

// sortValue is a normalized sort key: numeric when both sides are numeric,
// falling back to string ordering otherwise.
type sortValue struct {
	num    float64
	str    string
	isNum  bool
	isText bool
}

func (v sortValue) compare(other sortValue) int {
	if v.isNum && other.isNum {
		switch {
		case v.num < other.num:
			return -1
		case v.num > other.num:
			return 1
		}
		return 0
	}

	aStr, bStr := v.str, other.str
	if v.isNum {
		aStr = strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	if other.isNum {
		bStr = strconv.FormatFloat(other.num, 'f', -1, 64)
	}
	switch {
	case aStr < bStr:
		return -1
	case aStr > bStr:
		return 1
	}
	return 0
}

// sortKey extracts the sort key of one hit for one option. Dates normalize
// to their unix timestamp so they order numerically.
func sortKey(hit scoredHit, opt services.SortOption) (sortValue, bool) {
	raw, ok := hit.doc[opt.Field]
	if !ok || raw == nil {
		return sortValue{}, false
	}

	if opt.Mode != services.SortModeNone {
		return collapseArray(raw, opt.Mode)
	}

	return scalarSortValue(raw)
}

func scalarSortValue(raw interface{}) (sortValue, bool) {
	if t, ok := compiler.ToTime(raw); ok {
		if _, isNum := raw.(float64); !isNum {
			// Avoid treating plain numbers as unix timestamps.
			if _, isInt := raw.(int64); !isInt {
				return sortValue{num: float64(t.UnixNano()), isNum: true}, true
			}
		}
	}
	if f, ok := compiler.ToFloat64(raw); ok {
		return sortValue{num: f, isNum: true}, true
	}
	if s, ok := raw.(string); ok {
		return sortValue{str: s, isText: true}, true
	}
	return sortValue{}, false
}

// collapseArray reduces an array field to a single numeric key using the
// requested mode. Non-numeric elements are ignored; a document whose array
// has no numeric elements sorts as missing.
func collapseArray(raw interface{}, mode services.SortMode) (sortValue, bool) {
	var nums []float64
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if f, ok := compiler.ToFloat64(item); ok {
				nums = append(nums, f)
			}
		}
	case []float64:
		nums = v
	case []string:
		for _, item := range v {
			if f, ok := compiler.ToFloat64(item); ok {
				nums = append(nums, f)
			}
		}
	default:
		if f, ok := compiler.ToFloat64(raw); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return sortValue{}, false
	}

	var key float64
	switch mode {
	case services.SortModeMin:
		key = nums[0]
		for _, n := range nums[1:] {
			if n < key {
				key = n
			}
		}
	case services.SortModeMax:
		key = nums[0]
		for _, n := range nums[1:] {
			if n > key {
				key = n
			}
		}
	case services.SortModeSum:
		for _, n := range nums {
			key += n
		}
	case services.SortModeAvg:
		for _, n := range nums {
			key += n
		}
		key /= float64(len(nums))
	case services.SortModeMedian:
		sorted := make([]float64, len(nums))
		copy(sorted, nums)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			key = (sorted[mid-1] + sorted[mid]) / 2
		} else {
			key = sorted[mid]
		}
	default:
		return sortValue{}, false
	}

	return sortValue{num: key, isNum: true}, true
}
