// Package compiler turns declarative search filters into executable
// predicates over documents. Compilation validates every filter against the
// index schema and fails fast with a typed error before any store call.
package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

// MaxFilterDepth bounds recursion through nested filter groups.
const MaxFilterDepth = 10

// maxRegexLength bounds regex filter patterns. Go's regexp is RE2 and runs
// in linear time, so pattern length is the remaining resource to cap.
const maxRegexLength = 1000

// Compile translates the top-level filter list of a query into a single
// predicate. Top-level filters combine with AND; a filter's Nested group
// describes its own boolean sub-tree. An empty filter list compiles to a
// predicate matching everything.
func Compile(filters []services.SearchFilter, settings *config.IndexSettings) (services.Predicate, error) {
	group := services.FilterGroup{Operator: services.BoolAnd, Filters: filters}
	return compileGroup(group, settings, 1)
}

func compileGroup(group services.FilterGroup, settings *config.IndexSettings, depth int) (services.Predicate, error) {
	if depth > MaxFilterDepth {
		return nil, errors.NewCompilationError(
			fmt.Sprintf("filter nesting exceeds maximum depth of %d", MaxFilterDepth))
	}

	operator := group.Operator
	switch operator {
	case services.BoolAnd, services.BoolOr:
	case "":
		operator = services.BoolAnd
	default:
		return nil, errors.NewCompilationError(
			fmt.Sprintf("unknown group operator '%s'", group.Operator))
	}

	predicates := make([]services.Predicate, 0, len(group.Filters)+len(group.Groups))

	for _, filter := range group.Filters {
		if filter.Nested != nil {
			pred, err := compileGroup(*filter.Nested, settings, depth+1)
			if err != nil {
				return nil, err
			}
			predicates = append(predicates, pred)
			continue
		}
		pred, err := compileFilter(filter, settings)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, pred)
	}

	for _, sub := range group.Groups {
		pred, err := compileGroup(sub, settings, depth+1)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, pred)
	}

	if len(predicates) == 0 {
		return func(model.Document) bool { return true }, nil
	}

	// Predicates evaluate in declaration order so cheap conditions placed
	// first short-circuit the rest.
	if operator == services.BoolAnd {
		return func(doc model.Document) bool {
			for _, pred := range predicates {
				if !pred(doc) {
					return false
				}
			}
			return true
		}, nil
	}
	return func(doc model.Document) bool {
		for _, pred := range predicates {
			if pred(doc) {
				return true
			}
		}
		return false
	}, nil
}

// compileFilter validates a single leaf filter against the schema and
// produces its predicate. The switch over operators is exhaustive: a new
// operator constant will fall through to the trailing error until it is
// handled here.
func compileFilter(filter services.SearchFilter, settings *config.IndexSettings) (services.Predicate, error) {
	if !filter.Operator.Valid() {
		return nil, errors.NewConfigError(filter.Field,
			fmt.Sprintf("unknown operator '%s'", filter.Operator))
	}

	field, exists := settings.Field(filter.Field)
	if !exists {
		return nil, errors.NewConfigError(filter.Field, "field does not exist in index")
	}
	if !services.HasCapability(field, services.CapFilterable) {
		return nil, errors.NewConfigError(filter.Field,
			fmt.Sprintf("field is not %s", services.CapFilterable))
	}

	value := filter.Value
	fieldName := filter.Field

	switch filter.Operator {
	case services.OpEquals:
		if err := checkScalarValue(fieldName, value); err != nil {
			return nil, err
		}
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			return ok && valueEquals(docVal, value)
		}, nil

	case services.OpNotEquals:
		if err := checkScalarValue(fieldName, value); err != nil {
			return nil, err
		}
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			return !ok || !valueEquals(docVal, value)
		}, nil

	case services.OpContains, services.OpNotContains, services.OpStartsWith, services.OpEndsWith:
		if value.Kind != services.ValueText {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator '%s' requires a text value, got '%s'", filter.Operator, value.Kind))
		}
		// String matching is case-insensitive throughout.
		needle := strings.ToLower(value.Text)
		var match func(s string) bool
		switch filter.Operator {
		case services.OpStartsWith:
			match = func(s string) bool { return strings.HasPrefix(s, needle) }
		case services.OpEndsWith:
			match = func(s string) bool { return strings.HasSuffix(s, needle) }
		default:
			match = func(s string) bool { return strings.Contains(s, needle) }
		}
		negate := filter.Operator == services.OpNotContains
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			if !ok {
				return negate
			}
			matched := anyString(docVal, func(s string) bool { return match(strings.ToLower(s)) })
			if negate {
				return !matched
			}
			return matched
		}, nil

	case services.OpGreaterThan, services.OpGreaterThanOrEqual, services.OpLessThan, services.OpLessThanOrEqual:
		if !field.Type.Orderable() {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator '%s' requires a number or date field, got '%s'", filter.Operator, field.Type))
		}
		if value.Kind != services.ValueNumber && value.Kind != services.ValueDate {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator '%s' requires a number or date value, got '%s'", filter.Operator, value.Kind))
		}
		op := filter.Operator
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			return ok && compareOrdered(docVal, value, op)
		}, nil

	case services.OpBetween:
		lo, hi, err := rangeBounds(fieldName, value)
		if err != nil {
			return nil, err
		}
		if !field.Type.Orderable() {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator 'between' requires a number or date field, got '%s'", field.Type))
		}
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			if !ok {
				return false
			}
			return compareOrdered(docVal, lo, services.OpGreaterThanOrEqual) &&
				compareOrdered(docVal, hi, services.OpLessThanOrEqual)
		}, nil

	case services.OpIn, services.OpNotIn:
		if value.Kind != services.ValueList {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator '%s' requires an array value, got '%s'", filter.Operator, value.Kind))
		}
		members := value.List
		negate := filter.Operator == services.OpNotIn
		// An empty set matches nothing for 'in' and everything for 'not_in'.
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			matched := false
			if ok {
				for _, member := range members {
					if valueEquals(docVal, member) {
						matched = true
						break
					}
				}
			}
			if negate {
				return !matched
			}
			return matched
		}, nil

	case services.OpExists:
		return func(doc model.Document) bool { return doc.Has(fieldName) }, nil

	case services.OpNotExists:
		return func(doc model.Document) bool { return !doc.Has(fieldName) }, nil

	case services.OpRegex:
		if value.Kind != services.ValueText {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator 'regex' requires a text value, got '%s'", value.Kind))
		}
		if len(value.Text) > maxRegexLength {
			return nil, errors.NewCompilationError(
				fmt.Sprintf("regex pattern for field '%s' exceeds %d characters", fieldName, maxRegexLength))
		}
		re, err := regexp.Compile(value.Text)
		if err != nil {
			return nil, errors.NewCompilationError(
				fmt.Sprintf("invalid regex pattern for field '%s': %v", fieldName, err))
		}
		return func(doc model.Document) bool {
			docVal, ok := doc[fieldName]
			if !ok {
				return false
			}
			return anyString(docVal, re.MatchString)
		}, nil

	case services.OpGeoDistance:
		if field.Type != config.FieldTypeGeo {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator 'geo_distance' requires a geo field, got '%s'", field.Type))
		}
		if value.Kind != services.ValueGeo {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator 'geo_distance' requires a geo value, got '%s'", value.Kind))
		}
		if value.Geo.RadiusKm <= 0 {
			return nil, errors.NewConfigError(fieldName, "geo_distance radius must be positive")
		}
		origin := value.Geo
		return func(doc model.Document) bool {
			point, ok := ToGeoPoint(doc[fieldName])
			if !ok {
				return false
			}
			return HaversineKm(origin.Lat, origin.Lon, point.Lat, point.Lon) <= origin.RadiusKm
		}, nil

	case services.OpGeoBoundingBox:
		if field.Type != config.FieldTypeGeo {
			return nil, errors.NewConfigError(fieldName,
				fmt.Sprintf("operator 'geo_bounding_box' requires a geo field, got '%s'", field.Type))
		}
		if value.Kind != services.ValueList || len(value.List) != 2 ||
			value.List[0].Kind != services.ValueGeo || value.List[1].Kind != services.ValueGeo {
			return nil, errors.NewConfigError(fieldName,
				"operator 'geo_bounding_box' requires an array of two geo points (top-left, bottom-right)")
		}
		topLeft := value.List[0].Geo
		bottomRight := value.List[1].Geo
		return func(doc model.Document) bool {
			point, ok := ToGeoPoint(doc[fieldName])
			if !ok {
				return false
			}
			return point.Lat <= topLeft.Lat && point.Lat >= bottomRight.Lat &&
				point.Lon >= topLeft.Lon && point.Lon <= bottomRight.Lon
		}, nil
	}

	return nil, errors.NewConfigError(fieldName,
		fmt.Sprintf("operator '%s' is not handled by the compiler", filter.Operator))
}

// checkScalarValue rejects filter operands that make no sense for scalar
// equality comparison.
func checkScalarValue(fieldName string, value services.FilterValue) error {
	switch value.Kind {
	case services.ValueText, services.ValueNumber, services.ValueDate, services.ValueBoolean:
		return nil
	}
	return errors.NewConfigError(fieldName,
		fmt.Sprintf("operator requires a scalar value, got '%s'", value.Kind))
}

// rangeBounds validates a between operand: a two-element list of the same
// comparable kind, ordered low to high.
func rangeBounds(fieldName string, value services.FilterValue) (lo, hi services.FilterValue, err error) {
	if value.Kind != services.ValueList || len(value.List) != 2 {
		return lo, hi, errors.NewConfigError(fieldName,
			"operator 'between' requires a two-element array value")
	}
	lo, hi = value.List[0], value.List[1]
	if lo.Kind != hi.Kind {
		return lo, hi, errors.NewConfigError(fieldName,
			fmt.Sprintf("'between' bounds must share a type, got '%s' and '%s'", lo.Kind, hi.Kind))
	}
	switch lo.Kind {
	case services.ValueNumber:
		if lo.Number > hi.Number {
			return lo, hi, errors.NewConfigError(fieldName,
				"'between' lower bound is greater than upper bound")
		}
	case services.ValueDate:
		if lo.Date.After(hi.Date) {
			return lo, hi, errors.NewConfigError(fieldName,
				"'between' lower bound is after upper bound")
		}
	default:
		return lo, hi, errors.NewConfigError(fieldName,
			fmt.Sprintf("'between' bounds must be numbers or dates, got '%s'", lo.Kind))
	}
	return lo, hi, nil
}
