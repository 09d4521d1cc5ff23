package compiler

import (
	"math"
	"strconv"
	"time"

	"github.com/rmachado/go-faceted-search/services"
)

// valueEquals compares a raw document value against a typed filter operand.
// Array document fields match when any element matches.
func valueEquals(docVal interface{}, filterVal services.FilterValue) bool {
	if docArray, isArray := docVal.([]interface{}); isArray {
		for _, item := range docArray {
			if scalarEquals(item, filterVal) {
				return true
			}
		}
		return false
	}
	if docStrArray, isStrArray := docVal.([]string); isStrArray {
		for _, item := range docStrArray {
			if scalarEquals(item, filterVal) {
				return true
			}
		}
		return false
	}
	return scalarEquals(docVal, filterVal)
}

func scalarEquals(docVal interface{}, filterVal services.FilterValue) bool {
	switch filterVal.Kind {
	case services.ValueText:
		if docStr, ok := docVal.(string); ok {
			return docStr == filterVal.Text
		}
	case services.ValueNumber:
		if docFloat, ok := ToFloat64(docVal); ok {
			return docFloat == filterVal.Number
		}
	case services.ValueDate:
		if docTime, ok := ToTime(docVal); ok {
			return docTime.Equal(filterVal.Date)
		}
	case services.ValueBoolean:
		if docBool, ok := docVal.(bool); ok {
			return docBool == filterVal.Boolean
		}
	}
	return false
}

// compareOrdered applies an ordering operator between a raw document value
// and a number- or date-typed operand. Array document fields satisfy the
// comparison when any element does.
func compareOrdered(docVal interface{}, filterVal services.FilterValue, op services.FilterOperator) bool {
	if docArray, isArray := docVal.([]interface{}); isArray {
		for _, item := range docArray {
			if compareOrderedScalar(item, filterVal, op) {
				return true
			}
		}
		return false
	}
	return compareOrderedScalar(docVal, filterVal, op)
}

func compareOrderedScalar(docVal interface{}, filterVal services.FilterValue, op services.FilterOperator) bool {
	switch filterVal.Kind {
	case services.ValueNumber:
		docFloat, ok := ToFloat64(docVal)
		if !ok {
			return false
		}
		switch op {
		case services.OpGreaterThan:
			return docFloat > filterVal.Number
		case services.OpGreaterThanOrEqual:
			return docFloat >= filterVal.Number
		case services.OpLessThan:
			return docFloat < filterVal.Number
		case services.OpLessThanOrEqual:
			return docFloat <= filterVal.Number
		}
	case services.ValueDate:
		docTime, ok := ToTime(docVal)
		if !ok {
			return false
		}
		switch op {
		case services.OpGreaterThan:
			return docTime.After(filterVal.Date)
		case services.OpGreaterThanOrEqual:
			return docTime.After(filterVal.Date) || docTime.Equal(filterVal.Date)
		case services.OpLessThan:
			return docTime.Before(filterVal.Date)
		case services.OpLessThanOrEqual:
			return docTime.Before(filterVal.Date) || docTime.Equal(filterVal.Date)
		}
	}
	return false
}

// anyString applies match to the string representation(s) of a document
// value: each element for arrays, the value itself for strings.
func anyString(docVal interface{}, match func(string) bool) bool {
	switch v := docVal.(type) {
	case string:
		return match(v)
	case []string:
		for _, item := range v {
			if match(item) {
				return true
			}
		}
	case []interface{}:
		for _, item := range v {
			if itemStr, ok := item.(string); ok && match(itemStr) {
				return true
			}
		}
	}
	return false
}

// ToFloat64 converts various numeric representations to float64.
func ToFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ToTime converts various time representations to time.Time.
func ToTime(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		formats := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, v); err == nil {
				return t, true
			}
		}
	case int64:
		// Unix timestamp
		return time.Unix(v, 0), true
	case float64:
		// Unix timestamp as float
		return time.Unix(int64(v), 0), true
	}
	return time.Time{}, false
}

// ToGeoPoint converts a document geo value. Accepted shapes:
// map with "lat"/"lon" keys, or a two-element [lat, lon] array.
func ToGeoPoint(val interface{}) (services.GeoPoint, bool) {
	switch v := val.(type) {
	case map[string]interface{}:
		lat, latOk := ToFloat64(v["lat"])
		lon, lonOk := ToFloat64(v["lon"])
		if latOk && lonOk {
			return services.GeoPoint{Lat: lat, Lon: lon}, true
		}
	case []interface{}:
		if len(v) == 2 {
			lat, latOk := ToFloat64(v[0])
			lon, lonOk := ToFloat64(v[1])
			if latOk && lonOk {
				return services.GeoPoint{Lat: lat, Lon: lon}, true
			}
		}
	case []float64:
		if len(v) == 2 {
			return services.GeoPoint{Lat: v[0], Lon: v[1]}, true
		}
	case services.GeoPoint:
		return v, true
	}
	return services.GeoPoint{}, false
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
