package entitycollection

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"time"
)

// coerce converts a criterion value to V.
// Accepted are values of type V, lossless numeric conversions (criteria decoded from JSON carry float64),
// RFC 3339 strings for time.Time and strings for types implementing encoding.TextUnmarshaler.
func coerce[V any](value any) (V, error) {
	var zero V

	if v, ok := value.(V); ok {
		return v, nil
	}

	if value == nil {
		return zero, fmt.Errorf("nil is not a %T", zero)
	}

	target := reflect.TypeFor[V]()
	rv := reflect.ValueOf(value)

	if s, ok := value.(string); ok {
		if target == timeType {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return zero, err
			}

			return any(t).(V), nil
		}

		if u, ok := any(&zero).(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(s)); err != nil {
				return zero, err
			}

			return zero, nil
		}

		if target.Kind() == reflect.String {
			return rv.Convert(target).Interface().(V), nil
		}
	}

	if isNumericKind(rv.Kind()) && isNumericKind(target.Kind()) {
		converted, ok := convertNumber(rv, target)
		if !ok {
			return zero, fmt.Errorf("%v does not fit into %s", value, target)
		}

		return converted.Interface().(V), nil
	}

	return zero, fmt.Errorf("%T is not a %s", value, target)
}

func coerceSlice[V any](value any) ([]V, error) {
	if vs, ok := value.([]V); ok {
		return vs, nil
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%T is not a list", value)
	}

	out := make([]V, 0, rv.Len())

	for i := range rv.Len() {
		v, err := coerce[V](rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out = append(out, v)
	}

	return out, nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// convertNumber converts v to target if the value survives the round trip unchanged.
func convertNumber(v reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if v.CanFloat() {
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return reflect.Value{}, false
		}
	}

	if !v.CanConvert(target) {
		return reflect.Value{}, false
	}

	converted := v.Convert(target)
	back := converted.Convert(v.Type())

	if !back.Equal(v) {
		return reflect.Value{}, false
	}

	if v.CanFloat() && converted.CanInt() && (v.Float() < math.MinInt64 || v.Float() > math.MaxInt64) {
		return reflect.Value{}, false
	}

	if v.CanFloat() && converted.CanUint() && v.Float() < 0 {
		return reflect.Value{}, false
	}

	if v.CanInt() && converted.CanUint() && v.Int() < 0 {
		return reflect.Value{}, false
	}

	if v.CanUint() && converted.CanInt() && converted.Int() < 0 {
		return reflect.Value{}, false
	}

	return converted, true
}
