package entitycollection

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ValueKind is the comparison kind of a property.
type ValueKind int

const (
	StringKind ValueKind = iota + 1
	DateKind
	NumberKind
)

func (vk ValueKind) String() string {
	switch vk {
	case StringKind:
		return "string"
	case DateKind:
		return "date"
	case NumberKind:
		return "number"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(vk))
	}
}

// Number is the set of Go types a NumberProperty can read.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Property is a named, typed, comparable property of an entity kind.
//
// Null policy: a nil value sorts before every non-nil value and two nil values are equal.
// The native order clause mirrors this with NULLS FIRST (ascending) and NULLS LAST (descending).
type Property[E any] struct {
	name    string
	column  string
	kind    ValueKind
	compare func(a, b E) int
}

// StringProperty declares a string property read by get; a nil result is a null.
// Strings compare byte-wise.
func StringProperty[E any](name string, get func(E) *string) Property[E] {
	return Property[E]{
		name:   name,
		column: name,
		kind:   StringKind,
		compare: func(a, b E) int {
			return compareNullable(get(a), get(b), strings.Compare)
		},
	}
}

// DateProperty declares a date property read by get; a nil result is a null.
// Dates compare chronologically, independent of their location.
func DateProperty[E any](name string, get func(E) *time.Time) Property[E] {
	return Property[E]{
		name:   name,
		column: name,
		kind:   DateKind,
		compare: func(a, b E) int {
			return compareNullable(get(a), get(b), func(x, y time.Time) int { return x.Compare(y) })
		},
	}
}

// NumberProperty declares a numeric property read by get; a nil result is a null.
// Numbers compare by sign-safe comparison, so large magnitudes cannot overflow.
func NumberProperty[E any, N Number](name string, get func(E) *N) Property[E] {
	return Property[E]{
		name:   name,
		column: name,
		kind:   NumberKind,
		compare: func(a, b E) int {
			return compareNullable(get(a), get(b), cmp.Compare[N])
		},
	}
}

// WithColumn returns a copy of the property stored in the given column (default: the property name).
func (p Property[E]) WithColumn(column string) Property[E] {
	p.column = column
	return p
}

func (p Property[E]) Name() string {
	return p.name
}

func (p Property[E]) Column() string {
	return p.column
}

func (p Property[E]) Kind() ValueKind {
	return p.kind
}

func compareNullable[T any](a, b *T, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compare(*a, *b)
	}
}

/***** accessor convention *****/

var timeType = reflect.TypeOf(time.Time{})

// ReflectedProperty declares a property of the given kind whose value is found by accessor convention
// on the entity type: an exported method GetName() or Name(), or an exported field Name,
// where Name is the property name with its first letter upper-cased.
// The accessor's type must match kind (pointers are treated as nullable); otherwise ErrPropertyKindMismatch is returned.
func ReflectedProperty[E any](name string, kind ValueKind) (Property[E], error) {
	entityType := reflect.TypeFor[E]()
	exported := upperFirst(name)

	read, valueType, err := findAccessor(entityType, exported)
	if err != nil {
		return Property[E]{}, fmt.Errorf("%w: %q on %s: %w", ErrUnknownProperty, name, entityType, err)
	}

	base := valueType
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if !kindAccepts(kind, base) {
		return Property[E]{}, fmt.Errorf(
			"%w: %q on %s is %s, declared as %s",
			ErrPropertyKindMismatch, name, entityType, valueType, kind,
		)
	}

	value := func(e E) (reflect.Value, bool) {
		rv := reflect.ValueOf(any(e))
		if !rv.IsValid() {
			return reflect.Value{}, false
		}

		v, ok := read(rv)
		if !ok {
			return reflect.Value{}, false
		}

		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}

			v = v.Elem()
		}

		return v, true
	}

	p := Property[E]{name: name, column: name, kind: kind}

	switch kind {
	case StringKind:
		p.compare = func(a, b E) int {
			return compareNullable(reflectedAs(value, a, reflect.Value.String), reflectedAs(value, b, reflect.Value.String), strings.Compare)
		}

	case DateKind:
		asTime := func(v reflect.Value) time.Time { return v.Interface().(time.Time) }
		p.compare = func(a, b E) int {
			return compareNullable(reflectedAs(value, a, asTime), reflectedAs(value, b, asTime), func(x, y time.Time) int { return x.Compare(y) })
		}

	case NumberKind:
		p.compare = func(a, b E) int {
			return compareReflectedNumbers(value, a, b)
		}
	}

	return p, nil
}

func reflectedAs[E any, T any](value func(E) (reflect.Value, bool), e E, convert func(reflect.Value) T) *T {
	v, ok := value(e)
	if !ok {
		return nil
	}

	converted := convert(v)

	return &converted
}

func compareReflectedNumbers[E any](value func(E) (reflect.Value, bool), a, b E) int {
	va, okA := value(a)
	vb, okB := value(b)

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}

	switch {
	case va.CanInt() && vb.CanInt():
		return cmp.Compare(va.Int(), vb.Int())
	case va.CanUint() && vb.CanUint():
		return cmp.Compare(va.Uint(), vb.Uint())
	case va.CanInt() && vb.CanUint():
		if va.Int() < 0 {
			return -1
		}

		return cmp.Compare(uint64(va.Int()), vb.Uint())
	case va.CanUint() && vb.CanInt():
		if vb.Int() < 0 {
			return 1
		}

		return cmp.Compare(va.Uint(), uint64(vb.Int()))
	default:
		return cmp.Compare(asFloat(va), asFloat(vb))
	}
}

func asFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func kindAccepts(kind ValueKind, t reflect.Type) bool {
	switch kind {
	case StringKind:
		return t.Kind() == reflect.String
	case DateKind:
		return t == timeType
	case NumberKind:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

type accessor func(entity reflect.Value) (reflect.Value, bool)

func findAccessor(entityType reflect.Type, exported string) (accessor, reflect.Type, error) {
	for _, methodName := range []string{"Get" + exported, exported} {
		method, ok := entityType.MethodByName(methodName)
		if !ok || method.Type.NumIn() != 1 || method.Type.NumOut() != 1 {
			continue
		}

		index := method.Index

		return func(entity reflect.Value) (reflect.Value, bool) {
			if entity.Kind() == reflect.Pointer && entity.IsNil() {
				return reflect.Value{}, false
			}

			return entity.Method(index).Call(nil)[0], true
		}, method.Type.Out(0), nil
	}

	structType := entityType
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	if structType.Kind() == reflect.Struct {
		if field, ok := structType.FieldByName(exported); ok && field.IsExported() {
			index := field.Index

			return func(entity reflect.Value) (reflect.Value, bool) {
				if entity.Kind() == reflect.Pointer {
					if entity.IsNil() {
						return reflect.Value{}, false
					}

					entity = entity.Elem()
				}

				return entity.FieldByIndex(index), true
			}, field.Type, nil
		}
	}

	return nil, nil, fmt.Errorf("no method Get%[1]s()/%[1]s() or field %[1]s", exported)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
