package entitycollection

import (
	"fmt"
	"reflect"
	"slices"
)

// Association describes a to-one relation of an entity kind that can be eagerly joined with Collection.With.
type Association[E any] struct {
	name          string
	table         string
	localColumn   string
	foreignColumn string
	columns       []string
	scanDest      func(E) []any
}

// ToOne declares a to-one association named name.
// The association table is joined with LEFT JOIN on alias.localColumn = name.foreignColumn,
// its columns are selected in the given order and scanned into the destinations returned by scanDest.
func ToOne[E any](
	name string,
	table string,
	localColumn string,
	foreignColumn string,
	columns []string,
	scanDest func(E) []any,
) Association[E] {

	return Association[E]{
		name:          name,
		table:         table,
		localColumn:   localColumn,
		foreignColumn: foreignColumn,
		columns:       slices.Clone(columns),
		scanDest:      scanDest,
	}
}

func (a Association[E]) Name() string {
	return a.name
}

/***** Kind *****/

// Kind describes how entities of type E are stored and hydrated.
// It is immutable and cheap to copy.
type Kind[E any] struct {
	table        string
	alias        string
	columns      []string
	newEntity    func() E
	scanDest     func(E) []any
	identity     func(E) any
	associations map[string]Association[E]
	entityType   reflect.Type
}

// KindOption defines a functional option for configuring a Kind.
type KindOption[E any] func(*Kind[E]) error

// WithAlias sets the query alias of the root table (default: the table name).
func WithAlias[E any](alias string) KindOption[E] {
	return func(k *Kind[E]) error {
		if alias == "" {
			return fmt.Errorf("%w: empty alias", ErrInvalidKind)
		}

		k.alias = alias

		return nil
	}
}

// WithIdentity sets the function returning the identity of an entity.
// Only kinds with an identity are tracked by the session's identity map.
func WithIdentity[E any](identity func(E) any) KindOption[E] {
	return func(k *Kind[E]) error {
		if identity == nil {
			return fmt.Errorf("%w: nil identity function", ErrInvalidKind)
		}

		k.identity = identity

		return nil
	}
}

// WithAssociation registers a to-one association.
func WithAssociation[E any](association Association[E]) KindOption[E] {
	return func(k *Kind[E]) error {
		if _, ok := k.associations[association.name]; ok {
			return fmt.Errorf("%w: association %q", ErrDuplicateDeclaration, association.name)
		}

		k.associations[association.name] = association

		return nil
	}
}

// NewKind creates a Kind for table with the given columns.
// newEntity must return a fresh, non-nil entity and scanDest the scan destinations for the columns, in column order.
func NewKind[E any](
	table string,
	columns []string,
	newEntity func() E,
	scanDest func(E) []any,
	options ...KindOption[E],
) (Kind[E], error) {

	if table == "" {
		return Kind[E]{}, fmt.Errorf("%w: empty table name", ErrInvalidKind)
	}

	if len(columns) == 0 {
		return Kind[E]{}, fmt.Errorf("%w: no columns for table %q", ErrInvalidKind, table)
	}

	if newEntity == nil || scanDest == nil {
		return Kind[E]{}, fmt.Errorf("%w: factory and scan destinations are required", ErrInvalidKind)
	}

	k := Kind[E]{
		table:        table,
		alias:        table,
		columns:      slices.Clone(columns),
		newEntity:    newEntity,
		scanDest:     scanDest,
		associations: make(map[string]Association[E]),
	}

	if err := k.checkColumns(columns, len(scanDest(newEntity()))); err != nil {
		return Kind[E]{}, err
	}

	sample := any(newEntity())
	if isNil(sample) {
		return Kind[E]{}, fmt.Errorf("%w: factory returned nil", ErrInvalidKind)
	}

	k.entityType = reflect.TypeOf(sample)

	for _, option := range options {
		if err := option(&k); err != nil {
			return Kind[E]{}, err
		}
	}

	for name, association := range k.associations {
		if err := k.checkAssociation(name, association); err != nil {
			return Kind[E]{}, err
		}
	}

	return k, nil
}

func (k Kind[E]) checkColumns(columns []string, destinations int) error {
	seen := make(map[string]struct{}, len(columns))

	for _, column := range columns {
		if column == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidKind)
		}

		if _, ok := seen[column]; ok {
			return fmt.Errorf("%w: column %q", ErrDuplicateDeclaration, column)
		}

		seen[column] = struct{}{}
	}

	if destinations != len(columns) {
		return fmt.Errorf(
			"%w: %d columns but %d scan destinations for table %q",
			ErrInvalidKind, len(columns), destinations, k.table,
		)
	}

	return nil
}

func (k Kind[E]) checkAssociation(name string, association Association[E]) error {
	switch {
	case name == "" || association.table == "":
		return fmt.Errorf("%w: association needs a name and a table", ErrInvalidKind)

	case name == k.alias:
		return fmt.Errorf("%w: association %q clashes with the root alias", ErrInvalidKind, name)

	case !slices.Contains(k.columns, association.localColumn):
		return fmt.Errorf("%w: association %q joins on unknown column %q", ErrInvalidKind, name, association.localColumn)

	case association.foreignColumn == "" || len(association.columns) == 0 || association.scanDest == nil:
		return fmt.Errorf("%w: association %q is incomplete", ErrInvalidKind, name)

	case len(association.scanDest(k.newEntity())) != len(association.columns):
		return fmt.Errorf("%w: association %q has mismatching scan destinations", ErrInvalidKind, name)
	}

	return nil
}

// Table returns the root table name.
func (k Kind[E]) Table() string {
	return k.table
}

// Alias returns the alias used to qualify the root table's columns in queries.
func (k Kind[E]) Alias() string {
	return k.alias
}

// Columns returns a copy of the root table columns.
func (k Kind[E]) Columns() []string {
	return slices.Clone(k.columns)
}

// Name returns a human-readable name of the entity type.
func (k Kind[E]) Name() string {
	if k.entityType == nil {
		return "<undeclared>"
	}

	return k.entityType.String()
}

// Accepts reports whether entity is an instance of this kind: non-nil and of the same dynamic type the factory produces.
func (k Kind[E]) Accepts(entity E) bool {
	v := any(entity)
	if k.entityType == nil || isNil(v) {
		return false
	}

	return reflect.TypeOf(v) == k.entityType
}

// Association returns the association registered under name.
func (k Kind[E]) Association(name string) (Association[E], bool) {
	a, ok := k.associations[name]
	return a, ok
}

func (k Kind[E]) identityOf(entity E) (any, bool) {
	if k.identity == nil {
		return nil, false
	}

	return k.identity(entity), true
}

func (k Kind[E]) hydrationTargets(entity E, eager []string) []any {
	targets := k.scanDest(entity)

	for _, name := range eager {
		targets = append(targets, k.associations[name].scanDest(entity)...)
	}

	return targets
}

// eagerTargets scans only the eager associations of a row into entity; the root columns are discarded.
func (k Kind[E]) eagerTargets(entity E, eager []string) []any {
	targets := make([]any, 0, len(k.columns))
	for range k.columns {
		targets = append(targets, new(any))
	}

	for _, name := range eager {
		targets = append(targets, k.associations[name].scanDest(entity)...)
	}

	return targets
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
