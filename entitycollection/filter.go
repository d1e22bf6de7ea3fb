package entitycollection

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Predicate decides whether an entity belongs to a collection.
type Predicate[E any] interface {
	Matches(entity E) bool
}

// PredicateFunc adapts a plain function to a Predicate. It is always evaluated in memory.
type PredicateFunc[E any] func(entity E) bool

func (f PredicateFunc[E]) Matches(entity E) bool {
	return f(entity)
}

// queryPredicate is implemented by predicates that can be translated into a native WHERE clause.
type queryPredicate interface {
	ToQueryPredicate(qc *QueryContext)
}

/***** rules *****/

// Rule is the validation, in-memory check and native predicate of one named criterion.
type Rule[E any] struct {
	name      string
	column    string
	validate  func(value any) (any, error)
	check     func(entity E, value any) bool
	predicate func(qc *QueryContext, column string, value any) exp.Expression
}

func (r Rule[E]) Name() string {
	return r.name
}

// WithColumn returns a copy of the rule reading the given column (default: the rule name).
func (r Rule[E]) WithColumn(column string) Rule[E] {
	r.column = column
	return r
}

// CustomRule declares a criterion from a validator, an in-memory check and a native predicate.
// validate returns the normalized value handed to check and predicate.
// check must be pure, and predicate must select exactly the entities check accepts.
func CustomRule[E any](
	name string,
	validate func(value any) (any, error),
	check func(entity E, value any) bool,
	predicate func(qc *QueryContext, value any) exp.Expression,
) Rule[E] {

	return Rule[E]{
		name:     name,
		column:   name,
		validate: validate,
		check:    check,
		predicate: func(qc *QueryContext, _ string, value any) exp.Expression {
			return predicate(qc, value)
		},
	}
}

// Equals matches entities whose property equals the criterion value. Entities with a null property never match.
func Equals[E any, V comparable](name string, get func(E) *V) Rule[E] {
	return Rule[E]{
		name:   name,
		column: name,
		validate: func(value any) (any, error) {
			return coerce[V](value)
		},
		check: func(entity E, value any) bool {
			v := get(entity)
			return v != nil && *v == value.(V)
		},
		predicate: func(qc *QueryContext, column string, value any) exp.Expression {
			return qc.Column(column).Eq(value)
		},
	}
}

// OneOf matches entities whose property is one of the criterion values. The list must not be empty.
func OneOf[E any, V comparable](name string, get func(E) *V) Rule[E] {
	return Rule[E]{
		name:   name,
		column: name,
		validate: func(value any) (any, error) {
			values, err := coerceSlice[V](value)
			if err != nil {
				return nil, err
			}

			if len(values) == 0 {
				return nil, errors.New("empty list")
			}

			return values, nil
		},
		check: func(entity E, value any) bool {
			v := get(entity)
			if v == nil {
				return false
			}

			for _, candidate := range value.([]V) {
				if *v == candidate {
					return true
				}
			}

			return false
		},
		predicate: func(qc *QueryContext, column string, value any) exp.Expression {
			return qc.Column(column).In(value.([]V))
		},
	}
}

// Range is an inclusive range; a nil bound is open.
type Range[V any] struct {
	From *V
	To   *V
}

// Between matches entities whose property lies within the criterion Range. Null properties never match.
func Between[E any, V cmp.Ordered](name string, get func(E) *V) Rule[E] {
	return betweenRule(name, get, cmp.Compare[V])
}

// BetweenDates is Between for dates.
func BetweenDates[E any](name string, get func(E) *time.Time) Rule[E] {
	return betweenRule(name, get, time.Time.Compare)
}

func betweenRule[E any, V any](name string, get func(E) *V, compare func(a, b V) int) Rule[E] {
	return Rule[E]{
		name:   name,
		column: name,
		validate: func(value any) (any, error) {
			r, ok := value.(Range[V])
			if !ok {
				return nil, fmt.Errorf("%T is not a %T", value, Range[V]{})
			}

			if r.From == nil && r.To == nil {
				return nil, errors.New("range without bounds")
			}

			if r.From != nil && r.To != nil && compare(*r.From, *r.To) > 0 {
				return nil, errors.New("range lower bound is above the upper bound")
			}

			return r, nil
		},
		check: func(entity E, value any) bool {
			v := get(entity)
			if v == nil {
				return false
			}

			r := value.(Range[V])

			return (r.From == nil || compare(*v, *r.From) >= 0) && (r.To == nil || compare(*v, *r.To) <= 0)
		},
		predicate: func(qc *QueryContext, column string, value any) exp.Expression {
			r := value.(Range[V])
			col := qc.Column(column)

			switch {
			case r.From != nil && r.To != nil:
				return col.Between(exp.NewRangeVal(*r.From, *r.To))
			case r.From != nil:
				return col.Gte(*r.From)
			default:
				return col.Lte(*r.To)
			}
		},
	}
}

// IsNull matches entities whose property is null (criterion value true) or not null (false).
func IsNull[E any, V any](name string, get func(E) *V) Rule[E] {
	return Rule[E]{
		name:   name,
		column: name,
		validate: func(value any) (any, error) {
			return coerce[bool](value)
		},
		check: func(entity E, value any) bool {
			return (get(entity) == nil) == value.(bool)
		},
		predicate: func(qc *QueryContext, column string, value any) exp.Expression {
			if value.(bool) {
				return qc.Column(column).IsNull()
			}

			return qc.Column(column).IsNotNull()
		},
	}
}

// Contains matches entities whose string property contains the criterion value, case-sensitive.
func Contains[E any](name string, get func(E) *string) Rule[E] {
	return Rule[E]{
		name:   name,
		column: name,
		validate: func(value any) (any, error) {
			return coerce[string](value)
		},
		check: func(entity E, value any) bool {
			v := get(entity)
			return v != nil && strings.Contains(*v, value.(string))
		},
		predicate: func(qc *QueryContext, column string, value any) exp.Expression {
			position := "STRPOS"
			if qc.Dialect() == dialectSQLite {
				position = "INSTR"
			}

			return goqu.Func(position, qc.Column(column), value).Gt(0)
		},
	}
}

/***** schema *****/

// FilterSchema declares the criteria a kind can be filtered by.
type FilterSchema[E any] struct {
	kind  Kind[E]
	rules map[string]Rule[E]
	names []string
}

// NewFilterSchema registers rules for kind. Rule names must be unique and non-empty.
func NewFilterSchema[E any](kind Kind[E], rules ...Rule[E]) (FilterSchema[E], error) {
	s := FilterSchema[E]{
		kind:  kind,
		rules: make(map[string]Rule[E], len(rules)),
	}

	for _, rule := range rules {
		if rule.name == "" || rule.validate == nil || rule.check == nil || rule.predicate == nil {
			return FilterSchema[E]{}, fmt.Errorf("%w: incomplete rule %q", ErrInvalidArgument, rule.name)
		}

		if _, ok := s.rules[rule.name]; ok {
			return FilterSchema[E]{}, fmt.Errorf("%w: criterion %q", ErrDuplicateDeclaration, rule.name)
		}

		s.rules[rule.name] = rule
		s.names = append(s.names, rule.name)
	}

	return s, nil
}

// Kind returns the entity kind the schema filters.
func (s FilterSchema[E]) Kind() Kind[E] {
	return s.kind
}

// Names returns the declared criterion names in registration order.
func (s FilterSchema[E]) Names() []string {
	return append([]string(nil), s.names...)
}

// Has reports whether a criterion is declared.
func (s FilterSchema[E]) Has(name string) bool {
	_, ok := s.rules[name]
	return ok
}

// FromCriteria validates the criteria and builds a Filter.
// An unknown name fails with ErrUnknownCriterion, an invalid value with ErrInvalidCriterionValue.
// A repeated name replaces the earlier value in place.
func (s FilterSchema[E]) FromCriteria(criteria ...Criterion) (Filter[E], error) {
	f := Filter[E]{kind: s.kind}

	for _, criterion := range criteria {
		rule, ok := s.rules[criterion.Name]
		if !ok {
			return Filter[E]{}, fmt.Errorf("%w: %q", ErrUnknownCriterion, criterion.Name)
		}

		value, err := rule.validate(criterion.Value)
		if err != nil {
			return Filter[E]{}, fmt.Errorf("%w: %q: %w", ErrInvalidCriterionValue, criterion.Name, err)
		}

		f = f.set(appliedRule[E]{rule: rule, raw: criterion.Value, value: value})
	}

	return f, nil
}

/***** filter *****/

type appliedRule[E any] struct {
	rule  Rule[E]
	raw   any
	value any
}

// Filter tests entities against validated criteria. It is immutable.
// An empty filter accepts every entity of its kind.
type Filter[E any] struct {
	kind    Kind[E]
	applied []appliedRule[E]
}

func (f Filter[E]) set(applied appliedRule[E]) Filter[E] {
	next := make([]appliedRule[E], 0, len(f.applied)+1)
	replaced := false

	for _, a := range f.applied {
		if a.rule.name == applied.rule.name {
			next = append(next, applied)
			replaced = true

			continue
		}

		next = append(next, a)
	}

	if !replaced {
		next = append(next, applied)
	}

	f.applied = next

	return f
}

// Criteria returns the criteria the filter was built from, as given.
func (f Filter[E]) Criteria() Criteria {
	criteria := make(Criteria, 0, len(f.applied))
	for _, a := range f.applied {
		criteria = append(criteria, Criterion{Name: a.rule.name, Value: a.raw})
	}

	return criteria
}

// Matches reports whether entity is of the filter's kind and satisfies every criterion.
// Criteria are checked in the order they were added, stopping at the first failure.
func (f Filter[E]) Matches(entity E) bool {
	if !f.kind.Accepts(entity) {
		return false
	}

	for _, a := range f.applied {
		if !a.rule.check(entity, a.value) {
			return false
		}
	}

	return true
}

// ToQueryPredicate adds one native predicate per criterion to the query, qualified by the query's alias.
func (f Filter[E]) ToQueryPredicate(qc *QueryContext) {
	for _, a := range f.applied {
		qc.Where(a.rule.predicate(qc, a.rule.column, a.value))
	}
}
