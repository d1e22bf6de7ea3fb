package entitycollection

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Verb is the kind of a named collection operation.
type Verb int

const (
	// VerbFindBy finds the first entity whose property matches the argument.
	VerbFindBy Verb = iota + 1
	// VerbAcceptBy keeps the entities whose property matches the argument.
	VerbAcceptBy
	// VerbSortBy orders by the property in the direction given by the argument.
	VerbSortBy
	// VerbWith eagerly joins the association named by the property.
	VerbWith
)

func (v Verb) String() string {
	switch v {
	case VerbFindBy:
		return "findBy"
	case VerbAcceptBy:
		return "acceptBy"
	case VerbSortBy:
		return "sortBy"
	case VerbWith:
		return "with"
	default:
		return fmt.Sprintf("Verb(%d)", int(v))
	}
}

// Operation is a named collection operation on one property.
type Operation struct {
	verb     Verb
	property string
	arg      any
}

func FindBy(property string, value any) Operation {
	return Operation{verb: VerbFindBy, property: property, arg: value}
}

func AcceptBy(property string, value any) Operation {
	return Operation{verb: VerbAcceptBy, property: property, arg: value}
}

func SortByProperty(property string, direction Direction) Operation {
	return Operation{verb: VerbSortBy, property: property, arg: direction}
}

func With(association string) Operation {
	return Operation{verb: VerbWith, property: association}
}

func (o Operation) Verb() Verb {
	return o.verb
}

func (o Operation) Property() string {
	return o.property
}

func (o Operation) Arg() any {
	return o.arg
}

func (o Operation) String() string {
	return o.verb.String() + "(" + o.property + ")"
}

var methodPrefixes = []struct {
	prefix string
	verb   Verb
}{
	{prefix: "findBy", verb: VerbFindBy},
	{prefix: "findFor", verb: VerbFindBy},
	{prefix: "acceptBy", verb: VerbAcceptBy},
	{prefix: "acceptFor", verb: VerbAcceptBy},
	{prefix: "sortBy", verb: VerbSortBy},
	{prefix: "with", verb: VerbWith},
}

// ParseOperation resolves a method name like "findByStatus", "acceptForGenre", "sortByAge" or "withAuthor".
// The property part must start with an upper-case letter and is returned in lower camel case
// ("findByStatus" reads property "status", "findByID" reads "id").
// For sortBy the argument is the direction, nil meaning ascending.
// Anything else fails with ErrUnsupportedOperation.
func ParseOperation(method string, arg any) (Operation, error) {
	for _, candidate := range methodPrefixes {
		rest, ok := strings.CutPrefix(method, candidate.prefix)
		if !ok {
			continue
		}

		first, _ := utf8.DecodeRuneInString(rest)
		if rest == "" || !unicode.IsUpper(first) {
			continue
		}

		property := lowerCamel(rest)

		switch candidate.verb {
		case VerbSortBy:
			direction, err := directionArg(arg)
			if err != nil {
				return Operation{}, err
			}

			return SortByProperty(property, direction), nil

		case VerbWith:
			return With(property), nil

		default:
			return Operation{verb: candidate.verb, property: property, arg: arg}, nil
		}
	}

	return Operation{}, fmt.Errorf("%w: %q", ErrUnsupportedOperation, method)
}

func directionArg(arg any) (Direction, error) {
	switch d := arg.(type) {
	case nil:
		return Ascending, nil
	case Direction:
		return ParseDirection(string(d))
	case string:
		return ParseDirection(d)
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidDirection, arg)
	}
}

// lowerCamel lower-cases the leading upper-case run of s, keeping the start of the next word:
// "Status" -> "status", "ID" -> "id", "URLPath" -> "urlPath".
func lowerCamel(s string) string {
	runes := []rune(s)

	run := 0
	for run < len(runes) && unicode.IsUpper(runes[run]) {
		run++
	}

	if run > 1 && run < len(runes) && unicode.IsLower(runes[run]) {
		run--
	}

	for i := range run {
		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}

/***** factories *****/

// PropertyFactory builds the predicate and sorter for one property of a kind.
type PropertyFactory[E any] interface {
	FilterFor(property string, value any) (Predicate[E], error)
	SorterFor(property string, direction Direction) (Sorter[E], error)
}

// Schema is the default PropertyFactory: criteria come from a FilterSchema and sortable properties from a property list.
type Schema[E any] struct {
	filters    FilterSchema[E]
	properties []Property[E]
}

// NewSchema combines a filter schema with the sortable properties of its kind.
func NewSchema[E any](filters FilterSchema[E], properties ...Property[E]) (Schema[E], error) {
	if _, err := indexProperties(properties); err != nil {
		return Schema[E]{}, err
	}

	return Schema[E]{filters: filters, properties: append([]Property[E](nil), properties...)}, nil
}

// FilterFor returns the Filter for the single criterion property = value.
func (s Schema[E]) FilterFor(property string, value any) (Predicate[E], error) {
	filter, err := s.filters.FromCriteria(C(property, value))
	if err != nil {
		return nil, err
	}

	return filter, nil
}

// SorterFor returns the Comparator ordering by property alone.
func (s Schema[E]) SorterFor(property string, direction Direction) (Sorter[E], error) {
	comparator, err := NewComparator(s.filters.Kind(), s.properties, OrderItem{Property: property, Direction: direction})
	if err != nil {
		return nil, err
	}

	return comparator, nil
}

// Filter builds a Filter from criteria.
func (s Schema[E]) Filter(criteria ...Criterion) (Filter[E], error) {
	return s.filters.FromCriteria(criteria...)
}

// Comparator builds a Comparator from an order specification.
func (s Schema[E]) Comparator(order ...OrderItem) (Comparator[E], error) {
	return NewComparator(s.filters.Kind(), s.properties, order...)
}

/***** dispatch *****/

// Outcome is the result of a dispatched operation.
// VerbFindBy sets Entity and Found; every other verb sets Collection.
type Outcome[E any] struct {
	Collection Collection[E]
	Entity     E
	Found      bool
}

// Dispatch runs op against the collection, building predicates and sorters through factory.
func (c Collection[E]) Dispatch(ctx context.Context, factory PropertyFactory[E], op Operation) (Outcome[E], error) {
	if factory == nil && op.verb != VerbWith {
		return Outcome[E]{}, fmt.Errorf("%w: nil property factory", ErrInvalidArgument)
	}

	switch op.verb {
	case VerbFindBy:
		predicate, err := factory.FilterFor(op.property, op.arg)
		if err != nil {
			return Outcome[E]{}, err
		}

		entity, found, err := c.FindOne(ctx, predicate)
		if err != nil {
			return Outcome[E]{}, err
		}

		return Outcome[E]{Entity: entity, Found: found}, nil

	case VerbAcceptBy:
		predicate, err := factory.FilterFor(op.property, op.arg)
		if err != nil {
			return Outcome[E]{}, err
		}

		filtered, err := c.Filter(ctx, predicate)
		if err != nil {
			return Outcome[E]{}, err
		}

		return Outcome[E]{Collection: filtered}, nil

	case VerbSortBy:
		direction, err := directionArg(op.arg)
		if err != nil {
			return Outcome[E]{}, err
		}

		sorter, err := factory.SorterFor(op.property, direction)
		if err != nil {
			return Outcome[E]{}, err
		}

		sorted, err := c.SortBy(ctx, sorter)
		if err != nil {
			return Outcome[E]{}, err
		}

		return Outcome[E]{Collection: sorted}, nil

	case VerbWith:
		joined, err := c.With(op.property)
		if err != nil {
			return Outcome[E]{}, err
		}

		return Outcome[E]{Collection: joined}, nil

	default:
		return Outcome[E]{}, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
	}
}

// Call parses method with ParseOperation and dispatches it.
func (c Collection[E]) Call(ctx context.Context, factory PropertyFactory[E], method string, arg any) (Outcome[E], error) {
	op, err := ParseOperation(method, arg)
	if err != nil {
		return Outcome[E]{}, err
	}

	return c.Dispatch(ctx, factory, op)
}
