package entitycollection

import (
	"fmt"

	"github.com/doug-martin/goqu/v9/exp"
)

// Sorter orders two entities. It returns a negative number when a sorts before b, zero when they tie,
// and a positive number otherwise.
type Sorter[E any] interface {
	Compare(a, b E) (int, error)
}

// CompareFunc adapts a plain comparison function to a Sorter. It is always evaluated in memory.
type CompareFunc[E any] func(a, b E) int

func (f CompareFunc[E]) Compare(a, b E) (int, error) {
	return f(a, b), nil
}

// queryOrderer is implemented by sorters that can be translated into a native ORDER BY clause.
type queryOrderer interface {
	ToOrderClause(qc *QueryContext)
}

type sortKey[E any] struct {
	property  Property[E]
	direction Direction
}

// Comparator orders entities of one kind by a prioritized list of typed properties.
type Comparator[E any] struct {
	kind Kind[E]
	keys []sortKey[E]
}

// NewComparator builds a Comparator for kind over the declared properties.
// Every ordered property must be declared, otherwise ErrUnknownProperty is returned.
func NewComparator[E any](kind Kind[E], properties []Property[E], order ...OrderItem) (Comparator[E], error) {
	declared, err := indexProperties(properties)
	if err != nil {
		return Comparator[E]{}, err
	}

	c := Comparator[E]{kind: kind, keys: make([]sortKey[E], 0, len(order))}

	for _, item := range order {
		property, ok := declared[item.Property]
		if !ok {
			return Comparator[E]{}, fmt.Errorf("%w: %q", ErrUnknownProperty, item.Property)
		}

		direction, directionErr := ParseDirection(string(item.Direction))
		if directionErr != nil {
			return Comparator[E]{}, fmt.Errorf("%w (property %q)", directionErr, item.Property)
		}

		c.keys = append(c.keys, sortKey[E]{property: property, direction: direction})
	}

	return c, nil
}

func indexProperties[E any](properties []Property[E]) (map[string]Property[E], error) {
	declared := make(map[string]Property[E], len(properties))

	for _, property := range properties {
		if property.name == "" || property.compare == nil {
			return nil, fmt.Errorf("%w: incomplete property %q", ErrInvalidArgument, property.name)
		}

		if _, ok := declared[property.name]; ok {
			return nil, fmt.Errorf("%w: property %q", ErrDuplicateDeclaration, property.name)
		}

		declared[property.name] = property
	}

	return declared, nil
}

// Order returns the order specification of the comparator.
func (c Comparator[E]) Order() []OrderItem {
	order := make([]OrderItem, 0, len(c.keys))
	for _, key := range c.keys {
		order = append(order, OrderItem{Property: key.property.name, Direction: key.direction})
	}

	return order
}

// Compare compares a and b key by key, returning the first non-zero result.
// Descending keys negate the property comparison. Both entities must be of the comparator's kind.
func (c Comparator[E]) Compare(a, b E) (int, error) {
	if !c.kind.Accepts(a) || !c.kind.Accepts(b) {
		return 0, fmt.Errorf("%w: expected %s", ErrEntityKindMismatch, c.kind.Name())
	}

	for _, key := range c.keys {
		result := key.property.compare(a, b)
		if key.direction == Descending {
			result = -result
		}

		if result != 0 {
			return sign(result), nil
		}
	}

	return 0, nil
}

// ToOrderClause replaces the query's ordering with one ordering per key, in key order.
// Nulls come first when ascending and last when descending, as in Compare.
func (c Comparator[E]) ToOrderClause(qc *QueryContext) {
	qc.ResetOrder()

	for _, key := range c.keys {
		var ordered exp.OrderedExpression

		column := qc.Column(key.property.column)
		if key.direction == Descending {
			ordered = column.Desc().NullsLast()
		} else {
			ordered = column.Asc().NullsFirst()
		}

		qc.AppendOrder(ordered)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
