package entitycollection

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Criterion is one named filter condition value.
type Criterion struct {
	Name  string
	Value any
}

// C is shorthand for building a Criterion.
func C(name string, value any) Criterion {
	return Criterion{Name: name, Value: value}
}

// Criteria is an ordered set of named criteria.
type Criteria []Criterion

// With returns a copy of the criteria where name is set to value.
// An existing criterion keeps its position, a new one is appended.
func (c Criteria) With(name string, value any) Criteria {
	out := make(Criteria, 0, len(c)+1)
	replaced := false

	for _, criterion := range c {
		if criterion.Name == name {
			if !replaced {
				out = append(out, Criterion{Name: name, Value: value})
				replaced = true
			}

			continue
		}

		out = append(out, criterion)
	}

	if !replaced {
		out = append(out, Criterion{Name: name, Value: value})
	}

	return out
}

// Names returns the criterion names in order.
func (c Criteria) Names() []string {
	names := make([]string, 0, len(c))
	for _, criterion := range c {
		names = append(names, criterion.Name)
	}

	return names
}

/***** order *****/

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc" and "desc" in any letter case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// OrderItem is one (property, direction) pair of an order specification.
type OrderItem struct {
	Property  string
	Direction Direction
}

// Asc orders by property ascending.
func Asc(property string) OrderItem {
	return OrderItem{Property: property, Direction: Ascending}
}

// Desc orders by property descending.
func Desc(property string) OrderItem {
	return OrderItem{Property: property, Direction: Descending}
}

/***** JSON *****/

// ParseCriteriaJSON reads a JSON object of named criteria, keeping the key order of the document.
// Numbers are decoded as float64, arrays as []any and nested objects as map[string]any.
// A repeated key replaces the earlier value in place.
func ParseCriteriaJSON(data []byte) (Criteria, error) {
	iter := jsoniter.ConfigFastest.BorrowIterator(data)
	defer jsoniter.ConfigFastest.ReturnIterator(iter)

	var criteria Criteria

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, fmt.Errorf("%w: criteria must be a JSON object", ErrMalformedJSON)
	}

	iter.ReadObjectCB(func(iter *jsoniter.Iterator, name string) bool {
		criteria = criteria.With(name, iter.Read())
		return iter.Error == nil
	})

	if iter.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, iter.Error)
	}

	return criteria, nil
}

// ParseOrderJSON reads a JSON object mapping property names to "asc" or "desc", keeping the key order of the document.
func ParseOrderJSON(data []byte) ([]OrderItem, error) {
	iter := jsoniter.ConfigFastest.BorrowIterator(data)
	defer jsoniter.ConfigFastest.ReturnIterator(iter)

	var (
		order    []OrderItem
		orderErr error
	)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, fmt.Errorf("%w: order must be a JSON object", ErrMalformedJSON)
	}

	iter.ReadObjectCB(func(iter *jsoniter.Iterator, name string) bool {
		if iter.WhatIsNext() != jsoniter.StringValue {
			orderErr = fmt.Errorf("%w: direction of %q must be a string", ErrMalformedJSON, name)
			return false
		}

		direction, err := ParseDirection(iter.ReadString())
		if err != nil {
			orderErr = err
			return false
		}

		order = append(order, OrderItem{Property: name, Direction: direction})

		return iter.Error == nil
	})

	if orderErr != nil {
		return nil, orderErr
	}

	if iter.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, iter.Error)
	}

	return order, nil
}
