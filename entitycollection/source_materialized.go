package entitycollection

import (
	"context"
	"iter"
	"slices"
)

type materializedSource[E any] struct {
	entities []E
	offset   int
	length   int // negative: unbounded
}

func newMaterializedSource[E any](entities []E) materializedSource[E] {
	return materializedSource[E]{entities: slices.Clone(entities), length: -1}
}

func (s materializedSource[E]) view() []E {
	start := min(s.offset, len(s.entities))
	end := len(s.entities)

	if s.length >= 0 {
		end = min(start+s.length, end)
	}

	return s.entities[start:end]
}

func (s materializedSource[E]) filter(_ context.Context, predicate Predicate[E]) (source[E], error) {
	matching := make([]E, 0)

	for _, entity := range s.view() {
		if predicate.Matches(entity) {
			matching = append(matching, entity)
		}
	}

	return materializedSource[E]{entities: matching, length: -1}, nil
}

func (s materializedSource[E]) findOne(_ context.Context, predicate Predicate[E]) (E, bool, error) {
	for _, entity := range s.view() {
		if predicate.Matches(entity) {
			return entity, true, nil
		}
	}

	var zero E

	return zero, false, nil
}

func (s materializedSource[E]) sortBy(_ context.Context, sorter Sorter[E]) (source[E], error) {
	sorted := slices.Clone(s.view())

	var compareErr error

	slices.SortStableFunc(sorted, func(a, b E) int {
		if compareErr != nil {
			return 0
		}

		result, err := sorter.Compare(a, b)
		if err != nil {
			compareErr = err
			return 0
		}

		return result
	})

	if compareErr != nil {
		return nil, compareErr
	}

	return materializedSource[E]{entities: sorted, length: -1}, nil
}

func (s materializedSource[E]) slice(offset, length int) source[E] {
	s.offset = max(offset, 0)
	s.length = max(length, -1)

	return s
}

func (s materializedSource[E]) count(context.Context) (int, error) {
	return len(s.view()), nil
}

func (s materializedSource[E]) all(context.Context) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		for _, entity := range s.view() {
			if !yield(entity, nil) {
				return
			}
		}
	}
}

func (s materializedSource[E]) with(string) (source[E], error) {
	return s, nil
}

func (s materializedSource[E]) detaching(bool) source[E] {
	return s
}

func (s materializedSource[E]) isDetaching() bool {
	return false
}

func (s materializedSource[E]) isLazy() bool {
	return false
}
