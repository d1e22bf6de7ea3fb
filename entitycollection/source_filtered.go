package entitycollection

import (
	"context"
	"iter"
)

// filteredSource applies a predicate without a native form to a lazy source while iterating it.
// Its window bounds the matching entities, not the rows of the query.
type filteredSource[E any] struct {
	inner     source[E]
	predicate Predicate[E]
	offset    int
	length    int // negative: unbounded
}

func newFilteredSource[E any](inner source[E], predicate Predicate[E]) filteredSource[E] {
	return filteredSource[E]{inner: inner, predicate: predicate, length: -1}
}

func (s filteredSource[E]) isWindowed() bool {
	return s.offset > 0 || s.length >= 0
}

func (s filteredSource[E]) filter(ctx context.Context, predicate Predicate[E]) (source[E], error) {
	if s.isWindowed() {
		return newFilteredSource[E](s, predicate), nil
	}

	if _, ok := predicate.(queryPredicate); ok {
		inner, err := s.inner.filter(ctx, predicate)
		if err != nil {
			return nil, err
		}

		s.inner = inner

		return s, nil
	}

	s.predicate = allOf(s.predicate, predicate)

	return s, nil
}

func (s filteredSource[E]) findOne(ctx context.Context, predicate Predicate[E]) (E, bool, error) {
	var zero E

	for entity, err := range s.all(ctx) {
		if err != nil {
			return zero, false, err
		}

		if predicate.Matches(entity) {
			return entity, true, nil
		}
	}

	return zero, false, nil
}

func (s filteredSource[E]) sortBy(ctx context.Context, sorter Sorter[E]) (source[E], error) {
	if _, ok := sorter.(queryOrderer); ok && !s.isWindowed() {
		inner, err := s.inner.sortBy(ctx, sorter)
		if err != nil {
			return nil, err
		}

		s.inner = inner

		return s, nil
	}

	entities, err := collect[E](ctx, s)
	if err != nil {
		return nil, err
	}

	return newMaterializedSource(entities).sortBy(ctx, sorter)
}

func (s filteredSource[E]) slice(offset, length int) source[E] {
	s.offset = max(offset, 0)
	s.length = max(length, -1)

	return s
}

func (s filteredSource[E]) count(ctx context.Context) (int, error) {
	count := 0

	for _, err := range s.all(ctx) {
		if err != nil {
			return 0, err
		}

		count++
	}

	return count, nil
}

func (s filteredSource[E]) all(ctx context.Context) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		if s.length == 0 {
			return
		}

		skipped, yielded := 0, 0

		for entity, err := range s.inner.all(ctx) {
			if err != nil {
				var zero E
				yield(zero, err)

				return
			}

			if !s.predicate.Matches(entity) {
				continue
			}

			if skipped < s.offset {
				skipped++
				continue
			}

			if !yield(entity, nil) {
				return
			}

			yielded++
			if s.length >= 0 && yielded >= s.length {
				return
			}
		}
	}
}

func (s filteredSource[E]) with(name string) (source[E], error) {
	inner, err := s.inner.with(name)
	if err != nil {
		return nil, err
	}

	s.inner = inner

	return s, nil
}

func (s filteredSource[E]) detaching(enabled bool) source[E] {
	s.inner = s.inner.detaching(enabled)
	return s
}

func (s filteredSource[E]) isDetaching() bool {
	return s.inner.isDetaching()
}

func (s filteredSource[E]) isLazy() bool {
	return s.inner.isLazy()
}

// allOf matches the entities matching every predicate.
func allOf[E any](predicates ...Predicate[E]) PredicateFunc[E] {
	return func(entity E) bool {
		for _, predicate := range predicates {
			if !predicate.Matches(entity) {
				return false
			}
		}

		return true
	}
}
