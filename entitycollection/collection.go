package entitycollection

import (
	"context"
	"fmt"
	"iter"

	"github.com/doug-martin/goqu/v9"
)

// source is one representation of a collection: a lazy query or a materialized sequence.
// Every Collection operation dispatches to exactly one source method.
type source[E any] interface {
	filter(ctx context.Context, predicate Predicate[E]) (source[E], error)
	findOne(ctx context.Context, predicate Predicate[E]) (E, bool, error)
	sortBy(ctx context.Context, sorter Sorter[E]) (source[E], error)
	slice(offset, length int) source[E]
	count(ctx context.Context) (int, error)
	all(ctx context.Context) iter.Seq2[E, error]
	with(name string) (source[E], error)
	detaching(enabled bool) source[E]
	isDetaching() bool
	isLazy() bool
}

// Collection is an immutable collection of entities that is either lazy (an unevaluated query against a Session)
// or materialized (entities already in memory). The mode is fixed at construction.
// Every transformation returns a new Collection; the receiver is never changed.
//
// Lazy collections translate Filter and Comparator values into native queries.
// Arbitrary predicates stay lazy and are evaluated in memory while iterating.
// Arbitrary sorters realize the collection, and the result is then a materialized collection.
type Collection[E any] struct {
	src source[E]
}

// Lazy returns a lazy collection over all entities of kind in session.
func Lazy[E any](session Session, kind Kind[E]) (Collection[E], error) {
	if session == nil {
		return Collection[E]{}, ErrNilSession
	}

	if kind.newEntity == nil {
		return Collection[E]{}, fmt.Errorf("%w: undeclared kind", ErrInvalidKind)
	}

	return Collection[E]{src: newLazySource(session, kind)}, nil
}

// OwnedBy returns a lazy collection of the entities of kind whose mappedByColumn references ownerID,
// the inverse side of a one-to-many association.
func OwnedBy[E any](session Session, kind Kind[E], mappedByColumn string, ownerID any) (Collection[E], error) {
	c, err := Lazy(session, kind)
	if err != nil {
		return Collection[E]{}, err
	}

	if mappedByColumn == "" {
		return Collection[E]{}, fmt.Errorf("%w: empty mapped-by column", ErrInvalidArgument)
	}

	lazy := c.src.(lazySource[E])
	lazy.spec = lazy.spec.where(goqu.T(kind.alias).Col(mappedByColumn).Eq(ownerID))

	return Collection[E]{src: lazy}, nil
}

// Materialized returns a materialized collection holding entities in the given order.
func Materialized[E any](entities ...E) Collection[E] {
	return Collection[E]{src: newMaterializedSource(entities)}
}

func (c Collection[E]) source() source[E] {
	if c.src == nil {
		return newMaterializedSource[E](nil)
	}

	return c.src
}

// IsLazy reports whether the collection is backed by a query.
func (c Collection[E]) IsLazy() bool {
	return c.source().isLazy()
}

// Filter returns the entities matching predicate.
func (c Collection[E]) Filter(ctx context.Context, predicate Predicate[E]) (Collection[E], error) {
	if predicate == nil {
		return Collection[E]{}, fmt.Errorf("%w: nil predicate", ErrInvalidArgument)
	}

	src, err := c.source().filter(ctx, predicate)
	if err != nil {
		return Collection[E]{}, err
	}

	return Collection[E]{src: src}, nil
}

// FindOne returns the first entity matching predicate.
// Not finding anything is not an error: the second return value is false.
func (c Collection[E]) FindOne(ctx context.Context, predicate Predicate[E]) (E, bool, error) {
	if predicate == nil {
		var zero E
		return zero, false, fmt.Errorf("%w: nil predicate", ErrInvalidArgument)
	}

	return c.source().findOne(ctx, predicate)
}

// SortBy returns the collection ordered by sorter. In memory the sort is stable.
func (c Collection[E]) SortBy(ctx context.Context, sorter Sorter[E]) (Collection[E], error) {
	if sorter == nil {
		return Collection[E]{}, fmt.Errorf("%w: nil sorter", ErrInvalidArgument)
	}

	src, err := c.source().sortBy(ctx, sorter)
	if err != nil {
		return Collection[E]{}, err
	}

	return Collection[E]{src: src}, nil
}

// Slice returns the window of length entities starting at offset, replacing an earlier window.
// A negative offset counts as zero and a negative length means no upper bound.
// On a lazy collection nothing is queried.
func (c Collection[E]) Slice(offset, length int) Collection[E] {
	return Collection[E]{src: c.source().slice(offset, length)}
}

// Count returns the number of entities.
func (c Collection[E]) Count(ctx context.Context) (int, error) {
	return c.source().count(ctx)
}

// All returns the entities in order.
// Ranging over a lazy collection runs its query; every range runs it again.
func (c Collection[E]) All(ctx context.Context) iter.Seq2[E, error] {
	return c.source().all(ctx)
}

// Collect returns all entities as a slice.
func (c Collection[E]) Collect(ctx context.Context) ([]E, error) {
	return collect(ctx, c.source())
}

// Materialize returns a materialized copy of a lazy collection; a materialized collection returns itself.
func (c Collection[E]) Materialize(ctx context.Context) (Collection[E], error) {
	src := c.source()
	if !src.isLazy() {
		return c, nil
	}

	entities, err := collect(ctx, src)
	if err != nil {
		return Collection[E]{}, err
	}

	return Materialized(entities...), nil
}

// With eagerly joins the to-one association registered under name.
// Materialized collections return themselves.
func (c Collection[E]) With(name string) (Collection[E], error) {
	src, err := c.source().with(name)
	if err != nil {
		return Collection[E]{}, err
	}

	return Collection[E]{src: src}, nil
}

// EnableDetaching makes a lazy collection detach every entity from the session's identity map before yielding it.
func (c Collection[E]) EnableDetaching() Collection[E] {
	return Collection[E]{src: c.source().detaching(true)}
}

func (c Collection[E]) DisableDetaching() Collection[E] {
	return Collection[E]{src: c.source().detaching(false)}
}

// IsDetaching is always false for materialized collections.
func (c Collection[E]) IsDetaching() bool {
	return c.source().isDetaching()
}

func collect[E any](ctx context.Context, src source[E]) ([]E, error) {
	var entities []E

	for entity, err := range src.all(ctx) {
		if err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	return entities, nil
}
