package entitycollection

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

type lazySource[E any] struct {
	session Session
	kind    Kind[E]
	spec    querySpec
	detach  bool
}

func newLazySource[E any](session Session, kind Kind[E]) lazySource[E] {
	return lazySource[E]{
		session: session,
		kind:    kind,
		spec:    newQuerySpec(session.Dialect(), kind.table, kind.alias, kind.columns),
	}
}

func (s lazySource[E]) withSpec(spec querySpec) lazySource[E] {
	s.spec = spec
	return s
}

func (s lazySource[E]) nativeFilter(predicate queryPredicate) querySpec {
	qc := newQueryContext(s.spec.dialect, s.spec.alias, s.spec.order)
	predicate.ToQueryPredicate(qc)

	return s.spec.clone().where(qc.predicates()...)
}

func (s lazySource[E]) filter(_ context.Context, predicate Predicate[E]) (source[E], error) {
	if native, ok := predicate.(queryPredicate); ok {
		return s.withSpec(s.nativeFilter(native)), nil
	}

	return newFilteredSource[E](s, predicate), nil
}

func (s lazySource[E]) findOne(ctx context.Context, predicate Predicate[E]) (E, bool, error) {
	var zero E

	if native, ok := predicate.(queryPredicate); ok {
		single := s.withSpec(s.nativeFilter(native).slice(0, 1))

		for entity, err := range single.all(ctx) {
			if err != nil {
				return zero, false, err
			}

			return entity, true, nil
		}

		return zero, false, nil
	}

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

func (s lazySource[E]) sortBy(ctx context.Context, sorter Sorter[E]) (source[E], error) {
	if native, ok := sorter.(queryOrderer); ok {
		qc := newQueryContext(s.spec.dialect, s.spec.alias, s.spec.order)
		native.ToOrderClause(qc)

		return s.withSpec(s.spec.clone().ordered(qc.ordering())), nil
	}

	materialized, err := s.materialize(ctx)
	if err != nil {
		return nil, err
	}

	return materialized.sortBy(ctx, sorter)
}

func (s lazySource[E]) slice(offset, length int) source[E] {
	return s.withSpec(s.spec.clone().slice(offset, length))
}

func (s lazySource[E]) count(ctx context.Context) (int, error) {
	sqlQuery, err := s.spec.countSQL()
	if err != nil {
		return 0, err
	}

	var count int64

	found, err := s.scalar(ctx, sqlQuery, &count)
	if err != nil || !found {
		return 0, err
	}

	return int(count), nil
}

// scalar runs a single-row query and scans the first row into dest.
func (s lazySource[E]) scalar(ctx context.Context, sqlQuery string, dest ...any) (bool, error) {
	rows, err := s.session.Runner().Query(ctx, sqlQuery)
	if err != nil {
		return false, err
	}
	defer closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return false, errors.Join(ErrQueryingEntitiesFailed, rowsErr)
		}

		return false, nil
	}

	if scanErr := rows.Scan(dest...); scanErr != nil {
		return false, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return true, nil
}

func (s lazySource[E]) all(ctx context.Context) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		var zero E

		sqlQuery, err := s.spec.toSQL()
		if err != nil {
			yield(zero, err)
			return
		}

		rows, err := s.session.Runner().Query(ctx, sqlQuery)
		if err != nil {
			yield(zero, err)
			return
		}
		defer closeRows(rows)

		eager := s.spec.eagerNames()
		tracker := s.session.Tracker()

		for rows.Next() {
			entity := s.kind.newEntity()

			if scanErr := rows.Scan(s.kind.hydrationTargets(entity, eager)...); scanErr != nil {
				yield(zero, errors.Join(ErrScanningDBRowFailed, scanErr))
				return
			}

			resolved, wasTracked := s.track(tracker, entity)

			// A tracked instance may have been loaded without these associations.
			if wasTracked && len(eager) > 0 {
				if scanErr := rows.Scan(s.kind.eagerTargets(resolved, eager)...); scanErr != nil {
					yield(zero, errors.Join(ErrScanningDBRowFailed, scanErr))
					return
				}
			}

			if !yield(resolved, nil) {
				return
			}
		}

		if rowsErr := rows.Err(); rowsErr != nil {
			yield(zero, errors.Join(ErrQueryingEntitiesFailed, rowsErr))
		}
	}
}

// track resolves a freshly hydrated entity against the identity map.
// An entity that is already tracked is returned as the tracked instance, otherwise it gets attached.
// When detaching, the entity is removed from the identity map before it is yielded.
// The second result reports whether the tracked instance replaced entity.
func (s lazySource[E]) track(tracker EntityTracker, entity E) (E, bool) {
	id, ok := s.kind.identityOf(entity)
	if !ok || tracker == nil {
		return entity, false
	}

	kindName := s.kind.Name()
	wasTracked := false

	if tracked, found := tracker.Lookup(kindName, id); found {
		if instance, isE := tracked.(E); isE {
			entity = instance
			wasTracked = true
		}
	} else {
		tracker.Attach(kindName, id, entity)
	}

	if s.detach {
		tracker.Detach(kindName, id)
	}

	return entity, wasTracked
}

func (s lazySource[E]) with(name string) (source[E], error) {
	association, ok := s.kind.Association(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownAssociation, name, s.kind.Name())
	}

	if s.spec.hasEager(name) {
		return s, nil
	}

	return s.withSpec(s.spec.clone().joinAssociation(
		association.name,
		association.table,
		association.localColumn,
		association.foreignColumn,
		association.columns,
	)), nil
}

func (s lazySource[E]) detaching(enabled bool) source[E] {
	s.detach = enabled
	return s
}

func (s lazySource[E]) isDetaching() bool {
	return s.detach
}

func (s lazySource[E]) isLazy() bool {
	return true
}

func (s lazySource[E]) materialize(ctx context.Context) (materializedSource[E], error) {
	entities, err := collect[E](ctx, s)
	if err != nil {
		return materializedSource[E]{}, err
	}

	return materializedSource[E]{entities: entities, length: -1}, nil
}

func closeRows(rows Rows) {
	_ = rows.Close()
}
