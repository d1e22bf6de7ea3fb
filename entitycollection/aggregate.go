package entitycollection

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const castDoublePrecision = "DOUBLE PRECISION"

// Aggregation folds a collection into a single value.
// Aggregations with a native form run as one aggregate query on lazy collections.
type Aggregation[E any, A any] struct {
	initial    A
	step       func(acc A, entity E) A
	native     func(qc *QueryContext) exp.Expression
	fromNative func(value *float64) A
}

// FoldFunc folds entities in order, starting from initial. It always runs in memory.
func FoldFunc[E any, A any](initial A, step func(acc A, entity E) A) Aggregation[E, A] {
	return Aggregation[E, A]{initial: initial, step: step}
}

// SumOf sums a numeric property stored in column, skipping nulls. The sum of nothing is zero.
// Native sums are computed in double precision.
func SumOf[E any, N Number](column string, get func(E) *N) Aggregation[E, N] {
	return Aggregation[E, N]{
		step: func(acc N, entity E) N {
			if v := get(entity); v != nil {
				return acc + *v
			}

			return acc
		},
		native: func(qc *QueryContext) exp.Expression {
			return goqu.Cast(goqu.SUM(qc.Column(column)), castDoublePrecision)
		},
		fromNative: func(value *float64) N {
			if value == nil {
				return 0
			}

			return N(*value)
		},
	}
}

// MinOf returns the smallest non-null value of a numeric property stored in column, or nil if there is none.
func MinOf[E any, N Number](column string, get func(E) *N) Aggregation[E, *N] {
	return extremeOf(column, get, goqu.MIN, func(candidate, current N) bool { return candidate < current })
}

// MaxOf returns the largest non-null value of a numeric property stored in column, or nil if there is none.
func MaxOf[E any, N Number](column string, get func(E) *N) Aggregation[E, *N] {
	return extremeOf(column, get, goqu.MAX, func(candidate, current N) bool { return candidate > current })
}

func extremeOf[E any, N Number](
	column string,
	get func(E) *N,
	aggregate func(col interface{}) exp.SQLFunctionExpression,
	better func(candidate, current N) bool,
) Aggregation[E, *N] {

	return Aggregation[E, *N]{
		step: func(acc *N, entity E) *N {
			v := get(entity)
			if v == nil || (acc != nil && !better(*v, *acc)) {
				return acc
			}

			picked := *v

			return &picked
		},
		native: func(qc *QueryContext) exp.Expression {
			return goqu.Cast(aggregate(qc.Column(column)), castDoublePrecision)
		},
		fromNative: func(value *float64) *N {
			if value == nil {
				return nil
			}

			picked := N(*value)

			return &picked
		},
	}
}

// Fold aggregates the collection.
// Lazy collections run native aggregations as a single query; everything else iterates the entities.
func Fold[E any, A any](ctx context.Context, c Collection[E], aggregation Aggregation[E, A]) (A, error) {
	if lazy, ok := c.source().(lazySource[E]); ok && aggregation.native != nil {
		return foldNative(ctx, lazy, aggregation)
	}

	acc := aggregation.initial

	for entity, err := range c.All(ctx) {
		if err != nil {
			var zero A
			return zero, err
		}

		acc = aggregation.step(acc, entity)
	}

	return acc, nil
}

func foldNative[E any, A any](ctx context.Context, lazy lazySource[E], aggregation Aggregation[E, A]) (A, error) {
	var zero A

	sqlQuery, err := lazy.spec.aggregateSQL(aggregation.native)
	if err != nil {
		return zero, err
	}

	var value *float64

	found, err := lazy.scalar(ctx, sqlQuery, &value)
	if err != nil {
		return zero, err
	}

	if !found {
		return aggregation.fromNative(nil), nil
	}

	return aggregation.fromNative(value), nil
}
