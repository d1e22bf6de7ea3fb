package entitycollection

import (
	"errors"
	"math"
	"slices"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
)

const (
	eagerColumnSeparator = "__"
	dialectSQLite        = "sqlite3"
	goquSQLiteDialect    = "entitycollection-sqlite3"
)

// SQLiteTimeLayout is the layout of time literals in SQLite queries, always in UTC.
// SQLite compares TIMESTAMP values as text, so the layout has a fixed width.
const SQLiteTimeLayout = "2006-01-02 15:04:05.000000000"

func init() {
	opts := sqlite3.DialectOptions()
	opts.TimeFormat = SQLiteTimeLayout
	goqu.RegisterDialect(goquSQLiteDialect, opts)
}

// QueryDialect returns the goqu dialect that builds SQL for a session dialect.
// Rows written for SQLite should be built with it, so stored times and query literals share SQLiteTimeLayout.
func QueryDialect(dialect string) goqu.DialectWrapper {
	if dialect == dialectSQLite {
		return goqu.Dialect(goquSQLiteDialect)
	}

	return goqu.Dialect(dialect)
}

type eagerRef struct {
	name    string
	columns []string
	wrapped bool
}

// querySpec is the unevaluated query of a lazy collection.
// base holds FROM, joins and WHERE only; select list, ordering and bounds are applied by selectDataset.
// Goqu datasets are copy-on-write, so copying a querySpec by value and cloning its slices is a deep clone.
type querySpec struct {
	dialect  string
	alias    string
	columns  []string
	base     *goqu.SelectDataset
	order    []exp.OrderedExpression
	offset   uint
	hasLimit bool
	limit    uint
	eager    []eagerRef
}

func newQuerySpec(dialect, table, alias string, columns []string) querySpec {
	return querySpec{
		dialect: dialect,
		alias:   alias,
		columns: slices.Clone(columns),
		base:    QueryDialect(dialect).From(goqu.T(table).As(alias)),
	}
}

func (s querySpec) clone() querySpec {
	s.columns = slices.Clone(s.columns)
	s.order = slices.Clone(s.order)
	s.eager = slices.Clone(s.eager)

	return s
}

func (s querySpec) isPaginated() bool {
	return s.offset > 0 || s.hasLimit
}

func (s querySpec) eagerNames() []string {
	names := make([]string, 0, len(s.eager))
	for _, e := range s.eager {
		names = append(names, e.name)
	}

	return names
}

func (s querySpec) hasEager(name string) bool {
	return slices.ContainsFunc(s.eager, func(e eagerRef) bool { return e.name == name })
}

// where adds predicates. A paginated query is wrapped first, so the predicates apply to the window.
func (s querySpec) where(predicates ...exp.Expression) querySpec {
	if len(predicates) == 0 {
		return s
	}

	s = s.unpaginated()
	s.base = s.base.Where(predicates...)

	return s
}

// ordered replaces the ordering. A paginated query is wrapped first, so the new ordering sorts the window.
func (s querySpec) ordered(order []exp.OrderedExpression) querySpec {
	s = s.unpaginated()
	s.order = slices.Clone(order)

	return s
}

// slice sets the window over the rows of the query, replacing an earlier window.
// A negative offset counts as zero and a negative length is unbounded.
func (s querySpec) slice(offset, length int) querySpec {
	s.offset = uint(max(offset, 0))
	s.limit, s.hasLimit = 0, false

	if length >= 0 {
		s.limit, s.hasLimit = uint(length), true
	}

	return s
}

func (s querySpec) joinAssociation(name, table, localColumn, foreignColumn string, columns []string) querySpec {
	s.base = s.base.LeftJoin(
		goqu.T(table).As(name),
		goqu.On(goqu.T(s.alias).Col(localColumn).Eq(goqu.T(name).Col(foreignColumn))),
	)
	s.eager = append(s.eager, eagerRef{name: name, columns: slices.Clone(columns)})

	return s
}

// unpaginated turns a paginated query into a subquery under the same alias.
// The subquery keeps its ordering and bounds and exposes the root columns under their own names
// and the eager columns as name__column.
func (s querySpec) unpaginated() querySpec {
	if !s.isPaginated() {
		return s
	}

	inner := s.selectDataset().As(s.alias)

	wrapped := s
	wrapped.base = QueryDialect(s.dialect).From(inner)
	wrapped.offset, wrapped.limit, wrapped.hasLimit = 0, 0, false
	wrapped.eager = make([]eagerRef, 0, len(s.eager))

	for _, e := range s.eager {
		e.wrapped = true
		wrapped.eager = append(wrapped.eager, e)
	}

	return wrapped
}

func (s querySpec) selection() []any {
	selection := make([]any, 0, len(s.columns))

	for _, column := range s.columns {
		selection = append(selection, goqu.T(s.alias).Col(column))
	}

	for _, e := range s.eager {
		for _, column := range e.columns {
			exposed := e.name + eagerColumnSeparator + column

			if e.wrapped {
				selection = append(selection, goqu.T(s.alias).Col(exposed))
			} else {
				selection = append(selection, goqu.T(e.name).Col(column).As(exposed))
			}
		}
	}

	return selection
}

func (s querySpec) bounded(ds *goqu.SelectDataset) *goqu.SelectDataset {
	if s.hasLimit && s.limit == 0 {
		// goqu drops LIMIT 0, and an empty window needs no offset.
		return ds.Where(goqu.L("1 = 0"))
	}

	if s.offset > 0 {
		ds = ds.Offset(s.offset)

		if !s.hasLimit && s.dialect == dialectSQLite {
			// SQLite rejects OFFSET without LIMIT.
			ds = ds.Limit(math.MaxInt64)
		}
	}

	if s.hasLimit {
		ds = ds.Limit(s.limit)
	}

	return ds
}

func (s querySpec) selectDataset() *goqu.SelectDataset {
	ds := s.base.Select(s.selection()...)

	if len(s.order) > 0 {
		ds = ds.Order(s.order...)
	}

	return s.bounded(ds)
}

func (s querySpec) toSQL() (string, error) {
	return buildSQL(s.selectDataset())
}

// countSQL counts the rows of the query; ordering does not affect cardinality and is dropped.
func (s querySpec) countSQL() (string, error) {
	s = s.unpaginated()

	return buildSQL(s.base.Select(goqu.COUNT(goqu.Star())))
}

// aggregateSQL selects a single aggregate over the rows of the query.
func (s querySpec) aggregateSQL(aggregate func(qc *QueryContext) exp.Expression) (string, error) {
	s = s.unpaginated()

	return buildSQL(s.base.Select(aggregate(newQueryContext(s.dialect, s.alias, nil))))
}

func buildSQL(ds *goqu.SelectDataset) (string, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
