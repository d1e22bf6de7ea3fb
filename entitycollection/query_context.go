package entitycollection

import (
	"slices"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// QueryContext is the mutable query building context handed to native predicates and order clauses.
// It is created per operation on a clone of the collection's query, so mutations never leak into other collections.
type QueryContext struct {
	alias   string
	dialect string
	where   []exp.Expression
	order   []exp.OrderedExpression
}

func newQueryContext(dialect, alias string, order []exp.OrderedExpression) *QueryContext {
	return &QueryContext{
		alias:   alias,
		dialect: dialect,
		order:   slices.Clone(order),
	}
}

// Alias returns the alias of the root entity in the query.
func (qc *QueryContext) Alias() string {
	return qc.alias
}

// Dialect returns the goqu dialect name of the query.
func (qc *QueryContext) Dialect() string {
	return qc.dialect
}

// Column returns the column qualified by the root alias.
func (qc *QueryContext) Column(column string) exp.IdentifierExpression {
	return goqu.T(qc.alias).Col(column)
}

// Where adds predicates, combined with AND.
func (qc *QueryContext) Where(expressions ...exp.Expression) {
	for _, expression := range expressions {
		if expression != nil {
			qc.where = append(qc.where, expression)
		}
	}
}

// ResetOrder removes all ordering.
func (qc *QueryContext) ResetOrder() {
	qc.order = nil
}

// AppendOrder appends ordering expressions after the existing ones.
func (qc *QueryContext) AppendOrder(order ...exp.OrderedExpression) {
	qc.order = append(qc.order, order...)
}

func (qc *QueryContext) predicates() []exp.Expression {
	return qc.where
}

func (qc *QueryContext) ordering() []exp.OrderedExpression {
	return qc.order
}
