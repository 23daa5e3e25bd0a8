package directives

import (
	"fmt"

	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// Where adds a column predicate to the builder. The comparison
// operators below are each exposed under their own directive name;
// NewWhere covers the generic @where(column:, operator:) form.
type Where struct {
	name   string
	Column string
	Op     string
}

func Eq(column string) Where    { return Where{name: "eq", Column: column, Op: "="} }
func Neq(column string) Where   { return Where{name: "neq", Column: column, Op: "!="} }
func Gt(column string) Where    { return Where{name: "gt", Column: column, Op: ">"} }
func Gte(column string) Where   { return Where{name: "gte", Column: column, Op: ">="} }
func Lt(column string) Where    { return Where{name: "lt", Column: column, Op: "<"} }
func Lte(column string) Where   { return Where{name: "lte", Column: column, Op: "<="} }
func Like(column string) Where  { return Where{name: "like", Column: column, Op: "LIKE"} }
func In(column string) Where    { return Where{name: "in", Column: column, Op: "IN"} }
func NotIn(column string) Where { return Where{name: "notIn", Column: column, Op: "NOT IN"} }

// NewWhere builds the generic comparison directive. An empty operator
// means equality.
func NewWhere(column, op string) Where {
	if op == "" {
		op = "="
	}
	return Where{name: "where", Column: column, Op: op}
}

func (d Where) Name() string { return d.name }

func (d Where) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	wb, ok := b.(whereBuilder)
	if !ok {
		return nil, fmt.Errorf("directives: builder %T cannot filter by column", b)
	}
	wb.Where(d.Column, d.Op, value)
	return b, nil
}

var _ argtree.BuilderMutator = Where{}
