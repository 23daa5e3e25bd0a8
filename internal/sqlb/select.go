// Package sqlb is a small SQL SELECT builder satisfying the argtree
// builder contracts. It renders parameterized statements with ordinal
// placeholders and never touches a database.
package sqlb

import (
	"fmt"
	"strconv"
	"strings"

	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// ScopeFunc is a named, reusable refinement registered on a Select.
// It receives the builder and the plain argument payload, and returns
// the builder to continue with.
type ScopeFunc func(s *Select, args map[string]any) (argtree.Builder, error)

// Select accumulates the parts of a SELECT statement. Mutating methods
// change the receiver in place; Search derives a new builder instead.
type Select struct {
	table      string
	alias      string
	columns    []string
	wheres     []predicate
	joins      []join
	orderBys   []orderBy
	limit      int
	offset     int
	scopes     map[string]ScopeFunc
	searchable []string
}

type predicate struct {
	expr string // uses ? placeholders
	args []any
}

type join struct {
	table string
	on    string
}

type orderBy struct {
	column    string
	direction string
}

// NewSelect creates a builder over the given table.
func NewSelect(table string, opts ...Option) *Select {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	s := &Select{
		table:      table,
		alias:      o.Alias,
		columns:    append([]string(nil), o.Columns...),
		limit:      -1,
		scopes:     make(map[string]ScopeFunc, len(o.Scopes)),
		searchable: append([]string(nil), o.Searchable...),
	}
	for name, fn := range o.Scopes {
		s.scopes[name] = fn
	}
	return s
}

var (
	_ argtree.Builder        = (*Select)(nil)
	_ argtree.TableQualifier = (*Select)(nil)
)

// Where adds an AND-composed predicate on a column. IN and NOT IN
// expect a []any value and render an empty list as a constant false
// (respectively true) predicate.
func (s *Select) Where(column, op string, value any) {
	switch op {
	case "IN", "NOT IN":
		list, _ := value.([]any)
		if len(list) == 0 {
			if op == "IN" {
				s.WhereRaw("1 = 0")
			} else {
				s.WhereRaw("1 = 1")
			}
			return
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(list)), ", ")
		s.WhereRaw(fmt.Sprintf("%s %s (%s)", column, op, placeholders), list...)
	default:
		s.WhereRaw(fmt.Sprintf("%s %s ?", column, op), value)
	}
}

// WhereRaw adds a raw predicate fragment. Use ? for each bound
// argument; ToSQL renumbers them into ordinal placeholders.
func (s *Select) WhereRaw(expr string, args ...any) {
	s.wheres = append(s.wheres, predicate{expr: expr, args: args})
}

// Join adds an inner join with a raw ON condition.
func (s *Select) Join(table, on string) {
	s.joins = append(s.joins, join{table: table, on: on})
}

// OrderBy appends an ordering term. The direction is uppercased as
// given; callers validate it.
func (s *Select) OrderBy(column, direction string) {
	s.orderBys = append(s.orderBys, orderBy{column: column, direction: strings.ToUpper(direction)})
}

// Limit sets the row limit. Negative values clear it.
func (s *Select) Limit(n int) {
	if n < 0 {
		n = -1
	}
	s.limit = n
}

// Offset sets the row offset. Non-positive values clear it.
func (s *Select) Offset(n int) {
	if n < 0 {
		n = 0
	}
	s.offset = n
}

// QualifyingTable implements argtree.TableQualifier. The alias wins
// over the table name when one is set.
func (s *Select) QualifyingTable() string {
	if s.alias != "" {
		return s.alias
	}
	return s.table
}

// RestrictColumns implements argtree.TableQualifier.
func (s *Select) RestrictColumns(table string) {
	s.columns = []string{table + ".*"}
}

// InvokeScope implements argtree.Builder by dispatching to the
// registered ScopeFunc.
func (s *Select) InvokeScope(name string, args map[string]any) (argtree.Builder, error) {
	fn, ok := s.scopes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, name)
	}
	return fn(s, args)
}

// Search derives a new builder matching term against the searchable
// columns with a case-insensitive disjunction. The receiver is left
// unchanged; with no searchable columns configured the copy is returned
// as-is.
func (s *Select) Search(term string) argtree.Builder {
	out := s.clone()
	if len(out.searchable) == 0 {
		return out
	}
	parts := make([]string, len(out.searchable))
	args := make([]any, len(out.searchable))
	for i, col := range out.searchable {
		parts[i] = col + " ILIKE ?"
		args[i] = "%" + term + "%"
	}
	out.WhereRaw("("+strings.Join(parts, " OR ")+")", args...)
	return out
}

func (s *Select) clone() *Select {
	out := &Select{
		table:      s.table,
		alias:      s.alias,
		columns:    append([]string(nil), s.columns...),
		wheres:     append([]predicate(nil), s.wheres...),
		joins:      append([]join(nil), s.joins...),
		orderBys:   append([]orderBy(nil), s.orderBys...),
		limit:      s.limit,
		offset:     s.offset,
		scopes:     make(map[string]ScopeFunc, len(s.scopes)),
		searchable: append([]string(nil), s.searchable...),
	}
	for name, fn := range s.scopes {
		out.scopes[name] = fn
	}
	return out
}

// ToSQL renders the statement with $n placeholders and returns it with
// the bound arguments in placeholder order.
func (s *Select) ToSQL() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(s.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(s.table)
	if s.alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(s.alias)
	}
	for _, j := range s.joins {
		sb.WriteString(" JOIN ")
		sb.WriteString(j.table)
		sb.WriteString(" ON ")
		sb.WriteString(j.on)
	}

	var args []any
	if len(s.wheres) > 0 {
		sb.WriteString(" WHERE ")
		n := 0
		for i, w := range s.wheres {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			for _, r := range w.expr {
				if r == '?' {
					n++
					sb.WriteString("$")
					sb.WriteString(strconv.Itoa(n))
					continue
				}
				sb.WriteRune(r)
			}
			args = append(args, w.args...)
		}
	}

	if len(s.orderBys) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, ob := range s.orderBys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ob.column)
			sb.WriteString(" ")
			sb.WriteString(ob.direction)
		}
	}
	if s.limit >= 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(s.limit))
	}
	if s.offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(s.offset))
	}
	return sb.String(), args
}
