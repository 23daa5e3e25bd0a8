// Package directives is the standard directive set for argument trees:
// structural markers (Spread, Rename) and builder mutators covering
// predicates, joins, ordering, pagination, scopes, and search.
//
// Mutators assert the narrow builder capability they need through the
// unexported interfaces below; a builder that lacks the capability
// fails the dispatch with an error instead of being silently skipped.
package directives

import (
	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// Builder capabilities asserted by the mutators. The reference
// implementation in internal/sqlb satisfies all of them.

type whereBuilder interface {
	Where(column, op string, value any)
	WhereRaw(expr string, args ...any)
}

type joinBuilder interface {
	Join(table, on string)
}

type orderByBuilder interface {
	OrderBy(column, direction string)
}

type limitBuilder interface {
	Limit(n int)
}

type offsetBuilder interface {
	Offset(n int)
}

type searchBuilder interface {
	Search(term string) argtree.Builder
}

// Spread marks an argument whose nested tree is flattened into the
// enclosing tree.
type Spread struct{}

func (Spread) Name() string     { return "spread" }
func (Spread) SpreadArguments() {}

// Rename stores the argument under a different key.
type Rename struct{ To string }

func (d Rename) Name() string       { return "rename" }
func (d Rename) TargetName() string { return d.To }

var (
	_ argtree.Spreader = Spread{}
	_ argtree.Renamer  = Rename{}
)
