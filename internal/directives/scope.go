package directives

import (
	"fmt"

	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// Scope invokes a named builder scope, passing the bound value keyed
// under the argument's name.
type Scope struct {
	ScopeName string
	ArgName   string
}

func (d Scope) Name() string { return "scope" }

func (d Scope) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	next, err := b.InvokeScope(d.ScopeName, map[string]any{d.ArgName: value})
	if err != nil {
		return nil, fmt.Errorf("directives: @scope: %w", err)
	}
	return next, nil
}

// Search replaces the builder with one derived for a term search over
// its searchable columns. A null term leaves the builder untouched.
type Search struct{}

func (Search) Name() string { return "search" }

func (Search) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	if value == nil {
		return b, nil
	}
	term, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("directives: @search value is %T, want a string term", value)
	}
	sb, ok := b.(searchBuilder)
	if !ok {
		return nil, fmt.Errorf("directives: builder %T cannot search", b)
	}
	return sb.Search(term), nil
}

var (
	_ argtree.BuilderMutator = Scope{}
	_ argtree.BuilderMutator = Search{}
)
