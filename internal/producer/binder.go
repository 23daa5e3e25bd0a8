package producer

import (
	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// DirectiveUse is one directive occurrence read off the schema: the
// directive's name, its literal arguments, and the name of the
// argument, input field, or field it is attached to.
type DirectiveUse struct {
	Name string
	Args map[string]any
	Arg  string
}

// Binder resolves a directive use to a directive instance. Which
// implementations exist, and how names map to them, stays entirely on
// the caller's side; the producer only forwards uses and attaches
// whatever comes back.
type Binder interface {
	Bind(use DirectiveUse) (argtree.Directive, error)
}

// BinderFunc adapts a function to the Binder interface.
type BinderFunc func(use DirectiveUse) (argtree.Directive, error)

func (f BinderFunc) Bind(use DirectiveUse) (argtree.Directive, error) { return f(use) }
