package argtree

import "fmt"

// EnhanceBuilder applies the tree to a query builder in three steps:
// directive dispatch over the whole tree, source qualification, then
// scope invocation.
//
// Dispatch walks the entries in insertion order. For each entry it
// calls MutateBuilder on every BuilderMutator directive the filter
// admits, passing the entry's plain value, then recurses into the
// entry's nested tree, or into each tree element of its list value.
// The builder returned by each call replaces the one in hand, so every
// later mutation and every enclosing level continues on the replaced
// builder.
//
// After dispatch, if the builder reports a qualifying table the
// selected columns are restricted to it. Then the scopes are invoked in
// the given order, each receiving the full tree in plain form, each
// returning the builder the next one runs on.
//
// The first error aborts the walk and is returned with the failing
// argument and directive in the message. The builder's state after an
// error is whatever the failing call left behind.
func (t *Tree) EnhanceBuilder(b Builder, scopes []string, filter DirectiveFilter) (Builder, error) {
	b, err := t.applyBuilderMutators(b, filter)
	if err != nil {
		return nil, err
	}
	if q, ok := b.(TableQualifier); ok {
		if table := q.QualifyingTable(); table != "" {
			q.RestrictColumns(table)
		}
	}
	for _, scope := range scopes {
		next, err := b.InvokeScope(scope, t.ToMap())
		if err != nil {
			return nil, fmt.Errorf("scope %q: %w", scope, err)
		}
		b = next
	}
	return b, nil
}

func (t *Tree) applyBuilderMutators(b Builder, filter DirectiveFilter) (Builder, error) {
	for _, e := range t.entries {
		for _, d := range e.arg.Directives {
			m, ok := d.(BuilderMutator)
			if !ok {
				continue
			}
			if filter != nil && !filter(m) {
				continue
			}
			next, err := m.MutateBuilder(b, e.arg.Plain())
			if err != nil {
				return nil, fmt.Errorf("argument %q: directive @%s: %w", e.name, d.Name(), err)
			}
			b = next
		}
		switch v := e.arg.Value.(type) {
		case *Tree:
			next, err := v.applyBuilderMutators(b, filter)
			if err != nil {
				return nil, err
			}
			b = next
		case []any:
			for _, item := range v {
				nested, ok := item.(*Tree)
				if !ok {
					continue
				}
				next, err := nested.applyBuilderMutators(b, filter)
				if err != nil {
					return nil, err
				}
				b = next
			}
		}
	}
	return b, nil
}
