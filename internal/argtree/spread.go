package argtree

// Spread returns a new tree in which every entry marked by a Spreader
// directive and holding a nested tree is replaced by that tree's
// entries. Nested trees are spread depth-first before being merged, so
// chains of spreadable wrappers collapse in one call. Merging is
// first-writer-wins across a single left-to-right scan: an entry name
// already written to the result is kept and later arrivals under the
// same name are dropped. List values are copied as-is; Spread never
// descends into lists. The result carries the receiver's container
// directives and the receiver itself is not modified.
func (t *Tree) Spread() *Tree {
	out := &Tree{
		Directives: t.Directives,
		index:      make(map[string]int, len(t.entries)),
	}
	for _, e := range t.entries {
		arg := e.arg
		if nested, ok := arg.Value.(*Tree); ok {
			arg = &Argument{Value: nested.Spread(), Directives: arg.Directives}
		}
		if spreadable(arg.Directives) {
			if nested, ok := arg.Value.(*Tree); ok {
				for _, ne := range nested.entries {
					out.addIfAbsent(ne.name, ne.arg)
				}
				continue
			}
		}
		out.addIfAbsent(e.name, arg)
	}
	return out
}

func spreadable(directives []Directive) bool {
	for _, d := range directives {
		if _, ok := d.(Spreader); ok {
			return true
		}
	}
	return false
}
