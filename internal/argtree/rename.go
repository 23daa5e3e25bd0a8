package argtree

// Rename returns a new tree in which every entry carrying a Renamer
// directive is stored under the directive's target name instead of its
// original one. Values are rewritten in place first: a nested tree is
// replaced by its renamed form, and a list value is replaced by a new
// slice whose tree elements are renamed (other elements are carried
// unchanged). When two entries rename to the same target the later one
// wins. The result carries the receiver's container directives; the
// receiver's own name-to-entry mapping is left as it was.
func (t *Tree) Rename() *Tree {
	out := &Tree{
		Directives: t.Directives,
		index:      make(map[string]int, len(t.entries)),
	}
	for _, e := range t.entries {
		arg := e.arg
		switch v := arg.Value.(type) {
		case *Tree:
			arg.Value = v.Rename()
		case []any:
			renamed := make([]any, len(v))
			for i, item := range v {
				if nested, ok := item.(*Tree); ok {
					renamed[i] = nested.Rename()
				} else {
					renamed[i] = item
				}
			}
			arg.Value = renamed
		}
		name := e.name
		if r, ok := findRenamer(arg.Directives); ok {
			name = r.TargetName()
		}
		out.Add(name, arg)
	}
	return out
}

func findRenamer(directives []Directive) (Renamer, bool) {
	for _, d := range directives {
		if r, ok := d.(Renamer); ok {
			return r, true
		}
	}
	return nil, false
}
