package argtree

import "strings"

// AddValue sets value at the dot-separated path, creating empty
// intermediate trees as needed, and returns the receiver for chaining.
// An intermediate entry holding a non-tree value is treated as absent
// and replaced by a fresh tree, discarding the previous entry. The
// final path segment always overwrites.
func (t *Tree) AddValue(path string, value any) *Tree {
	segments := strings.Split(path, ".")
	current := t
	for _, seg := range segments[:len(segments)-1] {
		if arg, ok := current.Get(seg); ok {
			if nested, ok := arg.Value.(*Tree); ok {
				current = nested
				continue
			}
		}
		nested := New()
		current.Add(seg, &Argument{Value: nested})
		current = nested
	}
	current.Add(segments[len(segments)-1], &Argument{Value: value})
	return t
}
