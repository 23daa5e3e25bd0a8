package argtree

// Argument is a single named value inside a Tree together with the
// directive instances the producer attached to it. Value is one of:
// a scalar (or otherwise opaque) leaf, a nested *Tree for an input
// object, or a []any whose elements are scalars or nested *Tree values
// for list-valued arguments.
type Argument struct {
	Value      any
	Directives []Directive
}

// Tree is one scope of nested input arguments: an insertion-ordered
// mapping from argument name to *Argument. Directives holds the
// directives attached to the container itself (the field, or the input
// field whose value this tree is). Transformations carry them along
// unchanged; they are never consulted by Spread or Rename.
type Tree struct {
	Directives []Directive

	entries []treeEntry
	index   map[string]int
}

type treeEntry struct {
	name string
	arg  *Argument
}

// New creates an empty tree carrying the given container directives.
func New(directives ...Directive) *Tree {
	return &Tree{Directives: directives, index: make(map[string]int)}
}

// Len returns the number of entries.
func (t *Tree) Len() int { return len(t.entries) }

// Names returns the entry names in insertion order.
func (t *Tree) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.name
	}
	return names
}

// Get returns the entry named name.
func (t *Tree) Get(name string) (*Argument, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.entries[i].arg, true
}

// Add inserts arg under name, replacing any existing entry. A replaced
// entry keeps its original position; new entries append.
func (t *Tree) Add(name string, arg *Argument) {
	if i, ok := t.index[name]; ok {
		t.entries[i].arg = arg
		return
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, treeEntry{name: name, arg: arg})
}

// addIfAbsent inserts arg under name only when no entry with that name
// exists yet.
func (t *Tree) addIfAbsent(name string, arg *Argument) {
	if _, ok := t.index[name]; ok {
		return
	}
	t.Add(name, arg)
}

// Has reports whether an entry named name exists with a non-null value.
// A present-but-null entry and an absent entry both report false.
func (t *Tree) Has(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	return t.entries[i].arg.Value != nil
}
