// Package argtree implements the directive-driven argument tree: an
// insertion-ordered representation of nested field input arguments,
// structure-level transformations over it, and a dispatcher that turns
// the attached directives into query-builder mutations.
//
// # Overview
//
// A Tree is one scope of arguments: an ordered mapping from argument
// name to Argument, plus the directives attached to the container
// itself. An Argument pairs a value with the directive instances bound
// to that exact position. Values nest: an input object becomes a nested
// *Tree, a list becomes []any whose elements may themselves be trees.
// Producers (anything that maps request syntax onto trees) construct
// this shape; this package never parses and never resolves directive
// names, it only acts on the directive instances it is handed.
//
// The package deliberately knows nothing about any concrete directive.
// Behavior is keyed on capability interfaces:
//   - Spreader marks an argument whose nested tree is flattened into
//     the parent by Spread.
//   - Renamer supplies the target key an argument moves to under
//     Rename.
//   - BuilderMutator applies an argument to a query builder during
//     EnhanceBuilder.
//
// A directive type opts into a behavior by implementing the interface;
// directives without a recognized capability ride along untouched.
//
// # Transformations
//
// Spread and Rename are whole-tree rewrites that return a new Tree
// carrying the receiver's container directives:
//   - Spread recurses depth-first, then merges each spreadable entry's
//     nested tree into the parent. Merging is first-writer-wins across
//     one left-to-right scan and never descends into lists.
//   - Rename rewrites values in place (nested trees directly, trees
//     inside list values via a fresh slice) and re-keys each entry by
//     its first Renamer. Colliding targets resolve last-writer-wins.
//
// AddValue is an in-place mutation: it writes a leaf at a dot path,
// synthesizing empty intermediate trees, and returns the receiver so
// calls chain. ToMap strips the structure down to plain nested Go data,
// passing every leaf through the registered Unwrapper chain (the
// built-in one converts protobuf enum values to their symbolic names).
//
// # Builder Enhancement
//
// EnhanceBuilder is the bridge from annotated arguments to a concrete
// query. It walks the tree in insertion order dispatching every
// BuilderMutator the DirectiveFilter admits, recurses into nested trees
// and into tree elements of lists, then qualifies the builder's source
// table (TableQualifier) and invokes the requested scopes in order.
// The builder value returned by each mutation and each scope replaces
// the one in hand for everything that follows, including the levels
// above the recursion that produced it. Errors abort the walk; there is
// no rollback.
//
// See builder.go for the Builder and TableQualifier contracts.
package argtree
