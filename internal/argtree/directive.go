package argtree

// Directive is one directive instance attached to an argument or to a
// container. The engine never inspects a directive beyond its name and
// the capability interfaces below: a directive participates in Spread
// when it implements Spreader, in Rename when it implements Renamer,
// and in EnhanceBuilder when it implements BuilderMutator. Everything
// else about a directive is the producer's business.
type Directive interface {
	// Name returns the directive name without the leading @.
	Name() string
}

// Spreader marks an argument whose nested tree should be flattened into
// the enclosing tree by Spread. It is a pure marker: implementing the
// interface is the capability, and SpreadArguments is never called.
type Spreader interface {
	Directive
	SpreadArguments()
}

// Renamer renames the argument it is attached to during Rename.
type Renamer interface {
	Directive

	// TargetName returns the key the argument is stored under after
	// Rename.
	TargetName() string
}

// BuilderMutator applies an argument to a query builder during
// EnhanceBuilder. MutateBuilder receives the builder in its current
// state and the argument's plain value, and returns the builder to
// continue with. Implementations may mutate b and return it, or return
// a replacement; the engine threads the returned builder through every
// subsequent mutation, recursion, and scope call.
type BuilderMutator interface {
	Directive
	MutateBuilder(b Builder, value any) (Builder, error)
}

// DirectiveFilter selects which builder-mutating directives
// EnhanceBuilder dispatches. A nil filter admits every BuilderMutator.
// The filter never limits recursion into nested trees, only the
// dispatch of individual directives.
type DirectiveFilter func(BuilderMutator) bool
