package argtree

// Builder is the opaque query-construction handle EnhanceBuilder
// threads through directive dispatch. The engine never constructs
// builders and never inspects them beyond the interfaces here;
// directives cast the builder to whatever concrete type they expect.
//
// Builders are treated as mutable handles: a mutation may change the
// builder in place or hand back a different one, and the engine always
// continues with the returned value. There is no rollback. When a
// mutation or scope fails, the builder is left in whatever state the
// failing call produced and the error is returned to the caller.
type Builder interface {
	// InvokeScope applies the named scope to the builder with the
	// tree's plain arguments and returns the builder to continue with.
	// Unknown scope names are an error.
	InvokeScope(name string, args map[string]any) (Builder, error)
}

// TableQualifier is implemented by builders whose underlying source is
// a named table. When the builder entering EnhanceBuilder reports a
// non-empty QualifyingTable, the engine calls RestrictColumns with that
// name before invoking scopes, so that a later join cannot make the
// selected columns ambiguous.
type TableQualifier interface {
	// QualifyingTable returns the source table name, or "" when the
	// builder has no determinable source.
	QualifyingTable() string

	// RestrictColumns narrows the selected columns to table.*.
	RestrictColumns(table string)
}
