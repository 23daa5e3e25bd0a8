package argtree

// BuilderCall op kinds recorded by MockBuilder.
const (
	CallOpMutate   = "mutate"
	CallOpRestrict = "restrict"
	CallOpScope    = "scope"
)

// BuilderCall is a single recorded interaction with a MockBuilder.
type BuilderCall struct {
	Op    string
	Name  string         // directive name, table name, or scope name
	Value any            // plain value passed to a mutation
	Args  map[string]any // payload passed to a scope
}

// MockBuilder implements Builder and TableQualifier with a call log,
// for asserting dispatch order and builder threading in tests.
type MockBuilder struct {
	// ID distinguishes builder instances when a mutation or scope
	// hands back a replacement.
	ID string

	// Table is what QualifyingTable reports; leave empty for a builder
	// without a determinable source.
	Table string

	// ScopeFunc, when set, decides the outcome of InvokeScope after
	// the call is logged. The default returns the receiver.
	ScopeFunc func(name string, args map[string]any) (Builder, error)

	calls []BuilderCall
}

// NewMockBuilder creates a MockBuilder with the given identity and
// qualifying table.
func NewMockBuilder(id, table string) *MockBuilder {
	return &MockBuilder{ID: id, Table: table}
}

// InvokeScope implements Builder.
func (b *MockBuilder) InvokeScope(name string, args map[string]any) (Builder, error) {
	b.calls = append(b.calls, BuilderCall{Op: CallOpScope, Name: name, Args: args})
	if b.ScopeFunc != nil {
		return b.ScopeFunc(name, args)
	}
	return b, nil
}

// QualifyingTable implements TableQualifier.
func (b *MockBuilder) QualifyingTable() string { return b.Table }

// RestrictColumns implements TableQualifier.
func (b *MockBuilder) RestrictColumns(table string) {
	b.calls = append(b.calls, BuilderCall{Op: CallOpRestrict, Name: table})
}

// RecordMutation logs a directive mutation against this builder. Test
// directives call it from MutateBuilder so that mutations, column
// restriction, and scope calls share one ordered log.
func (b *MockBuilder) RecordMutation(directive string, value any) {
	b.calls = append(b.calls, BuilderCall{Op: CallOpMutate, Name: directive, Value: value})
}

// GetCalls returns a copy of the recorded calls in order.
func (b *MockBuilder) GetCalls() []BuilderCall {
	out := make([]BuilderCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// Reset clears the call log.
func (b *MockBuilder) Reset() {
	b.calls = nil
}
