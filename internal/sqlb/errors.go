package sqlb

import "errors"

var (
	// ErrUnknownScope indicates a scope name with no registered ScopeFunc.
	ErrUnknownScope = errors.New("sqlb: unknown scope")
)
