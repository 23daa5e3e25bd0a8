package events

import "time"

// CompileStart is emitted before compiling a GraphQL request.
type CompileStart struct {
	Query         string
	OperationName string
}

// CompileFinish is emitted after compiling completes.
type CompileFinish struct {
	Query         string
	OperationName string
	Fields        int
	Err           error
	Duration      time.Duration
}

// FieldCompile is emitted for each root field once its SQL is built.
type FieldCompile struct {
	Field    string
	Table    string
	SQL      string
	Duration time.Duration
}
