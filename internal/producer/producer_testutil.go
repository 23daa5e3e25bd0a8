package producer

import (
	"testing"

	language "github.com/hanpama/graphargs/internal/language"
)

// mustParseSchema parses SDL and fails the test on error.
func mustParseSchema(t *testing.T, sdl string) *language.SchemaDocument {
	t.Helper()
	d, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		t.Fatalf("parse schema error: %v", err)
	}
	return d
}

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// firstField returns the first top-level field of the first operation.
func firstField(t *testing.T, doc *language.QueryDocument) *language.Field {
	t.Helper()
	if len(doc.Operations) == 0 || len(doc.Operations[0].SelectionSet) == 0 {
		t.Fatal("document has no selections")
	}
	f, ok := doc.Operations[0].SelectionSet[0].(*language.Field)
	if !ok {
		t.Fatalf("first selection is %T, want a field", doc.Operations[0].SelectionSet[0])
	}
	return f
}

// queryFieldDef returns the named field definition from the Query type.
func queryFieldDef(t *testing.T, schema *language.SchemaDocument, name string) *language.FieldDefinition {
	t.Helper()
	for _, def := range schema.Definitions {
		if def.Name != "Query" {
			continue
		}
		if fd := def.Fields.ForName(name); fd != nil {
			return fd
		}
	}
	t.Fatalf("field %q not found on Query", name)
	return nil
}
