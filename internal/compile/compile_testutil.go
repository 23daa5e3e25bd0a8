package compile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	argtree "github.com/hanpama/graphargs/internal/argtree"
	sqlb "github.com/hanpama/graphargs/internal/sqlb"
)

func testSchemaSource(t *testing.T) string {
	t.Helper()
	source, err := os.ReadFile(filepath.Join("testdata", "schema.graphql"))
	require.NoError(t, err)
	return string(source)
}

// newTestCompiler loads testdata/schema.graphql with the scopes the
// fixture's annotations expect registered. Extra options append after
// the base set, so a test can override a scope by name.
func newTestCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	base := []Option{
		WithScope("visible", visibleScope),
		WithScope("curated", curatedScope),
	}
	c, err := New("schema.graphql", testSchemaSource(t), append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func visibleScope(s *sqlb.Select, _ map[string]any) (argtree.Builder, error) {
	s.WhereRaw("deleted_at IS NULL")
	return s, nil
}

func curatedScope(s *sqlb.Select, args map[string]any) (argtree.Builder, error) {
	s.WhereRaw("curated = ?", args["curated"])
	return s, nil
}

// scopeRecorder captures the payload of every invocation so tests can
// observe what a scope sees.
type scopeRecorder struct {
	payloads []map[string]any
}

func (r *scopeRecorder) record(s *sqlb.Select, args map[string]any) (argtree.Builder, error) {
	r.payloads = append(r.payloads, args)
	return s, nil
}
