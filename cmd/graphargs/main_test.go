package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSDL = `
directive @limit on ARGUMENT_DEFINITION
directive @table(name: String, alias: String, searchable: [String!]) on FIELD_DEFINITION

type Post {
  id: ID
}

type Query {
  posts(first: Int @limit): [Post] @table(name: "posts")
}
`

// captureOutput swaps the process stdout and stderr for pipes while fn runs.
func captureOutput(t *testing.T, fn func() error) (string, string, error) {
	t.Helper()
	oldOut, oldErr := os.Stdout, os.Stderr
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout, os.Stderr = outW, errW
	defer func() { os.Stdout, os.Stderr = oldOut, oldErr }()

	runErr := fn()

	outW.Close()
	errW.Close()
	outB, _ := io.ReadAll(outR)
	errB, _ := io.ReadAll(errR)
	return string(outB), string(errB), runErr
}

func writeTempSchema(t *testing.T, sdl string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.graphql")
	if err := os.WriteFile(path, []byte(sdl), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func TestHelpPrintsCommandUsage(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"help", "explain"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "explain FLAGS") {
		t.Fatalf("usage not printed: %q", out)
	}
}

func TestExplainCompilesQuery(t *testing.T) {
	schema := writeTempSchema(t, testSDL)
	out, _, err := captureOutput(t, func() error {
		return run([]string{"explain", "-schema", schema, "-query", `{ posts(first: 3) }`})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "SELECT posts.* FROM posts LIMIT 3") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCheckAcceptsCleanSchema(t *testing.T) {
	schema := writeTempSchema(t, testSDL)
	out, _, err := captureOutput(t, func() error {
		return run([]string{"check", "-schema", schema})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ": ok") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCheckReportsViolations(t *testing.T) {
	schema := writeTempSchema(t, `
directive @bogus on ARGUMENT_DEFINITION
type Query {
  q(x: String @bogus): Int
}
`)
	_, _, err := captureOutput(t, func() error {
		return run([]string{"check", "-schema", schema})
	})
	if err == nil {
		t.Fatal("expected violations")
	}
	if !strings.Contains(err.Error(), "@bogus") {
		t.Fatalf("error does not name the directive: %v", err)
	}
}

func TestDirectivesListsStandardSet(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"directives"})
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"@spread", "@rename", "@limit", "@search"} {
		if !strings.Contains(out, name) {
			t.Fatalf("missing %s in output:\n%s", name, out)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := captureOutput(t, func() error {
		return run([]string{"frobnicate"})
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
