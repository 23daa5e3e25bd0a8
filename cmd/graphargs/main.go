package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hanpama/graphargs/internal/compile"
	"github.com/hanpama/graphargs/internal/eventbus"
	"github.com/hanpama/graphargs/internal/otel"
	"github.com/hanpama/graphargs/internal/server"
)

const rootUsage = `graphargs — compile GraphQL arguments into SQL

USAGE:
  graphargs <command> [flags]

COMMANDS:
  explain      Compile a request against a schema and print the SQL
  serve        Run the HTTP explain endpoint
  check        Validate a schema's directive uses
  directives   List the standard directive set
  help         Show help for any command
`

const explainUsage = `explain FLAGS:
  -schema <path>       Schema file or directory of .graphql files (required)
  -query <string>      Request document (or use -query.file)
  -query.file <file>   Read the request document from a file
  -variables <json>    Variables as a JSON object
  -operation <name>    Operation to compile when the document has several
  -pretty              Pretty-print the JSON output
`

const serveUsage = `serve FLAGS:
  -schema <path>              Schema file or directory of .graphql files (required)
  -server.addr <addr>         HTTP listen address (default: :8080)
  -server.pretty              Pretty-print JSON responses
  -server.timeout <duration>  Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>    Request body size limit (default: 1048576)
  -server.cors <origin>       Allow CORS origin. Repeatable; * allows any
  -otel.endpoint <addr>       OTLP collector endpoint
  -otel.service <name>        OpenTelemetry service name (default: graphargs)
`

const checkUsage = `check FLAGS:
  -schema <path>  Schema file or directory to validate (required)
  (Exits non-zero when violations are found)
`

const directivesUsage = `directives FLAGS:
  (none; prints the standard directive set)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphargs", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		// print usage on parse error
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "explain":
		return cmdExplain(cmdArgs)
	case "serve":
		return cmdServe(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "directives":
		return cmdDirectives(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "explain":
		fmt.Print(explainUsage)
	case "serve":
		fmt.Print(serveUsage)
	case "check":
		fmt.Print(checkUsage)
	case "directives":
		fmt.Print(directivesUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func loadCompiler(path string) (*compile.Compiler, error) {
	return compile.NewFromFiles(path)
}

func cmdExplain(args []string) error {
	schemaPath := ""
	query := ""
	queryFile := ""
	varsJSON := ""
	operation := ""
	pretty := false

	fs := flag.NewFlagSet("explain", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaPath, "schema", schemaPath, "GraphQL schema file or directory")
	fs.StringVar(&query, "query", query, "Request document")
	fs.StringVar(&queryFile, "query.file", queryFile, "Request document file")
	fs.StringVar(&varsJSON, "variables", varsJSON, "Variables as JSON")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print output")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, explainUsage)
		return err
	}
	if schemaPath == "" {
		fmt.Fprint(os.Stderr, explainUsage)
		return fmt.Errorf("-schema is required")
	}
	if query == "" && queryFile == "" {
		fmt.Fprint(os.Stderr, explainUsage)
		return fmt.Errorf("-query or -query.file is required")
	}
	if queryFile != "" {
		b, err := os.ReadFile(queryFile)
		if err != nil {
			return fmt.Errorf("read query: %w", err)
		}
		query = string(b)
	}
	vars := map[string]any{}
	if varsJSON != "" {
		if err := json.Unmarshal([]byte(varsJSON), &vars); err != nil {
			return fmt.Errorf("parse variables: %w", err)
		}
	}

	c, err := loadCompiler(schemaPath)
	if err != nil {
		return err
	}
	res, err := c.Compile(context.Background(), compile.Request{
		Query:         query,
		OperationName: operation,
		Variables:     vars,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func cmdServe(args []string) error {
	schemaPath := ""
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	otelEndpoint := ""
	otelService := "graphargs"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaPath, "schema", schemaPath, "GraphQL schema file or directory")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Request body size limit")
	fs.Var(&corsOrigins, "server.cors", "Allow CORS origin")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if schemaPath == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-schema is required")
	}

	c, err := loadCompiler(schemaPath)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if maxBody > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(maxBody))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}

	mux := http.NewServeMux()
	mux.Handle("/explain", server.New(c, sopts...))

	log.Printf("explain endpoint listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdCheck(args []string) error {
	schemaPath := ""
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaPath, "schema", schemaPath, "GraphQL schema file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}
	if schemaPath == "" {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("-schema is required")
	}

	c, err := loadCompiler(schemaPath)
	if err != nil {
		return err
	}
	if err := c.Check(); err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", schemaPath)
	return nil
}

func cmdDirectives(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("directives takes no arguments")
	}
	for _, d := range compile.StandardDirectiveDocs() {
		fmt.Printf("  @%-8s %s\n", d.Name, d.Synopsis)
	}
	return nil
}
