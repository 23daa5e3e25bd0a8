// Package compile turns GraphQL requests into SQL statements. For each
// root field it produces the argument tree, injects schema defaults and
// configured presets, runs the structural transformations, and drives a
// select builder through directive dispatch. The schema's @table and
// @scopes annotations tell it which table to select from and which
// registered scopes to apply.
package compile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	eventbus "github.com/hanpama/graphargs/internal/eventbus"
	events "github.com/hanpama/graphargs/internal/events"
	language "github.com/hanpama/graphargs/internal/language"
	producer "github.com/hanpama/graphargs/internal/producer"
	sqlb "github.com/hanpama/graphargs/internal/sqlb"
)

// Compiler compiles requests against one schema.
type Compiler struct {
	opts   *Options
	prod   *producer.Producer
	query  *language.Definition
	inputs map[string]*language.Definition
}

// New parses the schema source and indexes its Query fields. The name
// is used in parse errors and check violations.
func New(name, source string, opts ...Option) (*Compiler, error) {
	return newFromSources(name, []*language.Source{{Name: name, Input: source}}, opts)
}

// NewFromFiles loads the schema from a file, or from every .graphql
// file under a directory. Positions in errors and violations name the
// file they came from.
func NewFromFiles(path string, opts ...Option) (*Compiler, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if !info.IsDir() {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
		return New(path, string(source), opts...)
	}

	var sources []*language.Source
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ".graphql" {
			return nil
		}
		source, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		sources = append(sources, &language.Source{Name: p, Input: string(source)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compile: walk %s: %w", path, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("compile: no .graphql files under %s", path)
	}
	return newFromSources(path, sources, opts)
}

func newFromSources(label string, sources []*language.Source, opts []Option) (*Compiler, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	doc, err := language.ParseSchemas(sources...)
	if err != nil {
		return nil, fmt.Errorf("compile: parse schema: %w", err)
	}
	c := &Compiler{
		opts:   o,
		inputs: make(map[string]*language.Definition),
	}
	for _, def := range doc.Definitions {
		switch {
		case def.Kind == language.Object && def.Name == "Query":
			c.query = def
		case def.Kind == language.InputObject:
			c.inputs[def.Name] = def
		}
	}
	// Extensions merge after all definitions so file order does not
	// matter.
	for _, ext := range doc.Extensions {
		switch {
		case ext.Kind == language.Object && ext.Name == "Query":
			if c.query != nil {
				c.query.Fields = append(c.query.Fields, ext.Fields...)
			}
		case ext.Kind == language.InputObject:
			if def, ok := c.inputs[ext.Name]; ok {
				def.Fields = append(def.Fields, ext.Fields...)
			}
		}
	}
	if c.query == nil {
		return nil, fmt.Errorf("compile: schema %s defines no Query type", label)
	}
	c.prod = producer.New(doc, o.Binder)
	return c, nil
}

// Request is one GraphQL request to compile.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// FieldSQL is the compiled form of one root field. Name is the response
// key, so an aliased field reports its alias.
type FieldSQL struct {
	Name  string `json:"name"`
	Table string `json:"table"`
	SQL   string `json:"sql"`
	Args  []any  `json:"args"`
}

// Result holds the compiled statements of one operation.
type Result struct {
	Fields []FieldSQL `json:"fields"`
}

// Compile parses the request, selects its operation, and compiles every
// root field to SQL.
func (c *Compiler) Compile(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	eventbus.Publish(ctx, events.CompileStart{Query: req.Query, OperationName: req.OperationName})
	res, err := c.compile(ctx, req)
	fields := 0
	if res != nil {
		fields = len(res.Fields)
	}
	eventbus.Publish(ctx, events.CompileFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		Fields:        fields,
		Err:           err,
		Duration:      time.Since(started),
	})
	return res, err
}

func (c *Compiler) compile(ctx context.Context, req Request) (*Result, error) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return nil, fmt.Errorf("compile: parse query: %w", err)
	}
	op, err := chooseOperation(doc, req.OperationName)
	if err != nil {
		return nil, err
	}
	if op.Operation != language.Query {
		return nil, fmt.Errorf("compile: only query operations are supported, got %s", op.Operation)
	}
	vars, err := operationVariables(op, req.Variables)
	if err != nil {
		return nil, err
	}

	res := &Result{Fields: make([]FieldSQL, 0, len(op.SelectionSet))}
	for _, sel := range op.SelectionSet {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		field, ok := sel.(*language.Field)
		if !ok {
			return nil, fmt.Errorf("compile: fragments are not supported at the operation root")
		}
		fs, err := c.compileField(ctx, field, vars)
		if err != nil {
			return nil, fmt.Errorf("compile: field %q: %w", field.Name, err)
		}
		res.Fields = append(res.Fields, fs)
	}
	return res, nil
}

func (c *Compiler) compileField(ctx context.Context, field *language.Field, vars map[string]any) (FieldSQL, error) {
	started := time.Now()
	def := c.query.Fields.ForName(field.Name)
	if def == nil {
		return FieldSQL{}, fmt.Errorf("not defined on Query")
	}

	tree, err := c.prod.FromField(field, def, vars)
	if err != nil {
		return FieldSQL{}, err
	}
	if tree, err = c.prod.ApplyDefaults(tree, def); err != nil {
		return FieldSQL{}, err
	}
	for _, pre := range c.opts.Presets {
		tree.AddValue(pre.Path, pre.Value)
	}
	tree = tree.Spread().Rename()

	src := tableSource(def)
	enhanced, err := tree.EnhanceBuilder(c.newBuilder(src), src.scopes, c.opts.Filter)
	if err != nil {
		return FieldSQL{}, err
	}
	sel, ok := enhanced.(*sqlb.Select)
	if !ok {
		return FieldSQL{}, fmt.Errorf("builder %T cannot render SQL", enhanced)
	}
	sql, args := sel.ToSQL()

	fs := FieldSQL{Name: field.Alias, Table: src.table, SQL: sql, Args: args}
	eventbus.Publish(ctx, events.FieldCompile{
		Field:    fs.Name,
		Table:    fs.Table,
		SQL:      fs.SQL,
		Duration: time.Since(started),
	})
	return fs, nil
}

func chooseOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name != "" {
		if op := doc.Operations.ForName(name); op != nil {
			return op, nil
		}
		return nil, fmt.Errorf("compile: operation %q is not defined", name)
	}
	if len(doc.Operations) == 1 {
		return doc.Operations[0], nil
	}
	return nil, fmt.Errorf("compile: operation name required, document defines %d operations", len(doc.Operations))
}

// operationVariables resolves the operation's variable definitions
// against the provided values, falling back to declared defaults.
func operationVariables(op *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	vars := make(map[string]any, len(op.VariableDefinitions))
	for _, vd := range op.VariableDefinitions {
		if val, ok := provided[vd.Variable]; ok {
			vars[vd.Variable] = val
			continue
		}
		if vd.DefaultValue != nil {
			vars[vd.Variable] = producer.Literal(vd.DefaultValue)
			continue
		}
		if vd.Type.NonNull {
			return nil, fmt.Errorf("compile: variable $%s of required type %s was not provided", vd.Variable, vd.Type.String())
		}
	}
	return vars, nil
}

// source is what the @table and @scopes annotations declare for a
// Query field.
type source struct {
	table      string
	alias      string
	columns    []string
	searchable []string
	scopes     []string
}

// tableSource reads a field's annotations. The table name defaults to
// the field name.
func tableSource(def *language.FieldDefinition) source {
	src := source{table: def.Name}
	if d := def.Directives.ForName("table"); d != nil {
		args := directiveArgs(d)
		if name, ok := args["name"].(string); ok && name != "" {
			src.table = name
		}
		if alias, ok := args["alias"].(string); ok {
			src.alias = alias
		}
		src.columns = stringList(args["columns"])
		src.searchable = stringList(args["searchable"])
	}
	if d := def.Directives.ForName("scopes"); d != nil {
		src.scopes = stringList(directiveArgs(d)["apply"])
	}
	return src
}

func (c *Compiler) newBuilder(src source) *sqlb.Select {
	opts := make([]sqlb.Option, 0, 3+len(c.opts.Scopes))
	if src.alias != "" {
		opts = append(opts, sqlb.WithAlias(src.alias))
	}
	if len(src.columns) > 0 {
		opts = append(opts, sqlb.WithColumns(src.columns...))
	}
	if len(src.searchable) > 0 {
		opts = append(opts, sqlb.WithSearchable(src.searchable...))
	}
	for name, fn := range c.opts.Scopes {
		opts = append(opts, sqlb.WithScope(name, fn))
	}
	return sqlb.NewSelect(src.table, opts...)
}

func directiveArgs(d *language.Directive) map[string]any {
	args := make(map[string]any, len(d.Arguments))
	for _, a := range d.Arguments {
		args[a.Name] = producer.Literal(a.Value)
	}
	return args
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
