package compile

import (
	"fmt"

	argtree "github.com/hanpama/graphargs/internal/argtree"
	directives "github.com/hanpama/graphargs/internal/directives"
	producer "github.com/hanpama/graphargs/internal/producer"
)

// annotation is a schema-side marker the compiler itself interprets.
// Binding it yields a directive with no transformation capability, so
// the tree carries it without effect.
type annotation struct{ name string }

func (a annotation) Name() string { return a.name }

// StandardBinder resolves the standard directive names to their
// implementations in internal/directives. The where family's column
// defaults to the bound argument's name, and @scope's scope name and
// @with's relation default to it as well.
func StandardBinder() producer.Binder {
	return producer.BinderFunc(bindStandard)
}

func bindStandard(use producer.DirectiveUse) (argtree.Directive, error) {
	str := func(key string) string {
		s, _ := use.Args[key].(string)
		return s
	}
	column := str("column")
	if column == "" {
		column = use.Arg
	}
	switch use.Name {
	case "spread":
		return directives.Spread{}, nil
	case "rename":
		to := str("to")
		if to == "" {
			return nil, fmt.Errorf("compile: @rename requires to:")
		}
		return directives.Rename{To: to}, nil
	case "eq":
		return directives.Eq(column), nil
	case "neq":
		return directives.Neq(column), nil
	case "gt":
		return directives.Gt(column), nil
	case "gte":
		return directives.Gte(column), nil
	case "lt":
		return directives.Lt(column), nil
	case "lte":
		return directives.Lte(column), nil
	case "like":
		return directives.Like(column), nil
	case "in":
		return directives.In(column), nil
	case "notIn":
		return directives.NotIn(column), nil
	case "where":
		return directives.NewWhere(column, str("operator")), nil
	case "with":
		relation := str("relation")
		if relation == "" {
			relation = use.Arg
		}
		foreignKey := str("foreignKey")
		if foreignKey == "" {
			return nil, fmt.Errorf("compile: @with requires foreignKey:")
		}
		return directives.NewWith(relation, foreignKey, str("ownerKey")), nil
	case "orderBy":
		return directives.OrderBy{Column: str("column"), Direction: str("direction")}, nil
	case "limit":
		return directives.Limit{}, nil
	case "offset":
		return directives.Offset{}, nil
	case "scope":
		name := str("name")
		if name == "" {
			name = use.Arg
		}
		return directives.Scope{ScopeName: name, ArgName: use.Arg}, nil
	case "search":
		return directives.Search{}, nil
	case "table", "scopes", "deprecated":
		return annotation{name: use.Name}, nil
	}
	return nil, fmt.Errorf("compile: unknown directive @%s", use.Name)
}

// DirectiveDoc describes one standard directive for help output.
type DirectiveDoc struct {
	Name     string
	Synopsis string
}

// StandardDirectiveDocs lists the standard directive set in display
// order.
func StandardDirectiveDocs() []DirectiveDoc {
	return []DirectiveDoc{
		{"spread", "flatten the nested input's entries into the enclosing tree"},
		{"rename", "store the value under to: instead of the schema name"},
		{"eq", "column = value (column: defaults to the argument name)"},
		{"neq", "column != value"},
		{"gt", "column > value"},
		{"gte", "column >= value"},
		{"lt", "column < value"},
		{"lte", "column <= value"},
		{"like", "column LIKE value"},
		{"in", "column IN value list"},
		{"notIn", "column NOT IN value list"},
		{"where", "column compared with operator: (default =)"},
		{"with", "join relation: on foreignKey: when the value is truthy"},
		{"orderBy", "append ordering terms from the value"},
		{"limit", "cap the result size"},
		{"offset", "skip leading rows"},
		{"scope", "invoke the named builder scope with the value"},
		{"search", "replace the builder with a term search"},
		{"table", "annotation: source table name:, alias:, columns:, searchable:"},
		{"scopes", "annotation: registered scopes to apply:"},
	}
}
