// Package producer maps parsed GraphQL field invocations onto argument
// trees. It reads provided arguments off the request AST, nested input
// objects off the schema's input definitions, and binds every
// schema-side directive through a caller-supplied Binder. It never
// decides what a directive means.
package producer

import (
	"fmt"
	"strconv"

	argtree "github.com/hanpama/graphargs/internal/argtree"
	language "github.com/hanpama/graphargs/internal/language"
)

// Producer builds argument trees against one schema document.
type Producer struct {
	inputs map[string]*language.Definition
	binder Binder
}

// New creates a Producer over the schema's input object definitions.
// The binder must be non-nil for any schema that attaches directives.
func New(schema *language.SchemaDocument, binder Binder) *Producer {
	inputs := make(map[string]*language.Definition)
	for _, def := range schema.Definitions {
		if def.Kind == language.InputObject {
			inputs[def.Name] = def
		}
	}
	return &Producer{inputs: inputs, binder: binder}
}

// FromField builds the argument tree for one field invocation. Only
// provided arguments produce entries, in request order; an argument
// supplied through an absent variable without a default is treated as
// not provided. Variable-supplied input objects follow the input
// definition's field order. The root tree carries the field
// definition's bound directives; every nested tree carries the bound
// directives of the input field (or argument) holding it.
func (p *Producer) FromField(field *language.Field, def *language.FieldDefinition, vars map[string]any) (*argtree.Tree, error) {
	container, err := p.bindAll(def.Directives, field.Name)
	if err != nil {
		return nil, err
	}
	tree := argtree.New(container...)
	for _, a := range field.Arguments {
		argDef := def.Arguments.ForName(a.Name)
		if argDef == nil {
			return nil, fmt.Errorf("producer: argument %q is not defined on field %q", a.Name, field.Name)
		}
		value, provided, err := p.value(a.Value, argDef.Type, vars)
		if err != nil {
			return nil, fmt.Errorf("producer: argument %q: %w", a.Name, err)
		}
		if !provided {
			continue
		}
		ds, err := p.bindAll(argDef.Directives, a.Name)
		if err != nil {
			return nil, err
		}
		attachContainer(value, ds)
		tree.Add(a.Name, &argtree.Argument{Value: value, Directives: ds})
	}
	return tree, nil
}

// ApplyDefaults adds an entry for every argument the request left out
// that declares a schema default. An entry holding an explicit null
// still counts as provided. Injected entries carry the argument
// definition's bound directives, same as provided ones, and land after
// the provided entries in definition order.
func (p *Producer) ApplyDefaults(tree *argtree.Tree, def *language.FieldDefinition) (*argtree.Tree, error) {
	for _, argDef := range def.Arguments {
		if argDef.DefaultValue == nil {
			continue
		}
		if _, provided := tree.Get(argDef.Name); provided {
			continue
		}
		value, _, err := p.value(argDef.DefaultValue, argDef.Type, nil)
		if err != nil {
			return nil, fmt.Errorf("producer: argument %q: %w", argDef.Name, err)
		}
		ds, err := p.bindAll(argDef.Directives, argDef.Name)
		if err != nil {
			return nil, err
		}
		attachContainer(value, ds)
		tree.Add(argDef.Name, &argtree.Argument{Value: value, Directives: ds})
	}
	return tree, nil
}

// value converts a request AST value. provided is false when the value
// came from an absent variable with no default.
func (p *Producer) value(v *language.Value, t *language.Type, vars map[string]any) (value any, provided bool, err error) {
	if v == nil {
		return nil, false, nil
	}
	switch v.Kind {
	case language.Variable:
		val, ok := vars[v.Raw]
		if !ok {
			if v.VariableDefinition != nil && v.VariableDefinition.DefaultValue != nil {
				return p.value(v.VariableDefinition.DefaultValue, t, vars)
			}
			return nil, false, nil
		}
		out, err := p.variableValue(val, t)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	case language.IntValue:
		n, err := strconv.Atoi(v.Raw)
		if err != nil {
			return nil, false, fmt.Errorf("invalid int %q", v.Raw)
		}
		return n, true, nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return nil, false, fmt.Errorf("invalid float %q", v.Raw)
		}
		return f, true, nil
	case language.StringValue, language.BlockValue:
		return v.Raw, true, nil
	case language.BooleanValue:
		return v.Raw == "true", true, nil
	case language.NullValue:
		return nil, true, nil
	case language.EnumValue:
		return v.Raw, true, nil
	case language.ListValue:
		out := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			cv, ok, err := p.value(c.Value, elemType(t), vars)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				continue
			}
			out = append(out, cv)
		}
		return out, true, nil
	case language.ObjectValue:
		tree, err := p.objectTree(v.Children, t, vars)
		if err != nil {
			return nil, false, err
		}
		return tree, true, nil
	}
	return nil, false, fmt.Errorf("unsupported value kind %d", v.Kind)
}

// objectTree converts a literal input object, child by child in request
// order.
func (p *Producer) objectTree(children language.ChildValueList, t *language.Type, vars map[string]any) (*argtree.Tree, error) {
	name := namedType(t)
	def := p.inputs[name]
	if def == nil {
		return nil, fmt.Errorf("input type %q is not defined", name)
	}
	tree := argtree.New()
	for _, child := range children {
		fieldDef := def.Fields.ForName(child.Name)
		if fieldDef == nil {
			return nil, fmt.Errorf("field %q is not defined on input %q", child.Name, def.Name)
		}
		value, provided, err := p.value(child.Value, fieldDef.Type, vars)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", child.Name, err)
		}
		if !provided {
			continue
		}
		ds, err := p.bindAll(fieldDef.Directives, child.Name)
		if err != nil {
			return nil, err
		}
		attachContainer(value, ds)
		tree.Add(child.Name, &argtree.Argument{Value: value, Directives: ds})
	}
	return tree, nil
}

// variableValue converts a variable-supplied value. Maps whose type is
// a defined input object become trees in definition order; unknown map
// keys are dropped.
func (p *Producer) variableValue(val any, t *language.Type) (any, error) {
	switch v := val.(type) {
	case map[string]any:
		def := p.inputs[namedType(t)]
		if def == nil {
			return val, nil
		}
		tree := argtree.New()
		for _, fieldDef := range def.Fields {
			fv, ok := v[fieldDef.Name]
			if !ok {
				continue
			}
			out, err := p.variableValue(fv, fieldDef.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", fieldDef.Name, err)
			}
			ds, err := p.bindAll(fieldDef.Directives, fieldDef.Name)
			if err != nil {
				return nil, err
			}
			attachContainer(out, ds)
			tree.Add(fieldDef.Name, &argtree.Argument{Value: out, Directives: ds})
		}
		return tree, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			cv, err := p.variableValue(item, elemType(t))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	default:
		return val, nil
	}
}

func (p *Producer) bindAll(list language.DirectiveList, argName string) ([]argtree.Directive, error) {
	if len(list) == 0 {
		return nil, nil
	}
	if p.binder == nil {
		return nil, fmt.Errorf("producer: no binder configured for directive @%s on %q", list[0].Name, argName)
	}
	out := make([]argtree.Directive, 0, len(list))
	for _, d := range list {
		args := make(map[string]any, len(d.Arguments))
		for _, a := range d.Arguments {
			args[a.Name] = Literal(a.Value)
		}
		bound, err := p.binder.Bind(DirectiveUse{Name: d.Name, Args: args, Arg: argName})
		if err != nil {
			return nil, fmt.Errorf("producer: directive @%s on %q: %w", d.Name, argName, err)
		}
		out = append(out, bound)
	}
	return out, nil
}

// attachContainer sets ds as the container directives of value's trees:
// directly for a nested tree, element-wise for trees inside a list.
func attachContainer(value any, ds []argtree.Directive) {
	switch v := value.(type) {
	case *argtree.Tree:
		v.Directives = ds
	case []any:
		for _, item := range v {
			if tree, ok := item.(*argtree.Tree); ok {
				tree.Directives = ds
			}
		}
	}
}

// Literal converts a literal AST value to plain Go data. Variables are
// not resolved; directive arguments and schema defaults never carry
// them.
func Literal(v *language.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(v.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return v.Raw
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return v.Raw
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = Literal(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			m[c.Name] = Literal(c.Value)
		}
		return m
	default:
		return nil
	}
}

func namedType(t *language.Type) string {
	if t == nil {
		return ""
	}
	if t.NamedType != "" {
		return t.NamedType
	}
	return namedType(t.Elem)
}

func elemType(t *language.Type) *language.Type {
	if t != nil && t.Elem != nil {
		return t.Elem
	}
	return t
}
