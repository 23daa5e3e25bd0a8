package compile

import (
	"fmt"

	language "github.com/hanpama/graphargs/internal/language"
	producer "github.com/hanpama/graphargs/internal/producer"
)

// Violation is one schema directive use the binder rejects.
type Violation struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		line := "- " + v.Message
		if v.File != "" {
			line += fmt.Sprintf(" %s:%d:%d", v.File, v.Line, v.Column)
		}
		msg += line + "\n"
	}
	return msg
}

// Check binds every directive use reachable from the Query type and
// collects the ones the binder rejects. It returns nil when the schema
// is clean, a ValidationError otherwise.
func (c *Compiler) Check() error {
	ck := &checker{c: c, seen: make(map[string]bool)}
	for _, def := range c.query.Fields {
		ck.checkField(def)
	}
	if len(ck.violations) > 0 {
		return ValidationError(ck.violations)
	}
	return nil
}

type checker struct {
	c          *Compiler
	seen       map[string]bool
	violations []*Violation
}

func (ck *checker) checkField(def *language.FieldDefinition) {
	ck.checkDirectives(def.Directives, def.Name)
	for _, argDef := range def.Arguments {
		ck.checkDirectives(argDef.Directives, argDef.Name)
		ck.checkInput(typeName(argDef.Type))
	}
}

func (ck *checker) checkInput(name string) {
	if name == "" || ck.seen[name] {
		return
	}
	ck.seen[name] = true
	def := ck.c.inputs[name]
	if def == nil {
		return
	}
	for _, f := range def.Fields {
		ck.checkDirectives(f.Directives, f.Name)
		ck.checkInput(typeName(f.Type))
	}
}

func (ck *checker) checkDirectives(list language.DirectiveList, argName string) {
	for _, d := range list {
		use := producer.DirectiveUse{Name: d.Name, Args: directiveArgs(d), Arg: argName}
		if _, err := ck.c.opts.Binder.Bind(use); err != nil {
			message := fmt.Sprintf("directive @%s on %q: %v", d.Name, argName, err)
			ck.violations = append(ck.violations, violationAt(message, d.Position))
		}
	}
}

func violationAt(message string, pos *language.Position) *Violation {
	v := &Violation{Message: message}
	if pos != nil && pos.Src != nil {
		v.File = pos.Src.Name
		v.Line = pos.Line
		v.Column = pos.Column
	}
	return v
}

// typeName unwraps list nesting to the named type.
func typeName(t *language.Type) string {
	for t != nil && t.Elem != nil {
		t = t.Elem
	}
	if t == nil {
		return ""
	}
	return t.NamedType
}
