package argtree

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Unwrapper converts a wrapped leaf value to its plain form. It reports
// false when it does not recognize v, in which case the next registered
// unwrapper is tried.
type Unwrapper func(v any) (any, bool)

var unwrappers = []Unwrapper{unwrapProtoEnum}

// RegisterUnwrapper adds an unwrapper consulted by plain conversion,
// after the built-in ones. Call it during program initialization;
// registration is not synchronized.
func RegisterUnwrapper(u Unwrapper) {
	unwrappers = append(unwrappers, u)
}

// unwrapProtoEnum converts a protobuf enum value to its symbolic name,
// falling back to the numeric value when the number has no declared
// name.
func unwrapProtoEnum(v any) (any, bool) {
	e, ok := v.(protoreflect.Enum)
	if !ok {
		return nil, false
	}
	if ev := e.Descriptor().Values().ByNumber(e.Number()); ev != nil {
		return string(ev.Name()), true
	}
	return int32(e.Number()), true
}

// ToMap converts the tree to nested plain data: a map in entry
// insertion order semantics, with nested trees converted recursively,
// list elements converted element-wise, and leaf values passed through
// the registered unwrappers. Directives do not survive the conversion.
// The receiver is not modified, so converting twice yields equal
// results.
func (t *Tree) ToMap() map[string]any {
	out := make(map[string]any, len(t.entries))
	for _, e := range t.entries {
		out[e.name] = plainValue(e.arg.Value)
	}
	return out
}

// Plain returns the argument's value in plain form, converted the same
// way ToMap converts entry values.
func (a *Argument) Plain() any {
	return plainValue(a.Value)
}

func plainValue(v any) any {
	switch val := v.(type) {
	case *Tree:
		if val == nil {
			return nil
		}
		return val.ToMap()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	default:
		return unwrapValue(v)
	}
}

func unwrapValue(v any) any {
	for _, u := range unwrappers {
		if out, ok := u(v); ok {
			return out
		}
	}
	return v
}
