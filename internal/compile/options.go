package compile

import (
	argtree "github.com/hanpama/graphargs/internal/argtree"
	producer "github.com/hanpama/graphargs/internal/producer"
	sqlb "github.com/hanpama/graphargs/internal/sqlb"
)

// Preset is a value forced into every compiled field's argument tree
// before transformation, addressed by a dot-separated path.
type Preset struct {
	Path  string
	Value any
}

// Options configures a Compiler.
type Options struct {
	// Binder resolves schema directive uses. Defaults to StandardBinder.
	Binder producer.Binder
	// Scopes are registered on every builder by name. Whether one runs
	// on a field is decided by that field's @scopes annotation.
	Scopes map[string]sqlb.ScopeFunc
	// Filter limits which builder mutators run during enhancement. Nil
	// runs all of them.
	Filter argtree.DirectiveFilter
	// Presets are applied to every field's tree, in order.
	Presets []Preset
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Binder: StandardBinder()}
}

// WithBinder replaces the directive binder.
func WithBinder(b producer.Binder) Option { return func(o *Options) { o.Binder = b } }

// WithScope registers a named scope on every builder the compiler
// creates.
func WithScope(name string, fn sqlb.ScopeFunc) Option {
	return func(o *Options) {
		if o.Scopes == nil {
			o.Scopes = make(map[string]sqlb.ScopeFunc)
		}
		o.Scopes[name] = fn
	}
}

// WithFilter sets the directive filter.
func WithFilter(f argtree.DirectiveFilter) Option { return func(o *Options) { o.Filter = f } }

// WithPreset forces value at path into every compiled field's tree.
func WithPreset(path string, value any) Option {
	return func(o *Options) { o.Presets = append(o.Presets, Preset{Path: path, Value: value}) }
}
