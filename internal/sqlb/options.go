package sqlb

// Options configures a Select at construction time.
//
// Defaults:
// - Columns:    ["*"]
// - Alias:      none (the table name qualifies columns)
// - Scopes:     none
// - Searchable: none (Search returns an unchanged copy)
//
// All options are safe to leave zero-valued.

type Options struct {
	Alias      string
	Columns    []string
	Scopes     map[string]ScopeFunc
	Searchable []string
}

// Option mutates Options
//
// Use WithX helpers below.

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Columns: []string{"*"},
	}
}

func WithAlias(alias string) Option        { return func(o *Options) { o.Alias = alias } }
func WithColumns(cols ...string) Option    { return func(o *Options) { o.Columns = cols } }
func WithSearchable(cols ...string) Option { return func(o *Options) { o.Searchable = cols } }

// WithScope registers a named scope invokable through InvokeScope.
func WithScope(name string, fn ScopeFunc) Option {
	return func(o *Options) {
		if o.Scopes == nil {
			o.Scopes = make(map[string]ScopeFunc)
		}
		o.Scopes[name] = fn
	}
}
