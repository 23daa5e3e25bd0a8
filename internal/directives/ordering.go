package directives

import (
	"fmt"
	"strings"

	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// OrderBy appends ordering terms. The bound value is either a column
// name, a list of {column, direction} objects, or null to use the
// configured Column.
type OrderBy struct {
	Column    string
	Direction string
}

func (d OrderBy) Name() string { return "orderBy" }

func (d OrderBy) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	ob, ok := b.(orderByBuilder)
	if !ok {
		return nil, fmt.Errorf("directives: builder %T cannot order", b)
	}
	defaultDir, err := direction(d.Direction)
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case nil:
		if d.Column == "" {
			return nil, fmt.Errorf("directives: @orderBy has no column to order by")
		}
		ob.OrderBy(d.Column, defaultDir)
	case string:
		ob.OrderBy(v, defaultDir)
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("directives: @orderBy element is %T, want an object", item)
			}
			col, _ := m["column"].(string)
			if col == "" {
				return nil, fmt.Errorf("directives: @orderBy element is missing a column")
			}
			dir, _ := m["direction"].(string)
			if dir == "" {
				dir = defaultDir
			}
			dir, err := direction(dir)
			if err != nil {
				return nil, err
			}
			ob.OrderBy(col, dir)
		}
	default:
		return nil, fmt.Errorf("directives: @orderBy value is %T, want a column or a list", value)
	}
	return b, nil
}

func direction(dir string) (string, error) {
	switch strings.ToUpper(dir) {
	case "":
		return "ASC", nil
	case "ASC":
		return "ASC", nil
	case "DESC":
		return "DESC", nil
	}
	return "", fmt.Errorf("directives: order direction %q, want ASC or DESC", dir)
}

// Limit caps the result size at the bound value.
type Limit struct{}

func (Limit) Name() string { return "limit" }

func (Limit) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	lb, ok := b.(limitBuilder)
	if !ok {
		return nil, fmt.Errorf("directives: builder %T cannot limit", b)
	}
	n, err := intArg(value)
	if err != nil {
		return nil, fmt.Errorf("directives: @limit %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("directives: @limit is negative: %d", n)
	}
	lb.Limit(n)
	return b, nil
}

// Offset skips the first rows of the result.
type Offset struct{}

func (Offset) Name() string { return "offset" }

func (Offset) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	ob, ok := b.(offsetBuilder)
	if !ok {
		return nil, fmt.Errorf("directives: builder %T cannot offset", b)
	}
	n, err := intArg(value)
	if err != nil {
		return nil, fmt.Errorf("directives: @offset %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("directives: @offset is negative: %d", n)
	}
	ob.Offset(n)
	return b, nil
}

func intArg(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		// JSON-decoded variables arrive as float64.
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("wants an integer, got %v (%T)", v, v)
}

var (
	_ argtree.BuilderMutator = OrderBy{}
	_ argtree.BuilderMutator = Limit{}
	_ argtree.BuilderMutator = Offset{}
)
