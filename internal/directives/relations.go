package directives

import (
	"fmt"
	"strings"

	argtree "github.com/hanpama/graphargs/internal/argtree"
)

// With joins a related table when the bound argument carries a truthy
// value. The join condition is relation.foreignKey = ownerKey, with a
// bare owner key qualified by the builder's own table.
type With struct {
	Relation   string
	ForeignKey string
	OwnerKey   string
}

// NewWith builds the join directive. An empty ownerKey defaults to id.
func NewWith(relation, foreignKey, ownerKey string) With {
	if ownerKey == "" {
		ownerKey = "id"
	}
	return With{Relation: relation, ForeignKey: foreignKey, OwnerKey: ownerKey}
}

func (d With) Name() string { return "with" }

func (d With) MutateBuilder(b argtree.Builder, value any) (argtree.Builder, error) {
	if value == nil || value == false {
		return b, nil
	}
	jb, ok := b.(joinBuilder)
	if !ok {
		return nil, fmt.Errorf("directives: builder %T cannot join", b)
	}
	right := d.OwnerKey
	if !strings.Contains(right, ".") {
		if q, ok := b.(argtree.TableQualifier); ok {
			if owner := q.QualifyingTable(); owner != "" {
				right = owner + "." + right
			}
		}
	}
	jb.Join(d.Relation, d.Relation+"."+d.ForeignKey+" = "+right)
	return b, nil
}

var _ argtree.BuilderMutator = With{}
