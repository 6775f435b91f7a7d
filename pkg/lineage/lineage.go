package lineage

import (
	"fmt"

	"github.com/leapstack-labs/lineagemap/pkg/sqlast"
)

// Category classifies a lineage node.
type Category string

const (
	// CategoryRaw marks a table with no incoming lineage edges: data
	// originates outside the traced statement.
	CategoryRaw Category = "raw"
	// CategoryCTE marks a named subquery declared in a WITH clause.
	CategoryCTE Category = "cte"
	// CategoryTarget marks the table written by the statement.
	CategoryTarget Category = "target"
)

// Node is one presentation-ready lineage node.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// Edge is a directed lineage edge: data flows From -> To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is the node/edge list produced by one resolution.
type Result struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// emptyResult is the canonical failure (and trivially-empty) value.
func emptyResult() Result {
	return Result{Nodes: []Node{}, Edges: []Edge{}}
}

// Resolve derives the lineage graph for one SQL statement. Any parse or
// resolution failure yields an empty result; callers that need the error
// should use Extract.
func Resolve(sqlText string) Result {
	result, err := Extract(sqlText)
	if err != nil {
		return emptyResult()
	}
	return result
}

// Extract derives the lineage graph for one SQL statement, surfacing parse
// failures as an error. A valid statement that references no tables yields
// an empty result and a nil error.
func Extract(sqlText string) (Result, error) {
	stmt, err := sqlast.Parse(sqlText)
	if err != nil {
		return emptyResult(), fmt.Errorf("resolve lineage: %w", err)
	}

	reg := buildRegistry(stmt)
	target, hasTarget := stmt.WriteTarget()

	b := newGraphBuilder()

	for _, cte := range reg.entries {
		b.addNode(cte.Name)
		trace(b, cte.Body, cte.Name)
	}

	if hasTarget {
		b.addNode(target)
		if body, ok := stmt.PrimaryBody(); ok {
			trace(b, body, target)
		}
	}

	return format(b, reg, target, hasTarget), nil
}

// trace emits one edge per table referenced in the subtree into the owning
// node, skipping self-references: a CTE or target that names itself
// produces no edge.
func trace(b *graphBuilder, body *sqlast.Query, owner string) {
	for _, table := range sqlast.Tables(body) {
		if table != owner {
			b.addEdge(table, owner)
		}
	}
}

// registry maps CTE aliases to their defining bodies, preserving declaration
// order. A duplicate alias keeps its first position but takes the last body.
type registry struct {
	entries []sqlast.CTE
	index   map[string]int
}

func buildRegistry(stmt *sqlast.Statement) *registry {
	reg := &registry{index: make(map[string]int)}
	for _, cte := range stmt.CTEs() {
		if i, ok := reg.index[cte.Name]; ok {
			reg.entries[i] = cte
			continue
		}
		reg.index[cte.Name] = len(reg.entries)
		reg.entries = append(reg.entries, cte)
	}
	return reg
}

func (r *registry) has(name string) bool {
	_, ok := r.index[name]
	return ok
}
