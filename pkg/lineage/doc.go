// Package lineage derives a table-level data-lineage graph from a single
// SQL statement.
//
// Given one statement, the resolver identifies every raw table referenced,
// every named subquery (CTE), and the final write target, and connects them
// into a directed graph whose edges mean "data flows from source to
// destination".
//
// # Basic Usage
//
//	result := lineage.Resolve(`
//	    WITH filtered AS (SELECT * FROM orders WHERE amount > 0)
//	    INSERT INTO report SELECT * FROM filtered`)
//
//	for _, node := range result.Nodes {
//	    fmt.Printf("%s (%s)\n", node.Label, node.Category)
//	}
//	for _, edge := range result.Edges {
//	    fmt.Printf("%s -> %s\n", edge.From, edge.To)
//	}
//
// Resolve never fails: malformed SQL yields an empty result. Callers that
// need to distinguish "nothing to show" from "could not parse" should use
// Extract, which returns the underlying error.
package lineage
