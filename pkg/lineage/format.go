package lineage

// format walks the assembled graph once and classifies each node by
// structural rule, in the builder's insertion order.
//
// Classification precedence: the resolved target first, then registry
// membership, then zero in-degree (raw source). A node with incoming edges
// that is neither the target nor a registered CTE alias keeps the bare name
// as its label and falls back to the CTE category.
func format(b *graphBuilder, reg *registry, target string, hasTarget bool) Result {
	inDeg := b.inDegrees()

	nodes := make([]Node, 0, len(b.order))
	for _, id := range b.order {
		switch {
		case hasTarget && id == target:
			nodes = append(nodes, Node{ID: id, Label: id, Category: CategoryTarget})
		case reg.has(id):
			nodes = append(nodes, Node{ID: id, Label: "CTE: " + id, Category: CategoryCTE})
		case inDeg[id] == 0:
			nodes = append(nodes, Node{ID: id, Label: "RAW: " + id, Category: CategoryRaw})
		default:
			nodes = append(nodes, Node{ID: id, Label: id, Category: CategoryCTE})
		}
	}

	edges := make([]Edge, 0, len(b.edges))
	edges = append(edges, b.edges...)

	return Result{Nodes: nodes, Edges: edges}
}
