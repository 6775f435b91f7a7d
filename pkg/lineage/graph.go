package lineage

import (
	"github.com/dominikbraun/graph"
)

// graphBuilder accumulates the lineage graph for one resolution. Each call
// to Extract owns its own builder; nothing is shared across resolutions.
//
// The directed container and degree queries come from dominikbraun/graph;
// the builder additionally tracks node and edge insertion order, which the
// formatter's output follows.
type graphBuilder struct {
	g     graph.Graph[string, string]
	order []string
	edges []Edge
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		g: graph.New(graph.StringHash, graph.Directed()),
	}
}

// addNode registers a node if it is not already present.
func (b *graphBuilder) addNode(name string) {
	if err := b.g.AddVertex(name); err == nil {
		b.order = append(b.order, name)
	}
}

// addEdge registers a directed edge, creating missing endpoints. Duplicate
// edges collapse to one; self-loops are never added.
func (b *graphBuilder) addEdge(from, to string) {
	if from == to {
		return
	}
	b.addNode(from)
	b.addNode(to)
	if err := b.g.AddEdge(from, to); err == nil {
		b.edges = append(b.edges, Edge{From: from, To: to})
	}
}

// inDegrees returns the number of incoming edges per node.
func (b *graphBuilder) inDegrees() map[string]int {
	degrees := make(map[string]int, len(b.order))
	pm, err := b.g.PredecessorMap()
	if err != nil {
		return degrees
	}
	for node, preds := range pm {
		degrees[node] = len(preds)
	}
	return degrees
}
