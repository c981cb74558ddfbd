// Package graph provides the in-memory edge store for threshold query
// evaluation: an immutable weighted digraph with precomputed adjacency and a
// weight-sorted projection of its edges.
//
// A Graph is built once (Build) and never mutated afterwards, so all read
// methods are safe for concurrent use without locking. Evaluators running
// side by side (e.g. naive and windowed on the same graph) share a single
// instance.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidGraph indicates malformed input at construction time
// (out-of-range endpoints or a negative node count).
var ErrInvalidGraph = errors.New("graph: invalid graph")

// Arc is one raw input edge for Build: endpoints plus weight.
// Edge IDs are assigned by the store, in input order.
type Arc struct {
	From   int   `json:"from"`
	To     int   `json:"to"`
	Weight int64 `json:"weight"`
}

// Edge is a stored edge. ID is unique and stable for the lifetime of the
// graph snapshot.
type Edge struct {
	ID     uint64 `json:"id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	Weight int64  `json:"weight"`
}

// Graph is the edge store. All fields are fixed after Build.
type Graph struct {
	nodes int
	edges []Edge // indexed by Edge.ID

	// adjacency, precomputed at build time
	out map[int][]Edge
	in  map[int][]Edge

	// projection ordered by (weight, id); always present because the store
	// contract requires sorted iteration even without the index
	sorted []Edge

	index *WeightIndex // nil when indexing is disabled
}

// Build constructs an immutable Graph from raw arcs.
//
// Every endpoint must satisfy 0 <= id < nodes, otherwise ErrInvalidGraph is
// returned and nothing is built. When indexed is true a WeightIndex is built
// eagerly; the flag trades memory for O(log m) window adjustments and never
// affects results.
func Build(nodes int, arcs []Arc, indexed bool) (*Graph, error) {
	if nodes < 0 {
		return nil, fmt.Errorf("%w: negative node count %d", ErrInvalidGraph, nodes)
	}

	g := &Graph{
		nodes: nodes,
		edges: make([]Edge, 0, len(arcs)),
		out:   make(map[int][]Edge),
		in:    make(map[int][]Edge),
	}

	// 1. Validate and assign IDs in input order.
	for i, a := range arcs {
		if a.From < 0 || a.From >= nodes || a.To < 0 || a.To >= nodes {
			return nil, fmt.Errorf("%w: arc %d endpoints (%d -> %d) out of range [0, %d)",
				ErrInvalidGraph, i, a.From, a.To, nodes)
		}
		e := Edge{ID: uint64(i), From: a.From, To: a.To, Weight: a.Weight}
		g.edges = append(g.edges, e)
		g.out[a.From] = append(g.out[a.From], e)
		g.in[a.To] = append(g.in[a.To], e)
	}

	// 2. Weight-sorted projection. Ties broken by edge ID for a total order.
	g.sorted = make([]Edge, len(g.edges))
	copy(g.sorted, g.edges)
	sort.Slice(g.sorted, func(i, j int) bool {
		if g.sorted[i].Weight != g.sorted[j].Weight {
			return g.sorted[i].Weight < g.sorted[j].Weight
		}
		return g.sorted[i].ID < g.sorted[j].ID
	})

	// 3. Optional index.
	if indexed {
		g.index = newWeightIndex(g)
	}

	return g, nil
}

// NumNodes returns the node count n. Node IDs are 0..n-1.
func (g *Graph) NumNodes() int { return g.nodes }

// NumEdges returns the edge count m.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Indexed reports whether the graph carries a WeightIndex.
func (g *Graph) Indexed() bool { return g.index != nil }

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id uint64) (Edge, bool) {
	if id >= uint64(len(g.edges)) {
		return Edge{}, false
	}
	return g.edges[id], true
}

// Edges returns all edges in ID order. The returned slice is shared and must
// not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// EdgesFrom returns the outgoing edges of node (O(1) adjacency lookup).
// The returned slice is shared and must not be modified.
func (g *Graph) EdgesFrom(node int) []Edge { return g.out[node] }

// EdgesTo returns the incoming edges of node.
// The returned slice is shared and must not be modified.
func (g *Graph) EdgesTo(node int) []Edge { return g.in[node] }

// EdgesSortedByWeight returns all edges in increasing (weight, id) order.
// The returned slice is shared and must not be modified.
func (g *Graph) EdgesSortedByWeight() []Edge { return g.sorted }

// EdgesInRange returns all edges with lo <= weight <= hi in increasing
// (weight, id) order. With the index this is O(log m + output); without it
// the weight-sorted projection is scanned linearly. Results are identical
// either way.
func (g *Graph) EdgesInRange(lo, hi int64) []Edge {
	if lo > hi {
		return nil
	}
	if g.index != nil {
		return g.index.EdgesInRange(lo, hi)
	}

	// Fallback: O(m) scan over the sorted projection.
	var res []Edge
	for _, e := range g.sorted {
		if e.Weight > hi {
			break
		}
		if e.Weight >= lo {
			res = append(res, e)
		}
	}
	return res
}

// Index returns the WeightIndex, or nil when indexing is disabled.
func (g *Graph) Index() *WeightIndex { return g.index }
