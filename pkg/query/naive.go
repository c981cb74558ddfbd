package query

import (
	"github.com/sanonone/threshdb/pkg/graph"
)

// NaiveEvaluator computes the full k-way join on every call: depth-first
// enumeration of all tuples satisfying the topology, filtering complete
// tuples by the threshold predicate. No state survives between calls.
//
// This is the unoptimized reference used for correctness checks and as the
// benchmark baseline; admissibility is deliberately only checked once a full
// tuple exists, so no weight pruning happens mid-search.
type NaiveEvaluator struct {
	g *graph.Graph
}

// NewNaive returns a naive evaluator over the given graph.
func NewNaive(g *graph.Graph) *NaiveEvaluator {
	return &NaiveEvaluator{g: g}
}

// Evaluate returns every match of the topology whose edges all have
// weight <= threshold, in deterministic tuple order.
func (e *NaiveEvaluator) Evaluate(topo Topology, threshold int64) ([]Match, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	set := make(matchSet)
	partial := make([]graph.Edge, 0, topo.K)
	e.search(topo, partial, threshold, set)
	return set.sorted(), nil
}

// Count is Evaluate without materializing the tuple slice order; handy for
// the experiment harness when only the cardinality is reported.
func (e *NaiveEvaluator) Count(topo Topology, threshold int64) (int, error) {
	ms, err := e.Evaluate(topo, threshold)
	if err != nil {
		return 0, err
	}
	return len(ms), nil
}

func (e *NaiveEvaluator) search(topo Topology, partial []graph.Edge, threshold int64, set matchSet) {
	if len(partial) == topo.K {
		// The predicate is checked only here, on the complete tuple.
		m := make(Match, topo.K)
		for i, edge := range partial {
			if edge.Weight > threshold {
				return
			}
			m[i] = edge.ID
		}
		set.add(m)
		return
	}

	pool := topo.nextPool(e.g, partial)
	for _, c := range topo.Extend(partial, pool) {
		e.search(topo, append(partial, c), threshold, set)
	}
}
