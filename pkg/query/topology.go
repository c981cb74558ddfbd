// Package query implements threshold query evaluation over a weighted graph:
// k-way joins constrained by a structural topology (chain, star, cycle) and a
// weight admissibility threshold.
//
// Two strategies are provided. NaiveEvaluator recomputes the full join on
// every call and is the correctness baseline. WindowedEvaluator exploits the
// monotonicity of the threshold predicate (the admitted edge set only grows
// as the threshold grows) to evaluate a whole threshold sweep incrementally.
// Driver dispatches between them and times each call.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sanonone/threshdb/pkg/graph"
)

var (
	// ErrUnsupportedClass indicates a query class outside {TQ1, TQ2, TQ3}.
	ErrUnsupportedClass = errors.New("query: unsupported query class")

	// ErrInvalidK indicates a join width k < 1.
	ErrInvalidK = errors.New("query: k must be >= 1")

	// ErrNonMonotonicThreshold indicates Advance was called with a threshold
	// lower than the session's current one. The incremental cache cannot
	// shrink; discard the session and build a fresh one instead.
	ErrNonMonotonicThreshold = errors.New("query: threshold lower than current window")
)

// Class identifies the join topology of a threshold query.
type Class int

const (
	// TQ1 is a directed chain: e1.to = e2.from = ... (path queries).
	TQ1 Class = iota + 1
	// TQ2 is a star: all k edges leave the same pivot node (neighborhood
	// queries; the pivot is the source of the first edge).
	TQ2
	// TQ3 is a directed cycle: the chain rule plus, on the final edge,
	// to = first edge's from (connectivity queries).
	TQ3
)

func (c Class) String() string {
	switch c {
	case TQ1:
		return "TQ1"
	case TQ2:
		return "TQ2"
	case TQ3:
		return "TQ3"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// ParseClass converts a string tag ("TQ1", "tq2", ...) into a Class.
func ParseClass(s string) (Class, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TQ1":
		return TQ1, nil
	case "TQ2":
		return TQ2, nil
	case "TQ3":
		return TQ3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedClass, s)
	}
}

// Topology is the pure structural constraint of a query: which endpoint
// equalities must hold among the K edges of a match. It never references
// weight.
type Topology struct {
	Class Class
	K     int
}

// NewTopology validates the class tag and join width.
func NewTopology(class Class, k int) (Topology, error) {
	t := Topology{Class: class, K: k}
	if err := t.Validate(); err != nil {
		return Topology{}, err
	}
	return t, nil
}

// Validate rejects unknown classes and k < 1.
func (t Topology) Validate() error {
	switch t.Class {
	case TQ1, TQ2, TQ3:
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedClass, t.Class)
	}
	if t.K < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidK, t.K)
	}
	return nil
}

// Extend returns the subset of pool that can legally extend partial to
// length len(partial)+1 under the class's endpoint-sharing rule. It is pure:
// no side effects, no weight access. An empty partial accepts any edge (every
// edge seeds a length-1 partial tuple), which also makes k=1 degenerate to a
// plain threshold filter for every class.
func (t Topology) Extend(partial []graph.Edge, pool []graph.Edge) []graph.Edge {
	res := make([]graph.Edge, 0, len(pool))
	if len(partial) == 0 {
		res = append(res, pool...)
		return res
	}

	switch t.Class {
	case TQ1:
		last := partial[len(partial)-1]
		for _, c := range pool {
			if c.From == last.To {
				res = append(res, c)
			}
		}

	case TQ2:
		pivot := partial[0].From
		for _, c := range pool {
			if c.From == pivot {
				res = append(res, c)
			}
		}

	case TQ3:
		last := partial[len(partial)-1]
		closing := len(partial)+1 == t.K
		for _, c := range pool {
			if c.From != last.To {
				continue
			}
			if closing && c.To != partial[0].From {
				continue
			}
			res = append(res, c)
		}
	}

	return res
}

// nextPool picks the cheapest candidate pool for the next Extend step using
// the store's adjacency lookups. Extend itself re-checks the structural rule,
// so the pool only needs to be a superset of the legal candidates.
func (t Topology) nextPool(g *graph.Graph, partial []graph.Edge) []graph.Edge {
	if len(partial) == 0 {
		return g.Edges()
	}
	switch t.Class {
	case TQ2:
		return g.EdgesFrom(partial[0].From)
	default: // TQ1, TQ3 follow the chain
		return g.EdgesFrom(partial[len(partial)-1].To)
	}
}
