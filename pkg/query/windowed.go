package query

import (
	"fmt"
	"math"
	"sync"

	"github.com/sanonone/threshdb/pkg/graph"
)

// Delta is the result of one Advance call: the matches that became valid
// because of the newly admitted edges. Removed is always empty, because
// admission is monotone (edges are never retracted); it is kept in the
// result shape so callers of a future non-monotone variant would not need
// an API change.
type Delta struct {
	Added   []Match
	Removed []Match
}

// WindowedEvaluator is a stateful evaluation session for one (graph,
// topology) pair across a monotonically increasing threshold.
//
// It maintains the window (the edge set admitted under the current
// threshold) plus the cached match set. When the threshold grows, only the
// delta edges are scanned and only matches that use at least one delta edge
// are searched for; everything inside the previous window was already found.
//
// A session is NOT safe for concurrent Advance calls: it owns mutable cached
// state and callers must serialize advances (the internal mutex enforces
// this, but interleaved advances from multiple goroutines still have no
// meaningful order).
type WindowedEvaluator struct {
	mu   sync.Mutex
	g    *graph.Graph
	topo Topology

	hasPrev bool
	prev    int64

	// window state: admitted edges grouped by endpoint for the forced
	// searches. Rebuilt never, grown on every Advance.
	admitted map[uint64]struct{}
	winOut   map[int][]graph.Edge
	winIn    map[int][]graph.Edge

	matches matchSet
}

// NewWindowed creates a fresh session with an empty window.
func NewWindowed(g *graph.Graph, topo Topology) (*WindowedEvaluator, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &WindowedEvaluator{
		g:        g,
		topo:     topo,
		admitted: make(map[uint64]struct{}),
		winOut:   make(map[int][]graph.Edge),
		winIn:    make(map[int][]graph.Edge),
		matches:  make(matchSet),
	}, nil
}

// Topology returns the session's topology.
func (w *WindowedEvaluator) Topology() Topology { return w.topo }

// Threshold returns the current window threshold. ok is false before the
// first Advance.
func (w *WindowedEvaluator) Threshold() (threshold int64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prev, w.hasPrev
}

// WindowSize returns the number of currently admitted edges.
func (w *WindowedEvaluator) WindowSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.admitted)
}

// Matches returns the cumulative match set at the current threshold, in
// deterministic tuple order.
func (w *WindowedEvaluator) Matches() []Match {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.matches.sorted()
}

// Evaluate advances the window to threshold and returns the full cumulative
// match set. On a fresh session this is exactly an advance from the empty
// window, which makes it interchangeable with NaiveEvaluator.Evaluate.
func (w *WindowedEvaluator) Evaluate(threshold int64) ([]Match, error) {
	if _, err := w.Advance(threshold); err != nil {
		return nil, err
	}
	return w.Matches(), nil
}

// Advance grows the window to the new threshold and returns the matches
// that use at least one newly admitted edge. A threshold lower than the
// current one fails with ErrNonMonotonicThreshold; an equal threshold is a
// no-op with an empty delta.
func (w *WindowedEvaluator) Advance(threshold int64) (Delta, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.hasPrev && threshold < w.prev {
		return Delta{}, fmt.Errorf("%w: window at %d, requested %d",
			ErrNonMonotonicThreshold, w.prev, threshold)
	}

	// 1. Delta = edges with weight in (prev, threshold].
	var delta []graph.Edge
	switch {
	case !w.hasPrev:
		delta = w.g.EdgesInRange(math.MinInt64, threshold)
	case threshold == w.prev:
		// nothing to admit
	default:
		delta = w.g.EdgesInRange(w.prev+1, threshold)
	}

	// 2. Grow the window first, so the forced searches see old + delta.
	for _, e := range delta {
		if _, ok := w.admitted[e.ID]; ok {
			continue
		}
		w.admitted[e.ID] = struct{}{}
		w.winOut[e.From] = append(w.winOut[e.From], e)
		w.winIn[e.To] = append(w.winIn[e.To], e)
	}

	// 3. Every new match must use at least one delta edge, so seed the
	// search from each delta edge, forcing it into every tuple position in
	// turn. Tuples touching several delta edges are discovered more than
	// once; the cached set deduplicates.
	var added []Match
	emit := func(tuple []graph.Edge) {
		m := make(Match, len(tuple))
		for i, e := range tuple {
			m[i] = e.ID
		}
		if w.matches.add(m) {
			added = append(added, m)
		}
	}
	for _, e := range delta {
		w.forced(e, emit)
	}

	w.prev = threshold
	w.hasPrev = true

	sortMatches(added)
	return Delta{Added: added}, nil
}

// forced finds every tuple of the current window that contains e, trying e
// at each of the K positions.
func (w *WindowedEvaluator) forced(e graph.Edge, emit func([]graph.Edge)) {
	k := w.topo.K
	tuple := make([]graph.Edge, k)

	switch w.topo.Class {
	case TQ2:
		// Star: every edge of the tuple leaves e's source node.
		pool := w.winOut[e.From]
		for p := 0; p < k; p++ {
			tuple[p] = e
			w.growStar(tuple, 0, p, pool, emit)
		}

	default: // TQ1 and TQ3 are chains; TQ3 adds the closing check.
		for p := 0; p < k; p++ {
			tuple[p] = e
			// Backward first: the closing check needs tuple[0] fixed
			// before the forward arm runs.
			w.growBack(tuple, p, func() {
				w.growFwd(tuple, p, emit)
			})
		}
	}
}

// growBack fills tuple positions i-1 .. 0 with window edges ending at the
// current head's source, then hands off to done.
func (w *WindowedEvaluator) growBack(tuple []graph.Edge, i int, done func()) {
	if i == 0 {
		done()
		return
	}
	for _, c := range w.winIn[tuple[i].From] {
		tuple[i-1] = c
		w.growBack(tuple, i-1, done)
	}
}

// growFwd fills tuple positions i+1 .. K-1 with window edges leaving the
// current tail's target and emits complete chains (closing them for TQ3).
func (w *WindowedEvaluator) growFwd(tuple []graph.Edge, i int, emit func([]graph.Edge)) {
	k := w.topo.K
	if i == k-1 {
		if w.topo.Class == TQ3 && k > 1 && tuple[k-1].To != tuple[0].From {
			return
		}
		emit(tuple)
		return
	}
	for _, c := range w.winOut[tuple[i].To] {
		tuple[i+1] = c
		w.growFwd(tuple, i+1, emit)
	}
}

// growStar fills every non-forced position with edges from the pivot's
// outgoing window pool.
func (w *WindowedEvaluator) growStar(tuple []graph.Edge, pos, forced int, pool []graph.Edge, emit func([]graph.Edge)) {
	if pos == len(tuple) {
		emit(tuple)
		return
	}
	if pos == forced {
		w.growStar(tuple, pos+1, forced, pool, emit)
		return
	}
	for _, c := range pool {
		tuple[pos] = c
		w.growStar(tuple, pos+1, forced, pool, emit)
	}
}
