package query

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/sanonone/threshdb/pkg/graph"
)

// specGraph is the 4-node scenario graph from the acceptance checklist:
// (0->1,w=1) (1->2,w=2) (2->3,w=3) (0->2,w=5).
func specGraph(t *testing.T, indexed bool) *graph.Graph {
	t.Helper()
	g, err := graph.Build(4, []graph.Arc{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 2},
		{From: 2, To: 3, Weight: 3},
		{From: 0, To: 2, Weight: 5},
	}, indexed)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// randomGraph builds a reproducible messy graph: parallel edges, self loops,
// weight ties.
func randomGraph(t *testing.T, seed int64, n, m int, indexed bool) *graph.Graph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	arcs := make([]graph.Arc, m)
	for i := range arcs {
		arcs[i] = graph.Arc{
			From:   rng.Intn(n),
			To:     rng.Intn(n),
			Weight: int64(rng.Intn(20)),
		}
	}
	g, err := graph.Build(n, arcs, indexed)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func matchKeys(ms []Match) map[string]bool {
	keys := make(map[string]bool, len(ms))
	for _, m := range ms {
		keys[m.Key()] = true
	}
	return keys
}

func sameMatches(a, b []Match) bool {
	ka, kb := matchKeys(a), matchKeys(b)
	if len(ka) != len(kb) {
		return false
	}
	for k := range ka {
		if !kb[k] {
			return false
		}
	}
	return true
}

func TestNaiveSpecScenario(t *testing.T) {
	g := specGraph(t, false)
	topo, _ := NewTopology(TQ1, 2)

	// threshold=2: only the chain (0->1, 1->2) qualifies; (1->2, 2->3) is
	// excluded because weight 3 > 2.
	ms, err := NewNaive(g).Evaluate(topo, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 1 {
		t.Fatalf("got %d matches, want 1: %v", len(ms), ms)
	}
	if ms[0].Key() != "0.1" {
		t.Errorf("got match %v, want edges (0,1)", ms[0])
	}
}

func TestWindowedAdvanceSpecScenario(t *testing.T) {
	g := specGraph(t, true)
	topo, _ := NewTopology(TQ1, 2)

	sess, err := NewWindowed(g, topo)
	if err != nil {
		t.Fatal(err)
	}

	// 1. First advance to threshold 2.
	d, err := sess.Advance(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Added) != 1 || d.Added[0].Key() != "0.1" {
		t.Fatalf("advance to 2: added %v, want [(0,1)]", d.Added)
	}
	if len(d.Removed) != 0 {
		t.Errorf("removed must always be empty, got %v", d.Removed)
	}

	// 2. Sweep 2 -> 3: only the newly enabled chain appears in the delta.
	d, err = sess.Advance(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Added) != 1 || d.Added[0].Key() != "1.2" {
		t.Fatalf("advance to 3: added %v, want [(1,2)]", d.Added)
	}

	// 3. Cumulative matches.
	all := sess.Matches()
	if len(all) != 2 {
		t.Fatalf("cumulative: got %d matches, want 2", len(all))
	}

	// 4. Same threshold again is a no-op.
	d, err = sess.Advance(3)
	if err != nil || len(d.Added) != 0 {
		t.Errorf("re-advance to 3: delta %v err %v, want empty no-op", d.Added, err)
	}
}

func TestNonMonotonicThreshold(t *testing.T) {
	g := specGraph(t, true)
	topo, _ := NewTopology(TQ1, 2)
	sess, _ := NewWindowed(g, topo)

	if _, err := sess.Advance(5); err != nil {
		t.Fatal(err)
	}
	_, err := sess.Advance(4)
	if !errors.Is(err, ErrNonMonotonicThreshold) {
		t.Fatalf("shrinking advance: got %v, want ErrNonMonotonicThreshold", err)
	}

	// The session is still usable at or above its threshold.
	if _, err := sess.Advance(6); err != nil {
		t.Errorf("advance after rejected shrink failed: %v", err)
	}
}

func TestKOneDegeneratesToThresholdFilter(t *testing.T) {
	g := randomGraph(t, 7, 5, 30, true)

	for _, class := range []Class{TQ1, TQ2, TQ3} {
		topo, _ := NewTopology(class, 1)

		var want []Match
		for _, e := range g.Edges() {
			if e.Weight <= 9 {
				want = append(want, Match{e.ID})
			}
		}

		nv, err := NewNaive(g).Evaluate(topo, 9)
		if err != nil {
			t.Fatal(err)
		}
		if !sameMatches(nv, want) {
			t.Errorf("%v k=1 naive: got %d matches, want %d", class, len(nv), len(want))
		}

		sess, _ := NewWindowed(g, topo)
		wd, err := sess.Evaluate(9)
		if err != nil {
			t.Fatal(err)
		}
		if !sameMatches(wd, want) {
			t.Errorf("%v k=1 windowed: got %d matches, want %d", class, len(wd), len(want))
		}
	}
}

// TestNaiveWindowedEquivalence checks that the two strategies agree on every
// class, width, threshold, and index setting over messy random graphs.
func TestNaiveWindowedEquivalence(t *testing.T) {
	for _, indexed := range []bool{true, false} {
		for seed := int64(1); seed <= 3; seed++ {
			g := randomGraph(t, seed, 6, 18, indexed)
			for _, class := range []Class{TQ1, TQ2, TQ3} {
				for k := 1; k <= 3; k++ {
					topo, _ := NewTopology(class, k)
					for _, th := range []int64{-1, 0, 5, 10, 19, 100} {
						nv, err := NewNaive(g).Evaluate(topo, th)
						if err != nil {
							t.Fatal(err)
						}
						sess, _ := NewWindowed(g, topo)
						wd, err := sess.Evaluate(th)
						if err != nil {
							t.Fatal(err)
						}
						if !sameMatches(nv, wd) {
							t.Fatalf("divergence seed=%d indexed=%v %v k=%d t=%d: naive=%d windowed=%d",
								seed, indexed, class, k, th, len(nv), len(wd))
						}
					}
				}
			}
		}
	}
}

// TestIncrementalEqualsDirect: the union of all Advance deltas over a sweep
// must equal a direct evaluation at the final threshold.
func TestIncrementalEqualsDirect(t *testing.T) {
	g := randomGraph(t, 11, 6, 20, true)
	sweep := []int64{2, 5, 9, 13, 19}

	for _, class := range []Class{TQ1, TQ2, TQ3} {
		topo, _ := NewTopology(class, 2)
		sess, _ := NewWindowed(g, topo)

		union := make(map[string]bool)
		prevCount := 0
		for _, th := range sweep {
			d, err := sess.Advance(th)
			if err != nil {
				t.Fatal(err)
			}
			for _, m := range d.Added {
				if union[m.Key()] {
					t.Fatalf("%v: match %v added twice", class, m)
				}
				union[m.Key()] = true
			}

			// Monotonicity: the cumulative set only grows.
			if cur := len(sess.Matches()); cur < prevCount {
				t.Fatalf("%v: match set shrank from %d to %d", class, prevCount, cur)
			} else {
				prevCount = cur
			}
		}

		direct, err := NewNaive(g).Evaluate(topo, sweep[len(sweep)-1])
		if err != nil {
			t.Fatal(err)
		}
		if len(union) != len(direct) {
			t.Fatalf("%v: union of deltas has %d matches, direct eval has %d", class, len(union), len(direct))
		}
		for _, m := range direct {
			if !union[m.Key()] {
				t.Errorf("%v: direct match %v missing from delta union", class, m)
			}
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	g := randomGraph(t, 3, 5, 15, false)
	topo, _ := NewTopology(TQ1, 2)

	a, err := NewNaive(g).Evaluate(topo, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewNaive(g).Evaluate(topo, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !sameMatches(a, b) {
		t.Errorf("repeated naive evaluation diverged: %d vs %d matches", len(a), len(b))
	}

	// Windowed: re-evaluating at the current threshold returns the same set.
	sess, _ := NewWindowed(g, topo)
	c, err := sess.Evaluate(8)
	if err != nil {
		t.Fatal(err)
	}
	d, err := sess.Evaluate(8)
	if err != nil {
		t.Fatal(err)
	}
	if !sameMatches(a, c) || !sameMatches(c, d) {
		t.Errorf("windowed evaluation diverged from naive or from itself")
	}
}
