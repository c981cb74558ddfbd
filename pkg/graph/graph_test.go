package graph

import (
	"errors"
	"testing"
)

// small fixture used across tests: the 4-node chain graph plus a shortcut.
func testArcs() []Arc {
	return []Arc{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 2},
		{From: 2, To: 3, Weight: 3},
		{From: 0, To: 2, Weight: 5},
	}
}

func TestBuildValidation(t *testing.T) {
	// 1. Out-of-range endpoint must abort construction.
	_, err := Build(2, []Arc{{From: 0, To: 5, Weight: 1}}, false)
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("Build with bad endpoint: got err %v, want ErrInvalidGraph", err)
	}

	// 2. Negative endpoints too.
	_, err = Build(2, []Arc{{From: -1, To: 0, Weight: 1}}, false)
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("Build with negative endpoint: got err %v, want ErrInvalidGraph", err)
	}

	// 3. Negative node count.
	_, err = Build(-1, nil, false)
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("Build with negative n: got err %v, want ErrInvalidGraph", err)
	}

	// 4. Empty graph is fine.
	g, err := Build(0, nil, true)
	if err != nil {
		t.Fatalf("Build empty graph failed: %v", err)
	}
	if g.NumEdges() != 0 || g.NumNodes() != 0 {
		t.Errorf("empty graph reports n=%d m=%d", g.NumNodes(), g.NumEdges())
	}
}

func TestAdjacency(t *testing.T) {
	g, err := Build(4, testArcs(), false)
	if err != nil {
		t.Fatal(err)
	}

	// Node 0 has two outgoing edges (0->1 and 0->2).
	out := g.EdgesFrom(0)
	if len(out) != 2 {
		t.Fatalf("EdgesFrom(0): got %d edges, want 2", len(out))
	}

	// Node 2 has one incoming edge from node 1 and one from node 0.
	in := g.EdgesTo(2)
	if len(in) != 2 {
		t.Fatalf("EdgesTo(2): got %d edges, want 2", len(in))
	}

	// Node 3 has no outgoing edges.
	if len(g.EdgesFrom(3)) != 0 {
		t.Errorf("EdgesFrom(3) should be empty")
	}
}

func TestSortedByWeight(t *testing.T) {
	// Deliberately out of order, with a weight tie to exercise the ID
	// tie-break.
	arcs := []Arc{
		{From: 0, To: 1, Weight: 7},
		{From: 1, To: 2, Weight: 2},
		{From: 2, To: 0, Weight: 7},
		{From: 0, To: 2, Weight: 1},
	}
	g, err := Build(3, arcs, false)
	if err != nil {
		t.Fatal(err)
	}

	sorted := g.EdgesSortedByWeight()
	prevW, prevID := int64(-1<<62), uint64(0)
	for i, e := range sorted {
		if e.Weight < prevW || (e.Weight == prevW && e.ID <= prevID && i > 0) {
			t.Fatalf("sorted order broken at %d: (%d,%d) after (%d,%d)", i, e.Weight, e.ID, prevW, prevID)
		}
		prevW, prevID = e.Weight, e.ID
	}
	if sorted[0].Weight != 1 || sorted[len(sorted)-1].Weight != 7 {
		t.Errorf("unexpected extremes: first w=%d last w=%d", sorted[0].Weight, sorted[len(sorted)-1].Weight)
	}
}

func TestWeightIndexRank(t *testing.T) {
	g, err := Build(4, testArcs(), true)
	if err != nil {
		t.Fatal(err)
	}
	idx := g.Index()
	if idx == nil {
		t.Fatal("indexed build returned nil index")
	}

	// Weights present: 1, 2, 3, 5.
	cases := []struct {
		w    int64
		rank int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 3}, {5, 3}, {6, 4},
	}
	for _, c := range cases {
		if got := idx.RankOf(c.w); got != c.rank {
			t.Errorf("RankOf(%d) = %d, want %d", c.w, got, c.rank)
		}
	}
}

func TestEdgesInRangeIndexedMatchesScan(t *testing.T) {
	arcs := testArcs()

	indexed, err := Build(4, arcs, true)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Build(4, arcs, false)
	if err != nil {
		t.Fatal(err)
	}

	ranges := [][2]int64{{1, 3}, {2, 2}, {0, 100}, {4, 4}, {6, 10}, {3, 1}}
	for _, r := range ranges {
		a := indexed.EdgesInRange(r[0], r[1])
		b := plain.EdgesInRange(r[0], r[1])
		if len(a) != len(b) {
			t.Fatalf("range [%d,%d]: indexed %d edges, scan %d edges", r[0], r[1], len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Errorf("range [%d,%d] pos %d: indexed edge %d, scan edge %d", r[0], r[1], i, a[i].ID, b[i].ID)
			}
		}
	}

	// Spot check one range: [2,3] must be exactly the two middle edges.
	got := indexed.EdgesInRange(2, 3)
	if len(got) != 2 || got[0].Weight != 2 || got[1].Weight != 3 {
		t.Errorf("EdgesInRange(2,3): got %v", got)
	}
}
