package gen

import (
	"testing"

	"github.com/sanonone/threshdb/pkg/graph"
)

func TestBarabasiAlbert(t *testing.T) {
	cfg := Config{Nodes: 50, M0: 3, Seed: 42, MaxWeight: 100}
	arcs, err := BarabasiAlbert(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// 1. Edge count: every node past the seed attaches exactly m0 edges.
	want := (cfg.Nodes - cfg.M0) * cfg.M0
	if len(arcs) != want {
		t.Fatalf("got %d arcs, want %d", len(arcs), want)
	}

	// 2. The arcs must build into a valid graph (endpoints in range).
	g, err := graph.Build(cfg.Nodes, arcs, false)
	if err != nil {
		t.Fatalf("generated arcs rejected by store: %v", err)
	}
	if g.NumEdges() != want {
		t.Errorf("store has %d edges", g.NumEdges())
	}

	// 3. Weights stay within [1, MaxWeight].
	for _, a := range arcs {
		if a.Weight < 1 || a.Weight > cfg.MaxWeight {
			t.Fatalf("weight %d outside [1,%d]", a.Weight, cfg.MaxWeight)
		}
	}

	// 4. Same seed, same graph.
	again, err := BarabasiAlbert(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range arcs {
		if arcs[i] != again[i] {
			t.Fatalf("arc %d differs across runs with the same seed", i)
		}
	}

	// 5. Degenerate parameters are rejected.
	if _, err := BarabasiAlbert(Config{Nodes: 3, M0: 3}); err == nil {
		t.Error("m0 >= n should fail")
	}
	if _, err := BarabasiAlbert(Config{Nodes: 3, M0: 0}); err == nil {
		t.Error("m0 < 1 should fail")
	}
}

func TestFull(t *testing.T) {
	cfg := Config{Nodes: 7, Seed: 1}
	arcs, err := Full(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(arcs) != 49 {
		t.Fatalf("got %d arcs, want n^2 = 49", len(arcs))
	}

	// Self-loops are part of the full graph.
	loops := 0
	for _, a := range arcs {
		if a.From == a.To {
			loops++
		}
	}
	if loops != 7 {
		t.Errorf("got %d self-loops, want 7", loops)
	}

	if _, err := Full(Config{Nodes: 0}); err == nil {
		t.Error("n=0 should fail")
	}
}
