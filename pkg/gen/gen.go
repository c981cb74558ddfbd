// Package gen produces the synthetic experiment graphs: Barabási–Albert
// preferential attachment and the full graph on n nodes. Both attach uniform
// random weights from a seeded RNG so that runs are reproducible.
package gen

import (
	"fmt"
	"math/rand"

	"github.com/sanonone/threshdb/pkg/graph"
)

// Config holds the generator input parameters.
type Config struct {
	Nodes int // n
	M0    int // out degree of each new node (BA only)
	Seed  int64
	// MaxWeight bounds the random edge weights: weights are drawn uniformly
	// from [1, MaxWeight]. Defaults to 1000 when zero.
	MaxWeight int64
}

func (c Config) maxWeight() int64 {
	if c.MaxWeight <= 0 {
		return 1000
	}
	return c.MaxWeight
}

// BarabasiAlbert grows a graph by preferential attachment: starting from M0
// seed nodes, every new node attaches M0 edges to existing nodes chosen with
// probability proportional to their degree. Edges are directed from the new
// node to its targets, giving (Nodes-M0)*M0 edges.
func BarabasiAlbert(cfg Config) ([]graph.Arc, error) {
	n, m0 := cfg.Nodes, cfg.M0
	if m0 < 1 || m0 >= n {
		return nil, fmt.Errorf("gen: barabasi albert needs 1 <= m0 < n, got n=%d m0=%d", n, m0)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	maxW := cfg.maxWeight()

	arcs := make([]graph.Arc, 0, (n-m0)*m0)

	// repeated holds one entry per edge endpoint, so drawing uniformly from
	// it is exactly degree-proportional sampling.
	repeated := make([]int, 0, 2*(n-m0)*m0)

	// Initial targets: the seed nodes.
	targets := make([]int, m0)
	for i := range targets {
		targets[i] = i
	}

	for v := m0; v < n; v++ {
		for _, u := range targets {
			arcs = append(arcs, graph.Arc{
				From:   v,
				To:     u,
				Weight: 1 + rng.Int63n(maxW),
			})
			repeated = append(repeated, v, u)
		}
		targets = distinctSample(rng, repeated, m0)
	}

	return arcs, nil
}

// distinctSample draws k distinct values from pool by rejection.
func distinctSample(rng *rand.Rand, pool []int, k int) []int {
	seen := make(map[int]struct{}, k)
	res := make([]int, 0, k)
	for len(res) < k {
		v := pool[rng.Intn(len(pool))]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// Full produces every ordered pair (i, j) on n nodes, self-loops included,
// for n^2 edges total.
func Full(cfg Config) ([]graph.Arc, error) {
	n := cfg.Nodes
	if n < 1 {
		return nil, fmt.Errorf("gen: full graph needs n >= 1, got %d", n)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	maxW := cfg.maxWeight()

	arcs := make([]graph.Arc, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			arcs = append(arcs, graph.Arc{From: i, To: j, Weight: 1 + rng.Int63n(maxW)})
		}
	}
	return arcs, nil
}
