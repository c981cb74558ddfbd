package graph

import (
	"sort"

	"github.com/tidwall/btree"
)

// weightItem is what the B-tree stores: one entry per edge, keyed by
// (weight, edge id).
type weightItem struct {
	Weight int64
	EdgeID uint64
}

// Less function for the B-tree. Orders items by weight; ties broken by edge
// ID so that every edge is a distinct item and the order is total.
func weightItemLess(a, b weightItem) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	return a.EdgeID < b.EdgeID
}

// WeightIndex is the optional auxiliary structure over a graph's weights.
// It is built once from the graph and read-only thereafter, so it is safe
// for concurrent readers.
//
// Two structures back it: a B-tree of (weight, id) pairs for range scans and
// the graph's own sorted projection for rank lookups by binary search.
type WeightIndex struct {
	g    *Graph
	tree *btree.BTreeG[weightItem]
}

func newWeightIndex(g *Graph) *WeightIndex {
	idx := &WeightIndex{
		g:    g,
		tree: btree.NewBTreeG[weightItem](weightItemLess),
	}
	for _, e := range g.sorted {
		idx.tree.Set(weightItem{Weight: e.Weight, EdgeID: e.ID})
	}
	return idx
}

// RankOf returns the number of edges with weight strictly less than w.
// O(log m) binary search over the sorted projection.
func (idx *WeightIndex) RankOf(w int64) int {
	return sort.Search(len(idx.g.sorted), func(i int) bool {
		return idx.g.sorted[i].Weight >= w
	})
}

// EdgesInRange returns all edges with lo <= weight <= hi in increasing
// (weight, id) order. O(log m + output size).
func (idx *WeightIndex) EdgesInRange(lo, hi int64) []Edge {
	if lo > hi {
		return nil
	}
	var res []Edge
	// Ascend from the first item with weight >= lo and stop past hi.
	idx.tree.Ascend(weightItem{Weight: lo, EdgeID: 0}, func(item weightItem) bool {
		if item.Weight > hi {
			return false
		}
		res = append(res, idx.g.edges[item.EdgeID])
		return true
	})
	return res
}

// Len returns the number of indexed edges.
func (idx *WeightIndex) Len() int { return idx.tree.Len() }
