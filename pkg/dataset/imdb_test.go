package dataset

import (
	"strings"
	"testing"

	"github.com/sanonone/threshdb/pkg/graph"
)

const sampleCSV = `1,100,200,5
2,200,300,9
3,100,300,13
4,300,100,5
`

func TestReadMovieLinksAll(t *testing.T) {
	n, arcs, err := ReadMovieLinks(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatal(err)
	}

	// 1. Three distinct movies, four links.
	if n != 3 {
		t.Errorf("got %d nodes, want 3", n)
	}
	if len(arcs) != 4 {
		t.Fatalf("got %d arcs, want 4", len(arcs))
	}

	// 2. Weight carries the link type.
	if arcs[1].Weight != 9 {
		t.Errorf("second arc weight = %d, want 9", arcs[1].Weight)
	}

	// 3. The remapping is dense: the result must build cleanly.
	if _, err := graph.Build(n, arcs, true); err != nil {
		t.Fatalf("loaded arcs rejected by store: %v", err)
	}
}

func TestReadMovieLinksFiltered(t *testing.T) {
	// Keep only link type 5: rows 1 and 4.
	n, arcs, err := ReadMovieLinks(strings.NewReader(sampleCSV), []int{5})
	if err != nil {
		t.Fatal(err)
	}
	if len(arcs) != 2 {
		t.Fatalf("got %d arcs, want 2", len(arcs))
	}
	// Only movies 100, 200, 300 appear in kept rows -> still 3 nodes? No:
	// rows with type 5 reference 100, 200 and 300, 100 -> 3 movies.
	if n != 3 {
		t.Errorf("got %d nodes, want 3", n)
	}
	for _, a := range arcs {
		if a.Weight != 5 {
			t.Errorf("arc weight %d leaked through the type filter", a.Weight)
		}
	}
}

func TestReadMovieLinksMalformed(t *testing.T) {
	_, _, err := ReadMovieLinks(strings.NewReader("1,foo,200,5\n"), nil)
	if err == nil {
		t.Fatal("malformed row should fail")
	}
}
