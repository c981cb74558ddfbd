package harness

import (
	"fmt"
	"strings"

	"github.com/sanonone/threshdb/pkg/dataset"
	"github.com/sanonone/threshdb/pkg/gen"
	"github.com/sanonone/threshdb/pkg/graph"
	"github.com/sanonone/threshdb/pkg/persistence"
)

// BuildData turns a DataSpec into a graph plus a short human description
// for the results rows.
func BuildData(spec DataSpec) (*graph.Graph, string, error) {
	var (
		nodes int
		arcs  []graph.Arc
		err   error
	)

	switch spec.Kind {
	case "ba":
		arcs, err = gen.BarabasiAlbert(gen.Config{
			Nodes: spec.N, M0: spec.M0, Seed: spec.Seed, MaxWeight: spec.MaxWeight,
		})
		nodes = spec.N

	case "full":
		arcs, err = gen.Full(gen.Config{
			Nodes: spec.N, Seed: spec.Seed, MaxWeight: spec.MaxWeight,
		})
		nodes = spec.N

	case "imdb":
		nodes, arcs, err = dataset.LoadMovieLinks(spec.Path, spec.LinkTypes)

	case "snapshot":
		nodes, arcs, err = persistence.LoadArcs(spec.Path)

	default:
		err = fmt.Errorf("harness: unsupported data kind %q", spec.Kind)
	}
	if err != nil {
		return nil, "", err
	}

	g, err := graph.Build(nodes, arcs, spec.Indexed)
	if err != nil {
		return nil, "", err
	}

	// Optionally persist generated data for reuse.
	if spec.Snapshot != "" && spec.Kind != "snapshot" {
		if err := persistence.SaveGraph(spec.Snapshot, g); err != nil {
			return nil, "", fmt.Errorf("harness: save snapshot: %w", err)
		}
	}

	return g, Describe(spec, g), nil
}

// Describe renders the data description used in results rows and logs,
// e.g. "barabasi albert for n=1000 and m0=3 (m=2991) indexed".
func Describe(spec DataSpec, g *graph.Graph) string {
	var b strings.Builder
	switch spec.Kind {
	case "ba":
		fmt.Fprintf(&b, "barabasi albert for n=%d and m0=%d", spec.N, spec.M0)
	case "full":
		fmt.Fprintf(&b, "full graph with n=%d", spec.N)
	case "imdb":
		b.WriteString("imdb data with link types ")
		b.WriteString(describeLinkTypes(spec.LinkTypes))
	case "snapshot":
		fmt.Fprintf(&b, "snapshot %s", spec.Path)
	}
	fmt.Fprintf(&b, " (m=%d)", g.NumEdges())
	if spec.Indexed {
		b.WriteString(" indexed")
	} else {
		b.WriteString(" no index")
	}
	return b.String()
}

func describeLinkTypes(types []int) string {
	if len(types) == 0 {
		return "all"
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%d", t)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
