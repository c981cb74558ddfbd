package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/sanonone/threshdb/pkg/graph"
	"github.com/sanonone/threshdb/pkg/metrics"
)

// Method selects the evaluation strategy.
type Method int

const (
	MethodNaive Method = iota + 1
	MethodWindowed
)

func (m Method) String() string {
	switch m {
	case MethodNaive:
		return "naive"
	case MethodWindowed:
		return "windowed"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts "naive" / "windowed" into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive":
		return MethodNaive, nil
	case "windowed":
		return MethodWindowed, nil
	default:
		return 0, fmt.Errorf("query: unknown method %q (use naive or windowed)", s)
	}
}

// Request is one query invocation as the external harness supplies it.
type Request struct {
	Class     Class
	Method    Method
	K         int
	Threshold int64
}

// Result is the driver's output tuple: the match set (or just its count)
// plus the elapsed evaluation time.
type Result struct {
	Matches []Match
	Count   int
	Elapsed time.Duration
}

// Driver orchestrates evaluator selection and timing. It is stateless across
// calls except for one long-lived windowed session per (graph, class, k),
// kept so that threshold sweeps pay incremental cost; Reset discards them.
//
// Driver methods are safe for concurrent use, but advances on the *same*
// underlying windowed session are serialized by the session itself.
type Driver struct {
	sessions syncSessionMap
}

// NewDriver returns an empty driver.
func NewDriver() *Driver {
	return &Driver{sessions: newSyncSessionMap()}
}

// Evaluate runs one query. For MethodWindowed it reuses (or creates) the
// session for (g, class, k); a threshold below the session's current window
// fails with ErrNonMonotonicThreshold — the caller decides whether to Reset
// and retry, the driver never retries on its own.
func (d *Driver) Evaluate(g *graph.Graph, req Request) (Result, error) {
	topo, err := NewTopology(req.Class, req.K)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(req.Class.String(), req.Method.String(), "error").Inc()
		return Result{}, err
	}

	start := time.Now()
	var matches []Match

	switch req.Method {
	case MethodNaive:
		matches, err = NewNaive(g).Evaluate(topo, req.Threshold)

	case MethodWindowed:
		var sess *WindowedEvaluator
		sess, err = d.sessions.get(g, topo)
		if err == nil {
			matches, err = sess.Evaluate(req.Threshold)
			if err == nil {
				metrics.WindowEdges.WithLabelValues(req.Class.String()).Set(float64(sess.WindowSize()))
			}
		}

	default:
		err = fmt.Errorf("query: unknown method %v", req.Method)
	}

	elapsed := time.Since(start)

	if err != nil {
		metrics.QueriesTotal.WithLabelValues(req.Class.String(), req.Method.String(), "error").Inc()
		return Result{}, err
	}

	metrics.QueriesTotal.WithLabelValues(req.Class.String(), req.Method.String(), "ok").Inc()
	metrics.QueryDuration.WithLabelValues(req.Class.String(), req.Method.String()).Observe(elapsed.Seconds())
	metrics.MatchesFound.WithLabelValues(req.Class.String(), req.Method.String()).Add(float64(len(matches)))

	return Result{Matches: matches, Count: len(matches), Elapsed: elapsed}, nil
}

// Reset discards all cached windowed sessions. Needed before sweeping a
// threshold downward on a graph that already has a session.
func (d *Driver) Reset() {
	d.sessions.reset()
}
