package harness

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sanonone/threshdb/pkg/graph"
	"github.com/sanonone/threshdb/pkg/query"
	"github.com/sanonone/threshdb/pkg/results"
)

// Runner executes a configured experiment batch.
type Runner struct {
	cfg    Config
	writer *results.Writer

	// Progress, when set, receives one short line per finished experiment
	// (used by the server's async task view).
	Progress func(msg string)
}

// NewRunner validates the config and prepares the results directory.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	writer, err := results.NewWriter(cfg.ResultsDir)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, writer: writer}, nil
}

// Run executes every experiment in order. The first failing experiment
// aborts the batch; timeouts are not failures, they are recorded rows.
func (r *Runner) Run() error {
	for _, exp := range r.cfg.Experiments {
		if err := r.runExperiment(exp); err != nil {
			return fmt.Errorf("harness: experiment %q: %w", exp.Name, err)
		}
	}
	return nil
}

func (r *Runner) runExperiment(exp Experiment) error {
	g, descr, err := BuildData(exp.Data)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	log.Printf("Running %s: %s (%d runs)", exp.Name, descr, exp.Runs)

	var rows []results.Row
	hard := exp.hardTimeout()
	timeout := time.Duration(exp.TimeoutMs) * time.Millisecond
	if exp.TimeoutMs < 0 {
		timeout = 0 // disabled
	}

runs:
	for run := 1; run <= exp.Runs; run++ {
		// A fresh driver per run: windowed sessions must restart so every
		// run pays the same sweep, not the previous run's warm cache.
		drv := query.NewDriver()

		for _, q := range exp.Queries {
			class, _ := query.ParseClass(q.Class)
			method, _ := query.ParseMethod(q.Method)

			for _, th := range q.Thresholds {
				req := query.Request{Class: class, Method: method, K: q.K, Threshold: th}
				res, status, err := r.evaluate(drv, g, req, timeout)
				if err != nil {
					return err
				}

				rows = append(rows, results.Row{
					ExperimentID: id,
					Experiment:   descr,
					Run:          run,
					Class:        q.Class,
					Method:       method.String(),
					K:            q.K,
					Threshold:    th,
					Matches:      res.Count,
					Elapsed:      res.Elapsed,
					Status:       status,
				})

				if status == results.StatusTimeout {
					// The abandoned evaluation may still hold the windowed
					// session mid-advance; never touch this driver again.
					drv = query.NewDriver()
					if hard {
						log.Printf("%s: timeout on %s/%s k=%d t=%d, stopping remaining runs",
							exp.Name, q.Class, q.Method, q.K, th)
						break runs
					}
				}
			}
		}
	}

	path, err := r.writer.WriteExperiment(exp.Name, id, rows)
	if err != nil {
		return err
	}

	for _, s := range results.Summarize(rows) {
		log.Printf("%s: %s %s k=%d t=%d -> mean %.3fms (stddev %.3f, runs %d, timeouts %d)",
			exp.Name, s.Class, s.Method, s.K, s.Threshold, s.MeanMs, s.StdDevMs, s.Runs, s.Timeouts)
	}
	log.Printf("Results written to %s", path)

	if r.Progress != nil {
		r.Progress(fmt.Sprintf("%s done (%d rows)", exp.Name, len(rows)))
	}
	return nil
}

type evalOut struct {
	res query.Result
	err error
}

// evaluate runs one query, bounded by the wall-clock timeout. On timeout the
// in-flight evaluation is abandoned (evaluators have no side effects outside
// their own cache, so this is safe) and a timeout row is reported.
func (r *Runner) evaluate(drv *query.Driver, g *graph.Graph, req query.Request, timeout time.Duration) (query.Result, string, error) {
	ch := make(chan evalOut, 1)
	go func() {
		res, err := drv.Evaluate(g, req)
		ch <- evalOut{res: res, err: err}
	}()

	if timeout <= 0 {
		out := <-ch
		return out.res, results.StatusOK, out.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.res, results.StatusOK, out.err
	case <-timer.C:
		return query.Result{}, results.StatusTimeout, nil
	}
}
