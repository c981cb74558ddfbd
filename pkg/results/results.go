// Package results writes experiment outcomes to CSV files and computes
// per-query timing summaries across repeated runs.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Row is one measurement: a single query evaluation within one run of an
// experiment.
type Row struct {
	ExperimentID string
	Experiment   string // human description, e.g. "barabasi albert n=1000 m0=3 indexed"
	Run          int
	Class        string
	Method       string
	K            int
	Threshold    int64
	Matches      int
	Elapsed      time.Duration
	Status       string // "ok" or "timeout"
}

// StatusOK / StatusTimeout are the only values Row.Status takes.
const (
	StatusOK      = "ok"
	StatusTimeout = "timeout"
)

var header = []string{
	"experiment_id", "experiment", "run", "class", "method", "k",
	"threshold", "matches", "elapsed_ms", "status",
}

// Writer accumulates rows and flushes them as one CSV file per experiment
// into a results directory.
type Writer struct {
	dir string
}

// NewWriter ensures the results directory exists.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("results: create dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("results: %s exists but is not a directory", dir)
	}
	return &Writer{dir: dir}, nil
}

// WriteExperiment writes all rows of one experiment to <name>-<id>.csv and
// returns the file path.
func (w *Writer) WriteExperiment(name, experimentID string, rows []Row) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.csv", name, experimentID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("results: create file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := []string{
			r.ExperimentID,
			r.Experiment,
			strconv.Itoa(r.Run),
			r.Class,
			r.Method,
			strconv.Itoa(r.K),
			strconv.FormatInt(r.Threshold, 10),
			strconv.Itoa(r.Matches),
			strconv.FormatFloat(float64(r.Elapsed)/float64(time.Millisecond), 'f', 3, 64),
			r.Status,
		}
		if err := cw.Write(rec); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("results: flush csv: %w", err)
	}
	return path, nil
}
