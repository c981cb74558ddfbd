package results

import (
	"encoding/csv"
	"math"
	"os"
	"testing"
	"time"
)

func sampleRows() []Row {
	return []Row{
		{ExperimentID: "x1", Experiment: "ba n=10", Run: 1, Class: "TQ1", Method: "naive", K: 2, Threshold: 5, Matches: 3, Elapsed: 10 * time.Millisecond, Status: StatusOK},
		{ExperimentID: "x1", Experiment: "ba n=10", Run: 2, Class: "TQ1", Method: "naive", K: 2, Threshold: 5, Matches: 3, Elapsed: 30 * time.Millisecond, Status: StatusOK},
		{ExperimentID: "x1", Experiment: "ba n=10", Run: 1, Class: "TQ1", Method: "windowed", K: 2, Threshold: 5, Matches: 3, Elapsed: 2 * time.Millisecond, Status: StatusOK},
		{ExperimentID: "x1", Experiment: "ba n=10", Run: 2, Class: "TQ1", Method: "windowed", K: 2, Threshold: 5, Elapsed: 0, Status: StatusTimeout},
	}
}

func TestWriteExperiment(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := w.WriteExperiment("ba-small", "x1", sampleRows())
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header + 4 rows.
	if len(recs) != 5 {
		t.Fatalf("got %d records, want 5", len(recs))
	}
	if recs[0][0] != "experiment_id" {
		t.Errorf("missing header, got %v", recs[0])
	}
	// elapsed_ms of the first row is 10.000.
	if recs[1][8] != "10.000" {
		t.Errorf("elapsed_ms = %q, want 10.000", recs[1][8])
	}
	if recs[4][9] != StatusTimeout {
		t.Errorf("status = %q, want timeout", recs[4][9])
	}
}

func TestSummarize(t *testing.T) {
	sums := Summarize(sampleRows())
	if len(sums) != 2 {
		t.Fatalf("got %d summaries, want 2", len(sums))
	}

	// Deterministic order: naive before windowed.
	naive := sums[0]
	if naive.Method != "naive" || naive.Runs != 2 {
		t.Fatalf("unexpected first summary: %+v", naive)
	}
	if math.Abs(naive.MeanMs-20) > 1e-9 {
		t.Errorf("naive mean = %f, want 20", naive.MeanMs)
	}
	// Sample stddev of {10, 30} is sqrt(200).
	if math.Abs(naive.StdDevMs-math.Sqrt(200)) > 1e-9 {
		t.Errorf("naive stddev = %f, want %f", naive.StdDevMs, math.Sqrt(200))
	}

	windowed := sums[1]
	if windowed.Runs != 1 || windowed.Timeouts != 1 {
		t.Errorf("windowed summary: %+v", windowed)
	}
}
