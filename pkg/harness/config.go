// Package harness runs experiment batches: it builds the data, sweeps the
// configured thresholds with the requested evaluation method, enforces
// per-query timeouts, and hands rows to the results writer.
package harness

import (
	"fmt"
	"os"

	"github.com/sanonone/threshdb/pkg/query"
	"gopkg.in/yaml.v3"
)

// Config is the top-level experiment batch description, loaded from YAML.
type Config struct {
	// ResultsDir is where per-experiment CSV files are written.
	ResultsDir string `yaml:"results_dir"`

	Experiments []Experiment `yaml:"experiments"`
}

// Experiment is one data description plus the queries to evaluate on it.
type Experiment struct {
	Name string `yaml:"name"`

	// Runs repeats the full query set to get stable timings (default 3).
	Runs int `yaml:"runs"`

	// TimeoutMs bounds a single query evaluation (default 1800000, i.e.
	// 30 minutes; 0 keeps the default, negative disables the timeout).
	TimeoutMs int `yaml:"timeout_ms"`

	// HardTimeout stops the remaining runs of the experiment after the
	// first timed-out query (default true: a query that timed out once
	// will time out again).
	HardTimeout *bool `yaml:"hard_timeout"`

	Data    DataSpec    `yaml:"data"`
	Queries []QuerySpec `yaml:"queries"`
}

// DataSpec describes how the experiment graph is obtained.
type DataSpec struct {
	// Kind is one of "ba" (Barabási–Albert), "full", "imdb", "snapshot".
	Kind string `yaml:"kind"`

	N         int   `yaml:"n"`
	M0        int   `yaml:"m0"`
	Seed      int64 `yaml:"seed"`
	MaxWeight int64 `yaml:"max_weight"`

	// LinkTypes filters the imdb corpus; empty means all link types.
	LinkTypes []int `yaml:"link_types"`

	// Path points at the imdb CSV or the snapshot file to load.
	Path string `yaml:"path"`

	// Snapshot, when set for a generated kind, saves the built graph there
	// so later batches can use kind "snapshot" instead of regenerating.
	Snapshot string `yaml:"snapshot"`

	// Indexed builds the weight index. Affects performance only, never
	// results.
	Indexed bool `yaml:"indexed"`
}

// QuerySpec is one query template swept over a list of thresholds.
type QuerySpec struct {
	Class      string  `yaml:"class"`
	Method     string  `yaml:"method"`
	K          int     `yaml:"k"`
	Thresholds []int64 `yaml:"thresholds"`
}

const (
	defaultRuns      = 3
	defaultTimeoutMs = 1800000 // 30 minutes, in milliseconds
)

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{ResultsDir: "results"}
}

// LoadConfig reads the YAML configuration file using strict parsing.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open experiment config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in experiment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate applies defaults and rejects specs the runner could not execute.
func (c *Config) Validate() error {
	if c.ResultsDir == "" {
		c.ResultsDir = "results"
	}
	if len(c.Experiments) == 0 {
		return fmt.Errorf("harness: no experiments configured")
	}

	for i := range c.Experiments {
		exp := &c.Experiments[i]
		if exp.Name == "" {
			return fmt.Errorf("harness: experiment %d has no name", i)
		}
		if exp.Runs <= 0 {
			exp.Runs = defaultRuns
		}
		if exp.TimeoutMs == 0 {
			exp.TimeoutMs = defaultTimeoutMs
		}

		switch exp.Data.Kind {
		case "ba", "full", "imdb", "snapshot":
		default:
			return fmt.Errorf("harness: experiment %q: unsupported data kind %q", exp.Name, exp.Data.Kind)
		}

		if len(exp.Queries) == 0 {
			return fmt.Errorf("harness: experiment %q has no queries", exp.Name)
		}
		for _, q := range exp.Queries {
			if _, err := query.ParseClass(q.Class); err != nil {
				return fmt.Errorf("harness: experiment %q: %w", exp.Name, err)
			}
			method, err := query.ParseMethod(q.Method)
			if err != nil {
				return fmt.Errorf("harness: experiment %q: %w", exp.Name, err)
			}
			if q.K < 1 {
				return fmt.Errorf("harness: experiment %q: %w", exp.Name, query.ErrInvalidK)
			}
			if len(q.Thresholds) == 0 {
				return fmt.Errorf("harness: experiment %q: query has no thresholds", exp.Name)
			}
			// The windowed sweep reuses one session, so the thresholds
			// must be ascending.
			if method == query.MethodWindowed {
				for j := 1; j < len(q.Thresholds); j++ {
					if q.Thresholds[j] < q.Thresholds[j-1] {
						return fmt.Errorf("harness: experiment %q: windowed thresholds must be ascending", exp.Name)
					}
				}
			}
		}
	}
	return nil
}

// hardTimeout resolves the tri-state flag (unset means true).
func (e Experiment) hardTimeout() bool {
	if e.HardTimeout == nil {
		return true
	}
	return *e.HardTimeout
}
