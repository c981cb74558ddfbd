package results

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the timing of one (class, method, k, threshold) query
// across the runs that completed.
type Summary struct {
	Class     string
	Method    string
	K         int
	Threshold int64
	Runs      int // completed runs (timeouts excluded)
	Timeouts  int
	MeanMs    float64
	StdDevMs  float64
}

type summaryKey struct {
	class     string
	method    string
	k         int
	threshold int64
}

// Summarize groups rows by query and computes mean and standard deviation of
// the elapsed time over completed runs. Output order is deterministic.
func Summarize(rows []Row) []Summary {
	elapsed := make(map[summaryKey][]float64)
	timeouts := make(map[summaryKey]int)

	for _, r := range rows {
		key := summaryKey{r.Class, r.Method, r.K, r.Threshold}
		if r.Status == StatusTimeout {
			timeouts[key]++
			continue
		}
		elapsed[key] = append(elapsed[key], float64(r.Elapsed)/float64(time.Millisecond))
	}

	keys := make([]summaryKey, 0, len(elapsed)+len(timeouts))
	seen := make(map[summaryKey]struct{})
	for k := range elapsed {
		keys = append(keys, k)
		seen[k] = struct{}{}
	}
	for k := range timeouts {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.class != b.class {
			return a.class < b.class
		}
		if a.method != b.method {
			return a.method < b.method
		}
		if a.k != b.k {
			return a.k < b.k
		}
		return a.threshold < b.threshold
	})

	summaries := make([]Summary, 0, len(keys))
	for _, key := range keys {
		samples := elapsed[key]
		s := Summary{
			Class:     key.class,
			Method:    key.method,
			K:         key.k,
			Threshold: key.threshold,
			Runs:      len(samples),
			Timeouts:  timeouts[key],
		}
		if len(samples) > 0 {
			s.MeanMs = stat.Mean(samples, nil)
		}
		if len(samples) > 1 {
			s.StdDevMs = stat.StdDev(samples, nil)
		}
		summaries = append(summaries, s)
	}
	return summaries
}
