package query

import (
	"sort"
	"strconv"
	"strings"
)

// Match is an ordered k-tuple of edge IDs satisfying both the topology and
// the threshold predicate.
type Match []uint64

// Key returns a canonical string form ("3.7.1") used for set membership.
func (m Match) Key() string {
	var b strings.Builder
	for i, id := range m {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(id, 10))
	}
	return b.String()
}

// less orders matches position by position; used for deterministic output.
func (m Match) less(other Match) bool {
	for i := range m {
		if i >= len(other) {
			return false
		}
		if m[i] != other[i] {
			return m[i] < other[i]
		}
	}
	return len(m) < len(other)
}

// matchSet is the mutable match accumulator shared by both evaluators.
type matchSet map[string]Match

// add inserts m and reports whether it was new.
func (s matchSet) add(m Match) bool {
	k := m.Key()
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = m
	return true
}

// sorted returns the matches as a slice in deterministic tuple order.
func (s matchSet) sorted() []Match {
	res := make([]Match, 0, len(s))
	for _, m := range s {
		res = append(res, m)
	}
	sortMatches(res)
	return res
}

func sortMatches(ms []Match) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].less(ms[j]) })
}
