package server

import (
	"github.com/sanonone/threshdb/pkg/query"
)

// GraphCreateRequest defines the body for graph creation. The fields mirror
// the harness data spec so the same description works in YAML batches and
// over the API.
type GraphCreateRequest struct {
	Kind      string `json:"kind"` // "ba", "full", "imdb", "snapshot"
	N         int    `json:"n,omitempty"`
	M0        int    `json:"m0,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	MaxWeight int64  `json:"max_weight,omitempty"`
	LinkTypes []int  `json:"link_types,omitempty"`
	Path      string `json:"path,omitempty"`
	Indexed   bool   `json:"indexed,omitempty"`
}

// QueryRequest defines the body for a one-shot query on a graph.
type QueryRequest struct {
	Class     string `json:"class"`
	Method    string `json:"method"`
	K         int    `json:"k"`
	Threshold int64  `json:"threshold"`

	// IncludeMatches returns the full match list instead of just the count.
	IncludeMatches bool `json:"include_matches,omitempty"`
}

// QueryResponse is the result of a one-shot query.
type QueryResponse struct {
	Count     int           `json:"count"`
	ElapsedMs float64       `json:"elapsed_ms"`
	Matches   []query.Match `json:"matches,omitempty"`
}

// SessionCreateRequest defines the body for opening a windowed session.
type SessionCreateRequest struct {
	Class string `json:"class"`
	K     int    `json:"k"`
}

// SessionResponse describes a live session and its current window.
type SessionResponse struct {
	ID          string `json:"id"`
	GraphID     string `json:"graph_id"`
	Class       string `json:"class"`
	K           int    `json:"k"`
	Threshold   *int64 `json:"threshold,omitempty"` // nil before the first advance
	WindowEdges int    `json:"window_edges"`
	Matches     int    `json:"matches"`
}

// AdvanceRequest defines the body for advancing a session's threshold.
type AdvanceRequest struct {
	Threshold int64 `json:"threshold"`
}

// AdvanceResponse carries the delta produced by one advance.
type AdvanceResponse struct {
	Added       []query.Match `json:"added"`
	Removed     []query.Match `json:"removed"`
	WindowEdges int           `json:"window_edges"`
	Matches     int           `json:"matches"`
	ElapsedMs   float64       `json:"elapsed_ms"`
}

// TaskResponse is returned when an async experiment batch is accepted.
type TaskResponse struct {
	TaskID string `json:"task_id"`
}
