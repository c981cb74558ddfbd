package query

import (
	"sync"

	"github.com/sanonone/threshdb/pkg/graph"
)

// sessionKey identifies one windowed session: the graph instance plus the
// topology. Graphs are compared by identity; they are immutable snapshots,
// so pointer equality is exactly "same graph".
type sessionKey struct {
	g     *graph.Graph
	class Class
	k     int
}

// syncSessionMap is the driver's session cache.
type syncSessionMap struct {
	mu       *sync.Mutex
	sessions map[sessionKey]*WindowedEvaluator
}

func newSyncSessionMap() syncSessionMap {
	return syncSessionMap{
		mu:       &sync.Mutex{},
		sessions: make(map[sessionKey]*WindowedEvaluator),
	}
}

// get returns the session for (g, topo), creating it on first use.
func (m syncSessionMap) get(g *graph.Graph, topo Topology) (*WindowedEvaluator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey{g: g, class: topo.Class, k: topo.K}
	if sess, ok := m.sessions[key]; ok {
		return sess, nil
	}
	sess, err := NewWindowed(g, topo)
	if err != nil {
		return nil, err
	}
	m.sessions[key] = sess
	return sess, nil
}

func (m syncSessionMap) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.sessions)
}
