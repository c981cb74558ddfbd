package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sanonone/threshdb/pkg/graph"
	"github.com/sanonone/threshdb/pkg/metrics"
	"github.com/sanonone/threshdb/pkg/query"
)

// Server exposes the evaluation engine over HTTP (REST + /metrics) and a
// minimal TCP text protocol for scripted use.
type Server struct {
	driver *query.Driver

	mu       sync.RWMutex
	graphs   map[string]*graphEntry
	sessions map[string]*sessionEntry

	taskManager *TaskManager

	httpServer  *http.Server
	tcpListener net.Listener
}

// graphEntry is one loaded graph plus its bookkeeping.
type graphEntry struct {
	ID      string    `json:"id"`
	Descr   string    `json:"descr"`
	Nodes   int       `json:"nodes"`
	Edges   int       `json:"edges"`
	Indexed bool      `json:"indexed"`
	Created time.Time `json:"created"`

	g *graph.Graph
}

// sessionEntry is one live windowed evaluation session. Advance calls are
// serialized by the evaluator itself.
type sessionEntry struct {
	ID      string `json:"id"`
	GraphID string `json:"graph_id"`
	Class   string `json:"class"`
	K       int    `json:"k"`

	eval *query.WindowedEvaluator
}

// NewServer builds the server around a fresh driver.
func NewServer(httpAddr string) *Server {
	s := &Server{
		driver:      query.NewDriver(),
		graphs:      make(map[string]*graphEntry),
		sessions:    make(map[string]*sessionEntry),
		taskManager: NewTaskManager(),
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Mux
	// Order matters! Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:    httpAddr,
		Handler: rootMux,
	}

	return s
}

// Run starts the TCP and HTTP listeners and blocks until one of them fails
// or Shutdown is called.
func (s *Server) Run(tcpAddr string) error {
	if tcpAddr != "" {
		ln, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			return fmt.Errorf("TCP listener failed: %w", err)
		}
		s.tcpListener = ln
		log.Printf("TCP server listening on %s", tcpAddr)
		go s.acceptLoop(ln)
	}

	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops both listeners gracefully.
func (s *Server) Shutdown() {
	log.Println("Starting graceful shutdown...")

	if s.tcpListener != nil {
		_ = s.tcpListener.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}

// --- Registries ---

// addGraph registers a built graph and returns its entry.
func (s *Server) addGraph(g *graph.Graph, descr string, indexed bool) *graphEntry {
	entry := &graphEntry{
		ID:      uuid.New().String(),
		Descr:   descr,
		Nodes:   g.NumNodes(),
		Edges:   g.NumEdges(),
		Indexed: indexed,
		Created: time.Now(),
		g:       g,
	}

	s.mu.Lock()
	s.graphs[entry.ID] = entry
	s.mu.Unlock()

	metrics.LoadedGraphs.Set(float64(s.graphCount()))
	return entry
}

func (s *Server) getGraph(id string) (*graphEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.graphs[id]
	return e, ok
}

// deleteGraph removes a graph and every session attached to it.
func (s *Server) deleteGraph(id string) bool {
	s.mu.Lock()
	_, ok := s.graphs[id]
	if ok {
		delete(s.graphs, id)
		for sid, sess := range s.sessions {
			if sess.GraphID == id {
				delete(s.sessions, sid)
			}
		}
	}
	s.mu.Unlock()

	if ok {
		metrics.LoadedGraphs.Set(float64(s.graphCount()))
	}
	return ok
}

func (s *Server) graphCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.graphs)
}

// addSession creates a windowed session on an existing graph.
func (s *Server) addSession(ge *graphEntry, class query.Class, k int) (*sessionEntry, error) {
	topo, err := query.NewTopology(class, k)
	if err != nil {
		return nil, err
	}
	eval, err := query.NewWindowed(ge.g, topo)
	if err != nil {
		return nil, err
	}

	entry := &sessionEntry{
		ID:      uuid.New().String(),
		GraphID: ge.ID,
		Class:   class.String(),
		K:       k,
		eval:    eval,
	}

	s.mu.Lock()
	s.sessions[entry.ID] = entry
	s.mu.Unlock()
	return entry, nil
}

func (s *Server) getSession(id string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	return e, ok
}

func (s *Server) deleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}
