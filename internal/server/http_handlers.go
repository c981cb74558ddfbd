// HTTP API code
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"sort"
	"strings"
	"time"

	"github.com/sanonone/threshdb/pkg/harness"
	"github.com/sanonone/threshdb/pkg/query"
	"gopkg.in/yaml.v3"
)

// registerHTTPHandlers sets up the routes for the REST API.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.router)
}

// router is our manual main router. It inspects the URL and delegates to the
// right handler.
func (s *Server) router(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// --- Debug endpoints (pprof) ---
	if strings.HasPrefix(path, "/debug/pprof") {
		switch {
		case path == "/debug/pprof/":
			pprof.Index(w, r)
		case path == "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case path == "/debug/pprof/profile":
			pprof.Profile(w, r)
		case path == "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case path == "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			s.writeHTTPError(w, http.StatusNotFound, "pprof endpoint not found")
		}
		return
	}

	// --- Graph endpoints ---
	if path == "/graphs" {
		s.handleGraphsRequest(w, r)
		return
	}
	if strings.HasPrefix(path, "/graphs/") {
		rest := strings.TrimPrefix(path, "/graphs/")

		// Pattern: /graphs/{id}/query
		if id, ok := strings.CutSuffix(rest, "/query"); ok {
			s.handleGraphQuery(w, r, id)
			return
		}
		// Pattern: /graphs/{id}/sessions
		if id, ok := strings.CutSuffix(rest, "/sessions"); ok {
			s.handleSessionCreate(w, r, id)
			return
		}
		// Pattern: /graphs/{id}
		s.handleSingleGraphRequest(w, r, rest)
		return
	}

	// --- Session endpoints ---
	if strings.HasPrefix(path, "/sessions/") {
		rest := strings.TrimPrefix(path, "/sessions/")

		// Pattern: /sessions/{id}/advance
		if id, ok := strings.CutSuffix(rest, "/advance"); ok {
			s.handleSessionAdvance(w, r, id)
			return
		}
		// Pattern: /sessions/{id}
		s.handleSingleSessionRequest(w, r, rest)
		return
	}

	// --- Experiment batches ---
	if path == "/experiments" {
		s.handleExperimentsRequest(w, r)
		return
	}
	if strings.HasPrefix(path, "/tasks/") {
		taskID := strings.TrimPrefix(path, "/tasks/")
		s.handleGetTask(w, r, taskID)
		return
	}

	// No pattern matched, return Not Found.
	s.writeHTTPError(w, http.StatusNotFound, "endpoint not found")
}

// --- Graph handlers ---

// handleGraphsRequest serves both the list and the creation.
func (s *Server) handleGraphsRequest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListGraphs(w, r)
	case http.MethodPost:
		s.handleGraphCreate(w, r)
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and POST are allowed on /graphs")
	}
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]*graphEntry, 0, len(s.graphs))
	for _, e := range s.graphs {
		list = append(list, e)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Created.Before(list[j].Created) })
	s.writeHTTPResponse(w, http.StatusOK, list)
}

func (s *Server) handleGraphCreate(w http.ResponseWriter, r *http.Request) {
	var req GraphCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	spec := harness.DataSpec{
		Kind:      req.Kind,
		N:         req.N,
		M0:        req.M0,
		Seed:      req.Seed,
		MaxWeight: req.MaxWeight,
		LinkTypes: req.LinkTypes,
		Path:      req.Path,
		Indexed:   req.Indexed,
	}
	g, descr, err := harness.BuildData(spec)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := s.addGraph(g, descr, req.Indexed)
	s.writeHTTPResponse(w, http.StatusCreated, entry)
}

// handleSingleGraphRequest serves GET and DELETE on a single graph.
func (s *Server) handleSingleGraphRequest(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		entry, ok := s.getGraph(id)
		if !ok {
			s.writeHTTPError(w, http.StatusNotFound, "graph not found")
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, entry)
	case http.MethodDelete:
		if !s.deleteGraph(id) {
			s.writeHTTPError(w, http.StatusNotFound, "graph not found")
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and DELETE are allowed on /graphs/{id}")
	}
}

func (s *Server) handleGraphQuery(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the POST method")
		return
	}

	entry, ok := s.getGraph(id)
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "graph not found")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	class, err := query.ParseClass(req.Class)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	method, err := query.ParseMethod(req.Method)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.driver.Evaluate(entry.g, query.Request{
		Class:     class,
		Method:    method,
		K:         req.K,
		Threshold: req.Threshold,
	})
	if err != nil {
		s.writeHTTPError(w, httpStatusForQueryErr(err), err.Error())
		return
	}

	resp := QueryResponse{
		Count:     res.Count,
		ElapsedMs: float64(res.Elapsed) / float64(time.Millisecond),
	}
	if req.IncludeMatches {
		resp.Matches = res.Matches
	}
	s.writeHTTPResponse(w, http.StatusOK, resp)
}

// --- Session handlers ---

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request, graphID string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the POST method")
		return
	}

	entry, ok := s.getGraph(graphID)
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "graph not found")
		return
	}

	var req SessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	class, err := query.ParseClass(req.Class)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.addSession(entry, class, req.K)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusCreated, s.sessionView(sess))
}

// handleSingleSessionRequest serves GET and DELETE on a single session.
func (s *Server) handleSingleSessionRequest(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, ok := s.getSession(id)
		if !ok {
			s.writeHTTPError(w, http.StatusNotFound, "session not found")
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, s.sessionView(sess))
	case http.MethodDelete:
		if !s.deleteSession(id) {
			s.writeHTTPError(w, http.StatusNotFound, "session not found")
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and DELETE are allowed on /sessions/{id}")
	}
}

func (s *Server) handleSessionAdvance(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the POST method")
		return
	}

	sess, ok := s.getSession(id)
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "session not found")
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	delta, err := sess.eval.Advance(req.Threshold)
	if err != nil {
		s.writeHTTPError(w, httpStatusForQueryErr(err), err.Error())
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, AdvanceResponse{
		Added:       delta.Added,
		Removed:     delta.Removed,
		WindowEdges: sess.eval.WindowSize(),
		Matches:     len(sess.eval.Matches()),
		ElapsedMs:   float64(time.Since(start)) / float64(time.Millisecond),
	})
}

// sessionView builds the response shape for a session entry.
func (s *Server) sessionView(sess *sessionEntry) SessionResponse {
	resp := SessionResponse{
		ID:          sess.ID,
		GraphID:     sess.GraphID,
		Class:       sess.Class,
		K:           sess.K,
		WindowEdges: sess.eval.WindowSize(),
		Matches:     len(sess.eval.Matches()),
	}
	if th, ok := sess.eval.Threshold(); ok {
		resp.Threshold = &th
	}
	return resp
}

// --- Experiment batch handlers ---

// handleExperimentsRequest accepts a YAML batch config in the request body,
// starts the runner in the background, and returns a task id to poll.
func (s *Server) handleExperimentsRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the POST method")
		return
	}

	cfg := harness.DefaultConfig()
	decoder := yaml.NewDecoder(r.Body)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid YAML config: "+err.Error())
		return
	}

	runner, err := harness.NewRunner(cfg)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := s.taskManager.NewTask()
	task.SetResultsDir(cfg.ResultsDir)
	runner.Progress = task.SetProgress

	go func() {
		task.SetStatus(TaskStatusRunning)
		if err := runner.Run(); err != nil {
			task.SetError(err)
			return
		}
		task.SetStatus(TaskStatusCompleted)
	}()

	s.writeHTTPResponse(w, http.StatusAccepted, TaskResponse{TaskID: task.ID})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if r.Method != http.MethodGet {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the GET method")
		return
	}

	task, found := s.taskManager.GetTask(taskID)
	if !found {
		s.writeHTTPError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, task.Snapshot())
}

// --- Helpers ---

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// httpStatusForQueryErr maps evaluator errors onto HTTP statuses. A
// non-monotonic advance is a conflict with the session state, not a malformed
// request.
func httpStatusForQueryErr(err error) int {
	switch {
	case errors.Is(err, query.ErrNonMonotonicThreshold):
		return http.StatusConflict
	case errors.Is(err, query.ErrUnsupportedClass), errors.Is(err, query.ErrInvalidK):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
