package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/halim/toolbridge/pkg/gateway"
)

// errorBody is the uniform shape of transport-level error responses.
type errorBody struct {
	Detail string `json:"detail"`
}

// credentials extracts the raw credential material from a request. Only the
// forms that are actually present end up set.
func (s *Server) credentials(r *http.Request) gateway.Credentials {
	creds := gateway.Credentials{
		HeaderKey: r.Header.Get(s.options.APIKeyHeader),
		QueryKey:  r.URL.Query().Get(s.options.APIKeyQuery),
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		creds.BearerToken = strings.TrimPrefix(auth, "Bearer ")
	}
	return creds
}

// requireAuth authenticates read-only endpoints. Invocation re-authenticates
// through the dispatcher, which owns the audited outcome.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, err := s.auth.Authenticate(s.credentials(r)); err != nil {
		writeError(w, gateway.KindOf(err).HTTPStatus(), err.Error())
		return false
	}
	return true
}

// handleListTools serves GET /tools.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}

	descriptors := s.registry.List()
	out := make([]gateway.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d.Describe())
	}

	writeJSON(w, http.StatusOK, out)
}

// handleToolDetail serves GET /tools/{tool}.
func (s *Server) handleToolDetail(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}

	d, err := s.registry.Get(r.PathValue("tool"))
	if err != nil {
		writeError(w, gateway.KindOf(err).HTTPStatus(), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, d.Describe())
}

// handleToolSchema serves GET /tools/{tool}/schema — the inputSchema object
// alone.
func (s *Server) handleToolSchema(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}

	d, err := s.registry.Get(r.PathValue("tool"))
	if err != nil {
		writeError(w, gateway.KindOf(err).HTTPStatus(), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, d.InputSchema())
}

// handleCallTool serves POST /tools/call. Authentication comes before any
// body-shape check, so an unauthenticated caller sees 401 regardless of
// payload. Boundary failures map to transport status codes; handler outcomes
// ride in the 200 envelope.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	creds := s.credentials(r)
	if _, err := s.auth.Authenticate(creds); err != nil {
		writeError(w, gateway.KindOf(err).HTTPStatus(), err.Error())
		return
	}

	var req gateway.ToolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ToolName == "" {
		writeError(w, http.StatusBadRequest, "tool_name is required")
		return
	}

	result, err := s.dispatcher.Call(r.Context(), req, creds)
	if err != nil {
		writeError(w, gateway.KindOf(err).HTTPStatus(), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleEvents serves GET /events, the websocket dispatch stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.broadcaster == nil {
		writeError(w, http.StatusNotFound, "event stream is not enabled")
		return
	}
	if !s.requireAuth(w, r) {
		return
	}

	s.broadcaster.ServeHTTP(w, r)
}

// handleHealth serves GET /health. No authentication; it exposes nothing
// about the catalogue beyond its size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Seconds(),
		"toolCount": s.registry.Len(),
		"timestamp": time.Now().UnixMilli(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}
