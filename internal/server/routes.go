package server

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/lineagemap/pkg/lineage"
)

//go:embed index.html
var indexPage []byte

// mapRequest is the body of a POST /map call.
type mapRequest struct {
	SQL string `json:"sql"`
}

// setupRoutes registers the UI page and the lineage mapping endpoint.
func (s *Server) setupRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Post("/map", s.handleMap)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

// handleMap resolves lineage for the submitted SQL. The response is always
// HTTP 200 with node/edge lists; a statement that cannot be resolved yields
// empty lists, keeping the response shape uniform for the UI.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := lineage.Extract(req.SQL)
	if err != nil {
		s.logger.Debug("lineage resolution failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
