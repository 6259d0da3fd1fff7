package api

import (
	"net/http"

	"github.com/dgallion1/sylcheck/internal/rules"
)

type requirement struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	SubItems []string `json:"sub_items,omitempty"`
}

func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"required":    describe(rules.Required()),
		"recommended": describe(rules.Recommended()),
	})
}

func describe(entries []rules.Entry) []requirement {
	out := make([]requirement, 0, len(entries))
	for _, e := range entries {
		req := requirement{ID: e.ID, Name: e.Rule.Label()}
		if c, ok := e.Rule.(*rules.Composite); ok {
			for _, sub := range c.SubItems {
				req.SubItems = append(req.SubItems, sub.Name)
			}
		}
		out = append(out, req)
	}
	return out
}

func (s *Server) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		jsonError(w, "catalog validation disabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"catalog":     s.catalog.Stats(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func (s *Server) handleClearCatalogCache(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		jsonError(w, "catalog validation disabled", http.StatusServiceUnavailable)
		return
	}
	before := s.catalog.Stats().Entries
	s.catalog.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": before})
}
