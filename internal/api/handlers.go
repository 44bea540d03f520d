// SPDX-License-Identifier: MIT
package api

import (
	"encoding/json"
	"net/http"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/model"
)

// handleSearch looks up titles matching the q parameter. Query validation is
// owned by the provider so the rule holds for every caller, not just HTTP.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	titles, err := s.searcher.SearchTitles(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if titles == nil {
		titles = []model.Title{}
	}
	writeJSON(w, http.StatusOK, titles)
}

// handleOptimize decodes the title lists and runs the optimizer.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req model.OptimizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.New(apperr.ErrInvalidInput, "Invalid request body"))
		return
	}

	resp, err := s.optimizer.Optimize(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRecommendations returns an empty list. The route is part of the v1
// surface; personalized recommendations are not computed yet.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []model.Title{})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apperr.New(apperr.ErrNotFound, "Route not found"))
}
