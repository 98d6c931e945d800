package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/xbrlgest/internal/store"
	"github.com/go-chi/chi/v5"
)

// handleListFilings lists persisted filings, newest first.
func (s *Server) handleListFilings(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	filings, err := s.orchestrator.Store().ListFilings(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list filings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"filings": filings})
}

func (s *Server) handleGetFiling(w http.ResponseWriter, r *http.Request) {
	id, ok := filingID(w, r)
	if !ok {
		return
	}
	filing, err := s.orchestrator.Store().GetFiling(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "filing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to get filing: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filing)
}

// handleListFacts returns all fact rows of a filing.
func (s *Server) handleListFacts(w http.ResponseWriter, r *http.Request) {
	id, ok := filingID(w, r)
	if !ok {
		return
	}
	facts, err := s.orchestrator.Store().ListFacts(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "filing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to list facts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"facts": facts})
}

// handleDeleteFiling deletes a filing and all its stored facts.
func (s *Server) handleDeleteFiling(w http.ResponseWriter, r *http.Request) {
	id, ok := filingID(w, r)
	if !ok {
		return
	}
	err := s.orchestrator.Store().DeleteFiling(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "filing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete filing: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": id})
}

func filingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "filingID"), 10, 64)
	if err != nil {
		jsonError(w, "invalid filing id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
