package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finpilot/internal/storage"
)

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := sanitizeInput(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "business name is required")
		return
	}
	if len(name) > 100 {
		writeError(w, http.StatusBadRequest, "business name too long (max 100 characters)")
		return
	}

	business, err := s.store.CreateBusiness(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create business")
		return
	}

	writeJSON(w, http.StatusCreated, business)
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := s.store.ListBusinesses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list businesses")
		return
	}
	writeJSON(w, http.StatusOK, businesses)
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := s.store.GetBusiness(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load business")
		return
	}
	writeJSON(w, http.StatusOK, business)
}
