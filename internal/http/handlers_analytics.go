package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("businessID")
	if !s.businessExists(w, r, businessID) {
		return
	}

	summary, err := s.analytics.Summary(r.Context(), businessID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("businessID")
	if !s.businessExists(w, r, businessID) {
		return
	}

	dashboard, err := s.analytics.Dashboard(r.Context(), businessID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to assemble dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("businessID")
	if !s.businessExists(w, r, businessID) {
		return
	}

	insights, err := s.insights.List(r.Context(), businessID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list insights")
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleRefreshInsights(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("businessID")
	if !s.businessExists(w, r, businessID) {
		return
	}

	if err := s.insights.Refresh(r.Context(), businessID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to refresh insights")
		return
	}

	insights, err := s.insights.List(r.Context(), businessID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list insights")
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusinessID string `json:"business_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BusinessID == "" || sanitizeInput(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "business_id and question are required")
		return
	}
	if !s.businessExists(w, r, req.BusinessID) {
		return
	}

	answer, err := s.analytics.Chat(r.Context(), req.BusinessID, sanitizeInput(req.Question))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "chat is unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
