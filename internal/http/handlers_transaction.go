package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"finpilot/internal/core"
	"finpilot/internal/ingest"
	"finpilot/internal/insights"
	"finpilot/internal/storage"
)

// maxUploadSize caps CSV uploads at 10 MB.
const maxUploadSize = 10 << 20

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if !s.businessExists(w, r, businessID) {
		return
	}

	records, err := s.store.ListTransactions(r.Context(), businessID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if !s.businessExists(w, r, businessID) {
		return
	}

	var req struct {
		Date          string  `json:"date"`
		Description   string  `json:"description"`
		Amount        float64 `json:"amount"`
		Type          string  `json:"type"`
		CategoryName  string  `json:"category_name"`
		EntityName    string  `json:"entity_name"`
		EntityType    string  `json:"entity_type"`
		PaymentMethod string  `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, ok := core.NormalizeDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	rec := core.TransactionRecord{
		Date:         date,
		Description:  sanitizeInput(req.Description),
		Amount:       req.Amount,
		Type:         core.TransactionType(req.Type),
		CategoryName: sanitizeInput(req.CategoryName),
		EntityName:   sanitizeInput(req.EntityName),
		EntityType:   req.EntityType,
	}
	if rec.Type == "" {
		rec.Type = core.TypeForAmount(rec.Amount)
	}
	if rec.CategoryName == "" {
		c := insights.FallbackClassification(rec)
		rec.CategoryName = c.CategoryName
		if rec.EntityType == "" {
			rec.EntityType = c.EntityType
		}
	}

	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.CreateTransaction(r.Context(), businessID, rec, sanitizeInput(req.PaymentMethod))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	rec.ID = id
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if !s.businessExists(w, r, businessID) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	s.importCSV(w, r, businessID, string(content))
}

func (s *Server) handleProcessCSVText(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if !s.businessExists(w, r, businessID) {
		return
	}

	var req struct {
		CSVText string `json:"csv_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CSVText == "" {
		writeError(w, http.StatusBadRequest, "csv_text is required")
		return
	}

	s.importCSV(w, r, businessID, req.CSVText)
}

func (s *Server) importCSV(w http.ResponseWriter, r *http.Request, businessID, content string) {
	count, err := s.ingest.ImportCSV(r.Context(), businessID, content)
	if errors.Is(err, ingest.ErrNoTransactions) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to import transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": count,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.DeleteTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// businessExists writes a 404 and returns false when the business is unknown.
func (s *Server) businessExists(w http.ResponseWriter, r *http.Request, businessID string) bool {
	_, err := s.store.GetBusiness(r.Context(), businessID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "business not found")
		return false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load business")
		return false
	}
	return true
}
