package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/history"
	"shadowcleaner/pkg/logger"
)

// HistoryHandler serves saved scans
type HistoryHandler struct {
	store  *history.Store
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(store *history.Store, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  store,
		logger: log.WithComponent("history-handler"),
	}
}

// HistoryListResponse is the reply of GET /api/v1/history
type HistoryListResponse struct {
	Entries    []models.ScanHistoryEntry `json:"entries"`
	Total      int                       `json:"total"`
	MaxEntries int                       `json:"maxEntries"`
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list history")
		respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	respondJSON(w, http.StatusOK, HistoryListResponse{
		Entries:    entries,
		Total:      len(entries),
		MaxEntries: h.store.MaxEntries(),
	})
}

// Get handles GET /api/v1/history/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Compare handles GET /api/v1/history/{id}/compare
func (h *HistoryHandler) Compare(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}
	cmp, err := h.store.Compare(r.Context(), entry)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compare scans")
		respondError(w, http.StatusInternalServerError, "failed to compare scans")
		return
	}
	respondJSON(w, http.StatusOK, cmp)
}

// Export handles GET /api/v1/history/{id}/export?format=json|text|markdown
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var (
		contentType, ext string
		body             []byte
	)
	switch format {
	case "json", "text", "markdown":
	default:
		respondError(w, http.StatusBadRequest, "format must be json, text or markdown")
		return
	}

	entry, ok := h.load(w, r)
	if !ok {
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="shadow-scan-%s.json"`, entry.ID))
		respondJSON(w, http.StatusOK, entry)
		return
	case "text":
		contentType, ext = "text/plain; charset=utf-8", "txt"
		body = []byte(history.ExportText(entry))
	case "markdown":
		var buf bytes.Buffer
		if err := history.ExportMarkdown(&buf, entry); err != nil {
			h.logger.Error().Err(err).Msg("failed to render markdown report")
			respondError(w, http.StatusInternalServerError, "failed to export scan")
			return
		}
		contentType, ext = "text/markdown; charset=utf-8", "md"
		body = buf.Bytes()
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="shadow-scan-%s.%s"`, entry.ID, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Delete handles DELETE /api/v1/history/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, history.ErrNotFound):
		respondError(w, http.StatusNotFound, "scan not found")
	default:
		h.logger.Error().Err(err).Msg("failed to delete scan")
		respondError(w, http.StatusInternalServerError, "failed to delete scan")
	}
}

// Clear handles DELETE /api/v1/history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to clear history")
		respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the entry named by the id URL parameter, writing the error
// reply itself when it cannot.
func (h *HistoryHandler) load(w http.ResponseWriter, r *http.Request) (models.ScanHistoryEntry, bool) {
	entry, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		return entry, true
	case errors.Is(err, history.ErrNotFound):
		respondError(w, http.StatusNotFound, "scan not found")
	default:
		h.logger.Error().Err(err).Msg("failed to load scan")
		respondError(w, http.StatusInternalServerError, "failed to load scan")
	}
	return models.ScanHistoryEntry{}, false
}
