package handlers

import (
	"errors"
	"net/http"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/waitlist"
	"shadowcleaner/pkg/logger"
)

// WaitlistHandler handles early-access sign-ups
type WaitlistHandler struct {
	store  *waitlist.Store
	logger *logger.Logger
}

// NewWaitlistHandler creates a new waitlist handler
func NewWaitlistHandler(store *waitlist.Store, log *logger.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		store:  store,
		logger: log.WithComponent("waitlist-handler"),
	}
}

// WaitlistRequest is the body of POST /api/v1/waitlist
type WaitlistRequest struct {
	Email  string                `json:"email"`
	Source models.WaitlistSource `json:"source,omitempty"`
}

// WaitlistStats is the reply of GET /api/v1/waitlist
type WaitlistStats struct {
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Join handles POST /api/v1/waitlist
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req WaitlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.store.Join(r.Context(), req.Email, req.Source)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, result)
	case errors.Is(err, waitlist.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, "Valid email is required")
	case errors.Is(err, waitlist.ErrInvalidSource):
		respondError(w, http.StatusBadRequest, "source must be homepage, shadow-cleaner or post-scan")
	default:
		h.logger.Error().Err(err).Msg("failed to join waitlist")
		respondError(w, http.StatusInternalServerError, "Failed to join waitlist")
	}
}

// Stats handles GET /api/v1/waitlist
func (h *WaitlistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.Total(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count waitlist")
		respondError(w, http.StatusInternalServerError, "failed to count waitlist")
		return
	}
	respondJSON(w, http.StatusOK, WaitlistStats{
		Total:   total,
		Message: "Shadow Cleaner Early Access Waitlist",
	})
}
