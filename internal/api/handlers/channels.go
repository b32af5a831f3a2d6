package handlers

import (
	"net/http"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/scan"
	"shadowcleaner/pkg/logger"
)

// ChannelsHandler classifies a single input channel
type ChannelsHandler struct {
	classifier scan.ThreatClassifier
	logger     *logger.Logger
}

// NewChannelsHandler creates a new channels handler
func NewChannelsHandler(classifier scan.ThreatClassifier, log *logger.Logger) *ChannelsHandler {
	return &ChannelsHandler{
		classifier: classifier,
		logger:     log.WithComponent("channels-handler"),
	}
}

// TelegramRequest is the body of POST /api/v1/telegram
type TelegramRequest struct {
	Contacts []models.TelegramContact `json:"contacts"`
}

// WhatsAppRequest is the body of POST /api/v1/whatsapp
type WhatsAppRequest struct {
	Contacts []models.WhatsAppContact `json:"contacts"`
}

// SMSRequest is the body of POST /api/v1/sms
type SMSRequest struct {
	Messages []models.SMSMessage `json:"messages"`
}

// Telegram handles POST /api/v1/telegram
func (h *ChannelsHandler) Telegram(w http.ResponseWriter, r *http.Request) {
	var req TelegramRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Contacts) == 0 {
		respondError(w, http.StatusBadRequest, "contacts array is required and must not be empty")
		return
	}

	threats := h.classifier.ClassifyTelegram(r.Context(), req.Contacts)
	respondJSON(w, http.StatusOK, models.NewChannelScanResponse(len(req.Contacts), threats))
}

// WhatsApp handles POST /api/v1/whatsapp
func (h *ChannelsHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	var req WhatsAppRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Contacts) == 0 {
		respondError(w, http.StatusBadRequest, "contacts array is required and must not be empty")
		return
	}

	threats := h.classifier.ClassifyWhatsApp(r.Context(), req.Contacts)
	respondJSON(w, http.StatusOK, models.NewChannelScanResponse(len(req.Contacts), threats))
}

// SMS handles POST /api/v1/sms
func (h *ChannelsHandler) SMS(w http.ResponseWriter, r *http.Request) {
	var req SMSRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages array is required and must not be empty")
		return
	}

	threats := h.classifier.ClassifySMS(r.Context(), req.Messages)
	respondJSON(w, http.StatusOK, models.NewChannelScanResponse(len(req.Messages), threats))
}
