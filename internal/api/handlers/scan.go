package handlers

import (
	"errors"
	"net/http"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/pkg/logger"
)

const (
	msgEmptyScan   = "At least one input is required"
	msgRateLimited = "Rate limited. Please wait 2 seconds before trying again."
)

// ScanHandler handles full scans
type ScanHandler struct {
	scanner Scanner
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanner Scanner, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: scanner,
		logger:  log.WithComponent("scan-handler"),
	}
}

// Scan handles POST /api/v1/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.scanner.Scan(r.Context(), req)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, resp)
	case errors.Is(err, models.ErrEmptyScanRequest):
		respondError(w, http.StatusBadRequest, msgEmptyScan)
	case errors.Is(err, exposure.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, msgRateLimited)
	default:
		h.logger.WithError(err).Error().Msg("scan failed")
		respondError(w, http.StatusInternalServerError, "Failed to complete scan. Please try again.")
	}
}

// EndpointInfo describes a POST endpoint for GET callers
type EndpointInfo struct {
	Endpoint        string   `json:"endpoint"`
	Method          string   `json:"method"`
	Description     string   `json:"description"`
	SupportedInputs []string `json:"supportedInputs"`
	Example         any      `json:"example,omitempty"`
}

// Info handles GET /api/v1/scan
func (h *ScanHandler) Info(w http.ResponseWriter, r *http.Request) {
	age := 5
	respondJSON(w, http.StatusOK, EndpointInfo{
		Endpoint:    "/api/v1/scan",
		Method:      http.MethodPost,
		Description: "Comprehensive Shadow Cleaner scan for digital exposures and threats",
		SupportedInputs: []string{
			"email", "phone", "telegramContacts", "whatsappContacts", "smsMessages", "checkDarkWeb",
		},
		Example: models.ScanRequest{
			Email: "user@example.com",
			Phone: "+1234567890",
			TelegramContacts: []models.TelegramContact{{
				Username:    "suspicious_user",
				LastMessage: "Hello, I have investment opportunity",
				AccountAge:  &age,
			}},
			WhatsAppContacts: []models.WhatsAppContact{{
				Name:              "Unknown Business",
				IsBusinessAccount: true,
				LastMessage:       "Your account will be suspended",
			}},
			SMSMessages: []models.SMSMessage{{
				Sender:   "12345",
				Message:  "Your bank account has been locked. Click here to verify.",
				HasLinks: true,
			}},
			CheckDarkWeb: true,
		},
	})
}
