package handlers

import (
	"errors"
	"net/http"
	"strings"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/internal/domain/services/scan"
	"shadowcleaner/pkg/logger"
)

// ExposureHandler handles breach and password lookups
type ExposureHandler struct {
	exposures scan.ExposureChecker
	passwords PasswordChecker
	logger    *logger.Logger
}

// NewExposureHandler creates a new exposure handler
func NewExposureHandler(exposures scan.ExposureChecker, passwords PasswordChecker, log *logger.Logger) *ExposureHandler {
	return &ExposureHandler{
		exposures: exposures,
		passwords: passwords,
		logger:    log.WithComponent("exposure-handler"),
	}
}

// ExposureRequest is the body of POST /api/v1/exposure
type ExposureRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ExposureResponse is the reply of POST /api/v1/exposure
type ExposureResponse struct {
	Exposures     []models.ExposureReport `json:"exposures"`
	TotalBreaches int                     `json:"totalBreaches"`
	Severity      models.Severity         `json:"severity"`
}

// Check handles POST /api/v1/exposure
func (h *ExposureHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req ExposureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email, phone := strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		respondError(w, http.StatusBadRequest, "At least one of email or phone is required")
		return
	}

	reports := []models.ExposureReport{}
	add := func(report *models.ExposureReport, err error) bool {
		if err != nil {
			if errors.Is(err, exposure.ErrRateLimited) {
				respondError(w, http.StatusTooManyRequests, msgRateLimited)
			} else {
				h.logger.Error().Err(err).Msg("exposure check failed")
				respondError(w, http.StatusInternalServerError, "Failed to check exposures")
			}
			return false
		}
		if report != nil {
			reports = append(reports, *report)
		}
		return true
	}

	if email != "" && !add(h.exposures.CheckEmail(r.Context(), email)) {
		return
	}
	if phone != "" && !add(h.exposures.CheckPhone(r.Context(), phone)) {
		return
	}

	summary := exposure.Summarize(reports)
	respondJSON(w, http.StatusOK, ExposureResponse{
		Exposures:     reports,
		TotalBreaches: summary.TotalBreaches,
		Severity:      summary.OverallSeverity,
	})
}

// PasswordRequest is the body of POST /api/v1/password
type PasswordRequest struct {
	Password string `json:"password"`
}

// Password handles POST /api/v1/password. The password is never logged; a
// failed lookup is reported as not exposed.
func (h *ExposureHandler) Password(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "password is required")
		return
	}

	result, err := h.passwords.Check(r.Context(), req.Password)
	if err != nil {
		h.logger.Warn().Err(err).Msg("password exposure check failed")
	}
	respondJSON(w, http.StatusOK, result)
}
