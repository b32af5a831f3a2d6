package handlers

import (
	"net/http"
	"strings"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/ai"
	"shadowcleaner/pkg/logger"
)

// ClassifyHandler classifies free-form messages
type ClassifyHandler struct {
	classifier MessageClassifier
	logger     *logger.Logger
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(classifier MessageClassifier, log *logger.Logger) *ClassifyHandler {
	return &ClassifyHandler{
		classifier: classifier,
		logger:     log.WithComponent("classify-handler"),
	}
}

// ClassifyResponse is the reply of POST /api/v1/classify
type ClassifyResponse struct {
	models.ClassificationResult
	ThreatScore int    `json:"threatScore"`
	Classifier  string `json:"classifier"`
}

// Classify handles POST /api/v1/classify
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req models.ClassificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.classifier.Classify(r.Context(), req)
	respondJSON(w, http.StatusOK, ClassifyResponse{
		ClassificationResult: result,
		ThreatScore:          ai.ThreatScore(result),
		Classifier:           h.classifier.Name(),
	})
}
