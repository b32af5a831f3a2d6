package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/history"
	"shadowcleaner/internal/domain/services/scan"
	"shadowcleaner/internal/domain/services/waitlist"
	"shadowcleaner/pkg/logger"
)

// maxBodyBytes bounds request bodies; contact exports are the largest input.
const maxBodyBytes = 2 << 20

// Scanner runs full scans
type Scanner interface {
	Scan(ctx context.Context, req models.ScanRequest) (models.ScanResponse, error)
}

// PasswordChecker runs the k-anonymity password lookup
type PasswordChecker interface {
	Check(ctx context.Context, password string) (models.PasswordExposure, error)
}

// MessageClassifier gives a never-failing opinion on one message
type MessageClassifier interface {
	Name() string
	Classify(ctx context.Context, req models.ClassificationRequest) models.ClassificationResult
}

// Pinger is a backend with a liveness check
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Scan     *ScanHandler
	Exposure *ExposureHandler
	Channels *ChannelsHandler
	Classify *ClassifyHandler
	History  *HistoryHandler
	Waitlist *WaitlistHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Version    string
	Scanner    Scanner
	Exposures  scan.ExposureChecker
	Passwords  PasswordChecker
	Classifier scan.ThreatClassifier
	Messages   MessageClassifier
	History    *history.Store
	Waitlist   *waitlist.Store
	Backends   map[string]Pinger
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Backends, deps.Logger),
		Scan:     NewScanHandler(deps.Scanner, deps.Logger),
		Exposure: NewExposureHandler(deps.Exposures, deps.Passwords, deps.Logger),
		Channels: NewChannelsHandler(deps.Classifier, deps.Logger),
		Classify: NewClassifyHandler(deps.Messages, deps.Logger),
		History:  NewHistoryHandler(deps.History, deps.Logger),
		Waitlist: NewWaitlistHandler(deps.Waitlist, deps.Logger),
	}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
