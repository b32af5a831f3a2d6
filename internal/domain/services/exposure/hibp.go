package exposure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// HIBPConfig holds configuration for the Have I Been Pwned client
type HIBPConfig struct {
	APIKey    string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// HIBPProvider looks up breached accounts in Have I Been Pwned
type HIBPProvider struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHIBPProvider creates a new HIBP API client
func NewHIBPProvider(cfg HIBPConfig, log *logger.Logger) *HIBPProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://haveibeenpwned.com/api/v3"
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Stagbyte-Shadow-Cleaner"
	}

	return &HIBPProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("hibp-client"),
	}
}

// Name identifies the provider in logs and cache keys.
func (p *HIBPProvider) Name() string { return "hibp" }

// Lookup implements BreachProvider. HIBP only indexes accounts by email, so
// phone lookups report no breaches.
func (p *HIBPProvider) Lookup(ctx context.Context, kind models.ExposureKind, value string) ([]models.Breach, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if kind != models.ExposureEmail {
		p.logger.Debug().Str("kind", string(kind)).Msg("lookup kind not supported by HIBP")
		return []models.Breach{}, nil
	}

	reqURL := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false", p.baseURL, url.PathEscape(value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("hibp-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v: %w", err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	// 404 means the account is not in any breach.
	if resp.StatusCode == http.StatusNotFound {
		return []models.Breach{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(p.Name(), resp.StatusCode)
	}

	var hibpBreaches []hibpBreachResponse
	if err := json.NewDecoder(resp.Body).Decode(&hibpBreaches); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v: %w", err, ErrProviderUnavailable)
	}

	breaches := make([]models.Breach, len(hibpBreaches))
	for i, hb := range hibpBreaches {
		breaches[i] = hb.toBreach()
	}
	return breaches, nil
}

// hibpBreachResponse is the HIBP v3 breach DTO
type hibpBreachResponse struct {
	Name         string   `json:"Name"`
	Title        string   `json:"Title"`
	Domain       string   `json:"Domain"`
	BreachDate   string   `json:"BreachDate"`
	AddedDate    string   `json:"AddedDate"`
	ModifiedDate string   `json:"ModifiedDate"`
	PwnCount     int64    `json:"PwnCount"`
	Description  string   `json:"Description"`
	LogoPath     string   `json:"LogoPath"`
	DataClasses  []string `json:"DataClasses"`
	IsVerified   bool     `json:"IsVerified"`
	IsFabricated bool     `json:"IsFabricated"`
	IsSensitive  bool     `json:"IsSensitive"`
	IsRetired    bool     `json:"IsRetired"`
	IsSpamList   bool     `json:"IsSpamList"`
}

func (hb hibpBreachResponse) toBreach() models.Breach {
	classes := hb.DataClasses
	if len(classes) == 0 {
		classes = []string{models.ExposureEmail.DefaultDataClass()}
	}
	name := hb.Name
	if name == "" {
		name = "Unknown Breach"
	}
	title := hb.Title
	if title == "" {
		title = "Data Breach"
	}
	return models.Breach{
		Name:         name,
		Title:        title,
		Domain:       hb.Domain,
		BreachDate:   hb.BreachDate,
		AddedDate:    hb.AddedDate,
		ModifiedDate: hb.ModifiedDate,
		PwnCount:     hb.PwnCount,
		Description:  hb.Description,
		DataClasses:  classes,
		IsVerified:   hb.IsVerified,
		IsFabricated: hb.IsFabricated,
		IsSensitive:  hb.IsSensitive,
		IsRetired:    hb.IsRetired,
		IsSpamList:   hb.IsSpamList,
		LogoPath:     hb.LogoPath,
	}
}
