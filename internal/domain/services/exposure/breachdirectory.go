package exposure

import (
	"bytes"
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

// BreachDirectoryConfig configures the RapidAPI hosted BreachDirectory client
type BreachDirectoryConfig struct {
	APIKey    string
	Host      string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// BreachDirectoryProvider queries BreachDirectory through RapidAPI
type BreachDirectoryProvider struct {
	cfg        BreachDirectoryConfig
	httpClient *http.Client
	now        func() time.Time
	logger     *logger.Logger
}

// NewBreachDirectoryProvider creates a BreachDirectory client
func NewBreachDirectoryProvider(cfg BreachDirectoryConfig, log *logger.Logger) *BreachDirectoryProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Host == "" {
		cfg.Host = "breachdirectory.p.rapidapi.com"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	return &BreachDirectoryProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		logger:     log.WithComponent("breachdirectory"),
	}
}

// Name identifies the provider in logs and cache keys.
func (p *BreachDirectoryProvider) Name() string { return "breachdirectory" }

// Lookup implements BreachProvider.
func (p *BreachDirectoryProvider) Lookup(ctx context.Context, kind models.ExposureKind, value string) ([]models.Breach, error) {
	if p.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	reqURL := fmt.Sprintf("%s/?func=auto&term=%s", strings.TrimRight(p.cfg.BaseURL, "/"), url.QueryEscape(value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", p.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", p.cfg.Host)
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v: %w", err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(p.Name(), resp.StatusCode)
	}

	var body breachDirectoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v: %w", err, ErrProviderUnavailable)
	}

	if !body.Found || len(body.Result) == 0 {
		return []models.Breach{}, nil
	}

	now := p.now().UTC().Format(time.RFC3339)
	breaches := make([]models.Breach, 0, len(body.Result))
	for _, item := range body.Result {
		breaches = append(breaches, item.toBreach(kind, now))
	}
	return breaches, nil
}

// breachDirectoryResponse is the provider DTO. "found" arrives as either a
// boolean or a hit count depending on the endpoint revision.
type breachDirectoryResponse struct {
	Success bool                  `json:"success"`
	Found   truthy                `json:"found"`
	Result  []breachDirectoryItem `json:"result"`
}

type breachDirectoryItem struct {
	Source  string       `json:"source"`
	Sources stringOrList `json:"sources"`
	Date    string       `json:"date"`
	Has     []string     `json:"has"`
}

func (i breachDirectoryItem) toBreach(kind models.ExposureKind, now string) models.Breach {
	source := i.Source
	if source == "" && len(i.Sources) > 0 {
		source = i.Sources[0]
	}

	name, title := source, source
	if source == "" {
		name, title = "Unknown Breach", "Data Breach"
	}

	date := i.Date
	if date == "" {
		date = now
	}

	classes := i.Has
	described := "Unknown"
	if len(classes) > 0 {
		described = strings.Join(classes, ", ")
	} else {
		classes = []string{kind.DefaultDataClass()}
	}

	return models.Breach{
		Name:         name,
		Title:        title,
		BreachDate:   date,
		AddedDate:    i.Date,
		ModifiedDate: i.Date,
		Description:  "Data exposed: " + described,
		DataClasses:  classes,
		IsVerified:   true,
		IsSensitive:  true,
	}
}

// truthy decodes JSON booleans, numbers and strings into a bool the way a
// loosely typed client would.
type truthy bool

func (t *truthy) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*t = false
	case bytes.Equal(data, []byte("true")):
		*t = true
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = truthy(s != "")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = truthy(n != 0)
	}
	return nil
}

// stringOrList accepts either "a" or ["a", "b"].
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*s = stringOrList{one}
	return nil
}
