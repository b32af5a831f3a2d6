package exposure

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// PasswordConfig configures the Pwned Passwords range client
type PasswordConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// PasswordChecker checks passwords with the k-anonymity range API. Only the
// first five hex characters of the SHA-1 digest leave the process.
type PasswordChecker struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewPasswordChecker creates a password range client
func NewPasswordChecker(cfg PasswordConfig, log *logger.Logger) *PasswordChecker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.pwnedpasswords.com"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ShadowCleaner/1.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &PasswordChecker{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.WithComponent("password-checker"),
	}
}

// Check reports whether password appears in known breach corpora. On any
// failure it returns a not-exposed result together with the error.
func (c *PasswordChecker) Check(ctx context.Context, password string) (models.PasswordExposure, error) {
	sum := sha1.Sum([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:5], hash[5:]

	count, err := c.queryRange(ctx, prefix, suffix)
	if err != nil {
		c.logger.Error().Err(err).Msg("password exposure check failed")
		return models.PasswordExposure{}, err
	}

	return models.PasswordExposure{IsExposed: count > 0, ExposureCount: count}, nil
}

func (c *PasswordChecker) queryRange(ctx context.Context, prefix, suffix string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Add-Padding", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %v: %w", err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError("pwnedpasswords", resp.StatusCode)
	}

	return matchSuffix(bufio.NewScanner(resp.Body), suffix)
}

// matchSuffix scans "SUFFIX:COUNT" lines. Padding entries carry a zero
// count and therefore never match as exposed.
func matchSuffix(sc *bufio.Scanner, suffix string) (int, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		hashSuffix, countStr, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(hashSuffix, suffix) {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return 0, fmt.Errorf("malformed range entry: %w", err)
		}
		return count, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to read range response: %w", err)
	}
	return 0, nil
}
