package models

import (
	"sort"
	"strings"
	"time"
)

// ExposureKind identifies which identifier an exposure report covers
type ExposureKind string

const (
	ExposureEmail ExposureKind = "email"
	ExposurePhone ExposureKind = "phone"
)

// PenaltyPerBreach is the per-breach deduction used to derive the raw
// exposure score for a kind.
func (k ExposureKind) PenaltyPerBreach() int {
	if k == ExposurePhone {
		return 20
	}
	return 15
}

// DefaultDataClass is the data class assumed when a provider omits one.
func (k ExposureKind) DefaultDataClass() string {
	if k == ExposurePhone {
		return "Phone numbers"
	}
	return "Email addresses"
}

// Breach is one canonical exposure record. Provider specific shapes are
// converted into it at the provider boundary.
type Breach struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Domain       string   `json:"domain,omitempty"`
	BreachDate   string   `json:"breachDate"`
	AddedDate    string   `json:"addedDate,omitempty"`
	ModifiedDate string   `json:"modifiedDate,omitempty"`
	PwnCount     int64    `json:"pwnCount,omitempty"`
	Description  string   `json:"description,omitempty"`
	DataClasses  []string `json:"dataClasses"`
	IsVerified   bool     `json:"isVerified"`
	IsFabricated bool     `json:"isFabricated"`
	IsSensitive  bool     `json:"isSensitive"`
	IsRetired    bool     `json:"isRetired"`
	IsSpamList   bool     `json:"isSpamList"`
	LogoPath     string   `json:"logoPath,omitempty"`
}

// HasDataClass reports whether the breach exposed the named class (case-insensitive).
func (b Breach) HasDataClass(class string) bool {
	for _, dc := range b.DataClasses {
		if strings.EqualFold(dc, class) {
			return true
		}
	}
	return false
}

// ExposureReport is the result of checking one identifier.
type ExposureReport struct {
	Kind          ExposureKind `json:"type"`
	Value         string       `json:"value"`
	Breaches      []Breach     `json:"breaches"`
	TotalBreaches int          `json:"totalBreaches"`
	Severity      Severity     `json:"severity"`
	FirstSeen     *time.Time   `json:"firstSeen,omitempty"`
	LastSeen      *time.Time   `json:"lastSeen,omitempty"`
	Region        string       `json:"region,omitempty"`
}

// NewExposureReport builds a report whose totals, severity and date range
// are all derived from breaches.
func NewExposureReport(kind ExposureKind, value string, breaches []Breach) *ExposureReport {
	r := &ExposureReport{Kind: kind, Value: value}
	r.SetBreaches(breaches)
	return r
}

// SetBreaches replaces the breach list and recomputes every derived field.
func (r *ExposureReport) SetBreaches(breaches []Breach) {
	if breaches == nil {
		breaches = []Breach{}
	}
	r.Breaches = breaches
	r.TotalBreaches = len(breaches)
	r.Severity = ExposureSeverity(r.Kind, r.TotalBreaches)
	r.FirstSeen, r.LastSeen = breachDateRange(breaches)
}

// ExposureSeverity derives the severity band for n breaches of the given kind.
func ExposureSeverity(kind ExposureKind, n int) Severity {
	return SeverityForBreaches(n, 100-n*kind.PenaltyPerBreach())
}

// SeverityForBreaches applies the ORed count/score thresholds. Either
// condition alone is enough to reach a band.
func SeverityForBreaches(count, rawScore int) Severity {
	switch {
	case count >= 10 || rawScore <= 30:
		return SeverityCritical
	case count >= 5 || rawScore <= 50:
		return SeverityHigh
	case count >= 3 || rawScore <= 70:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

var breachDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseBreachDate accepts the date shapes seen from breach providers.
func ParseBreachDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range breachDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func breachDateRange(breaches []Breach) (*time.Time, *time.Time) {
	dates := make([]time.Time, 0, len(breaches))
	for _, b := range breaches {
		if t, ok := ParseBreachDate(b.BreachDate); ok {
			dates = append(dates, t)
		}
	}
	if len(dates) == 0 {
		return nil, nil
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	first, last := dates[0], dates[len(dates)-1]
	return &first, &last
}

// PasswordExposure is the outcome of a k-anonymity password lookup.
type PasswordExposure struct {
	IsExposed     bool `json:"isExposed"`
	ExposureCount int  `json:"exposureCount"`
}
