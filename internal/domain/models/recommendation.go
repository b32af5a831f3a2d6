package models

// RecommendationCategory groups remediation items
type RecommendationCategory string

const (
	CategoryPrivacy  RecommendationCategory = "privacy"
	CategorySecurity RecommendationCategory = "security"
	CategoryExposure RecommendationCategory = "exposure"
	CategoryContact  RecommendationCategory = "contact"
)

// CleanupRecommendation is one actionable remediation item. Completed is
// toggled by the user and never recomputed.
type CleanupRecommendation struct {
	ID            string                 `json:"id"`
	Category      RecommendationCategory `json:"category"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Priority      Severity               `json:"priority"`
	Platform      string                 `json:"platform,omitempty"`
	Actionable    bool                   `json:"actionable"`
	EstimatedTime string                 `json:"estimatedTime,omitempty"`
	Steps         []string               `json:"steps"`
	Completed     bool                   `json:"completed"`
}
