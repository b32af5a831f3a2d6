package models

// Classification is the label an AI classifier assigns to a message
type Classification string

const (
	ClassLegitimate  Classification = "legitimate"
	ClassSpam        Classification = "spam"
	ClassPhishing    Classification = "phishing"
	ClassRomanceScam Classification = "romance_scam"
	ClassCryptoScam  Classification = "crypto_scam"
	ClassFakeProfile Classification = "fake_profile"
)

var classificationThreat = map[Classification]ThreatType{
	ClassSpam:        ThreatSpam,
	ClassPhishing:    ThreatPhishing,
	ClassRomanceScam: ThreatRomanceScam,
	ClassCryptoScam:  ThreatCryptoScam,
	ClassFakeProfile: ThreatFakeProfile,
}

// IsValid reports whether c is one of the six known labels.
func (c Classification) IsValid() bool {
	if c == ClassLegitimate {
		return true
	}
	_, ok := classificationThreat[c]
	return ok
}

// ThreatType maps a label onto a threat type. Legitimate has none.
func (c Classification) ThreatType() (ThreatType, bool) {
	t, ok := classificationThreat[c]
	return t, ok
}

// ClassificationContext carries optional facts about the sender.
type ClassificationContext struct {
	SenderName       string   `json:"senderName,omitempty"`
	AccountAge       *int     `json:"accountAge,omitempty"`
	PreviousMessages []string `json:"previousMessages,omitempty"`
}

// ClassificationRequest is one message to classify.
type ClassificationRequest struct {
	Message string                 `json:"message"`
	Context *ClassificationContext `json:"context,omitempty"`
}

// ClassificationResult is the normalized classifier output.
type ClassificationResult struct {
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Indicators     []string       `json:"indicators"`
	Reasoning      string         `json:"reasoning"`
	// Degraded marks a default produced because no classifier answered.
	Degraded       bool           `json:"degraded,omitempty"`
}
