package models

import "time"

// ConfidenceFloor is the minimum confidence for a detection to be emitted.
const ConfidenceFloor = 0.30

// ThreatType categorizes a detection
type ThreatType string

const (
	ThreatScam        ThreatType = "scam"
	ThreatPhishing    ThreatType = "phishing"
	ThreatSpam        ThreatType = "spam"
	ThreatRomanceScam ThreatType = "romance_scam"
	ThreatCryptoScam  ThreatType = "crypto_scam"
	ThreatFakeProfile ThreatType = "fake_profile"
)

// Channel is the messaging surface an input came from
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// ThreatDetection is one contact or message judged suspicious.
type ThreatDetection struct {
	ID             string     `json:"id"`
	ContactID      string     `json:"contactId,omitempty"`
	ContactName    string     `json:"contactName"`
	Channel        Channel    `json:"channel,omitempty"`
	ThreatType     ThreatType `json:"threatType"`
	Severity       Severity   `json:"severity"`
	Confidence     float64    `json:"confidence"`
	Indicators     []string   `json:"indicators"`
	Message        string     `json:"message,omitempty"`
	DetectedAt     time.Time  `json:"detectedAt"`
	Recommendation string     `json:"recommendation"`
}

// TelegramContact is a contact exported from Telegram. Optional numeric and
// boolean fields are pointers so that "absent" differs from zero.
type TelegramContact struct {
	ID           string `json:"id,omitempty"`
	Username     string `json:"username,omitempty"`
	Phone        string `json:"phone,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	LastMessage  string `json:"lastMessage,omitempty"`
	AccountAge   *int   `json:"accountAge,omitempty"` // days since account creation
	MessageCount int    `json:"messageCount,omitempty"`
	IsVerified   *bool  `json:"isVerified,omitempty"`
}

// WhatsAppContact is a contact exported from WhatsApp
type WhatsAppContact struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name,omitempty"`
	Phone             string `json:"phone,omitempty"`
	LastMessage       string `json:"lastMessage,omitempty"`
	IsBusinessAccount bool   `json:"isBusinessAccount,omitempty"`
	IsVerified        bool   `json:"isVerified,omitempty"`
	ProfilePicture    bool   `json:"profilePicture,omitempty"`
	MessageCount      int    `json:"messageCount,omitempty"`
}

// SMSMessage is a single received text message
type SMSMessage struct {
	ID        string     `json:"id,omitempty"`
	Sender    string     `json:"sender"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	HasLinks  bool       `json:"hasLinks,omitempty"`
}

// CountBySeverity returns how many threats have one of the given severities.
func CountBySeverity(threats []ThreatDetection, severities ...Severity) int {
	n := 0
	for _, t := range threats {
		for _, s := range severities {
			if t.Severity == s {
				n++
				break
			}
		}
	}
	return n
}
