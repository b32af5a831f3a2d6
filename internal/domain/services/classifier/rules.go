package classifier

import (
	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/patterns"
)

var telegramRules = []Rule{
	{Set: patterns.Romance, MinMatches: 2, ThreatType: models.ThreatRomanceScam, Points: 40, Floor: models.SeverityHigh, Indicator: "Romance scam language detected"},
	{Set: patterns.Crypto, MinMatches: 2, ThreatType: models.ThreatCryptoScam, Points: 50, Floor: models.SeverityCritical, Indicator: "Cryptocurrency scam indicators"},
	{Set: patterns.Phishing, MinMatches: 2, ThreatType: models.ThreatPhishing, Points: 45, Floor: models.SeverityHigh, Indicator: "Phishing attempt detected"},
	{Set: patterns.GenericScam, MinMatches: 2, Points: 25, Indicator: "Suspicious keywords detected"},
	{Set: patterns.SuspiciousQuestions, MinMatches: 1, Points: 20, Indicator: "Suspicious probing questions"},
}

var whatsAppRules = []Rule{
	{Set: patterns.BusinessScam, MinMatches: 2, ThreatType: models.ThreatPhishing, Points: 50, Floor: models.SeverityHigh, Indicator: "Business impersonation detected"},
	{Set: patterns.FakeDelivery, MinMatches: 2, ThreatType: models.ThreatPhishing, Points: 45, Floor: models.SeverityHigh, Indicator: "Fake delivery scam"},
	{Set: patterns.Impersonation, MinMatches: 2, ThreatType: models.ThreatPhishing, Points: 60, Floor: models.SeverityCritical, Indicator: "WhatsApp impersonation"},
}

var smsRules = []Rule{
	{Set: patterns.BankScam, MinMatches: 3, ThreatType: models.ThreatPhishing, Points: 60, Floor: models.SeverityCritical, Indicator: "Bank phishing attempt"},
	{Set: patterns.DeliveryScam, MinMatches: 3, ThreatType: models.ThreatPhishing, Points: 50, Floor: models.SeverityHigh, Indicator: "Fake delivery notification"},
	{Set: patterns.TaxScam, MinMatches: 2, ThreatType: models.ThreatPhishing, Points: 55, Floor: models.SeverityCritical, Indicator: "Tax/IRS scam"},
	{Set: patterns.PrizeScam, MinMatches: 2, ThreatType: models.ThreatScam, Points: 40, Floor: models.SeverityMedium, Indicator: "Prize/lottery scam"},
}

// messageRules drive single-message classification, where the first
// matching rule wins.
var messageRules = []Rule{
	{Set: patterns.Crypto, MinMatches: 2, ThreatType: models.ThreatCryptoScam, Points: 50, Indicator: "Crypto scam language"},
	{Set: patterns.Romance, MinMatches: 2, ThreatType: models.ThreatRomanceScam, Points: 40, Indicator: "Romance scam patterns"},
	{Set: patterns.Phishing, MinMatches: 2, ThreatType: models.ThreatPhishing, Points: 45, Indicator: "Phishing indicators"},
	{Set: patterns.GenericScam, MinMatches: 2, ThreatType: models.ThreatScam, Points: 30, Indicator: "Generic scam keywords"},
	{Set: patterns.SuspiciousQuestions, MinMatches: 1, ThreatType: models.ThreatSpam, Points: 20, Indicator: "Suspicious questions"},
}

// Rules returns a copy of the rule table used for a channel.
func Rules(channel models.Channel) []Rule {
	var src []Rule
	switch channel {
	case models.ChannelTelegram:
		src = telegramRules
	case models.ChannelWhatsApp:
		src = whatsAppRules
	case models.ChannelSMS:
		src = smsRules
	}
	return append([]Rule(nil), src...)
}
