package classifier

import "shadowcleaner/internal/domain/models"

type adviceTable struct {
	texts          map[models.ThreatType]string
	fallback       models.ThreatType
	criticalBanner string
	highBanner     string
}

var telegramAdvice = adviceTable{
	texts: map[models.ThreatType]string{
		models.ThreatRomanceScam: "Block immediately. Romance scammers build trust before requesting money. Never send money to online contacts.",
		models.ThreatCryptoScam:  "Block and report. Cryptocurrency scams promise unrealistic returns. Never share wallet info or invest based on unsolicited messages.",
		models.ThreatPhishing:    "Do not click any links. Block and delete. Phishing attempts steal credentials. Verify requests through official channels.",
		models.ThreatFakeProfile: "Block this contact. Fake profiles are used for various scams. Report to Telegram.",
		models.ThreatSpam:        "Block to reduce spam. Report if messages continue.",
		models.ThreatScam:        "Block immediately and report. Do not engage or provide personal information.",
	},
	fallback:       models.ThreatScam,
	criticalBanner: "🚨 CRITICAL: ",
	highBanner:     "⚠️ HIGH RISK: ",
}

var whatsAppAdvice = adviceTable{
	texts: map[models.ThreatType]string{
		models.ThreatPhishing:    "Block and report to WhatsApp. Do not click any links or provide personal information.",
		models.ThreatFakeProfile: "Verify business authenticity through official channels. Block if suspicious.",
		models.ThreatSpam:        "Block contact and report as spam to WhatsApp.",
	},
	fallback:       models.ThreatSpam,
	criticalBanner: "🚨 CRITICAL: ",
	highBanner:     "⚠️ HIGH RISK: ",
}

var smsAdvice = adviceTable{
	texts: map[models.ThreatType]string{
		models.ThreatPhishing: "Delete immediately. Do NOT click any links. Report to your carrier as spam. Never provide personal or financial information via SMS.",
		models.ThreatScam:     "Delete and block sender. Report to FTC at reportfraud.ftc.gov. Legitimate companies don't ask for sensitive info via text.",
		models.ThreatSpam:     "Block sender and report as spam to your carrier.",
	},
	fallback:       models.ThreatSpam,
	criticalBanner: "🚨 CRITICAL THREAT: ",
	highBanner:     "⚠️ HIGH RISK: ",
}

func (a adviceTable) lookup(t models.ThreatType, s models.Severity) string {
	text, ok := a.texts[t]
	if !ok {
		text = a.texts[a.fallback]
	}
	switch s {
	case models.SeverityCritical:
		return a.criticalBanner + text
	case models.SeverityHigh:
		return a.highBanner + text
	default:
		return text
	}
}

func adviceFor(channel models.Channel) adviceTable {
	switch channel {
	case models.ChannelWhatsApp:
		return whatsAppAdvice
	case models.ChannelSMS:
		return smsAdvice
	default:
		return telegramAdvice
	}
}

// Recommendation returns the severity-prefixed remediation text for a
// detection on the given channel.
func Recommendation(channel models.Channel, t models.ThreatType, s models.Severity) string {
	return adviceFor(channel).lookup(t, s)
}
