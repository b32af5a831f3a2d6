package scoring

import (
	"sort"
	"strconv"
	"strings"

	"shadowcleaner/internal/domain/models"
)

var channelPlatform = map[models.Channel]string{
	models.ChannelTelegram: "Telegram",
	models.ChannelWhatsApp: "WhatsApp",
	models.ChannelSMS:      "SMS",
}

// GenerateRecommendations builds the cleanup plan for a scan. The result is
// ordered by priority only; items of equal priority keep generation order.
func GenerateRecommendations(exposures []models.ExposureReport, threats []models.ThreatDetection) []models.CleanupRecommendation {
	recs := make([]models.CleanupRecommendation, 0, len(exposures)+len(threats)+1)

	for _, e := range exposures {
		if e.TotalBreaches == 0 {
			continue
		}
		if e.Kind == models.ExposurePhone {
			recs = append(recs, phoneRecommendation(e))
		} else {
			recs = append(recs, emailRecommendation(e))
		}
	}

	for _, t := range threats {
		if t.Severity.AtLeast(models.SeverityHigh) {
			recs = append(recs, contactRecommendation(t))
		}
	}

	if len(threats) > 0 || len(exposures) > 0 {
		recs = append(recs, privacyRecommendation())
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})
	return recs
}

// escalate raises base to critical for high or critical exposures.
func escalate(base, severity models.Severity) models.Severity {
	if severity.AtLeast(models.SeverityHigh) {
		return models.SeverityCritical
	}
	return base
}

func emailRecommendation(e models.ExposureReport) models.CleanupRecommendation {
	return models.CleanupRecommendation{
		ID:            "rec-email-" + e.Value,
		Category:      models.CategorySecurity,
		Title:         "Change Password for Breached Account",
		Description:   "Your email was found in " + strconv.Itoa(e.TotalBreaches) + " data breach(es). Update your password immediately.",
		Priority:      escalate(models.SeverityHigh, e.Severity),
		Actionable:    true,
		EstimatedTime: "5 min",
		Steps: []string{
			"Change password for accounts using " + e.Value,
			"Use a unique, strong password (16+ characters)",
			"Enable two-factor authentication",
			"Check for unauthorized access in account activity",
		},
	}
}

func phoneRecommendation(e models.ExposureReport) models.CleanupRecommendation {
	return models.CleanupRecommendation{
		ID:            "rec-phone-" + e.Value,
		Category:      models.CategoryExposure,
		Title:         "Phone Number Exposed",
		Description:   "Your phone number was found in " + strconv.Itoa(e.TotalBreaches) + " leak(s). Consider changing it or enabling call filtering.",
		Priority:      escalate(models.SeverityMedium, e.Severity),
		Actionable:    true,
		EstimatedTime: "10 min",
		Steps: []string{
			"Enable call filtering on your device",
			"Register for Do Not Call lists",
			"Consider using a secondary number for online services",
			"Monitor for suspicious calls/texts",
		},
	}
}

func contactRecommendation(t models.ThreatDetection) models.CleanupRecommendation {
	priority := models.SeverityHigh
	if t.Severity == models.SeverityCritical {
		priority = models.SeverityCritical
	}
	platform, ok := channelPlatform[t.Channel]
	if !ok {
		platform = "Telegram"
	}
	return models.CleanupRecommendation{
		ID:            "rec-contact-" + t.ID,
		Category:      models.CategoryContact,
		Title:         "Block Suspicious Contact",
		Description:   strings.Replace("Contact '{name}' shows scam indicators. Consider blocking and reporting.", "{name}", t.ContactName, 1),
		Priority:      priority,
		Platform:      platform,
		Actionable:    true,
		EstimatedTime: "1 min",
		Steps: []string{
			"Block " + t.ContactName,
			"Report as spam/scam",
			"Delete conversation history",
			"Do not engage with similar contacts",
		},
	}
}

func privacyRecommendation() models.CleanupRecommendation {
	return models.CleanupRecommendation{
		ID:            "rec-privacy-telegram",
		Category:      models.CategoryPrivacy,
		Title:         "Tighten Telegram Privacy Settings",
		Description:   "Your account may be vulnerable to scammers. Secure your privacy settings to prevent future threats.",
		Priority:      models.SeverityMedium,
		Platform:      "Telegram",
		Actionable:    true,
		EstimatedTime: "5 min",
		Steps: []string{
			"Hide phone number from strangers",
			"Disable 'Last Seen' for non-contacts",
			"Restrict profile photo visibility",
			"Enable two-step verification",
		},
	}
}
