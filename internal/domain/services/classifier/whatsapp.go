package classifier

import (
	"context"
	"strings"

	"shadowcleaner/internal/domain/models"
)

// ClassifyWhatsApp analyzes WhatsApp contacts for impersonation and scam patterns.
func (c *Classifier) ClassifyWhatsApp(ctx context.Context, contacts []models.WhatsAppContact) []models.ThreatDetection {
	threats := []models.ThreatDetection{}
	for _, contact := range contacts {
		if ctx.Err() != nil {
			break
		}
		v := whatsAppVerdict(contact)
		if !v.emits() {
			continue
		}
		name := firstNonEmpty(contact.Name, contact.Phone)
		if name == "" {
			name = unknownContact
		}
		threats = append(threats, c.materialize(models.ChannelWhatsApp, v, contact.ID, name, contact.LastMessage))
	}

	c.logger.Debug().
		Int("contacts", len(contacts)).
		Int("threats", len(threats)).
		Msg("whatsapp contacts classified")

	return threats
}

func whatsAppVerdict(contact models.WhatsAppContact) verdict {
	v := newVerdict()

	if contact.IsBusinessAccount && !contact.IsVerified {
		v = v.retype(models.ThreatFakeProfile, models.SeverityMedium).add(30, "Unverified business account")
	}
	v = v.addIf(!contact.ProfilePicture, 15, "No profile picture")

	if contact.LastMessage != "" {
		v = v.applyAll(whatsAppRules, strings.ToLower(contact.LastMessage))
	}
	return v
}
