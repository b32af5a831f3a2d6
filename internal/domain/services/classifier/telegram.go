package classifier

import (
	"context"
	"fmt"
	"strings"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/patterns"
)

// ClassifyTelegram analyzes Telegram contacts for scam indicators.
func (c *Classifier) ClassifyTelegram(ctx context.Context, contacts []models.TelegramContact) []models.ThreatDetection {
	threats := []models.ThreatDetection{}
	for _, contact := range contacts {
		if ctx.Err() != nil {
			break
		}
		v := telegramVerdict(contact)
		if !v.emits() {
			continue
		}
		threats = append(threats, c.materialize(models.ChannelTelegram, v, contact.ID, telegramContactName(contact), contact.LastMessage))
	}

	c.logger.Debug().
		Int("contacts", len(contacts)).
		Int("threats", len(threats)).
		Msg("telegram contacts classified")

	return threats
}

func telegramVerdict(contact models.TelegramContact) verdict {
	v := newVerdict()

	if contact.AccountAge != nil && *contact.AccountAge < patterns.NewAccountThresholdDays {
		v = v.add(20, fmt.Sprintf("New account (%d days old)", *contact.AccountAge))
	}
	v = v.addIf(contact.Phone != "" && patterns.IsForeignPhone(contact.Phone), 30, "Foreign phone number")
	v = v.addIf(contact.Username != "" && patterns.IsGenericUsername(contact.Username), 15, "Generic username pattern")

	if contact.LastMessage != "" {
		v = v.applyAll(telegramRules, strings.ToLower(contact.LastMessage))
	}

	v = v.addIf(contact.IsVerified != nil && !*contact.IsVerified, 10, "Unverified account")
	return v
}

func telegramContactName(contact models.TelegramContact) string {
	fullName := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	if name := firstNonEmpty(contact.Username, fullName, contact.Phone); name != "" {
		return name
	}
	return unknownContact
}
