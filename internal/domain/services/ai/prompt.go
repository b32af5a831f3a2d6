package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"shadowcleaner/internal/domain/models"
)

const systemPrompt = "You are a cybersecurity expert analyzing messages for scam and threat detection."

// buildPrompt renders the classification task for one message.
func buildPrompt(req models.ClassificationRequest) string {
	var sb strings.Builder

	sb.WriteString("**Message to analyze:**\n")
	sb.WriteString(strconv.Quote(req.Message))
	sb.WriteString("\n\n**Context:**\n")
	if c := req.Context; c != nil {
		if c.SenderName != "" {
			sb.WriteString(fmt.Sprintf("- Sender: %s\n", c.SenderName))
		}
		if c.AccountAge != nil {
			sb.WriteString(fmt.Sprintf("- Account age: %d days\n", *c.AccountAge))
		}
		if len(c.PreviousMessages) > 0 {
			sb.WriteString(fmt.Sprintf("- Previous messages: %s\n", strings.Join(c.PreviousMessages, "; ")))
		}
	}

	sb.WriteString(`
**Task:**
Classify this message into ONE of the following categories:
1. legitimate - Normal, safe communication
2. spam - Unwanted promotional or bulk messages
3. phishing - Attempts to steal credentials or personal information
4. romance_scam - Romance/relationship scam patterns
5. crypto_scam - Cryptocurrency investment scams
6. fake_profile - Indicators of a fake or bot account

**Provide your response in this EXACT JSON format:**
{
  "classification": "category_name",
  "confidence": 0.0-1.0,
  "indicators": ["indicator1", "indicator2"],
  "reasoning": "brief explanation"
}

**Detection criteria:**
- Romance scams: Excessive affection, requests for money, sob stories, quick relationship escalation
- Crypto scams: Investment opportunities, guaranteed returns, wallet requests, trading signals
- Phishing: Urgency, account verification, suspicious links, credential requests
- Spam: Generic messages, promotional content, mass-sent patterns
- Fake profiles: Generic greetings, probing questions, inconsistent information

Respond ONLY with valid JSON, no additional text.`)

	return sb.String()
}

type classificationReply struct {
	Classification models.Classification `json:"classification"`
	Confidence     *float64              `json:"confidence"`
	Indicators     []string              `json:"indicators"`
	Reasoning      string                `json:"reasoning"`
}

// parseResponse extracts a classification from a model reply, tolerating
// markdown code fences and surrounding prose.
func parseResponse(content string) (models.ClassificationResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start != -1 && end > start {
		content = content[start : end+1]
	}

	var reply classificationReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return models.ClassificationResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !reply.Classification.IsValid() {
		return models.ClassificationResult{}, fmt.Errorf("%w: invalid classification %q", ErrMalformedResponse, reply.Classification)
	}
	if reply.Confidence == nil {
		return models.ClassificationResult{}, fmt.Errorf("%w: missing confidence", ErrMalformedResponse)
	}

	indicators := reply.Indicators
	if indicators == nil {
		indicators = []string{}
	}
	reasoning := reply.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}

	return models.ClassificationResult{
		Classification: reply.Classification,
		Confidence:     clamp01(*reply.Confidence),
		Indicators:     indicators,
		Reasoning:      reasoning,
	}, nil
}

func clamp01(f float64) float64 {
	switch {
	case f != f || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
