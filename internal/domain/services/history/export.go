package history

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"shadowcleaner/internal/domain/models"
)

const reportDateLayout = "1/2/2006, 3:04:05 PM"

// ExportText renders entry as the plain text scan report.
func ExportText(entry models.ScanHistoryEntry) string {
	rule := strings.Repeat("-", 50)
	b := entry.ShadowScore.Breakdown

	lines := []string{
		"SHADOW CLEANER SCAN REPORT",
		strings.Repeat("=", 50),
		"",
		"Scan ID: " + entry.ScanID,
		"Date: " + entry.Timestamp.Format(reportDateLayout),
		"",
		"SHADOW SCORE",
		rule,
		fmt.Sprintf("Score: %d/100", entry.ShadowScore.Score),
		"Threat Level: " + strings.ToUpper(string(entry.ShadowScore.ThreatLevel)),
		"",
		"BREAKDOWN:",
		fmt.Sprintf("  Email Breaches: %d", b.EmailBreaches),
		fmt.Sprintf("  Phone Leaks: %d", b.PhoneLeaks),
		fmt.Sprintf("  Suspicious Contacts: %d", b.SuspiciousContacts),
		fmt.Sprintf("  Scam Messages: %d", b.ScamMessages),
		fmt.Sprintf("  Privacy Gaps: %d", b.PrivacyGaps),
		"",
		"DETECTED THREATS",
		rule,
	}

	if len(entry.Threats) == 0 {
		lines = append(lines, "No threats detected.")
	}
	for i, t := range entry.Threats {
		lines = append(lines,
			fmt.Sprintf("%d. %s (%s)", i+1, t.ContactName, t.ThreatType),
			"   Severity: "+string(t.Severity),
			fmt.Sprintf("   Confidence: %d%%", percent(t.Confidence)),
			"   Recommendation: "+t.Recommendation,
			"",
		)
	}

	lines = append(lines, "", "EXPOSURES", rule)
	if len(entry.Exposures) == 0 {
		lines = append(lines, "No exposures found.")
	}
	for _, e := range entry.Exposures {
		lines = append(lines,
			fmt.Sprintf("%s (%s)", e.Value, e.Kind),
			fmt.Sprintf("  Total Breaches: %d", e.TotalBreaches),
			"  Severity: "+string(e.Severity),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// ExportMarkdown writes entry as a markdown report.
func ExportMarkdown(w io.Writer, entry models.ScanHistoryEntry) error {
	md := markdown.NewMarkdown(w)
	score := entry.ShadowScore

	md.H1("Shadow Cleaner Scan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan ID", "`" + entry.ScanID + "`"},
			{"Date", entry.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Shadow Score", strconv.Itoa(score.Score) + "/100"},
			{"Threat Level", strings.ToUpper(string(score.ThreatLevel))},
		},
	})
	md.PlainText("")

	switch score.ThreatLevel {
	case models.ThreatLevelCritical:
		md.Cautionf("Shadow score %d is critical. Act on the recommendations below now.", score.Score)
	case models.ThreatLevelWarning:
		md.Warningf("Shadow score %d needs attention.", score.Score)
	case models.ThreatLevelCaution:
		md.Importantf("Shadow score %d shows some exposure.", score.Score)
	default:
		md.Tip("No significant exposure detected.")
	}
	md.PlainText("")

	md.H2("Breakdown")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows: [][]string{
			{"Email Breaches", strconv.Itoa(score.Breakdown.EmailBreaches)},
			{"Phone Leaks", strconv.Itoa(score.Breakdown.PhoneLeaks)},
			{"Suspicious Contacts", strconv.Itoa(score.Breakdown.SuspiciousContacts)},
			{"Scam Messages", strconv.Itoa(score.Breakdown.ScamMessages)},
			{"Privacy Gaps", strconv.Itoa(score.Breakdown.PrivacyGaps)},
		},
	})
	md.PlainText("")

	md.H2("Detected Threats")
	md.PlainText("")
	if len(entry.Threats) == 0 {
		md.PlainText("No threats detected.")
	} else {
		rows := make([][]string, len(entry.Threats))
		for i, t := range entry.Threats {
			rows[i] = []string{
				t.ContactName,
				string(t.Channel),
				string(t.ThreatType),
				string(t.Severity),
				strconv.Itoa(percent(t.Confidence)) + "%",
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Contact", "Channel", "Type", "Severity", "Confidence"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2("Exposures")
	md.PlainText("")
	if len(entry.Exposures) == 0 {
		md.PlainText("No exposures found.")
	} else {
		rows := make([][]string, len(entry.Exposures))
		for i, e := range entry.Exposures {
			rows[i] = []string{e.Value, string(e.Kind), strconv.Itoa(e.TotalBreaches), string(e.Severity)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Identifier", "Type", "Breaches", "Severity"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	if len(entry.Recommendations) > 0 {
		md.H2("Recommendations")
		md.PlainText("")
		for _, r := range entry.Recommendations {
			md.H3(fmt.Sprintf("%s (%s)", r.Title, r.Priority))
			md.PlainText(r.Description)
			md.PlainText("")
			md.OrderedList(r.Steps...)
			md.PlainText("")
		}
	}

	return md.Build()
}

func percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}
