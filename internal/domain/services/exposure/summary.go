package exposure

import "shadowcleaner/internal/domain/models"

// Summary aggregates a set of exposure reports.
type Summary struct {
	TotalBreaches   int                    `json:"totalBreaches"`
	AffectedEmails  int                    `json:"affectedEmails"`
	AffectedPhones  int                    `json:"affectedPhones"`
	OverallSeverity models.Severity        `json:"overallSeverity"`
	MostSevere      *models.ExposureReport `json:"mostSevere,omitempty"`
}

// Summarize totals breaches across reports. Only reports with at least one
// breach count as affected. MostSevere is the first report holding the
// highest severity.
func Summarize(reports []models.ExposureReport) Summary {
	s := Summary{OverallSeverity: models.SeverityLow}
	for i := range reports {
		r := &reports[i]
		s.TotalBreaches += r.TotalBreaches
		if r.TotalBreaches > 0 {
			switch r.Kind {
			case models.ExposureEmail:
				s.AffectedEmails++
			case models.ExposurePhone:
				s.AffectedPhones++
			}
		}
		if s.MostSevere == nil || r.Severity.Rank() > s.MostSevere.Severity.Rank() {
			s.MostSevere = r
		}
	}
	if s.MostSevere != nil {
		s.OverallSeverity = s.MostSevere.Severity
	}
	return s
}
