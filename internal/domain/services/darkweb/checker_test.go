package darkweb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/pkg/logger"
)

type fakeProvider struct {
	byKind map[models.ExposureKind][]models.Breach
	fail   map[models.ExposureKind]error
	seen   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Lookup(_ context.Context, kind models.ExposureKind, value string) ([]models.Breach, error) {
	f.seen = append(f.seen, value)
	if err := f.fail[kind]; err != nil {
		return nil, err
	}
	return f.byKind[kind], nil
}

func TestCheck(t *testing.T) {
	p := &fakeProvider{
		byKind: map[models.ExposureKind][]models.Breach{
			models.ExposureEmail: {
				{Name: "Adobe", Title: "Adobe", Domain: "adobe.com", BreachDate: "2013-10-04", DataClasses: []string{"Email addresses", "Passwords"}},
				{Name: "Forum", BreachDate: "not a date", DataClasses: []string{"Usernames"}},
			},
		},
		fail: map[models.ExposureKind]error{models.ExposurePhone: exposure.ErrProviderUnavailable},
	}
	c := NewChecker(p, logger.NewNop())

	results := c.Check(context.Background(), " User@Example.com", "+1 (555) 010-9999")
	require.Len(t, results, 2)
	assert.Equal(t, []string{"user@example.com", "+15550109999"}, p.seen)

	assert.Equal(t, "Adobe", results[0].Source)
	assert.Equal(t, models.DarkWebBreach, results[0].Type)
	assert.Equal(t, models.SeverityCritical, results[0].Severity)
	assert.Equal(t, "https://adobe.com", results[0].URL)
	require.NotNil(t, results[0].FirstSeen)
	assert.Equal(t, 2013, results[0].FirstSeen.Year())

	assert.Equal(t, "Forum", results[1].Source)
	assert.Equal(t, models.SeverityMedium, results[1].Severity)
	assert.Nil(t, results[1].FirstSeen)

	stats := c.GetStats()
	assert.Equal(t, int64(2), stats.TotalChecks)
	assert.Equal(t, int64(2), stats.FindingsFound)
	assert.Equal(t, int64(1), stats.FailedChecks)
}

func TestCheckNothingToDo(t *testing.T) {
	p := &fakeProvider{}
	results := NewChecker(p, logger.NewNop()).Check(context.Background(), "", "")
	assert.Empty(t, results)
	assert.NotNil(t, results)
	assert.Empty(t, p.seen)
}

func TestRecommendations(t *testing.T) {
	assert.Equal(t, []string{"No dark web exposure detected. Continue monitoring regularly."}, Recommendations(nil))

	medium := Recommendations([]models.DarkWebResult{{Severity: models.SeverityMedium}})
	assert.Len(t, medium, 5)

	critical := Recommendations([]models.DarkWebResult{{Severity: models.SeverityMedium}, {Severity: models.SeverityCritical}})
	require.Len(t, critical, 6)
	assert.Contains(t, critical[0], "🚨 CRITICAL")
}
