package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/usecase"
)

func scoreAt(value float64) *domain.CompositeScore {
	return &domain.CompositeScore{
		Score:     value,
		RiskLevel: domain.RiskLevelFromScore(value),
	}
}

func TestAlertPolicy_Decide(t *testing.T) {
	policy := usecase.NewAlertPolicy()

	cases := []struct {
		name     string
		score    float64
		severity domain.Severity
		alert    bool
	}{
		{"low risk no alert", 85, "", false},
		{"low boundary no alert", 80, "", false},
		{"medium risk no alert", 65, "", false},
		{"medium boundary no alert", 60, "", false},
		{"high level gives medium alert", 55, domain.SeverityMedium, true},
		{"high boundary gives medium alert", 40, domain.SeverityMedium, true},
		{"critical level gives critical alert", 35, domain.SeverityCritical, true},
		{"below thirty gives critical alert", 29, domain.SeverityCritical, true},
		{"zero gives critical alert", 0, domain.SeverityCritical, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			severity, ok := policy.Decide(scoreAt(tc.score))
			assert.Equal(t, tc.alert, ok)
			if tc.alert {
				assert.Equal(t, tc.severity, severity)
			}
		})
	}
}

func TestAlertPolicy_DecideIsPure(t *testing.T) {
	policy := usecase.NewAlertPolicy()
	score := scoreAt(45)

	first, firstOK := policy.Decide(score)
	second, secondOK := policy.Decide(score)

	assert.Equal(t, first, second)
	assert.Equal(t, firstOK, secondOK)
}
