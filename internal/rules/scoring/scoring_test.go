package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

func ptr(t time.Time) *time.Time { return &t }

func TestScore(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   Input
		want int
	}{
		{"empty lead", Input{Stage: repository.StageLead}, 5},
		{"small value", Input{ValueCents: 1, Stage: repository.StageLead}, 10},
		{"10k", Input{ValueCents: 10_000_00, Stage: repository.StageQualified}, 25},
		{"50k referral", Input{ValueCents: 50_000_00, Stage: repository.StageProposal, Source: "referral"}, 60},
		{
			"hot negotiation",
			Input{
				ValueCents: 150_000_00, Stage: repository.StageNegotiation, Source: "partner",
				LastActivityAt: ptr(now.Add(-2 * 24 * time.Hour)), ExpectedCloseAt: ptr(now.Add(10 * 24 * time.Hour)),
			},
			100,
		},
		{"stale activity", Input{Stage: repository.StageLead, LastActivityAt: ptr(now.Add(-20 * 24 * time.Hour))}, 15},
		{"old activity", Input{Stage: repository.StageLead, LastActivityAt: ptr(now.Add(-40 * 24 * time.Hour))}, 5},
		{"close in past", Input{Stage: repository.StageLead, ExpectedCloseAt: ptr(now.Add(-time.Hour))}, 5},
		{"close too far", Input{Stage: repository.StageLead, ExpectedCloseAt: ptr(now.Add(40 * 24 * time.Hour))}, 5},
		{"unknown source", Input{Stage: repository.StageLead, Source: "cold-call"}, 5},
		{"lost", Input{ValueCents: 150_000_00, Stage: repository.StageClosedLost, Source: "referral"}, 0},
		{"won", Input{ValueCents: 100_000_00, Stage: repository.StageClosedWon, Source: "event"}, 78},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Score(tc.in, now))
		})
	}
}

func TestGrade(t *testing.T) {
	require.Equal(t, GradeHot, Grade(70))
	require.Equal(t, GradeWarm, Grade(69))
	require.Equal(t, GradeWarm, Grade(40))
	require.Equal(t, GradeCold, Grade(39))
}

func TestForOpportunityUsesLeadStage(t *testing.T) {
	o := repository.Opportunity{EstimatedCents: 20_000_00, Source: "website", Status: repository.OpportunityOpen}
	require.Equal(t, 10+5+5, ForOpportunity(o, time.Now()))
}
