// Package scoring calcula el lead score de deals y oportunidades.
package scoring

import (
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

const (
	GradeHot  = "hot"
	GradeWarm = "warm"
	GradeCold = "cold"
)

// Input son las señales que alimentan el score.
type Input struct {
	ValueCents      int64
	Stage           string
	Source          string
	LastActivityAt  *time.Time
	ExpectedCloseAt *time.Time
}

var stagePoints = map[string]int{
	repository.StageLead:        5,
	repository.StageQualified:   15,
	repository.StageProposal:    25,
	repository.StageNegotiation: 35,
	repository.StageClosedWon:   40,
}

var sourcePoints = map[string]int{
	"referral": 15,
	"partner":  10,
	"event":    8,
	"website":  5,
}

// Score retorna un valor en [0,100]. Un deal closed_lost vale 0.
func Score(in Input, now time.Time) int {
	if in.Stage == repository.StageClosedLost {
		return 0
	}

	s := 0
	switch major := in.ValueCents / 100; {
	case major >= 100_000:
		s += 30
	case major >= 50_000:
		s += 20
	case major >= 10_000:
		s += 10
	case in.ValueCents > 0:
		s += 5
	}

	s += stagePoints[in.Stage]

	if in.LastActivityAt != nil {
		switch age := now.Sub(*in.LastActivityAt); {
		case age <= 7*24*time.Hour:
			s += 20
		case age <= 30*24*time.Hour:
			s += 10
		}
	}

	s += sourcePoints[in.Source]

	if in.ExpectedCloseAt != nil {
		if until := in.ExpectedCloseAt.Sub(now); until > 0 && until <= 30*24*time.Hour {
			s += 5
		}
	}

	return min(s, 100)
}

// Grade clasifica un score.
func Grade(score int) string {
	switch {
	case score >= 70:
		return GradeHot
	case score >= 40:
		return GradeWarm
	default:
		return GradeCold
	}
}

// ForDeal es un atajo sobre los campos del deal.
func ForDeal(d repository.Deal, now time.Time) int {
	return Score(Input{
		ValueCents:      d.ValueCents,
		Stage:           d.Stage,
		Source:          d.Source,
		LastActivityAt:  d.LastActivityAt,
		ExpectedCloseAt: d.ExpectedCloseAt,
	}, now)
}

// ForOpportunity puntúa una oportunidad como si fuera un lead.
func ForOpportunity(o repository.Opportunity, now time.Time) int {
	return Score(Input{
		ValueCents: o.EstimatedCents,
		Stage:      repository.StageLead,
		Source:     o.Source,
	}, now)
}
