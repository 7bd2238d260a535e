package tabulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPlan(t *testing.T) {
	p := DefaultPlan()
	assert.NoError(t, p.Validate())

	assert.True(t, p.IsPreliminary(1))
	assert.True(t, p.IsPreliminary(3))
	assert.False(t, p.IsPreliminary(4))

	assert.Equal(t, []int{1, 2, 3}, p.SourceNumbers(4))
	assert.Equal(t, []int{4}, p.SourceNumbers(5))
	assert.Equal(t, []int{5}, p.SourceNumbers(6))
	assert.Equal(t, []int{1}, p.SourceNumbers(2))
	assert.Empty(t, p.SourceNumbers(1))
	assert.Nil(t, p.SourceNumbers(7))

	assert.Equal(t, ScoringIndividual, p.ScoringModeFor(2))
	assert.Equal(t, ScoringTeam, p.ScoringModeFor(5))
	assert.True(t, p.IsMultiJudge(6))
	assert.False(t, p.IsMultiJudge(5))
	assert.Equal(t, "Grand Final", p.StageName(6))
	assert.Equal(t, "Round 2", p.StageName(2))

	qf, ok := p.StageByNumber(4)
	assert.True(t, ok)
	assert.Equal(t, 4, qf.Rooms())
}

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Plan)
	}{
		{"no preliminary rounds", func(p *Plan) { p.PreliminaryRounds = 0 }},
		{"bad preliminary scoring", func(p *Plan) { p.PreliminaryScoring = "points" }},
		{"stage number inside preliminaries", func(p *Plan) { p.Stages[0].Number = 3 }},
		{"stage numbers not increasing", func(p *Plan) { p.Stages[2].Number = 5 }},
		{"qualifiers not multiple of four", func(p *Plan) { p.Stages[1].Qualifiers = 6 }},
		{"qualifiers grow", func(p *Plan) { p.Stages[2].Qualifiers = 12 }},
		{"bad stage scoring", func(p *Plan) { p.Stages[0].ScoringMode = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPlan()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
