package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// teamScoringPlan: отборочные раунды с командными оценками, финал с несколькими судьями
func teamScoringPlan() tabulation.Plan {
	return tabulation.Plan{
		PreliminaryRounds:  1,
		PreliminaryScoring: tabulation.ScoringTeam,
		Stages: []tabulation.Stage{
			{Name: "Grand Final", Number: 2, Qualifiers: 4, ScoringMode: tabulation.ScoringTeam, MultiJudge: true},
		},
	}
}

func teamInputs(a *entity.RoundAssignment, value func(teamID uint) float64) []ScoreInput {
	inputs := make([]ScoreInput, 0, len(a.TeamAssignments))
	for _, id := range a.TeamIDs() {
		teamID := id
		inputs = append(inputs, ScoreInput{TeamID: &teamID, Value: value(teamID)})
	}
	return inputs
}

// singleRoom создает раунд 1 с одной комнатой и судьёй
func singleRoom(t *testing.T, e *testEnv) (*entity.RoundAssignment, []entity.Judge) {
	t.Helper()
	ctx := context.Background()
	judges := e.seed(t, 4, 1)
	res, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)
	a, err := e.rounds.SetJudges(ctx, res.Assignments[0].ID, []uint{judges[0].ID})
	require.NoError(t, err)
	return a, judges
}

func TestSubmitScores_DuplicateRejected(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	a, judges := singleRoom(t, e)
	ctx := context.Background()

	first, err := e.scores.SubmitScores(ctx, judges[0].ID, a.ID, teamInputs(a, strength))
	require.NoError(t, err)
	require.Len(t, first.Scores, 4)

	var before []entity.Score
	require.NoError(t, e.db.Order("id").Find(&before).Error)

	_, err = e.scores.SubmitScores(ctx, judges[0].ID, a.ID, teamInputs(a, func(uint) float64 { return 99 }))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	var after []entity.Score
	require.NoError(t, e.db.Order("id").Find(&after).Error)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(1), e.count(t, &entity.ScoreSubmission{}))
}

func TestSubmitScores_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		judge   func(judges []entity.Judge) uint
		inputs  func(a *entity.RoundAssignment) []ScoreInput
		wantErr error
	}{
		{
			name:    "judge not assigned to the room",
			judge:   func(j []entity.Judge) uint { return j[1].ID },
			inputs:  func(a *entity.RoundAssignment) []ScoreInput { return teamInputs(a, strength) },
			wantErr: apperrors.ErrForbidden,
		},
		{
			name:    "value out of range",
			judge:   func(j []entity.Judge) uint { return j[0].ID },
			inputs:  func(a *entity.RoundAssignment) []ScoreInput { return teamInputs(a, func(uint) float64 { return 101 }) },
			wantErr: apperrors.ErrValidation,
		},
		{
			name:  "missing team",
			judge: func(j []entity.Judge) uint { return j[0].ID },
			inputs: func(a *entity.RoundAssignment) []ScoreInput {
				return teamInputs(a, strength)[:3]
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:  "team outside the room",
			judge: func(j []entity.Judge) uint { return j[0].ID },
			inputs: func(a *entity.RoundAssignment) []ScoreInput {
				in := teamInputs(a, strength)
				other := uint(999)
				in[0].TeamID = &other
				return in
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:  "team scored twice",
			judge: func(j []entity.Judge) uint { return j[0].ID },
			inputs: func(a *entity.RoundAssignment) []ScoreInput {
				in := teamInputs(a, strength)
				in[1].TeamID = in[0].TeamID
				return in
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "empty submission",
			judge:   func(j []entity.Judge) uint { return j[0].ID },
			inputs:  func(a *entity.RoundAssignment) []ScoreInput { return nil },
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, teamScoringPlan())
			a, judges := singleRoom(t, e)

			_, err := e.scores.SubmitScores(context.Background(), tt.judge(judges), a.ID, tt.inputs(a))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, int64(0), e.count(t, &entity.Score{}))
			assert.Equal(t, int64(0), e.count(t, &entity.ScoreSubmission{}))
		})
	}
}

func TestSubmitScores_UnknownAssignment(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	_, judges := singleRoom(t, e)

	_, err := e.scores.SubmitScores(context.Background(), judges[0].ID, 404, []ScoreInput{{Value: 1}})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSubmitScores_IndividualUsesParticipantTeam(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	ctx := context.Background()
	judges := e.seed(t, 4, 1)
	res, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)
	a, err := e.rounds.SetJudges(ctx, res.Assignments[0].ID, []uint{judges[0].ID})
	require.NoError(t, err)

	var inputs []ScoreInput
	for _, ta := range a.TeamAssignments {
		for _, p := range ta.Team.Participants {
			participantID := p.ID
			inputs = append(inputs, ScoreInput{ParticipantID: &participantID, Value: 75})
		}
	}
	require.Len(t, inputs, 8)

	t.Run("mismatched team reference", func(t *testing.T) {
		bad := append([]ScoreInput(nil), inputs...)
		wrongTeam := a.TeamAssignments[1].TeamID
		bad[0].TeamID = &wrongTeam
		_, err := e.scores.SubmitScores(ctx, judges[0].ID, a.ID, bad)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("below minimum", func(t *testing.T) {
		bad := append([]ScoreInput(nil), inputs...)
		bad[0].Value = 10
		_, err := e.scores.SubmitScores(ctx, judges[0].ID, a.ID, bad)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	result, err := e.scores.SubmitScores(ctx, judges[0].ID, a.ID, inputs)
	require.NoError(t, err)
	for _, s := range result.Scores {
		assert.Equal(t, entity.ScoreTypeIndividual, s.Type)
		require.NotNil(t, s.TeamID)
		require.NotNil(t, s.ParticipantID)
		assert.Equal(t, result.Submission.ID, s.SubmissionID)
	}
}

func TestSubmitScores_MultiJudgeFinalAcceptsOneSubmission(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	ctx := context.Background()
	judges := e.seed(t, 4, 1)

	r1, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)
	e.scoreRound(t, r1.Round.ID, judges)

	final, err := e.bracket.GenerateStage(ctx, 2)
	require.NoError(t, err)
	a, err := e.rounds.SetJudges(ctx, final.Assignments[0].ID, []uint{judges[0].ID, judges[1].ID})
	require.NoError(t, err)
	require.Len(t, a.Judges, 2)

	_, err = e.scores.SubmitScores(ctx, judges[0].ID, a.ID, teamInputs(a, strength))
	require.NoError(t, err)

	_, err = e.scores.SubmitScores(ctx, judges[1].ID, a.ID, teamInputs(a, strength))
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestSubmitScores_InvalidatesTabulationCache(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	a, judges := singleRoom(t, e)
	ctx := context.Background()

	_, err := e.tab.Tabulation(ctx)
	require.NoError(t, err)
	require.Contains(t, e.cache.data, tabulationCacheKey)

	_, err = e.scores.SubmitScores(ctx, judges[0].ID, a.ID, teamInputs(a, strength))
	require.NoError(t, err)
	assert.NotContains(t, e.cache.data, tabulationCacheKey)
}
