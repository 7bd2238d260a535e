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

func TestRoundLifecycle(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	ctx := context.Background()
	judges := e.seed(t, 8, 2)

	res, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)
	roundID := res.Round.ID

	status, err := e.rounds.Status(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStateCreated, status.State)
	assert.Equal(t, 8, status.Teams)
	assert.Equal(t, 0, status.ScoredTeams)
	assert.Equal(t, 2, status.Rooms)

	// Первая комната оценена, вторая нет
	a, err := e.rounds.SetJudges(ctx, res.Assignments[0].ID, []uint{judges[0].ID})
	require.NoError(t, err)
	_, err = e.scores.SubmitScores(ctx, judges[0].ID, a.ID, teamInputs(a, strength))
	require.NoError(t, err)

	status, err = e.rounds.Status(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStateCreated, status.State)
	assert.Equal(t, 4, status.ScoredTeams)
	assert.Equal(t, 1, status.ScoredRooms)
	assert.Equal(t, 1, status.Results)
	assert.InDelta(t, 50.0, status.Percent, 0.001)

	_, err = e.rounds.CompleteRound(ctx, roundID)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	b, err := e.rounds.SetJudges(ctx, res.Assignments[1].ID, []uint{judges[1].ID})
	require.NoError(t, err)
	_, err = e.scores.SubmitScores(ctx, judges[1].ID, b.ID, teamInputs(b, strength))
	require.NoError(t, err)

	status, err = e.rounds.Status(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStateScored, status.State)

	completed, err := e.rounds.CompleteRound(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStateCompleted, completed.State)

	results, err := e.rounds.Results(ctx, roundID)
	require.NoError(t, err)
	require.Len(t, results, 8)
	points := map[uint]int{}
	for _, r := range results {
		points[r.RoundAssignmentID] += r.Points
	}
	for _, sum := range points {
		assert.Equal(t, 6, sum)
	}

	_, err = e.rounds.CompleteRound(ctx, roundID)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	// После завершения оценки не принимаются
	_, err = e.scores.SubmitScores(ctx, judges[2].ID, a.ID, teamInputs(a, strength))
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestRoundStandings_ScenarioTies(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	a, judges := singleRoom(t, e)
	ctx := context.Background()

	// OG=50, OO=50, CG=40, CO=30
	values := map[entity.Position]float64{
		entity.PositionOG: 50, entity.PositionOO: 50, entity.PositionCG: 40, entity.PositionCO: 30,
	}
	var inputs []ScoreInput
	for _, ta := range a.OrderedTeams() {
		teamID := ta.TeamID
		inputs = append(inputs, ScoreInput{TeamID: &teamID, Value: values[ta.Position]})
	}
	_, err := e.scores.SubmitScores(ctx, judges[0].ID, a.ID, inputs)
	require.NoError(t, err)

	rankings, err := e.rounds.Standings(ctx, a.RoundID)
	require.NoError(t, err)
	require.Len(t, rankings, 1)

	ordered := a.OrderedTeams()
	got := rankings[0].Results
	require.Len(t, got, 4)
	for i, want := range []struct {
		teamID uint
		rank   int
		points int
		total  float64
	}{
		{ordered[0].TeamID, 1, 3, 50},
		{ordered[1].TeamID, 2, 2, 50},
		{ordered[2].TeamID, 3, 1, 40},
		{ordered[3].TeamID, 4, 0, 30},
	} {
		assert.Equal(t, want.teamID, got[i].TeamID)
		assert.Equal(t, want.rank, got[i].Rank)
		assert.Equal(t, want.points, got[i].Points)
		assert.Equal(t, want.total, got[i].TotalScore)
	}

	bracket, err := e.rounds.Bracket(ctx, a.RoundID)
	require.NoError(t, err)
	require.Len(t, bracket.Rooms, 1)
	assert.True(t, bracket.Rooms[0].Scored)
	assert.Equal(t, 1, bracket.Rooms[0].Teams[0].Rank)
	require.Len(t, bracket.Rooms[0].Judges, 1)
}

func TestSetJudges_OneRoomPerRound(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	ctx := context.Background()
	judges := e.seed(t, 8, 2)
	res, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)

	_, err = e.rounds.SetJudges(ctx, res.Assignments[0].ID, []uint{judges[0].ID})
	require.NoError(t, err)

	_, err = e.rounds.SetJudges(ctx, res.Assignments[1].ID, []uint{judges[0].ID})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	// Повторное назначение в ту же комнату допустимо, второй судья в комнате нет
	_, err = e.rounds.SetJudges(ctx, res.Assignments[0].ID, []uint{judges[0].ID})
	require.NoError(t, err)
	_, err = e.rounds.SetJudges(ctx, res.Assignments[0].ID, []uint{judges[0].ID, judges[1].ID})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	a, err := e.rounds.GetAssignment(ctx, res.Assignments[0].ID)
	require.NoError(t, err)
	require.Len(t, a.Judges, 1)

	_, err = e.rounds.SetJudges(ctx, res.Assignments[1].ID, []uint{judges[2].ID, judges[2].ID})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = e.rounds.SetJudges(ctx, res.Assignments[1].ID, []uint{999})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSetJudges_FixedAfterScoring(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	a, judges := singleRoom(t, e)
	ctx := context.Background()

	_, err := e.scores.SubmitScores(ctx, judges[0].ID, a.ID, teamInputs(a, strength))
	require.NoError(t, err)

	// Замена судьи открыла бы вторую отправку за ту же комнату
	_, err = e.rounds.SetJudges(ctx, a.ID, []uint{judges[1].ID})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	_, err = e.scores.SubmitScores(ctx, judges[1].ID, a.ID, teamInputs(a, strength))
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	rankings, err := e.rounds.Standings(ctx, a.RoundID)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	for _, r := range rankings[0].Results {
		assert.Equal(t, strength(r.TeamID), r.TotalScore)
	}
	assert.Equal(t, int64(1), e.count(t, &entity.ScoreSubmission{}))
}

func TestCreateAssignment_PreliminaryOnly(t *testing.T) {
	e := newTestEnv(t, teamScoringPlan())
	ctx := context.Background()
	judges := e.seed(t, 8, 2)
	rooms, err := e.setup.ListRooms(ctx)
	require.NoError(t, err)

	r1, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)
	e.scoreRound(t, r1.Round.ID, judges)
	final, err := e.bracket.GenerateStage(ctx, 2)
	require.NoError(t, err)
	require.Len(t, final.Assignments, 1)

	finalists := map[uint]bool{}
	for _, q := range final.Qualifiers {
		finalists[q.TeamID] = true
	}
	var slots []TeamSlot
	for id := uint(1); id <= 8 && len(slots) < 4; id++ {
		if !finalists[id] {
			slots = append(slots, TeamSlot{TeamID: id, Position: entity.Positions()[len(slots)]})
		}
	}
	require.Len(t, slots, 4)

	_, err = e.rounds.CreateAssignment(ctx, final.Round.ID, rooms[1].ID, slots)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	bracket, err := e.rounds.Bracket(ctx, final.Round.ID)
	require.NoError(t, err)
	assert.Len(t, bracket.Rooms, 1)
}

func TestCreateAssignment_ValidatesLineup(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	ctx := context.Background()
	e.seed(t, 8, 2)
	rooms, err := e.setup.ListRooms(ctx)
	require.NoError(t, err)

	round, err := e.rounds.CreateRound(ctx, 1, "Round 1", "This House would...", "")
	require.NoError(t, err)

	_, err = e.rounds.CreateAssignment(ctx, round.ID, rooms[0].ID, []TeamSlot{
		{TeamID: 1, Position: entity.PositionOG},
		{TeamID: 2, Position: entity.PositionOG},
		{TeamID: 3, Position: entity.PositionCG},
		{TeamID: 4, Position: entity.PositionCO},
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	slots := []TeamSlot{
		{TeamID: 1, Position: entity.PositionOG},
		{TeamID: 2, Position: entity.PositionOO},
		{TeamID: 3, Position: entity.PositionCG},
		{TeamID: 4, Position: entity.PositionCO},
	}
	a, err := e.rounds.CreateAssignment(ctx, round.ID, rooms[0].ID, slots)
	require.NoError(t, err)
	assert.Len(t, a.TeamAssignments, 4)

	// Команда 1 уже играет в этом раунде
	slots[0].TeamID = 1
	slots[1].TeamID = 5
	slots[2].TeamID = 6
	slots[3].TeamID = 7
	_, err = e.rounds.CreateAssignment(ctx, round.ID, rooms[1].ID, slots)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, int64(1), e.count(t, &entity.RoundAssignment{}))

	_, err = e.rounds.CreateRound(ctx, 4, "", "", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = e.rounds.CreateRound(ctx, 1, "", "", "")
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestStages(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	ctx := context.Background()
	e.seed(t, 4, 1)
	_, err := e.bracket.GenerateStage(ctx, 1)
	require.NoError(t, err)

	stages, err := e.rounds.Stages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 6)
	assert.Equal(t, entity.StageStateCreated, stages[0].State)
	assert.NotNil(t, stages[0].RoundID)
	assert.Equal(t, entity.StageStateNotCreated, stages[3].State)
	assert.Equal(t, 16, stages[3].Qualifiers)
	assert.True(t, stages[5].MultiJudge)
}
