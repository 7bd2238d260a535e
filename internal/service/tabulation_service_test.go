package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

func TestTabulation_StagesAndSpeakers(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	judges := e.seed(t, 16, 4)
	playPreliminaries(t, e, judges)
	qf, err := e.bracket.GenerateStage(context.Background(), 4)
	require.NoError(t, err)
	e.scoreRound(t, qf.Round.ID, judges)

	view, err := e.tab.Tabulation(context.Background())
	require.NoError(t, err)

	require.Len(t, view.Stages, 2)
	assert.True(t, view.Stages[0].Preliminary)
	assert.Equal(t, []int{1, 2, 3}, view.Stages[0].Rounds)
	assert.Len(t, view.Stages[0].Standings, 16)
	assert.Equal(t, "Quarterfinal", view.Stages[1].Name)
	assert.Len(t, view.Stages[1].Standings, 16)

	// У каждого спикера по одной оценке за каждый отборочный раунд
	require.Len(t, view.Speakers, 32)
	for i, sp := range view.Speakers {
		assert.Equal(t, i+1, sp.Position)
		assert.Equal(t, 3, sp.Scores)
	}
	assert.Equal(t, uint(16), view.Speakers[0].TeamID)
	assert.GreaterOrEqual(t, view.Speakers[0].Total, view.Speakers[31].Total)
}

func TestTabulation_CacheHit(t *testing.T) {
	cache := new(MockCacheRepo)
	cache.On("GetJSON", mock.Anything, tabulationCacheKey, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*TabulationView)
			dest.Stages = []StageTab{{Name: "cached"}}
		}).
		Return(nil)

	svc := NewTabulationService(tabulation.DefaultPlan(), nil, nil, nil, nil, cache, time.Minute, nil)
	view, err := svc.Tabulation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", view.Stages[0].Name)
	cache.AssertExpectations(t)
	cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTabulation_CacheMissStoresResult(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	cache := new(MockCacheRepo)
	cache.On("GetJSON", mock.Anything, tabulationCacheKey, mock.Anything).Return(apperrors.ErrNotFound)
	cache.On("SetJSON", mock.Anything, tabulationCacheKey, mock.AnythingOfType("*service.TabulationView"), time.Minute).Return(nil)
	e.tab.cacheRepo = cache

	_, err := e.tab.Tabulation(context.Background())
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestTabulation_CacheErrorFallsBackToDatabase(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	cache := new(MockCacheRepo)
	cache.On("GetJSON", mock.Anything, tabulationCacheKey, mock.Anything).Return(errors.New("redis down"))
	cache.On("SetJSON", mock.Anything, tabulationCacheKey, mock.Anything, time.Minute).Return(errors.New("redis down"))
	e.tab.cacheRepo = cache

	view, err := e.tab.Tabulation(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, view)
}

func TestExport(t *testing.T) {
	e := newTestEnv(t, tabulation.DefaultPlan())
	judges := e.seed(t, 4, 1)
	res, err := e.bracket.GenerateStage(context.Background(), 1)
	require.NoError(t, err)
	e.scoreRound(t, res.Round.ID, judges)
	ctx := context.Background()

	t.Run("csv", func(t *testing.T) {
		file, err := e.tab.Export(ctx, ExportCSV)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
		content := string(file.Data)
		assert.Contains(t, content, "Stage,Position,Team,Points,Total score,Debates,Firsts")
		assert.Contains(t, content, "Preliminary,1,Team 04,3,")
		assert.Contains(t, content, "Position,Speaker,Team,Total,Average,Scores")
	})

	t.Run("xlsx", func(t *testing.T) {
		file, err := e.tab.Export(ctx, ExportXLSX)
		require.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(file.Data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Teams")
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, "Team 04", rows[1][2])

		speakers, err := f.GetRows("Speakers")
		require.NoError(t, err)
		assert.Len(t, speakers, 9)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := e.tab.Export(ctx, "pdf")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}

func TestSanitizeForExcel(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", sanitizeForExcel("=SUM(A1)"))
	assert.Equal(t, "'@team", sanitizeForExcel("@team"))
	assert.Equal(t, "Team", sanitizeForExcel("Team"))
	assert.Equal(t, "", sanitizeForExcel(""))
}
