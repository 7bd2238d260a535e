package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/repository/postgres"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// ============================================================================
// Моки
// ============================================================================

// MockStageLock реализует repository.StageLock
type MockStageLock struct {
	mock.Mock
}

func (m *MockStageLock) Acquire(ctx context.Context, number int) (string, bool, error) {
	args := m.Called(ctx, number)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStageLock) Release(ctx context.Context, number int, token string) error {
	args := m.Called(ctx, number, token)
	return args.Error(0)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// memoryCache: кеш в памяти для тестов, где важно содержимое, а не вызовы
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// ============================================================================
// Тестовая БД и окружение
// ============================================================================

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Team{}, &entity.Participant{},
		&entity.Room{}, &entity.Judge{},
		&entity.Round{}, &entity.RoundAssignment{}, &entity.TeamAssignment{}, &entity.AssignmentJudge{},
		&entity.Score{}, &entity.ScoreSubmission{}, &entity.MatchResult{},
	))
	return db
}

type testEnv struct {
	db      *gorm.DB
	plan    tabulation.Plan
	cache   *memoryCache
	setup   *SetupService
	bracket *BracketService
	scores  *ScoreService
	rounds  *RoundService
	tab     *TabulationService
}

var testBounds = ScoreBounds{TeamMin: 0, TeamMax: 100, IndividualMin: 50, IndividualMax: 100}

func newTestEnv(t *testing.T, plan tabulation.Plan) *testEnv {
	t.Helper()
	db := newTestDB(t)
	teamRepo := postgres.NewTeamRepo(db)
	roomRepo := postgres.NewRoomRepo(db)
	judgeRepo := postgres.NewJudgeRepo(db)
	roundRepo := postgres.NewRoundRepo(db)
	assignmentRepo := postgres.NewAssignmentRepo(db)
	scoreRepo := postgres.NewScoreRepo(db)
	resultRepo := postgres.NewResultRepo(db)
	txManager := postgres.NewTxManager(db)
	cache := newMemoryCache()

	return &testEnv{
		db:      db,
		plan:    plan,
		cache:   cache,
		setup:   NewSetupService(teamRepo, roomRepo, judgeRepo, cache),
		bracket: NewBracketService(plan, roundRepo, assignmentRepo, scoreRepo, teamRepo, roomRepo, txManager, nil, cache, nil),
		scores:  NewScoreService(plan, testBounds, assignmentRepo, scoreRepo, txManager, cache, nil),
		rounds:  NewRoundService(plan, roundRepo, assignmentRepo, scoreRepo, resultRepo, teamRepo, judgeRepo, txManager, cache, nil),
		tab:     NewTabulationService(plan, roundRepo, assignmentRepo, scoreRepo, teamRepo, cache, time.Minute, nil),
	}
}

// seed создает команды по два спикера, аудитории и по одному судье на аудиторию
func (e *testEnv) seed(t *testing.T, teams, rooms int) []entity.Judge {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= teams; i++ {
		_, err := e.setup.CreateTeam(ctx, fmt.Sprintf("Team %02d", i), "Uni", []ParticipantInput{
			{Name: fmt.Sprintf("Speaker %02d-1", i)},
			{Name: fmt.Sprintf("Speaker %02d-2", i)},
		})
		require.NoError(t, err)
	}
	var judges []entity.Judge
	for i := 1; i <= rooms; i++ {
		_, err := e.setup.CreateRoom(ctx, fmt.Sprintf("Room %d", i))
		require.NoError(t, err)
	}
	for i := 1; i <= rooms+1; i++ {
		j, err := e.setup.CreateJudge(ctx, fmt.Sprintf("Judge %d", i), fmt.Sprintf("judge-%d", i))
		require.NoError(t, err)
		judges = append(judges, *j)
	}
	return judges
}

// strength возвращает детерминированную силу команды, чем больше ID, тем выше оценки
func strength(teamID uint) float64 {
	return 50 + float64(teamID)
}

// scoreRound назначает по судье в каждую комнату и выставляет оценки по strength
func (e *testEnv) scoreRound(t *testing.T, roundID uint, judges []entity.Judge) {
	t.Helper()
	ctx := context.Background()
	assignments, err := postgres.NewAssignmentRepo(e.db).ListByRound(ctx, roundID)
	require.NoError(t, err)
	round, err := e.rounds.GetRound(ctx, roundID)
	require.NoError(t, err)

	for i, a := range assignments {
		judge := judges[i]
		_, err := e.rounds.SetJudges(ctx, a.ID, []uint{judge.ID})
		require.NoError(t, err)

		var inputs []ScoreInput
		for _, ta := range a.TeamAssignments {
			teamID := ta.TeamID
			if e.plan.ScoringModeFor(round.Number) == tabulation.ScoringTeam {
				inputs = append(inputs, ScoreInput{TeamID: &teamID, Value: strength(teamID)})
				continue
			}
			for _, p := range ta.Team.Participants {
				participantID := p.ID
				inputs = append(inputs, ScoreInput{ParticipantID: &participantID, Value: strength(teamID)/2 + 25})
			}
		}
		_, err = e.scores.SubmitScores(ctx, judge.ID, a.ID, inputs)
		require.NoError(t, err)
	}
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
