package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/domain/repository"
	"github.com/yourusername/debate-tab/internal/metrics"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// QualifiedTeam: команда сгенерированного этапа с местом в рейтинге, комнатой и позицией
type QualifiedTeam struct {
	Seed       int             `json:"seed"`
	TeamID     uint            `json:"team_id"`
	TeamName   string          `json:"team_name"`
	Points     int             `json:"points"`
	TotalScore float64         `json:"total_score"`
	RoomID     uint            `json:"room_id"`
	RoomName   string          `json:"room_name"`
	Position   entity.Position `json:"position"`
}

// GenerationResult: итог генерации этапа
type GenerationResult struct {
	Round       *entity.Round            `json:"round"`
	Assignments []entity.RoundAssignment `json:"assignments"`
	Qualifiers  []QualifiedTeam          `json:"qualifiers"`
}

// BracketService генерирует раунды: отборочные (ротация позиций, пары по силе после
// первого раунда) и этапы плей-офф (позиции по месту в рейтинге)
type BracketService struct {
	plan           tabulation.Plan
	roundRepo      repository.RoundRepository
	assignmentRepo repository.AssignmentRepository
	teamRepo       repository.TeamRepository
	roomRepo       repository.RoomRepository
	txManager      repository.TxManager
	lock           repository.StageLock
	cacheRepo      repository.CacheRepository
	metrics        *metrics.Recorder
	loader         resultsLoader
}

// NewBracketService создает сервис генерации этапов. lock, cacheRepo и recorder могут быть nil.
func NewBracketService(
	plan tabulation.Plan,
	roundRepo repository.RoundRepository,
	assignmentRepo repository.AssignmentRepository,
	scoreRepo repository.ScoreRepository,
	teamRepo repository.TeamRepository,
	roomRepo repository.RoomRepository,
	txManager repository.TxManager,
	lock repository.StageLock,
	cacheRepo repository.CacheRepository,
	recorder *metrics.Recorder,
) *BracketService {
	return &BracketService{
		plan:           plan,
		roundRepo:      roundRepo,
		assignmentRepo: assignmentRepo,
		teamRepo:       teamRepo,
		roomRepo:       roomRepo,
		txManager:      txManager,
		lock:           lock,
		cacheRepo:      cacheRepo,
		metrics:        recorder,
		loader: resultsLoader{
			assignmentRepo: assignmentRepo,
			scoreRepo:      scoreRepo,
			teamRepo:       teamRepo,
		},
	}
}

// GenerateStage создает раунд с номером number вместе со всеми комнатами.
// Все проверки выполняются до первой записи; запись идёт одной транзакцией.
func (s *BracketService) GenerateStage(ctx context.Context, number int) (*GenerationResult, error) {
	started := time.Now()
	result, err := s.generate(ctx, number)

	label := strconv.Itoa(number)
	switch {
	case err == nil:
		s.metrics.StageGenerated(label, metrics.ResultOK, time.Since(started))
	case errors.Is(err, apperrors.ErrPrecondition):
		s.metrics.StageGenerated(label, metrics.ResultRejected, 0)
	case errors.Is(err, apperrors.ErrConflict):
		s.metrics.StageGenerated(label, metrics.ResultConflict, 0)
	default:
		s.metrics.StageGenerated(label, metrics.ResultError, 0)
	}
	return result, err
}

func (s *BracketService) generate(ctx context.Context, number int) (*GenerationResult, error) {
	preliminary := s.plan.IsPreliminary(number)
	stage, isStage := s.plan.StageByNumber(number)
	if !preliminary && !isStage {
		return nil, fmt.Errorf("%w: stage %d is not configured", apperrors.ErrNotFound, number)
	}

	if s.lock != nil {
		token, ok, err := s.lock.Acquire(ctx, number)
		switch {
		case err != nil:
			// Блокировка лишь отсекает параллельные запросы; уникальный индекс в БД остаётся
			log.Printf("[BracketService] Не удалось взять блокировку этапа %d, продолжаем без неё: %v", number, err)
		case !ok:
			return nil, fmt.Errorf("%w: generation of stage %d is already in progress", apperrors.ErrConflict, number)
		default:
			defer func() {
				if err := s.lock.Release(context.Background(), number, token); err != nil {
					log.Printf("[BracketService] Ошибка освобождения блокировки этапа %d: %v", number, err)
				}
			}()
		}
	}

	exists, err := s.roundRepo.ExistsByNumber(ctx, nil, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check stage %d: %w", number, err)
	}
	if exists {
		return nil, apperrors.NewStageExists(number)
	}

	var (
		teams  []tabulation.Standing
		policy tabulation.PositionPolicy
	)
	if preliminary {
		teams, err = s.preliminaryOrder(ctx, number)
		policy = tabulation.PositionsRotating
	} else {
		teams, err = s.qualifiers(ctx, stage)
		policy = tabulation.PositionsByRank
	}
	if err != nil {
		return nil, err
	}

	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	draws, err := tabulation.DrawRooms(teams, rooms, policy, number)
	if err != nil {
		return nil, err
	}

	round := &entity.Round{Number: number, Name: s.plan.StageName(number)}
	assignments := make([]entity.RoundAssignment, len(draws))

	err = s.txManager.WithinTransaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.roundRepo.ExistsByNumber(ctx, tx, number)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewStageExists(number)
		}
		if err := s.roundRepo.Create(ctx, tx, round); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return apperrors.NewStageExists(number)
			}
			return err
		}
		for i, d := range draws {
			a := &assignments[i]
			a.RoundID = round.ID
			a.RoomID = d.RoomID
			for _, seat := range d.Seats {
				a.TeamAssignments = append(a.TeamAssignments, entity.TeamAssignment{
					RoundID:  round.ID,
					TeamID:   seat.TeamID,
					Position: seat.Position,
				})
			}
			if err := entity.ValidateLineup(a.TeamAssignments); err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
			}
			if err := s.assignmentRepo.Create(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsGenerationError(err); ok {
			return nil, err
		}
		log.Printf("[BracketService] Ошибка записи этапа %d, транзакция откачена: %v", number, err)
		return nil, fmt.Errorf("failed to generate stage %d: %w", number, err)
	}

	invalidateTabulation(ctx, s.cacheRepo)
	log.Printf("[BracketService] Этап %d (%s) создан: раунд ID=%d, комнат %d", number, round.Name, round.ID, len(assignments))

	round.Assignments = assignments
	return &GenerationResult{
		Round:       round,
		Assignments: assignments,
		Qualifiers:  qualifiedTeams(teams, draws),
	}, nil
}

// qualifiers считает рейтинг по исходным раундам этапа и берёт первые stage.Qualifiers
func (s *BracketService) qualifiers(ctx context.Context, stage tabulation.Stage) ([]tabulation.Standing, error) {
	standings, err := s.standingsOf(ctx, stage.Number)
	if err != nil {
		return nil, err
	}
	return tabulation.SelectQualifiers(standings, stage.Qualifiers, stage.Number)
}

// preliminaryOrder возвращает порядок команд для отборочного раунда. Первый раунд идёт
// по ID, далее по текущему рейтингу (пары по силе). Команды без результатов идут в конце.
func (s *BracketService) preliminaryOrder(ctx context.Context, number int) ([]tabulation.Standing, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	if len(teams) < entity.TeamsPerRoom {
		return nil, apperrors.NewInsufficientTeams(number, entity.TeamsPerRoom, len(teams))
	}
	if len(teams)%entity.TeamsPerRoom != 0 {
		return nil, fmt.Errorf("%w: %d registered teams cannot be split into rooms of %d",
			apperrors.ErrValidation, len(teams), entity.TeamsPerRoom)
	}

	standings, err := s.standingsOf(ctx, number)
	if err != nil {
		return nil, err
	}
	order := make([]tabulation.Standing, 0, len(teams))
	placed := make(map[uint]bool, len(standings))
	for _, st := range standings {
		placed[st.TeamID] = true
		order = append(order, st)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	for _, t := range teams {
		if !placed[t.ID] {
			order = append(order, tabulation.Standing{TeamID: t.ID, TeamName: t.Name})
		}
	}
	return order, nil
}

// standingsOf строит общий рейтинг по исходным раундам этапа number.
// Каждый исходный раунд должен существовать и быть оценён во всех комнатах.
func (s *BracketService) standingsOf(ctx context.Context, number int) ([]tabulation.Standing, error) {
	numbers := s.plan.SourceNumbers(number)
	if len(numbers) == 0 {
		return nil, nil
	}
	rounds, err := s.roundRepo.ListByNumbers(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to load source rounds: %w", err)
	}
	inputs, participantTeams, err := s.loader.load(ctx, rounds)
	if err != nil {
		return nil, err
	}
	if err := s.requireScoredSources(number, numbers, inputs, participantTeams); err != nil {
		return nil, err
	}
	return tabulation.BuildStandings(s.plan, inputs, participantTeams), nil
}

// requireScoredSources проверяет, что все исходные раунды созданы и оценены полностью
func (s *BracketService) requireScoredSources(number int, numbers []int, inputs []tabulation.RoundInput, participantTeams map[uint]uint) error {
	byNumber := make(map[int]tabulation.RoundInput, len(inputs))
	for _, in := range inputs {
		byNumber[in.Round.Number] = in
	}
	for _, n := range numbers {
		in, ok := byNumber[n]
		if !ok {
			return apperrors.NewSourceIncomplete(number, n, 0, 0)
		}
		rooms := len(in.Assignments)
		if in.Round.IsCompleted() && rooms > 0 {
			continue
		}
		scored := 0
		for _, rr := range tabulation.RankRound(s.plan.ScoringModeFor(n), in, participantTeams) {
			if rr.Scored {
				scored++
			}
		}
		if rooms == 0 || scored < rooms {
			return apperrors.NewSourceIncomplete(number, n, rooms, scored)
		}
	}
	return nil
}

func qualifiedTeams(teams []tabulation.Standing, draws []tabulation.RoomDraw) []QualifiedTeam {
	byTeam := make(map[uint]tabulation.Standing, len(teams))
	for _, t := range teams {
		byTeam[t.TeamID] = t
	}
	out := make([]QualifiedTeam, 0, len(teams))
	for _, d := range draws {
		for _, seat := range d.Seats {
			st := byTeam[seat.TeamID]
			out = append(out, QualifiedTeam{
				Seed:       seat.Seed,
				TeamID:     seat.TeamID,
				TeamName:   seat.TeamName,
				Points:     st.Points,
				TotalScore: st.TotalScore,
				RoomID:     d.RoomID,
				RoomName:   d.RoomName,
				Position:   seat.Position,
			})
		}
	}
	return out
}
