package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/domain/repository"
	"github.com/yourusername/debate-tab/internal/metrics"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// RoundStatus: степень заполненности раунда оценками
type RoundStatus struct {
	RoundID     uint    `json:"round_id"`
	Number      int     `json:"number"`
	Name        string  `json:"name"`
	Teams       int     `json:"teams"`
	ScoredTeams int     `json:"scored_teams"`
	Rooms       int     `json:"rooms"`
	ScoredRooms int     `json:"scored_rooms"`
	Results     int     `json:"results"`
	Percent     float64 `json:"percent"`
	State       string  `json:"state"`
}

// StageInfo: этап плана и его текущее состояние
type StageInfo struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Preliminary bool   `json:"preliminary"`
	Qualifiers  int    `json:"qualifiers,omitempty"`
	ScoringMode string `json:"scoring_mode"`
	MultiJudge  bool   `json:"multi_judge"`
	RoundID     *uint  `json:"round_id,omitempty"`
	State       string `json:"state"`
}

// BracketTeam: команда в комнате с итогом, если комната оценена
type BracketTeam struct {
	TeamID     uint            `json:"team_id"`
	TeamName   string          `json:"team_name"`
	Position   entity.Position `json:"position"`
	Rank       int             `json:"rank,omitempty"`
	Points     int             `json:"points,omitempty"`
	TotalScore float64         `json:"total_score,omitempty"`
}

// BracketRoom: комната раунда
type BracketRoom struct {
	AssignmentID uint           `json:"assignment_id"`
	RoomID       uint           `json:"room_id"`
	RoomName     string         `json:"room_name"`
	Scored       bool           `json:"scored"`
	Teams        []BracketTeam  `json:"teams"`
	Judges       []entity.Judge `json:"judges"`
}

// BracketView: сетка раунда
type BracketView struct {
	Round *entity.Round `json:"round"`
	Rooms []BracketRoom `json:"rooms"`
}

// TeamSlot: команда и позиция при ручном создании комнаты
type TeamSlot struct {
	TeamID   uint
	Position entity.Position
}

// RoundService управляет раундами, комнатами и их жизненным циклом
type RoundService struct {
	plan           tabulation.Plan
	roundRepo      repository.RoundRepository
	assignmentRepo repository.AssignmentRepository
	scoreRepo      repository.ScoreRepository
	resultRepo     repository.ResultRepository
	judgeRepo      repository.JudgeRepository
	txManager      repository.TxManager
	cacheRepo      repository.CacheRepository
	metrics        *metrics.Recorder
	loader         resultsLoader
}

// NewRoundService создает сервис раундов
func NewRoundService(
	plan tabulation.Plan,
	roundRepo repository.RoundRepository,
	assignmentRepo repository.AssignmentRepository,
	scoreRepo repository.ScoreRepository,
	resultRepo repository.ResultRepository,
	teamRepo repository.TeamRepository,
	judgeRepo repository.JudgeRepository,
	txManager repository.TxManager,
	cacheRepo repository.CacheRepository,
	recorder *metrics.Recorder,
) *RoundService {
	return &RoundService{
		plan:           plan,
		roundRepo:      roundRepo,
		assignmentRepo: assignmentRepo,
		scoreRepo:      scoreRepo,
		resultRepo:     resultRepo,
		judgeRepo:      judgeRepo,
		txManager:      txManager,
		cacheRepo:      cacheRepo,
		metrics:        recorder,
		loader: resultsLoader{
			assignmentRepo: assignmentRepo,
			scoreRepo:      scoreRepo,
			teamRepo:       teamRepo,
		},
	}
}

func (s *RoundService) ListRounds(ctx context.Context) ([]entity.Round, error) {
	return s.roundRepo.List(ctx)
}

func (s *RoundService) GetRound(ctx context.Context, id uint) (*entity.Round, error) {
	return s.roundRepo.GetByID(ctx, id)
}

// CreateRound вручную создает пустой отборочный раунд.
// Этапы плей-офф создаются только генерацией.
func (s *RoundService) CreateRound(ctx context.Context, number int, name, motion, infoSlide string) (*entity.Round, error) {
	if !s.plan.IsPreliminary(number) {
		return nil, fmt.Errorf("%w: round %d is not a preliminary round; generate elimination stages instead", apperrors.ErrValidation, number)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.plan.StageName(number)
	}
	round := &entity.Round{Number: number, Name: name, Motion: motion, InfoSlide: infoSlide}
	if err := s.roundRepo.Create(ctx, nil, round); err != nil {
		return nil, err
	}
	log.Printf("[RoundService] Раунд %d создан вручную (ID=%d)", number, round.ID)
	return round, nil
}

// UpdateRound обновляет название, тему и инфослайд
func (s *RoundService) UpdateRound(ctx context.Context, id uint, name, motion, infoSlide string) (*entity.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		round.Name = strings.TrimSpace(name)
	}
	round.Motion = motion
	round.InfoSlide = infoSlide
	if err := s.roundRepo.Update(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *RoundService) DeleteRound(ctx context.Context, id uint) error {
	if err := s.roundRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateTabulation(ctx, s.cacheRepo)
	return nil
}

// CreateAssignment вручную создает комнату раунда с четырьмя командами
func (s *RoundService) CreateAssignment(ctx context.Context, roundID, roomID uint, slots []TeamSlot) (*entity.RoundAssignment, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.IsCompleted() {
		return nil, fmt.Errorf("%w: round %d is already completed", apperrors.ErrConflict, round.Number)
	}
	// Состав плей-офф фиксируется при генерации этапа
	if !s.plan.IsPreliminary(round.Number) {
		return nil, fmt.Errorf("%w: rooms can be added manually only to preliminary rounds, round %d is an elimination stage", apperrors.ErrValidation, round.Number)
	}

	a := &entity.RoundAssignment{RoundID: roundID, RoomID: roomID}
	for _, slot := range slots {
		a.TeamAssignments = append(a.TeamAssignments, entity.TeamAssignment{
			RoundID:  roundID,
			TeamID:   slot.TeamID,
			Position: slot.Position,
		})
	}
	if err := entity.ValidateLineup(a.TeamAssignments); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	err = s.txManager.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return s.assignmentRepo.Create(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	invalidateTabulation(ctx, s.cacheRepo)
	return s.assignmentRepo.GetByID(ctx, a.ID)
}

func (s *RoundService) GetAssignment(ctx context.Context, id uint) (*entity.RoundAssignment, error) {
	return s.assignmentRepo.GetByID(ctx, id)
}

func (s *RoundService) DeleteAssignment(ctx context.Context, id uint) error {
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateTabulation(ctx, s.cacheRepo)
	return nil
}

// SetJudges заменяет судей комнаты. Вне этапов с несколькими судьями в комнате
// ровно один судья, он судит только одну комнату раунда, а после его оценок
// состав судей комнаты не меняется.
func (s *RoundService) SetJudges(ctx context.Context, assignmentID uint, judgeIDs []uint) (*entity.RoundAssignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Round != nil && a.Round.IsCompleted() {
		return nil, fmt.Errorf("%w: round %d is already completed", apperrors.ErrConflict, a.Round.Number)
	}

	seen := make(map[uint]bool, len(judgeIDs))
	for _, id := range judgeIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: judge %d listed twice", apperrors.ErrValidation, id)
		}
		seen[id] = true
		if _, err := s.judgeRepo.GetByID(ctx, id); err != nil {
			return nil, fmt.Errorf("judge %d: %w", id, err)
		}
	}

	multiJudge := a.Round != nil && s.plan.IsMultiJudge(a.Round.Number)
	if !multiJudge {
		if len(judgeIDs) > 1 {
			return nil, fmt.Errorf("%w: round %d allows one judge per room, got %d", apperrors.ErrValidation, a.RoundID, len(judgeIDs))
		}
		subs, err := s.scoreRepo.ListSubmissionsByRound(ctx, a.RoundID)
		if err != nil {
			return nil, fmt.Errorf("failed to load submissions: %w", err)
		}
		for _, sub := range subs {
			if sub.RoundAssignmentID == a.ID {
				return nil, fmt.Errorf("%w: room %d is already scored, its judge cannot be changed", apperrors.ErrConflict, a.ID)
			}
		}
	}
	err = s.txManager.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if !multiJudge {
			for _, id := range judgeIDs {
				rooms, err := s.assignmentRepo.JudgeRooms(ctx, tx, a.RoundID, id)
				if err != nil {
					return err
				}
				for _, roomAssignment := range rooms {
					if roomAssignment != a.ID {
						return fmt.Errorf("%w: judge %d already judges another room in this round", apperrors.ErrConflict, id)
					}
				}
			}
		}
		return s.assignmentRepo.ReplaceJudges(ctx, tx, a.ID, a.RoundID, judgeIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.assignmentRepo.GetByID(ctx, a.ID)
}

// rankRound загружает раунд и ранжирует его комнаты
func (s *RoundService) rankRound(ctx context.Context, round *entity.Round) (tabulation.RoundInput, []tabulation.RoomRanking, error) {
	inputs, participantTeams, err := s.loader.load(ctx, []entity.Round{*round})
	if err != nil {
		return tabulation.RoundInput{}, nil, err
	}
	in := inputs[0]
	return in, tabulation.RankRound(s.plan.ScoringModeFor(round.Number), in, participantTeams), nil
}

// Status возвращает заполненность раунда оценками и его состояние
func (s *RoundService) Status(ctx context.Context, roundID uint) (*RoundStatus, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	in, rankings, err := s.rankRound(ctx, round)
	if err != nil {
		return nil, err
	}
	subs, err := s.scoreRepo.ListSubmissionsByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	return buildStatus(round, in, rankings, len(subs)), nil
}

func buildStatus(round *entity.Round, in tabulation.RoundInput, rankings []tabulation.RoomRanking, submissions int) *RoundStatus {
	st := &RoundStatus{
		RoundID: round.ID,
		Number:  round.Number,
		Name:    round.Name,
		Rooms:   len(in.Assignments),
		Results: submissions,
	}
	for _, a := range in.Assignments {
		st.Teams += len(a.TeamAssignments)
	}
	for _, rr := range rankings {
		if rr.Scored {
			st.ScoredRooms++
			st.ScoredTeams += len(rr.Results)
		}
	}
	if st.Teams > 0 {
		st.Percent = float64(st.ScoredTeams) * 100 / float64(st.Teams)
	}
	switch {
	case round.IsCompleted():
		st.State = entity.StageStateCompleted
	case st.Rooms > 0 && st.ScoredRooms == st.Rooms:
		st.State = entity.StageStateScored
	default:
		st.State = entity.StageStateCreated
	}
	return st
}

// Stages возвращает этапы плана (отборочные раунды и плей-офф) с текущим состоянием
func (s *RoundService) Stages(ctx context.Context) ([]StageInfo, error) {
	rounds, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[int]entity.Round, len(rounds))
	for _, r := range rounds {
		byNumber[r.Number] = r
	}

	var infos []StageInfo
	add := func(info StageInfo) error {
		info.State = entity.StageStateNotCreated
		if r, ok := byNumber[info.Number]; ok {
			st, err := s.Status(ctx, r.ID)
			if err != nil {
				return err
			}
			id := r.ID
			info.RoundID = &id
			info.State = st.State
		}
		infos = append(infos, info)
		return nil
	}
	for n := 1; n <= s.plan.PreliminaryRounds; n++ {
		err := add(StageInfo{
			Number:      n,
			Name:        s.plan.StageName(n),
			Preliminary: true,
			ScoringMode: string(s.plan.PreliminaryScoring),
		})
		if err != nil {
			return nil, err
		}
	}
	for _, stage := range s.plan.Stages {
		err := add(StageInfo{
			Number:      stage.Number,
			Name:        stage.Name,
			Qualifiers:  stage.Qualifiers,
			ScoringMode: string(stage.ScoringMode),
			MultiJudge:  stage.MultiJudge,
		})
		if err != nil {
			return nil, err
		}
	}
	return infos, nil
}

// Standings возвращает места, очки и суммы по каждой комнате раунда
func (s *RoundService) Standings(ctx context.Context, roundID uint) ([]tabulation.RoomRanking, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	_, rankings, err := s.rankRound(ctx, round)
	return rankings, err
}

// Bracket возвращает сетку раунда с позициями, судьями и итогами
func (s *RoundService) Bracket(ctx context.Context, roundID uint) (*BracketView, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	in, rankings, err := s.rankRound(ctx, round)
	if err != nil {
		return nil, err
	}

	view := &BracketView{Round: round, Rooms: make([]BracketRoom, 0, len(in.Assignments))}
	for i, a := range in.Assignments {
		room := BracketRoom{
			AssignmentID: a.ID,
			RoomID:       a.RoomID,
			RoomName:     rankings[i].RoomName,
			Scored:       rankings[i].Scored,
			Judges:       []entity.Judge{},
		}
		results := make(map[uint]tabulation.RoomResult, len(rankings[i].Results))
		for _, r := range rankings[i].Results {
			results[r.TeamID] = r
		}
		for _, ta := range a.OrderedTeams() {
			bt := BracketTeam{TeamID: ta.TeamID, Position: ta.Position}
			if ta.Team != nil {
				bt.TeamName = ta.Team.Name
			}
			if r, ok := results[ta.TeamID]; ok {
				bt.Rank, bt.Points, bt.TotalScore = r.Rank, r.Points, r.TotalScore
			}
			room.Teams = append(room.Teams, bt)
		}
		for _, j := range a.Judges {
			if j.Judge != nil {
				room.Judges = append(room.Judges, *j.Judge)
			}
		}
		view.Rooms = append(view.Rooms, room)
	}
	return view, nil
}

// CompleteRound переводит полностью оценённый раунд в завершённое состояние
// и сохраняет итоги комнат
func (s *RoundService) CompleteRound(ctx context.Context, roundID uint) (*RoundStatus, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.IsCompleted() {
		return nil, fmt.Errorf("%w: round %d is already completed", apperrors.ErrConflict, round.Number)
	}
	in, rankings, err := s.rankRound(ctx, round)
	if err != nil {
		return nil, err
	}
	subs, err := s.scoreRepo.ListSubmissionsByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	status := buildStatus(round, in, rankings, len(subs))
	if status.State != entity.StageStateScored {
		return nil, fmt.Errorf("%w: round %d is not fully scored (%d of %d rooms)",
			apperrors.ErrConflict, round.Number, status.ScoredRooms, status.Rooms)
	}

	var results []entity.MatchResult
	for _, rr := range rankings {
		for _, r := range rr.Results {
			results = append(results, entity.MatchResult{
				RoundID:           round.ID,
				RoundAssignmentID: rr.RoundAssignmentID,
				TeamID:            r.TeamID,
				Rank:              r.Rank,
				Points:            r.Points,
				TotalScore:        r.TotalScore,
			})
		}
	}

	now := time.Now().UTC()
	err = s.txManager.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.roundRepo.MarkCompleted(ctx, tx, round.ID, now); err != nil {
			return err
		}
		return s.resultRepo.ReplaceForRound(ctx, tx, round.ID, results)
	})
	if err != nil {
		return nil, err
	}

	invalidateTabulation(ctx, s.cacheRepo)
	s.metrics.RoundCompleted()
	log.Printf("[RoundService] Раунд %d завершён, сохранено итогов: %d", round.Number, len(results))

	status.State = entity.StageStateCompleted
	return status, nil
}

// Results возвращает сохранённые итоги завершённого раунда
func (s *RoundService) Results(ctx context.Context, roundID uint) ([]entity.MatchResult, error) {
	if _, err := s.roundRepo.GetByID(ctx, roundID); err != nil {
		return nil, err
	}
	return s.resultRepo.ListByRound(ctx, roundID)
}
