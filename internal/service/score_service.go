package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/domain/repository"
	"github.com/yourusername/debate-tab/internal/metrics"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// ScoreBounds: допустимые диапазоны оценок
type ScoreBounds struct {
	TeamMin       float64
	TeamMax       float64
	IndividualMin float64
	IndividualMax float64
}

// ScoreInput: одна оценка из запроса судьи
type ScoreInput struct {
	TeamID        *uint
	ParticipantID *uint
	Value         float64
}

// SubmissionResult: принятая отправка оценок
type SubmissionResult struct {
	Submission *entity.ScoreSubmission `json:"submission"`
	Scores     []entity.Score          `json:"scores"`
}

// ScoreService принимает оценки судей
type ScoreService struct {
	plan           tabulation.Plan
	bounds         ScoreBounds
	assignmentRepo repository.AssignmentRepository
	scoreRepo      repository.ScoreRepository
	txManager      repository.TxManager
	cacheRepo      repository.CacheRepository
	metrics        *metrics.Recorder
}

// NewScoreService создает сервис оценок
func NewScoreService(
	plan tabulation.Plan,
	bounds ScoreBounds,
	assignmentRepo repository.AssignmentRepository,
	scoreRepo repository.ScoreRepository,
	txManager repository.TxManager,
	cacheRepo repository.CacheRepository,
	recorder *metrics.Recorder,
) *ScoreService {
	return &ScoreService{
		plan:           plan,
		bounds:         bounds,
		assignmentRepo: assignmentRepo,
		scoreRepo:      scoreRepo,
		txManager:      txManager,
		cacheRepo:      cacheRepo,
		metrics:        recorder,
	}
}

// SubmitScores сохраняет оценки судьи judgeID за комнату assignmentID.
// Либо сохраняется вся отправка, либо ничего.
func (s *ScoreService) SubmitScores(ctx context.Context, judgeID, assignmentID uint, inputs []ScoreInput) (*SubmissionResult, error) {
	result, err := s.submit(ctx, judgeID, assignmentID, inputs)
	switch {
	case err == nil:
		s.metrics.ScoreSubmitted(metrics.ResultOK)
	case errors.Is(err, apperrors.ErrConflict):
		s.metrics.ScoreSubmitted(metrics.ResultConflict)
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrNotFound):
		s.metrics.ScoreSubmitted(metrics.ResultRejected)
	default:
		s.metrics.ScoreSubmitted(metrics.ResultError)
	}
	return result, err
}

func (s *ScoreService) submit(ctx context.Context, judgeID, assignmentID uint, inputs []ScoreInput) (*SubmissionResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no scores submitted", apperrors.ErrValidation)
	}
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	round := assignment.Round
	if round == nil {
		return nil, fmt.Errorf("assignment %d has no round loaded", assignmentID)
	}
	if round.IsCompleted() {
		return nil, fmt.Errorf("%w: round %d is already completed", apperrors.ErrConflict, round.Number)
	}
	if !assignment.HasJudge(judgeID) {
		return nil, fmt.Errorf("%w: judge %d is not assigned to room %d", apperrors.ErrForbidden, judgeID, assignmentID)
	}

	mode := s.plan.ScoringModeFor(round.Number)
	var scores []entity.Score
	if mode == tabulation.ScoringTeam {
		scores, err = s.teamScores(assignment, inputs)
	} else {
		scores, err = s.individualScores(assignment, inputs)
	}
	if err != nil {
		return nil, err
	}

	lockKey := entity.SubmissionLockKey(round.ID, judgeID, s.plan.IsMultiJudge(round.Number))
	exists, err := s.scoreRepo.SubmissionExists(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous submission: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: scores for round %d were already submitted", apperrors.ErrConflict, round.Number)
	}

	submission := &entity.ScoreSubmission{
		RoundID:           round.ID,
		RoundAssignmentID: assignment.ID,
		JudgeID:           judgeID,
		LockKey:           lockKey,
	}
	err = s.txManager.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.scoreRepo.CreateSubmission(ctx, tx, submission); err != nil {
			return err
		}
		for i := range scores {
			scores[i].SubmissionID = submission.ID
			scores[i].RoundID = round.ID
			scores[i].RoundAssignmentID = assignment.ID
			scores[i].JudgeID = judgeID
		}
		return s.scoreRepo.CreateScores(ctx, tx, scores)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			log.Printf("[ScoreService] Ошибка сохранения оценок судьи %d за комнату %d: %v", judgeID, assignmentID, err)
		}
		return nil, err
	}

	invalidateTabulation(ctx, s.cacheRepo)
	log.Printf("[ScoreService] Судья %d отправил %d оценок за комнату %d (раунд %d)", judgeID, len(scores), assignmentID, round.Number)
	return &SubmissionResult{Submission: submission, Scores: scores}, nil
}

// teamScores проверяет командные оценки: ровно одна на каждую команду комнаты
func (s *ScoreService) teamScores(a *entity.RoundAssignment, inputs []ScoreInput) ([]entity.Score, error) {
	inRoom := make(map[uint]bool, len(a.TeamAssignments))
	for _, ta := range a.TeamAssignments {
		inRoom[ta.TeamID] = true
	}
	if len(inputs) != len(inRoom) {
		return nil, fmt.Errorf("%w: expected %d team scores, got %d", apperrors.ErrValidation, len(inRoom), len(inputs))
	}

	seen := make(map[uint]bool, len(inputs))
	scores := make([]entity.Score, 0, len(inputs))
	for _, in := range inputs {
		if in.TeamID == nil || in.ParticipantID != nil {
			return nil, fmt.Errorf("%w: team scores must reference a team only", apperrors.ErrValidation)
		}
		teamID := *in.TeamID
		if !inRoom[teamID] {
			return nil, fmt.Errorf("%w: team %d is not in this room", apperrors.ErrValidation, teamID)
		}
		if seen[teamID] {
			return nil, fmt.Errorf("%w: team %d is scored twice", apperrors.ErrValidation, teamID)
		}
		if err := checkRange(in.Value, s.bounds.TeamMin, s.bounds.TeamMax); err != nil {
			return nil, err
		}
		seen[teamID] = true
		scores = append(scores, entity.Score{Type: entity.ScoreTypeTeam, TeamID: &teamID, Value: in.Value})
	}
	return scores, nil
}

// individualScores проверяет оценки спикеров: каждый спикер комнаты оценён ровно один раз.
// Команда строки берётся из состава, а не из запроса.
func (s *ScoreService) individualScores(a *entity.RoundAssignment, inputs []ScoreInput) ([]entity.Score, error) {
	speakerTeam := make(map[uint]uint)
	for _, ta := range a.TeamAssignments {
		if ta.Team == nil {
			continue
		}
		for _, p := range ta.Team.Participants {
			speakerTeam[p.ID] = ta.TeamID
		}
	}
	if len(inputs) != len(speakerTeam) {
		return nil, fmt.Errorf("%w: expected %d speaker scores, got %d", apperrors.ErrValidation, len(speakerTeam), len(inputs))
	}

	seen := make(map[uint]bool, len(inputs))
	scores := make([]entity.Score, 0, len(inputs))
	for _, in := range inputs {
		if in.ParticipantID == nil {
			return nil, fmt.Errorf("%w: speaker scores must reference a participant", apperrors.ErrValidation)
		}
		participantID := *in.ParticipantID
		teamID, ok := speakerTeam[participantID]
		if !ok {
			return nil, fmt.Errorf("%w: participant %d is not in this room", apperrors.ErrValidation, participantID)
		}
		if in.TeamID != nil && *in.TeamID != teamID {
			return nil, fmt.Errorf("%w: participant %d does not belong to team %d", apperrors.ErrValidation, participantID, *in.TeamID)
		}
		if seen[participantID] {
			return nil, fmt.Errorf("%w: participant %d is scored twice", apperrors.ErrValidation, participantID)
		}
		if err := checkRange(in.Value, s.bounds.IndividualMin, s.bounds.IndividualMax); err != nil {
			return nil, err
		}
		seen[participantID] = true
		team := teamID
		scores = append(scores, entity.Score{
			Type:          entity.ScoreTypeIndividual,
			TeamID:        &team,
			ParticipantID: &participantID,
			Value:         in.Value,
		})
	}
	return scores, nil
}

func checkRange(v, min, max float64) error {
	if v < min || v > max {
		return fmt.Errorf("%w: score %.1f is out of range [%.1f, %.1f]", apperrors.ErrValidation, v, min, max)
	}
	return nil
}
