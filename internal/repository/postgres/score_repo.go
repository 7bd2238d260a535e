package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// ScoreRepo реализует repository.ScoreRepository
type ScoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo создает новый репозиторий оценок
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// CreateSubmission фиксирует отправку. Уникальный lock_key отвергает повтор.
func (r *ScoreRepo) CreateSubmission(ctx context.Context, tx *gorm.DB, submission *entity.ScoreSubmission) error {
	if err := executor(ctx, r.db, tx).Create(submission).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: scores for round %d were already submitted", apperrors.ErrConflict, submission.RoundID)
		}
		return fmt.Errorf("create score submission: %w", err)
	}
	return nil
}

func (r *ScoreRepo) SubmissionExists(ctx context.Context, lockKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ScoreSubmission{}).Where("lock_key = ?", lockKey).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ScoreRepo) CreateScores(ctx context.Context, tx *gorm.DB, scores []entity.Score) error {
	if len(scores) == 0 {
		return nil
	}
	if err := executor(ctx, r.db, tx).Create(&scores).Error; err != nil {
		return fmt.Errorf("create scores: %w", err)
	}
	return nil
}

func (r *ScoreRepo) ListByRound(ctx context.Context, roundID uint) ([]entity.Score, error) {
	return r.ListByRounds(ctx, []uint{roundID})
}

func (r *ScoreRepo) ListByRounds(ctx context.Context, roundIDs []uint) ([]entity.Score, error) {
	var scores []entity.Score
	if len(roundIDs) == 0 {
		return scores, nil
	}
	err := r.db.WithContext(ctx).Where("round_id IN ?", roundIDs).Order("id").Find(&scores).Error
	return scores, err
}

func (r *ScoreRepo) ListSubmissionsByRound(ctx context.Context, roundID uint) ([]entity.ScoreSubmission, error) {
	var subs []entity.ScoreSubmission
	err := r.db.WithContext(ctx).Where("round_id = ?", roundID).Order("id").Find(&subs).Error
	return subs, err
}

func (r *ScoreRepo) CountByRound(ctx context.Context, roundID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Score{}).Where("round_id = ?", roundID).Count(&count).Error
	return count, err
}
