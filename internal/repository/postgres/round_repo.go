package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// RoundRepo реализует repository.RoundRepository
type RoundRepo struct {
	db *gorm.DB
}

// NewRoundRepo создает новый репозиторий раундов
func NewRoundRepo(db *gorm.DB) *RoundRepo {
	return &RoundRepo{db: db}
}

// Create создает раунд. Уникальный индекс по number: последняя линия защиты
// от повторной генерации этапа: нарушение возвращается как ErrConflict.
func (r *RoundRepo) Create(ctx context.Context, tx *gorm.DB, round *entity.Round) error {
	if err := executor(ctx, r.db, tx).Omit("Assignments").Create(round).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: round #%d already exists", apperrors.ErrConflict, round.Number)
		}
		return fmt.Errorf("create round #%d: %w", round.Number, err)
	}
	return nil
}

func (r *RoundRepo) GetByID(ctx context.Context, id uint) (*entity.Round, error) {
	var round entity.Round
	if err := r.db.WithContext(ctx).First(&round, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &round, nil
}

func (r *RoundRepo) GetByNumber(ctx context.Context, number int) (*entity.Round, error) {
	var round entity.Round
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&round).Error; err != nil {
		return nil, notFound(err)
	}
	return &round, nil
}

func (r *RoundRepo) ExistsByNumber(ctx context.Context, tx *gorm.DB, number int) (bool, error) {
	var count int64
	err := executor(ctx, r.db, tx).Model(&entity.Round{}).Where("number = ?", number).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RoundRepo) List(ctx context.Context) ([]entity.Round, error) {
	var rounds []entity.Round
	err := r.db.WithContext(ctx).Order("number ASC").Find(&rounds).Error
	return rounds, err
}

func (r *RoundRepo) ListByNumbers(ctx context.Context, numbers []int) ([]entity.Round, error) {
	var rounds []entity.Round
	if len(numbers) == 0 {
		return rounds, nil
	}
	err := r.db.WithContext(ctx).Where("number IN ?", numbers).Order("number ASC").Find(&rounds).Error
	return rounds, err
}

// Update обновляет описательные поля раунда (название, тема, инфослайд)
func (r *RoundRepo) Update(ctx context.Context, round *entity.Round) error {
	res := r.db.WithContext(ctx).Model(&entity.Round{}).Where("id = ?", round.ID).
		Updates(map[string]interface{}{
			"name":       round.Name,
			"motion":     round.Motion,
			"info_slide": round.InfoSlide,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkCompleted переводит раунд в завершённое состояние.
// Условие completed = false делает переход однонаправленным.
func (r *RoundRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	res := executor(ctx, r.db, tx).Model(&entity.Round{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{"completed": true, "completed_at": at})
	if res.Error != nil {
		return fmt.Errorf("complete round %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: round %d is already completed", apperrors.ErrConflict, id)
	}
	return nil
}

// Delete удаляет раунд вместе с комнатами, если оценок ещё нет
func (r *RoundRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var scored int64
		if err := tx.Model(&entity.ScoreSubmission{}).Where("round_id = ?", id).Count(&scored).Error; err != nil {
			return err
		}
		if scored > 0 {
			return fmt.Errorf("%w: round %d already has scores", apperrors.ErrConflict, id)
		}
		if err := tx.Where("round_id = ?", id).Delete(&entity.TeamAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", id).Delete(&entity.AssignmentJudge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", id).Delete(&entity.RoundAssignment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Round{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
