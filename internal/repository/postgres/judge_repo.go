package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// JudgeRepo реализует repository.JudgeRepository
type JudgeRepo struct {
	db *gorm.DB
}

// NewJudgeRepo создает новый репозиторий судей
func NewJudgeRepo(db *gorm.DB) *JudgeRepo {
	return &JudgeRepo{db: db}
}

func (r *JudgeRepo) Create(ctx context.Context, judge *entity.Judge) error {
	if err := r.db.WithContext(ctx).Create(judge).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: judge with subject %q already exists", apperrors.ErrConflict, judge.ExternalSubject)
		}
		return fmt.Errorf("create judge: %w", err)
	}
	return nil
}

func (r *JudgeRepo) GetByID(ctx context.Context, id uint) (*entity.Judge, error) {
	var judge entity.Judge
	if err := r.db.WithContext(ctx).First(&judge, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &judge, nil
}

// GetBySubject ищет судью по claim "sub" токена
func (r *JudgeRepo) GetBySubject(ctx context.Context, subject string) (*entity.Judge, error) {
	var judge entity.Judge
	if err := r.db.WithContext(ctx).Where("external_subject = ?", subject).First(&judge).Error; err != nil {
		return nil, notFound(err)
	}
	return &judge, nil
}

func (r *JudgeRepo) List(ctx context.Context) ([]entity.Judge, error) {
	var judges []entity.Judge
	err := r.db.WithContext(ctx).Order("id").Find(&judges).Error
	return judges, err
}

func (r *JudgeRepo) Update(ctx context.Context, judge *entity.Judge) error {
	res := r.db.WithContext(ctx).Model(&entity.Judge{}).Where("id = ?", judge.ID).
		Updates(map[string]interface{}{"name": judge.Name, "external_subject": judge.ExternalSubject})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return fmt.Errorf("%w: judge with subject %q already exists", apperrors.ErrConflict, judge.ExternalSubject)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет судью, если он не назначен ни в одну комнату
func (r *JudgeRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&entity.AssignmentJudge{}).Where("judge_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: judge %d is assigned to a room", apperrors.ErrConflict, id)
		}
		res := tx.Delete(&entity.Judge{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
