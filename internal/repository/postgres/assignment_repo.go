package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// AssignmentRepo реализует repository.AssignmentRepository
type AssignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo создает новый репозиторий комнат раунда
func NewAssignmentRepo(db *gorm.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// Create сохраняет комнату и её TeamAssignments. Нарушение уникальности
// (команда уже играет в раунде, позиция занята, аудитория занята): ErrConflict.
func (r *AssignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *entity.RoundAssignment) error {
	teams := assignment.TeamAssignments
	assignment.TeamAssignments = nil
	defer func() { assignment.TeamAssignments = teams }()

	db := executor(ctx, r.db, tx)
	if err := db.Omit("Round", "Room", "Judges").Create(assignment).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: room %d is already used in round %d", apperrors.ErrConflict, assignment.RoomID, assignment.RoundID)
		}
		return fmt.Errorf("create assignment: %w", err)
	}
	for i := range teams {
		teams[i].RoundAssignmentID = assignment.ID
		teams[i].RoundID = assignment.RoundID
	}
	if len(teams) == 0 {
		return nil
	}
	if err := db.Omit("Team").Create(&teams).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: team already assigned in round %d", apperrors.ErrConflict, assignment.RoundID)
		}
		return fmt.Errorf("create team assignments: %w", err)
	}
	return nil
}

func (r *AssignmentRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Round").
		Preload("Room").
		Preload("TeamAssignments.Team.Participants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Judges", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Judges.Judge")
}

func (r *AssignmentRepo) GetByID(ctx context.Context, id uint) (*entity.RoundAssignment, error) {
	var a entity.RoundAssignment
	if err := r.preloaded(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListByRound возвращает комнаты раунда в порядке создания
func (r *AssignmentRepo) ListByRound(ctx context.Context, roundID uint) ([]entity.RoundAssignment, error) {
	return r.ListByRounds(ctx, []uint{roundID})
}

func (r *AssignmentRepo) ListByRounds(ctx context.Context, roundIDs []uint) ([]entity.RoundAssignment, error) {
	var list []entity.RoundAssignment
	if len(roundIDs) == 0 {
		return list, nil
	}
	err := r.preloaded(ctx).Where("round_id IN ?", roundIDs).Order("round_id, id").Find(&list).Error
	return list, err
}

func (r *AssignmentRepo) ReplaceJudges(ctx context.Context, tx *gorm.DB, assignmentID, roundID uint, judgeIDs []uint) error {
	db := executor(ctx, r.db, tx)
	if err := db.Where("round_assignment_id = ?", assignmentID).Delete(&entity.AssignmentJudge{}).Error; err != nil {
		return fmt.Errorf("clear judges of assignment %d: %w", assignmentID, err)
	}
	if len(judgeIDs) == 0 {
		return nil
	}
	rows := make([]entity.AssignmentJudge, len(judgeIDs))
	for i, id := range judgeIDs {
		rows[i] = entity.AssignmentJudge{RoundAssignmentID: assignmentID, RoundID: roundID, JudgeID: id}
	}
	if err := db.Omit("Judge").Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: judge listed twice", apperrors.ErrValidation)
		}
		return fmt.Errorf("attach judges to assignment %d: %w", assignmentID, err)
	}
	return nil
}

func (r *AssignmentRepo) JudgeRooms(ctx context.Context, tx *gorm.DB, roundID, judgeID uint) ([]uint, error) {
	var ids []uint
	err := executor(ctx, r.db, tx).Model(&entity.AssignmentJudge{}).
		Where("round_id = ? AND judge_id = ?", roundID, judgeID).
		Pluck("round_assignment_id", &ids).Error
	return ids, err
}

// Delete удаляет комнату, если по ней ещё нет оценок
func (r *AssignmentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var scored int64
		if err := tx.Model(&entity.ScoreSubmission{}).Where("round_assignment_id = ?", id).Count(&scored).Error; err != nil {
			return err
		}
		if scored > 0 {
			return fmt.Errorf("%w: assignment %d already has scores", apperrors.ErrConflict, id)
		}
		if err := tx.Where("round_assignment_id = ?", id).Delete(&entity.TeamAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_assignment_id = ?", id).Delete(&entity.AssignmentJudge{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.RoundAssignment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
