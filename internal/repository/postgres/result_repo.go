package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий итогов комнат
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// ReplaceForRound перезаписывает итоги раунда
func (r *ResultRepo) ReplaceForRound(ctx context.Context, tx *gorm.DB, roundID uint, results []entity.MatchResult) error {
	db := executor(ctx, r.db, tx)
	if err := db.Where("round_id = ?", roundID).Delete(&entity.MatchResult{}).Error; err != nil {
		return fmt.Errorf("clear results of round %d: %w", roundID, err)
	}
	if len(results) == 0 {
		return nil
	}
	for i := range results {
		results[i].RoundID = roundID
	}
	if err := db.Create(&results).Error; err != nil {
		return fmt.Errorf("save results of round %d: %w", roundID, err)
	}
	return nil
}

// ListByRound возвращает итоги раунда по комнатам и местам
func (r *ResultRepo) ListByRound(ctx context.Context, roundID uint) ([]entity.MatchResult, error) {
	var results []entity.MatchResult
	err := r.db.WithContext(ctx).Where("round_id = ?", roundID).
		Order("round_assignment_id, rank").Find(&results).Error
	return results, err
}
