package repository

import (
	"context"
	"time"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"gorm.io/gorm"
)

// Методы, принимающие tx *gorm.DB, выполняются в транзакции вызывающего;
// при tx == nil используется собственное подключение репозитория.

// RoundRepository определяет методы для работы с раундами
type RoundRepository interface {
	// Create возвращает ErrConflict, если раунд с таким номером уже есть
	Create(ctx context.Context, tx *gorm.DB, round *entity.Round) error
	GetByID(ctx context.Context, id uint) (*entity.Round, error)
	GetByNumber(ctx context.Context, number int) (*entity.Round, error)
	ExistsByNumber(ctx context.Context, tx *gorm.DB, number int) (bool, error)
	// List возвращает раунды по возрастанию номера
	List(ctx context.Context) ([]entity.Round, error)
	ListByNumbers(ctx context.Context, numbers []int) ([]entity.Round, error)
	Update(ctx context.Context, round *entity.Round) error
	// MarkCompleted возвращает ErrConflict, если раунд уже завершён
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

// AssignmentRepository определяет методы для работы с комнатами раунда
type AssignmentRepository interface {
	// Create сохраняет комнату вместе с TeamAssignments
	Create(ctx context.Context, tx *gorm.DB, assignment *entity.RoundAssignment) error
	// GetByID загружает комнату с раундом, аудиторией, командами и судьями
	GetByID(ctx context.Context, id uint) (*entity.RoundAssignment, error)
	ListByRound(ctx context.Context, roundID uint) ([]entity.RoundAssignment, error)
	ListByRounds(ctx context.Context, roundIDs []uint) ([]entity.RoundAssignment, error)
	// ReplaceJudges заменяет состав судей комнаты
	ReplaceJudges(ctx context.Context, tx *gorm.DB, assignmentID, roundID uint, judgeIDs []uint) error
	// JudgeRooms возвращает комнаты раунда, где назначен судья
	JudgeRooms(ctx context.Context, tx *gorm.DB, roundID, judgeID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
}

// ScoreRepository определяет методы для работы с оценками
type ScoreRepository interface {
	// CreateSubmission возвращает ErrConflict при повторной отправке (уникальный LockKey)
	CreateSubmission(ctx context.Context, tx *gorm.DB, submission *entity.ScoreSubmission) error
	SubmissionExists(ctx context.Context, lockKey string) (bool, error)
	CreateScores(ctx context.Context, tx *gorm.DB, scores []entity.Score) error
	ListByRound(ctx context.Context, roundID uint) ([]entity.Score, error)
	ListByRounds(ctx context.Context, roundIDs []uint) ([]entity.Score, error)
	ListSubmissionsByRound(ctx context.Context, roundID uint) ([]entity.ScoreSubmission, error)
	CountByRound(ctx context.Context, roundID uint) (int64, error)
}

// ResultRepository определяет методы для работы с итогами комнат
type ResultRepository interface {
	ReplaceForRound(ctx context.Context, tx *gorm.DB, roundID uint, results []entity.MatchResult) error
	ListByRound(ctx context.Context, roundID uint) ([]entity.MatchResult, error)
}

// TxManager выполняет функцию в одной транзакции БД
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
