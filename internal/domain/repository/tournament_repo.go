package repository

import (
	"context"

	"github.com/yourusername/debate-tab/internal/domain/entity"
)

// TeamRepository определяет методы для работы с командами и спикерами
type TeamRepository interface {
	Create(ctx context.Context, team *entity.Team) error
	GetByID(ctx context.Context, id uint) (*entity.Team, error)
	List(ctx context.Context) ([]entity.Team, error)
	Update(ctx context.Context, team *entity.Team) error
	Delete(ctx context.Context, id uint) error
	// ParticipantTeams возвращает соответствие participant_id → team_id
	ParticipantTeams(ctx context.Context) (map[uint]uint, error)
	ListParticipants(ctx context.Context) ([]entity.Participant, error)
}

// RoomRepository определяет методы для работы с аудиториями
type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id uint) (*entity.Room, error)
	// List возвращает аудитории по возрастанию ID
	List(ctx context.Context) ([]entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	Delete(ctx context.Context, id uint) error
}

// JudgeRepository определяет методы для работы с судьями
type JudgeRepository interface {
	Create(ctx context.Context, judge *entity.Judge) error
	GetByID(ctx context.Context, id uint) (*entity.Judge, error)
	GetBySubject(ctx context.Context, subject string) (*entity.Judge, error)
	List(ctx context.Context) ([]entity.Judge, error)
	Update(ctx context.Context, judge *entity.Judge) error
	Delete(ctx context.Context, id uint) error
}
