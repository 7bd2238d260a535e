package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/domain/repository"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// ParticipantInput: спикер при создании или изменении команды.
// ID != 0 сохраняет существующего спикера вместе с его оценками.
type ParticipantInput struct {
	ID   uint
	Name string
}

// SetupService регистрирует команды, аудитории и судей
type SetupService struct {
	teamRepo  repository.TeamRepository
	roomRepo  repository.RoomRepository
	judgeRepo repository.JudgeRepository
	cacheRepo repository.CacheRepository
}

// NewSetupService создает сервис регистрации
func NewSetupService(
	teamRepo repository.TeamRepository,
	roomRepo repository.RoomRepository,
	judgeRepo repository.JudgeRepository,
	cacheRepo repository.CacheRepository,
) *SetupService {
	return &SetupService{
		teamRepo:  teamRepo,
		roomRepo:  roomRepo,
		judgeRepo: judgeRepo,
		cacheRepo: cacheRepo,
	}
}

func requireName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name is required", apperrors.ErrValidation, kind)
	}
	return name, nil
}

func buildParticipants(inputs []ParticipantInput) ([]entity.Participant, error) {
	participants := make([]entity.Participant, 0, len(inputs))
	for i, in := range inputs {
		name, err := requireName("participant", in.Name)
		if err != nil {
			return nil, err
		}
		participants = append(participants, entity.Participant{ID: in.ID, Name: name, SortOrder: i})
	}
	return participants, nil
}

// --- Команды ---

func (s *SetupService) CreateTeam(ctx context.Context, name, institution string, speakers []ParticipantInput) (*entity.Team, error) {
	name, err := requireName("team", name)
	if err != nil {
		return nil, err
	}
	participants, err := buildParticipants(speakers)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		participants[i].ID = 0
	}
	team := &entity.Team{Name: name, Institution: strings.TrimSpace(institution), Participants: participants}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *SetupService) GetTeam(ctx context.Context, id uint) (*entity.Team, error) {
	return s.teamRepo.GetByID(ctx, id)
}

func (s *SetupService) ListTeams(ctx context.Context) ([]entity.Team, error) {
	return s.teamRepo.List(ctx)
}

// UpdateTeam обновляет команду; speakers == nil оставляет состав без изменений
func (s *SetupService) UpdateTeam(ctx context.Context, id uint, name, institution string, speakers []ParticipantInput) (*entity.Team, error) {
	name, err := requireName("team", name)
	if err != nil {
		return nil, err
	}
	team := &entity.Team{ID: id, Name: name, Institution: strings.TrimSpace(institution)}
	if speakers != nil {
		if team.Participants, err = buildParticipants(speakers); err != nil {
			return nil, err
		}
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	invalidateTabulation(ctx, s.cacheRepo)
	return s.teamRepo.GetByID(ctx, id)
}

func (s *SetupService) DeleteTeam(ctx context.Context, id uint) error {
	return s.teamRepo.Delete(ctx, id)
}

// --- Аудитории ---

func (s *SetupService) CreateRoom(ctx context.Context, name string) (*entity.Room, error) {
	name, err := requireName("room", name)
	if err != nil {
		return nil, err
	}
	room := &entity.Room{Name: name}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *SetupService) ListRooms(ctx context.Context) ([]entity.Room, error) {
	return s.roomRepo.List(ctx)
}

func (s *SetupService) UpdateRoom(ctx context.Context, id uint, name string) (*entity.Room, error) {
	name, err := requireName("room", name)
	if err != nil {
		return nil, err
	}
	if err := s.roomRepo.Update(ctx, &entity.Room{ID: id, Name: name}); err != nil {
		return nil, err
	}
	return s.roomRepo.GetByID(ctx, id)
}

func (s *SetupService) DeleteRoom(ctx context.Context, id uint) error {
	return s.roomRepo.Delete(ctx, id)
}

// --- Судьи ---

func (s *SetupService) CreateJudge(ctx context.Context, name, subject string) (*entity.Judge, error) {
	name, err := requireName("judge", name)
	if err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: judge external subject is required", apperrors.ErrValidation)
	}
	judge := &entity.Judge{Name: name, ExternalSubject: subject}
	if err := s.judgeRepo.Create(ctx, judge); err != nil {
		return nil, err
	}
	return judge, nil
}

func (s *SetupService) ListJudges(ctx context.Context) ([]entity.Judge, error) {
	return s.judgeRepo.List(ctx)
}

// JudgeBySubject сопоставляет claim "sub" токена с судьёй
func (s *SetupService) JudgeBySubject(ctx context.Context, subject string) (*entity.Judge, error) {
	return s.judgeRepo.GetBySubject(ctx, subject)
}

func (s *SetupService) UpdateJudge(ctx context.Context, id uint, name, subject string) (*entity.Judge, error) {
	name, err := requireName("judge", name)
	if err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: judge external subject is required", apperrors.ErrValidation)
	}
	if err := s.judgeRepo.Update(ctx, &entity.Judge{ID: id, Name: name, ExternalSubject: subject}); err != nil {
		return nil, err
	}
	return s.judgeRepo.GetByID(ctx, id)
}

func (s *SetupService) DeleteJudge(ctx context.Context, id uint) error {
	return s.judgeRepo.Delete(ctx, id)
}
