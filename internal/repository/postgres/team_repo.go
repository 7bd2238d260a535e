package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// TeamRepo реализует repository.TeamRepository
type TeamRepo struct {
	db *gorm.DB
}

// NewTeamRepo создает новый репозиторий команд
func NewTeamRepo(db *gorm.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

// Create создает команду вместе со спикерами
func (r *TeamRepo) Create(ctx context.Context, team *entity.Team) error {
	if err := r.db.WithContext(ctx).Create(team).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: team %q already exists", apperrors.ErrConflict, team.Name)
		}
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// GetByID возвращает команду со спикерами
func (r *TeamRepo) GetByID(ctx context.Context, id uint) (*entity.Team, error) {
	var team entity.Team
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		First(&team, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &team, nil
}

// List возвращает все команды по возрастанию ID
func (r *TeamRepo) List(ctx context.Context) ([]entity.Team, error) {
	var teams []entity.Team
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Order("id").Find(&teams).Error
	return teams, err
}

// Update обновляет команду и заменяет список спикеров
func (r *TeamRepo) Update(ctx context.Context, team *entity.Team) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Team{}).Where("id = ?", team.ID).
			Updates(map[string]interface{}{"name": team.Name, "institution": team.Institution})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		if team.Participants == nil {
			return nil
		}
		// Спикеры с уже выставленными оценками сохраняют ID
		keep := make([]uint, 0, len(team.Participants))
		for i := range team.Participants {
			p := &team.Participants[i]
			p.TeamID = team.ID
			if p.ID != 0 {
				keep = append(keep, p.ID)
			}
		}
		del := tx.Where("team_id = ?", team.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&entity.Participant{}).Error; err != nil {
			return err
		}
		for i := range team.Participants {
			if err := tx.Save(&team.Participants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: team %q already exists", apperrors.ErrConflict, team.Name)
		}
		return err
	}
	return nil
}

// Delete удаляет команду, если она не участвовала ни в одном раунде
func (r *TeamRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&entity.TeamAssignment{}).Where("team_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: team %d is already assigned to a round", apperrors.ErrConflict, id)
		}
		if err := tx.Where("team_id = ?", id).Delete(&entity.Participant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Team{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// ParticipantTeams возвращает соответствие participant_id → team_id
func (r *TeamRepo) ParticipantTeams(ctx context.Context) (map[uint]uint, error) {
	participants, err := r.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]uint, len(participants))
	for _, p := range participants {
		out[p.ID] = p.TeamID
	}
	return out, nil
}

// ListParticipants возвращает всех спикеров
func (r *TeamRepo) ListParticipants(ctx context.Context) ([]entity.Participant, error) {
	var participants []entity.Participant
	err := r.db.WithContext(ctx).Order("team_id, sort_order, id").Find(&participants).Error
	return participants, err
}
