package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// RoomRepo реализует repository.RoomRepository
type RoomRepo struct {
	db *gorm.DB
}

// NewRoomRepo создает новый репозиторий аудиторий
func NewRoomRepo(db *gorm.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) Create(ctx context.Context, room *entity.Room) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: room %q already exists", apperrors.ErrConflict, room.Name)
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint) (*entity.Room, error) {
	var room entity.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// List возвращает аудитории по возрастанию ID: этот порядок определяет,
// в какую аудиторию попадает каждая группа сгенерированного этапа
func (r *RoomRepo) List(ctx context.Context) ([]entity.Room, error) {
	var rooms []entity.Room
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error
	return rooms, err
}

func (r *RoomRepo) Update(ctx context.Context, room *entity.Room) error {
	res := r.db.WithContext(ctx).Model(&entity.Room{}).Where("id = ?", room.ID).Update("name", room.Name)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return fmt.Errorf("%w: room %q already exists", apperrors.ErrConflict, room.Name)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет аудиторию, если она не использовалась в раундах
func (r *RoomRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&entity.RoundAssignment{}).Where("room_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: room %d is used by a round", apperrors.ErrConflict, id)
		}
		res := tx.Delete(&entity.Room{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
