package tabulation

import (
	"fmt"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// Seat: команда на позиции в сгенерированной комнате
type Seat struct {
	TeamID   uint            `json:"team_id"`
	TeamName string          `json:"team_name"`
	Seed     int             `json:"seed"`
	Position entity.Position `json:"position"`
}

// RoomDraw: одна комната сгенерированного этапа
type RoomDraw struct {
	RoomID   uint   `json:"room_id"`
	RoomName string `json:"room_name"`
	Seats    []Seat `json:"seats"`
}

// DrawRooms разбивает упорядоченный список команд на последовательные группы по 4:
// группа i попадает в комнату rooms[i]. Комнаты должны быть переданы в стабильном
// порядке (по возрастанию ID). Ничего не пишет; при нехватке комнат: ошибка.
func DrawRooms(teams []Standing, rooms []entity.Room, policy PositionPolicy, roundNumber int) ([]RoomDraw, error) {
	if len(teams) == 0 || len(teams)%entity.TeamsPerRoom != 0 {
		return nil, fmt.Errorf("%w: team count must be a positive multiple of %d, got %d",
			apperrors.ErrValidation, entity.TeamsPerRoom, len(teams))
	}
	required := len(teams) / entity.TeamsPerRoom
	if len(rooms) < required {
		return nil, apperrors.NewInsufficientRooms(roundNumber, required, len(rooms))
	}

	positions := entity.Positions()
	draws := make([]RoomDraw, 0, required)
	for r := 0; r < required; r++ {
		group := teams[r*entity.TeamsPerRoom : (r+1)*entity.TeamsPerRoom]
		draw := RoomDraw{
			RoomID:   rooms[r].ID,
			RoomName: rooms[r].Name,
			Seats:    make([]Seat, entity.TeamsPerRoom),
		}
		for i, st := range group {
			draw.Seats[i] = Seat{
				TeamID:   st.TeamID,
				TeamName: st.TeamName,
				Seed:     r*entity.TeamsPerRoom + i + 1,
				Position: positions[positionIndex(policy, i, roundNumber)],
			}
		}
		draws = append(draws, draw)
	}
	return draws, nil
}

func positionIndex(policy PositionPolicy, rankInRoom, roundNumber int) int {
	if policy != PositionsRotating {
		return rankInRoom
	}
	offset := roundNumber - 1
	if offset < 0 {
		offset = 0
	}
	return (rankInRoom + offset) % entity.TeamsPerRoom
}
