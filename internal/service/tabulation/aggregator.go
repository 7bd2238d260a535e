package tabulation

import (
	"github.com/yourusername/debate-tab/internal/domain/entity"
)

// RoomTeam: команда в комнате; порядок слайса задаёт исходный порядок
// для стабильной сортировки (OG, OO, CG, CO)
type RoomTeam struct {
	TeamID   uint
	TeamName string
}

// TeamTotal: сумма оценок команды в одной комнате
type TeamTotal struct {
	TeamID   uint    `json:"team_id"`
	TeamName string  `json:"team_name"`
	Total    float64 `json:"total"`
	// Matched: сколько строк оценок попало в сумму
	Matched int `json:"-"`
}

// Aggregate суммирует оценки режима mode для команд комнаты.
// Если оценка ссылается на спикера, ключом агрегации служит команда спикера
// (participantTeams), а не team_id самой строки. Команда без оценок получает 0.
// Результат идёт в порядке room.
func Aggregate(mode ScoringMode, scores []entity.Score, room []RoomTeam, participantTeams map[uint]uint) []TeamTotal {
	wantType := mode.ScoreType()
	index := make(map[uint]int, len(room))
	totals := make([]TeamTotal, len(room))
	for i, t := range room {
		index[t.TeamID] = i
		totals[i] = TeamTotal{TeamID: t.TeamID, TeamName: t.TeamName}
	}

	for _, s := range scores {
		if s.Type != wantType {
			continue
		}
		teamID, ok := scoreTeam(s, participantTeams)
		if !ok {
			continue
		}
		i, inRoom := index[teamID]
		if !inRoom {
			continue
		}
		totals[i].Total += s.Value
		totals[i].Matched++
	}
	return totals
}

// IsScored проверяет, есть ли в комнате хотя бы одна учтённая оценка
func IsScored(totals []TeamTotal) bool {
	for _, t := range totals {
		if t.Matched > 0 {
			return true
		}
	}
	return false
}

func scoreTeam(s entity.Score, participantTeams map[uint]uint) (uint, bool) {
	if s.ParticipantID != nil {
		if teamID, ok := participantTeams[*s.ParticipantID]; ok {
			return teamID, true
		}
	}
	if s.TeamID != nil {
		return *s.TeamID, true
	}
	return 0, false
}
