package tabulation

import (
	"github.com/yourusername/debate-tab/internal/domain/entity"
)

// RoundInput: данные одного раунда для подсчёта рейтинга.
// Assignments должны быть загружены вместе с TeamAssignments и Team.
type RoundInput struct {
	Round       entity.Round
	Assignments []entity.RoundAssignment
	Scores      []entity.Score
}

// RoomRanking: итог одной комнаты раунда
type RoomRanking struct {
	RoundAssignmentID uint         `json:"round_assignment_id"`
	RoomID            uint         `json:"room_id"`
	RoomName          string       `json:"room_name"`
	Scored            bool         `json:"scored"`
	Results           []RoomResult `json:"results"`
}

// RoomTeams возвращает команды комнаты в порядке позиций
func RoomTeams(a entity.RoundAssignment) []RoomTeam {
	ordered := a.OrderedTeams()
	teams := make([]RoomTeam, len(ordered))
	for i, ta := range ordered {
		teams[i] = RoomTeam{TeamID: ta.TeamID}
		if ta.Team != nil {
			teams[i].TeamName = ta.Team.Name
		}
	}
	return teams
}

// RankRound ранжирует все комнаты раунда. Комната без единой учтённой оценки
// помечается Scored=false и получает пустой Results.
func RankRound(mode ScoringMode, in RoundInput, participantTeams map[uint]uint) []RoomRanking {
	byAssignment := make(map[uint][]entity.Score, len(in.Assignments))
	for _, s := range in.Scores {
		byAssignment[s.RoundAssignmentID] = append(byAssignment[s.RoundAssignmentID], s)
	}

	rankings := make([]RoomRanking, 0, len(in.Assignments))
	for _, a := range in.Assignments {
		rr := RoomRanking{RoundAssignmentID: a.ID, RoomID: a.RoomID}
		if a.Room != nil {
			rr.RoomName = a.Room.Name
		}
		totals := Aggregate(mode, byAssignment[a.ID], RoomTeams(a), participantTeams)
		if IsScored(totals) {
			rr.Scored = true
			rr.Results = RankRoom(totals)
		}
		rankings = append(rankings, rr)
	}
	return rankings
}

// BuildStandings считает общий рейтинг по набору раундов.
// Учитываются только команды, сыгравшие хотя бы в одной оценённой комнате.
func BuildStandings(plan Plan, rounds []RoundInput, participantTeams map[uint]uint) []Standing {
	acc := NewStandings()
	for _, in := range rounds {
		mode := plan.ScoringModeFor(in.Round.Number)
		for _, rr := range RankRound(mode, in, participantTeams) {
			if rr.Scored {
				acc.Add(rr.Results)
			}
		}
	}
	return acc.Ranked()
}
