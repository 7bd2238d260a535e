package tabulation

import (
	"sort"
)

// pointsByRank: очки за места 1..4
var pointsByRank = [...]int{3, 2, 1, 0}

// PointsForRank возвращает очки за место в комнате (1 → 3, 2 → 2, 3 → 1, 4 → 0)
func PointsForRank(rank int) int {
	if rank < 1 || rank > len(pointsByRank) {
		return 0
	}
	return pointsByRank[rank-1]
}

// RoomResult: место команды в комнате
type RoomResult struct {
	TeamID     uint    `json:"team_id"`
	TeamName   string  `json:"team_name"`
	Rank       int     `json:"rank"`
	Points     int     `json:"points"`
	TotalScore float64 `json:"total_score"`
}

// RankRoom сортирует команды комнаты по сумме по убыванию и назначает места.
// Сортировка стабильная: при равенстве сохраняется исходный порядок.
func RankRoom(totals []TeamTotal) []RoomResult {
	sorted := make([]TeamTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})

	results := make([]RoomResult, len(sorted))
	for i, t := range sorted {
		rank := i + 1
		results[i] = RoomResult{
			TeamID:     t.TeamID,
			TeamName:   t.TeamName,
			Rank:       rank,
			Points:     PointsForRank(rank),
			TotalScore: t.Total,
		}
	}
	return results
}

// Standing: накопленный результат команды за несколько раундов
type Standing struct {
	TeamID     uint    `json:"team_id"`
	TeamName   string  `json:"team_name"`
	Points     int     `json:"points"`
	TotalScore float64 `json:"total_score"`
	Debates    int     `json:"debates"`
	Firsts     int     `json:"firsts"`
	Position   int     `json:"position"`
}

// Standings накапливает результаты комнат и строит общий рейтинг
type Standings struct {
	order []uint
	byID  map[uint]*Standing
}

// NewStandings создаёт пустой накопитель
func NewStandings() *Standings {
	return &Standings{byID: make(map[uint]*Standing)}
}

// Add учитывает результаты одной комнаты
func (s *Standings) Add(results []RoomResult) {
	for _, r := range results {
		st, ok := s.byID[r.TeamID]
		if !ok {
			st = &Standing{TeamID: r.TeamID, TeamName: r.TeamName}
			s.byID[r.TeamID] = st
			s.order = append(s.order, r.TeamID)
		}
		st.Points += r.Points
		st.TotalScore += r.TotalScore
		st.Debates++
		if r.Rank == 1 {
			st.Firsts++
		}
	}
}

// Len возвращает число учтённых команд
func (s *Standings) Len() int {
	return len(s.order)
}

// Ranked возвращает общий рейтинг: очки по убыванию, затем сумма оценок по убыванию.
// Полные равенства разрешаются по возрастанию ID команды.
func (s *Standings) Ranked() []Standing {
	out := make([]Standing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	SortStandings(out)
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// SortStandings стабильно сортирует рейтинг по правилу (очки, сумма оценок)
func SortStandings(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		return Above(standings[i], standings[j])
	})
}

// Above: a выше b тогда и только тогда, когда у a больше очков,
// либо очков поровну и больше сумма оценок
func Above(a, b Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.TotalScore > b.TotalScore
}
