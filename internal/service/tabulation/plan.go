package tabulation

import (
	"fmt"

	"github.com/yourusername/debate-tab/internal/domain/entity"
)

// ScoringMode определяет, какие оценки агрегируются для ранжирования этапа
type ScoringMode string

const (
	ScoringIndividual ScoringMode = "individual"
	ScoringTeam       ScoringMode = "team"
)

// ScoreType возвращает тип оценок, соответствующий режиму
func (m ScoringMode) ScoreType() entity.ScoreType {
	if m == ScoringTeam {
		return entity.ScoreTypeTeam
	}
	return entity.ScoreTypeIndividual
}

// IsValid проверяет режим
func (m ScoringMode) IsValid() bool {
	return m == ScoringIndividual || m == ScoringTeam
}

// PositionPolicy определяет, как команды группы раскладываются по позициям
type PositionPolicy string

const (
	// PositionsByRank задаёт позиции по месту в группе (OG, OO, CG, CO)
	PositionsByRank PositionPolicy = "rank_order"
	// PositionsRotating: позиции сдвигаются на номер раунда, чтобы команды
	// не стояли на одной позиции все отборочные раунды
	PositionsRotating PositionPolicy = "rotating"
)

// Stage описывает этап плей-офф
type Stage struct {
	Name        string      `mapstructure:"name" json:"name"`
	Number      int         `mapstructure:"number" json:"number"`
	Qualifiers  int         `mapstructure:"qualifiers" json:"qualifiers"`
	ScoringMode ScoringMode `mapstructure:"scoring_mode" json:"scoring_mode"`
	// MultiJudge: в комнате может быть несколько судей, оценки принимаются один раз на раунд
	MultiJudge bool `mapstructure:"multi_judge" json:"multi_judge"`
}

// Rooms возвращает число комнат этапа
func (s Stage) Rooms() int {
	return s.Qualifiers / entity.TeamsPerRoom
}

// Plan описывает структуру турнира: отборочные раунды 1..PreliminaryRounds и этапы плей-офф
type Plan struct {
	PreliminaryRounds  int         `mapstructure:"preliminary_rounds" json:"preliminary_rounds"`
	PreliminaryScoring ScoringMode `mapstructure:"preliminary_scoring" json:"preliminary_scoring"`
	Stages             []Stage     `mapstructure:"stages" json:"stages"`
}

// DefaultPlan возвращает план по умолчанию: 3 отборочных раунда, 1/4, 1/2 и финал
func DefaultPlan() Plan {
	return Plan{
		PreliminaryRounds:  3,
		PreliminaryScoring: ScoringIndividual,
		Stages: []Stage{
			{Name: "Quarterfinal", Number: 4, Qualifiers: 16, ScoringMode: ScoringTeam},
			{Name: "Semifinal", Number: 5, Qualifiers: 8, ScoringMode: ScoringTeam},
			{Name: "Grand Final", Number: 6, Qualifiers: 4, ScoringMode: ScoringTeam, MultiJudge: true},
		},
	}
}

// Validate проверяет согласованность плана
func (p Plan) Validate() error {
	if p.PreliminaryRounds < 1 {
		return fmt.Errorf("preliminary_rounds must be at least 1, got %d", p.PreliminaryRounds)
	}
	if !p.PreliminaryScoring.IsValid() {
		return fmt.Errorf("invalid preliminary scoring mode %q", p.PreliminaryScoring)
	}
	prevNumber := p.PreliminaryRounds
	prevQualifiers := 0
	for i, s := range p.Stages {
		if s.Number <= prevNumber {
			return fmt.Errorf("stage %q: number %d must be greater than %d", s.Name, s.Number, prevNumber)
		}
		if s.Qualifiers < entity.TeamsPerRoom || s.Qualifiers%entity.TeamsPerRoom != 0 {
			return fmt.Errorf("stage %q: qualifiers must be a positive multiple of %d, got %d", s.Name, entity.TeamsPerRoom, s.Qualifiers)
		}
		if i > 0 && s.Qualifiers > prevQualifiers {
			return fmt.Errorf("stage %q: qualifiers %d exceed previous stage's %d", s.Name, s.Qualifiers, prevQualifiers)
		}
		if !s.ScoringMode.IsValid() {
			return fmt.Errorf("stage %q: invalid scoring mode %q", s.Name, s.ScoringMode)
		}
		prevNumber = s.Number
		prevQualifiers = s.Qualifiers
	}
	return nil
}

// IsPreliminary проверяет, является ли номер отборочным раундом
func (p Plan) IsPreliminary(number int) bool {
	return number >= 1 && number <= p.PreliminaryRounds
}

// StageIndex возвращает индекс этапа плей-офф по номеру или -1
func (p Plan) StageIndex(number int) int {
	for i, s := range p.Stages {
		if s.Number == number {
			return i
		}
	}
	return -1
}

// StageByNumber возвращает этап плей-офф по номеру
func (p Plan) StageByNumber(number int) (Stage, bool) {
	idx := p.StageIndex(number)
	if idx < 0 {
		return Stage{}, false
	}
	return p.Stages[idx], true
}

// SourceNumbers возвращает номера раундов, по результатам которых
// отбираются участники этапа. Первый этап плей-офф берёт все отборочные,
// остальные берут предыдущий этап, отборочный раунд N берёт раунды 1..N-1.
func (p Plan) SourceNumbers(number int) []int {
	if p.IsPreliminary(number) {
		return sequence(1, number-1)
	}
	idx := p.StageIndex(number)
	switch {
	case idx < 0:
		return nil
	case idx == 0:
		return sequence(1, p.PreliminaryRounds)
	default:
		return []int{p.Stages[idx-1].Number}
	}
}

// ScoringModeFor возвращает режим подсчёта для раунда с данным номером
func (p Plan) ScoringModeFor(number int) ScoringMode {
	if s, ok := p.StageByNumber(number); ok {
		return s.ScoringMode
	}
	return p.PreliminaryScoring
}

// IsMultiJudge проверяет, разрешено ли несколько судей в комнате раунда
func (p Plan) IsMultiJudge(number int) bool {
	s, ok := p.StageByNumber(number)
	return ok && s.MultiJudge
}

// StageName возвращает отображаемое имя раунда
func (p Plan) StageName(number int) string {
	if s, ok := p.StageByNumber(number); ok {
		return s.Name
	}
	return fmt.Sprintf("Round %d", number)
}

func sequence(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}
