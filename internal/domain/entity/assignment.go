package entity

import (
	"fmt"
	"time"
)

// Position: одна из четырёх позиций в комнате
type Position string

// Позиции в порядке выступления (и в порядке посева)
const (
	PositionOG Position = "OG" // Opening Government
	PositionOO Position = "OO" // Opening Opposition
	PositionCG Position = "CG" // Closing Government
	PositionCO Position = "CO" // Closing Opposition
)

// Positions возвращает позиции в каноническом порядке OG, OO, CG, CO
func Positions() []Position {
	return []Position{PositionOG, PositionOO, PositionCG, PositionCO}
}

// TeamsPerRoom: число команд в одной комнате
const TeamsPerRoom = 4

// IsValid проверяет, что позиция одна из четырёх допустимых
func (p Position) IsValid() bool {
	switch p {
	case PositionOG, PositionOO, PositionCG, PositionCO:
		return true
	}
	return false
}

// Index возвращает порядковый номер позиции (0..3) или -1
func (p Position) Index() int {
	for i, pos := range Positions() {
		if pos == p {
			return i
		}
	}
	return -1
}

// RoundAssignment: одна комната в одном раунде
type RoundAssignment struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	RoundID         uint              `gorm:"not null;uniqueIndex:idx_round_room" json:"round_id"`
	RoomID          uint              `gorm:"not null;uniqueIndex:idx_round_room" json:"room_id"`
	Round           *Round            `gorm:"foreignKey:RoundID" json:"round,omitempty"`
	Room            *Room             `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	TeamAssignments []TeamAssignment  `gorm:"foreignKey:RoundAssignmentID" json:"team_assignments,omitempty"`
	Judges          []AssignmentJudge `gorm:"foreignKey:RoundAssignmentID" json:"judges,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (RoundAssignment) TableName() string {
	return "round_assignments"
}

// HasJudge проверяет, назначен ли судья в эту комнату
func (a *RoundAssignment) HasJudge(judgeID uint) bool {
	for _, j := range a.Judges {
		if j.JudgeID == judgeID {
			return true
		}
	}
	return false
}

// TeamIDs возвращает ID команд в порядке позиций
func (a *RoundAssignment) TeamIDs() []uint {
	ordered := a.OrderedTeams()
	ids := make([]uint, len(ordered))
	for i, ta := range ordered {
		ids[i] = ta.TeamID
	}
	return ids
}

// OrderedTeams возвращает назначения команд, отсортированные по позиции OG, OO, CG, CO
func (a *RoundAssignment) OrderedTeams() []TeamAssignment {
	ordered := make([]TeamAssignment, 0, len(a.TeamAssignments))
	for _, pos := range Positions() {
		for _, ta := range a.TeamAssignments {
			if ta.Position == pos {
				ordered = append(ordered, ta)
			}
		}
	}
	return ordered
}

// ValidateLineup проверяет инвариант комнаты: ровно 4 команды, по одной на каждую позицию,
// без повторов команд
func ValidateLineup(teams []TeamAssignment) error {
	if len(teams) != TeamsPerRoom {
		return fmt.Errorf("room must have exactly %d teams, got %d", TeamsPerRoom, len(teams))
	}
	seenPos := make(map[Position]bool, TeamsPerRoom)
	seenTeam := make(map[uint]bool, TeamsPerRoom)
	for _, ta := range teams {
		if !ta.Position.IsValid() {
			return fmt.Errorf("invalid position %q", ta.Position)
		}
		if seenPos[ta.Position] {
			return fmt.Errorf("position %s is assigned twice", ta.Position)
		}
		if seenTeam[ta.TeamID] {
			return fmt.Errorf("team %d is assigned twice", ta.TeamID)
		}
		seenPos[ta.Position] = true
		seenTeam[ta.TeamID] = true
	}
	return nil
}

// TeamAssignment: команда на позиции в конкретной комнате.
// RoundID денормализован для уникального индекса (round_id, team_id):
// команда не может играть дважды в одном раунде.
type TeamAssignment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RoundAssignmentID uint      `gorm:"not null;uniqueIndex:idx_assignment_position" json:"round_assignment_id"`
	RoundID           uint      `gorm:"not null;uniqueIndex:idx_round_team" json:"round_id"`
	TeamID            uint      `gorm:"not null;uniqueIndex:idx_round_team;index" json:"team_id"`
	Position          Position  `gorm:"size:2;not null;uniqueIndex:idx_assignment_position" json:"position"`
	Team              *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (TeamAssignment) TableName() string {
	return "team_assignments"
}

// AssignmentJudge связывает судью с комнатой раунда
type AssignmentJudge struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RoundAssignmentID uint      `gorm:"not null;uniqueIndex:idx_assignment_judge" json:"round_assignment_id"`
	RoundID           uint      `gorm:"not null;index" json:"round_id"`
	JudgeID           uint      `gorm:"not null;uniqueIndex:idx_assignment_judge" json:"judge_id"`
	Judge             *Judge    `gorm:"foreignKey:JudgeID" json:"judge,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (AssignmentJudge) TableName() string {
	return "round_assignment_judges"
}
