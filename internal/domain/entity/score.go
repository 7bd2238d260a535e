package entity

import (
	"fmt"
	"time"
)

// ScoreType определяет, кого оценивает судья: команду или спикера
type ScoreType string

const (
	ScoreTypeTeam       ScoreType = "TEAM"
	ScoreTypeIndividual ScoreType = "INDIVIDUAL"
)

// Score: оценка судьи команде (TEAM) или спикеру (INDIVIDUAL)
type Score struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RoundID           uint      `gorm:"not null;index" json:"round_id"`
	RoundAssignmentID uint      `gorm:"not null;index" json:"round_assignment_id"`
	JudgeID           uint      `gorm:"not null;index" json:"judge_id"`
	SubmissionID      uint      `gorm:"not null;index" json:"submission_id"`
	Type              ScoreType `gorm:"size:16;not null" json:"type"`
	TeamID            *uint     `gorm:"index" json:"team_id,omitempty"`
	ParticipantID     *uint     `gorm:"index" json:"participant_id,omitempty"`
	Value             float64   `gorm:"not null" json:"value"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Score) TableName() string {
	return "scores"
}

// ScoreSubmission фиксирует факт отправки оценок судьёй.
// LockKey уникален: повторная отправка того же судьи за тот же раунд
// (или любого судьи в финале) отвергается на уровне БД.
type ScoreSubmission struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RoundID           uint      `gorm:"not null;index" json:"round_id"`
	RoundAssignmentID uint      `gorm:"not null;index" json:"round_assignment_id"`
	JudgeID           uint      `gorm:"not null;index" json:"judge_id"`
	LockKey           string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (ScoreSubmission) TableName() string {
	return "score_submissions"
}

// SubmissionLockKey возвращает ключ уникальности отправки.
// perRound=true: допускается только одна отправка на весь раунд.
func SubmissionLockKey(roundID, judgeID uint, perRound bool) string {
	if perRound {
		return fmt.Sprintf("round:%d", roundID)
	}
	return fmt.Sprintf("round:%d:judge:%d", roundID, judgeID)
}

// MatchResult: кэшированный итог команды в одной комнате завершённого раунда
type MatchResult struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RoundID           uint      `gorm:"not null;index" json:"round_id"`
	RoundAssignmentID uint      `gorm:"not null;uniqueIndex:idx_result_assignment_team" json:"round_assignment_id"`
	TeamID            uint      `gorm:"not null;uniqueIndex:idx_result_assignment_team" json:"team_id"`
	Rank              int       `gorm:"not null" json:"rank"`
	Points            int       `gorm:"not null" json:"points"`
	TotalScore        float64   `gorm:"not null;default:0" json:"total_score"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (MatchResult) TableName() string {
	return "match_results"
}
