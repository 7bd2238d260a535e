package entity

import (
	"time"
)

// Состояния этапа турнира. Переходы только вперёд.
const (
	StageStateNotCreated = "not_created"
	StageStateCreated    = "created"
	StageStateScored     = "scored"
	StageStateCompleted  = "completed"
)

// Round представляет раунд турнира.
// Number: порядковый номер этапа (отборочные раунды, четвертьфинал, полуфинал, финал);
// уникален, что и гарантирует существование этапа не более одного раза.
type Round struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Number      int               `gorm:"not null;uniqueIndex:idx_rounds_number" json:"number"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Motion      string            `gorm:"size:1000;not null;default:''" json:"motion"`
	InfoSlide   string            `gorm:"size:2000;not null;default:''" json:"info_slide"`
	Completed   bool              `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Assignments []RoundAssignment `gorm:"foreignKey:RoundID" json:"assignments,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Round) TableName() string {
	return "rounds"
}

// IsCompleted проверяет, завершён ли раунд
func (r *Round) IsCompleted() bool {
	return r.Completed
}
