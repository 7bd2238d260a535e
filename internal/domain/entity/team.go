package entity

import (
	"time"
)

// Team представляет команду из (обычно двух) спикеров
type Team struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Institution  string        `gorm:"size:150;not null;default:''" json:"institution"`
	Participants []Participant `gorm:"foreignKey:TeamID" json:"participants,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Team) TableName() string {
	return "teams"
}

// Participant представляет спикера. Принадлежит ровно одной команде.
type Participant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"` // порядок спикера внутри команды
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Participant) TableName() string {
	return "participants"
}
