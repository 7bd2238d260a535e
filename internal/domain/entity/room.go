package entity

import (
	"time"
)

// Room представляет аудиторию. Переиспользуется во всех раундах.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Room) TableName() string {
	return "rooms"
}

// Judge представляет судью.
// ExternalSubject совпадает с claim "sub" токена внешнего провайдера идентификации.
type Judge struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	ExternalSubject string    `gorm:"size:255;not null;uniqueIndex" json:"external_subject"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Judge) TableName() string {
	return "judges"
}
