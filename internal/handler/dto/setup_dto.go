package dto

// SpeakerRequest: спикер команды; ID указывается, чтобы сохранить уже оценённого спикера
type SpeakerRequest struct {
	ID   uint   `json:"id"`
	Name string `json:"name" binding:"required,max=100"`
}

// TeamRequest: создание или изменение команды
type TeamRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Institution string           `json:"institution" binding:"omitempty,max=150"`
	Speakers    []SpeakerRequest `json:"speakers" binding:"omitempty,max=4,dive"`
}

// RoomRequest: создание или переименование аудитории
type RoomRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// JudgeRequest: регистрация судьи; external_subject совпадает с claim "sub" провайдера
type JudgeRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	ExternalSubject string `json:"external_subject" binding:"required,max=255"`
}
