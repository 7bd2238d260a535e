package dto

import (
	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/handler/helper"
	"github.com/yourusername/debate-tab/internal/service"
)

// CreateRoundRequest: ручное создание отборочного раунда
type CreateRoundRequest struct {
	Number    int    `json:"number" binding:"required,min=1"`
	Name      string `json:"name" binding:"omitempty,max=100"`
	Motion    string `json:"motion" binding:"omitempty,max=1000"`
	InfoSlide string `json:"info_slide" binding:"omitempty,max=2000"`
}

// UpdateRoundRequest: изменение темы и инфослайда
type UpdateRoundRequest struct {
	Name      string `json:"name" binding:"omitempty,max=100"`
	Motion    string `json:"motion" binding:"omitempty,max=1000"`
	InfoSlide string `json:"info_slide" binding:"omitempty,max=2000"`
}

// TeamSlotRequest: команда на позиции
type TeamSlotRequest struct {
	TeamID   uint   `json:"team_id" binding:"required"`
	Position string `json:"position" binding:"required,oneof=OG OO CG CO"`
}

// CreateAssignmentRequest: ручное создание комнаты раунда
type CreateAssignmentRequest struct {
	RoomID uint              `json:"room_id" binding:"required"`
	Teams  []TeamSlotRequest `json:"teams" binding:"required,len=4,dive"`
}

// Slots преобразует запрос в формат сервиса
func (r CreateAssignmentRequest) Slots() []service.TeamSlot {
	slots := make([]service.TeamSlot, len(r.Teams))
	for i, t := range r.Teams {
		slots[i] = service.TeamSlot{TeamID: t.TeamID, Position: entity.Position(t.Position)}
	}
	return slots
}

// SetJudgesRequest: список судей комнаты (заменяет текущий)
type SetJudgesRequest struct {
	JudgeIDs []uint `json:"judge_ids" binding:"required,min=1,dive,required"`
}

// BracketTeamResponse: команда в сетке с названием позиции
type BracketTeamResponse struct {
	service.BracketTeam
	PositionLabel string `json:"position_label"`
}

// BracketRoomResponse: комната в сетке
type BracketRoomResponse struct {
	AssignmentID uint                  `json:"assignment_id"`
	RoomID       uint                  `json:"room_id"`
	RoomName     string                `json:"room_name"`
	Scored       bool                  `json:"scored"`
	Teams        []BracketTeamResponse `json:"teams"`
	Judges       []entity.Judge        `json:"judges"`
}

// BracketResponse: сетка раунда для клиента
type BracketResponse struct {
	Round *entity.Round         `json:"round"`
	Rooms []BracketRoomResponse `json:"rooms"`
}

// NewBracketResponse создает DTO сетки
func NewBracketResponse(view *service.BracketView) *BracketResponse {
	resp := &BracketResponse{Round: view.Round, Rooms: make([]BracketRoomResponse, 0, len(view.Rooms))}
	for _, room := range view.Rooms {
		r := BracketRoomResponse{
			AssignmentID: room.AssignmentID,
			RoomID:       room.RoomID,
			RoomName:     room.RoomName,
			Scored:       room.Scored,
			Judges:       room.Judges,
			Teams:        make([]BracketTeamResponse, 0, len(room.Teams)),
		}
		for _, t := range room.Teams {
			r.Teams = append(r.Teams, BracketTeamResponse{BracketTeam: t, PositionLabel: helper.PositionLabel(t.Position)})
		}
		resp.Rooms = append(resp.Rooms, r)
	}
	return resp
}
