package dto

import "github.com/yourusername/debate-tab/internal/service"

// ScoreRequest описывает одну оценку: team_id для командной оценки или participant_id для спикерской
type ScoreRequest struct {
	TeamID        *uint    `json:"team_id"`
	ParticipantID *uint    `json:"participant_id"`
	Value         *float64 `json:"value" binding:"required"`
}

// SubmitScoresRequest: все оценки судьи за комнату одним запросом
type SubmitScoresRequest struct {
	Scores []ScoreRequest `json:"scores" binding:"required,min=1,max=16,dive"`
}

// Inputs преобразует запрос в формат сервиса
func (r SubmitScoresRequest) Inputs() []service.ScoreInput {
	inputs := make([]service.ScoreInput, len(r.Scores))
	for i, s := range r.Scores {
		inputs[i] = service.ScoreInput{TeamID: s.TeamID, ParticipantID: s.ParticipantID, Value: *s.Value}
	}
	return inputs
}
