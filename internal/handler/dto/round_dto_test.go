package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/service"
)

func TestNewBracketResponse(t *testing.T) {
	view := &service.BracketView{
		Round: &entity.Round{ID: 1, Number: 4, Name: "Quarterfinal"},
		Rooms: []service.BracketRoom{{
			AssignmentID: 10,
			RoomID:       2,
			RoomName:     "Room 2",
			Scored:       true,
			Teams: []service.BracketTeam{
				{TeamID: 5, TeamName: "E", Position: entity.PositionOG, Rank: 2, Points: 2},
				{TeamID: 6, TeamName: "F", Position: entity.PositionCO, Rank: 1, Points: 3},
			},
		}},
	}

	resp := NewBracketResponse(view)
	assert.Equal(t, "Quarterfinal", resp.Round.Name)
	assert.Len(t, resp.Rooms, 1)
	assert.Equal(t, "Opening Government", resp.Rooms[0].Teams[0].PositionLabel)
	assert.Equal(t, 3, resp.Rooms[0].Teams[1].Points)
}

func TestRequestConversions(t *testing.T) {
	req := CreateAssignmentRequest{RoomID: 1, Teams: []TeamSlotRequest{{TeamID: 3, Position: "CG"}}}
	slots := req.Slots()
	assert.Equal(t, entity.PositionCG, slots[0].Position)

	teamID := uint(4)
	v := 71.5
	inputs := SubmitScoresRequest{Scores: []ScoreRequest{{TeamID: &teamID, Value: &v}}}.Inputs()
	assert.Equal(t, 71.5, inputs[0].Value)
	assert.Equal(t, &teamID, inputs[0].TeamID)
}
