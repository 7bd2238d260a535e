package tabulation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

func testRooms(ids ...uint) []entity.Room {
	rooms := make([]entity.Room, len(ids))
	for i, id := range ids {
		rooms[i] = entity.Room{ID: id, Name: "Room"}
	}
	return rooms
}

func TestDrawRooms_RankOrder(t *testing.T) {
	teams := rankedTeams(8)
	draws, err := DrawRooms(teams, testRooms(3, 5, 9), PositionsByRank, 5)
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.Equal(t, uint(3), draws[0].RoomID)
	assert.Equal(t, uint(5), draws[1].RoomID)

	wantPositions := []entity.Position{entity.PositionOG, entity.PositionOO, entity.PositionCG, entity.PositionCO}
	for r, d := range draws {
		require.Len(t, d.Seats, 4)
		for i, seat := range d.Seats {
			assert.Equal(t, teams[r*4+i].TeamID, seat.TeamID)
			assert.Equal(t, r*4+i+1, seat.Seed)
			assert.Equal(t, wantPositions[i], seat.Position)
		}
	}
}

func TestDrawRooms_EveryPositionOnce(t *testing.T) {
	for _, policy := range []PositionPolicy{PositionsByRank, PositionsRotating} {
		for round := 1; round <= 5; round++ {
			draws, err := DrawRooms(rankedTeams(16), testRooms(1, 2, 3, 4), policy, round)
			require.NoError(t, err)

			seenTeams := map[uint]bool{}
			for _, d := range draws {
				seen := map[entity.Position]int{}
				for _, seat := range d.Seats {
					seen[seat.Position]++
					assert.False(t, seenTeams[seat.TeamID])
					seenTeams[seat.TeamID] = true
				}
				for _, pos := range entity.Positions() {
					assert.Equal(t, 1, seen[pos], "policy %s round %d position %s", policy, round, pos)
				}
			}
		}
	}
}

func TestDrawRooms_RotatingShiftsByRound(t *testing.T) {
	teams := rankedTeams(4)

	r1, err := DrawRooms(teams, testRooms(1), PositionsRotating, 1)
	require.NoError(t, err)
	r2, err := DrawRooms(teams, testRooms(1), PositionsRotating, 2)
	require.NoError(t, err)

	assert.Equal(t, entity.PositionOG, r1[0].Seats[0].Position)
	assert.Equal(t, entity.PositionOO, r2[0].Seats[0].Position)
	assert.Equal(t, entity.PositionOG, r2[0].Seats[3].Position)
}

func TestDrawRooms_Errors(t *testing.T) {
	t.Run("not enough rooms", func(t *testing.T) {
		_, err := DrawRooms(rankedTeams(16), testRooms(1, 2, 3), PositionsByRank, 4)
		genErr, ok := apperrors.AsGenerationError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.KindInsufficientRooms, genErr.Kind)
		assert.Equal(t, 4, genErr.Required)
		assert.Equal(t, 3, genErr.Available)
	})

	t.Run("team count not a multiple of four", func(t *testing.T) {
		_, err := DrawRooms(rankedTeams(6), testRooms(1, 2), PositionsByRank, 1)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}
