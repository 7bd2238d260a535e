package tabulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankRoom(t *testing.T) {
	tests := []struct {
		name       string
		totals     []TeamTotal
		wantOrder  []uint
		wantPoints []int
	}{
		{
			name: "distinct totals with a tie at the top",
			totals: []TeamTotal{
				{TeamID: 1, TeamName: "X", Total: 50},
				{TeamID: 2, TeamName: "Y", Total: 50},
				{TeamID: 3, TeamName: "Z", Total: 40},
				{TeamID: 4, TeamName: "W", Total: 30},
			},
			wantOrder:  []uint{1, 2, 3, 4},
			wantPoints: []int{3, 2, 1, 0},
		},
		{
			name: "reverse input order",
			totals: []TeamTotal{
				{TeamID: 4, Total: 10},
				{TeamID: 3, Total: 20},
				{TeamID: 2, Total: 30},
				{TeamID: 1, Total: 40},
			},
			wantOrder:  []uint{1, 2, 3, 4},
			wantPoints: []int{3, 2, 1, 0},
		},
		{
			name: "all zero keeps input order",
			totals: []TeamTotal{
				{TeamID: 7}, {TeamID: 5}, {TeamID: 9}, {TeamID: 6},
			},
			wantOrder:  []uint{7, 5, 9, 6},
			wantPoints: []int{3, 2, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := RankRoom(tt.totals)
			require.Len(t, results, len(tt.totals))

			sum := 0
			for i, r := range results {
				assert.Equal(t, tt.wantOrder[i], r.TeamID)
				assert.Equal(t, i+1, r.Rank)
				assert.Equal(t, tt.wantPoints[i], r.Points)
				sum += r.Points
			}
			assert.Equal(t, 6, sum)
		})
	}
}

func TestRankRoom_DoesNotMutateInput(t *testing.T) {
	totals := []TeamTotal{{TeamID: 1, Total: 1}, {TeamID: 2, Total: 2}}
	RankRoom(totals)
	assert.Equal(t, uint(1), totals[0].TeamID)
}

func TestPointsForRank(t *testing.T) {
	assert.Equal(t, 3, PointsForRank(1))
	assert.Equal(t, 2, PointsForRank(2))
	assert.Equal(t, 1, PointsForRank(3))
	assert.Equal(t, 0, PointsForRank(4))
	assert.Equal(t, 0, PointsForRank(0))
	assert.Equal(t, 0, PointsForRank(5))
}

func TestStandings_Ranked(t *testing.T) {
	s := NewStandings()
	// раунд 1
	s.Add([]RoomResult{
		{TeamID: 4, TeamName: "D", Rank: 1, Points: 3, TotalScore: 150},
		{TeamID: 3, TeamName: "C", Rank: 2, Points: 2, TotalScore: 160},
		{TeamID: 2, TeamName: "B", Rank: 3, Points: 1, TotalScore: 140},
		{TeamID: 1, TeamName: "A", Rank: 4, Points: 0, TotalScore: 130},
	})
	// раунд 2
	s.Add([]RoomResult{
		{TeamID: 1, TeamName: "A", Rank: 1, Points: 3, TotalScore: 170},
		{TeamID: 2, TeamName: "B", Rank: 2, Points: 2, TotalScore: 150},
		{TeamID: 3, TeamName: "C", Rank: 3, Points: 1, TotalScore: 140},
		{TeamID: 4, TeamName: "D", Rank: 4, Points: 0, TotalScore: 150},
	})

	ranked := s.Ranked()
	require.Len(t, ranked, 4)

	// Все по 3 очка: A=300, C=300, B=290, D=300.
	// Сумма равна у A, C, D, поэтому порядок по ID: A(1), C(3), D(4); затем B.
	ids := []uint{ranked[0].TeamID, ranked[1].TeamID, ranked[2].TeamID, ranked[3].TeamID}
	assert.Equal(t, []uint{1, 3, 4, 2}, ids)
	for i, st := range ranked {
		assert.Equal(t, i+1, st.Position)
		assert.Equal(t, 3, st.Points)
		assert.Equal(t, 2, st.Debates)
	}
	assert.Equal(t, 1, ranked[0].Firsts)
	assert.Equal(t, 0, ranked[3].Firsts)
}

func TestStandings_OrderingRule(t *testing.T) {
	standings := []Standing{
		{TeamID: 1, Points: 5, TotalScore: 400},
		{TeamID: 2, Points: 6, TotalScore: 300},
		{TeamID: 3, Points: 5, TotalScore: 410},
		{TeamID: 4, Points: 5, TotalScore: 400},
	}
	SortStandings(standings)

	assert.Equal(t, uint(2), standings[0].TeamID)
	assert.Equal(t, uint(3), standings[1].TeamID)
	assert.Equal(t, uint(1), standings[2].TeamID)
	assert.Equal(t, uint(4), standings[3].TeamID)

	for i := 0; i+1 < len(standings); i++ {
		assert.False(t, Above(standings[i+1], standings[i]), "position %d is above %d", i+2, i+1)
	}
}
