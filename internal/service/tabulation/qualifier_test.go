package tabulation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

func rankedTeams(n int) []Standing {
	out := make([]Standing, n)
	for i := range out {
		out[i] = Standing{TeamID: uint(i + 1), Position: i + 1, Points: 100 - i}
	}
	return out
}

func TestSelectQualifiers(t *testing.T) {
	tests := []struct {
		name          string
		ranked        []Standing
		n             int
		wantErr       bool
		wantRequired  int
		wantAvailable int
	}{
		{name: "exactly sixteen", ranked: rankedTeams(16), n: 16},
		{name: "more than needed", ranked: rankedTeams(20), n: 8},
		{name: "only twelve of sixteen", ranked: rankedTeams(12), n: 16, wantErr: true, wantRequired: 16, wantAvailable: 12},
		{name: "empty standings", ranked: nil, n: 4, wantErr: true, wantRequired: 4, wantAvailable: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectQualifiers(tt.ranked, tt.n, 4)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.True(t, errors.Is(err, apperrors.ErrPrecondition))

				genErr, ok := apperrors.AsGenerationError(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.KindInsufficientTeams, genErr.Kind)
				assert.Equal(t, tt.wantRequired, genErr.Required)
				assert.Equal(t, tt.wantAvailable, genErr.Available)
				return
			}

			require.NoError(t, err)
			require.Len(t, got, tt.n)
			for i := range got {
				assert.Equal(t, tt.ranked[i].TeamID, got[i].TeamID)
			}
		})
	}
}

func TestSelectQualifiers_RejectsDuplicates(t *testing.T) {
	ranked := rankedTeams(4)
	ranked[3].TeamID = ranked[0].TeamID

	_, err := SelectQualifiers(ranked, 4, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestSelectQualifiers_NonPositiveCount(t *testing.T) {
	_, err := SelectQualifiers(rankedTeams(4), 0, 4)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
