package tabulation

import (
	"fmt"

	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// SelectQualifiers возвращает первые n команд рейтинга, сохраняя порядок.
// Если команд меньше n: ошибка нехватки команд, ничего не добирается.
func SelectQualifiers(ranked []Standing, n, stage int) ([]Standing, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: qualifier count must be positive, got %d", apperrors.ErrValidation, n)
	}
	seen := make(map[uint]bool, len(ranked))
	unique := 0
	for _, st := range ranked {
		if seen[st.TeamID] {
			return nil, fmt.Errorf("%w: team %d appears twice in standings", apperrors.ErrValidation, st.TeamID)
		}
		seen[st.TeamID] = true
		unique++
	}
	if unique < n {
		return nil, apperrors.NewInsufficientTeams(stage, n, unique)
	}
	out := make([]Standing, n)
	copy(out, ranked[:n])
	return out, nil
}
