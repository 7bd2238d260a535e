package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/domain/repository"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// resultsLoader загружает комнаты и оценки раундов для подсчёта рейтинга
type resultsLoader struct {
	assignmentRepo repository.AssignmentRepository
	scoreRepo      repository.ScoreRepository
	teamRepo       repository.TeamRepository
}

// load возвращает входные данные по каждому раунду (в порядке rounds)
// и соответствие participant_id → team_id
func (l resultsLoader) load(ctx context.Context, rounds []entity.Round) ([]tabulation.RoundInput, map[uint]uint, error) {
	ids := make([]uint, len(rounds))
	for i, r := range rounds {
		ids[i] = r.ID
	}

	var (
		assignments      []entity.RoundAssignment
		scores           []entity.Score
		participantTeams map[uint]uint
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assignments, err = l.assignmentRepo.ListByRounds(gCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		scores, err = l.scoreRepo.ListByRounds(gCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to load scores: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		participantTeams, err = l.teamRepo.ParticipantTeams(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	index := make(map[uint]int, len(rounds))
	inputs := make([]tabulation.RoundInput, len(rounds))
	for i, r := range rounds {
		index[r.ID] = i
		inputs[i].Round = r
	}
	for _, a := range assignments {
		if i, ok := index[a.RoundID]; ok {
			inputs[i].Assignments = append(inputs[i].Assignments, a)
		}
	}
	for _, s := range scores {
		if i, ok := index[s.RoundID]; ok {
			inputs[i].Scores = append(inputs[i].Scores, s)
		}
	}
	return inputs, participantTeams, nil
}
