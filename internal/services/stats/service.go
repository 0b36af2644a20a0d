package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lernquiz/lernquiz-go/internal/dependencies/clock"
	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

const maxAttemptBatch = 500

// Service aggregates game results and records answer attempts
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a stats Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Opponents aggregates finished games per opponent for a user.
// Results are sorted by game count descending, then opponent name ascending.
func (s *Service) Opponents(ctx context.Context, username string) ([]model.OpponentStats, error) {
	username = model.Normalize(username)

	games, err := s.storage.ListGamesFor(ctx, username)
	if err != nil {
		return nil, err
	}

	byOpponent := make(map[string]*model.OpponentStats)
	for _, g := range games {
		if !g.Finished {
			continue
		}
		side, ok := g.SideOf(username)
		if !ok {
			continue
		}
		opponent := g.Opponent(username)

		st, ok := byOpponent[opponent]
		if !ok {
			st = &model.OpponentStats{Opponent: opponent}
			byOpponent[opponent] = st
		}

		var mine, theirs int
		if side == model.SideHost {
			mine, theirs = g.HostCorrect, g.FriendCorrect
		} else {
			mine, theirs = g.FriendCorrect, g.HostCorrect
		}

		st.Games++
		st.MyCorrect += mine
		st.OppCorrect += theirs
		if mine > theirs {
			st.Wins++
		} else if mine < theirs {
			st.Losses++
		}
	}

	result := make([]model.OpponentStats, 0, len(byOpponent))
	for _, st := range byOpponent {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Games != result[j].Games {
			return result[i].Games > result[j].Games
		}
		return result[i].Opponent < result[j].Opponent
	})

	return result, nil
}

// Overall totals wins, losses and draws across all finished games for a user
func (s *Service) Overall(ctx context.Context, username string) (model.OverallStats, error) {
	username = model.Normalize(username)

	games, err := s.storage.ListGamesFor(ctx, username)
	if err != nil {
		return model.OverallStats{}, err
	}

	var overall model.OverallStats
	for _, g := range games {
		if !g.Finished {
			continue
		}
		side, ok := g.SideOf(username)
		if !ok {
			continue
		}

		var mine, theirs int
		if side == model.SideHost {
			mine, theirs = g.HostCorrect, g.FriendCorrect
		} else {
			mine, theirs = g.FriendCorrect, g.HostCorrect
		}

		switch {
		case mine > theirs:
			overall.Wins++
		case mine < theirs:
			overall.Losses++
		default:
			overall.Draws++
		}
	}

	return overall, nil
}

// RecordAttempts stores a batch of answer attempts for later analysis.
// Attempts with a zero timestamp are stamped with the current time.
func (s *Service) RecordAttempts(ctx context.Context, username string, attempts []model.Attempt) (int, error) {
	username = model.Normalize(username)

	if len(attempts) == 0 {
		return 0, fmt.Errorf("%w: no attempts provided", model.ErrInvalidInput)
	}
	if len(attempts) > maxAttemptBatch {
		return 0, fmt.Errorf("%w: too many attempts in one batch", model.ErrInvalidInput)
	}

	now := s.clock.Now()
	records := make([]*model.Attempt, 0, len(attempts))
	for _, a := range attempts {
		a.Username = username
		if a.QuestionID == "" {
			return 0, fmt.Errorf("%w: attempt missing question id", model.ErrInvalidInput)
		}
		if a.Timestamp.IsZero() {
			a.Timestamp = now
		}
		records = append(records, &a)
	}

	if err := s.storage.SaveAttempts(ctx, records); err != nil {
		return 0, err
	}

	s.logger.Info("attempts recorded",
		slog.String("username", username),
		slog.Int("count", len(attempts)))

	return len(attempts), nil
}
