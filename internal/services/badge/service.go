package badge

import (
	"context"
	"log/slog"

	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

// Service computes the per-user badge counters from current store state.
// It is read-only and safe to call at arbitrary frequency.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a badge Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Counters returns the three badge counters for a user: unread messages,
// open games still awaiting answers from this user, and pending friend
// requests targeting the user.
func (s *Service) Counters(ctx context.Context, user string) (model.BadgeCounts, error) {
	user = model.Normalize(user)

	var counts model.BadgeCounts

	unread, err := s.storage.CountUnreadMessages(ctx, user)
	if err != nil {
		return counts, err
	}
	counts.UnreadMessages = unread

	games, err := s.storage.ListGamesFor(ctx, user)
	if err != nil {
		return counts, err
	}
	for _, g := range games {
		if g.Finished {
			continue
		}
		side, ok := g.SideOf(user)
		if !ok {
			continue
		}
		if g.AnsweredCount(side) < g.TotalQuestions() {
			counts.OpenGames++
		}
	}

	reqs, err := s.storage.ListFriendRequestsFor(ctx, user)
	if err != nil {
		return counts, err
	}
	for _, req := range reqs {
		if req.Status == model.RequestPending && model.Normalize(req.Target) == user {
			counts.PendingFriendRequests++
		}
	}

	return counts, nil
}
