package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lernquiz/lernquiz-go/internal/dependencies/clock"
	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

// searchLimit caps username search results
const searchLimit = 20

// Manager owns the friend relationship state machine:
// none -> pending -> accepted | declined, accepted -> removed.
type Manager struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewManager creates a friend Manager
func NewManager(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// SendRequest creates a pending request from me to target. If a pending
// request already exists in the reverse direction, both directions become
// accepted immediately instead, so two users requesting each other never
// deadlock as mutually pending. The returned bool reports that shortcut.
func (m *Manager) SendRequest(ctx context.Context, me, target string) (*model.FriendRequest, bool, error) {
	me = model.Normalize(me)
	target = model.Normalize(target)

	if target == "" {
		return nil, false, fmt.Errorf("%w: friend name required", model.ErrInvalidInput)
	}
	if target == me {
		return nil, false, fmt.Errorf("%w: cannot befriend yourself", model.ErrInvalidInput)
	}

	if _, err := m.storage.GetUser(ctx, target); err != nil {
		return nil, false, err
	}

	// An active record in either direction blocks a new request
	forward, err := m.storage.GetFriendRequest(ctx, me, target)
	if err != nil && !errors.Is(err, model.ErrRequestNotFound) {
		return nil, false, err
	}
	if forward != nil && forward.Active() {
		return nil, false, model.ErrRequestExists
	}

	reverse, err := m.storage.GetFriendRequest(ctx, target, me)
	if err != nil && !errors.Is(err, model.ErrRequestNotFound) {
		return nil, false, err
	}
	if reverse != nil && reverse.Status == model.RequestAccepted {
		return nil, false, model.ErrRequestExists
	}

	now := m.clock.Now()

	// Mutual-request shortcut: accept the reverse pending request
	if reverse != nil && reverse.Status == model.RequestPending {
		reverse.Status = model.RequestAccepted
		reverse.RespondedAt = &now
		reverse.Responder = me
		if err := m.storage.SaveFriendRequest(ctx, reverse); err != nil {
			return nil, false, err
		}

		req := &model.FriendRequest{
			Requester:   me,
			Target:      target,
			Status:      model.RequestAccepted,
			CreatedAt:   now,
			RespondedAt: &now,
			Responder:   me,
		}
		if err := m.storage.SaveFriendRequest(ctx, req); err != nil {
			return nil, false, err
		}

		m.logger.Info("mutual friend request auto-accepted",
			slog.String("requester", me),
			slog.String("target", target),
		)
		return req, true, nil
	}

	req := &model.FriendRequest{
		Requester: me,
		Target:    target,
		Status:    model.RequestPending,
		CreatedAt: now,
	}
	if err := m.storage.SaveFriendRequest(ctx, req); err != nil {
		return nil, false, err
	}

	m.logger.Info("friend request sent",
		slog.String("requester", me),
		slog.String("target", target),
	)
	return req, false, nil
}

// Respond resolves a pending request from -> me. Accepting sets both
// directions to accepted, creating the reverse record if absent.
func (m *Manager) Respond(ctx context.Context, me, from string, accept bool) (*model.FriendRequest, error) {
	me = model.Normalize(me)
	from = model.Normalize(from)

	if from == "" {
		return nil, fmt.Errorf("%w: sender name required", model.ErrInvalidInput)
	}

	pending, err := m.storage.GetFriendRequest(ctx, from, me)
	if err != nil {
		return nil, err
	}
	if pending.Status != model.RequestPending {
		return nil, model.ErrRequestNotFound
	}

	now := m.clock.Now()
	pending.RespondedAt = &now
	pending.Responder = me

	if !accept {
		pending.Status = model.RequestDeclined
		if err := m.storage.SaveFriendRequest(ctx, pending); err != nil {
			return nil, err
		}
		return pending, nil
	}

	pending.Status = model.RequestAccepted
	if err := m.storage.SaveFriendRequest(ctx, pending); err != nil {
		return nil, err
	}

	// Ensure the reverse direction is accepted as well
	reverse, err := m.storage.GetFriendRequest(ctx, me, from)
	switch {
	case errors.Is(err, model.ErrRequestNotFound):
		reverse = &model.FriendRequest{
			Requester:   me,
			Target:      from,
			Status:      model.RequestAccepted,
			CreatedAt:   now,
			RespondedAt: &now,
			Responder:   me,
		}
	case err != nil:
		return nil, err
	default:
		if reverse.Status == model.RequestAccepted {
			return pending, nil
		}
		reverse.Status = model.RequestAccepted
		reverse.RespondedAt = &now
		reverse.Responder = me
	}
	if err := m.storage.SaveFriendRequest(ctx, reverse); err != nil {
		return nil, err
	}

	m.logger.Info("friend request accepted",
		slog.String("requester", from),
		slog.String("target", me),
	)
	return pending, nil
}

// Remove ends a friendship: accepted records in both directions become
// removed, and any pending or declined residue between the two is deleted.
// Removing a non-friend is a no-op success.
func (m *Manager) Remove(ctx context.Context, me, other string) error {
	me = model.Normalize(me)
	other = model.Normalize(other)

	if other == "" || other == me {
		return fmt.Errorf("%w: friend name required", model.ErrInvalidInput)
	}

	now := m.clock.Now()
	for _, pair := range [][2]string{{me, other}, {other, me}} {
		req, err := m.storage.GetFriendRequest(ctx, pair[0], pair[1])
		if err != nil {
			if errors.Is(err, model.ErrRequestNotFound) {
				continue
			}
			return err
		}
		if req.Status != model.RequestAccepted {
			continue
		}
		req.Status = model.RequestRemoved
		req.RespondedAt = &now
		req.Responder = me
		if err := m.storage.SaveFriendRequest(ctx, req); err != nil {
			return err
		}
	}

	if err := m.storage.DeleteFriendRequestsBetween(ctx, me, other,
		[]model.RequestStatus{model.RequestPending, model.RequestDeclined}); err != nil {
		return err
	}

	m.logger.Info("friendship removed",
		slog.String("user", me),
		slog.String("friend", other),
	)
	return nil
}

// AreFriends reports whether an accepted record exists in either direction
func (m *Manager) AreFriends(ctx context.Context, a, b string) (bool, error) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		req, err := m.storage.GetFriendRequest(ctx, pair[0], pair[1])
		if err != nil {
			if errors.Is(err, model.ErrRequestNotFound) {
				continue
			}
			return false, err
		}
		if req.Status == model.RequestAccepted {
			return true, nil
		}
	}
	return false, nil
}

// ListWithStatus groups the user's relationship state: outgoing and
// incoming pending requests plus the deduplicated accepted friend list
func (m *Manager) ListWithStatus(ctx context.Context, me string) (*model.FriendsOverview, error) {
	me = model.Normalize(me)

	reqs, err := m.storage.ListFriendRequestsFor(ctx, me)
	if err != nil {
		return nil, err
	}

	overview := &model.FriendsOverview{
		Outgoing: []model.PendingRequestView{},
		Incoming: []model.PendingRequestView{},
	}
	friendSet := make(map[string]bool)

	for _, req := range reqs {
		switch req.Status {
		case model.RequestPending:
			if req.Requester == me {
				overview.Outgoing = append(overview.Outgoing, model.PendingRequestView{
					To:        req.Target,
					Status:    req.Status,
					CreatedAt: req.CreatedAt,
				})
			} else {
				overview.Incoming = append(overview.Incoming, model.PendingRequestView{
					From:      req.Requester,
					Status:    req.Status,
					CreatedAt: req.CreatedAt,
				})
			}
		case model.RequestAccepted:
			other := req.Target
			if other == me {
				other = req.Requester
			}
			if other != "" {
				friendSet[other] = true
			}
		}
	}

	sort.Slice(overview.Outgoing, func(i, j int) bool {
		return overview.Outgoing[i].CreatedAt.After(overview.Outgoing[j].CreatedAt)
	})
	sort.Slice(overview.Incoming, func(i, j int) bool {
		return overview.Incoming[i].CreatedAt.After(overview.Incoming[j].CreatedAt)
	})

	overview.Friends = make([]string, 0, len(friendSet))
	for name := range friendSet {
		overview.Friends = append(overview.Friends, name)
	}
	sort.Strings(overview.Friends)

	return overview, nil
}

// Search matches usernames case-insensitively by substring, excluding the
// caller, capped at a small page. Queries under two characters return
// nothing rather than the whole user table.
func (m *Manager) Search(ctx context.Context, me, query string) ([]string, error) {
	me = model.Normalize(me)
	query = model.Normalize(query)

	if len(query) < 2 {
		return []string{}, nil
	}

	names, err := m.storage.SearchUsers(ctx, query, searchLimit+1)
	if err != nil {
		return nil, err
	}

	results := make([]string, 0, len(names))
	for _, name := range names {
		if name == me {
			continue
		}
		results = append(results, name)
		if len(results) == searchLimit {
			break
		}
	}
	return results, nil
}
