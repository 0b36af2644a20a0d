package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users    map[string]*model.User
	games    map[model.GameID]*model.Game
	requests map[pairKey]*model.FriendRequest
	messages map[model.MessageID]*model.Message
	attempts []*model.Attempt
}

type pairKey struct {
	requester string
	target    string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:    make(map[string]*model.User),
		games:    make(map[model.GameID]*model.Game),
		requests: make(map[pairKey]*model.FriendRequest),
		messages: make(map[model.MessageID]*model.Message),
	}
}

var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[model.Normalize(user.Username)] = user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[model.Normalize(username)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) SearchUsers(ctx context.Context, query string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := model.Normalize(query)
	var names []string
	for name := range s.users {
		if strings.Contains(name, q) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) ListGamesFor(ctx context.Context, username string) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := model.Normalize(username)
	var games []*model.Game
	for _, g := range s.games {
		if model.Normalize(g.HostName) == u || model.Normalize(g.FriendName) == u {
			games = append(games, g)
		}
	}
	return games, nil
}

func (s *Storage) UpsertAnswers(ctx context.Context, id model.GameID, side model.Side, answers []model.Answer) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}

	set := game.AnswersFor(side)
	if set == nil {
		set = model.NewAnswerSet()
		if side == model.SideHost {
			game.HostAnswers = set
		} else {
			game.FriendAnswers = set
		}
	}
	set.Upsert(answers...)
	return game, nil
}

// Friend request operations

func (s *Storage) SaveFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{model.Normalize(req.Requester), model.Normalize(req.Target)}
	s.requests[key] = req
	return nil
}

func (s *Storage) GetFriendRequest(ctx context.Context, requester, target string) (*model.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := pairKey{model.Normalize(requester), model.Normalize(target)}
	req, ok := s.requests[key]
	if !ok {
		return nil, model.ErrRequestNotFound
	}
	return req, nil
}

func (s *Storage) ListFriendRequestsFor(ctx context.Context, username string) ([]*model.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := model.Normalize(username)
	var reqs []*model.FriendRequest
	for key, req := range s.requests {
		if key.requester == u || key.target == u {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (s *Storage) DeleteFriendRequestsBetween(ctx context.Context, a, b string, statuses []model.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	na, nb := model.Normalize(a), model.Normalize(b)
	for _, key := range []pairKey{{na, nb}, {nb, na}} {
		req, ok := s.requests[key]
		if !ok {
			continue
		}
		for _, status := range statuses {
			if req.Status == status {
				delete(s.requests, key)
				break
			}
		}
	}
	return nil
}

// Message operations

func (s *Storage) SaveMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ID] = msg
	return nil
}

func (s *Storage) GetMessage(ctx context.Context, id model.MessageID) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	return msg, nil
}

func (s *Storage) MarkMessageRead(ctx context.Context, id model.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return model.ErrMessageNotFound
	}
	msg.Read = true
	return nil
}

func (s *Storage) CountUnreadMessages(ctx context.Context, to string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := model.Normalize(to)
	n := 0
	for _, msg := range s.messages {
		if model.Normalize(msg.To) == u && !msg.Read {
			n++
		}
	}
	return n, nil
}

// Attempt operations

func (s *Storage) SaveAttempts(ctx context.Context, attempts []*model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempts...)
	return nil
}

// Attempts returns all recorded attempts (test helper)
func (s *Storage) Attempts() []*model.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}
