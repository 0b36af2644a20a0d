package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	name := model.Normalize(user.Username)

	// Pipeline the document write and the index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(name), data, 0)
	pipe.SAdd(ctx, usersIndexKey(), name)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) SearchUsers(ctx context.Context, query string, limit int) ([]string, error) {
	names, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	q := model.Normalize(query)
	var matches []string
	for _, name := range names {
		if strings.Contains(name, q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	pipe.SAdd(ctx, gamesForUserIndexKey(game.HostName), string(game.ID))
	pipe.SAdd(ctx, gamesForUserIndexKey(game.FriendName), string(game.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.SRem(ctx, gamesForUserIndexKey(game.HostName), string(id))
	pipe.SRem(ctx, gamesForUserIndexKey(game.FriendName), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGamesFor(ctx context.Context, username string) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gamesForUserIndexKey(username)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // stale index entry
		}
		var game model.Game
		if err := json.Unmarshal([]byte(val.(string)), &game); err != nil {
			continue
		}
		games = append(games, &game)
	}
	return games, nil
}

// UpsertAnswers merges answers into one side's collection inside an
// optimistic WATCH transaction, retried on contention, so concurrent
// resubmissions from the same side never produce duplicate records or
// lost updates.
func (s *Storage) UpsertAnswers(ctx context.Context, id model.GameID, side model.Side, answers []model.Answer) (*model.Game, error) {
	key := gameKey(id)
	var updated *model.Game

	merge := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}

		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return err
		}

		set := game.AnswersFor(side)
		if set == nil {
			set = model.NewAnswerSet()
		}
		set.Upsert(answers...)
		if side == model.SideHost {
			game.HostAnswers = set
		} else {
			game.FriendAnswers = set
		}

		out, err := json.Marshal(&game)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &game
		return nil
	}

	retries := s.cfg.UpsertRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, merge, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, redis.TxFailedErr
}

// Friend request operations

func (s *Storage) SaveFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	key := friendRequestKey(req.Requester, req.Target)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, friendRequestsForUserIndexKey(req.Requester), key)
	pipe.SAdd(ctx, friendRequestsForUserIndexKey(req.Target), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetFriendRequest(ctx context.Context, requester, target string) (*model.FriendRequest, error) {
	data, err := s.client.Get(ctx, friendRequestKey(requester, target)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRequestNotFound
		}
		return nil, err
	}

	var req model.FriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Storage) ListFriendRequestsFor(ctx context.Context, username string) ([]*model.FriendRequest, error) {
	keys, err := s.client.SMembers(ctx, friendRequestsForUserIndexKey(username)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.FriendRequest{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	reqs := make([]*model.FriendRequest, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var req model.FriendRequest
		if err := json.Unmarshal([]byte(val.(string)), &req); err != nil {
			continue
		}
		reqs = append(reqs, &req)
	}
	return reqs, nil
}

func (s *Storage) DeleteFriendRequestsBetween(ctx context.Context, a, b string, statuses []model.RequestStatus) error {
	wanted := make(map[model.RequestStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	pairs := [][2]string{{a, b}, {b, a}}
	for _, pair := range pairs {
		req, err := s.GetFriendRequest(ctx, pair[0], pair[1])
		if err != nil {
			if errors.Is(err, model.ErrRequestNotFound) {
				continue
			}
			return err
		}
		if !wanted[req.Status] {
			continue
		}

		key := friendRequestKey(pair[0], pair[1])
		pipe := s.client.Pipeline()
		pipe.Del(ctx, key)
		pipe.SRem(ctx, friendRequestsForUserIndexKey(pair[0]), key)
		pipe.SRem(ctx, friendRequestsForUserIndexKey(pair[1]), key)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Message operations

func (s *Storage) SaveMessage(ctx context.Context, msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, messageKey(msg.ID), data, s.cfg.MessageTTL)
	if !msg.Read {
		pipe.SAdd(ctx, unreadForUserIndexKey(msg.To), string(msg.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMessage(ctx context.Context, id model.MessageID) (*model.Message, error) {
	data, err := s.client.Get(ctx, messageKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMessageNotFound
		}
		return nil, err
	}

	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Storage) MarkMessageRead(ctx context.Context, id model.MessageID) error {
	msg, err := s.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	msg.Read = true

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, messageKey(id), data, s.cfg.MessageTTL)
	pipe.SRem(ctx, unreadForUserIndexKey(msg.To), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) CountUnreadMessages(ctx context.Context, to string) (int, error) {
	n, err := s.client.SCard(ctx, unreadForUserIndexKey(to)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Attempt operations

func (s *Storage) SaveAttempts(ctx context.Context, attempts []*model.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(attempts))
	for _, a := range attempts {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		docs = append(docs, data)
	}
	return s.client.RPush(ctx, attemptsKey(), docs...).Err()
}
