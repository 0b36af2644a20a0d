package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lernquiz/lernquiz-go/internal/dependencies/clock"
	"github.com/lernquiz/lernquiz-go/internal/dependencies/random"
	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

const gameIDLength = 12

// Controller owns the game lifecycle state machine: creation, answer
// merging, auto-finish, manual finish, seen-acknowledgement and deletion.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a game Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateGame inserts a new open game between host and friend over the given
// question list. Both answer collections start empty.
func (c *Controller) CreateGame(ctx context.Context, host, friend string, questions []model.QuestionID) (*model.Game, error) {
	host = model.Normalize(host)
	friend = model.Normalize(friend)

	if friend == "" {
		return nil, fmt.Errorf("%w: friend name required", model.ErrInvalidInput)
	}
	if friend == host {
		return nil, fmt.Errorf("%w: cannot play against yourself", model.ErrInvalidInput)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: question list required", model.ErrInvalidInput)
	}

	game := &model.Game{
		ID:            model.GameID(c.random.String(gameIDLength, random.IDAlphabet)),
		HostName:      host,
		FriendName:    friend,
		Questions:     questions,
		HostAnswers:   model.NewAnswerSet(),
		FriendAnswers: model.NewAnswerSet(),
		CreatedAt:     c.clock.Now(),
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("host", host),
		slog.String("friend", friend),
		slog.Int("questions", len(questions)),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// SubmitAnswers merges the answers into the submitting user's side of the
// game, then runs the auto-finish check. The merge replaces any prior record
// per question, so duplicate delivery and partial resubmission are safe.
// The returned bool reports whether this call finished the game.
func (c *Controller) SubmitAnswers(ctx context.Context, id model.GameID, user string, answers []model.Answer) (*model.Game, bool, error) {
	if len(answers) == 0 {
		return nil, false, fmt.Errorf("%w: answers required", model.ErrInvalidInput)
	}
	for i := range answers {
		if answers[i].QuestionID == "" {
			return nil, false, fmt.Errorf("%w: answer without questionId", model.ErrInvalidInput)
		}
		if answers[i].Timestamp.IsZero() {
			answers[i].Timestamp = c.clock.Now()
		}
	}

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, false, err
	}

	side, ok := game.SideOf(user)
	if !ok {
		return nil, false, model.ErrNotParticipant
	}
	if game.Finished {
		return nil, false, model.ErrGameFinished
	}

	game, err = c.storage.UpsertAnswers(ctx, id, side, answers)
	if err != nil {
		return nil, false, err
	}

	if !game.BothSidesAnswered() {
		return game, false, nil
	}

	// Auto-finish: freeze correctness counts and reset seen flags
	now := c.clock.Now()
	game.Finished = true
	game.FinishedAt = &now
	game.HostCorrect = game.HostAnswers.CorrectCount()
	game.FriendCorrect = game.FriendAnswers.CorrectCount()
	game.HostSeenResult = false
	game.FriendSeenResult = false

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, false, err
	}

	c.logger.Info("game finished",
		slog.String("game_id", string(id)),
		slog.Int("host_correct", game.HostCorrect),
		slog.Int("friend_correct", game.FriendCorrect),
	)

	return game, true, nil
}

// MarkSeen records that the user has seen the result of a finished game
// and returns the updated game
func (c *Controller) MarkSeen(ctx context.Context, id model.GameID, user string) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.Finished {
		return nil, model.ErrGameNotFound
	}

	side, ok := game.SideOf(user)
	if !ok {
		return nil, model.ErrNotParticipant
	}

	if side == model.SideHost {
		game.HostSeenResult = true
	} else {
		game.FriendSeenResult = true
	}
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// FinishManually closes a game early without computing correctness counts.
// This is the abandonment path; counts stay at whatever the last auto-finish
// evaluation left.
func (c *Controller) FinishManually(ctx context.Context, id model.GameID, user string) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.IsParticipant(user) {
		return nil, model.ErrNotParticipant
	}
	if game.Finished {
		return nil, model.ErrGameFinished
	}

	now := c.clock.Now()
	game.Finished = true
	game.FinishedAt = &now

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game finished manually",
		slog.String("game_id", string(id)),
		slog.String("user", model.Normalize(user)),
	)

	return game, nil
}

// Delete removes an unfinished game permanently; finished games are
// immutable and cannot be deleted through this path
func (c *Controller) Delete(ctx context.Context, id model.GameID, user string) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.IsParticipant(user) {
		return nil, model.ErrNotParticipant
	}
	if game.Finished {
		return nil, model.ErrGameFinished
	}

	if err := c.storage.DeleteGame(ctx, id); err != nil {
		return nil, err
	}

	c.logger.Info("game deleted",
		slog.String("game_id", string(id)),
		slog.String("user", model.Normalize(user)),
	)

	return game, nil
}

// ListOpen returns the user's unfinished games ordered by creation time,
// plus the count of games still awaiting answers from this user (the
// open-games badge value).
func (c *Controller) ListOpen(ctx context.Context, user string) ([]model.OpenGameView, int, error) {
	games, err := c.storage.ListGamesFor(ctx, user)
	if err != nil {
		return nil, 0, err
	}

	var open []*model.Game
	for _, g := range games {
		if !g.Finished {
			open = append(open, g)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	views := make([]model.OpenGameView, 0, len(open))
	unseen := 0
	for _, g := range open {
		views = append(views, g.OpenView())
		side, _ := g.SideOf(user)
		if g.AnsweredCount(side) < g.TotalQuestions() {
			unseen++
		}
	}
	return views, unseen, nil
}

// ListFinished returns the user's finished games newest first,
// perspective-adjusted, plus the count the user has not acknowledged yet
func (c *Controller) ListFinished(ctx context.Context, user string) ([]model.FinishedGameView, int, error) {
	games, err := c.storage.ListGamesFor(ctx, user)
	if err != nil {
		return nil, 0, err
	}

	var finished []*model.Game
	for _, g := range games {
		if g.Finished {
			finished = append(finished, g)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		ti, tj := finished[i].FinishedAt, finished[j].FinishedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	views := make([]model.FinishedGameView, 0, len(finished))
	unseen := 0
	for _, g := range finished {
		v := g.FinishedView(user)
		if !v.MySeen {
			unseen++
		}
		views = append(views, v)
	}
	return views, unseen, nil
}
