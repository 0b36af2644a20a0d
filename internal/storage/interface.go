package storage

import (
	"context"

	"github.com/lernquiz/lernquiz-go/internal/model"
)

// Storage defines the interface for data persistence. It is the single
// serialization point for concurrent requests; implementations must make
// UpsertAnswers atomic per call so a side never holds two answers for the
// same question.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (*model.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]string, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGamesFor(ctx context.Context, username string) ([]*model.Game, error)

	// UpsertAnswers merges the answers into one side's collection,
	// replacing any prior record per question, and returns the updated
	// game. The merge is all-or-nothing per call.
	UpsertAnswers(ctx context.Context, id model.GameID, side model.Side, answers []model.Answer) (*model.Game, error)

	// Friend request operations; records are keyed by the ordered
	// (requester, target) pair
	SaveFriendRequest(ctx context.Context, req *model.FriendRequest) error
	GetFriendRequest(ctx context.Context, requester, target string) (*model.FriendRequest, error)
	ListFriendRequestsFor(ctx context.Context, username string) ([]*model.FriendRequest, error)
	DeleteFriendRequestsBetween(ctx context.Context, a, b string, statuses []model.RequestStatus) error

	// Message operations
	SaveMessage(ctx context.Context, msg *model.Message) error
	GetMessage(ctx context.Context, id model.MessageID) (*model.Message, error)
	MarkMessageRead(ctx context.Context, id model.MessageID) error
	CountUnreadMessages(ctx context.Context, to string) (int, error)

	// Attempt operations
	SaveAttempts(ctx context.Context, attempts []*model.Attempt) error
}
