package redis

import (
	"fmt"

	"github.com/lernquiz/lernquiz-go/internal/model"
)

// Key prefix for all quiz data
const keyPrefix = "quiz"

// userKey returns the Redis key for a User
func userKey(username string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, model.Normalize(username))
}

// usersIndexKey returns the Redis key for the SET of all usernames
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesForUserIndexKey returns the Redis key for the SET of a user's game IDs
func gamesForUserIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:games_for_user:%s", keyPrefix, model.Normalize(username))
}

// friendRequestKey returns the Redis key for the ordered-pair request record
func friendRequestKey(requester, target string) string {
	return fmt.Sprintf("%s:friendreq:%s:%s", keyPrefix, model.Normalize(requester), model.Normalize(target))
}

// friendRequestsForUserIndexKey returns the Redis key for the SET of request
// keys a user appears in (either direction)
func friendRequestsForUserIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:friendreqs_for_user:%s", keyPrefix, model.Normalize(username))
}

// messageKey returns the Redis key for a Message
func messageKey(id model.MessageID) string {
	return fmt.Sprintf("%s:message:%s", keyPrefix, id)
}

// unreadForUserIndexKey returns the Redis key for the SET of a recipient's
// unread message IDs; its cardinality is the unread count
func unreadForUserIndexKey(to string) string {
	return fmt.Sprintf("%s:idx:unread_for_user:%s", keyPrefix, model.Normalize(to))
}

// attemptsKey returns the Redis key for the LIST of recorded attempts
func attemptsKey() string {
	return fmt.Sprintf("%s:attempts", keyPrefix)
}
