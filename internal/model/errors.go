package model

import "errors"

// Common errors used across the application. Services wrap ErrInvalidInput
// with fmt.Errorf("%w: ...") to add detail; callers match with errors.Is.
var (
	// Invalid input: rejected before any mutation
	ErrInvalidInput = errors.New("invalid input")

	// Not found
	ErrGameNotFound    = errors.New("game not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrMessageNotFound = errors.New("message not found")

	// Forbidden: authenticated but not authorized for this entity
	ErrNotParticipant = errors.New("user is not a participant of this game")

	// Conflict: current state disallows the operation
	ErrGameFinished  = errors.New("game is already finished")
	ErrRequestExists = errors.New("an active friend relationship already exists")
)
