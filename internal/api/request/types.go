package request

import (
	"github.com/lernquiz/lernquiz-go/internal/model"
)

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for starting a game
type CreateGameRequest struct {
	FriendName string             `json:"friendName"`
	Questions  []model.QuestionID `json:"questions"`
}

// SubmitAnswersRequest is the request body for submitting answers
type SubmitAnswersRequest struct {
	Answers []model.Answer `json:"answers"`
}

// FriendRequestRequest is the request body for sending a friend request
type FriendRequestRequest struct {
	Username string `json:"username"`
}

// RespondRequest is the request body for answering a friend request
type RespondRequest struct {
	From   string `json:"from"`
	Accept bool   `json:"accept"`
}

// SendMessageRequest is the request body for sending a message
type SendMessageRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// AttemptsRequest is the request body for recording answer attempts
type AttemptsRequest struct {
	Attempts []model.Attempt `json:"attempts"`
}

// ProgressRequest is the request body for reporting game progress
type ProgressRequest struct {
	GameID   model.GameID `json:"gameId"`
	Answered int          `json:"answered"`
}
