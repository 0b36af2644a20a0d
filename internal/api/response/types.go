package response

import (
	"time"

	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/services/account"
)

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Username     string `json:"username"`
	SessionToken string `json:"sessionToken"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *account.Session) AuthResponse {
	return AuthResponse{
		Username:     s.Username,
		SessionToken: s.Token,
	}
}

// GameDetail is the full view of a game from one participant's perspective
type GameDetail struct {
	ID               model.GameID       `json:"gameId"`
	HostName         string             `json:"hostName"`
	FriendName       string             `json:"friendName"`
	Questions        []model.QuestionID `json:"questions"`
	Finished         bool               `json:"finished"`
	FinishedAt       *time.Time         `json:"finishedAt,omitempty"`
	HostCorrect      int                `json:"hostCorrectCount"`
	FriendCorrect    int                `json:"friendCorrectCount"`
	CreatedAt        time.Time          `json:"createdAt"`
	MySide           string             `json:"mySide"`
	MyAnswers        []model.Answer     `json:"myAnswers"`
	OpponentAnswered int                `json:"opponentAnswered"`
	SeenResult       bool               `json:"seenResult"`
}

// GameDetailFromModel converts a game to the viewer's perspective
func GameDetailFromModel(g *model.Game, username string) GameDetail {
	side, _ := g.SideOf(username)
	opponent := g.Opponent(username)
	oppSide, _ := g.SideOf(opponent)

	return GameDetail{
		ID:               g.ID,
		HostName:         g.HostName,
		FriendName:       g.FriendName,
		Questions:        g.Questions,
		Finished:         g.Finished,
		FinishedAt:       g.FinishedAt,
		HostCorrect:      g.HostCorrect,
		FriendCorrect:    g.FriendCorrect,
		CreatedAt:        g.CreatedAt,
		MySide:           string(side),
		MyAnswers:        g.AnswersFor(side).Ordered(g.Questions),
		OpponentAnswered: g.AnsweredCount(oppSide),
		SeenResult:       g.SeenBy(side),
	}
}

// OpenGamesResponse lists a user's open games. Unseen is the number of
// games still awaiting answers from the caller.
type OpenGamesResponse struct {
	Games  []model.OpenGameView `json:"games"`
	Unseen int                  `json:"unseen"`
}

// FinishedGamesResponse lists a user's finished games. Unseen is the
// number of results the caller has not acknowledged yet.
type FinishedGamesResponse struct {
	Games  []model.FinishedGameView `json:"games"`
	Unseen int                      `json:"unseen"`
}

// SubmitAnswersResponse is the response after submitting answers
type SubmitAnswersResponse struct {
	Game     GameDetail `json:"game"`
	Finished bool       `json:"finished"`
}

// FriendsResponse is the full friends overview
type FriendsResponse struct {
	Friends  []string                   `json:"friends"`
	Incoming []model.PendingRequestView `json:"incoming"`
	Outgoing []model.PendingRequestView `json:"outgoing"`
}

// FriendsResponseFromOverview converts a friends overview
func FriendsResponseFromOverview(o *model.FriendsOverview) FriendsResponse {
	return FriendsResponse{
		Friends:  o.Friends,
		Incoming: o.Incoming,
		Outgoing: o.Outgoing,
	}
}

// FriendRequestResponse is the response after sending a friend request
type FriendRequestResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Status  string `json:"status"`
	Matched bool   `json:"matched"`
}

// SearchResponse lists usernames matching a search query
type SearchResponse struct {
	Users []string `json:"users"`
}

// MessageResponse is a single message
type MessageResponse struct {
	ID     model.MessageID `json:"messageId"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Body   string          `json:"body"`
	Read   bool            `json:"read"`
	SentAt time.Time       `json:"sentAt"`
}

// MessageResponseFromModel converts a message
func MessageResponseFromModel(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:     m.ID,
		From:   m.From,
		To:     m.To,
		Body:   m.Body,
		Read:   m.Read,
		SentAt: m.SentAt,
	}
}

// OpponentStatsResponse lists per-opponent aggregates
type OpponentStatsResponse struct {
	Opponents []model.OpponentStats `json:"opponents"`
}

// AttemptsResponse reports how many attempts were recorded
type AttemptsResponse struct {
	Recorded int `json:"recorded"`
}
