package model

import "time"

// GameID uniquely identifies a game
type GameID string

// QuestionID references a question in the content store
type QuestionID string

// Side identifies which half of a game a participant occupies
type Side string

const (
	SideHost   Side = "host"
	SideFriend Side = "friend"
)

// Game is a two-participant asynchronous quiz session over a fixed question
// list. Host and friend answer independently; the game finishes automatically
// once both sides have answered every question.
type Game struct {
	ID         GameID `json:"id"`
	HostName   string `json:"hostName"`
	FriendName string `json:"friendName"`

	// Questions is fixed at creation and immutable afterwards
	Questions []QuestionID `json:"questions"`

	HostAnswers   AnswerSet `json:"hostAnswers"`
	FriendAnswers AnswerSet `json:"friendAnswers"`

	// Finished only ever transitions false -> true
	Finished   bool       `json:"finished"`
	FinishedAt *time.Time `json:"finishedAt"`

	// Correct counts are computed once at auto-finish and frozen
	HostCorrect   int `json:"hostCorrect"`
	FriendCorrect int `json:"friendCorrect"`

	HostSeenResult   bool `json:"hostSeenResult"`
	FriendSeenResult bool `json:"friendSeenResult"`

	CreatedAt time.Time `json:"createdAt"`
}

// TotalQuestions returns the number of questions in the game
func (g *Game) TotalQuestions() int {
	return len(g.Questions)
}

// SideOf returns which side the given user occupies, if any.
// Usernames are matched case-insensitively via Normalize.
func (g *Game) SideOf(username string) (Side, bool) {
	switch Normalize(username) {
	case Normalize(g.HostName):
		return SideHost, true
	case Normalize(g.FriendName):
		return SideFriend, true
	}
	return "", false
}

// IsParticipant reports whether the user is the host or the friend
func (g *Game) IsParticipant(username string) bool {
	_, ok := g.SideOf(username)
	return ok
}

// Opponent returns the other participant's name relative to username
func (g *Game) Opponent(username string) string {
	if Normalize(username) == Normalize(g.HostName) {
		return g.FriendName
	}
	return g.HostName
}

// AnswersFor returns the answer collection for a side
func (g *Game) AnswersFor(side Side) AnswerSet {
	if side == SideHost {
		return g.HostAnswers
	}
	return g.FriendAnswers
}

// AnsweredCount returns how many distinct questions a side has answered
func (g *Game) AnsweredCount(side Side) int {
	return len(g.AnswersFor(side))
}

// BothSidesAnswered reports whether both sides have answered at least
// as many distinct questions as the game has
func (g *Game) BothSidesAnswered() bool {
	total := g.TotalQuestions()
	return len(g.HostAnswers) >= total && len(g.FriendAnswers) >= total
}

// SeenBy reports whether the given side has acknowledged the result
func (g *Game) SeenBy(side Side) bool {
	if side == SideHost {
		return g.HostSeenResult
	}
	return g.FriendSeenResult
}

// OpenGameView is the reduced representation of a game still in play
type OpenGameView struct {
	ID             GameID `json:"id"`
	HostName       string `json:"hostName"`
	FriendName     string `json:"friendName"`
	TotalQuestions int    `json:"totalQuestions"`
	HostAnswered   int    `json:"hostAnswered"`
	FriendAnswered int    `json:"friendAnswered"`
}

// OpenView reduces the game to its open-list representation
func (g *Game) OpenView() OpenGameView {
	return OpenGameView{
		ID:             g.ID,
		HostName:       g.HostName,
		FriendName:     g.FriendName,
		TotalQuestions: g.TotalQuestions(),
		HostAnswered:   g.AnsweredCount(SideHost),
		FriendAnswered: g.AnsweredCount(SideFriend),
	}
}

// FinishedGameView is the perspective-adjusted representation of a finished
// game: opponent/myCorrect/mySeen are resolved for whichever side the
// requesting user occupies.
type FinishedGameView struct {
	ID           GameID     `json:"id"`
	OpponentName string     `json:"opponentName"`
	Total        int        `json:"total"`
	MyCorrect    int        `json:"myCorrect"`
	OppCorrect   int        `json:"oppCorrect"`
	MySeen       bool       `json:"mySeen"`
	FinishedAt   *time.Time `json:"finishedAt"`
}

// FinishedView reduces the game to its finished-list representation for
// the given participant
func (g *Game) FinishedView(username string) FinishedGameView {
	v := FinishedGameView{
		ID:         g.ID,
		Total:      g.TotalQuestions(),
		FinishedAt: g.FinishedAt,
	}
	if side, _ := g.SideOf(username); side == SideHost {
		v.OpponentName = g.FriendName
		v.MyCorrect = g.HostCorrect
		v.OppCorrect = g.FriendCorrect
		v.MySeen = g.HostSeenResult
	} else {
		v.OpponentName = g.HostName
		v.MyCorrect = g.FriendCorrect
		v.OppCorrect = g.HostCorrect
		v.MySeen = g.FriendSeenResult
	}
	return v
}
