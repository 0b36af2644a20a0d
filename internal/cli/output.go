package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case GameDetail:
		o.printGameDetail(v)
	case OpenGames:
		o.printOpenGames(v)
	case FinishedGames:
		o.printFinishedGames(v)
	case Friends:
		o.printFriends(v)
	case SearchResult:
		o.printSearchResult(v)
	case Badges:
		o.printBadges(v)
	case OpponentStatsResult:
		o.printOpponentStats(v)
	case OverallStats:
		o.printOverallStats(v)
	case MessageResult:
		o.printMessage(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AuthResult response type (matches API)
type AuthResult struct {
	Username     string `json:"username"`
	SessionToken string `json:"sessionToken"`
}

// Answer response type
type Answer struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
}

// GameDetail response type
type GameDetail struct {
	ID               string     `json:"gameId"`
	HostName         string     `json:"hostName"`
	FriendName       string     `json:"friendName"`
	Questions        []string   `json:"questions"`
	Finished         bool       `json:"finished"`
	FinishedAt       *time.Time `json:"finishedAt"`
	HostCorrect      int        `json:"hostCorrectCount"`
	FriendCorrect    int        `json:"friendCorrectCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	MySide           string     `json:"mySide"`
	MyAnswers        []Answer   `json:"myAnswers"`
	OpponentAnswered int        `json:"opponentAnswered"`
	SeenResult       bool       `json:"seenResult"`
}

// SubmitResult response type
type SubmitResult struct {
	Game     GameDetail `json:"game"`
	Finished bool       `json:"finished"`
}

// OpenGame response type
type OpenGame struct {
	ID             string `json:"id"`
	HostName       string `json:"hostName"`
	FriendName     string `json:"friendName"`
	TotalQuestions int    `json:"totalQuestions"`
	HostAnswered   int    `json:"hostAnswered"`
	FriendAnswered int    `json:"friendAnswered"`
}

// OpenGames response type
type OpenGames struct {
	Games  []OpenGame `json:"games"`
	Unseen int        `json:"unseen"`
}

// FinishedGame response type
type FinishedGame struct {
	ID           string     `json:"id"`
	OpponentName string     `json:"opponentName"`
	Total        int        `json:"total"`
	MyCorrect    int        `json:"myCorrect"`
	OppCorrect   int        `json:"oppCorrect"`
	MySeen       bool       `json:"mySeen"`
	FinishedAt   *time.Time `json:"finishedAt"`
}

// FinishedGames response type
type FinishedGames struct {
	Games  []FinishedGame `json:"games"`
	Unseen int            `json:"unseen"`
}

// PendingRequest response type
type PendingRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Status string `json:"status"`
}

// Friends response type
type Friends struct {
	Friends  []string         `json:"friends"`
	Incoming []PendingRequest `json:"incoming"`
	Outgoing []PendingRequest `json:"outgoing"`
}

// SearchResult response type
type SearchResult struct {
	Users []string `json:"users"`
}

// Badges response type
type Badges struct {
	UnreadMessages        int `json:"unreadMessages"`
	OpenGames             int `json:"openGames"`
	PendingFriendRequests int `json:"pendingFriendRequests"`
}

// OpponentStats response type
type OpponentStats struct {
	Opponent   string `json:"opponent"`
	Games      int    `json:"games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	MyCorrect  int    `json:"myCorrect"`
	OppCorrect int    `json:"opponentCorrect"`
}

// OpponentStatsResult response type
type OpponentStatsResult struct {
	Opponents []OpponentStats `json:"opponents"`
}

// OverallStats response type
type OverallStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// MessageResult response type
type MessageResult struct {
	ID     string    `json:"messageId"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Body   string    `json:"body"`
	Read   bool      `json:"read"`
	SentAt time.Time `json:"sentAt"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Logged in as: %s\n", a.Username)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printGameDetail(g GameDetail) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Host: %s vs %s\n", g.HostName, g.FriendName)
	fmt.Printf("Questions: %d\n", len(g.Questions))
	fmt.Printf("My answers: %d (side: %s)\n", len(g.MyAnswers), g.MySide)
	fmt.Printf("Opponent answered: %d\n", g.OpponentAnswered)

	if g.Finished {
		fmt.Printf("Finished: %s vs %s -> %d:%d\n", g.HostName, g.FriendName, g.HostCorrect, g.FriendCorrect)
		if g.FinishedAt != nil {
			fmt.Printf("Finished at: %s\n", g.FinishedAt.Format("2006-01-02 15:04:05"))
		}
	} else {
		fmt.Println("Finished: no")
	}
}

func (o *Output) printOpenGames(g OpenGames) {
	fmt.Printf("Open games (%d, %d awaiting answers):\n", len(g.Games), g.Unseen)
	for _, game := range g.Games {
		fmt.Printf("  %s: %s %d/%d vs %s %d/%d\n",
			game.ID,
			game.HostName, game.HostAnswered, game.TotalQuestions,
			game.FriendName, game.FriendAnswered, game.TotalQuestions)
	}
}

func (o *Output) printFinishedGames(g FinishedGames) {
	fmt.Printf("Finished games (%d, %d new results):\n", len(g.Games), g.Unseen)
	for _, game := range g.Games {
		marker := " "
		if !game.MySeen {
			marker = "*"
		}
		outcome := "draw"
		if game.MyCorrect > game.OppCorrect {
			outcome = "won"
		} else if game.MyCorrect < game.OppCorrect {
			outcome = "lost"
		}
		fmt.Printf("  %s %s vs %s - %d:%d (%s)\n", marker, game.ID, game.OpponentName, game.MyCorrect, game.OppCorrect, outcome)
	}
}

func (o *Output) printFriends(f Friends) {
	fmt.Printf("Friends (%d): %s\n", len(f.Friends), strings.Join(f.Friends, ", "))
	if len(f.Incoming) > 0 {
		fmt.Printf("Incoming requests (%d):\n", len(f.Incoming))
		for _, r := range f.Incoming {
			fmt.Printf("  - from %s\n", r.From)
		}
	}
	if len(f.Outgoing) > 0 {
		fmt.Printf("Outgoing requests (%d):\n", len(f.Outgoing))
		for _, r := range f.Outgoing {
			fmt.Printf("  - to %s\n", r.To)
		}
	}
}

func (o *Output) printSearchResult(s SearchResult) {
	fmt.Printf("Users (%d):\n", len(s.Users))
	for _, u := range s.Users {
		fmt.Printf("  - %s\n", u)
	}
}

func (o *Output) printBadges(b Badges) {
	fmt.Printf("Unread messages: %d\n", b.UnreadMessages)
	fmt.Printf("Open games: %d\n", b.OpenGames)
	fmt.Printf("Pending friend requests: %d\n", b.PendingFriendRequests)
}

func (o *Output) printOpponentStats(s OpponentStatsResult) {
	fmt.Printf("Opponents (%d):\n", len(s.Opponents))
	for _, opp := range s.Opponents {
		fmt.Printf("  %s: %d games, %d won, %d lost (%d:%d correct)\n",
			opp.Opponent, opp.Games, opp.Wins, opp.Losses, opp.MyCorrect, opp.OppCorrect)
	}
}

func (o *Output) printOverallStats(s OverallStats) {
	fmt.Printf("Wins: %d\n", s.Wins)
	fmt.Printf("Losses: %d\n", s.Losses)
	fmt.Printf("Draws: %d\n", s.Draws)
}

func (o *Output) printMessage(m MessageResult) {
	readStr := "unread"
	if m.Read {
		readStr = "read"
	}
	fmt.Printf("Message %s (%s)\n", m.ID, readStr)
	fmt.Printf("From: %s\n", m.From)
	fmt.Printf("To: %s\n", m.To)
	fmt.Printf("Sent: %s\n", m.SentAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("\n%s\n", m.Body)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
