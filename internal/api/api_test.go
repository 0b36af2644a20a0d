package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernquiz/lernquiz-go/internal/api"
	"github.com/lernquiz/lernquiz-go/internal/api/response"
	"github.com/lernquiz/lernquiz-go/internal/factory"
	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/services/account"
	"github.com/lernquiz/lernquiz-go/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler  http.Handler
	storage  *memory.Storage
	accounts *account.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AccountService: app.AccountService,
		GameController: app.GameController,
		FriendManager:  app.FriendManager,
		BadgeService:   app.BadgeService,
		MessageService: app.MessageService,
		StatsService:   app.StatsService,
		Notifier:       app.Notifier,
	})

	return &testServer{
		handler:  router,
		storage:  app.Storage.(*memory.Storage),
		accounts: app.AccountService,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	registerBody := map[string]string{
		"username": "alice",
		"password": "secret123",
	}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &registerResp)
	require.NoError(t, err)
	assert.Equal(t, "alice", registerResp.Username)
	assert.NotEmpty(t, registerResp.SessionToken)

	// Duplicate register
	rr = ts.request(http.MethodPost, "/api/v1/auth/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Login
	loginBody := map[string]string{
		"username": "alice",
		"password": "secret123",
	}
	rr = ts.request(http.MethodPost, "/api/v1/auth/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	err = json.Unmarshal(rr.Body.Bytes(), &loginResp)
	require.NoError(t, err)
	assert.Equal(t, "alice", loginResp.Username)
	assert.NotEqual(t, registerResp.SessionToken, loginResp.SessionToken)

	// Wrong password
	loginBody["password"] = "wrong"
	rr = ts.request(http.MethodPost, "/api/v1/auth/login", loginBody, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts := newTestServer(t)

	token := registerUser(t, ts, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/badges", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/badges", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/badges", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestFriendRequestFlow(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	// Alice requests Bob
	body := map[string]string{"username": "bob"}
	rr := ts.request(http.MethodPost, "/api/v1/friends/requests", body, token1)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var reqResp response.FriendRequestResponse
	err := json.Unmarshal(rr.Body.Bytes(), &reqResp)
	require.NoError(t, err)
	assert.Equal(t, "alice", reqResp.From)
	assert.Equal(t, "bob", reqResp.To)
	assert.False(t, reqResp.Matched)

	// Duplicate request conflicts
	rr = ts.request(http.MethodPost, "/api/v1/friends/requests", body, token1)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Bob sees it incoming
	rr = ts.request(http.MethodGet, "/api/v1/friends", nil, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	var friendsResp response.FriendsResponse
	err = json.Unmarshal(rr.Body.Bytes(), &friendsResp)
	require.NoError(t, err)
	require.Len(t, friendsResp.Incoming, 1)
	assert.Equal(t, "alice", friendsResp.Incoming[0].From)
	assert.Empty(t, friendsResp.Friends)

	// Bob accepts
	respondBody := map[string]any{"from": "alice", "accept": true}
	rr = ts.request(http.MethodPost, "/api/v1/friends/requests/respond", respondBody, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Both are friends now
	rr = ts.request(http.MethodGet, "/api/v1/friends", nil, token1)
	require.Equal(t, http.StatusOK, rr.Code)
	err = json.Unmarshal(rr.Body.Bytes(), &friendsResp)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, friendsResp.Friends)
	assert.Empty(t, friendsResp.Outgoing)
}

func TestMutualRequestsAutoAccept(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/friends/requests", map[string]string{"username": "bob"}, token1)
	require.Equal(t, http.StatusCreated, rr.Code)

	// Bob requesting Alice back matches the pending request
	rr = ts.request(http.MethodPost, "/api/v1/friends/requests", map[string]string{"username": "alice"}, token2)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var reqResp response.FriendRequestResponse
	err := json.Unmarshal(rr.Body.Bytes(), &reqResp)
	require.NoError(t, err)
	assert.True(t, reqResp.Matched)

	var friendsResp response.FriendsResponse
	rr = ts.request(http.MethodGet, "/api/v1/friends", nil, token2)
	require.Equal(t, http.StatusOK, rr.Code)
	err = json.Unmarshal(rr.Body.Bytes(), &friendsResp)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, friendsResp.Friends)
	assert.Empty(t, friendsResp.Incoming)
}

func TestUserSearch(t *testing.T) {
	ts := newTestServer(t)

	token := registerUser(t, ts, "alice")
	registerUser(t, ts, "bob")
	registerUser(t, ts, "bobby")

	rr := ts.request(http.MethodGet, "/api/v1/friends/search?q=bob", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var searchResp response.SearchResponse
	err := json.Unmarshal(rr.Body.Bytes(), &searchResp)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "bobby"}, searchResp.Users)
}

func TestFullGameFlow(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	// Alice starts a duel against Bob
	createBody := map[string]any{
		"friendName": "bob",
		"questions":  []string{"q1", "q2", "q3"},
	}
	rr := ts.request(http.MethodPost, "/api/v1/games", createBody, token1)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var game response.GameDetail
	err := json.Unmarshal(rr.Body.Bytes(), &game)
	require.NoError(t, err)
	assert.Equal(t, "alice", game.HostName)
	assert.Equal(t, "bob", game.FriendName)
	assert.Equal(t, "host", game.MySide)
	assert.False(t, game.Finished)
	gameID := string(game.ID)

	// Both see it open; Bob has not answered so his unseen count is 1
	rr = ts.request(http.MethodGet, "/api/v1/games/open", nil, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	var open response.OpenGamesResponse
	err = json.Unmarshal(rr.Body.Bytes(), &open)
	require.NoError(t, err)
	require.Len(t, open.Games, 1)
	assert.Equal(t, 1, open.Unseen)

	// Alice answers everything, two correct
	answerBody := map[string]any{
		"answers": []map[string]any{
			{"questionId": "q1", "isCorrect": true},
			{"questionId": "q2", "isCorrect": true},
			{"questionId": "q3", "isCorrect": false},
		},
	}
	rr = ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token1)
	assert.Equal(t, http.StatusOK, rr.Code)

	var submitResp response.SubmitAnswersResponse
	err = json.Unmarshal(rr.Body.Bytes(), &submitResp)
	require.NoError(t, err)
	assert.False(t, submitResp.Finished)

	// Bob sees Alice's progress
	rr = ts.request(http.MethodGet, "/api/v1/games/"+gameID, nil, token2)
	require.Equal(t, http.StatusOK, rr.Code)
	err = json.Unmarshal(rr.Body.Bytes(), &game)
	require.NoError(t, err)
	assert.Equal(t, "friend", game.MySide)
	assert.Equal(t, 3, game.OpponentAnswered)
	assert.Empty(t, game.MyAnswers)

	// Bob answers everything, one correct; the game auto-finishes
	answerBody = map[string]any{
		"answers": []map[string]any{
			{"questionId": "q1", "isCorrect": false},
			{"questionId": "q2", "isCorrect": true},
			{"questionId": "q3", "isCorrect": false},
		},
	}
	rr = ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	err = json.Unmarshal(rr.Body.Bytes(), &submitResp)
	require.NoError(t, err)
	assert.True(t, submitResp.Finished)
	assert.Equal(t, 2, submitResp.Game.HostCorrect)
	assert.Equal(t, 1, submitResp.Game.FriendCorrect)
	require.NotNil(t, submitResp.Game.FinishedAt)

	// The game is out of the open lists
	rr = ts.request(http.MethodGet, "/api/v1/games/open", nil, token1)
	require.Equal(t, http.StatusOK, rr.Code)
	err = json.Unmarshal(rr.Body.Bytes(), &open)
	require.NoError(t, err)
	assert.Empty(t, open.Games)

	// Alice sees the result from her perspective, unacknowledged
	rr = ts.request(http.MethodGet, "/api/v1/games/finished", nil, token1)
	assert.Equal(t, http.StatusOK, rr.Code)

	var finished response.FinishedGamesResponse
	err = json.Unmarshal(rr.Body.Bytes(), &finished)
	require.NoError(t, err)
	require.Len(t, finished.Games, 1)
	assert.Equal(t, "bob", finished.Games[0].OpponentName)
	assert.Equal(t, 2, finished.Games[0].MyCorrect)
	assert.Equal(t, 1, finished.Games[0].OppCorrect)
	assert.False(t, finished.Games[0].MySeen)
	assert.Equal(t, 1, finished.Unseen)

	// Alice acknowledges the result
	rr = ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/seen", nil, token1)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/finished", nil, token1)
	require.Equal(t, http.StatusOK, rr.Code)
	err = json.Unmarshal(rr.Body.Bytes(), &finished)
	require.NoError(t, err)
	assert.True(t, finished.Games[0].MySeen)
	assert.Equal(t, 0, finished.Unseen)
}

func TestResubmitOverwritesAnswer(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	registerUser(t, ts, "bob")

	gameID := createGame(t, ts, token1, "bob", []string{"q1", "q2"})

	answerBody := map[string]any{
		"answers": []map[string]any{{"questionId": "q1", "isCorrect": false}},
	}
	rr := ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token1)
	require.Equal(t, http.StatusOK, rr.Code)

	// Same question again, now correct
	answerBody = map[string]any{
		"answers": []map[string]any{{"questionId": "q1", "isCorrect": true}},
	}
	rr = ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token1)
	require.Equal(t, http.StatusOK, rr.Code)

	var submitResp response.SubmitAnswersResponse
	err := json.Unmarshal(rr.Body.Bytes(), &submitResp)
	require.NoError(t, err)
	require.Len(t, submitResp.Game.MyAnswers, 1)
	assert.True(t, submitResp.Game.MyAnswers[0].IsCorrect)
}

func TestGameAccessControl(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	registerUser(t, ts, "bob")
	token3 := registerUser(t, ts, "carol")

	gameID := createGame(t, ts, token1, "bob", []string{"q1"})

	// Carol is not a participant
	rr := ts.request(http.MethodGet, "/api/v1/games/"+gameID, nil, token3)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+gameID, nil, token3)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Unknown game
	rr = ts.request(http.MethodGet, "/api/v1/games/nope", nil, token1)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Self-play is rejected
	createBody := map[string]any{"friendName": "alice", "questions": []string{"q1"}}
	rr = ts.request(http.MethodPost, "/api/v1/games", createBody, token1)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteGame(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	gameID := createGame(t, ts, token1, "bob", []string{"q1"})

	// Either participant may delete an unfinished game
	rr := ts.request(http.MethodDelete, "/api/v1/games/"+gameID, nil, token2)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+gameID, nil, token1)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFinishGameEarly(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	registerUser(t, ts, "bob")

	gameID := createGame(t, ts, token1, "bob", []string{"q1", "q2"})

	rr := ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/finish", nil, token1)
	assert.Equal(t, http.StatusOK, rr.Code)

	var game response.GameDetail
	err := json.Unmarshal(rr.Body.Bytes(), &game)
	require.NoError(t, err)
	assert.True(t, game.Finished)

	// Answering a finished game conflicts
	answerBody := map[string]any{
		"answers": []map[string]any{{"questionId": "q1", "isCorrect": true}},
	}
	rr = ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token1)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Finishing again conflicts too
	rr = ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/finish", nil, token1)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBadgeCounts(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	// Bob starts with nothing
	rr := ts.request(http.MethodGet, "/api/v1/badges", nil, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	var badges model.BadgeCounts
	err := json.Unmarshal(rr.Body.Bytes(), &badges)
	require.NoError(t, err)
	assert.Equal(t, model.BadgeCounts{}, badges)

	// Alice creates a game, sends a message and a friend request
	createGame(t, ts, token1, "bob", []string{"q1"})

	msgBody := map[string]string{"to": "bob", "body": "your move"}
	rr = ts.request(http.MethodPost, "/api/v1/messages", msgBody, token1)
	require.Equal(t, http.StatusCreated, rr.Code)

	reqBody := map[string]string{"username": "bob"}
	rr = ts.request(http.MethodPost, "/api/v1/friends/requests", reqBody, token1)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/badges", nil, token2)
	require.Equal(t, http.StatusOK, rr.Code)
	err = json.Unmarshal(rr.Body.Bytes(), &badges)
	require.NoError(t, err)
	assert.Equal(t, 1, badges.OpenGames)
	assert.Equal(t, 1, badges.UnreadMessages)
	assert.Equal(t, 1, badges.PendingFriendRequests)
}

func TestMessageFlow(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	msgBody := map[string]string{"to": "bob", "body": "hello"}
	rr := ts.request(http.MethodPost, "/api/v1/messages", msgBody, token1)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var msg response.MessageResponse
	err := json.Unmarshal(rr.Body.Bytes(), &msg)
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.From)
	assert.Equal(t, "bob", msg.To)
	assert.False(t, msg.Read)

	// Only the recipient may mark it read
	rr = ts.request(http.MethodPatch, "/api/v1/messages/"+string(msg.ID)+"/read", nil, token1)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodPatch, "/api/v1/messages/"+string(msg.ID)+"/read", nil, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	err = json.Unmarshal(rr.Body.Bytes(), &msg)
	require.NoError(t, err)
	assert.True(t, msg.Read)

	// Messaging an unknown user fails
	msgBody = map[string]string{"to": "nobody", "body": "hello"}
	rr = ts.request(http.MethodPost, "/api/v1/messages", msgBody, token1)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	token1 := registerUser(t, ts, "alice")
	token2 := registerUser(t, ts, "bob")

	// Play one full game: alice 1 correct, bob 0
	gameID := createGame(t, ts, token1, "bob", []string{"q1"})

	answerBody := map[string]any{
		"answers": []map[string]any{{"questionId": "q1", "isCorrect": true}},
	}
	rr := ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token1)
	require.Equal(t, http.StatusOK, rr.Code)

	answerBody = map[string]any{
		"answers": []map[string]any{{"questionId": "q1", "isCorrect": false}},
	}
	rr = ts.request(http.MethodPatch, "/api/v1/games/"+gameID+"/answer", answerBody, token2)
	require.Equal(t, http.StatusOK, rr.Code)

	// Alice won
	rr = ts.request(http.MethodGet, "/api/v1/stats/overall", nil, token1)
	assert.Equal(t, http.StatusOK, rr.Code)

	var overall model.OverallStats
	err := json.Unmarshal(rr.Body.Bytes(), &overall)
	require.NoError(t, err)
	assert.Equal(t, model.OverallStats{Wins: 1}, overall)

	rr = ts.request(http.MethodGet, "/api/v1/stats/opponents", nil, token2)
	assert.Equal(t, http.StatusOK, rr.Code)

	var opponents response.OpponentStatsResponse
	err = json.Unmarshal(rr.Body.Bytes(), &opponents)
	require.NoError(t, err)
	require.Len(t, opponents.Opponents, 1)
	assert.Equal(t, "alice", opponents.Opponents[0].Opponent)
	assert.Equal(t, 1, opponents.Opponents[0].Losses)

	// Record practice attempts
	attemptsBody := map[string]any{
		"attempts": []map[string]any{
			{"questionId": "q1", "isCorrect": true},
			{"questionId": "q2", "isCorrect": false},
		},
	}
	rr = ts.request(http.MethodPost, "/api/v1/stats/attempts", attemptsBody, token1)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var attempts response.AttemptsResponse
	err = json.Unmarshal(rr.Body.Bytes(), &attempts)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts.Recorded)
}

func TestEventStreamHeaders(t *testing.T) {
	ts := newTestServer(t)

	token := registerUser(t, ts, "alice")

	// httptest.NewRequest has no cancellation, so bound the stream ourselves
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	// First frame announces the connection
	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: connected")
}

// Helper functions

func registerUser(t *testing.T, ts *testServer, username string) string {
	t.Helper()

	body := map[string]string{"username": username, "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	return resp.SessionToken
}

func createGame(t *testing.T, ts *testServer, token, friend string, questions []string) string {
	t.Helper()

	body := map[string]any{"friendName": friend, "questions": questions}
	rr := ts.request(http.MethodPost, "/api/v1/games", body, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.GameDetail
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	return string(resp.ID)
}
