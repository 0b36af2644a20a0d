package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernquiz/lernquiz-go/internal/api"
	"github.com/lernquiz/lernquiz-go/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "lernquiz-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/lernquiz")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{Logger: logger})
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

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type authResponse struct {
	Username     string `json:"username"`
	SessionToken string `json:"sessionToken"`
}

type gameDetailResponse struct {
	ID               string   `json:"gameId"`
	HostName         string   `json:"hostName"`
	FriendName       string   `json:"friendName"`
	Questions        []string `json:"questions"`
	Finished         bool     `json:"finished"`
	HostCorrect      int      `json:"hostCorrectCount"`
	FriendCorrect    int      `json:"friendCorrectCount"`
	MySide           string   `json:"mySide"`
	OpponentAnswered int      `json:"opponentAnswered"`
}

type finishedGamesResponse struct {
	Games []struct {
		ID           string `json:"id"`
		OpponentName string `json:"opponentName"`
		MyCorrect    int    `json:"myCorrect"`
		OppCorrect   int    `json:"oppCorrect"`
		MySeen       bool   `json:"mySeen"`
	} `json:"games"`
	Unseen int `json:"unseen"`
}

type badgesResponse struct {
	UnreadMessages        int `json:"unreadMessages"`
	OpenGames             int `json:"openGames"`
	PendingFriendRequests int `json:"pendingFriendRequests"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AccountCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("account", "register", "--user", "alice", "--pass", "secret1")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "alice", authResp.Username)
	assert.NotEmpty(t, authResp.SessionToken)

	// Login again
	output, err = cli.run("account", "login", "--user", "alice", "--pass", "secret1")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.NotEmpty(t, authResp.SessionToken)

	// Wrong password
	output, err = cli.run("account", "login", "--user", "alice", "--pass", "nope")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "invalid")
}

func TestCLI_FriendFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	output, err := cli1.run("account", "register", "--user", "alice", "--pass", "secret1")
	require.NoError(t, err, "output: %s", output)
	var auth1 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth1))

	output, err = cli2.run("account", "register", "--user", "bob", "--pass", "secret2")
	require.NoError(t, err, "output: %s", output)
	var auth2 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth2))

	// Alice requests Bob
	output, err = cli1.runWithToken(auth1.SessionToken, "friends", "request", "bob")
	require.NoError(t, err, "output: %s", output)

	// Bob sees a pending badge
	output, err = cli2.runWithToken(auth2.SessionToken, "badges")
	require.NoError(t, err, "output: %s", output)
	var badges badgesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &badges))
	assert.Equal(t, 1, badges.PendingFriendRequests)

	// Bob accepts
	output, err = cli2.runWithToken(auth2.SessionToken, "friends", "accept", "alice")
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Contains(t, msgResp.Message, "Accepted")
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	output, err := cli1.run("account", "register", "--user", "alice", "--pass", "secret1")
	require.NoError(t, err, "output: %s", output)
	var auth1 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth1))
	token1 := auth1.SessionToken

	output, err = cli2.run("account", "register", "--user", "bob", "--pass", "secret2")
	require.NoError(t, err, "output: %s", output)
	var auth2 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth2))
	token2 := auth2.SessionToken

	// Alice starts a duel against Bob
	output, err = cli1.runWithToken(token1, "game", "create",
		"--friend", "bob", "--questions", "q1,q2,q3")
	require.NoError(t, err, "output: %s", output)
	var game gameDetailResponse
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.Equal(t, "alice", game.HostName)
	assert.Equal(t, "bob", game.FriendName)
	assert.False(t, game.Finished)
	gameID := game.ID
	t.Logf("Created game: %s", gameID)

	// Bob now has one open game
	output, err = cli2.runWithToken(token2, "badges")
	require.NoError(t, err, "output: %s", output)
	var badges badgesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &badges))
	assert.Equal(t, 1, badges.OpenGames)

	// Alice answers everything, two correct
	output, err = cli1.runWithToken(token1, "game", "answer", gameID,
		"--correct", "q1,q2", "--wrong", "q3")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.False(t, game.Finished)

	// Bob answers everything, one correct; the game auto-finishes
	output, err = cli2.runWithToken(token2, "game", "answer", gameID,
		"--correct", "q2", "--wrong", "q1,q3")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.True(t, game.Finished)
	assert.Equal(t, 2, game.HostCorrect)
	assert.Equal(t, 1, game.FriendCorrect)

	// Both see it in finished lists, unseen
	output, err = cli1.runWithToken(token1, "game", "finished")
	require.NoError(t, err, "output: %s", output)
	var finished finishedGamesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &finished))
	require.Len(t, finished.Games, 1)
	assert.Equal(t, "bob", finished.Games[0].OpponentName)
	assert.Equal(t, 2, finished.Games[0].MyCorrect)
	assert.Equal(t, 1, finished.Games[0].OppCorrect)
	assert.False(t, finished.Games[0].MySeen)
	assert.Equal(t, 1, finished.Unseen)

	// Alice acknowledges the result
	output, err = cli1.runWithToken(token1, "game", "seen", gameID)
	require.NoError(t, err, "output: %s", output)

	output, err = cli1.runWithToken(token1, "game", "finished")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &finished))
	assert.True(t, finished.Games[0].MySeen)
	assert.Equal(t, 0, finished.Unseen)
}

func TestCLI_GameDeleteGuards(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	output, err := cli1.run("account", "register", "--user", "alice", "--pass", "secret1")
	require.NoError(t, err)
	var auth1 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth1))

	output, err = cli2.run("account", "register", "--user", "bob", "--pass", "secret2")
	require.NoError(t, err)
	var auth2 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth2))

	output, err = cli2.run("account", "register", "--user", "carol", "--pass", "secret3")
	require.NoError(t, err)
	var auth3 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth3))

	// Alice creates a game against Bob
	output, err = cli1.runWithToken(auth1.SessionToken, "game", "create",
		"--friend", "bob", "--questions", "q1")
	require.NoError(t, err, "output: %s", output)
	var game gameDetailResponse
	require.NoError(t, json.Unmarshal([]byte(output), &game))

	// Carol may not delete it
	output, err = cli1.runWithToken(auth3.SessionToken, "game", "delete", game.ID)
	assert.Error(t, err, "non-participant should not be able to delete")
	assert.Contains(t, strings.ToLower(output), "participant")

	// Bob may
	output, err = cli1.runWithToken(auth2.SessionToken, "game", "delete", game.ID)
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Equal(t, "Game deleted", msgResp.Message)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Badges without auth
	output, err := cli.run("badges")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "authentication")

	// Get non-existent game
	output, err = cli.run("account", "register", "--user", "alice", "--pass", "secret1")
	require.NoError(t, err)
	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))

	output, err = cli.runWithToken(auth.SessionToken, "game", "get", "NOPE")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}
