package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/status"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}
	local := leaderboard.NewLocalStore(leaderboard.DefaultHistoryCap, "", logger)
	opts.Board = leaderboard.NewBoard(local, nil, leaderboard.BoardOptions{Logger: logger, Metrics: opts.Metrics})
	opts.Logger = logger

	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func postRecord(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/v1/leaderboard", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestLeaderboard_SubmitAndList(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp := postRecord(t, ts.URL, `{"name":"Ana","className":"3-B","score":88,"reactionTime":0.52}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[LeaderboardResponse](t, resp)
	require.Len(t, created.Records, 1)
	assert.Equal(t, "good", string(created.Records[0].Grade))
	assert.NotEmpty(t, created.Records[0].ID)

	postRecord(t, ts.URL, `{"name":"Bo","score":95}`)
	postRecord(t, ts.URL, `{"name":"  ","score":40}`)

	listResp, err := http.Get(ts.URL + "/v1/leaderboard")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	list := decode[LeaderboardResponse](t, listResp)
	require.Equal(t, 3, list.Count)
	assert.Equal(t, "Bo", list.Records[0].Name)
	assert.Equal(t, "Ana", list.Records[1].Name)
	assert.Equal(t, leaderboard.DefaultName, list.Records[2].Name)

	limited, err := http.Get(ts.URL + "/v1/leaderboard?limit=1")
	require.NoError(t, err)
	defer limited.Body.Close()
	assert.Equal(t, 1, decode[LeaderboardResponse](t, limited).Count)
}

func TestLeaderboard_RejectsBadInput(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	cases := map[string]string{
		"out of range":  `{"name":"x","score":150}`,
		"negative rt":   `{"name":"x","score":50,"reactionTime":-1}`,
		"unknown field": `{"name":"x","score":50,"grade":"excellent"}`,
		"not json":      `score=50`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postRecord(t, ts.URL, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[errorResponse](t, resp).Error)
		})
	}

	resp, err := http.Get(ts.URL + "/v1/leaderboard?limit=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLeaderboard_RateLimited(t *testing.T) {
	_, ts := newTestServer(t, Options{RatePerWindow: 2, RateWindow: time.Hour})

	assert.Equal(t, http.StatusCreated, postRecord(t, ts.URL, `{"score":10}`).StatusCode)
	assert.Equal(t, http.StatusCreated, postRecord(t, ts.URL, `{"score":20}`).StatusCode)
	resp := postRecord(t, ts.URL, `{"score":30}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	// reads are not limited
	get, err := http.Get(ts.URL + "/v1/leaderboard")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
}

func TestRateLimiter_WindowAndWhitelist(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, []string{" 10.0.0.1 "}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer rl.Close()
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))

	for range 5 {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9:80, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, Options{AllowedOrigins: []string{"https://play.example"}})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/leaderboard", nil)
	req.Header.Set("Origin", "https://play.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://play.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthzAndStats(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	postRecord(t, ts.URL, `{"score":70}`)

	statsResp, err := http.Get(ts.URL + "/v1/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()
	stats := decode[StatsResponse](t, statsResp)
	assert.EqualValues(t, 1, stats.Metrics["leaderboard.saved"])
}

type wsReader struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

// next reads until a message of type typ arrives
func (r wsReader) next(typ string) json.RawMessage {
	r.t.Helper()
	for {
		_, data, err := r.conn.Read(r.ctx)
		require.NoError(r.t, err)
		var msg Message
		require.NoError(r.t, json.Unmarshal(data, &msg))
		if msg.Type == typ {
			return msg.Payload
		}
	}
}

func dialPlay(t *testing.T, ts *httptest.Server) (context.Context, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/play", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return ctx, conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(msg)))
}

func TestPlay_PingPong(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	ctx, conn := dialPlay(t, ts)

	send(t, ctx, conn, `{"type":"ping"}`)
	wsReader{t, ctx, conn}.next("pong")
}

func TestPlay_EarlyBrakeDisqualifies(t *testing.T) {
	srv, ts := newTestServer(t, Options{Seed: 7})
	ctx, conn := dialPlay(t, ts)
	rd := wsReader{t, ctx, conn}

	send(t, ctx, conn, `{"type":"player","payload":{"name":"Ana","className":"3-B"}}`)
	send(t, ctx, conn, `{"type":"start"}`)

	var cmd engine.SceneCommand
	require.NoError(t, json.Unmarshal(rd.next("scene"), &cmd))
	assert.Equal(t, engine.SceneResetCamera, cmd.Kind)
	rd.next("hud")

	send(t, ctx, conn, `{"type":"brake"}`)

	var outcome engine.RunOutcome
	require.NoError(t, json.Unmarshal(rd.next("result"), &outcome))
	assert.True(t, outcome.Disqualified)
	assert.Equal(t, engine.TriggerDisqualified, outcome.Trigger)
	assert.Equal(t, "Ana", outcome.Player.Name)

	assert.Eventually(t, func() bool {
		return srv.metrics.Ints.Get("runs.disqualified").Load() == 1
	}, time.Second, 10*time.Millisecond)

	// disqualified runs never reach the board
	top, err := srv.board.Top(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestPlay_StartAfterEndRestarts(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	ctx, conn := dialPlay(t, ts)
	rd := wsReader{t, ctx, conn}

	send(t, ctx, conn, `{"type":"start"}`)
	rd.next("hud")
	send(t, ctx, conn, `{"type":"touch"}`)
	rd.next("result")

	send(t, ctx, conn, `{"type":"start"}`)
	rd.next("reset")
}

func TestPlay_SessionMetrics(t *testing.T) {
	srv, ts := newTestServer(t, Options{})
	ctx, conn := dialPlay(t, ts)

	send(t, ctx, conn, `{"type":"ping"}`)
	wsReader{t, ctx, conn}.next("pong")
	assert.EqualValues(t, 1, srv.statSessions.Load())
	assert.EqualValues(t, 1, srv.statActive.Load())

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return srv.statActive.Load() == 0 }, 2*time.Second, 10*time.Millisecond)
}
