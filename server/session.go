package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/input"
	"github.com/lixenwraith/brakezone/leaderboard"
)

const (
	sendBuffer   = 256
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// Message is the websocket envelope in both directions
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// session bridges one websocket client to its own scenario
// Presenter and SceneSink calls arrive under the scenario lock and must not block
type session struct {
	id       string
	send     chan []byte
	logger   *slog.Logger
	scenario *engine.Scenario
}

func (s *Server) ServePlay(w http.ResponseWriter, r *http.Request) {
	acceptOpts := &websocket.AcceptOptions{OriginPatterns: []string{"*"}}
	if len(s.opts.AllowedOrigins) > 0 {
		acceptOpts.OriginPatterns = s.opts.AllowedOrigins
	}
	conn, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}

	sess := s.newSession()
	s.statSessions.Add(1)
	s.statActive.Add(1)
	defer s.statActive.Add(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sched := engine.NewScheduler(sess.scenario, s.opts.TickInterval)
	sched.Start(ctx)
	defer sched.Stop()

	sess.logger.Info("play session opened")
	go sess.writeLoop(ctx, conn)
	sess.readLoop(ctx, conn)
	sess.logger.Info("play session closed")
}

func (s *Server) newSession() *session {
	id := uuid.NewString()
	sess := &session{
		id:     id,
		send:   make(chan []byte, sendBuffer),
		logger: s.logger.With("session_id", id),
	}

	seed := s.opts.Seed
	if seed != 0 {
		seed += uint64(s.statSessions.Load())
	}

	var results engine.ResultSink
	if s.board != nil {
		results = engine.ResultFunc(func(o engine.RunOutcome) {
			s.board.SaveAsync(o, sess.saved)
		})
	}

	sess.scenario = engine.NewScenario(engine.Options{
		Rand:        engine.NewRand(seed),
		Presenter:   sess,
		Scene:       sess,
		Results:     results,
		Logger:      sess.logger,
		Metrics:     s.metrics,
		LiteScenery: s.opts.LiteScenery,
	})
	return sess
}

func (sess *session) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				sess.logger.Debug("websocket read error", "error", err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.logger.Debug("invalid message format", "error", err)
			continue
		}

		switch msg.Type {
		case "ping":
			sess.push("pong", nil)
		case "player":
			var p engine.Player
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				sess.push("error", "invalid player payload")
				continue
			}
			sess.scenario.SetPlayer(p)
		default:
			if !input.Apply(sess.scenario, input.ParseRemote(msg.Type)) {
				sess.logger.Debug("unknown message type", "type", msg.Type)
			}
		}
	}
}

func (sess *session) writeLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-sess.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// push encodes and enqueues a message, dropping it when the client is behind
func (sess *session) push(typ string, payload any) bool {
	data, err := json.Marshal(outbound{Type: typ, Payload: payload})
	if err != nil {
		sess.logger.Error("message encode failed", "type", typ, "error", err)
		return false
	}
	select {
	case sess.send <- data:
		return true
	default:
		sess.logger.Debug("send buffer full, message dropped", "type", typ)
		return false
	}
}

func (sess *session) saved(top []leaderboard.Record) {
	sess.push("leaderboard", top)
}

func (sess *session) UpdateHUD(hud engine.HUD) { sess.push("hud", hud) }
func (sess *session) ShowBrakeIndicator()      { sess.push("brake", nil) }
func (sess *session) ShowResult(o engine.RunOutcome) {
	sess.push("result", o)
}
func (sess *session) Reset() { sess.push("reset", nil) }

// Apply forwards scene commands; a dropped spawn is reported so the engine resends it
func (sess *session) Apply(cmd engine.SceneCommand) error {
	if !sess.push("scene", cmd) && cmd.Kind == engine.SceneSpawnActor {
		return engine.ErrActorNotReady
	}
	return nil
}
