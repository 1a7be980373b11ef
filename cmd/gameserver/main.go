package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"

	"github.com/wyisco-art/DriveAndPutt/internal/levels"
	"github.com/wyisco-art/DriveAndPutt/internal/shared/logger"
	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
	"github.com/wyisco-art/DriveAndPutt/internal/simulation"
)

const (
	frameRate     = 60
	replicateEach = 2 // send state every Nth frame
)

type config struct {
	addr         string
	startLevel   int
	stopOnSplash bool
	telemetryURL string
}

func loadConfig() config {
	viper.SetDefault("game.addr", ":9003")
	viper.SetDefault("game.level", 1)
	viper.SetDefault("game.stop_on_splash", true)
	viper.SetDefault("telemetry.url", "")

	viper.SetConfigName("gameserver")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("DAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	return config{
		addr:         viper.GetString("game.addr"),
		startLevel:   viper.GetInt("game.level"),
		stopOnSplash: viper.GetBool("game.stop_on_splash"),
		telemetryURL: viper.GetString("telemetry.url"),
	}
}

// session is one connected player and their private game instance.
type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	game *simulation.Game

	inputMu sync.Mutex
	input   types.InputState

	done      chan struct{}
	closeOnce sync.Once
}

func (s *session) setInput(in types.InputState) {
	s.inputMu.Lock()
	s.input = in
	s.inputMu.Unlock()
}

func (s *session) currentInput() types.InputState {
	s.inputMu.Lock()
	defer s.inputMu.Unlock()
	return s.input
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

type server struct {
	log       logger.Logger
	cfg       config
	upgrader  websocket.Upgrader
	telemetry *telemetryClient
}

func main() {
	log := logger.New("gameserver")
	cfg := loadConfig()

	s := &server{
		log: log,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		telemetry: newTelemetryClient(cfg.telemetryURL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)

	httpServer := &http.Server{
		Addr:              cfg.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", cfg.addr).Int("start_level", cfg.startLevel).Msg("game server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	game := simulation.NewGame(levels.Get(s.cfg.startLevel), simulation.Config{
		StopOnSplash: s.cfg.stopOnSplash,
		Substeps:     simulation.Substeps,
	})
	game.Start()

	sess := &session{
		id:   fmt.Sprintf("s_%d", time.Now().UTC().UnixNano()),
		conn: conn,
		send: make(chan []byte, 64),
		game: game,
		done: make(chan struct{}),
	}

	s.log.Info().Str("session", sess.id).Str("remote", r.RemoteAddr).Msg("client connected")

	welcome := types.ServerEnvelope{
		Type:     "welcome",
		State:    ptrState(game.Snapshot()),
		ServerMS: time.Now().UTC().UnixMilli(),
		Message:  "connected",
	}
	if payload, err := json.Marshal(welcome); err == nil {
		sess.send <- payload
	}

	go s.writePump(sess)
	go s.runFrameLoop(sess)
	s.readPump(sess)
}

// runFrameLoop drives the session's simulation at the fixed frame rate
// and replicates render state back to the client.
func (s *server) runFrameLoop(sess *session) {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	frame := 0
	pending := make([]types.GameplayEvent, 0, 8)

	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
		}

		fe := sess.game.Update(sess.currentInput())
		if len(fe.Events) > 0 {
			pending = append(pending, fe.Events...)
			s.publishTelemetry(sess, fe.Events)
		}

		frame++
		if frame%replicateEach != 0 {
			continue
		}

		state := sess.game.Snapshot()
		env := types.ServerEnvelope{
			Type:     "state",
			Frame:    state.Frame,
			State:    &state,
			Events:   pending,
			ServerMS: time.Now().UTC().UnixMilli(),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			s.log.Error().Err(err).Msg("marshal state failed")
			continue
		}
		pending = pending[:0]

		select {
		case sess.send <- payload:
		default:
		}
	}
}

func (s *server) publishTelemetry(sess *session, events []types.GameplayEvent) {
	state := sess.game.Snapshot()
	for _, ev := range events {
		s.telemetry.post(types.TelemetryEvent{
			EventType: ev.Type,
			SessionID: sess.id,
			LevelID:   state.LevelID,
			Timestamp: ev.OccurredMS,
			Payload:   map[string]interface{}{"strokes": state.Strokes},
		})
	}
}

func (s *server) readPump(sess *session) {
	defer func() {
		sess.close()
		_ = sess.conn.Close()
	}()

	_ = sess.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	sess.conn.SetPongHandler(func(string) error {
		_ = sess.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Info().Str("session", sess.id).Msg("client disconnected")
				return
			}
			s.log.Warn().Str("session", sess.id).Err(err).Msg("read error")
			return
		}

		var in types.ClientEnvelope
		if err := json.Unmarshal(msg, &in); err != nil {
			s.sendError(sess, "bad_payload")
			continue
		}

		switch in.Type {
		case "input":
			if in.Input == nil {
				s.sendError(sess, "missing_input")
				continue
			}
			sess.setInput(*in.Input)
		case "select_level":
			if in.Level < 1 {
				s.sendError(sess, "bad_level_index")
				continue
			}
			sess.game.LoadLevel(levels.Get(in.Level))
			s.log.Info().Str("session", sess.id).Int("level", in.Level).Msg("level selected")
		case "restart":
			sess.game.Start()
		case "ping":
			pong := types.ServerEnvelope{Type: "pong", ServerMS: time.Now().UTC().UnixMilli()}
			if payload, err := json.Marshal(pong); err == nil {
				select {
				case sess.send <- payload:
				default:
				}
			}
		default:
			s.sendError(sess, "unsupported_message_type")
		}
	}
}

func (s *server) writePump(sess *session) {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		_ = sess.conn.Close()
	}()

	for {
		select {
		case <-sess.done:
			return
		case msg := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := sess.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := sess.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (s *server) sendError(sess *session, message string) {
	payload, _ := json.Marshal(types.ServerEnvelope{
		Type:    "error",
		Message: message,
	})
	select {
	case sess.send <- payload:
	default:
	}
}

// telemetryClient posts gameplay events fire-and-forget. A client with
// no URL drops everything.
type telemetryClient struct {
	url    string
	client *http.Client
}

func newTelemetryClient(url string) *telemetryClient {
	return &telemetryClient{
		url:    url,
		client: &http.Client{Timeout: 2 * time.Second},
	}
}

func (t *telemetryClient) post(ev types.TelemetryEvent) {
	if t.url == "" {
		return
	}
	go func() {
		payload, err := json.Marshal(ev)
		if err != nil {
			return
		}
		resp, err := t.client.Post(t.url+"/v1/events", "application/json", bytes.NewReader(payload))
		if err != nil {
			return
		}
		_ = resp.Body.Close()
	}()
}

func ptrState(s types.RenderState) *types.RenderState {
	return &s
}
