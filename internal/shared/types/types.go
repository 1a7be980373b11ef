package types

import "math"

// Vec2 represents a position or vector in canvas space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalized returns the unit vector, or zero if the vector has no length.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// TileType tags a level rectangle with its terrain role.
// Values match the level editor's on-disk format.
type TileType int

const (
	TileWall TileType = iota
	TileSand
	TileWater
	TileGrass
	TileHole
	TileStart
)

// Rect is an axis-aligned static obstacle or zone.
type Rect struct {
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	W    float64  `json:"w"`
	H    float64  `json:"h"`
	Type TileType `json:"type"`
}

// Level is a static hole layout. Immutable for the duration of a round.
type Level struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Par       int    `json:"par"`
	Walls     []Rect `json:"walls"`
	SandTraps []Rect `json:"sandTraps"`
	Water     []Rect `json:"water"`
	StartPos  Vec2   `json:"startPos"`
	HolePos   Vec2   `json:"holePos"`
}

// InputState is the per-frame control snapshot sampled by the host.
type InputState struct {
	Throttle   bool `json:"throttle"`
	Brake      bool `json:"brake"`
	SteerLeft  bool `json:"steer_left"`
	SteerRight bool `json:"steer_right"`
	Handbrake  bool `json:"handbrake"`
}

// GameState is the round state machine. The simulation only ever
// requests the playing->won transition; everything else is host-driven.
type GameState string

const (
	StateMenu    GameState = "menu"
	StatePlaying GameState = "playing"
	StateWon     GameState = "won"
	StateLost    GameState = "lost" // reserved, unused by current rules
)

// CarState is the car's replicated pose and motion.
type CarState struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Angle    float64 `json:"angle"` // heading, radians
	Speed    float64 `json:"speed"` // signed scalar along heading
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Lean     float64 `json:"lean"`
	Drifting bool    `json:"drifting"`
}

// BallState is the ball's replicated state.
type BallState struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Trail    []Vec2  `json:"trail"`
}

// Particle is a short-lived cosmetic entity.
type Particle struct {
	ID       uint64  `json:"id"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Life     float64 `json:"life"`
	Decay    float64 `json:"decay"`
	Size     float64 `json:"size"`
	Color    string  `json:"color"`
	Gravity  float64 `json:"gravity"`
}

// FloatingText is a rising score/penalty label.
type FloatingText struct {
	ID       uint64  `json:"id"`
	Text     string  `json:"text"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Life     float64 `json:"life"`
	Color    string  `json:"color"`
}

// TireTrack is a fading skid mark left by a rear tire.
type TireTrack struct {
	ID       uint64  `json:"id"`
	Position Vec2    `json:"position"`
	Angle    float64 `json:"angle"`
	Life     float64 `json:"life"`
}

// RenderState is the read-only per-frame snapshot consumed by renderers.
type RenderState struct {
	Frame      uint64         `json:"frame"`
	State      GameState      `json:"state"`
	Strokes    int            `json:"strokes"`
	LevelID    int            `json:"level_id"`
	Par        int            `json:"par"`
	Car        CarState       `json:"car"`
	Ball       BallState      `json:"ball"`
	Particles  []Particle     `json:"particles"`
	Texts      []FloatingText `json:"texts"`
	Tracks     []TireTrack    `json:"tracks"`
	Shake      float64        `json:"shake"`
	SpawnScale float64        `json:"spawn_scale"`
}

// GameplayEvent tracks state changes worth UI/audio feedback.
type GameplayEvent struct {
	Type       string `json:"type"` // ball_hit|wall_hit|splash|hole_out
	OccurredMS int64  `json:"occurred_ms"`
}

const (
	EventBallHit = "ball_hit"
	EventWallHit = "wall_hit"
	EventSplash  = "splash"
	EventHoleOut = "hole_out"
)

// ClientEnvelope is sent from client to server.
type ClientEnvelope struct {
	Type  string      `json:"type"` // input|select_level|restart|ping
	Input *InputState `json:"input,omitempty"`
	Level int         `json:"level,omitempty"`
}

// ServerEnvelope is sent from server to client.
type ServerEnvelope struct {
	Type     string          `json:"type"` // welcome|state|pong|error
	Frame    uint64          `json:"frame,omitempty"`
	State    *RenderState    `json:"state,omitempty"`
	Events   []GameplayEvent `json:"events,omitempty"`
	ServerMS int64           `json:"server_ms,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// TelemetryEvent represents a gameplay/platform event.
type TelemetryEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	SessionID string                 `json:"session_id,omitempty"`
	LevelID   int                    `json:"level_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
