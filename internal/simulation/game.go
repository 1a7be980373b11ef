package simulation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

const (
	CarWidth  = 40.0
	CarHeight = 22.0
	CarRadius = CarWidth / 2

	BallRadius       = 10.0
	BallStartOffsetX = 60.0

	MaxCarSpeed       = 8.0
	CarAccel          = 0.25
	CarBrakeAccel     = 0.3
	SpeedEpsilon      = 0.05
	TurnRate          = 0.055 // rad/frame baseline
	TurnMinSpeed      = 0.4
	HandbrakeTurnMult = 1.6
	HandbrakeTraction = 0.05

	LeanMax       = 0.35
	LeanSmoothing = 0.12

	DriftAngle    = 0.45 // rad between heading and travel
	DriftMinSpeed = 3.0

	BallGroundFriction = 0.98
	BallSandFriction   = 0.90
	BallStopEpsilon    = 0.05
	BallPopFactor      = 1.8
	CarHitDamping      = 0.7

	Substeps         = 8
	CarWallBounce    = 0.5
	BallWallBounce   = 0.8
	CarWallHitSpeed  = 3.0
	BallWallHitSpeed = 2.0

	HoleRadius       = 18.0
	HoleCaptureSpeed = 5.0
	SplashRespawn    = 50.0

	TrailMax      = 15
	TrailMinSpeed = 0.5

	// 500ms at the fixed 60Hz frame rate.
	StrokeDebounceFrames = 30

	ShakeBallHit         = 8.0
	ShakeBallHitMinSpeed = 4.0
	ShakeWallHit         = 4.0
	ShakeHoleOut         = 15.0
	ShakeDecay           = 0.9

	TextFade       = 0.02
	TextGravity    = 0.08
	TrackFade      = 0.008
	SpawnScaleRate = 0.05
)

const (
	colorScore = "#ffffff"
	colorWater = "#1e90ff"
	colorSmoke = "#c8c8c8"
	colorSand  = "#eed6af"
	colorHit   = "#ffd700"
)

// Config carries the tunable behavior switches of the loop.
type Config struct {
	// StopOnSplash skips ball-vs-wall resolution for the rest of a frame
	// once the ball has entered water, letting it sink without also
	// bouncing. Off, the ball can bounce off a wall in the same substep
	// it falls in.
	StopOnSplash bool
	Substeps     int
}

// DefaultConfig returns the shipped gameplay tuning.
func DefaultConfig() Config {
	return Config{StopOnSplash: true, Substeps: Substeps}
}

// FrameEvents is what one Update call reports back to the host.
type FrameEvents struct {
	StrokeDelta int
	Transition  types.GameState // empty when no transition was requested
	Events      []types.GameplayEvent
}

// Game owns all entity and effect state for one hole. Update is its
// sole mutating entry point; Snapshot exposes a deep copy for renderers.
type Game struct {
	mu  sync.RWMutex
	cfg Config

	level   types.Level
	state   types.GameState
	car     types.CarState
	ball    types.BallState
	effects effectField

	frame      uint64
	strokes    int
	lastStroke int64 // frame of the last counted car-ball stroke
	holed      bool
	onSand     bool
}

// Option configures a Game at construction.
type Option func(*Game)

// WithRand injects the random source used for cosmetic jitter. Physics
// never consults it, so trajectories are identical across sources.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.effects.rng = rng }
}

// NewGame creates a game in the menu state holding the given level.
func NewGame(level types.Level, cfg Config, opts ...Option) *Game {
	if cfg.Substeps <= 0 {
		cfg.Substeps = Substeps
	}
	g := &Game{
		cfg:        cfg,
		level:      level,
		state:      types.StateMenu,
		effects:    newEffectField(rand.New(rand.NewSource(time.Now().UnixNano()))),
		lastStroke: -StrokeDebounceFrames,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.resetEntities()
	return g
}

// resetEntities places car and ball at the level's start. Caller holds the lock.
func (g *Game) resetEntities() {
	g.car = types.CarState{
		Position: g.level.StartPos,
		Angle:    0,
		Width:    CarWidth,
		Height:   CarHeight,
		Radius:   CarRadius,
	}
	g.ball = types.BallState{
		Position: g.level.StartPos.Add(types.Vec2{X: BallStartOffsetX}),
		Radius:   BallRadius,
		Trail:    make([]types.Vec2, 0, TrailMax),
	}
	g.strokes = 0
	g.lastStroke = -StrokeDebounceFrames
	g.holed = false
	g.effects.reset()
}

// Start begins (or restarts) play on the current level.
func (g *Game) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetEntities()
	g.state = types.StatePlaying
}

// LoadLevel swaps in a new level and resets all entity state.
func (g *Game) LoadLevel(level types.Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.level = level
	g.resetEntities()
	g.state = types.StatePlaying
}

// SetState applies a host-driven state transition (menu, restart).
func (g *Game) SetState(s types.GameState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	if s == types.StateMenu {
		g.resetEntities()
	}
}

// State returns the current game state.
func (g *Game) State() types.GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Strokes returns the stroke count for the current hole.
func (g *Game) Strokes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.strokes
}

// Update advances the simulation by one 60Hz frame. Physics only runs
// while playing; effects keep decaying on the win screen so stale
// particles fade out, but not while idling in the menu.
func (g *Game) Update(in types.InputState) FrameEvents {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.frame++
	if g.state != types.StateMenu {
		g.effects.decay()
	}

	var fe FrameEvents
	if g.state != types.StatePlaying {
		return fe
	}

	g.updateCar(in)
	g.updateBallFriction()

	res := g.integrate()

	now := time.Now().UTC().UnixMilli()

	if res.ballHit {
		fe.Events = append(fe.Events, types.GameplayEvent{Type: types.EventBallHit, OccurredMS: now})
		if res.hitSpeed > ShakeBallHitMinSpeed {
			g.effects.pulse(ShakeBallHit)
		}
		if int64(g.frame)-g.lastStroke >= StrokeDebounceFrames {
			g.strokes++
			fe.StrokeDelta++
			g.lastStroke = int64(g.frame)
			mid := g.car.Position.Add(g.ball.Position).Scale(0.5)
			g.effects.spawnText(mid, "+1", colorScore)
			g.effects.spawnBurst(mid, 8, colorHit)
		}
	}

	if res.carWallHit || res.ballWallHit {
		fe.Events = append(fe.Events, types.GameplayEvent{Type: types.EventWallHit, OccurredMS: now})
		g.effects.pulse(ShakeWallHit)
	}

	if res.splash {
		g.strokes++
		fe.StrokeDelta++
		fe.Events = append(fe.Events, types.GameplayEvent{Type: types.EventSplash, OccurredMS: now})
		g.effects.spawnSplash(g.ball.Position)
		g.effects.spawnText(g.ball.Position, "+1 SPLASH", colorWater)
		g.respawnBall()
	}

	if !g.holed {
		dist := g.ball.Position.Sub(g.level.HolePos).Len()
		if dist < HoleRadius && g.ball.Velocity.Len() < HoleCaptureSpeed {
			g.holed = true
			g.state = types.StateWon
			fe.Transition = types.StateWon
			fe.Events = append(fe.Events, types.GameplayEvent{Type: types.EventHoleOut, OccurredMS: now})
			g.effects.pulse(ShakeHoleOut)
		}
	}

	g.updateTrail()
	g.emitDriftEffects()

	return fe
}

// stepResult accumulates what happened across one frame's substeps.
type stepResult struct {
	ballHit     bool
	hitSpeed    float64
	carWallHit  bool
	ballWallHit bool
	splash      bool
}

// integrate advances car and ball through the substep loop. Per substep:
// move both, resolve car-ball before walls so an imparted impulse can
// still be corrected against a wall, then water, car-vs-wall, ball-vs-wall.
func (g *Game) integrate() stepResult {
	var res stepResult
	n := float64(g.cfg.Substeps)

	for i := 0; i < g.cfg.Substeps; i++ {
		g.car.Position = g.car.Position.Add(g.car.Velocity.Scale(1 / n))
		g.ball.Position = g.ball.Position.Add(g.ball.Velocity.Scale(1 / n))

		pre := g.car.Speed
		if pre < 0 {
			pre = -pre
		}
		if ResolveCarBall(&g.car, &g.ball) {
			res.ballHit = true
			if pre > res.hitSpeed {
				res.hitSpeed = pre
			}
		}

		if !res.splash {
			for _, w := range g.level.Water {
				if CircleRectCollision(g.ball.Position, g.ball.Radius, w) {
					res.splash = true
					break
				}
			}
		}

		for _, w := range g.level.Walls {
			preSpeed := g.car.Speed
			if preSpeed < 0 {
				preSpeed = -preSpeed
			}
			if ResolveCircleRect(&g.car.Position, &g.car.Velocity, g.car.Radius, CarWallBounce, w) {
				if preSpeed > CarWallHitSpeed {
					res.carWallHit = true
				}
				g.car.Speed *= 0.5
			}
		}

		if res.splash && g.cfg.StopOnSplash {
			continue
		}
		for _, w := range g.level.Walls {
			preVel := g.ball.Velocity.Len()
			if ResolveCircleRect(&g.ball.Position, &g.ball.Velocity, g.ball.Radius, BallWallBounce, w) {
				if preVel > BallWallHitSpeed {
					res.ballWallHit = true
				}
			}
		}
	}
	return res
}

// respawnBall drops the ball behind the car along its heading after a splash.
func (g *Game) respawnBall() {
	back := heading(g.car.Angle).Scale(-SplashRespawn)
	g.ball.Position = g.car.Position.Add(back)
	g.ball.Velocity = types.Vec2{}
	g.ball.Trail = g.ball.Trail[:0]
}

// Snapshot returns a deep copy of the render-facing state.
func (g *Game) Snapshot() types.RenderState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	trail := make([]types.Vec2, len(g.ball.Trail))
	copy(trail, g.ball.Trail)
	particles := make([]types.Particle, len(g.effects.particles))
	copy(particles, g.effects.particles)
	texts := make([]types.FloatingText, len(g.effects.texts))
	copy(texts, g.effects.texts)
	tracks := make([]types.TireTrack, len(g.effects.tracks))
	copy(tracks, g.effects.tracks)

	ball := g.ball
	ball.Trail = trail

	return types.RenderState{
		Frame:      g.frame,
		State:      g.state,
		Strokes:    g.strokes,
		LevelID:    g.level.ID,
		Par:        g.level.Par,
		Car:        g.car,
		Ball:       ball,
		Particles:  particles,
		Texts:      texts,
		Tracks:     tracks,
		Shake:      g.effects.shake,
		SpawnScale: g.effects.spawnScale,
	}
}
