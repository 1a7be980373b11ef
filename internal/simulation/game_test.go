package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

func testLevel() types.Level {
	return types.Level{
		ID:       1,
		Name:     "test",
		Par:      3,
		StartPos: types.Vec2{X: 100, Y: 384},
		HolePos:  types.Vec2{X: 900, Y: 384},
	}
}

func newTestGame(level types.Level) *Game {
	g := NewGame(level, DefaultConfig(), WithRand(rand.New(rand.NewSource(1))))
	g.Start()
	return g
}

// holdContact pins the car against the ball with inbound velocity so
// every frame registers a geometric hit.
func holdContact(g *Game) {
	g.car.Position = types.Vec2{X: 300, Y: 300}
	g.car.Velocity = types.Vec2{X: 4, Y: 0}
	g.car.Speed = 4
	g.car.Angle = 0
	g.ball.Position = types.Vec2{X: 325, Y: 300}
	g.ball.Velocity = types.Vec2{}
}

func TestStrokeDebounce(t *testing.T) {
	g := newTestGame(testLevel())

	holdContact(g)
	fe := g.Update(types.InputState{})
	if fe.StrokeDelta != 1 || g.Strokes() != 1 {
		t.Fatalf("first contact must count a stroke, delta=%d strokes=%d", fe.StrokeDelta, g.Strokes())
	}

	// Contact persists through 400ms (24 more frames): still one stroke.
	for i := 0; i < 24; i++ {
		holdContact(g)
		fe = g.Update(types.InputState{})
		if fe.StrokeDelta != 0 {
			t.Fatalf("frame %d: debounced contact must not count, delta=%d", i, fe.StrokeDelta)
		}
	}
	if g.Strokes() != 1 {
		t.Fatalf("strokes=%d want 1 while contact persists", g.Strokes())
	}

	// Separate until 600ms have passed since the counted stroke.
	for i := 0; i < 11; i++ {
		g.car.Position = types.Vec2{X: 300, Y: 300}
		g.car.Velocity = types.Vec2{}
		g.car.Speed = 0
		g.ball.Position = types.Vec2{X: 600, Y: 600}
		g.ball.Velocity = types.Vec2{}
		g.Update(types.InputState{})
	}

	holdContact(g)
	fe = g.Update(types.InputState{})
	if fe.StrokeDelta != 1 || g.Strokes() != 2 {
		t.Fatalf("re-contact after debounce must count, delta=%d strokes=%d", fe.StrokeDelta, g.Strokes())
	}
}

func TestBallHitEmitsEventEvenWhenDebounced(t *testing.T) {
	g := newTestGame(testLevel())

	holdContact(g)
	g.Update(types.InputState{})
	holdContact(g)
	fe := g.Update(types.InputState{})

	if fe.StrokeDelta != 0 {
		t.Fatalf("second frame of contact must be debounced, delta=%d", fe.StrokeDelta)
	}
	if !hasEvent(fe.Events, types.EventBallHit) {
		t.Fatal("ball hit cue must fire on every contact frame")
	}
}

func TestSplashAlwaysCountsStroke(t *testing.T) {
	level := testLevel()
	level.Water = []types.Rect{{X: 500, Y: 350, W: 100, H: 100, Type: types.TileWater}}
	g := newTestGame(level)

	g.ball.Position = types.Vec2{X: 550, Y: 400}
	fe := g.Update(types.InputState{})
	if fe.StrokeDelta != 1 || !hasEvent(fe.Events, types.EventSplash) {
		t.Fatalf("splash must count a stroke, delta=%d events=%v", fe.StrokeDelta, fe.Events)
	}
	if g.ball.Velocity != (types.Vec2{}) {
		t.Fatalf("respawned ball must be stationary, vel=%+v", g.ball.Velocity)
	}
	if len(g.ball.Trail) != 0 {
		t.Fatalf("respawn must clear the trail, len=%d", len(g.ball.Trail))
	}
	wantX := g.car.Position.X - SplashRespawn*math.Cos(g.car.Angle)
	if math.Abs(g.ball.Position.X-wantX) > 1e-6 {
		t.Fatalf("ball must respawn behind the car, x=%f want %f", g.ball.Position.X, wantX)
	}

	// A second splash on the very next frame counts too: the 500ms
	// debounce only applies to car-ball strokes.
	g.ball.Position = types.Vec2{X: 550, Y: 400}
	fe = g.Update(types.InputState{})
	if fe.StrokeDelta != 1 || g.Strokes() != 2 {
		t.Fatalf("immediate second splash must count, delta=%d strokes=%d", fe.StrokeDelta, g.Strokes())
	}
}

func TestHoleOutRequiresLowSpeed(t *testing.T) {
	g := newTestGame(testLevel())

	// Fast ball passes over the hole.
	g.ball.Position = g.level.HolePos
	g.ball.Velocity = types.Vec2{X: 20, Y: 0}
	fe := g.Update(types.InputState{})
	if fe.Transition != "" || g.State() != types.StatePlaying {
		t.Fatalf("fast ball must not hole out, state=%s", g.State())
	}

	// Slow ball drops in.
	g.ball.Position = g.level.HolePos
	g.ball.Velocity = types.Vec2{X: 3, Y: 0}
	fe = g.Update(types.InputState{})
	if fe.Transition != types.StateWon || g.State() != types.StateWon {
		t.Fatalf("slow ball at the hole must win, transition=%q state=%s", fe.Transition, g.State())
	}
	if !hasEvent(fe.Events, types.EventHoleOut) {
		t.Fatal("hole out event missing")
	}

	// The transition is one-way and reported once.
	fe = g.Update(types.InputState{})
	if fe.Transition != "" {
		t.Fatalf("won state must not re-report a transition, got %q", fe.Transition)
	}
}

func TestWonStateFreezesPhysics(t *testing.T) {
	g := newTestGame(testLevel())
	g.ball.Position = g.level.HolePos
	g.ball.Velocity = types.Vec2{X: 2, Y: 0}
	g.Update(types.InputState{})
	if g.State() != types.StateWon {
		t.Fatalf("setup failed, state=%s", g.State())
	}

	carBefore := g.car.Position
	g.Update(types.InputState{Throttle: true})
	if g.car.Position != carBefore {
		t.Fatal("physics must not advance after winning")
	}
}

func TestMenuStateFreezesPhysics(t *testing.T) {
	g := NewGame(testLevel(), DefaultConfig(), WithRand(rand.New(rand.NewSource(1))))
	carBefore := g.car.Position
	g.Update(types.InputState{Throttle: true})
	if g.car.Position != carBefore {
		t.Fatal("menu state must not advance physics")
	}
}

func TestTrailLengthInvariant(t *testing.T) {
	g := newTestGame(testLevel())
	g.ball.Position = types.Vec2{X: 200, Y: 200}
	for i := 0; i < 60; i++ {
		g.ball.Velocity = types.Vec2{X: 6, Y: 0}
		g.ball.Position = types.Vec2{X: 200, Y: 200} // keep away from walls
		g.Update(types.InputState{})
		if len(g.ball.Trail) > TrailMax {
			t.Fatalf("frame %d: trail length %d exceeds cap", i, len(g.ball.Trail))
		}
	}
	if len(g.ball.Trail) != TrailMax {
		t.Fatalf("moving ball should fill the trail, len=%d", len(g.ball.Trail))
	}

	// Once stopped, the trail shrinks from the front instead of vanishing.
	g.ball.Velocity = types.Vec2{}
	g.Update(types.InputState{})
	if len(g.ball.Trail) != TrailMax-1 {
		t.Fatalf("stationary ball should shed one trail point, len=%d", len(g.ball.Trail))
	}
	for i := 0; i < TrailMax; i++ {
		g.ball.Velocity = types.Vec2{}
		g.Update(types.InputState{})
	}
	if len(g.ball.Trail) != 0 {
		t.Fatalf("trail should drain to empty, len=%d", len(g.ball.Trail))
	}
}

func TestDeterministicTrajectories(t *testing.T) {
	level := testLevel()
	level.Walls = []types.Rect{{X: 400, Y: 0, W: 40, H: 768, Type: types.TileWall}}

	script := func(frame int) types.InputState {
		switch {
		case frame < 60:
			return types.InputState{Throttle: true}
		case frame < 120:
			return types.InputState{Throttle: true, SteerRight: true}
		case frame < 150:
			return types.InputState{Throttle: true, SteerLeft: true, Handbrake: true}
		default:
			return types.InputState{Brake: true}
		}
	}

	a := newTestGame(level)
	b := NewGame(level, DefaultConfig(), WithRand(rand.New(rand.NewSource(999))))
	b.Start()

	for f := 0; f < 240; f++ {
		a.Update(script(f))
		b.Update(script(f))
		if a.car.Position != b.car.Position || a.car.Velocity != b.car.Velocity {
			t.Fatalf("frame %d: car diverged %+v vs %+v", f, a.car.Position, b.car.Position)
		}
		if a.ball.Position != b.ball.Position || a.ball.Velocity != b.ball.Velocity {
			t.Fatalf("frame %d: ball diverged %+v vs %+v", f, a.ball.Position, b.ball.Position)
		}
	}
}

// parkBall moves the ball out of the car's driving line.
func parkBall(g *Game) {
	g.ball.Position = types.Vec2{X: 900, Y: 700}
	g.ball.Velocity = types.Vec2{}
}

func TestCarAcceleratesAndClampsSpeed(t *testing.T) {
	g := newTestGame(testLevel())
	parkBall(g)
	for i := 0; i < 180; i++ {
		g.Update(types.InputState{Throttle: true})
	}
	if g.car.Speed < MaxCarSpeed-1e-9 || g.car.Speed > MaxCarSpeed+1e-9 {
		t.Fatalf("full throttle should reach max speed, got %f", g.car.Speed)
	}
}

func TestReverseSpeedCappedAtHalf(t *testing.T) {
	g := newTestGame(testLevel())
	parkBall(g)
	for i := 0; i < 300; i++ {
		g.Update(types.InputState{Brake: true})
	}
	if got, want := g.car.Speed, -MaxCarSpeed/2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("reverse speed=%f want %f", got, want)
	}
}

func TestSandLimitsTopSpeed(t *testing.T) {
	level := testLevel()
	// Sand everywhere the car can reach.
	level.SandTraps = []types.Rect{{X: 0, Y: 0, W: 5000, H: 5000, Type: types.TileSand}}
	g := newTestGame(level)
	parkBall(g)
	for i := 0; i < 300; i++ {
		g.Update(types.InputState{Throttle: true})
	}
	if g.car.Speed > MaxCarSpeed*surfaceSand.MaxSpeed+1e-9 {
		t.Fatalf("sand top speed exceeded: %f", g.car.Speed)
	}
	if g.car.Speed < 1 {
		t.Fatalf("car should still move on sand, speed=%f", g.car.Speed)
	}
}

func TestSandSlowsBallHarderThanGrass(t *testing.T) {
	sandy := testLevel()
	sandy.SandTraps = []types.Rect{{X: 500, Y: 350, W: 100, H: 100, Type: types.TileSand}}

	g := newTestGame(sandy)
	g.ball.Position = types.Vec2{X: 550, Y: 400}
	g.ball.Velocity = types.Vec2{X: 4, Y: 0}
	g.Update(types.InputState{})
	if got, want := g.ball.Velocity.X, 4*BallSandFriction; math.Abs(got-want) > 1e-9 {
		t.Fatalf("sand friction: vx=%f want %f", got, want)
	}

	g = newTestGame(testLevel())
	g.ball.Position = types.Vec2{X: 550, Y: 400}
	g.ball.Velocity = types.Vec2{X: 4, Y: 0}
	g.Update(types.InputState{})
	if got, want := g.ball.Velocity.X, 4*BallGroundFriction; math.Abs(got-want) > 1e-9 {
		t.Fatalf("grass friction: vx=%f want %f", got, want)
	}

	g.ball.Velocity = types.Vec2{X: BallStopEpsilon / 2, Y: -BallStopEpsilon / 2}
	g.Update(types.InputState{})
	if g.ball.Velocity != (types.Vec2{}) {
		t.Fatalf("near-zero velocity must snap to rest, got %+v", g.ball.Velocity)
	}
}

func TestCoastingDecaysToRest(t *testing.T) {
	g := newTestGame(testLevel())
	parkBall(g)
	for i := 0; i < 60; i++ {
		g.Update(types.InputState{Throttle: true})
	}
	for i := 0; i < 600; i++ {
		g.Update(types.InputState{})
	}
	if g.car.Speed != 0 {
		t.Fatalf("coasting car must snap to rest, speed=%f", g.car.Speed)
	}
}

func TestWallContactHalvesCarSpeed(t *testing.T) {
	level := testLevel()
	level.Walls = []types.Rect{{X: 400, Y: 0, W: 40, H: 768, Type: types.TileWall}}
	g := newTestGame(level)

	g.car.Position = types.Vec2{X: 375, Y: 384}
	g.car.Velocity = types.Vec2{X: 7, Y: 0}
	g.car.Speed = 7
	fe := g.Update(types.InputState{})

	if !hasEvent(fe.Events, types.EventWallHit) {
		t.Fatal("fast wall contact must emit a wall hit event")
	}
	if math.Abs(g.car.Speed) > 7*0.5 {
		t.Fatalf("wall contact must halve car speed, got %f", g.car.Speed)
	}
	if CircleRectCollision(g.car.Position, g.car.Radius, level.Walls[0]) {
		t.Fatal("car must be pushed out of the wall")
	}
}

func TestStopOnSplashSkipsBallWallBounce(t *testing.T) {
	level := testLevel()
	wall := types.Rect{X: 560, Y: 300, W: 40, H: 200, Type: types.TileWall}
	level.Walls = []types.Rect{wall}
	level.Water = []types.Rect{{X: 500, Y: 300, W: 100, H: 200, Type: types.TileWater}}

	run := func(stop bool) FrameEvents {
		cfg := DefaultConfig()
		cfg.StopOnSplash = stop
		g := NewGame(level, cfg, WithRand(rand.New(rand.NewSource(1))))
		g.Start()
		g.car.Position = types.Vec2{X: 100, Y: 600}
		g.ball.Position = types.Vec2{X: 549, Y: 400}
		g.ball.Velocity = types.Vec2{X: 5, Y: 0}
		return g.Update(types.InputState{})
	}

	sinking := run(true)
	if !hasEvent(sinking.Events, types.EventSplash) {
		t.Fatal("expected a splash in the sinking variant")
	}
	if hasEvent(sinking.Events, types.EventWallHit) {
		t.Fatal("stop-on-splash must suppress the wall bounce")
	}

	bouncing := run(false)
	if !hasEvent(bouncing.Events, types.EventSplash) {
		t.Fatal("expected a splash in the bouncing variant")
	}
	if !hasEvent(bouncing.Events, types.EventWallHit) {
		t.Fatal("without stop-on-splash the ball must also hit the wall")
	}
}

func TestStartResetsRound(t *testing.T) {
	g := newTestGame(testLevel())
	holdContact(g)
	g.Update(types.InputState{})
	if g.Strokes() == 0 {
		t.Fatal("setup failed, no stroke counted")
	}

	g.Start()
	if g.Strokes() != 0 {
		t.Fatalf("restart must clear strokes, got %d", g.Strokes())
	}
	if g.car.Position != g.level.StartPos {
		t.Fatalf("car must reset to start, got %+v", g.car.Position)
	}
	want := g.level.StartPos.Add(types.Vec2{X: BallStartOffsetX})
	if g.ball.Position != want {
		t.Fatalf("ball must reset next to the start, got %+v", g.ball.Position)
	}
	if s := g.Snapshot(); s.SpawnScale != 0 {
		t.Fatalf("spawn scale must restart its animation, got %f", s.SpawnScale)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	g := newTestGame(testLevel())
	for i := 0; i < 5; i++ {
		g.ball.Velocity = types.Vec2{X: 6, Y: 0}
		g.Update(types.InputState{})
	}
	snap := g.Snapshot()
	if len(snap.Ball.Trail) == 0 {
		t.Fatal("setup failed, empty trail")
	}
	snap.Ball.Trail[0] = types.Vec2{X: -1, Y: -1}
	if g.ball.Trail[0] == (types.Vec2{X: -1, Y: -1}) {
		t.Fatal("game state mutated through snapshot")
	}
}

func hasEvent(events []types.GameplayEvent, typ string) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}
