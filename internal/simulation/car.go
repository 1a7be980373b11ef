package simulation

import (
	"math"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

func heading(angle float64) types.Vec2 {
	return types.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// carSurface finds the terrain under the car. Sand wins over water when
// tile sets overlap; everything else drives like grass.
func (g *Game) carSurface() types.TileType {
	for _, r := range g.level.SandTraps {
		if CircleRectCollision(g.car.Position, g.car.Radius, r) {
			return types.TileSand
		}
	}
	for _, r := range g.level.Water {
		if CircleRectCollision(g.car.Position, g.car.Radius, r) {
			return types.TileWater
		}
	}
	return types.TileGrass
}

// updateCar applies one frame of vehicle dynamics: steering, lean,
// longitudinal speed, traction-blended velocity and drift detection.
func (g *Game) updateCar(in types.InputState) {
	tile := g.carSurface()
	surf := SurfaceFor(tile)
	car := &g.car

	// Steering needs motion; the handbrake lets any residual speed turn.
	turnDir := 0.0
	absSpeed := math.Abs(car.Speed)
	canTurn := absSpeed > TurnMinSpeed || (in.Handbrake && absSpeed > 0)
	if canTurn {
		turn := TurnRate * surf.Turn
		if in.Handbrake {
			turn *= HandbrakeTurnMult
		}
		travel := 1.0
		if car.Speed < 0 {
			travel = -1.0
		}
		if in.SteerLeft {
			car.Angle -= turn * travel
			turnDir = -travel
		}
		if in.SteerRight {
			car.Angle += turn * travel
			turnDir = travel
		}
	}

	leanTarget := -turnDir * (absSpeed / MaxCarSpeed) * LeanMax
	car.Lean += (leanTarget - car.Lean) * LeanSmoothing

	switch {
	case in.Throttle:
		car.Speed += CarAccel * surf.Accel
	case in.Brake:
		car.Speed -= CarBrakeAccel * surf.Accel
	default:
		car.Speed *= 1 - surf.Drag
		if math.Abs(car.Speed) < SpeedEpsilon {
			car.Speed = 0
		}
	}

	maxSpeed := MaxCarSpeed * surf.MaxSpeed
	car.Speed = clamp(car.Speed, -maxSpeed/2, maxSpeed)

	// The velocity chases the heading-implied vector; how fast it
	// catches up is the traction, and that gap is the drift.
	traction := surf.Traction
	if in.Handbrake {
		traction = HandbrakeTraction
	}
	desired := heading(car.Angle).Scale(car.Speed)
	car.Velocity = car.Velocity.Add(desired.Sub(car.Velocity).Scale(traction))

	drifting := false
	if car.Velocity.Len() > DriftMinSpeed {
		velAngle := math.Atan2(car.Velocity.Y, car.Velocity.X)
		if math.Abs(normalizeAngle(velAngle-car.Angle)) > DriftAngle {
			drifting = true
		}
	}
	if in.Handbrake && absSpeed > DriftMinSpeed {
		drifting = true
	}
	car.Drifting = drifting
	g.onSand = tile == types.TileSand
}

// rearTires returns the two rear-tire contact points in world space.
func (g *Game) rearTires() [2]types.Vec2 {
	sin, cos := math.Sincos(g.car.Angle)
	backX := -g.car.Width * 0.4
	sideY := g.car.Height * 0.35
	rotate := func(lx, ly float64) types.Vec2 {
		return types.Vec2{
			X: g.car.Position.X + lx*cos - ly*sin,
			Y: g.car.Position.Y + lx*sin + ly*cos,
		}
	}
	return [2]types.Vec2{rotate(backX, -sideY), rotate(backX, sideY)}
}

// emitDriftEffects lays tire tracks and kicks up smoke or dirt while
// drifting or crossing sand. Emission rate is cosmetic jitter only.
func (g *Game) emitDriftEffects() {
	if !g.car.Drifting && !g.onSand {
		return
	}
	if math.Abs(g.car.Speed) < TurnMinSpeed {
		return
	}
	tires := g.rearTires()
	for _, p := range tires {
		g.effects.addTrack(p, g.car.Angle)
	}
	color := colorSmoke
	chance := 0.5
	if g.onSand {
		color = colorSand
		chance = 0.7
	}
	for _, p := range tires {
		if g.effects.rng.Float64() < chance {
			g.effects.spawnSmoke(p, color)
		}
	}
}
