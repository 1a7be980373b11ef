package simulation

import "math"

// updateBallFriction applies one frame of rolling friction. The surface
// is sampled once per frame, before the substep loop; sand slows the
// ball much harder than grass. Near-zero components snap to rest.
func (g *Game) updateBallFriction() {
	friction := BallGroundFriction
	for _, r := range g.level.SandTraps {
		if CircleRectCollision(g.ball.Position, g.ball.Radius, r) {
			friction = BallSandFriction
			break
		}
	}
	g.ball.Velocity = g.ball.Velocity.Scale(friction)
	if math.Abs(g.ball.Velocity.X) < BallStopEpsilon {
		g.ball.Velocity.X = 0
	}
	if math.Abs(g.ball.Velocity.Y) < BallStopEpsilon {
		g.ball.Velocity.Y = 0
	}
}

// updateTrail maintains the fading motion trail: grow from the back
// while the ball moves, shrink from the front once it has stopped so
// the trail shortens smoothly instead of vanishing.
func (g *Game) updateTrail() {
	if g.ball.Velocity.Len() > TrailMinSpeed {
		g.ball.Trail = append(g.ball.Trail, g.ball.Position)
		if len(g.ball.Trail) > TrailMax {
			g.ball.Trail = g.ball.Trail[1:]
		}
		return
	}
	if len(g.ball.Trail) > 0 {
		g.ball.Trail = g.ball.Trail[1:]
	}
}
