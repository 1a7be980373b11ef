package simulation

import (
	"math"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

// closestPointOnRect clamps p to the rectangle's bounds.
func closestPointOnRect(p types.Vec2, r types.Rect) types.Vec2 {
	return types.Vec2{
		X: clamp(p.X, r.X, r.X+r.W),
		Y: clamp(p.Y, r.Y, r.Y+r.H),
	}
}

// CircleRectCollision reports whether the circle overlaps the rectangle.
// A center inside the rectangle always collides (closest point is the
// center itself).
func CircleRectCollision(center types.Vec2, radius float64, r types.Rect) bool {
	d := center.Sub(closestPointOnRect(center, r))
	return d.Dot(d) < radius*radius
}

// ResolveCircleRect pushes the circle out of the rectangle along the
// contact normal and reflects the inbound velocity component, scaled by
// bounce. Objects moving away from the contact keep their velocity.
// Returns true when the pair was colliding.
//
// A center exactly on the rectangle boundary has no defined normal; the
// pair is left untouched and settles on a later substep.
func ResolveCircleRect(pos, vel *types.Vec2, radius, bounce float64, r types.Rect) bool {
	if !CircleRectCollision(*pos, radius, r) {
		return false
	}
	sep := pos.Sub(closestPointOnRect(*pos, r))
	dist := sep.Len()
	if dist == 0 {
		return true
	}
	n := sep.Normalized()
	*pos = pos.Add(n.Scale(radius - dist))

	vn := vel.Dot(n)
	if vn < 0 {
		*vel = vel.Sub(n.Scale((1 + bounce) * vn))
	}
	return true
}

// ResolveCarBall transfers momentum from the car into the ball. The ball
// is pushed out of the overlap; the car is never displaced. Returns true
// only when the car was closing on the ball along the contact normal,
// which is what counts as a hit for stroke purposes.
func ResolveCarBall(car *types.CarState, ball *types.BallState) bool {
	delta := ball.Position.Sub(car.Position)
	dist := delta.Len()
	minDist := car.Radius + ball.Radius
	if dist == 0 || dist >= minDist {
		return false
	}
	n := delta.Normalized()
	ball.Position = ball.Position.Add(n.Scale(minDist - dist))

	carDot := car.Velocity.Dot(n)
	ballDot := ball.Velocity.Dot(n)
	if carDot <= ballDot {
		return false
	}

	ball.Velocity = ball.Velocity.Add(n.Scale((carDot - ballDot) * BallPopFactor))
	car.Velocity = car.Velocity.Scale(CarHitDamping)
	car.Speed *= CarHitDamping
	return true
}

// normalizeAngle wraps an angle into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
