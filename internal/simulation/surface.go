package simulation

import "github.com/wyisco-art/DriveAndPutt/internal/shared/types"

// Surface holds the movement multipliers for a terrain tag.
type Surface struct {
	Drag     float64 // per-frame speed decay while coasting
	Traction float64 // velocity blend factor, lower slides more
	Accel    float64 // throttle/brake acceleration multiplier
	MaxSpeed float64 // top speed multiplier
	Turn     float64 // turn rate multiplier
}

var (
	surfaceGrass = Surface{Drag: 0.02, Traction: 0.18, Accel: 1.0, MaxSpeed: 1.0, Turn: 1.0}
	surfaceSand  = Surface{Drag: 0.065, Traction: 0.08, Accel: 0.45, MaxSpeed: 0.6, Turn: 0.7}
	surfaceWater = Surface{Drag: 0.12, Traction: 0.02, Accel: 0.2, MaxSpeed: 0.5, Turn: 0.5}
)

// SurfaceFor maps a terrain tag to its movement profile. Wall, hole and
// start tiles drive like grass; only sand and water change handling.
func SurfaceFor(t types.TileType) Surface {
	switch t {
	case types.TileSand:
		return surfaceSand
	case types.TileWater:
		return surfaceWater
	default:
		return surfaceGrass
	}
}
