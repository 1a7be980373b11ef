// Package levels holds the static hole catalog and loads editor-produced
// level files. Layouts use the same 1024x768 canvas and record shape as
// the level editor's JSON output.
package levels

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

const (
	CanvasWidth  = 1024.0
	CanvasHeight = 768.0
	BorderSize   = 20.0
)

func rect(x, y, w, h float64, t types.TileType) types.Rect {
	return types.Rect{X: x, Y: y, W: w, H: h, Type: t}
}

func wall(x, y, w, h float64) types.Rect { return rect(x, y, w, h, types.TileWall) }

func sand(x, y, w, h float64) types.Rect { return rect(x, y, w, h, types.TileSand) }

func water(x, y, w, h float64) types.Rect { return rect(x, y, w, h, types.TileWater) }

// borders returns the four canvas-edge walls every level shares.
func borders() []types.Rect {
	return []types.Rect{
		wall(0, 0, CanvasWidth, BorderSize),
		wall(0, CanvasHeight-BorderSize, CanvasWidth, BorderSize),
		wall(0, 0, BorderSize, CanvasHeight),
		wall(CanvasWidth-BorderSize, 0, BorderSize, CanvasHeight),
	}
}

func withBorders(extra ...types.Rect) []types.Rect {
	return append(borders(), extra...)
}

var catalog = []types.Level{
	{
		ID:       1,
		Name:     "The Drive",
		Par:      3,
		Walls:    withBorders(),
		StartPos: types.Vec2{X: 100, Y: 384},
		HolePos:  types.Vec2{X: 900, Y: 384},
	},
	{
		ID:   2,
		Name: "Bunker Alley",
		Par:  4,
		Walls: withBorders(
			wall(480, 20, 40, 300),
			wall(480, 448, 40, 300),
		),
		SandTraps: []types.Rect{
			sand(560, 300, 160, 168),
		},
		StartPos: types.Vec2{X: 100, Y: 384},
		HolePos:  types.Vec2{X: 900, Y: 384},
	},
	{
		ID:   3,
		Name: "Water Hazard",
		Par:  4,
		Walls: withBorders(
			wall(300, 280, 40, 208),
		),
		Water: []types.Rect{
			water(440, 20, 140, 330),
			water(440, 418, 140, 330),
		},
		StartPos: types.Vec2{X: 100, Y: 384},
		HolePos:  types.Vec2{X: 920, Y: 120},
	},
	{
		ID:   4,
		Name: "The Gauntlet",
		Par:  5,
		Walls: withBorders(
			wall(220, 20, 40, 520),
			wall(440, 228, 40, 520),
			wall(660, 20, 40, 520),
		),
		SandTraps: []types.Rect{
			sand(260, 560, 180, 188),
			sand(700, 20, 160, 140),
		},
		Water: []types.Rect{
			water(480, 20, 180, 160),
		},
		StartPos: types.Vec2{X: 100, Y: 120},
		HolePos:  types.Vec2{X: 920, Y: 660},
	},
}

// Count returns the catalog size.
func Count() int {
	return len(catalog)
}

// Get returns the level for a 1-based index. Indices beyond the catalog
// wrap around modulo its size, so level Count()+1 is level 1 again.
func Get(index int) types.Level {
	n := len(catalog)
	i := ((index-1)%n + n) % n
	return catalog[i]
}

// Parse decodes an editor-produced level JSON document.
func Parse(data []byte) (types.Level, error) {
	var lvl types.Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return types.Level{}, fmt.Errorf("parse level: %w", err)
	}
	if lvl.HolePos == lvl.StartPos {
		return types.Level{}, fmt.Errorf("parse level: hole and start coincide")
	}
	return lvl, nil
}

// LoadFile reads an editor-produced level JSON file.
func LoadFile(path string) (types.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Level{}, fmt.Errorf("read level file: %w", err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return types.Level{}, fmt.Errorf("level file %s: %w", path, err)
	}
	return lvl, nil
}
