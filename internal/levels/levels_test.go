package levels

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

func TestGetWrapsAroundCatalog(t *testing.T) {
	n := Count()
	if n == 0 {
		t.Fatal("empty catalog")
	}
	for k := 1; k <= n; k++ {
		a := Get(k)
		b := Get(n + k)
		if a.ID != b.ID {
			t.Fatalf("index %d and %d should be the same level, got %d vs %d", k, n+k, a.ID, b.ID)
		}
	}
}

func TestCatalogLevelsAreWellFormed(t *testing.T) {
	for i := 1; i <= Count(); i++ {
		lvl := Get(i)
		if lvl.Par <= 0 {
			t.Fatalf("level %d: par=%d", lvl.ID, lvl.Par)
		}
		if len(lvl.Walls) < 4 {
			t.Fatalf("level %d: missing border walls", lvl.ID)
		}
		for _, p := range []types.Vec2{lvl.StartPos, lvl.HolePos} {
			if p.X < BorderSize || p.X > CanvasWidth-BorderSize ||
				p.Y < BorderSize || p.Y > CanvasHeight-BorderSize {
				t.Fatalf("level %d: position %+v outside playable canvas", lvl.ID, p)
			}
		}
		for _, r := range lvl.SandTraps {
			if r.Type != types.TileSand {
				t.Fatalf("level %d: sand trap tagged %d", lvl.ID, r.Type)
			}
		}
		for _, r := range lvl.Water {
			if r.Type != types.TileWater {
				t.Fatalf("level %d: water tagged %d", lvl.ID, r.Type)
			}
		}
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	raw := `{
		"id": 9,
		"name": "Editor Export",
		"par": 4,
		"walls": [{"x": 0, "y": 0, "w": 1024, "h": 20, "type": 0}],
		"sandTraps": [{"x": 200, "y": 300, "w": 80, "h": 60, "type": 1}],
		"water": [],
		"startPos": {"x": 100, "y": 384},
		"holePos": {"x": 900, "y": 384}
	}`
	path := filepath.Join(t.TempDir(), "editor_export.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	lvl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := types.Level{
		ID:        9,
		Name:      "Editor Export",
		Par:       4,
		Walls:     []types.Rect{{X: 0, Y: 0, W: 1024, H: 20, Type: types.TileWall}},
		SandTraps: []types.Rect{{X: 200, Y: 300, W: 80, H: 60, Type: types.TileSand}},
		Water:     []types.Rect{},
		StartPos:  types.Vec2{X: 100, Y: 384},
		HolePos:   types.Vec2{X: 900, Y: 384},
	}
	if !reflect.DeepEqual(lvl, want) {
		t.Fatalf("loaded level mismatch:\n got %+v\nwant %+v", lvl, want)
	}
}

func TestParseRejectsCoincidentStartAndHole(t *testing.T) {
	raw := `{
		"id": 1,
		"name": "Broken Export",
		"par": 3,
		"startPos": {"x": 100, "y": 384},
		"holePos": {"x": 100, "y": 384}
	}`
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatal("expected an error for a hole on top of the start")
	}
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
