package simulation

import (
	"math"
	"math/rand"

	"github.com/wyisco-art/DriveAndPutt/internal/shared/types"
)

// effectField owns every transient cosmetic entity. It is driven by
// simulation events, decayed once per frame, and only ever read by
// renderers through Game.Snapshot.
type effectField struct {
	particles  []types.Particle
	texts      []types.FloatingText
	tracks     []types.TireTrack
	shake      float64
	spawnScale float64
	nextID     uint64
	rng        *rand.Rand
}

func newEffectField(rng *rand.Rand) effectField {
	return effectField{
		particles:  make([]types.Particle, 0, 128),
		texts:      make([]types.FloatingText, 0, 8),
		tracks:     make([]types.TireTrack, 0, 256),
		spawnScale: 1,
		rng:        rng,
	}
}

func (e *effectField) reset() {
	e.particles = e.particles[:0]
	e.texts = e.texts[:0]
	e.tracks = e.tracks[:0]
	e.shake = 0
	e.spawnScale = 0
}

func (e *effectField) id() uint64 {
	e.nextID++
	return e.nextID
}

// pulse raises the shake scalar to at least v. Existing stronger shake
// is never reduced.
func (e *effectField) pulse(v float64) {
	if v > e.shake {
		e.shake = v
	}
}

func (e *effectField) spawnText(pos types.Vec2, text, color string) {
	e.texts = append(e.texts, types.FloatingText{
		ID:       e.id(),
		Text:     text,
		Position: pos,
		Velocity: types.Vec2{X: 0, Y: -1.2},
		Life:     1,
		Color:    color,
	})
}

// spawnBurst emits a radial puff of particles around pos.
func (e *effectField) spawnBurst(pos types.Vec2, count int, color string) {
	for i := 0; i < count; i++ {
		a := e.rng.Float64() * 2 * math.Pi
		speed := 0.5 + e.rng.Float64()*2
		e.particles = append(e.particles, types.Particle{
			ID:       e.id(),
			Position: pos,
			Velocity: types.Vec2{X: math.Cos(a) * speed, Y: math.Sin(a) * speed},
			Life:     1,
			Decay:    0.02 + e.rng.Float64()*0.04,
			Size:     1 + e.rng.Float64()*3,
			Color:    color,
		})
	}
}

// spawnSmoke emits a drifting smoke/dirt puff at a tire position.
func (e *effectField) spawnSmoke(pos types.Vec2, color string) {
	e.particles = append(e.particles, types.Particle{
		ID:       e.id(),
		Position: pos,
		Velocity: types.Vec2{X: (e.rng.Float64() - 0.5) * 1.5, Y: (e.rng.Float64() - 0.5) * 1.5},
		Life:     1,
		Decay:    0.03 + e.rng.Float64()*0.03,
		Size:     2 + e.rng.Float64()*4,
		Color:    color,
		Gravity:  0,
	})
}

func (e *effectField) spawnSplash(pos types.Vec2) {
	for i := 0; i < 12; i++ {
		a := e.rng.Float64() * 2 * math.Pi
		speed := 1 + e.rng.Float64()*2.5
		e.particles = append(e.particles, types.Particle{
			ID:       e.id(),
			Position: pos,
			Velocity: types.Vec2{X: math.Cos(a) * speed, Y: math.Sin(a)*speed - 1.5},
			Life:     1,
			Decay:    0.015 + e.rng.Float64()*0.02,
			Size:     2 + e.rng.Float64()*3,
			Color:    colorWater,
			Gravity:  0.08,
		})
	}
}

func (e *effectField) addTrack(pos types.Vec2, angle float64) {
	e.tracks = append(e.tracks, types.TireTrack{
		ID:       e.id(),
		Position: pos,
		Angle:    angle,
		Life:     1,
	})
}

// decay advances every transient entity by one frame and drops the dead.
func (e *effectField) decay() {
	live := e.particles[:0]
	for _, p := range e.particles {
		p.Velocity.Y += p.Gravity
		p.Position = p.Position.Add(p.Velocity)
		p.Life -= p.Decay
		if p.Life > 0 {
			live = append(live, p)
		}
	}
	e.particles = live

	liveTexts := e.texts[:0]
	for _, t := range e.texts {
		t.Velocity.Y += TextGravity
		t.Position = t.Position.Add(t.Velocity)
		t.Life -= TextFade
		if t.Life > 0 {
			liveTexts = append(liveTexts, t)
		}
	}
	e.texts = liveTexts

	liveTracks := e.tracks[:0]
	for _, t := range e.tracks {
		t.Life -= TrackFade
		if t.Life > 0 {
			liveTracks = append(liveTracks, t)
		}
	}
	e.tracks = liveTracks

	e.shake *= ShakeDecay
	if e.shake < 0.05 {
		e.shake = 0
	}
	if e.spawnScale < 1 {
		e.spawnScale += SpawnScaleRate
		if e.spawnScale > 1 {
			e.spawnScale = 1
		}
	}
}
