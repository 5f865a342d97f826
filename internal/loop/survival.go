package loop

import (
	"slices"
	"time"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/object"
	"github.com/tomz197/typefall/internal/stats"
)

// Outcome describes what a keystroke did to a survival game.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // Not a single character, or the game is over
	OutcomeMiss                     // No word starts with the key
	OutcomeWrong                    // Key does not match the target's next character
	OutcomeTargeted                 // A new target was picked
	OutcomeAdvanced                 // The target's next character was typed
	OutcomeCompleted                // The target was finished and removed
)

// SurvivalOptions configures a survival game.
type SurvivalOptions struct {
	Config     *config.Config
	Difficulty config.Difficulty
	Rand       object.Rand
	Start      time.Time
}

// Survival is the falling-words game. Keystrokes and ticks mutate the same
// state and must be serialized by the caller.
type Survival struct {
	cfg       *config.Config
	canvas    object.Canvas
	spawner   *object.WordSpawner
	rng       object.Rand
	words     []*object.Word // Spawn order; ties in targeting go to the earliest
	particles []*object.Particle
	counters  stats.Counters
	lives     int
	start     time.Time
	over      bool
	result    stats.Record
}

// NewSurvival creates a game that spawns words sampled from pool. An empty
// pool never spawns, so such a game only ends when cancelled.
func NewSurvival(pool []string, opts SurvivalOptions) *Survival {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	canvas := object.Canvas{
		Width:  cfg.Canvas.Width,
		Height: cfg.Canvas.Height,
		Margin: cfg.Canvas.Margin,
		SpawnY: cfg.Canvas.SpawnY,
	}
	tier := cfg.Tier(opts.Difficulty)
	spawner := object.NewWordSpawner(pool, object.SpawnerConfig{
		Canvas:      canvas,
		Interval:    tier.SpawnInterval,
		Floor:       cfg.Spawn.Floor,
		Decay:       cfg.Spawn.Decay,
		BaseSpeed:   tier.FallSpeed,
		SpeedJitter: cfg.Spawn.SpeedJitter,
	}, opts.Rand)

	return &Survival{
		cfg:     cfg,
		canvas:  canvas,
		spawner: spawner,
		rng:     opts.Rand,
		lives:   cfg.Session.Lives,
		start:   opts.Start,
	}
}

// Mode implements Game.
func (s *Survival) Mode() stats.Mode {
	return stats.ModeSurvival
}

// Key implements Game.
func (s *Survival) Key(key string, _ time.Time) {
	s.ResolveKeystroke(key)
}

// Lives returns the remaining lives.
func (s *Survival) Lives() int {
	return s.lives
}

// Counters returns the keystroke counters and score so far.
func (s *Survival) Counters() stats.Counters {
	return s.counters
}

// Over reports whether the lives have run out.
func (s *Survival) Over() bool {
	return s.over
}

// ResolveKeystroke applies one key press. With a target, the key must match
// its next character. Without one, the key picks the word nearest the bottom
// among those starting with it. Wasted keys count as errors.
func (s *Survival) ResolveKeystroke(key string) Outcome {
	if s.over {
		return OutcomeIgnored
	}
	r, ok := singleRune(key)
	if !ok {
		return OutcomeIgnored
	}

	if target := s.target(); target != nil {
		if !target.Matches(r) {
			s.counters.Miss()
			return OutcomeWrong
		}
		target.Advance()
		s.counters.Hit()
		if target.Done() {
			s.complete(target)
			return OutcomeCompleted
		}
		return OutcomeAdvanced
	}

	var pick *object.Word
	for _, w := range s.words {
		if w.StartsWith(r) && (pick == nil || w.Y > pick.Y) {
			pick = w
		}
	}
	if pick == nil {
		s.counters.Miss()
		return OutcomeMiss
	}

	pick.Target = true
	pick.Advance()
	s.counters.Hit()
	s.burst(pick.X, pick.Y, s.cfg.Particles.TargetCount, object.ColorTarget)
	if pick.Done() {
		s.complete(pick)
		return OutcomeCompleted
	}
	return OutcomeTargeted
}

// Tick advances one frame: spawn, fall, bottom collisions, particles.
// Returns true only on the frame the last life was lost.
func (s *Survival) Tick(now time.Time) bool {
	if s.over {
		return false
	}

	if w := s.spawner.Update(now); w != nil {
		s.words = append(s.words, w)
	}

	for _, w := range s.words {
		w.Fall()
	}

	kept := s.words[:0]
	for _, w := range s.words {
		if s.over || !s.canvas.Below(w.Y) {
			kept = append(kept, w)
			continue
		}
		s.lives--
		if s.lives <= 0 {
			s.lives = 0
			s.finish(now)
		}
	}
	clear(s.words[len(kept):])
	s.words = kept

	if s.over {
		return true
	}

	s.updateParticles()
	return false
}

// Result implements Game.
func (s *Survival) Result() (stats.Record, bool) {
	return s.result, s.over
}

// Snapshot implements Game.
func (s *Survival) Snapshot() *Snapshot {
	snap := &Snapshot{
		Mode:      stats.ModeSurvival,
		Canvas:    s.canvas,
		Words:     make([]WordView, len(s.words)),
		Particles: make([]ParticleView, len(s.particles)),
		Score:     s.counters.Score,
		Lives:     s.lives,
		MaxLives:  s.cfg.Session.Lives,
		Over:      s.over,
	}
	for i, w := range s.words {
		snap.Words[i] = WordView{
			ID:     w.ID,
			Text:   w.Text,
			Typed:  w.Typed,
			Target: w.Target,
			X:      w.X,
			Y:      w.Y,
		}
	}
	for i, p := range s.particles {
		snap.Particles[i] = ParticleView{
			X:       p.X,
			Y:       p.Y,
			Color:   p.Color,
			Opacity: p.Opacity(),
		}
	}
	return snap
}

// Close releases pooled particles. The game must not be used afterwards.
func (s *Survival) Close() {
	for _, p := range s.particles {
		p.Release()
	}
	s.particles = nil
}

func (s *Survival) target() *object.Word {
	for _, w := range s.words {
		if w.Target {
			return w
		}
	}
	return nil
}

func (s *Survival) complete(w *object.Word) {
	s.counters.Score += w.Len() * s.cfg.Session.PointsPerChar
	s.remove(w)
	s.burst(w.X, w.Y, s.cfg.Particles.CompleteCount, object.ColorComplete)
}

func (s *Survival) remove(target *object.Word) {
	for i, w := range s.words {
		if w == target {
			s.words = slices.Delete(s.words, i, i+1)
			return
		}
	}
}

func (s *Survival) burst(x, y float64, count int, color object.Color) {
	s.particles = append(s.particles, object.Burst(x, y, count, s.cfg.Particles.Speed, color, s.rng)...)
}

func (s *Survival) updateParticles() {
	kept := s.particles[:0]
	for _, p := range s.particles {
		if p.Update(s.cfg.Particles.Decay) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(s.particles[len(kept):])
	s.particles = kept
}

func (s *Survival) finish(now time.Time) {
	s.over = true
	s.result = stats.Compute(s.counters, now.Sub(s.start), stats.ModeSurvival)
}
