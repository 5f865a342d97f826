package object

import "time"

// SpawnerConfig is the starting point of a WordSpawner.
type SpawnerConfig struct {
	Canvas      Canvas
	Interval    time.Duration // Initial spawn interval, set by difficulty
	Floor       time.Duration // Interval never shrinks below this
	Decay       float64       // Interval multiplier applied after each spawn
	BaseSpeed   float64       // Baseline fall speed, set by difficulty
	SpeedJitter float64       // Upper bound of random speed added to BaseSpeed
}

// WordSpawner creates falling words at an accelerating cadence.
type WordSpawner struct {
	cfg       SpawnerConfig
	pool      []string
	interval  time.Duration
	lastSpawn time.Time
	nextID    uint64
	rng       Rand
}

// NewWordSpawner creates a spawner sampling from pool. The pool is copied;
// an empty pool never spawns.
func NewWordSpawner(pool []string, cfg SpawnerConfig, rng Rand) *WordSpawner {
	return &WordSpawner{
		cfg:      cfg,
		pool:     append([]string(nil), pool...),
		interval: cfg.Interval,
		nextID:   1,
		rng:      rng,
	}
}

// Interval returns the current spawn interval.
func (s *WordSpawner) Interval() time.Duration {
	return s.interval
}

// Update spawns a word if the interval has elapsed since the last spawn.
// The first call always spawns. Returns nil when nothing was spawned.
func (s *WordSpawner) Update(now time.Time) *Word {
	if len(s.pool) == 0 {
		return nil
	}
	if !s.lastSpawn.IsZero() && now.Sub(s.lastSpawn) <= s.interval {
		return nil
	}

	text := s.pool[s.rng.Intn(len(s.pool))]
	c := s.cfg.Canvas
	x := c.Margin + s.rng.Float64()*(c.Width-2*c.Margin)
	speed := s.cfg.BaseSpeed + s.rng.Float64()*s.cfg.SpeedJitter

	w := NewWord(s.nextID, text, x, c.SpawnY, speed)
	s.nextID++
	s.lastSpawn = now

	next := time.Duration(float64(s.interval) * s.cfg.Decay)
	if next < s.cfg.Floor {
		next = s.cfg.Floor
	}
	s.interval = next

	return w
}
