package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownDifficulty is returned when parsing a difficulty name fails.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty selects the initial spawn cadence and baseline fall speed.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists every tier in menu order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses a tier name, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return Easy, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Config holds all tunable game parameters.
type Config struct {
	Canvas      CanvasConfig      `yaml:"canvas"`
	Session     SessionConfig     `yaml:"session"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Difficulty  DifficultyConfig  `yaml:"difficulty"`
	Particles   ParticleConfig    `yaml:"particles"`
	Server      ServerConfig      `yaml:"server"`
	Client      ClientConfig      `yaml:"client"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// CanvasConfig describes the logical play field.
type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Margin float64 `yaml:"margin"`  // Horizontal inset for spawn positions
	SpawnY float64 `yaml:"spawn_y"` // Starting Y, above the visible area
}

// SessionConfig holds per-session rules.
type SessionConfig struct {
	Lives         int `yaml:"lives"`
	PointsPerChar int `yaml:"points_per_char"`
}

// SpawnConfig holds the difficulty ramp parameters shared by all tiers.
type SpawnConfig struct {
	Decay       float64       `yaml:"decay"` // Interval multiplier applied after each spawn
	Floor       time.Duration `yaml:"floor"`
	SpeedJitter float64       `yaml:"speed_jitter"` // Upper bound of random speed added to the baseline
}

// TierConfig is the starting point of one difficulty tier.
type TierConfig struct {
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	FallSpeed     float64       `yaml:"fall_speed"` // Logical units per frame
}

// DifficultyConfig maps each tier to its parameters.
type DifficultyConfig struct {
	Easy   TierConfig `yaml:"easy"`
	Medium TierConfig `yaml:"medium"`
	Hard   TierConfig `yaml:"hard"`
}

// ParticleConfig tunes the cosmetic particle bursts.
type ParticleConfig struct {
	TargetCount   int     `yaml:"target_count"`
	CompleteCount int     `yaml:"complete_count"`
	Speed         float64 `yaml:"speed"`
	Decay         float64 `yaml:"decay"` // Life lost per frame
}

// ServerConfig tunes the game server.
type ServerConfig struct {
	TickRate int `yaml:"tick_rate"`
}

// ClientConfig tunes terminal clients.
type ClientConfig struct {
	TargetFPS            int           `yaml:"target_fps"`
	InactivityWarn       time.Duration `yaml:"inactivity_warn"`
	InactivityDisconnect time.Duration `yaml:"inactivity_disconnect"`
	ContentTimeout       time.Duration `yaml:"content_timeout"`
}

// LeaderboardConfig tunes the leaderboard.
type LeaderboardConfig struct {
	MaxEntries int  `yaml:"max_entries"`
	SeedMock   bool `yaml:"seed_mock"`
}

// Tier returns the parameters for d.
func (c *Config) Tier(d Difficulty) TierConfig {
	switch d {
	case Medium:
		return c.Difficulty.Medium
	case Hard:
		return c.Difficulty.Hard
	default:
		return c.Difficulty.Easy
	}
}

// TickTime is the duration of one server frame.
func (c *Config) TickTime() time.Duration {
	return time.Second / time.Duration(c.Server.TickRate)
}

// FrameTime is the duration of one client frame.
func (c *Config) FrameTime() time.Duration {
	return time.Second / time.Duration(c.Client.TargetFPS)
}

// Default returns the embedded defaults. Panics if they are invalid.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first parameter that would break the simulation.
func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("canvas size must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	case c.Canvas.Margin < 0 || 2*c.Canvas.Margin > c.Canvas.Width:
		return fmt.Errorf("canvas margin %v does not fit width %v", c.Canvas.Margin, c.Canvas.Width)
	case c.Session.Lives <= 0:
		return fmt.Errorf("session lives must be positive, got %d", c.Session.Lives)
	case c.Session.PointsPerChar <= 0:
		return fmt.Errorf("session points per char must be positive, got %d", c.Session.PointsPerChar)
	case c.Spawn.Decay <= 0 || c.Spawn.Decay > 1:
		return fmt.Errorf("spawn decay must be in (0,1], got %v", c.Spawn.Decay)
	case c.Spawn.Floor <= 0:
		return fmt.Errorf("spawn floor must be positive, got %v", c.Spawn.Floor)
	case c.Spawn.SpeedJitter < 0:
		return fmt.Errorf("spawn speed jitter must not be negative, got %v", c.Spawn.SpeedJitter)
	case c.Particles.TargetCount < 0 || c.Particles.CompleteCount < 0:
		return fmt.Errorf("particle counts must not be negative, got %d and %d",
			c.Particles.TargetCount, c.Particles.CompleteCount)
	case c.Particles.Speed < 0:
		return fmt.Errorf("particle speed must not be negative, got %v", c.Particles.Speed)
	case c.Particles.Decay <= 0:
		return fmt.Errorf("particle decay must be positive, got %v", c.Particles.Decay)
	case c.Server.TickRate <= 0:
		return fmt.Errorf("server tick rate must be positive, got %d", c.Server.TickRate)
	case c.Client.TargetFPS <= 0:
		return fmt.Errorf("client target fps must be positive, got %d", c.Client.TargetFPS)
	case c.Leaderboard.MaxEntries <= 0:
		return fmt.Errorf("leaderboard max entries must be positive, got %d", c.Leaderboard.MaxEntries)
	}
	for _, d := range Difficulties {
		t := c.Tier(d)
		if t.SpawnInterval <= 0 || t.FallSpeed <= 0 {
			return fmt.Errorf("difficulty %s: spawn interval and fall speed must be positive", d)
		}
	}
	return nil
}
