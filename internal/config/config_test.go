package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5, cfg.Session.Lives)
	assert.Equal(t, 10, cfg.Session.PointsPerChar)
	assert.Equal(t, 800*time.Millisecond, cfg.Spawn.Floor)
	assert.Equal(t, 0.995, cfg.Spawn.Decay)
	assert.Equal(t, -30.0, cfg.Canvas.SpawnY)

	assert.Equal(t, TierConfig{SpawnInterval: 2500 * time.Millisecond, FallSpeed: 0.6}, cfg.Tier(Easy))
	assert.Equal(t, TierConfig{SpawnInterval: 1800 * time.Millisecond, FallSpeed: 1.0}, cfg.Tier(Medium))
	assert.Equal(t, TierConfig{SpawnInterval: 1200 * time.Millisecond, FallSpeed: 1.5}, cfg.Tier(Hard))

	assert.Equal(t, time.Second/60, cfg.TickTime())
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typefall.yaml")
	data := "session:\n  lives: 3\ndifficulty:\n  hard:\n    spawn_interval: 900ms\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Session.Lives)
	assert.Equal(t, 900*time.Millisecond, cfg.Tier(Hard).SpawnInterval)
	// Untouched fields keep their defaults
	assert.Equal(t, 1.5, cfg.Tier(Hard).FallSpeed)
	assert.Equal(t, 10, cfg.Session.PointsPerChar)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"zero lives":  "session:\n  lives: 0\n",
		"decay above": "spawn:\n  decay: 1.5\n",
		"no tick":     "server:\n  tick_rate: 0\n",
		"wide margin": "canvas:\n  margin: 500\n",
		"bad tier":    "difficulty:\n  easy:\n    fall_speed: 0\n",
		"no points":   "session:\n  points_per_char: 0\n",
		"neg target":  "particles:\n  target_count: -1\n",
		"neg burst":   "particles:\n  complete_count: -2\n",
		"neg speed":   "particles:\n  speed: -1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, Hard, d)

	_, err = ParseDifficulty("nightmare")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TYPEFALL_TEST_VALUE", "42")

	assert.Equal(t, "42", GetEnv("TYPEFALL_TEST_VALUE", "x"))
	assert.Equal(t, "x", GetEnv("TYPEFALL_TEST_UNSET", "x"))
	assert.Equal(t, 42, GetEnvInt("TYPEFALL_TEST_VALUE", 7))
	assert.Equal(t, 7, GetEnvInt("TYPEFALL_TEST_UNSET", 7))
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer

	t.Setenv("TYPEFALL_LOG_LEVEL", "warn")
	logger := NewLogger(&buf, "test")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")

	t.Setenv("TYPEFALL_LOG_LEVEL", "loud")
	assert.Equal(t, log.InfoLevel, NewLogger(&buf, "").GetLevel())
}

func TestLoadAllowsNoParticles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.yaml")
	data := "particles:\n  target_count: 0\n  complete_count: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Particles.TargetCount)
	assert.Zero(t, cfg.Particles.CompleteCount)
}
