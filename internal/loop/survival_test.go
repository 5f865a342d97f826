package loop

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/object"
	"github.com/tomz197/typefall/internal/stats"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const frame = time.Second / 60

func newTestSurvival(pool []string, d config.Difficulty) *Survival {
	return NewSurvival(pool, SurvivalOptions{
		Config:     config.Default(),
		Difficulty: d,
		Rand:       rand.New(rand.NewSource(42)),
		Start:      t0,
	})
}

// place puts a word straight into the active set.
func place(s *Survival, text string, y, speed float64) *object.Word {
	w := object.NewWord(uint64(len(s.words)+1000), text, 300, y, speed)
	s.words = append(s.words, w)
	return w
}

func press(s *Survival, keys string) []Outcome {
	var out []Outcome
	for _, r := range keys {
		out = append(out, s.ResolveKeystroke(string(r)))
	}
	return out
}

func TestTypingWordToCompletion(t *testing.T) {
	s := newTestSurvival([]string{"cat"}, config.Easy)

	require.False(t, s.Tick(t0))
	require.Len(t, s.words, 1)
	w := s.words[0]
	assert.Equal(t, "cat", w.Text)
	assert.InDelta(t, -30+w.Speed, w.Y, 1e-9)
	assert.GreaterOrEqual(t, w.Speed, 0.6)

	out := press(s, "cat")
	assert.Equal(t, []Outcome{OutcomeTargeted, OutcomeAdvanced, OutcomeCompleted}, out)

	assert.Empty(t, s.words)
	assert.Equal(t, stats.Counters{Total: 3, Correct: 3, Score: 30}, s.Counters())
	assert.NotEmpty(t, s.particles)
}

func TestTargetNearestBottom(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	high := place(s, "xray", 200, 1)
	low := place(s, "xenon", 400, 1)

	assert.Equal(t, OutcomeTargeted, s.ResolveKeystroke("x"))
	assert.True(t, low.Target)
	assert.Equal(t, 1, low.Typed)
	assert.False(t, high.Target)
	assert.Equal(t, 0, high.Typed)
}

func TestTargetTieGoesToEarliest(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	first := place(s, "mango", 300, 1)
	second := place(s, "melon", 300, 1)

	s.ResolveKeystroke("M")
	assert.True(t, first.Target)
	assert.False(t, second.Target)
}

func TestKeystrokeCaseInsensitive(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	w := place(s, "Go", 100, 1)

	assert.Equal(t, []Outcome{OutcomeTargeted, OutcomeCompleted}, press(s, "gO"))
	assert.Equal(t, 2, w.Typed)
}

func TestKeystrokeMisses(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	w := place(s, "tree", 100, 1)

	assert.Equal(t, OutcomeMiss, s.ResolveKeystroke("q"))
	assert.False(t, w.Target)

	assert.Equal(t, OutcomeTargeted, s.ResolveKeystroke("t"))
	assert.Equal(t, OutcomeWrong, s.ResolveKeystroke("x"))
	assert.Equal(t, 1, w.Typed, "mismatch must not move progress")
	assert.True(t, w.Target, "mismatch must not drop the target")

	assert.Equal(t, stats.Counters{Total: 3, Correct: 1, Errors: 2}, s.Counters())
}

func TestKeystrokeTargetLocksOtherWords(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "apple", 100, 1)
	other := place(s, "bear", 50, 1)

	s.ResolveKeystroke("a")
	assert.Equal(t, OutcomeWrong, s.ResolveKeystroke("b"))
	assert.False(t, other.Target)
}

func TestIgnoredKeys(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "enter", 100, 1)

	for _, key := range []string{"Enter", "Shift", "ArrowUp", ""} {
		assert.Equal(t, OutcomeIgnored, s.ResolveKeystroke(key), key)
	}
	assert.Equal(t, stats.Counters{}, s.Counters())
}

func TestSingleCharacterWordCompletesOnTarget(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "a", 100, 1)

	assert.Equal(t, OutcomeCompleted, s.ResolveKeystroke("a"))
	assert.Empty(t, s.words)
	assert.Equal(t, 10, s.Counters().Score)
}

func TestWordFallsPastBottom(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "go", 599.5, 1)

	assert.False(t, s.Tick(t0))
	assert.Empty(t, s.words)
	assert.Equal(t, 4, s.Lives())
	assert.Equal(t, stats.Counters{}, s.Counters())
}

func TestWordAtBottomEdgeStays(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "go", 599, 1)

	s.Tick(t0)
	assert.Len(t, s.words, 1)
	assert.Equal(t, 5, s.Lives())
}

func TestTargetLostWhenItFalls(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "gone", 599.5, 1)
	fresh := place(s, "good", 100, 1)

	s.ResolveKeystroke("g")
	s.Tick(t0)

	// The target fell; the next key picks a new target.
	assert.Equal(t, OutcomeTargeted, s.ResolveKeystroke("g"))
	assert.True(t, fresh.Target)
}

func TestLivesRunOut(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	s.counters = stats.Counters{Total: 60, Correct: 50, Errors: 10, Score: 120}

	now := t0
	for i := 1; i <= 5; i++ {
		place(s, "go", 600, 1)
		now = t0.Add(time.Duration(i) * 6 * time.Second)
		ended := s.Tick(now)
		assert.Equal(t, 5-i, s.Lives())
		assert.Equal(t, i == 5, ended, "tick %d", i)
	}

	rec, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, stats.Record{
		WPM:      20,
		Accuracy: 83,
		Elapsed:  30,
		Errors:   10,
		Total:    60,
		Correct:  50,
		Score:    120,
		Mode:     stats.ModeSurvival,
	}, rec)

	// Terminal: nothing moves any more and the end is reported once.
	place(s, "go", 600, 1)
	assert.False(t, s.Tick(now.Add(time.Second)))
	assert.Equal(t, 0, s.Lives())
	assert.Equal(t, OutcomeIgnored, s.ResolveKeystroke("g"))
	assert.Equal(t, 60, s.Counters().Total)

	again, _ := s.Result()
	assert.Equal(t, rec, again)
}

func TestLivesNeverNegative(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	for i := 0; i < 7; i++ {
		place(s, "go", 600, 1)
	}

	assert.True(t, s.Tick(t0.Add(time.Second)))
	assert.Equal(t, 0, s.Lives())
	// Words past the fifth are left where they were
	assert.Len(t, s.words, 2)
	assert.True(t, s.Over())
	assert.False(t, s.Tick(t0.Add(2*time.Second)))
}

func TestEmptyPoolNeverSpawns(t *testing.T) {
	s := newTestSurvival(nil, config.Hard)
	now := t0
	for i := 0; i < 10000; i++ {
		now = now.Add(frame)
		assert.False(t, s.Tick(now))
	}
	assert.Empty(t, s.words)
	assert.Equal(t, 5, s.Lives())
}

func TestDifficultyTiers(t *testing.T) {
	easy := newTestSurvival([]string{"w"}, config.Easy)
	hard := newTestSurvival([]string{"w"}, config.Hard)

	easy.Tick(t0)
	hard.Tick(t0)

	assert.Greater(t, easy.spawner.Interval(), hard.spawner.Interval())
	assert.Less(t, easy.words[0].Speed, 1.1)
	assert.GreaterOrEqual(t, hard.words[0].Speed, 1.5)
}

func TestParticlesFade(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	place(s, "a", 100, 0)
	s.ResolveKeystroke("a")
	require.Len(t, s.particles, 16)

	now := t0
	for i := 0; i < 19; i++ {
		now = now.Add(frame)
		s.Tick(now)
	}
	require.Len(t, s.particles, 16)
	for _, p := range s.Snapshot().Particles {
		assert.Less(t, p.Opacity, 0.1)
	}

	s.Tick(now.Add(frame))
	assert.Empty(t, s.particles)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSurvival(nil, config.Easy)
	w := place(s, "copy", 100, 1)
	s.ResolveKeystroke("c")

	snap := s.Snapshot()
	require.Len(t, snap.Words, 1)
	assert.Equal(t, WordView{ID: w.ID, Text: "copy", Typed: 1, Target: true, X: 300, Y: 100}, snap.Words[0])
	assert.Equal(t, 5, snap.Lives)
	assert.Equal(t, 5, snap.MaxLives)
	assert.Equal(t, stats.ModeSurvival, snap.Mode)

	snap.Words[0].Typed = 4
	assert.Equal(t, 1, w.Typed)

	s.Tick(t0)
	assert.Equal(t, 100.0, snap.Words[0].Y)
}

func TestInvariantsUnderRandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	s := newTestSurvival([]string{"alpha", "beta", "gamma", "delta", "ab", "b"}, config.Hard)
	keys := []string{"a", "b", "g", "d", "l", "p", "h", "e", "t", "m", "Shift"}

	typed := map[uint64]int{}
	now := t0
	for step := 0; step < 20000 && !s.Over(); step++ {
		if rng.Intn(3) == 0 {
			now = now.Add(frame)
			s.Tick(now)
		} else {
			s.ResolveKeystroke(keys[rng.Intn(len(keys))])
		}

		c := s.Counters()
		require.Equal(t, c.Total, c.Correct+c.Errors)
		require.GreaterOrEqual(t, s.Lives(), 0)

		targets := 0
		for _, w := range s.words {
			if w.Target {
				targets++
			}
			require.GreaterOrEqual(t, w.Typed, typed[w.ID])
			require.LessOrEqual(t, w.Typed, w.Len())
			typed[w.ID] = w.Typed
		}
		require.LessOrEqual(t, targets, 1)
	}
}
