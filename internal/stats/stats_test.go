package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	r := Compute(Counters{Total: 60, Correct: 50, Errors: 10, Score: 300}, 30*time.Second, ModeSurvival)

	assert.Equal(t, Record{
		WPM:      20,
		Accuracy: 83,
		Elapsed:  30,
		Errors:   10,
		Total:    60,
		Correct:  50,
		Score:    300,
		Mode:     ModeSurvival,
	}, r)
}

func TestComputeZeroDenominators(t *testing.T) {
	r := Compute(Counters{}, 0, ModeSurvival)
	assert.Equal(t, 0, r.WPM)
	assert.Equal(t, 0, r.Accuracy)
	assert.Equal(t, 0, r.Elapsed)

	r = Compute(Counters{Total: 4, Correct: 4}, 0, ModeClassic)
	assert.Equal(t, 0, r.WPM)
	assert.Equal(t, 100, r.Accuracy)
}

func TestComputeRounding(t *testing.T) {
	// Elapsed is rounded for display, WPM uses the raw duration
	r := Compute(Counters{Total: 10, Correct: 10}, 1500*time.Millisecond, ModeClassic)
	assert.Equal(t, 2, r.Elapsed)
	assert.Equal(t, 80, r.WPM)

	r = Compute(Counters{Total: 8, Correct: 1, Errors: 7}, time.Minute, ModeSurvival)
	assert.Equal(t, 13, r.Accuracy) // 12.5 rounds up
	assert.Equal(t, 0, r.WPM)       // 0.2 rounds down
}

func TestComputeBounds(t *testing.T) {
	for total := 0; total <= 20; total++ {
		for correct := 0; correct <= total; correct++ {
			r := Compute(Counters{Total: total, Correct: correct, Errors: total - correct}, 7*time.Second, ModeSurvival)
			assert.GreaterOrEqual(t, r.WPM, 0)
			assert.GreaterOrEqual(t, r.Accuracy, 0)
			assert.LessOrEqual(t, r.Accuracy, 100)
		}
	}
}

func TestCounters(t *testing.T) {
	var c Counters
	c.Hit()
	c.Hit()
	c.Miss()
	assert.Equal(t, Counters{Total: 3, Correct: 2, Errors: 1}, c)
}

func TestLiveWPM(t *testing.T) {
	assert.Equal(t, 60, LiveWPM(50, 10*time.Second))
	assert.Equal(t, 0, LiveWPM(50, 0))
	assert.Equal(t, 0, LiveWPM(0, time.Second))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("survival")
	require.NoError(t, err)
	assert.Equal(t, ModeSurvival, m)

	_, err = ParseMode("marathon")
	assert.Error(t, err)
}
