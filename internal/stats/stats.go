// Package stats turns keystroke counters into the final typing statistics.
package stats

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Mode tags which game produced a record.
type Mode int

const (
	ModeClassic Mode = iota
	ModeSurvival
)

// Modes lists every mode in menu order.
var Modes = []Mode{ModeClassic, ModeSurvival}

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "Classic"
	case ModeSurvival:
		return "Survival"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ModeClassic, fmt.Errorf("unknown mode %q", s)
}

// Counters accumulate over a session. Total always equals Correct + Errors
// in survival mode.
type Counters struct {
	Total   int
	Correct int
	Errors  int
	Score   int
}

// Hit records a correct keystroke.
func (c *Counters) Hit() {
	c.Correct++
	c.Total++
}

// Miss records a wasted or wrong keystroke.
func (c *Counters) Miss() {
	c.Errors++
	c.Total++
}

// Record is the immutable result of one finished session.
type Record struct {
	WPM      int
	Accuracy int
	Elapsed  int // Whole seconds
	Errors   int
	Total    int
	Correct  int
	Score    int
	Mode     Mode
}

// Compute builds the final record. WPM is based on correct characters over the
// unrounded elapsed time; WPM and accuracy are 0 when their denominators are 0.
func Compute(c Counters, elapsed time.Duration, mode Mode) Record {
	if elapsed < 0 {
		elapsed = 0
	}

	accuracy := 0
	if c.Total > 0 {
		accuracy = int(math.Round(float64(c.Correct) / float64(c.Total) * 100))
	}

	return Record{
		WPM:      wpm(c.Correct, elapsed),
		Accuracy: accuracy,
		Elapsed:  int(math.Round(elapsed.Seconds())),
		Errors:   c.Errors,
		Total:    c.Total,
		Correct:  c.Correct,
		Score:    c.Score,
		Mode:     mode,
	}
}

// LiveWPM is the running figure shown while typing: characters typed so far
// over the time since the first keystroke.
func LiveWPM(chars int, elapsed time.Duration) int {
	return wpm(chars, elapsed)
}

func wpm(chars int, elapsed time.Duration) int {
	minutes := elapsed.Minutes()
	if minutes <= 0 || chars <= 0 {
		return 0
	}
	return int(math.Round(float64(chars) / 5 / minutes))
}
