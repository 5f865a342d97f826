package loop

import (
	"time"

	"github.com/tomz197/typefall/internal/stats"
)

const liveWPMInterval = time.Second

// Classic is the fixed-text typing test. Characters are typed in order;
// Backspace removes the last one. Errors count every wrong character typed,
// even if it is later corrected.
type Classic struct {
	text     []rune
	typed    []rune
	errors   int
	start    time.Time
	started  bool
	liveWPM  int
	lastLive time.Time
	done     bool
	result   stats.Record
}

// NewClassic creates a test for text.
func NewClassic(text string) *Classic {
	runes := []rune(text)
	return &Classic{
		text:  runes,
		typed: make([]rune, 0, len(runes)),
	}
}

// Mode implements Game.
func (c *Classic) Mode() stats.Mode {
	return stats.ModeClassic
}

// Key implements Game. The clock starts on the first key press.
func (c *Classic) Key(key string, now time.Time) {
	if c.done {
		return
	}
	if key == "Backspace" {
		if len(c.typed) > 0 {
			c.typed = c.typed[:len(c.typed)-1]
		}
		return
	}
	r, ok := singleRune(key)
	if !ok || len(c.typed) >= len(c.text) {
		return
	}

	if !c.started {
		c.started = true
		c.start = now
		c.lastLive = now
	}
	if r != c.text[len(c.typed)] {
		c.errors++
	}
	c.typed = append(c.typed, r)

	if len(c.typed) == len(c.text) {
		c.finish(now)
	}
}

// Tick implements Game. Live WPM is refreshed at most once per second.
func (c *Classic) Tick(now time.Time) bool {
	if c.done || !c.started {
		return false
	}
	if now.Sub(c.lastLive) >= liveWPMInterval {
		c.liveWPM = stats.LiveWPM(len(c.typed), now.Sub(c.start))
		c.lastLive = now
	}
	return false
}

// Result implements Game.
func (c *Classic) Result() (stats.Record, bool) {
	return c.result, c.done
}

// Marks returns the correctness of every character of the text.
func (c *Classic) Marks() []Mark {
	marks := make([]Mark, len(c.text))
	for i, r := range c.typed {
		if r == c.text[i] {
			marks[i] = MarkCorrect
		} else {
			marks[i] = MarkIncorrect
		}
	}
	return marks
}

// Snapshot implements Game.
func (c *Classic) Snapshot() *Snapshot {
	progress := 0.0
	if len(c.text) > 0 {
		progress = float64(len(c.typed)) / float64(len(c.text))
	}
	return &Snapshot{
		Mode: stats.ModeClassic,
		Over: c.done,
		Classic: &ClassicView{
			Text:     append([]rune(nil), c.text...),
			Marks:    c.Marks(),
			Cursor:   len(c.typed),
			WPM:      c.liveWPM,
			Errors:   c.errors,
			Progress: progress,
		},
	}
}

func (c *Classic) finish(now time.Time) {
	correct := 0
	for i, r := range c.typed {
		if r == c.text[i] {
			correct++
		}
	}
	c.done = true
	c.liveWPM = stats.LiveWPM(len(c.typed), now.Sub(c.start))
	c.result = stats.Compute(stats.Counters{
		Total:   len(c.typed),
		Correct: correct,
		Errors:  c.errors,
	}, now.Sub(c.start), stats.ModeClassic)
}
