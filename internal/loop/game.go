// Package loop implements the typing games: the survival simulation with
// falling words, and the classic fixed-text test. Games are not safe for
// concurrent use; callers serialize keystrokes and ticks onto one goroutine.
package loop

import (
	"time"
	"unicode/utf8"

	"github.com/tomz197/typefall/internal/object"
	"github.com/tomz197/typefall/internal/stats"
)

// Game is a running session driven by keystrokes and frame ticks.
type Game interface {
	Mode() stats.Mode
	// Key applies one key press. Keys are browser-style names: a single
	// character for printable keys, a longer name ("Enter", "Backspace")
	// for everything else.
	Key(key string, now time.Time)
	// Tick advances the game by one frame. Returns true on the frame the
	// game ended.
	Tick(now time.Time) bool
	// Snapshot returns a read-only copy of what a renderer needs.
	Snapshot() *Snapshot
	// Result returns the final record once the game has ended.
	Result() (stats.Record, bool)
}

// WordView is the render state of one falling word.
type WordView struct {
	ID     uint64
	Text   string
	Typed  int
	Target bool
	X, Y   float64
}

// ParticleView is the render state of one particle.
type ParticleView struct {
	X, Y    float64
	Color   object.Color
	Opacity float64
}

// Mark is the correctness of one character of a classic text.
type Mark uint8

const (
	MarkUntyped Mark = iota
	MarkCorrect
	MarkIncorrect
)

// ClassicView is the render state of a classic game.
type ClassicView struct {
	Text     []rune
	Marks    []Mark
	Cursor   int
	WPM      int
	Errors   int
	Progress float64 // 0..1
}

// Snapshot is an immutable copy of a game's state after a frame. It shares
// no memory with the game.
type Snapshot struct {
	Mode      stats.Mode
	Canvas    object.Canvas
	Words     []WordView
	Particles []ParticleView
	Score     int
	Lives     int
	MaxLives  int
	Over      bool
	Classic   *ClassicView
}

// singleRune returns the rune of a one-character key.
func singleRune(key string) (rune, bool) {
	if utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}
