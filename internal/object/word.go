package object

import "unicode"

// Word is a falling word. Text never changes after spawn; Typed counts the
// characters already typed and never exceeds the text length.
type Word struct {
	ID     uint64
	Text   string
	X, Y   float64
	Speed  float64 // Logical units per frame
	Typed  int
	Target bool

	runes []rune
}

// NewWord creates an untyped, untargeted word.
func NewWord(id uint64, text string, x, y, speed float64) *Word {
	return &Word{
		ID:    id,
		Text:  text,
		X:     x,
		Y:     y,
		Speed: speed,
		runes: []rune(text),
	}
}

// Len returns the length of the word in characters.
func (w *Word) Len() int {
	return len(w.runes)
}

// Done reports whether every character has been typed.
func (w *Word) Done() bool {
	return w.Typed >= len(w.runes)
}

// Next returns the next untyped character, or 0 when the word is done.
func (w *Word) Next() rune {
	if w.Done() {
		return 0
	}
	return w.runes[w.Typed]
}

// Matches reports whether r equals the next untyped character, ignoring case.
func (w *Word) Matches(r rune) bool {
	if w.Done() {
		return false
	}
	return foldEqual(w.runes[w.Typed], r)
}

// StartsWith reports whether the word's first character equals r, ignoring case.
func (w *Word) StartsWith(r rune) bool {
	return len(w.runes) > 0 && foldEqual(w.runes[0], r)
}

// Advance marks one more character as typed.
func (w *Word) Advance() {
	if w.Typed < len(w.runes) {
		w.Typed++
	}
}

// Fall moves the word down by its speed.
func (w *Word) Fall() {
	w.Y += w.Speed
}

func foldEqual(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}
