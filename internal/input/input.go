// Package input decodes raw terminal bytes into key presses.
package input

import (
	"bufio"
	"unicode/utf8"
)

// Key names for non-printable keys. Printable keys are named by the
// character itself, so a key is printable exactly when its name is one
// character long.
const (
	KeyEnter        = "Enter"
	KeyBackspace    = "Backspace"
	KeyTab          = "Tab"
	KeyEscape       = "Escape"
	KeyArrowUp      = "ArrowUp"
	KeyArrowDown    = "ArrowDown"
	KeyArrowLeft    = "ArrowLeft"
	KeyArrowRight   = "ArrowRight"
	KeyCtrlC        = "Ctrl+C"
	KeyUnidentified = "Unidentified"
)

// Input is everything read since the previous frame.
type Input struct {
	Keys   []string
	Closed bool // The reader hit EOF or an error; no more keys will come
}

// Quit reports whether Ctrl+C was pressed.
func (in Input) Quit() bool {
	for _, k := range in.Keys {
		if k == KeyCtrlC {
			return true
		}
	}
	return false
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch      chan byte
	pending []byte // Incomplete UTF-8 sequence carried over to the next read
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking and
// decodes them into keys.
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	keys, rest := Decode(buf)
	if !s.closed {
		s.pending = rest
	}
	return Input{Keys: keys, Closed: s.closed}
}

// Reset discards everything buffered so far, so keys pressed on one screen
// don't leak into the next.
func Reset(s *Stream) {
	s.pending = nil
	for {
		select {
		case _, ok := <-s.ch:
			if !ok {
				s.closed = true
				return
			}
		default:
			return
		}
	}
}

// Decode turns raw bytes into key names. A trailing incomplete UTF-8
// sequence is returned as rest.
func Decode(buf []byte) (keys []string, rest []byte) {
	for i := 0; i < len(buf); {
		b := buf[i]

		if b == '\x1b' {
			name, n := decodeEscape(buf[i:])
			if n == 0 {
				return keys, append([]byte(nil), buf[i:]...)
			}
			keys = append(keys, name)
			i += n
			continue
		}

		if b < utf8.RuneSelf {
			keys = append(keys, asciiKey(b))
			i++
			continue
		}

		if !utf8.FullRune(buf[i:]) {
			return keys, append([]byte(nil), buf[i:]...)
		}
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError {
			keys = append(keys, KeyUnidentified)
		} else {
			keys = append(keys, string(r))
		}
		i += size
	}
	return keys, nil
}

// decodeEscape decodes a sequence starting with ESC and returns its key
// name and length. A whole CSI (ESC [ params final) or SS3 (ESC O final)
// sequence is always consumed; unmapped ones are KeyUnidentified. n is 0
// when the sequence is cut off at the end of buf.
func decodeEscape(buf []byte) (name string, n int) {
	if len(buf) < 2 {
		return KeyEscape, 1
	}
	switch buf[1] {
	case '[':
		j := 2
		// Parameter and intermediate bytes
		for j < len(buf) && buf[j] >= 0x20 && buf[j] <= 0x3f {
			j++
		}
		if j == len(buf) {
			return "", 0
		}
		if f := buf[j]; f >= 0x40 && f <= 0x7e {
			if name, ok := cursorKeys[f]; ok && j == 2 {
				return name, j + 1
			}
			return KeyUnidentified, j + 1
		}
		// Malformed; the offending byte is decoded on its own
		return KeyUnidentified, j
	case 'O':
		if len(buf) < 3 {
			return "", 0
		}
		if name, ok := cursorKeys[buf[2]]; ok {
			return name, 3
		}
		return KeyUnidentified, 3
	default:
		return KeyEscape, 1
	}
}

var cursorKeys = map[byte]string{
	'A': KeyArrowUp,
	'B': KeyArrowDown,
	'C': KeyArrowRight,
	'D': KeyArrowLeft,
}

func asciiKey(b byte) string {
	switch b {
	case '\r', '\n':
		return KeyEnter
	case '\b', '\x7f':
		return KeyBackspace
	case '\t':
		return KeyTab
	case '\x03':
		return KeyCtrlC
	}
	if b < ' ' {
		return KeyUnidentified
	}
	return string(rune(b))
}
