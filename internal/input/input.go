// Package input turns raw terminal bytes into discrete key presses.
package input

import (
	"io"
)

// Key is one decoded key press.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyFire
	KeyPause
	KeyQuit
	KeyEnter
	KeyEscape
	KeyOther // any other byte; still counts as activity
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyFire:
		return "fire"
	case KeyPause:
		return "pause"
	case KeyQuit:
		return "quit"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	case KeyOther:
		return "other"
	}
	return "none"
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	buf    []byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		var b [64]byte
		for {
			n, err := r.Read(b[:])
			for _, c := range b[:n] {
				s.ch <- c
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

// Closed reports whether the reader has hit EOF or an error and every
// byte has been consumed.
func (s *Stream) Closed() bool { return s.closed }

// Read drains all available bytes without blocking and appends the decoded
// keys to dst.
func (s *Stream) Read(dst []Key) []Key {
	s.buf = s.buf[:0]
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			s.buf = append(s.buf, b)
		default:
			break drain
		}
	}
	return Parse(s.buf, dst)
}

// Parse decodes buf, appending keys to dst. Arrow keys arrive as
// ESC [ A..D; a lone ESC is KeyEscape.
func Parse(buf []byte, dst []Key) []Key {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			k := KeyOther
			switch buf[i+2] {
			case 'A':
				k = KeyUp
			case 'B':
				k = KeyDown
			case 'C':
				k = KeyRight
			case 'D':
				k = KeyLeft
			}
			dst = append(dst, k)
			i += 2
			continue
		}
		dst = append(dst, keyOf(b))
	}
	return dst
}

func keyOf(b byte) Key {
	switch b {
	case 'q', 'Q', '\x03': // ctrl-c
		return KeyQuit
	case 'a', 'A', 'h', 'H':
		return KeyLeft
	case 'd', 'D', 'l', 'L':
		return KeyRight
	case 'w', 'W', 'k', 'K':
		return KeyUp
	case 's', 'S', 'j', 'J':
		return KeyDown
	case ' ':
		return KeyFire
	case 'p', 'P':
		return KeyPause
	case '\n', '\r':
		return KeyEnter
	case '\x1b':
		return KeyEscape
	}
	return KeyOther
}
