// Package draw renders the playfield and text overlays to an ANSI terminal.
package draw

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// ANSI control sequences.
const (
	ColorReset  = "\033[0m"
	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// maxChunkSize keeps each write under one TCP segment on a typical
// ethernet path.
const maxChunkSize = 1400

// Colorize wraps s in the foreground color c.
func Colorize(c Color, s string) string {
	if c == ColorNone || c >= numColors {
		return s
	}
	return "\033[" + strconv.Itoa(ansiFG[c]) + "m" + s + ColorReset
}

// ChunkWriter collects one frame of overlay text, positioned relative to
// the canvas origin, and sends it out in bounded writes on Flush.
type ChunkWriter struct {
	out    io.Writer
	frame  []byte
	offCol int
	offRow int
}

// NewChunkWriter returns a ChunkWriter on w. Coordinates passed to WriteAt
// are shifted by (offsetCol, offsetRow).
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    w,
		frame:  make([]byte, 0, 4096),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the origin, e.g. after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol, cw.offRow = offsetCol, offsetRow
}

func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.frame = append(cw.frame, p...)
	return len(p), nil
}

// WriteAt places s at the 1-based canvas cell (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.frame = append(cw.frame, "\033["...)
	cw.frame = strconv.AppendInt(cw.frame, int64(row+cw.offRow), 10)
	cw.frame = append(cw.frame, ';')
	cw.frame = strconv.AppendInt(cw.frame, int64(col+cw.offCol), 10)
	cw.frame = append(cw.frame, 'H')
	cw.frame = append(cw.frame, s...)
}

// WriteCentered writes plain text s centered on col.
func (cw *ChunkWriter) WriteCentered(col, row int, s string) {
	cw.WriteAt(col-len(s)/2, row, s)
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends the collected frame and empties the buffer. The buffer is
// dropped even when a write fails.
func (cw *ChunkWriter) Flush() error {
	data := cw.frame
	cw.frame = cw.frame[:0]
	for start := 0; start < len(data); start += maxChunkSize {
		end := min(start+maxChunkSize, len(data))
		if _, err := cw.out.Write(data[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// TermSizeFunc reports the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc asks the terminal attached to stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// MakeRaw puts the terminal on fd into raw mode and returns a function that
// restores it.
func MakeRaw(fd int) (restore func(), err error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("draw: raw mode: %w", err)
	}
	return func() { term.Restore(fd, state) }, nil
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) { io.WriteString(w, clearScreen) }

func HideCursor(w io.Writer) { io.WriteString(w, hideCursor) }

func ShowCursor(w io.Writer) { io.WriteString(w, showCursor) }
