package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Color is a palette index. ColorNone is an unset pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	numColors
)

// ansiFG is the SGR foreground code of each color; background is +10.
var ansiFG = [numColors]int{
	ColorWhite:   97,
	ColorGray:    90,
	ColorRed:     91,
	ColorGreen:   92,
	ColorYellow:  93,
	ColorBlue:    94,
	ColorMagenta: 95,
	ColorCyan:    96,
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// cell is the pair of sub-pixels shown by one terminal character.
type cell struct {
	top, bottom Color
}

// dirty never matches a rendered cell, forcing a repaint.
var dirty = cell{top: numColors}

// Canvas is a drawing buffer with 2x vertical resolution using half-block
// characters. It scales logical coordinates to terminal cells and only
// repaints cells that changed since the last Render.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int
	pixels         []Color // [y*termWidth + x]
	prev           []cell  // what the terminal currently shows

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte
}

// NewScaledCanvas creates a canvas that maps a logicalWidth x logicalHeight
// space onto termWidth x termHeight cells.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping
// logical size. A change in size forces a full repaint.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth, termHeight = max(termWidth, 1), max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termWidth*termHeight)
		c.ForceRedraw()
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row the canvas starts after.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

func (c *Canvas) OffsetCol() int { return c.offsetCol }
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// Clear resets all pixels. The terminal is untouched until Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render repaint every cell.
func (c *Canvas) ForceRedraw() {
	for i := range c.prev {
		c.prev[i] = dirty
	}
}

// MarkTextDirty marks n cells starting at 1-based (col, row) as overwritten
// by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	for x := max(col-1, 0); x < min(col-1+n, c.termWidth); x++ {
		c.prev[r*c.termWidth+x] = dirty
	}
}

func (c *Canvas) setPixel(x, y int, color Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

// SetFloat sets the pixel under logical point (x, y).
func (c *Canvas) SetFloat(x, y float64, color Color) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), color)
}

// FillRect fills a logical rectangle. Anything visible covers at least one
// pixel.
func (c *Canvas) FillRect(x, y, w, h float64, color Color) {
	x0 := int(math.Floor(x * c.scaleX))
	y0 := int(math.Floor(y * c.scaleY))
	x1 := max(int(math.Ceil((x+w)*c.scaleX)), x0+1)
	y1 := max(int(math.Ceil((y+h)*c.scaleY)), y0+1)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.termWidth), min(y1, c.subPixelHeight)
	for py := y0; py < y1; py++ {
		row := c.pixels[py*c.termWidth : (py+1)*c.termWidth]
		for px := x0; px < x1; px++ {
			row[px] = color
		}
	}
}

// Render writes every changed cell to w.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	for row := 0; row < c.termHeight; row++ {
		top := c.pixels[row*2*c.termWidth : (row*2+1)*c.termWidth]
		bottom := c.pixels[(row*2+1)*c.termWidth : (row*2+2)*c.termWidth]
		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: top[col], bottom: bottom[col]}
			i := row*c.termWidth + col
			if c.prev[i] == cur {
				continue
			}
			c.prev[i] = cur
			c.moveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			c.writeCell(cur)
		}
	}
	if c.renderBuf.Len() > 0 {
		io.WriteString(w, c.renderBuf.String())
	}
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) sgr(codes ...int) {
	c.renderBuf.WriteString("\033[")
	for i, code := range codes {
		if i > 0 {
			c.renderBuf.WriteByte(';')
		}
		c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(code), 10))
	}
	c.renderBuf.WriteByte('m')
}

func (c *Canvas) writeCell(cl cell) {
	switch {
	case cl.top == ColorNone && cl.bottom == ColorNone:
		c.renderBuf.WriteByte(' ')
		return
	case cl.top == cl.bottom:
		c.sgr(ansiFG[cl.top])
		c.renderBuf.WriteRune(BlockFull)
	case cl.bottom == ColorNone:
		c.sgr(ansiFG[cl.top])
		c.renderBuf.WriteRune(BlockUpperHalf)
	case cl.top == ColorNone:
		c.sgr(ansiFG[cl.bottom])
		c.renderBuf.WriteRune(BlockLowerHalf)
	default:
		c.sgr(ansiFG[cl.top], ansiFG[cl.bottom]+10)
		c.renderBuf.WriteRune(BlockUpperHalf)
	}
	c.renderBuf.WriteString(ColorReset)
}

// RenderBorder draws a box around the canvas when the terminal is larger
// than the render area.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	if hasV {
		if hasH {
			writeAt(&buf, left, top, "┌"+line+"┐")
			writeAt(&buf, left, bottom, "└"+line+"┘")
		} else {
			writeAt(&buf, c.offsetCol+1, top, line)
			writeAt(&buf, c.offsetCol+1, bottom, line)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			writeAt(&buf, left, row, "│")
			writeAt(&buf, right, row, "│")
		}
	}
	io.WriteString(w, buf.String())
}

func writeAt(b *strings.Builder, col, row int, s string) {
	b.WriteString("\033[")
	b.WriteString(strconv.Itoa(row))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(col))
	b.WriteByte('H')
	b.WriteString(s)
}

func (c *Canvas) TerminalWidth() int  { return c.termWidth }
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// LogicalToTerminal converts logical coordinates to a 1-based terminal
// position (col, row) inside the canvas.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}
