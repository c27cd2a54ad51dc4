package audio

import (
	"io"
	"sync"
	"time"
)

// Bell rings the terminal bell for hits and misses. Rings closer together
// than the interval are skipped.
type Bell struct {
	mu       sync.Mutex
	w        io.Writer
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewBell(w io.Writer, interval time.Duration) *Bell {
	return &Bell{w: w, interval: interval, now: time.Now}
}

// Play implements Sink. Shots are silent.
func (b *Bell) Play(e Event) {
	if e == ShotFired {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if !b.last.IsZero() && now.Sub(b.last) < b.interval {
		return
	}
	b.last = now
	_, _ = b.w.Write([]byte{'\a'})
}
