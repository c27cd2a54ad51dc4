// Package audio delivers fire-and-forget sound cues from the game loop.
package audio

import "sync"

// Event is a sound cue.
type Event int

const (
	ShotFired Event = iota
	TargetHit
	TargetMissed
)

func (e Event) String() string {
	switch e {
	case ShotFired:
		return "shot"
	case TargetHit:
		return "hit"
	case TargetMissed:
		return "miss"
	}
	return "unknown"
}

// Notifier receives cues. Notify must not block the caller.
type Notifier interface {
	Notify(Event)
}

// Sink plays cues. Play may block.
type Sink interface {
	Play(Event)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Notify(Event) {}
func (Nop) Play(Event)   {}

// Async hands cues to a Sink on its own goroutine. Cues arriving while the
// buffer is full are dropped.
type Async struct {
	sink   Sink
	events chan Event
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewAsync starts delivering cues to sink with room for buffer pending cues.
func NewAsync(sink Sink, buffer int) *Async {
	if buffer < 1 {
		buffer = 1
	}
	a := &Async{
		sink:   sink,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.events {
		a.sink.Play(e)
	}
}

// Notify implements Notifier.
func (a *Async) Notify(e Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.events <- e:
	default:
	}
}

// Close stops accepting cues and waits for pending ones to play.
func (a *Async) Close() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.events)
		a.mu.Unlock()
	})
	<-a.done
}
