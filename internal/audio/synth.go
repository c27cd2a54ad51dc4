package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Synth plays generated tones through the system speaker.
type Synth struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewSynth() *Synth {
	return &Synth{mixer: &beep.Mixer{}}
}

// Init opens the speaker. It is safe to call more than once.
func (s *Synth) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Close silences all playing tones.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Play implements Sink.
func (s *Synth) Play(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	streamer := cue(e)
	if streamer == nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(streamer)
	speaker.Unlock()
}

func cue(e Event) beep.Streamer {
	switch e {
	case ShotFired:
		return beep.Take(sampleRate.N(60*time.Millisecond), newSweep(sampleRate, 1200, 600, 0.12))
	case TargetHit:
		return beep.Take(sampleRate.N(120*time.Millisecond), newSweep(sampleRate, 440, 880, 0.2))
	case TargetMissed:
		return beep.Take(sampleRate.N(250*time.Millisecond), newSweep(sampleRate, 220, 90, 0.25))
	}
	return nil
}

// sweep is a sine tone gliding from one frequency to another with a
// linear fade out.
type sweep struct {
	sr       beep.SampleRate
	from, to float64
	gain     float64
	pos      int
	length   int
	phase    float64
}

func newSweep(sr beep.SampleRate, from, to, gain float64) *sweep {
	return &sweep{sr: sr, from: from, to: to, gain: gain, length: sr.N(250 * time.Millisecond)}
}

func (g *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*progress
		g.phase += 2 * math.Pi * freq / float64(g.sr)
		sample := g.gain * (1 - progress) * math.Sin(g.phase)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *sweep) Err() error {
	return nil
}
