package input

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Key
	}{
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Key{KeyUp, KeyDown, KeyRight, KeyLeft}},
		{"letters", "adws", []Key{KeyLeft, KeyRight, KeyUp, KeyDown}},
		{"controls", " pq\r", []Key{KeyFire, KeyPause, KeyQuit, KeyEnter}},
		{"ctrl-c quits", "\x03", []Key{KeyQuit}},
		{"lone escape", "\x1b", []Key{KeyEscape}},
		{"unknown csi", "\x1b[Z", []Key{KeyOther}},
		{"other byte", "x", []Key{KeyOther}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Parse([]byte(tt.in), nil))
		})
	}
}

func TestStreamDrainsAndCloses(t *testing.T) {
	s := StartStream(strings.NewReader("  q"))

	var keys []Key
	require.Eventually(t, func() bool {
		keys = s.Read(keys)
		return s.Closed()
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []Key{KeyFire, KeyFire, KeyQuit}, keys)
}
