package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlayerID(t *testing.T) {
	require.Equal(t, "alice", playerID("alice"))
	require.Equal(t, "abcdefghijklmnop", playerID("abcdefghijklmnopqrstuvwxyz"))
	require.True(t, strings.HasPrefix(playerID(""), "guest-"))
	require.NotEqual(t, playerID(""), playerID(""))
}

func TestSizeTracker(t *testing.T) {
	s := newSizeTracker(80, 24)
	s.update(120, 40)
	w, h, err := s.getSize()
	require.NoError(t, err)
	require.Equal(t, 120, w)
	require.Equal(t, 40, h)
}
