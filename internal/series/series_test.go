package series

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeriesSizes(t *testing.T) {
	require.Len(t, E24.Members(), 24)
	require.Len(t, E48.Members(), 48)
	require.Len(t, E96.Members(), 96)
	require.Len(t, E192.Members(), 192)
}

func TestMatch_LoosestSeriesWins(t *testing.T) {
	cases := []struct {
		value float64
		name  string
		tol   float64
	}{
		{10000, "E24", 5},
		{4700, "E24", 5},
		{1.5, "E24", 5},
		{105, "E48", 2},
		{4990, "E96", 1},
		{10200, "E96", 1},
		{101, "E192", 0.5},
		{98800, "E192", 0.5},
	}
	for _, c := range cases {
		s, ok := Match(c.value)
		require.True(t, ok, "value %v", c.value)
		require.Equal(t, c.name, s.Name, "value %v", c.value)
		require.Equal(t, c.tol, s.TolerancePercent)
	}
}

func TestMatch_NonMember(t *testing.T) {
	_, ok := Match(1234)
	require.False(t, ok)
	_, ok = Match(0)
	require.False(t, ok)
	_, ok = Match(-10)
	require.False(t, ok)
}

func TestNearest(t *testing.T) {
	require.InDelta(t, 4700, E24.Nearest(4680), 1e-9)
	require.InDelta(t, 10000, E24.Nearest(9800), 1e-9)
	require.InDelta(t, 4990, E96.Nearest(5000), 1e-9)
	require.InDelta(t, 1000, E24.Nearest(990), 1e-9)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("e96")
	require.True(t, ok)
	require.Equal(t, "E96", s.Name)

	_, ok = Lookup("E12")
	require.False(t, ok)
}
