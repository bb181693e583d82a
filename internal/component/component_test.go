package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)
	return p
}

func TestParse_Notations(t *testing.T) {
	p := newTestParser(t)
	cases := []struct {
		in   string
		want float64
	}{
		{"4k7", 4700},
		{"4.7k", 4700},
		{"4700", 4700},
		{"10R", 10},
		{"1R5", 1.5},
		{"R47", 0.47},
		{"2M2", 2.2e6},
		{"1M", 1e6},
		{"1e3", 1000},
		{"470 ohm", 470},
		{"10kΩ", 10000},
		{" 22k ", 22000},
		{"1G", 1e9},
	}
	for _, c := range cases {
		got, err := p.Parse(c.in)
		require.NoError(t, err, c.in)
		require.InDelta(t, c.want, got.Value, c.want*1e-12, c.in)
	}
}

func TestParse_ToleranceAndSeries(t *testing.T) {
	p := newTestParser(t)

	got, err := p.Parse("4k99 1% E96")
	require.NoError(t, err)
	require.InDelta(t, 4990, got.Value, 1e-9)
	require.NotNil(t, got.TolerancePercent)
	require.Equal(t, 1.0, *got.TolerancePercent)
	require.Equal(t, "E96", got.SeriesName)
	require.Empty(t, got.Warnings)

	got, err = p.Parse("10k ±0.5%")
	require.NoError(t, err)
	require.Equal(t, 0.5, *got.TolerancePercent)
}

func TestParse_AllenBradleyCodes(t *testing.T) {
	p := newTestParser(t)

	got, err := p.Parse("EB1041")
	require.NoError(t, err)
	require.InDelta(t, 100000, got.Value, 1e-9)
	require.Equal(t, 10.0, *got.TolerancePercent)

	got, err = p.Parse("CB1025")
	require.NoError(t, err)
	require.InDelta(t, 1000, got.Value, 1e-9)
	require.Equal(t, 5.0, *got.TolerancePercent)

	got, err = p.Parse("EB4739")
	require.NoError(t, err)
	require.InDelta(t, 47000, got.Value, 1e-9)
	require.Nil(t, got.TolerancePercent)
	require.Len(t, got.Warnings, 1)
}

func TestParse_Warnings(t *testing.T) {
	p := newTestParser(t)

	got, err := p.Parse("4k8 E24")
	require.NoError(t, err)
	require.Len(t, got.Warnings, 1)

	got, err = p.Parse("5m")
	require.NoError(t, err)
	require.InDelta(t, 0.005, got.Value, 1e-12)
	require.Len(t, got.Warnings, 1)
}

func TestParse_Errors(t *testing.T) {
	p := newTestParser(t)
	for _, in := range []string{"", "abc", "0", "-5", "10 7", "4.7k3", "10k 150%"} {
		_, err := p.Parse(in)
		require.Error(t, err, in)
		var inputErr *InputError
		require.True(t, errors.As(err, &inputErr), in)
	}
}

func TestFormatValue(t *testing.T) {
	cases := map[float64]string{
		4700:     "4k7",
		10000:    "10k",
		470:      "470R",
		0.47:     "0R47",
		1.5:      "1R5",
		2.2e6:    "2M2",
		4990:     "4k99",
		3329.3:   "3k33",
		999950:   "1M",
		1e9:      "1G",
		5000:     "5k",
		20000:    "20k",
		100:      "100R",
		12345678: "12M3",
	}
	for v, want := range cases {
		require.Equal(t, want, FormatValue(v), "value %v", v)
	}
}

func TestTolerance_Resolution(t *testing.T) {
	explicit := 2.0
	require.Equal(t, 2.0, Component{Value: 10000, TolerancePercent: &explicit}.Tolerance())
	require.Equal(t, 1.0, Component{Value: 10000, SeriesName: "E96"}.Tolerance())
	require.Equal(t, 5.0, Component{Value: 10000}.Tolerance())
	require.Equal(t, 1.0, Component{Value: 4990}.Tolerance())
	require.Equal(t, 0.0, Component{Value: 1234}.Tolerance())
}

func TestBuild_DropsBadItems(t *testing.T) {
	p := newTestParser(t)
	inactive := false
	specs := []Spec{
		{Value: "10k"},
		{Value: "bogus"},
		{Value: "4k7", Active: &inactive},
		{Value: "0"},
		{Value: "22k", Series: "E96"},
	}
	cs, warnings := Build(p, specs, Options{})
	require.Len(t, cs, 3)
	require.Len(t, warnings, 2)
	require.Equal(t, []int{0, 1, 2}, []int{cs[0].ID, cs[1].ID, cs[2].ID})
	require.False(t, cs[1].Active)
	require.Equal(t, "E96", cs[2].SeriesName)
	require.Equal(t, 2, ActiveCount(cs))
}

func TestBuild_Snap(t *testing.T) {
	p := newTestParser(t)
	cs, warnings := Build(p, []Spec{{Value: "4k68"}, {Value: "10k"}}, Options{SnapSeries: "E24"})
	require.Len(t, cs, 2)
	require.InDelta(t, 4700, cs[0].Value, 1e-9)
	require.InDelta(t, 10000, cs[1].Value, 1e-9)
	require.Len(t, warnings, 1)
}
