// Package series holds the standard preferred-number series (E24, E48, E96,
// E192) and the tolerance each one implies.
package series

import (
	"math"
	"slices"
	"strings"
)

// Series is one preferred-number series. Members are stored as three
// significant digits (100..988) and repeat every decade.
type Series struct {
	Name             string  `json:"name"`
	TolerancePercent float64 `json:"tolerance_percent"`
	members          []int
}

var e192 = []int{
	100, 101, 102, 104, 105, 106, 107, 109, 110, 111, 113, 114, 115, 117, 118, 120,
	121, 123, 124, 126, 127, 129, 130, 132, 133, 135, 137, 138, 140, 142, 143, 145,
	147, 149, 150, 152, 154, 156, 158, 160, 162, 164, 165, 167, 169, 172, 174, 176,
	178, 180, 182, 184, 187, 189, 191, 193, 196, 198, 200, 203, 205, 208, 210, 213,
	215, 218, 221, 223, 226, 229, 232, 234, 237, 240, 243, 246, 249, 252, 255, 258,
	261, 264, 267, 271, 274, 277, 280, 284, 287, 291, 294, 298, 301, 305, 309, 312,
	316, 320, 324, 328, 332, 336, 340, 344, 348, 352, 357, 361, 365, 370, 374, 379,
	383, 388, 392, 397, 402, 407, 412, 417, 422, 427, 432, 437, 442, 448, 453, 459,
	464, 470, 475, 481, 487, 493, 499, 505, 511, 517, 523, 530, 536, 542, 549, 556,
	562, 569, 576, 583, 590, 597, 604, 612, 619, 626, 634, 642, 649, 657, 665, 673,
	681, 690, 698, 706, 715, 723, 732, 741, 750, 759, 768, 777, 787, 796, 806, 816,
	825, 835, 845, 856, 866, 876, 887, 898, 909, 920, 931, 942, 953, 965, 976, 988,
}

var (
	E24 = Series{Name: "E24", TolerancePercent: 5, members: []int{
		100, 110, 120, 130, 150, 160, 180, 200, 220, 240, 270, 300,
		330, 360, 390, 430, 470, 510, 560, 620, 680, 750, 820, 910,
	}}
	E48  = Series{Name: "E48", TolerancePercent: 2, members: every(e192, 4)}
	E96  = Series{Name: "E96", TolerancePercent: 1, members: every(e192, 2)}
	E192 = Series{Name: "E192", TolerancePercent: 0.5, members: e192}
)

// E48 and E96 are the 4th and 2nd members of E192.
func every(src []int, step int) []int {
	out := make([]int, 0, len(src)/step)
	for i := 0; i < len(src); i += step {
		out = append(out, src[i])
	}
	return out
}

// All returns the series from loosest to tightest tolerance. Match walks
// them in this order.
func All() []Series {
	return []Series{E24, E48, E96, E192}
}

// Lookup finds a series by name, case-insensitively.
func Lookup(name string) (Series, bool) {
	for _, s := range All() {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Series{}, false
}

// Match returns the first series (loosest first) that contains v.
func Match(v float64) (Series, bool) {
	for _, s := range All() {
		if s.Contains(v) {
			return s, true
		}
	}
	return Series{}, false
}

// Members returns the three-digit members of one decade.
func (s Series) Members() []int {
	return slices.Clone(s.members)
}

// Contains reports whether v is a member of the series in any decade.
func (s Series) Contains(v float64) bool {
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return false
	}
	m, _ := mantissa(v)
	r := math.Round(m)
	if math.Abs(m-r) > 1e-6*m {
		return false
	}
	_, found := slices.BinarySearch(s.members, int(r))
	return found
}

// Nearest returns the series member closest to v on a logarithmic scale.
func (s Series) Nearest(v float64) float64 {
	if v <= 0 || len(s.members) == 0 {
		return v
	}
	m, exp := mantissa(v)
	scale := math.Pow(10, float64(exp))
	best := float64(s.members[0])
	bestDist := math.Inf(1)
	for _, c := range append(slices.Clone(s.members), 1000) {
		d := math.Abs(math.Log(m) - math.Log(float64(c)))
		if d < bestDist {
			best, bestDist = float64(c), d
		}
	}
	return best * scale
}

// mantissa scales v into [100, 1000) and returns the scaled value and the
// power of ten that undoes it.
func mantissa(v float64) (float64, int) {
	exp := int(math.Floor(math.Log10(v))) - 2
	m := v / math.Pow(10, float64(exp))
	switch {
	case m >= 999.9999:
		if math.Round(m) >= 1000 {
			m /= 10
			exp++
		}
	case m < 100-1e-6:
		m *= 10
		exp--
	}
	return m, exp
}
