package component

import (
	"math"
	"strconv"
	"strings"
)

var prefixes = []struct {
	scale  float64
	letter string
}{
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, "R"},
}

// FormatValue renders v in RKM notation with three significant digits:
// 4700 → "4k7", 10000 → "10k", 0.47 → "0R47", 2.2e6 → "2M2".
func FormatValue(v float64) string {
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	for i, p := range prefixes {
		if v < p.scale && i < len(prefixes)-1 {
			continue
		}
		rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v/p.scale, 'g', 3, 64), 64)
		if rounded >= 1000 && i > 0 {
			p = prefixes[i-1]
			rounded, _ = strconv.ParseFloat(strconv.FormatFloat(v/p.scale, 'g', 3, 64), 64)
		}
		whole, frac, _ := strings.Cut(strconv.FormatFloat(rounded, 'f', -1, 64), ".")
		return whole + p.letter + frac
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}
