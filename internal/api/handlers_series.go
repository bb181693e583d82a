package api

import (
	"net/http"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/series"
)

type seriesInfo struct {
	Name             string  `json:"name"`
	TolerancePercent float64 `json:"tolerance_percent"`
	Members          []int   `json:"members"`
}

type nearestValue struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// handleSeries lists the standard series. With ?value= it also reports which
// series contains the value and the nearest member of each.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	var list []seriesInfo
	for _, sr := range series.All() {
		list = append(list, seriesInfo{
			Name:             sr.Name,
			TolerancePercent: sr.TolerancePercent,
			Members:          sr.Members(),
		})
	}
	resp := map[string]any{"series": list}

	if v := r.URL.Query().Get("value"); v != "" {
		parsed, err := s.parser.Parse(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		nearest := make(map[string]nearestValue)
		for _, sr := range series.All() {
			n := sr.Nearest(parsed.Value)
			nearest[sr.Name] = nearestValue{Value: n, Label: component.FormatValue(n)}
		}
		match := ""
		if sr, ok := series.Match(parsed.Value); ok {
			match = sr.Name
		}
		resp["value"] = parsed.Value
		resp["label"] = component.FormatValue(parsed.Value)
		resp["match"] = match
		resp["nearest"] = nearest
	}

	writeJSON(w, http.StatusOK, resp)
}
