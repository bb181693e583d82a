package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/search"
)

type dividerRequest struct {
	Values         []component.Spec `json:"values"`
	Ratio          float64          `json:"ratio,omitempty"`
	Supply         float64          `json:"supply,omitempty"`
	Output         float64          `json:"output,omitempty"`
	SnapSeries     string           `json:"snap_series,omitempty"`
	Composite      bool             `json:"composite,omitempty"`
	AllowOvershoot bool             `json:"allow_overshoot,omitempty"`
	MaxResults     int              `json:"max_results,omitempty"`
	Preset         string           `json:"preset,omitempty"`
	Limits         search.Limits    `json:"limits"`
}

// ratio is the explicit ratio, or output/supply when only voltages are given.
func (d dividerRequest) ratio() float64 {
	if d.Ratio == 0 && d.Supply > 0 && d.Output > 0 {
		return d.Output / d.Supply
	}
	return d.Ratio
}

func (s *Server) handleDivider(w http.ResponseWriter, r *http.Request) {
	var req dividerRequest
	if !decodeJSON(w, r, maxSearchBody, &req) {
		return
	}

	base, err := s.presets.Resolve(req.Preset, s.cfg.Limits)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	comps, warnings := component.Build(s.parser, req.Values, component.Options{SnapSeries: req.SnapSeries})
	if component.ActiveCount(comps) == 0 {
		jsonError(w, search.ErrNoActiveComponents.Error(), http.StatusUnprocessableEntity)
		return
	}

	pool := search.PairPool(comps, base.Merge(req.Limits.Clamp(search.DefaultLimits().Merge(base))), req.Composite)
	pairs, err := search.FindPairs(pool, pool, search.PairOptions{
		Ratio:          req.ratio(),
		Supply:         req.Supply,
		AllowOvershoot: req.AllowOvershoot,
		MaxResults:     req.MaxResults,
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, search.ErrInvalidRatio) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	if pairs == nil {
		pairs = []search.Pair{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ratio":     req.ratio(),
		"supply":    req.Supply,
		"pool_size": len(pool),
		"pairs":     pairs,
		"warnings":  warnings,
	})
}
