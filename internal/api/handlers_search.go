package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/rescalc/internal/pipeline"
	"github.com/dgallion1/rescalc/internal/search"
)

const maxSearchBody = 1 << 20

type searchRequest struct {
	search.Query
	Preset string `json:"preset,omitempty"`
}

type searchResponse struct {
	Target     float64            `json:"target"`
	Candidates []search.Candidate `json:"candidates"`
	Stats      search.Stats       `json:"stats"`
	Warnings   []string           `json:"warnings"`
	Cached     bool               `json:"cached"`
	Status     pipeline.JobStatus `json:"status,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
}

func newSearchResponse(p search.Prepared, r search.Result) searchResponse {
	resp := searchResponse{
		Target:     p.Request.Target,
		Candidates: r.Candidates,
		Stats:      r.Stats,
		Warnings:   p.Warnings,
	}
	if resp.Candidates == nil {
		resp.Candidates = []search.Candidate{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}

// prepare resolves the preset and parses the query, writing the error
// response itself when it fails. Request limits can lower the configured or
// preset limits but never raise them.
func (s *Server) prepare(w http.ResponseWriter, req searchRequest) (search.Prepared, bool) {
	base, err := s.presets.Resolve(req.Preset, s.cfg.Limits)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return search.Prepared{}, false
	}
	req.Limits = req.Limits.Clamp(search.DefaultLimits().Merge(base))
	prepared, err := search.Prepare(s.parser, req.Query, base)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, search.ErrNoActiveComponents) {
			code = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), code)
		return search.Prepared{}, false
	}
	return prepared, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, maxSearchBody, &req) {
		return
	}
	prepared, ok := s.prepare(w, req)
	if !ok {
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	cache := s.sessions.Cache(sessionID)
	comps := prepared.Request.Components

	if cached, ok := cache.Get(prepared.Signature, comps); ok {
		resp := newSearchResponse(prepared, search.View(cached, comps, prepared.Order))
		resp.Cached = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if s.orchestrator == nil || len(comps) < s.cfg.SyncThreshold {
		start := time.Now()
		res, err := search.Run(prepared.Request, prepared.Order, nil)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if s.stats != nil {
			s.stats.Record(time.Since(start))
		}
		cache.Put(prepared.Signature, res, comps)
		writeJSON(w, http.StatusOK, newSearchResponse(prepared, search.View(res, comps, prepared.Order)))
		return
	}

	job := pipeline.NewJob(prepared, s.cfg.ChunkCount, sessionID)
	signature := prepared.Signature
	job.OnComplete(func(res search.Result) {
		cache.Put(signature, res, comps)
	})
	if err := s.orchestrator.Submit(job); err != nil {
		s.log.Warn("search rejected", "job_id", job.ID, "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"chunks":     s.cfg.ChunkCount,
		"warnings":   newSearchResponse(prepared, search.Result{}).Warnings,
		"poll_url":   fmt.Sprintf("/api/search/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/search/%s/result", job.ID),
	})
}

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	if s.orchestrator == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	return job
}

func (s *Server) handleSearchStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleSearchResult serves a finished job. An optional ?sort= re-ranks the
// stored result without searching again.
func (s *Server) handleSearchResult(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	if !job.Done() {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "search still running",
			"status":   snap.Status,
			"progress": snap.Progress,
		})
		return
	}

	res, ok := job.Result()
	if !ok || snap.Status == pipeline.StatusFailed {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "search failed",
			"status": snap.Status,
			"errors": snap.Progress.Errors,
		})
		return
	}

	prepared := job.Prepared()
	order := prepared.Order
	if v := r.URL.Query().Get("sort"); v != "" {
		o, err := search.ParseSortOrder(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		order = o
	}

	resp := newSearchResponse(prepared, search.View(res, prepared.Request.Components, order))
	resp.Status = snap.Status
	resp.Errors = snap.Progress.Errors
	writeJSON(w, http.StatusOK, resp)
}
