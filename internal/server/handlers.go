package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"oncostrike/internal/intercept"
	"oncostrike/internal/targetlock"
)

// maxRequestBytes caps the intercept request body.
const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status                 string `json:"status"`
	RulesetVersion         string `json:"ruleset_version"`
	MissionStepsConfigured int    `json:"mission_steps_configured"`
	GeneSets               int    `json:"gene_sets"`
}

type reloadResponse struct {
	RulesetVersion string `json:"ruleset_version"`
}

func (s *Server) handleIntercept(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	var req intercept.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	if req.MissionStep == "" {
		writeError(w, http.StatusBadRequest, "mission_step is required")
		return
	}

	res, err := s.pipeline.Intercept(ctx, req)
	if err != nil {
		s.writeInterceptError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeInterceptError maps pipeline failures to status codes: an unknown
// mission is the caller's mistake, an all-zero signal sweep is a valid
// request with no identifiable target.
func (s *Server) writeInterceptError(w http.ResponseWriter, r *http.Request, err error) {
	var unmapped *targetlock.UnmappedMissionError
	var noCand *targetlock.NoCandidatesError
	switch {
	case errors.As(err, &unmapped):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &noCand):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.log.Error("intercept failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rs := s.rules.Snapshot()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:                 "ok",
		RulesetVersion:         rs.Version,
		MissionStepsConfigured: len(rs.MissionToGeneSets),
		GeneSets:               len(rs.GeneSets),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.rules.Reload(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		RulesetVersion: s.rules.Snapshot().Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
