package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/scoring"
)

// maxListLimit caps ?limit on the leaderboard endpoint
const maxListLimit = 50

// maxBodyBytes bounds a submitted record
const maxBodyBytes = 4 << 10

type LeaderboardResponse struct {
	Records    []leaderboard.Record `json:"records"`
	Count      int                  `json:"count"`
	ServerTime time.Time            `json:"serverTime"`
}

// SubmitRequest is a record posted by a browser client
// Grade is derived from score and never trusted from the client
type SubmitRequest struct {
	Name           string   `json:"name"`
	ClassName      string   `json:"className"`
	Score          int      `json:"score"`
	ReactionTime   *float64 `json:"reactionTime"`
	FinalClearance *float64 `json:"finalClearance"`
}

func (s *Server) ListLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.board.Limit()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter: must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	records, err := s.board.Top(r.Context(), limit)
	if err != nil {
		s.logger.Error("leaderboard read failed", "error", err)
		respondError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}

	respondJSON(w, http.StatusOK, LeaderboardResponse{
		Records:    records,
		Count:      len(records),
		ServerTime: time.Now(),
	})
}

func (s *Server) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid record: "+err.Error())
		return
	}

	rec := leaderboard.Record{
		ID:             uuid.NewString(),
		Name:           req.Name,
		ClassName:      req.ClassName,
		Score:          req.Score,
		Grade:          scoring.GradeForScore(req.Score),
		ReactionTime:   req.ReactionTime,
		FinalClearance: req.FinalClearance,
		Timestamp:      time.Now().UnixMilli(),
	}

	top, err := s.board.Submit(r.Context(), rec)
	if err != nil {
		if errors.Is(err, leaderboard.ErrInvalidRecord) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("leaderboard submit failed", "error", err)
		respondError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}

	respondJSON(w, http.StatusCreated, LeaderboardResponse{
		Records:    top,
		Count:      len(top),
		ServerTime: time.Now(),
	})
}

type StatsResponse struct {
	Metrics    map[string]any `json:"metrics"`
	ServerTime time.Time      `json:"serverTime"`
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StatsResponse{
		Metrics:    s.metrics.Snapshot(),
		ServerTime: time.Now(),
	})
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
