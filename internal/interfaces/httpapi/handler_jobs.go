package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

type internalJobRequest struct {
	LeagueID   string `json:"leagueId" validate:"required"`
	MatchID    string `json:"matchId"`
	MaxWorkers int    `json:"maxWorkers" validate:"omitempty,min=1,max=64"`
}

func (h *Handler) decodeInternalJobRequest(r *http.Request) (internalJobRequest, error) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.decodeInternalJobRequest")
	defer span.End()

	var req internalJobRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return internalJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	req.LeagueID = strings.TrimSpace(req.LeagueID)
	req.MatchID = strings.TrimSpace(req.MatchID)
	if err := h.validateRequest(ctx, req); err != nil {
		return internalJobRequest{}, err
	}

	return req, nil
}

// RunPropagationJob carries forward locked-match lineups. With a matchId it
// runs for that match only; without one it sweeps every locked match in
// fixture order.
func (h *Handler) RunPropagationJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPropagationJob")
	defer span.End()

	req, err := h.decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var report usecase.PropagationReport
	if req.MatchID != "" {
		report, err = h.propagationService.RunForMatch(ctx, req.LeagueID, req.MatchID)
	} else {
		report, err = h.propagationService.RunForLeague(ctx, req.LeagueID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "propagation job failed", "league_id", req.LeagueID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunScoreMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreMatchJob")
	defer span.End()

	req, err := h.decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.MatchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: matchId is required", usecase.ErrInvalidInput))
		return
	}

	records, err := h.scoringService.ScoreMatch(ctx, req.LeagueID, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "score match job failed", "league_id", req.LeagueID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.leaderboardService.Invalidate(ctx, req.LeagueID)

	items := make([]scoreRecordDTO, 0, len(records))
	for _, record := range records {
		items = append(items, scoreRecordToDTO(ctx, record))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	req, err := h.decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.Recompute(ctx, usecase.RecomputeInput{
		LeagueID:   req.LeagueID,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recompute job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.leaderboardService.Invalidate(ctx, req.LeagueID)

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncFixturesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncFixturesJob")
	defer span.End()

	req, err := h.decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	count, err := h.feedSyncService.SyncFixtures(ctx, req.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync fixtures job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"fixturesSynced": count})
}

func (h *Handler) RunSyncPerformancesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncPerformancesJob")
	defer span.End()

	req, err := h.decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.MatchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: matchId is required", usecase.ErrInvalidInput))
		return
	}

	count, err := h.feedSyncService.SyncMatchPerformances(ctx, req.LeagueID, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync performances job failed", "league_id", req.LeagueID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"performancesSynced": count})
}

func (h *Handler) RunRefreshLeaderboardJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshLeaderboardJob")
	defer span.End()

	req, err := h.decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.leaderboardService.Refresh(ctx, req.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh leaderboard job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, board)
}
