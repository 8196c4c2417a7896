package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
)

func (h *Handler) ListMatchScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchScores")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	matchID := r.PathValue("matchID")

	records, err := h.scoringService.MatchScores(ctx, leagueID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match scores failed", "league_id", leagueID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scoreRecordDTO, 0, len(records))
	for _, record := range records {
		items = append(items, scoreRecordToDTO(ctx, record))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeamMatchScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamMatchScore")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teamID := r.PathValue("teamID")
	matchID := r.PathValue("matchID")

	record, err := h.scoringService.TeamScoreBreakdown(ctx, leagueID, teamID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team match score failed", "league_id", leagueID, "team_id", teamID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreRecordToDTO(ctx, record))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	board, err := h.leaderboardService.Get(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, board)
}

type scoreRecordDTO struct {
	LeagueID          string    `json:"leagueId"`
	TeamID            string    `json:"teamId"`
	MatchID           string    `json:"matchId"`
	TotalPoints       int       `json:"totalPoints"`
	CaptainPoints     int       `json:"captainPoints"`
	ViceCaptainPoints int       `json:"viceCaptainPoints"`
	RegularPoints     int       `json:"regularPoints"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func scoreRecordToDTO(ctx context.Context, record scoring.Record) scoreRecordDTO {
	_, span := startSpan(ctx, "httpapi.scoreRecordToDTO")
	defer span.End()

	return scoreRecordDTO{
		LeagueID:          record.LeagueID,
		TeamID:            record.TeamID,
		MatchID:           record.MatchID,
		TotalPoints:       record.TotalPoints,
		CaptainPoints:     record.CaptainPoints,
		ViceCaptainPoints: record.ViceCaptainPoints,
		RegularPoints:     record.RegularPoints,
		UpdatedAt:         record.UpdatedAt,
	}
}
