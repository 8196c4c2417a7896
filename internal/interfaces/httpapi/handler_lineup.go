package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

type lineupUpsertRequest struct {
	PlayerIDs     []string `json:"playerIds" validate:"required,min=1,dive,required"`
	CaptainID     string   `json:"captainId" validate:"required"`
	ViceCaptainID string   `json:"viceCaptainId" validate:"required"`
}

func (h *Handler) GetLineupByMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLineupByMatch")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teamID := r.PathValue("teamID")
	matchID := r.PathValue("matchID")

	item, exists, err := h.lineupService.GetLineup(ctx, leagueID, teamID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get lineup failed", "league_id", leagueID, "team_id", teamID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(ctx, item))
}

func (h *Handler) SaveLineupByMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveLineupByMatch")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	teamID := strings.TrimSpace(r.PathValue("teamID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	var req lineupUpsertRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lineupService.Save(ctx, usecase.SaveLineupInput{
		LeagueID:      leagueID,
		TeamID:        teamID,
		MatchID:       matchID,
		PlayerIDs:     req.PlayerIDs,
		CaptainID:     req.CaptainID,
		ViceCaptainID: req.ViceCaptainID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save lineup failed", "league_id", leagueID, "team_id", teamID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(ctx, item))
}

func (h *Handler) UndoLineupSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoLineupSave")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teamID := r.PathValue("teamID")

	cp, err := h.lineupService.Undo(ctx, leagueID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "undo lineup save failed", "league_id", leagueID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, checkpointToDTO(ctx, cp))
}

func (h *Handler) GetTeamBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamBudget")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teamID := r.PathValue("teamID")

	budget, err := h.lineupService.Budget(ctx, leagueID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team budget failed", "league_id", leagueID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, budget)
}

func (h *Handler) ListTeamTransfers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamTransfers")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teamID := r.PathValue("teamID")

	entries, err := h.lineupService.Transfers(ctx, leagueID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list transfers failed", "league_id", leagueID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transferEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, transferEntryToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type lineupDTO struct {
	LeagueID      string    `json:"leagueId"`
	TeamID        string    `json:"teamId"`
	MatchID       string    `json:"matchId"`
	MatchSeq      int       `json:"matchSeq"`
	PlayerIDs     []string  `json:"playerIds"`
	CaptainID     string    `json:"captainId"`
	ViceCaptainID string    `json:"viceCaptainId"`
	Origin        string    `json:"origin"`
	CreatedAt     time.Time `json:"createdAt"`
}

func lineupToDTO(ctx context.Context, item lineup.Lineup) lineupDTO {
	_, span := startSpan(ctx, "httpapi.lineupToDTO")
	defer span.End()

	return lineupDTO{
		LeagueID:      item.LeagueID,
		TeamID:        item.TeamID,
		MatchID:       item.MatchID,
		MatchSeq:      item.MatchSeq,
		PlayerIDs:     item.PlayerIDs,
		CaptainID:     item.CaptainID,
		ViceCaptainID: item.ViceCaptainID,
		Origin:        string(item.Origin),
		CreatedAt:     item.CreatedAt,
	}
}

type checkpointDTO struct {
	LeagueID string     `json:"leagueId"`
	TeamID   string     `json:"teamId"`
	MatchID  string     `json:"matchId"`
	Restored *lineupDTO `json:"restored"`
	SavedAt  time.Time  `json:"savedAt"`
}

func checkpointToDTO(ctx context.Context, cp lineup.Checkpoint) checkpointDTO {
	ctx, span := startSpan(ctx, "httpapi.checkpointToDTO")
	defer span.End()

	out := checkpointDTO{
		LeagueID: cp.LeagueID,
		TeamID:   cp.TeamID,
		MatchID:  cp.MatchID,
		SavedAt:  cp.SavedAt,
	}
	if cp.Previous != nil {
		restored := lineupToDTO(ctx, *cp.Previous)
		out.Restored = &restored
	}

	return out
}

type transferEntryDTO struct {
	ID               string    `json:"id"`
	MatchID          string    `json:"matchId"`
	Direction        string    `json:"direction"`
	PlayerID         string    `json:"playerId"`
	PreviousPlayerID string    `json:"previousPlayerId,omitempty"`
	RecordedAt       time.Time `json:"recordedAt"`
}

func transferEntryToDTO(ctx context.Context, entry transfer.Entry) transferEntryDTO {
	_, span := startSpan(ctx, "httpapi.transferEntryToDTO")
	defer span.End()

	return transferEntryDTO{
		ID:               entry.ID,
		MatchID:          entry.MatchID,
		Direction:        string(entry.Direction),
		PlayerID:         entry.PlayerID,
		PreviousPlayerID: entry.PreviousPlayerID,
		RecordedAt:       entry.RecordedAt,
	}
}
