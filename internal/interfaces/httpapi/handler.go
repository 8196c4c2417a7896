package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

type Handler struct {
	lineupService      *usecase.LineupService
	propagationService *usecase.PropagationService
	scoringService     *usecase.ScoringService
	leaderboardService *usecase.LeaderboardService
	feedSyncService    *usecase.FeedSyncService
	leagueRepo         league.Repository
	teamRepo           team.Repository
	matchRepo          match.Repository
	squadRepo          squad.Repository
	logger             *slog.Logger
	validator          *validator.Validate
}

func NewHandler(
	lineupService *usecase.LineupService,
	propagationService *usecase.PropagationService,
	scoringService *usecase.ScoringService,
	leaderboardService *usecase.LeaderboardService,
	feedSyncService *usecase.FeedSyncService,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	squadRepo squad.Repository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		lineupService:      lineupService,
		propagationService: propagationService,
		scoringService:     scoringService,
		leaderboardService: leaderboardService,
		feedSyncService:    feedSyncService,
		leagueRepo:         leagueRepo,
		teamRepo:           teamRepo,
		matchRepo:          matchRepo,
		squadRepo:          squadRepo,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(ctx, l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	item, exists, err := h.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: league %s", usecase.ErrNotFound, leagueID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) ListTeamsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamsByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teams, err := h.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatchesByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchesByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	matches, err := h.matchRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(ctx, m, now))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSquadByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquadByTeam")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teamID := r.PathValue("teamID")
	pool, exists, err := h.squadRepo.GetByTeam(ctx, leagueID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "league_id", leagueID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: squad for team %s", usecase.ErrNotFound, teamID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(ctx, pool))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type leagueDTO struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	SquadSize              int       `json:"squadSize"`
	TransferLimit          int       `json:"transferLimit"`
	CaptainChangeQuota     int       `json:"captainChangeQuota"`
	ViceCaptainChangeQuota int       `json:"viceCaptainChangeQuota"`
	CreatedAt              time.Time `json:"createdAt"`
}

func leagueToDTO(ctx context.Context, item league.League) leagueDTO {
	_, span := startSpan(ctx, "httpapi.leagueToDTO")
	defer span.End()

	return leagueDTO{
		ID:                     item.ID,
		Name:                   item.Name,
		SquadSize:              item.SquadSize,
		TransferLimit:          item.TransferLimit,
		CaptainChangeQuota:     item.CaptainChangeQuota,
		ViceCaptainChangeQuota: item.ViceCaptainChangeQuota,
		CreatedAt:              item.CreatedAt,
	}
}

type teamDTO struct {
	ID        string    `json:"id"`
	LeagueID  string    `json:"leagueId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func teamToDTO(ctx context.Context, item team.Team) teamDTO {
	_, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:        item.ID,
		LeagueID:  item.LeagueID,
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	}
}

type matchDTO struct {
	ID        string    `json:"id"`
	LeagueID  string    `json:"leagueId"`
	Seq       int       `json:"seq"`
	StartsAt  time.Time `json:"startsAt"`
	Completed bool      `json:"completed"`
	Locked    bool      `json:"locked"`
}

func matchToDTO(ctx context.Context, item match.Match, now time.Time) matchDTO {
	_, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:        item.ID,
		LeagueID:  item.LeagueID,
		Seq:       item.Seq,
		StartsAt:  item.StartsAt,
		Completed: item.Completed,
		Locked:    item.LockedAt(now),
	}
}

type squadPlayerDTO struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type squadDTO struct {
	LeagueID  string           `json:"leagueId"`
	TeamID    string           `json:"teamId"`
	Players   []squadPlayerDTO `json:"players"`
	CreatedAt time.Time        `json:"createdAt"`
}

func squadToDTO(ctx context.Context, pool squad.Pool) squadDTO {
	_, span := startSpan(ctx, "httpapi.squadToDTO")
	defer span.End()

	players := make([]squadPlayerDTO, 0, len(pool.Players))
	for _, member := range pool.Players {
		players = append(players, squadPlayerDTO{
			PlayerID: member.PlayerID,
			Name:     member.Name,
			Role:     string(member.Role),
		})
	}

	return squadDTO{
		LeagueID:  pool.LeagueID,
		TeamID:    pool.TeamID,
		Players:   players,
		CreatedAt: pool.CreatedAt,
	}
}
