package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams", handler.ListTeamsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/matches", handler.ListMatchesByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams/{teamID}/squad", handler.GetSquadByTeam)
}

func registerLineupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams/{teamID}/matches/{matchID}/lineup", handler.GetLineupByMatch)
	mux.HandleFunc("PUT /v1/leagues/{leagueID}/teams/{teamID}/matches/{matchID}/lineup", handler.SaveLineupByMatch)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/teams/{teamID}/lineup/undo", handler.UndoLineupSave)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams/{teamID}/budget", handler.GetTeamBudget)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams/{teamID}/transfers", handler.ListTeamTransfers)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/matches/{matchID}/scores", handler.ListMatchScores)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams/{teamID}/matches/{matchID}/score", handler.GetTeamMatchScore)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeaderboard)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/propagate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPropagationJob)))
	mux.Handle("POST /v1/internal/jobs/score-match", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreMatchJob)))
	mux.Handle("POST /v1/internal/jobs/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeJob)))
	mux.Handle("POST /v1/internal/jobs/sync-fixtures", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncFixturesJob)))
	mux.Handle("POST /v1/internal/jobs/sync-performances", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncPerformancesJob)))
	mux.Handle("POST /v1/internal/jobs/refresh-leaderboard", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshLeaderboardJob)))
}
