package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/crickbase/fantasy-cricket/external/cricketdata"
	"github.com/crickbase/fantasy-cricket/internal/config"
	"github.com/crickbase/fantasy-cricket/internal/domain/captaincy"
	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/performance"
	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
	"github.com/crickbase/fantasy-cricket/internal/infrastructure/leaderboard/redisboard"
	cacherepo "github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/cache"
	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/crickbase/fantasy-cricket/internal/interfaces/httpapi"
	basecache "github.com/crickbase/fantasy-cricket/internal/platform/cache"
	idgen "github.com/crickbase/fantasy-cricket/internal/platform/id"
	"github.com/crickbase/fantasy-cricket/internal/platform/logging"
	"github.com/crickbase/fantasy-cricket/internal/platform/resilience"
	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

type storage struct {
	leagueRepo   league.Repository
	teamRepo     team.Repository
	matchRepo    match.Repository
	squadRepo    squad.Repository
	lineups      lineup.Store
	transferLog  transfer.Repository
	captaincyLog captaincy.Repository
	performances performance.Repository
	scores       scoring.Repository
}

// NewHTTPServer wires storage, services, and the HTTP router. With DB_URL
// set it runs against Postgres; otherwise it falls back to seeded in-memory
// repositories for local development.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		directoryCache := basecache.NewStore(cfg.CacheTTL)
		store.leagueRepo = cacherepo.NewLeagueRepository(store.leagueRepo, directoryCache)
		store.teamRepo = cacherepo.NewTeamRepository(store.teamRepo, directoryCache)
		store.matchRepo = cacherepo.NewMatchRepository(store.matchRepo, directoryCache)
		store.squadRepo = cacherepo.NewSquadRepository(store.squadRepo, directoryCache)
	}

	lineupSvc := usecase.NewLineupService(
		store.leagueRepo,
		store.teamRepo,
		store.matchRepo,
		store.squadRepo,
		store.lineups,
		store.transferLog,
		store.captaincyLog,
		idgen.NewRandomGenerator(),
	)
	lineupSvc.SetUndoGraceWindow(cfg.UndoGraceWindow)

	propagationSvc := usecase.NewPropagationService(
		store.leagueRepo,
		store.teamRepo,
		store.matchRepo,
		store.lineups,
	)

	scoringSvc := usecase.NewScoringService(
		store.leagueRepo,
		store.matchRepo,
		store.lineups,
		store.performances,
		store.scores,
	)
	scoringSvc.SetDefaultRecomputeWorkers(cfg.ScoringMaxWorkers)

	var mirror usecase.LeaderboardMirror
	if cfg.RedisEnabled {
		redisMirror, err := redisboard.New(ctx, redisboard.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
			DialTimeout:  cfg.RedisDialTimeout,
			ReadTimeout:  cfg.RedisReadTimeout,
			WriteTimeout: cfg.RedisWriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect leaderboard mirror: %w", err)
		}
		mirror = redisMirror
	}

	var leaderboardCache *basecache.Store
	if cfg.CacheEnabled {
		leaderboardCache = basecache.NewStore(cfg.CacheTTL)
	}
	leaderboardSvc := usecase.NewLeaderboardService(
		store.leagueRepo,
		store.teamRepo,
		store.scores,
		leaderboardCache,
		mirror,
	)

	var feed usecase.MatchFeed
	if cfg.FeedEnabled {
		feed = cricketdata.NewClient(cricketdata.ClientConfig{
			HTTPClient: &http.Client{Timeout: cfg.FeedTimeout},
			BaseURL:    cfg.FeedBaseURL,
			Token:      cfg.FeedToken,
			Timeout:    cfg.FeedTimeout,
			MaxRetries: cfg.FeedMaxRetries,
			Logger:     logging.Default(),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FeedCircuitEnabled,
				FailureThreshold: cfg.FeedCircuitFailureCount,
				OpenTimeout:      cfg.FeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
			},
		})
	}
	feedSvc := usecase.NewFeedSyncService(feed, store.matchRepo, store.performances)

	handler := httpapi.NewHandler(
		lineupSvc,
		propagationSvc,
		scoringSvc,
		leaderboardSvc,
		feedSvc,
		store.leagueRepo,
		store.teamRepo,
		store.matchRepo,
		store.squadRepo,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("DB_URL not set, using seeded in-memory storage")
		lineupStore := memory.NewLineupStore()
		return storage{
			leagueRepo:   memory.NewLeagueRepository(memory.SeedLeagues()),
			teamRepo:     memory.NewTeamRepository(memory.SeedTeams()),
			matchRepo:    memory.NewMatchRepository(memory.SeedMatches()),
			squadRepo:    memory.NewSquadRepository(memory.SeedSquads()),
			lineups:      lineupStore,
			transferLog:  lineupStore.TransferLog(),
			captaincyLog: lineupStore.CaptaincyLog(),
			performances: memory.NewPerformanceRepository(),
			scores:       memory.NewScoringRepository(),
		}, nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return storage{}, err
	}
	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return storage{}, fmt.Errorf("bootstrap seed: %w", err)
	}

	lineupStore := postgres.NewLineupStore(db)
	return storage{
		leagueRepo:   postgres.NewLeagueRepository(db),
		teamRepo:     postgres.NewTeamRepository(db),
		matchRepo:    postgres.NewMatchRepository(db),
		squadRepo:    postgres.NewSquadRepository(db),
		lineups:      lineupStore,
		transferLog:  lineupStore.TransferLog(),
		captaincyLog: lineupStore.CaptaincyLog(),
		performances: postgres.NewPerformanceRepository(db),
		scores:       postgres.NewScoringRepository(db),
	}, nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
