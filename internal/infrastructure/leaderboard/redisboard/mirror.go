package redisboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

// Mirror pushes league standings into a Redis sorted set so other consumers
// can read ranks without touching the engine. The ZSET is rebuilt wholesale
// on every publish inside one pipeline.
type Mirror struct {
	client *redis.Client
}

type Options struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func New(ctx context.Context, opts Options) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Mirror{client: client}, nil
}

func (m *Mirror) Close() error {
	return m.client.Close()
}

func (m *Mirror) Publish(ctx context.Context, leagueID string, rows []usecase.LeaderboardRow) error {
	key := leaderboardKey(leagueID)

	members := make([]redis.Z, 0, len(rows))
	for _, row := range rows {
		members = append(members, redis.Z{
			Score:  float64(row.TotalPoints),
			Member: row.TeamID,
		})
	}

	pipe := m.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing leaderboard: %w", err)
	}
	return nil
}

// Rank reads a team's current standing back from the mirror. Ranks are
// 1-based; highest score first.
func (m *Mirror) Rank(ctx context.Context, leagueID, teamID string) (int64, bool, error) {
	rank, err := m.client.ZRevRank(ctx, leaderboardKey(leagueID), teamID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading team rank: %w", err)
	}
	return rank + 1, true, nil
}

func leaderboardKey(leagueID string) string {
	return fmt.Sprintf("leaderboard:%s:standings", leagueID)
}
