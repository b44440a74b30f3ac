package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rank key layout: lower is better
// (100 - score) in the millions, reaction time in whole ms below, 999999 when missing
// Equal ranks fall back to the member, which starts with the zero-padded timestamp
const (
	rankScoreStep   = 1_000_000
	rankNoReaction  = rankScoreStep - 1
	redisRecordsKey = "records"
	redisRankKey    = "rank"
)

// RedisStore keeps records in a hash and their ordering in a sorted set
type RedisStore struct {
	client *redis.Client
	prefix string
	cap    int
	logger *slog.Logger
}

// DialRedis connects and pings within five seconds
func DialRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps client; keys are namespaced by prefix
func NewRedisStore(client *redis.Client, prefix string, capacity int, logger *slog.Logger) *RedisStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		cap:    capacity,
		logger: logger.With("component", "redis_leaderboard"),
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func rank(r Record) float64 {
	rt := float64(rankNoReaction)
	if r.ReactionTime != nil {
		rt = math.Min(math.Round(*r.ReactionTime*1000), rankNoReaction-1)
	}
	return float64(100-r.Score)*rankScoreStep + rt
}

func member(r Record) string {
	return fmt.Sprintf("%013d:%s", r.Timestamp, r.ID)
}

func (s *RedisStore) Insert(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	m := member(r)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(redisRecordsKey), m, data)
		pipe.ZAdd(ctx, s.key(redisRankKey), redis.Z{Score: rank(r), Member: m})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis insert: %w", err)
	}

	return s.trim(ctx)
}

// trim drops everything ranked below the history cap
func (s *RedisStore) trim(ctx context.Context) error {
	overflow, err := s.client.ZRange(ctx, s.key(redisRankKey), int64(s.cap), -1).Result()
	if err != nil {
		return fmt.Errorf("redis trim range: %w", err)
	}
	if len(overflow) == 0 {
		return nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.key(redisRecordsKey), overflow...)
		members := make([]any, len(overflow))
		for i, m := range overflow {
			members[i] = m
		}
		pipe.ZRem(ctx, s.key(redisRankKey), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis trim: %w", err)
	}
	s.logger.Debug("leaderboard trimmed", "removed", len(overflow))
	return nil
}

func (s *RedisStore) Top(ctx context.Context, limit int) ([]Record, error) {
	limit = clampLimit(limit, s.cap)

	members, err := s.client.ZRange(ctx, s.key(redisRankKey), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis rank: %w", err)
	}
	if len(members) == 0 {
		return []Record{}, nil
	}

	values, err := s.client.HMGet(ctx, s.key(redisRecordsKey), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			s.logger.Warn("rank entry without record", "member", members[i])
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			s.logger.Warn("corrupt leaderboard record", "member", members[i], "error", err)
			continue
		}
		records = append(records, r)
	}

	// Restore sub-millisecond reaction ordering
	Sort(records)
	return records, nil
}
