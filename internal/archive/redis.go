package archive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-match/internal/domain"
)

const (
	redisRecordPrefix = "match:result:"
	redisIndexKey     = "match:results:by_end"
)

// RedisStore keeps each record as JSON with a TTL plus a sorted index by end time.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore dials redisURL and checks it with PING.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL required for redis archive")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, ttl), nil
}

func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) Record(ctx context.Context, rec *domain.MatchRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode match record: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, recordKey(rec.MatchID), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store match record: %w", err)
	}
	if !ok {
		return ErrDuplicateMatch
	}
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(rec.EndedAt.UnixMilli()), Member: rec.MatchID})
	pipe.Expire(ctx, redisIndexKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index match record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	raw, err := s.rdb.Get(ctx, recordKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match record: %w", err)
	}
	return decodeRecord(raw)
}

// Recent walks the index newest first. Index entries whose record expired are
// skipped and pruned.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.rdb.ZRevRange(ctx, redisIndexKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read match index: %w", err)
	}
	out := make([]*domain.MatchRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// record expired; drop its index entry
			_ = s.rdb.ZRem(ctx, redisIndexKey, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordKey(id string) string { return redisRecordPrefix + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
