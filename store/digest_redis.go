package store

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultRedisDialTimeout = 5 * time.Second

// RedisDigestConfig configures the Redis-backed digest index.
type RedisDigestConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string // defaults to "digest:"
}

// RedisDigestIndex keeps the digest membership sets in Redis sorted sets,
// one per frequency, keyed "<prefix><freq>" and scored by the last
// settings-update timestamp. This is the implementation to use when more
// than one instance serves traffic.
type RedisDigestIndex struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDigestIndex connects to Redis and verifies the connection.
func NewRedisDigestIndex(ctx context.Context, config RedisDigestConfig) (*RedisDigestIndex, error) {
	if config.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "digest:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:        config.Addr,
		Password:    config.Password,
		DB:          config.DB,
		DialTimeout: defaultRedisDialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	return &RedisDigestIndex{client: client, keyPrefix: config.KeyPrefix}, nil
}

func (r *RedisDigestIndex) key(freq DigestFrequency) string {
	return r.keyPrefix + string(freq)
}

func (r *RedisDigestIndex) Update(ctx context.Context, userID int64, freq DigestFrequency, at time.Time) error {
	member := strconv.FormatInt(userID, 10)

	pipe := r.client.TxPipeline()
	for _, f := range DigestFrequencies {
		pipe.ZRem(ctx, r.key(f), member)
	}
	if freq.IsSubscribed() {
		pipe.ZAdd(ctx, r.key(freq), redis.Z{Score: float64(at.UnixMilli()), Member: member})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "update digest membership for user %d", userID)
	}
	return nil
}

func (r *RedisDigestIndex) ListMembers(ctx context.Context, freq DigestFrequency) ([]int64, error) {
	raw, err := r.client.ZRange(ctx, r.key(freq), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "list %s digest members", freq)
	}
	members := make([]int64, 0, len(raw))
	for _, value := range raw {
		userID, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed digest member %q", value)
		}
		members = append(members, userID)
	}
	return members, nil
}

func (r *RedisDigestIndex) Frequency(ctx context.Context, userID int64) (DigestFrequency, bool, error) {
	member := strconv.FormatInt(userID, 10)
	for _, freq := range DigestFrequencies {
		err := r.client.ZScore(ctx, r.key(freq), member).Err()
		if err == nil {
			return freq, true, nil
		}
		if !errors.Is(err, redis.Nil) {
			return DigestOff, false, errors.Wrapf(err, "look up digest membership for user %d", userID)
		}
	}
	return DigestOff, false, nil
}

func (r *RedisDigestIndex) Close() error {
	return r.client.Close()
}
