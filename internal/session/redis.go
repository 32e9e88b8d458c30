package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "revomotors:session:"

// RedisStore keeps sessions in redis so they survive restarts and are
// shared between replicas.
type RedisStore struct {
	rdb    *redis.Client
	signer *signer
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// NewRedisStore wraps an open redis client.
func NewRedisStore(rdb *redis.Client, secret string) *RedisStore {
	return &RedisStore{rdb: rdb, signer: newSigner(secret)}
}

func (s *RedisStore) Get(ctx context.Context, cookie string) (*Session, error) {
	sid, err := s.signer.verify(cookie)
	if err != nil {
		return nil, err
	}
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, expiresAt time.Time) (string, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+sess.ID, raw, time.Until(expiresAt)).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return s.signer.sign(sess.ID, expiresAt)
}

func (s *RedisStore) Delete(ctx context.Context, sess *Session) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+sess.ID).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
