package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
)

const keyPrefix = "scout:result:"

// Conn opens and pings a redis client.
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Redis is the shared backend for multi-replica deployments. Values are
// JSON with the configured TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.New(log.Writer(), "[CACHE] ", log.LstdFlags)
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) (*models.ResourceResult, bool) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Printf("redis get: %v", err)
		}
		return nil, false
	}
	var res models.ResourceResult
	if err := json.Unmarshal(raw, &res); err != nil {
		r.logger.Printf("redis entry decode: %v", err)
		return nil, false
	}
	return &res, true
}

func (r *Redis) Set(ctx context.Context, key string, res *models.ResourceResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, raw, r.ttl).Err(); err != nil {
		r.logger.Printf("redis set: %v", err)
	}
}
