package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// Implement economy.UsageStore for Redis.
func (r *RedisClient) DailyXP(ctx context.Context, userID string) (int, int, error) {
	today := time.Now().UTC().Format("2006-01-02")
	keyGeneral := fmt.Sprintf("xp:%s:%s:general", userID, today)
	keyTip := fmt.Sprintf("xp:%s:%s:tip", userID, today)

	pipe := r.Client.Pipeline()
	generalCmd := pipe.Get(ctx, keyGeneral)
	tipCmd := pipe.Get(ctx, keyTip)
	_, err := pipe.Exec(ctx)

	if err != nil && err != redis.Nil {
		return 0, 0, err
	}

	general, _ := generalCmd.Int()
	tip, _ := tipCmd.Int()

	return general, tip, nil
}

func (r *RedisClient) AddDailyXP(ctx context.Context, userID string, general, tip int) error {
	today := time.Now().UTC().Format("2006-01-02")
	keyGeneral := fmt.Sprintf("xp:%s:%s:general", userID, today)
	keyTip := fmt.Sprintf("xp:%s:%s:tip", userID, today)

	pipe := r.Client.Pipeline()
	if general != 0 {
		pipe.IncrBy(ctx, keyGeneral, int64(general))
		pipe.Expire(ctx, keyGeneral, 48*time.Hour)
	}
	if tip != 0 {
		pipe.IncrBy(ctx, keyTip, int64(tip))
		pipe.Expire(ctx, keyTip, 48*time.Hour)
	}

	_, err := pipe.Exec(ctx)
	return err
}
