package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/utils"
)

// NewClient connects to Redis using REDIS_ADDR/REDIS_PASSWORD/REDIS_DB and
// verifies the connection with a ping. Callers treat a nil client as
// "Redis not configured" and fall back to in-process stores.
func NewClient(log *logger.Logger) (*redis.Client, error) {
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		return nil, nil
	}
	password := utils.GetEnv("REDIS_PASSWORD", "", log)
	db := utils.GetEnvAsInt("REDIS_DB", 0, log)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info("Connected to redis", "addr", addr, "db", db)
	return client, nil
}
