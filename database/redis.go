package database

import (
	"fmt"
	"os"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

type RedisClient struct {
	Pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewRedisPool(logger *zap.SugaredLogger) (*RedisClient, error) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	password := os.Getenv("REDIS_PASSWORD")

	pool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			opts := []redis.DialOption{}
			if password != "" {
				opts = append(opts, redis.DialPassword(password))
			}
			return redis.Dial("tcp", fmt.Sprintf("%s:%s", host, port), opts...)
		},
	}

	// Fail fast if redis is unreachable.
	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Connected to redis")
	return &RedisClient{Pool: pool, logger: logger}, nil
}

func (c *RedisClient) Close() {
	if c.Pool != nil {
		if err := c.Pool.Close(); err != nil {
			c.logger.Errorf("Error closing redis pool: %v", err)
		} else {
			c.logger.Info("Redis pool closed")
		}
	}
}
