package database

import (
	"context"
	"log"
	"time"

	"lms/config"

	"github.com/redis/go-redis/v9"
)

// Redis is the global cache client
var Redis *redis.Client

// ConnectRedis establishes the cache connection. The cache is best-effort:
// a failed ping is logged and the client kept, so a Redis outage degrades
// reads to the database instead of crashing the service.
func ConnectRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr:        config.AppConfig.RedisAddr,
		Password:    config.AppConfig.RedisPassword,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not reachable at %s: %v", config.AppConfig.RedisAddr, err)
		return
	}

	log.Println("Connected to Redis.")
}
