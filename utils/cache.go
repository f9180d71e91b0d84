package utils

import (
	"context"
	"encoding/json"
	"time"

	"lms/config"
	"lms/database"
)

// Cache helpers are read-through and best-effort: every failure is logged and
// swallowed so a Redis outage never changes the outcome of a request.

// CacheGetJSON loads key into dest. Returns true on a hit.
func CacheGetJSON(ctx context.Context, key string, dest interface{}) bool {
	if database.Redis == nil {
		return false
	}
	raw, err := database.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		config.Log.Warnw("Failed to decode cached value", "key", key, "error", err)
		return false
	}
	return true
}

// CacheSetJSON stores value under key with the given TTL (default TTL when 0)
func CacheSetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if database.Redis == nil {
		return
	}
	if ttl == 0 {
		ttl = time.Duration(config.AppConfig.CacheTTL) * time.Second
	}
	raw, err := json.Marshal(value)
	if err != nil {
		config.Log.Warnw("Failed to encode value for cache", "key", key, "error", err)
		return
	}
	if err := database.Redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		config.Log.Warnw("Failed to write cache", "key", key, "error", err)
	}
}

// CacheDelete removes exact keys
func CacheDelete(ctx context.Context, keys ...string) {
	if database.Redis == nil || len(keys) == 0 {
		return
	}
	if err := database.Redis.Del(ctx, keys...).Err(); err != nil {
		config.Log.Warnw("Failed to delete cache keys", "keys", keys, "error", err)
	}
}

// CacheDeletePattern removes every key matching pattern via SCAN, so large
// keyspaces are walked without blocking Redis the way KEYS would.
func CacheDeletePattern(ctx context.Context, pattern string) {
	if database.Redis == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := database.Redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			config.Log.Warnw("Failed to scan cache keys", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := database.Redis.Del(ctx, keys...).Err(); err != nil {
				config.Log.Warnw("Failed to delete cache keys", "pattern", pattern, "error", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// InvalidateCourseCache drops every cached read under one course after a
// content write. Fire-and-forget from the caller's point of view.
func InvalidateCourseCache(courseID uint) {
	ctx := context.Background()
	CacheDeletePattern(ctx, CourseCachePrefix(courseID)+"*")
	CacheDeletePattern(ctx, "courses:list:*")
}

// CourseCachePrefix builds the cache namespace of one course
func CourseCachePrefix(courseID uint) string {
	return "course:" + UintToString(courseID) + ":"
}
