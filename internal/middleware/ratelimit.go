package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// fixedWindow counts requests per client in Redis keys that expire with the window
type fixedWindow struct {
	client *redis.Client
	config RateLimitConfig
}

// hit records one request and returns the count in the current window and the time
// left until it resets
func (fw fixedWindow) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := fw.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count request: %w", err)
	}

	// A key without expiry starts a new window
	remaining := ttl.Val()
	if remaining <= 0 {
		if err := fw.client.Expire(ctx, key, fw.config.Window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to start rate limit window: %w", err)
		}
		remaining = fw.config.Window
	}
	return incr.Val(), remaining, nil
}

// clientKey identifies the caller: connected wallets by lowercased address, anonymous
// callers by remote address
func clientKey(r *http.Request) string {
	if address, ok := GetWalletAddress(r.Context()); ok {
		return strings.ToLower(address)
	}
	return r.RemoteAddr
}

// RateLimitMiddleware implements fixed-window rate limiting using Redis. Redis failures let
// the request through.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	limiter := fixedWindow{client: redisClient, config: config}
	limit := strconv.Itoa(config.RequestsPerWindow)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientKey(r)
			key := config.KeyPrefix + ":" + clientID

			count, resetIn, err := limiter.hit(r.Context(), key)
			if err != nil {
				logger.Error("Rate limiter unavailable",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			if count > int64(config.RequestsPerWindow) {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(resetIn.Round(time.Second).Seconds())))
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(config.RequestsPerWindow)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
