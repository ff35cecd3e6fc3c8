package middleware

import (
	"fmt"
	"strconv"
	"time"

	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimiter throttles requests with a Redis sliding-window log. Intake
// endpoints get a per-IP limit so a single abuser cannot flood the dispatch
// pipeline.
type RateLimiter struct {
	redis     *redis.Client
	requests  int
	window    time.Duration
	keyPrefix string
}

func NewRateLimiter(redisClient *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		requests:  requests,
		window:    window,
		keyPrefix: "rate_limit",
	}
}

// PerIP limits by client IP. Unavailable Redis fails open; rate limiting is
// protection, not a gate an outage should close.
func (rl *RateLimiter) PerIP() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context) string {
		return fmt.Sprintf("%s:ip:%s", rl.keyPrefix, c.ClientIP())
	})
}

// PerSubject limits by authenticated subject, falling back to IP. Must run
// after RequireAuth to see the subject.
func (rl *RateLimiter) PerSubject() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context) string {
		if subjectID := c.GetString("subjectID"); subjectID != "" {
			return fmt.Sprintf("%s:subject:%s", rl.keyPrefix, subjectID)
		}
		return fmt.Sprintf("%s:ip:%s", rl.keyPrefix, c.ClientIP())
	})
}

func (rl *RateLimiter) middleware(keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.redis == nil {
			c.Next()
			return
		}

		allowed, remaining, resetAt, err := rl.check(c, keyFunc(c))
		if err != nil {
			logrus.Warnf("Rate limit check failed, allowing request: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			utils.RateLimitResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// check runs the sliding-window log against a Redis sorted set.
func (rl *RateLimiter) check(c *gin.Context, key string) (bool, int, time.Time, error) {
	ctx := c.Request.Context()
	now := time.Now()

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now.Add(-rl.window).UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, now, err
	}

	count := int(countCmd.Val())
	remaining := rl.requests - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < rl.requests, remaining, now.Add(rl.window), nil
}
