package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"book-assistant/backend/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitedMessage is the assistant-style reply sent with a 429.
const RateLimitedMessage = "Too many questions at once. Please wait a moment and try again."

type ipLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// IPRateLimiter manages per-IP rate limiting
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
	}
}

// GetLimiter returns the rate limiter for a given IP
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	v, _ := l.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(l.rate, l.burst)})
	entry := v.(*ipLimiter)
	entry.mu.Lock()
	entry.lastSeen = time.Now()
	entry.mu.Unlock()
	return entry.limiter
}

// Prune drops limiters not used for longer than idle.
func (l *IPRateLimiter) Prune(idle time.Duration) int {
	removed := 0
	cutoff := time.Now().Add(-idle)
	l.limiters.Range(func(key, value any) bool {
		entry := value.(*ipLimiter)
		entry.mu.Lock()
		stale := entry.lastSeen.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Run prunes idle limiters every interval until ctx is done.
func (l *IPRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(interval)
		}
	}
}

// retryAfter is the wait until the limiter grants one more token.
func retryAfter(limiter *rate.Limiter) time.Duration {
	r := limiter.Reserve()
	defer r.Cancel()
	if !r.OK() {
		return time.Minute
	}
	return r.Delay()
}

// DailyQuota manages global daily request quota
type DailyQuota struct {
	count   int64
	limit   int64
	resetAt time.Time
	mu      sync.Mutex
}

// NewDailyQuota creates a new daily quota manager
func NewDailyQuota(limit int64) *DailyQuota {
	return &DailyQuota{
		limit:   limit,
		resetAt: nextMidnightPT(),
	}
}

// Allow checks if a request is allowed and increments the counter
func (q *DailyQuota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if time.Now().After(q.resetAt) {
		logger.Component(context.Background(), "ratelimit").WithField("previous_count", q.count).Info("daily quota reset")
		q.count = 0
		q.resetAt = nextMidnightPT()
	}

	if q.count >= q.limit {
		return false
	}
	q.count++
	return true
}

// Remaining returns the remaining quota
func (q *DailyQuota) Remaining() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit - q.count
}

// Count returns the current count
func (q *DailyQuota) Count() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// ResetIn returns the time left until the quota resets.
func (q *DailyQuota) ResetIn() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return time.Until(q.resetAt)
}

// nextMidnightPT returns the next midnight in Pacific Time (Gemini API reset time)
func nextMidnightPT() time.Time {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
}

// RateLimitMiddleware applies the per-IP limit first, then the global daily
// quota, so a client rejected by its own limiter never spends shared quota.
// Either one answers 429 with Retry-After.
func RateLimitMiddleware(ipLimiter *IPRateLimiter, quota *DailyQuota) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Component(c.Request.Context(), "ratelimit")

		if ipLimiter != nil {
			limiter := ipLimiter.GetLimiter(c.ClientIP())
			if !limiter.Allow() {
				log.WithField("ip", c.ClientIP()).Warn("rate limit exceeded")
				abortRateLimited(c, retryAfter(limiter))
				return
			}
		}

		if quota != nil {
			if !quota.Allow() {
				log.WithField("limit", quota.limit).Warn("daily quota exhausted")
				abortRateLimited(c, quota.ResetIn())
				return
			}
			log.WithField("quota_remaining", quota.Remaining()).Debug("request admitted")
		}

		c.Next()
	}
}

func abortRateLimited(c *gin.Context, wait time.Duration) {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	// response and suggestions let chat clients show the rejection as a turn.
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       RateLimitedMessage,
		"response":    RateLimitedMessage,
		"suggestions": []string{},
		"code":        "RATE_LIMITED",
		"retryAfter":  seconds,
	})
}
