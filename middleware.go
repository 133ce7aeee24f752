package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// getLimiter returns a rate limiter for the given key (usually client IP).
func (app *App) getLimiter(key string) *rate.Limiter {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	if entry, ok := app.LimiterMap[key]; ok {
		entry.lastSeen = app.now()
		return entry.limiter
	}

	if key == "" {
		logWarn("Rate limiter key is empty")
	}
	rps := app.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	burst := app.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), burst)
	app.LimiterMap[key] = &clientLimiter{limiter: lim, lastSeen: app.now()}
	return lim
}

// pruneLimiters forgets clients that have not made a request within maxIdle.
func (app *App) pruneLimiters(maxIdle time.Duration) int {
	cutoff := app.now().Add(-maxIdle)
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	removed := 0
	for key, entry := range app.LimiterMap {
		if entry.lastSeen.Before(cutoff) {
			delete(app.LimiterMap, key)
			removed++
		}
	}
	return removed
}

// rateLimitMiddleware returns a Gin middleware that enforces per-client rate limiting.
func (app *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !app.getLimiter(key).Allow() {
			logWarn("Rate limit exceeded for %s on %s [%s]", key, c.Request.URL.Path, requestID(c))
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Trigger", "rate-limit-exceeded")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware injects a request ID into the context for each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

// requestID returns the ID set by requestIDMiddleware, or "-".
func requestID(c *gin.Context) string {
	if id, ok := c.Request.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return "-"
}
