package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/evcharge/pkg/response"
)

// KeyFunc derives the counter key for a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc exempts a request from limiting when it returns true.
type AllowFunc func(c *gin.Context) bool

// Limit is a fixed-window budget: Max requests per Key per Window.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyByIP limits by client IP only.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + clientIP(c) }
}

// KeyByIPAndPath gives every route its own per-IP budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "rl:path:" + routeOf(c) + ":ip:" + clientIP(c) }
}

// KeyByUserID limits authenticated callers by user; anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + clientIP(c)
	}
}

// AllowPrivateIP exempts loopback and RFC 1918 clients such as health probes.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(clientIP(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}

// hitScript increments the window counter, starts the expiry on the first
// hit and returns {count, pttl-ms} in one round trip.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// windowState turns a script reply into the advertised header values.
// A malformed reply reports ok=false so the caller can fail open.
func windowState(reply []int64, max int) (count, remaining, resetSec int, ok bool) {
	if len(reply) != 2 {
		return 0, 0, 0, false
	}
	count = int(reply[0])
	remaining = max - count
	if remaining < 0 {
		remaining = 0
	}
	if reply[1] > 0 {
		resetSec = int(math.Ceil(float64(reply[1]) / 1000))
	}
	return count, remaining, resetSec, true
}

// RateLimit enforces l with a Redis counter. A nil client or an unusable
// limit disables limiting, and Redis errors fail open.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}

		reply, err := hitScript.Run(c.Request.Context(), rdb, []string{l.Key(c)}, l.Window.Milliseconds()).Int64Slice()
		if err != nil {
			c.Next()
			return
		}
		count, remaining, resetSec, ok := windowState(reply, l.Max)
		if !ok {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
		if count > l.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.AbortError(c, http.StatusTooManyRequests, "Too many requests. Try again later.")
			return
		}
		c.Next()
	}
}
