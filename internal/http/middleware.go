package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tazhibayda/linkbio/internal/metrics"
	"github.com/tazhibayda/linkbio/internal/security"
)

const (
	requestIDKey = "X-Request-ID"
	authUserKey  = "auth_user"
)

type AuthUser struct {
	UID   string
	Email string
	Role  string
}

func mustAuthUser(c *gin.Context) AuthUser {
	v, _ := c.Get(authUserKey)
	au, _ := v.(AuthUser)
	return au
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).
			Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer"})
			return
		}
		tok := strings.TrimSpace(h[len("Bearer "):])
		claims, err := security.ParseAccess(secret, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		uid := claims.UID
		if uid == "" {
			uid = claims.Subject
		}
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no uid"})
			return
		}
		c.Set(authUserKey, AuthUser{UID: uid, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if mustAuthUser(c).Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CronAuth gates the sweep trigger with the shared cron secret. A
// mismatch is fatal to the invocation before any query runs.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		tok := ""
		if strings.HasPrefix(strings.ToLower(h), "bearer ") {
			tok = strings.TrimSpace(h[len("Bearer "):])
		}
		if secret == "" || tok != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RateLimit applies a per-IP fixed window to a public endpoint group.
func (h *Handler) RateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !h.Limiter.Allow(c.Request.Context(), scope+":"+ip, h.RateLimitPerMin, time.Minute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
