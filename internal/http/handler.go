package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/oauth"
	"github.com/tazhibayda/linkbio/internal/queue"
	"github.com/tazhibayda/linkbio/internal/sweep"
)

type Handler struct {
	Store           Store
	JWTSecret       string
	RefreshTTL      time.Duration
	Limiter         Limiter
	RateLimitPerMin int
	Events          queue.Publisher
	EventExchange   string
	CronSecret      string
	Sweeper         *sweep.Sweeper
	Google          *oauth.GoogleOAuth

	flagMu   sync.Mutex
	flags    map[string]bool
	flagsExp time.Time
}

func NewHandler(store Store, jwtSecret string, refreshDays int, lim Limiter, rlPerMin int, pub queue.Publisher, exchange, cronSecret string) *Handler {
	if lim == nil {
		lim = noopLimiter{}
	}
	if pub == nil {
		pub = queue.NewNoop()
	}
	return &Handler{
		Store:           store,
		JWTSecret:       jwtSecret,
		RefreshTTL:      time.Duration(refreshDays) * 24 * time.Hour,
		Limiter:         lim,
		RateLimitPerMin: rlPerMin,
		Events:          pub,
		EventExchange:   exchange,
		CronSecret:      cronSecret,
		Sweeper:         sweep.New(store),
	}
}

// flagEnabled reads a feature flag through a 30s in-process cache.
// Missing flags default to enabled.
func (h *Handler) flagEnabled(c *gin.Context, name string) bool {
	h.flagMu.Lock()
	defer h.flagMu.Unlock()
	if time.Now().After(h.flagsExp) {
		flags, err := h.Store.ListFlags(c.Request.Context())
		if err != nil {
			// stale beats down: keep serving the old map
			h.flagsExp = time.Now().Add(5 * time.Second)
		} else {
			m := make(map[string]bool, len(flags))
			for _, f := range flags {
				m[f.Name] = f.Enabled
			}
			h.flags = m
			h.flagsExp = time.Now().Add(30 * time.Second)
		}
	}
	if h.flags == nil {
		return true
	}
	v, ok := h.flags[name]
	if !ok {
		return true
	}
	return v
}

func (h *Handler) publish(c *gin.Context, key string, event any) {
	reqID := c.GetString(requestIDKey)
	go func() {
		_ = h.Events.Publish(c.Request.Context(), h.EventExchange, key, event, reqID)
	}()
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUser loads the full user behind the auth claims. Banned
// accounts are cut off here even if their token is still live.
func (h *Handler) currentUser(c *gin.Context) *domain.User {
	au := mustAuthUser(c)
	u, err := h.Store.FindUserByEmail(c.Request.Context(), au.Email)
	if err != nil || u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil
	}
	if u.Banned {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return nil
	}
	return u
}
