package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/metrics"
	"github.com/tazhibayda/linkbio/internal/queue"
	"github.com/tazhibayda/linkbio/internal/repo"
	"github.com/tazhibayda/linkbio/internal/schedule"
	"github.com/tazhibayda/linkbio/internal/security"
)

type publicLink struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	URL       string             `json:"url,omitempty"` // omitted for protected links
	Protected bool               `json:"protected"`
}

// PublicProfile godoc
// @Summary Public page for a username
// @Tags public
// @Param username path string true "page slug"
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/public/u/{username} [get]
func (h *Handler) PublicProfile(c *gin.Context) {
	u, err := h.Store.FindUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if u == nil || u.Banned {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	// list path trusts the materialized flag; the sweep keeps it honest
	links, err := h.Store.ListActiveLinks(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	out := make([]publicLink, 0, len(links))
	for _, l := range links {
		pl := publicLink{ID: l.ID, Title: l.Title, Protected: l.Protected()}
		if !pl.Protected {
			pl.URL = l.URL
		}
		out = append(out, pl)
	}
	c.JSON(http.StatusOK, gin.H{
		"username":      u.Username,
		"name":          u.DisplayName,
		"bio":           u.Bio,
		"socials":       u.Socials,
		"links":         out,
		"email_capture": h.flagEnabled(c, "email_capture"),
	})
}

// Click records a visitor click-through and returns the destination.
func (h *Handler) Click(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	l, err := h.Store.FindLinkByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if l == nil || !l.IsActive || l.Protected() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.Store.IncLinkClicks(c.Request.Context(), l.ID); err == nil {
		metrics.ClicksTotal.Inc()
	}
	_ = h.Limiter.IncrClick(c.Request.Context(), l.ID.Hex(), time.Now())
	h.publish(c, queue.KeyLinkClicked, queue.LinkClicked{
		LinkID: l.ID, OwnerID: l.UserID, Referer: c.GetHeader("Referer"),
	})

	c.JSON(http.StatusOK, gin.H{"url": l.URL})
}

type unlockReq struct {
	Password string `json:"password"`
}

// Unlock resolves a password-protected link. This path must not trust
// the materialized is_active flag: the sweep runs on a cadence, so the
// flag can lag the schedule window. Visibility is re-derived from the
// live row, and every deny looks exactly like "does not exist" so the
// response leaks no scheduling metadata.
func (h *Handler) Unlock(c *gin.Context) {
	notFound := func() { c.JSON(http.StatusNotFound, gin.H{"error": "not found"}) }

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		notFound()
		return
	}
	var in unlockReq
	if err := bindStrict(c, &in); err != nil || in.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}
	l, err := h.Store.FindLinkByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if l == nil || !l.Protected() {
		notFound()
		return
	}
	owner, err := h.Store.FindUserByID(c.Request.Context(), l.UserID)
	if err != nil || owner == nil || owner.Banned {
		notFound()
		return
	}

	st := schedule.Evaluate(l.IsActive, l.ScheduledAt, l.ExpiresAt, time.Now())
	if !st.Visible {
		// deny even with the correct password
		notFound()
		return
	}
	if !security.CheckPassword(l.PasswordHash, in.Password) {
		notFound()
		return
	}

	if err := h.Store.IncLinkClicks(c.Request.Context(), l.ID); err == nil {
		metrics.ClicksTotal.Inc()
	}
	_ = h.Limiter.IncrClick(c.Request.Context(), l.ID.Hex(), time.Now())
	h.publish(c, queue.KeyLinkClicked, queue.LinkClicked{
		LinkID: l.ID, OwnerID: l.UserID, Referer: c.GetHeader("Referer"),
	})

	c.JSON(http.StatusOK, gin.H{"url": l.URL})
}

type subscribeReq struct {
	Email string `json:"email"`
}

// Subscribe captures a visitor email on a user's page.
func (h *Handler) Subscribe(c *gin.Context) {
	if !h.flagEnabled(c, "email_capture") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	u, err := h.Store.FindUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if u == nil || u.Banned {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var in subscribeReq
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	sub := &domain.Subscriber{OwnerID: u.ID, Email: email}
	if err := h.Store.AddSubscriber(c.Request.Context(), sub); err != nil {
		if err == repo.ErrDupSubscriber {
			// don't tell the visitor whether the email was already there
			c.Status(http.StatusCreated)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	h.publish(c, queue.KeySubscriberAdded, queue.SubscriberAdded{
		OwnerID: u.ID, OwnerEmail: u.Email, Email: email, Username: u.Username,
	})
	c.Status(http.StatusCreated)
}
