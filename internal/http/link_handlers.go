package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/repo"
	"github.com/tazhibayda/linkbio/internal/security"
)

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type createLinkReq struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	IsActive    *bool      `json:"is_active"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Password    string     `json:"password"`
}

// CreateLink godoc
// @Summary Create link
// @Tags links
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body createLinkReq true "link"
// @Success 201 {object} domain.Link
// @Failure 400 {object} map[string]string
// @Router /api/links [post]
func (h *Handler) CreateLink(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	var in createLinkReq
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || !validURL(in.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and a valid http(s) url are required"})
		return
	}

	l := &domain.Link{
		UserID:   u.ID,
		Title:    in.Title,
		URL:      in.URL,
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if in.ScheduledAt != nil {
		t := in.ScheduledAt.UTC()
		l.ScheduledAt = &t
	}
	if in.ExpiresAt != nil {
		t := in.ExpiresAt.UTC()
		l.ExpiresAt = &t
	}
	if in.Password != "" {
		hash, err := security.HashLinkPassword(in.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
			return
		}
		l.PasswordHash = hash
	}
	if err := h.Store.CreateLink(c.Request.Context(), l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusCreated, l)
}

// ListLinks godoc
// @Summary List own links
// @Tags links
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Link
// @Router /api/links [get]
func (h *Handler) ListLinks(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	links, err := h.Store.ListLinksByOwner(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

type patchLinkReq struct {
	Title       *string `json:"title"`
	URL         *string `json:"url"`
	IsActive    *bool   `json:"is_active"`
	ScheduledAt optTime `json:"scheduled_at"`
	ExpiresAt   optTime `json:"expires_at"`
	Password    *string `json:"password"`
}

// UpdateLink godoc
// @Summary Update link
// @Tags links
// @Security BearerAuth
// @Accept json
// @Param id path string true "link id"
// @Param payload body patchLinkReq true "partial update; null clears a schedule bound"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/links/{id} [patch]
func (h *Handler) UpdateLink(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var in patchLinkReq
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
		return
	}
	if in.URL != nil && !validURL(*in.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
		return
	}

	p := repo.LinkPatch{
		Title:    in.Title,
		URL:      in.URL,
		IsActive: in.IsActive,
	}
	if in.ScheduledAt.Set {
		if in.ScheduledAt.Val == nil {
			p.ClearSchedule = true
		} else {
			p.ScheduledAt = in.ScheduledAt.Val
		}
	}
	if in.ExpiresAt.Set {
		if in.ExpiresAt.Val == nil {
			p.ClearExpiry = true
		} else {
			p.ExpiresAt = in.ExpiresAt.Val
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			empty := ""
			p.PasswordHash = &empty
		} else {
			hash, err := security.HashLinkPassword(*in.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
				return
			}
			p.PasswordHash = &hash
		}
	}

	if err := h.Store.UpdateLink(c.Request.Context(), id, u.ID, p); err != nil {
		if err == repo.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteLink(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := h.Store.DeleteLink(c.Request.Context(), id, u.ID); err != nil {
		if err == repo.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderReq struct {
	IDs []string `json:"ids"`
}

// ReorderLinks sets positions to the order of the submitted id list.
func (h *Handler) ReorderLinks(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	var in reorderReq
	if err := bindStrict(c, &in); err != nil || len(in.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}
	ids := make([]primitive.ObjectID, 0, len(in.IDs))
	for _, s := range in.IDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad id: " + s})
			return
		}
		ids = append(ids, id)
	}
	if err := h.Store.ReorderLinks(c.Request.Context(), u.ID, ids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.Status(http.StatusNoContent)
}

type profileReq struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	var in profileReq
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Store.UpdateProfile(c.Request.Context(), u.ID,
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Bio)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.Status(http.StatusNoContent)
}

type socialsReq struct {
	Socials []domain.SocialIcon `json:"socials"`
}

func (h *Handler) SetSocials(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	var in socialsReq
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(in.Socials) > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many socials"})
		return
	}
	for _, s := range in.Socials {
		if s.Platform == "" || !validURL(s.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each social needs platform and a valid url"})
			return
		}
	}
	if err := h.Store.SetSocials(c.Request.Context(), u.ID, in.Socials); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.Status(http.StatusNoContent)
}
