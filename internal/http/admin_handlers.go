package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/repo"
)

func listParams(c *gin.Context) repo.ListParams {
	limit, _ := strconv.Atoi(c.Query("limit"))
	skip, _ := strconv.Atoi(c.Query("skip"))
	return repo.ListParams{Limit: limit, Skip: skip}
}

// AdminListUsers godoc
// @Summary List users
// @Tags admin
// @Security BearerAuth
// @Param limit query int false "page size"
// @Param skip query int false "offset"
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/users [get]
func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context(), listParams(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type adminUserPatch struct {
	Banned *bool   `json:"banned"`
	Role   *string `json:"role"`
}

func (h *Handler) AdminUpdateUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var in adminUserPatch
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.Role != nil && *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be user or admin"})
		return
	}
	ctx := c.Request.Context()
	if in.Banned != nil {
		if err := h.Store.SetUserBanned(ctx, id, *in.Banned); err != nil {
			status(c, err)
			return
		}
	}
	if in.Role != nil {
		if err := h.Store.SetUserRole(ctx, id, *in.Role); err != nil {
			status(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func status(c *gin.Context, err error) {
	if err == repo.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

func (h *Handler) AdminListFlags(c *gin.Context) {
	flags, err := h.Store.ListFlags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flags": flags})
}

type setFlagReq struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) AdminSetFlag(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flag name required"})
		return
	}
	var in setFlagReq
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Store.SetFlag(c.Request.Context(), name, in.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminDeleteLink is the moderation takedown: no ownership filter.
func (h *Handler) AdminDeleteLink(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := h.Store.DeleteLink(c.Request.Context(), id, primitive.NilObjectID); err != nil {
		status(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminListSubscribers(c *gin.Context) {
	owner := primitive.NilObjectID
	if s := c.Query("owner_id"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad owner_id"})
			return
		}
		owner = id
	}
	subs, err := h.Store.ListSubscribers(c.Request.Context(), owner, listParams(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subs})
}
