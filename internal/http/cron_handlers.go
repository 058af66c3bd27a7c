package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SweepLinks godoc
// @Summary Run the schedule sweep
// @Description Flips is_active for links whose scheduled start or
// @Description expiry has passed. Invoked by the external scheduler.
// @Tags cron
// @Security BearerAuth
// @Produce json
// @Success 200 {object} sweep.Result
// @Failure 401 {object} map[string]string
// @Router /api/cron/links/sweep [post]
func (h *Handler) SweepLinks(c *gin.Context) {
	res := h.Sweeper.Run(c.Request.Context())
	c.JSON(http.StatusOK, res)
}

// SweepPreview reports both transition set sizes without mutating —
// the GET variant exists purely for manual inspection.
func (h *Handler) SweepPreview(c *gin.Context) {
	activate, deactivate, err := h.Sweeper.Preview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending_activation":   activate,
		"pending_deactivation": deactivate,
		"timestamp":            time.Now().UTC(),
	})
}
