package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/golf-club/internal/middlewares"
)

// GET /v1/me/notifications?days=3
func (h *Handlers) Inbox(c *gin.Context) {
	var window time.Duration
	if raw := c.Query("days"); raw != "" {
		var q struct {
			Days int `form:"days" binding:"min=1,max=30"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, "days must be between 1 and 30")
			return
		}
		window = time.Duration(q.Days) * 24 * time.Hour
	}
	list, err := h.inbox.ListInbox(c.Request.Context(), middlewares.MemberID(c), window)
	if err != nil {
		h.fail(c, "inbox", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// POST /v1/me/notifications/:id/read
func (h *Handlers) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), middlewares.MemberID(c), id); err != nil {
		h.fail(c, "mark read", err)
		return
	}
	c.Status(http.StatusNoContent)
}
