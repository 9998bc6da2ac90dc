package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leganyst/golf-club/internal/auth"
	"github.com/Leganyst/golf-club/internal/middlewares"
)

// NewRouter собирает HTTP API: участники под /v1, администраторы под /v1/admin.
func NewRouter(h *Handlers, tokens middlewares.TokenParser, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.Logger(log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1", middlewares.JWTAuth(tokens))
	{
		v1.GET("/schedules", h.ListSchedules)
		v1.POST("/schedules/:id/reservations", h.Apply)
		v1.DELETE("/reservations/:id", h.Cancel)
		v1.GET("/me/reservations", h.MyReservations)
		v1.GET("/me/notifications", h.Inbox)
		v1.POST("/me/notifications/:id/read", h.MarkRead)
	}

	admin := v1.Group("/admin", middlewares.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/schedules", h.CreateSchedule)
		admin.POST("/schedules/generate", h.GenerateYear)
		admin.PATCH("/schedules/:id", h.UpdateSchedule)
		admin.POST("/schedules/:id/complete", h.CompleteSchedule)
		admin.DELETE("/schedules/:id", h.DeleteSchedule)
		admin.POST("/schedules/:id/assign", h.AssignTeams)
		admin.GET("/schedules/:id/roster", h.Roster)
		admin.GET("/schedules/:id/teesheet.xlsx", h.ExportTeeSheet)
		admin.POST("/schedules/:id/reservations", h.BookFor)

		admin.PUT("/reservations/:id/status", h.SetStatus)
		admin.DELETE("/reservations/:id", h.AdminDelete)
		admin.POST("/reservations/swap", h.Swap)
		admin.POST("/reservations/:id/revert-swap", h.RevertSwap)
	}
	return r
}
