package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/golf-club/internal/export"
	"github.com/Leganyst/golf-club/internal/middlewares"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/schedule"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /v1/schedules?from=2026-05-01&page=1&page_size=10
func (h *Handlers) ListSchedules(c *gin.Context) {
	from := time.Now().In(h.loc)
	if raw := c.Query("from"); raw != "" {
		d, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			badRequest(c, "from must be YYYY-MM-DD")
			return
		}
		from = d
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	res, err := h.schedules.ListUpcoming(c.Request.Context(), middlewares.MemberID(c), from, page, size)
	if err != nil {
		h.fail(c, "list schedules", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /v1/admin/schedules
func (h *Handlers) CreateSchedule(c *gin.Context) {
	var in struct {
		VenueID    int64      `json:"venue_id" binding:"required"`
		PlayDate   string     `json:"play_date" binding:"required"` // YYYY-MM-DD
		TeeTimes   []string   `json:"tee_times"`
		MaxMembers int        `json:"max_members"`
		Notes      string     `json:"notes"`
		OpenAt     *time.Time `json:"open_at"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	day, err := time.Parse(time.DateOnly, in.PlayDate)
	if err != nil {
		badRequest(c, "play_date must be YYYY-MM-DD")
		return
	}
	sched, err := h.schedules.Create(c.Request.Context(), schedule.CreateInput{
		VenueID:    in.VenueID,
		PlayDate:   day,
		TeeTimes:   in.TeeTimes,
		MaxMembers: in.MaxMembers,
		Notes:      in.Notes,
		OpenAt:     in.OpenAt,
	})
	if err != nil {
		h.fail(c, "create schedule", err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}

// POST /v1/admin/schedules/generate
func (h *Handlers) GenerateYear(c *gin.Context) {
	var in struct {
		Year     int     `json:"year" binding:"required"`
		VenueIDs []int64 `json:"venue_ids"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.schedules.GenerateYear(c.Request.Context(), in.Year, in.VenueIDs)
	if err != nil {
		h.fail(c, "generate schedules", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": created, "created": len(created)})
}

// PATCH /v1/admin/schedules/:id
func (h *Handlers) UpdateSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		TeeTimes   []string              `json:"tee_times"`
		MaxMembers *int                  `json:"max_members"`
		Status     *model.ScheduleStatus `json:"status"`
		Notes      *string               `json:"notes"`
		OpenAt     *time.Time            `json:"open_at"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	sched, err := h.schedules.Update(c.Request.Context(), id, schedule.UpdateInput{
		TeeTimes:   in.TeeTimes,
		MaxMembers: in.MaxMembers,
		Status:     in.Status,
		Notes:      in.Notes,
		OpenAt:     in.OpenAt,
	})
	if err != nil {
		h.fail(c, "update schedule", err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// POST /v1/admin/schedules/:id/complete
func (h *Handlers) CompleteSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.schedules.Complete(c.Request.Context(), id); err != nil {
		h.fail(c, "complete schedule", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /v1/admin/schedules/:id
func (h *Handlers) DeleteSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete schedule", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /v1/admin/schedules/:id/assign
func (h *Handlers) AssignTeams(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.mgr.AssignTeams(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "assign teams", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schedule_id":    res.ScheduleID,
		"assigned_count": res.AssignedCount,
		"confirmed":      res.Confirmed,
		"waitlisted":     res.Waitlisted,
		"unseated":       res.Unseated,
		"updated":        res.Updated,
	})
}

// GET /v1/admin/schedules/:id/roster
func (h *Handlers) Roster(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sched, list, err := h.mgr.ScheduleRoster(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "roster", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": sched, "items": list})
}

// GET /v1/admin/schedules/:id/teesheet.xlsx
func (h *Handlers) ExportTeeSheet(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sched, list, err := h.mgr.ScheduleRoster(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "export roster", err)
		return
	}
	body, err := export.TeeSheet(sched, list, h.loc)
	if err != nil {
		h.fail(c, "export tee sheet", err)
		return
	}
	name := fmt.Sprintf("teesheet-%s.xlsx", sched.Date().Format(time.DateOnly))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, body)
}
