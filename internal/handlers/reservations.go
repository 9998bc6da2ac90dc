package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/golf-club/internal/middlewares"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/reservation"
)

type releaseResponse struct {
	Reservation      *model.Reservation `json:"reservation"`
	PromotedMemberID *int64             `json:"promoted_member_id,omitempty"`
}

func release(r *reservation.ReleaseResult) releaseResponse {
	return releaseResponse{Reservation: r.Reservation, PromotedMemberID: r.PromotedMemberID}
}

// POST /v1/schedules/:id/reservations
func (h *Handlers) Apply(c *gin.Context) {
	scheduleID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		PreferredTeeTime string `json:"preferred_tee_time"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	res, err := h.mgr.Apply(c.Request.Context(), middlewares.MemberID(c), scheduleID, in.PreferredTeeTime)
	if err != nil {
		h.fail(c, "apply", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"reservation": res.Reservation,
		"status":      res.Status,
		"position":    res.Position,
	})
}

// DELETE /v1/reservations/:id
func (h *Handlers) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.mgr.Cancel(c.Request.Context(), middlewares.MemberID(c), id)
	if err != nil {
		h.fail(c, "cancel", err)
		return
	}
	c.JSON(http.StatusOK, release(res))
}

// GET /v1/me/reservations
func (h *Handlers) MyReservations(c *gin.Context) {
	list, err := h.mgr.MyReservations(c.Request.Context(), middlewares.MemberID(c))
	if err != nil {
		h.fail(c, "my reservations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// PUT /v1/admin/reservations/:id/status
func (h *Handlers) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.mgr.AdminSetStatus(c.Request.Context(), id, in.Status)
	if err != nil {
		h.fail(c, "set status", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /v1/admin/reservations/:id?hard=true
func (h *Handlers) AdminDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if c.Query("hard") == "true" {
		if err := h.mgr.AdminHardDelete(ctx, id); err != nil {
			h.fail(c, "hard delete", err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}
	res, err := h.mgr.AdminDelete(ctx, id)
	if err != nil {
		h.fail(c, "admin delete", err)
		return
	}
	c.JSON(http.StatusOK, release(res))
}

// POST /v1/admin/schedules/:id/reservations
func (h *Handlers) BookFor(c *gin.Context) {
	scheduleID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		MemberID int64 `json:"member_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.mgr.AdminBookFor(c.Request.Context(), scheduleID, in.MemberID)
	if err != nil {
		h.fail(c, "book for", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /v1/admin/reservations/swap
func (h *Handlers) Swap(c *gin.Context) {
	var in struct {
		ReservationID int64 `json:"reservation_id" binding:"required"`
		PartnerID     int64 `json:"partner_id" binding:"required"`
		ExpectedTeam  int   `json:"expected_team"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	pair, err := h.mgr.SwapTeams(c.Request.Context(), in.ReservationID, in.PartnerID, in.ExpectedTeam)
	if err != nil {
		h.fail(c, "swap", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": pair})
}

// POST /v1/admin/reservations/:id/revert-swap
func (h *Handlers) RevertSwap(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pair, err := h.mgr.RevertSwap(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "revert swap", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": pair})
}
