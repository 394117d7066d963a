package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/page"
	"github.com/harborline/portgate/internal/repository"
	"github.com/harborline/portgate/internal/service"
)

type BookingHandler struct {
	svc      *service.BookingService
	bookings repository.BookingRepository
}

func NewBookingHandler(svc *service.BookingService, bookings repository.BookingRepository) *BookingHandler {
	return &BookingHandler{svc: svc, bookings: bookings}
}

// POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var in struct {
		SlotID  string `json:"slot_id" binding:"required,uuid"`
		TruckID string `json:"truck_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.svc.Create(c.Request.Context(), ActorFrom(c), service.CreateBookingRequest{
		SlotID:  uuid.MustParse(in.SlotID),
		TruckID: uuid.MustParse(in.TruckID),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// POST /v1/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) { h.transition(c, service.ActionConfirm) }

// POST /v1/bookings/:id/reject
func (h *BookingHandler) Reject(c *gin.Context) { h.transition(c, service.ActionReject) }

// POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) { h.transition(c, service.ActionCancel) }

func (h *BookingHandler) transition(c *gin.Context, action service.Action) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.svc.Transition(c.Request.Context(), id, action, ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.svc.Get(c.Request.Context(), ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /v1/bookings?carrier_id=&from=&to=&page=&page_size=
// Carriers are pinned to their own carrier; operators and admins pass
// carrier_id explicitly.
func (h *BookingHandler) List(c *gin.Context) {
	actor := ActorFrom(c)

	carrierID := actor.CarrierID
	if actor.Role != model.RoleCarrier {
		parsed, err := uuid.Parse(c.Query("carrier_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "carrier_id is required"})
			return
		}
		carrierID = parsed
	}

	from, to, err := parseRange(c, -30*24*time.Hour, 30*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pageNum, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	pageNum, pageSize = page.Clamp(pageNum, pageSize)

	items, total, err := h.bookings.ListByCarrier(
		c.Request.Context(), carrierID, from, to, pageSize, page.Offset(pageNum, pageSize),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.FromTotal(items, pageNum, pageSize, total))
}

// parseRange reads RFC3339 from/to query params with defaults relative to now.
func parseRange(c *gin.Context, defFrom, defTo time.Duration) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(defFrom)
	to := now.Add(defTo)

	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from.UTC(), to.UTC(), nil
}
