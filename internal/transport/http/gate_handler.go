package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborline/portgate/internal/page"
	"github.com/harborline/portgate/internal/repository"
	"github.com/harborline/portgate/internal/service"
)

type GateHandler struct {
	svc   *service.GateService
	slots repository.SlotRepository
}

func NewGateHandler(svc *service.GateService, slots repository.SlotRepository) *GateHandler {
	return &GateHandler{svc: svc, slots: slots}
}

// POST /v1/gates/:id/scan — the gate sensor presents a scanned pass.
func (h *GateHandler) Scan(c *gin.Context) {
	gateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gate id"})
		return
	}

	var in struct {
		BookingRef string `json:"booking_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.svc.ValidateEntry(c.Request.Context(), gateID, in.BookingRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": booking.ID,
		"status":    booking.Status,
		"admitted":  true,
	})
}

// GET /v1/gates/:id/slots?from=&to=&open=&page=&page_size=
func (h *GateHandler) ListSlots(c *gin.Context) {
	gateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gate id"})
		return
	}

	from, to, err := parseRange(c, 0, 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pageNum, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	pageNum, pageSize = page.Clamp(pageNum, pageSize)
	offset := page.Offset(pageNum, pageSize)

	list := h.slots.ListByGateRange
	if c.DefaultQuery("open", "true") == "true" {
		list = h.slots.ListOpen
	}

	items, total, err := list(c.Request.Context(), gateID, from, to, pageSize, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.FromTotal(items, pageNum, pageSize, total))
}
