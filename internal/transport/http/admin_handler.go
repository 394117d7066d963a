package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/repository"
	"github.com/harborline/portgate/internal/window"
)

// AdminHandler covers the reference-data surface: slots, gates, trucks,
// and the audit trail. The booking core never writes through these paths.
type AdminHandler struct {
	ports    repository.PortRepository
	carriers repository.CarrierRepository
	slots    repository.SlotRepository
	gates    repository.GateRepository
	trucks   repository.TruckRepository
	users    repository.UserRepository
	audit    repository.AuditRepository
}

func NewAdminHandler(
	ports repository.PortRepository,
	carriers repository.CarrierRepository,
	slots repository.SlotRepository,
	gates repository.GateRepository,
	trucks repository.TruckRepository,
	users repository.UserRepository,
	audit repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		ports:    ports,
		carriers: carriers,
		slots:    slots,
		gates:    gates,
		trucks:   trucks,
		users:    users,
		audit:    audit,
	}
}

// POST /v1/ports
func (h *AdminHandler) CreatePort(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	port := &model.Port{Name: in.Name, Code: in.Code}
	if err := h.ports.CreatePort(c.Request.Context(), port); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, port)
}

// GET /v1/ports
func (h *AdminHandler) ListPorts(c *gin.Context) {
	ports, err := h.ports.ListPorts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ports": ports})
}

// POST /v1/terminals
func (h *AdminHandler) CreateTerminal(c *gin.Context) {
	var in struct {
		PortID string `json:"port_id" binding:"required,uuid"`
		Name   string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	terminal := &model.Terminal{
		PortID: uuid.MustParse(in.PortID),
		Name:   in.Name,
	}
	if err := h.ports.CreateTerminal(c.Request.Context(), terminal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, terminal)
}

// POST /v1/carriers
func (h *AdminHandler) CreateCarrier(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
		VAT  string `json:"vat"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrier := &model.Carrier{Name: in.Name, VAT: in.VAT}
	if err := h.carriers.Create(c.Request.Context(), carrier); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carrier)
}

// POST /v1/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var in struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role" binding:"required,oneof=carrier operator admin"`
		CarrierID   string `json:"carrier_id" binding:"omitempty,uuid"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Role == string(model.RoleCarrier) && in.CarrierID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "carrier users need a carrier_id"})
		return
	}

	user := &model.User{
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Role:        model.Role(in.Role),
	}
	if in.CarrierID != "" {
		cid := uuid.MustParse(in.CarrierID)
		user.CarrierID = &cid
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// POST /v1/slots
func (h *AdminHandler) CreateSlot(c *gin.Context) {
	var in struct {
		GateID      string    `json:"gate_id" binding:"required,uuid"`
		StartsAt    time.Time `json:"starts_at" binding:"required"`
		EndsAt      time.Time `json:"ends_at" binding:"required"`
		MaxCapacity int       `json:"max_capacity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr, err := window.Normalize(in.StartsAt, in.EndsAt, time.UTC, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot := &model.TimeSlot{
		GateID:      uuid.MustParse(in.GateID),
		StartsAt:    tr.Start,
		EndsAt:      tr.End,
		MaxCapacity: in.MaxCapacity,
	}
	if err := h.slots.Create(c.Request.Context(), slot); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// POST /v1/slots/bulk — split a window into equal slots and create them all.
func (h *AdminHandler) CreateSlotsBulk(c *gin.Context) {
	var in struct {
		GateID       string    `json:"gate_id" binding:"required,uuid"`
		From         time.Time `json:"from" binding:"required"`
		To           time.Time `json:"to" binding:"required"`
		SlotMinutes  int       `json:"slot_minutes" binding:"required,gt=0"`
		AlignMinutes int       `json:"align_minutes"`
		MaxCapacity  int       `json:"max_capacity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr, err := window.Normalize(in.From, in.To, time.UTC, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ranges, err := window.Split(tr, time.Duration(in.SlotMinutes)*time.Minute, in.AlignMinutes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gateID := uuid.MustParse(in.GateID)
	created := make([]model.TimeSlot, 0, len(ranges))
	for _, r := range ranges {
		slot := &model.TimeSlot{
			GateID:      gateID,
			StartsAt:    r.Start,
			EndsAt:      r.End,
			MaxCapacity: in.MaxCapacity,
		}
		if err := h.slots.Create(c.Request.Context(), slot); err != nil {
			respondError(c, err)
			return
		}
		created = append(created, *slot)
	}
	c.JSON(http.StatusCreated, gin.H{"slots": created})
}

// POST /v1/gates
func (h *AdminHandler) CreateGate(c *gin.Context) {
	var in struct {
		TerminalID string `json:"terminal_id" binding:"required,uuid"`
		Name       string `json:"name" binding:"required"`
		Lane       string `json:"lane"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gate := &model.Gate{
		TerminalID: uuid.MustParse(in.TerminalID),
		Name:       in.Name,
		Lane:       in.Lane,
		IsActive:   true,
	}
	if err := h.gates.Create(c.Request.Context(), gate); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gate)
}

// POST /v1/trucks
func (h *AdminHandler) CreateTruck(c *gin.Context) {
	var in struct {
		CarrierID string `json:"carrier_id" binding:"required,uuid"`
		Plate     string `json:"plate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	truck := &model.Truck{
		CarrierID: uuid.MustParse(in.CarrierID),
		Plate:     in.Plate,
	}
	if err := h.trucks.Create(c.Request.Context(), truck); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, truck)
}

// GET /v1/audit?entity_id=&limit=
func (h *AdminHandler) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	var (
		entries []model.AuditEntry
		err     error
	)
	if entityID := c.Query("entity_id"); entityID != "" {
		entries, err = h.audit.ListByEntity(c.Request.Context(), entityID, limit)
	} else {
		entries, err = h.audit.ListRecent(c.Request.Context(), limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
