package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborline/portgate/internal/model"
)

// Event names are part of the wire contract with operator dashboards and
// carrier apps; keep them stable.
const (
	EventBookingCreated = "BOOKING_CREATED"
	EventCapacityAlert  = "CAPACITY_ALERT"
	EventStatusChanged  = "BOOKING_STATUS_CHANGED"
	EventGatePassage    = "GATE_PASSAGE"
	EventNotarize       = "NOTARIZATION_REQUEST"
)

// Event is a committed fact handed to the dispatcher. Handlers receive it
// after the triggering transition has committed; nothing a handler does can
// reach back into that transaction.
type Event interface {
	Name() string
	// EntityID keys the audit trail entry written for the event.
	EntityID() string
	// Actor is who caused the event, e.g. "user:<id>", "gate:<id>", "system".
	Actor() string
	// Payload is the notification body pushed to subscribers.
	Payload() map[string]any
}

type BookingCreated struct {
	BookingID uuid.UUID
	CarrierID uuid.UUID
	ActorTag  string
	SlotTime  time.Time
}

func (e BookingCreated) Name() string     { return EventBookingCreated }
func (e BookingCreated) EntityID() string { return e.BookingID.String() }
func (e BookingCreated) Actor() string    { return e.ActorTag }
func (e BookingCreated) Payload() map[string]any {
	return map[string]any{
		"bookingId": e.BookingID.String(),
		"slotTime":  e.SlotTime.UTC().Format(time.RFC3339),
	}
}

type CapacityAlert struct {
	GateID      uuid.UUID
	GateName    string
	CurrentLoad float64
	MaxCapacity int
}

func (e CapacityAlert) Name() string     { return EventCapacityAlert }
func (e CapacityAlert) EntityID() string { return e.GateID.String() }
func (e CapacityAlert) Actor() string    { return "system" }
func (e CapacityAlert) Payload() map[string]any {
	return map[string]any{
		"gateId":      e.GateID.String(),
		"gateName":    e.GateName,
		"currentLoad": e.CurrentLoad,
		"maxCapacity": e.MaxCapacity,
	}
}

type StatusChanged struct {
	BookingID uuid.UUID
	CarrierID uuid.UUID
	ActorTag  string
	NewStatus model.BookingStatus
}

func (e StatusChanged) Name() string     { return EventStatusChanged }
func (e StatusChanged) EntityID() string { return e.BookingID.String() }
func (e StatusChanged) Actor() string    { return e.ActorTag }
func (e StatusChanged) Payload() map[string]any {
	return map[string]any{
		"bookingId": e.BookingID.String(),
		"newStatus": string(e.NewStatus),
	}
}

type GatePassage struct {
	GateID     uuid.UUID
	GateName   string
	BookingRef uuid.UUID
	CarrierID  uuid.UUID
	TruckPlate string
	Timestamp  time.Time
	Status     model.BookingStatus
}

func (e GatePassage) Name() string     { return EventGatePassage }
func (e GatePassage) EntityID() string { return e.BookingRef.String() }
func (e GatePassage) Actor() string    { return "gate:" + e.GateID.String() }
func (e GatePassage) Payload() map[string]any {
	return map[string]any{
		"gateId":     e.GateID.String(),
		"gateName":   e.GateName,
		"bookingRef": e.BookingRef.String(),
		"truckPlate": e.TruckPlate,
		"timestamp":  e.Timestamp.UTC().Format(time.RFC3339),
		"status":     string(e.Status),
	}
}

// NotarizationRequest asks for the already-committed content hash of a
// booking decision to be anchored on the external ledger.
type NotarizationRequest struct {
	SubjectID uuid.UUID
	DataHash  string
	Requestor string
}

func (e NotarizationRequest) Name() string     { return EventNotarize }
func (e NotarizationRequest) EntityID() string { return e.SubjectID.String() }
func (e NotarizationRequest) Actor() string    { return e.Requestor }
func (e NotarizationRequest) Payload() map[string]any {
	return map[string]any{
		"subjectId": e.SubjectID.String(),
		"dataHash":  e.DataHash,
	}
}
