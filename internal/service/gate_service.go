package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/auth"
	"github.com/harborline/portgate/internal/dispatch"
	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/repository"
)

var (
	// ErrAccessDenied - the booking is not in CONFIRMED state.
	ErrAccessDenied = errors.New("booking not admissible")
	// ErrWrongGate - the pass was presented at a gate it was not issued for.
	ErrWrongGate = errors.New("booking is for a different gate")
	// ErrOutOfWindow - the scan happened outside the reserved window.
	ErrOutOfWindow = errors.New("scan outside reserved window")
)

// GateService validates a presented gate pass and, on success, consumes
// the booking. It is the only caller authorized for the consume transition.
type GateService struct {
	bookings repository.BookingRepository
	audit    repository.AuditRepository
	machine  *BookingService
	dispatch *dispatch.Dispatcher

	now func() time.Time
}

func NewGateService(
	bookings repository.BookingRepository,
	audit repository.AuditRepository,
	machine *BookingService,
	disp *dispatch.Dispatcher,
) *GateService {
	return &GateService{
		bookings: bookings,
		audit:    audit,
		machine:  machine,
		dispatch: disp,
		now:      time.Now,
	}
}

// ValidateEntry admits the truck behind bookingRef through gateID exactly
// once inside its reserved window.
//
// The SCAN_ATTEMPTED record is written before any admission check can
// short-circuit: a denied attempt must stay forensically visible.
func (s *GateService) ValidateEntry(ctx context.Context, gateID uuid.UUID, bookingRef string) (*model.Booking, error) {
	bookingID, err := parseBookingRef(bookingRef)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.bookings.GetDetailed(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve booking: %w", err)
	}

	s.recordScanAttempt(ctx, gateID, booking)

	if booking.Status != model.BookingStatusConfirmed {
		return nil, ErrAccessDenied
	}
	if booking.GateID != gateID {
		return nil, ErrWrongGate
	}
	if booking.Slot == nil {
		return nil, fmt.Errorf("booking %s has no slot loaded", booking.ID)
	}
	now := s.now()
	if now.Before(booking.Slot.StartsAt) || now.After(booking.Slot.EndsAt) {
		return nil, ErrOutOfWindow
	}

	// The validator is itself the authorized actor for this one transition.
	updated, err := s.machine.Transition(ctx, booking.ID, ActionConsume, auth.Actor{
		ID:   gateID,
		Role: model.RoleGate,
	})
	if err != nil {
		return nil, err
	}

	s.recordEntryGranted(ctx, gateID, updated)

	gateName := ""
	if booking.Gate != nil {
		gateName = booking.Gate.Name
	}
	truckPlate := ""
	if booking.Truck != nil {
		truckPlate = booking.Truck.Plate
	}
	s.dispatch.Dispatch(dispatch.GatePassage{
		GateID:     gateID,
		GateName:   gateName,
		BookingRef: updated.ID,
		CarrierID:  updated.CarrierID,
		TruckPlate: truckPlate,
		Timestamp:  now,
		Status:     updated.Status,
	})

	return updated, nil
}

// parseBookingRef accepts the raw booking ID or the QR payload form.
func parseBookingRef(ref string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(ref, "PGQR-"))
}

func (s *GateService) recordScanAttempt(ctx context.Context, gateID uuid.UUID, booking *model.Booking) {
	s.appendLocal(ctx, &model.AuditEntry{
		Actor:      "gate:" + gateID.String(),
		ActionType: model.AuditTypeAccess,
		Action:     model.AuditScanAttempted,
		EntityType: "booking",
		EntityID:   booking.ID.String(),
		Details: gateDetails(map[string]any{
			"gateId": gateID.String(),
			"status": string(booking.Status),
		}),
	})
}

func (s *GateService) recordEntryGranted(ctx context.Context, gateID uuid.UUID, booking *model.Booking) {
	s.appendLocal(ctx, &model.AuditEntry{
		Actor:      "gate:" + gateID.String(),
		ActionType: model.AuditTypeAccess,
		Action:     model.AuditEntryGranted,
		EntityType: "booking",
		EntityID:   booking.ID.String(),
		Details: gateDetails(map[string]any{
			"gateId": gateID.String(),
			"status": string(booking.Status),
		}),
	})
}

// appendLocal writes an audit record synchronously; a failed append is
// logged and swallowed, it never blocks the scan outcome.
func (s *GateService) appendLocal(ctx context.Context, entry *model.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		log.Printf("[gate] audit append %s for %s failed: %v", entry.Action, entry.EntityID, err)
	}
}

func gateDetails(payload map[string]any) datatypes.JSON {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
