package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/portgate/internal/model"
)

// newGateEnv wires a gate validator over the shared env with a clock fixed
// inside the slot window.
func newGateEnv(t *testing.T, capacity int) (*testEnv, *GateService, *model.TimeSlot) {
	t.Helper()

	e := newTestEnv(t)
	slot := e.makeSlot(capacity)

	gs := NewGateService(e.bookings, e.audit, e.machine, e.disp)
	gs.now = func() time.Time { return slot.StartsAt.Add(30 * time.Minute) }

	return e, gs, slot
}

func confirmedBooking(t *testing.T, e *testEnv, slot *model.TimeSlot) *model.Booking {
	t.Helper()
	booking := e.mustCreate(slot.ID, e.truck.ID, e.carrierActor())
	return e.mustConfirm(booking.ID)
}

func TestValidateEntry_AdmitsOnce(t *testing.T) {
	e, gs, slot := newGateEnv(t, 2)
	ctx := context.Background()

	booking := confirmedBooking(t, e, slot)

	updated, err := gs.ValidateEntry(ctx, e.gate.ID, booking.QRPayload())
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if updated.Status != model.BookingStatusConsumed {
		t.Fatalf("status = %s, want CONSUMED", updated.Status)
	}

	// Replayed pass: the booking is no longer CONFIRMED.
	if _, err := gs.ValidateEntry(ctx, e.gate.ID, booking.QRPayload()); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("second scan err = %v, want ErrAccessDenied", err)
	}
	if got := e.bookingStatus(booking.ID); got != model.BookingStatusConsumed {
		t.Fatalf("status after replay = %s, want CONSUMED", got)
	}

	actions := e.auditActions(booking.ID.String())
	if n := countAction(actions, model.AuditScanAttempted); n != 2 {
		t.Fatalf("SCAN_ATTEMPTED records = %d, want 2: %v", n, actions)
	}
	if n := countAction(actions, model.AuditEntryGranted); n != 1 {
		t.Fatalf("ENTRY_GRANTED records = %d, want 1: %v", n, actions)
	}
	if n := countAction(actions, model.AuditGatePassage); n != 1 {
		t.Fatalf("GATE_PASSAGE records = %d, want 1: %v", n, actions)
	}

	e.disp.Wait()
	passages := e.notifier.byEvent("GATE_PASSAGE")
	if len(passages) != 2 { // operators + carrier audience
		t.Fatalf("GATE_PASSAGE notifications = %d, want 2", len(passages))
	}
	if passages[0].payload["truckPlate"] != e.truck.Plate {
		t.Fatalf("passage truckPlate = %v, want %s", passages[0].payload["truckPlate"], e.truck.Plate)
	}
}

func TestValidateEntry_AcceptsRawBookingID(t *testing.T) {
	e, gs, slot := newGateEnv(t, 1)

	booking := confirmedBooking(t, e, slot)

	updated, err := gs.ValidateEntry(context.Background(), e.gate.ID, booking.ID.String())
	if err != nil {
		t.Fatalf("scan with raw id: %v", err)
	}
	if updated.Status != model.BookingStatusConsumed {
		t.Fatalf("status = %s, want CONSUMED", updated.Status)
	}
}

func TestValidateEntry_WrongGate(t *testing.T) {
	e, gs, slot := newGateEnv(t, 1)
	ctx := context.Background()

	booking := confirmedBooking(t, e, slot)

	otherGate := model.Gate{TerminalID: e.gate.TerminalID, Name: "Gate B", Lane: "2", IsActive: true}
	if err := e.db.Create(&otherGate).Error; err != nil {
		t.Fatalf("seed gate: %v", err)
	}

	if _, err := gs.ValidateEntry(ctx, otherGate.ID, booking.QRPayload()); !errors.Is(err, ErrWrongGate) {
		t.Fatalf("wrong-gate scan err = %v, want ErrWrongGate", err)
	}

	// The pass stays valid for its own gate.
	if got := e.bookingStatus(booking.ID); got != model.BookingStatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", got)
	}

	// The denied attempt is on record, attributed to the scanning gate.
	actions := e.auditActions(booking.ID.String())
	if n := countAction(actions, model.AuditScanAttempted); n != 1 {
		t.Fatalf("SCAN_ATTEMPTED records = %d, want 1: %v", n, actions)
	}
	if n := countAction(actions, model.AuditEntryGranted); n != 0 {
		t.Fatalf("ENTRY_GRANTED records = %d, want 0: %v", n, actions)
	}
}

func TestValidateEntry_WindowBounds(t *testing.T) {
	e, gs, slot := newGateEnv(t, 2)
	ctx := context.Background()

	booking := confirmedBooking(t, e, slot)

	gs.now = func() time.Time { return slot.StartsAt.Add(-time.Minute) }
	if _, err := gs.ValidateEntry(ctx, e.gate.ID, booking.QRPayload()); !errors.Is(err, ErrOutOfWindow) {
		t.Fatalf("early scan err = %v, want ErrOutOfWindow", err)
	}

	gs.now = func() time.Time { return slot.EndsAt.Add(time.Minute) }
	if _, err := gs.ValidateEntry(ctx, e.gate.ID, booking.QRPayload()); !errors.Is(err, ErrOutOfWindow) {
		t.Fatalf("late scan err = %v, want ErrOutOfWindow", err)
	}
	if got := e.bookingStatus(booking.ID); got != model.BookingStatusConfirmed {
		t.Fatalf("status after denied scans = %s, want CONFIRMED", got)
	}

	// Window end is inclusive: arriving exactly at the boundary is admitted.
	gs.now = func() time.Time { return slot.EndsAt }
	updated, err := gs.ValidateEntry(ctx, e.gate.ID, booking.QRPayload())
	if err != nil {
		t.Fatalf("boundary scan: %v", err)
	}
	if updated.Status != model.BookingStatusConsumed {
		t.Fatalf("status = %s, want CONSUMED", updated.Status)
	}
}

func TestValidateEntry_NonConfirmedDenied(t *testing.T) {
	e, gs, slot := newGateEnv(t, 3)
	ctx := context.Background()

	pending := e.mustCreate(slot.ID, e.truck.ID, e.carrierActor())
	if _, err := gs.ValidateEntry(ctx, e.gate.ID, pending.QRPayload()); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("pending scan err = %v, want ErrAccessDenied", err)
	}

	cancelled := e.mustCreate(slot.ID, e.truck2.ID, e.carrier2Actor())
	if _, err := e.machine.Transition(ctx, cancelled.ID, ActionCancel, e.carrier2Actor()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := gs.ValidateEntry(ctx, e.gate.ID, cancelled.QRPayload()); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("cancelled scan err = %v, want ErrAccessDenied", err)
	}

	// Denied scans still leave their audit marks.
	if n := countAction(e.auditActions(pending.ID.String()), model.AuditScanAttempted); n != 1 {
		t.Fatalf("SCAN_ATTEMPTED records = %d, want 1", n)
	}
}

func TestValidateEntry_UnknownRef(t *testing.T) {
	e, gs, _ := newGateEnv(t, 1)
	ctx := context.Background()

	if _, err := gs.ValidateEntry(ctx, e.gate.ID, "not-a-booking"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("garbage ref err = %v, want ErrBookingNotFound", err)
	}
	if _, err := gs.ValidateEntry(ctx, e.gate.ID, "PGQR-"+uuid.NewString()); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("unknown ref err = %v, want ErrBookingNotFound", err)
	}
}
