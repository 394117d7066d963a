package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/auth"
	"github.com/harborline/portgate/internal/dispatch"
	"github.com/harborline/portgate/internal/ledger"
	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/repository"
)

type sentNote struct {
	audience string
	event    string
	payload  map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNote
}

func (n *recordingNotifier) Notify(_ context.Context, audience, event string, payload map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNote{audience: audience, event: event, payload: payload})
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) byEvent(event string) []sentNote {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNote
	for _, s := range n.sent {
		if s.event == event {
			out = append(out, s)
		}
	}
	return out
}

type notarized struct {
	subjectID uuid.UUID
	dataHash  string
}

type recordingNotary struct {
	mu    sync.Mutex
	calls []notarized
	err   error
}

func (n *recordingNotary) Notarize(_ context.Context, subjectID uuid.UUID, dataHash string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.calls = append(n.calls, notarized{subjectID: subjectID, dataHash: dataHash})
	return "tx-test", nil
}

func (n *recordingNotary) submitted() []notarized {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notarized(nil), n.calls...)
}

type testEnv struct {
	t  *testing.T
	db *gorm.DB

	bookings repository.BookingRepository
	slots    repository.SlotRepository
	gates    repository.GateRepository
	trucks   repository.TruckRepository
	audit    repository.AuditRepository

	notifier *recordingNotifier
	notary   *recordingNotary
	disp     *dispatch.Dispatcher
	machine  *BookingService

	gate     model.Gate
	carrier  model.Carrier
	carrier2 model.Carrier
	truck    model.Truck
	truck2   model.Truck

	carrierUserID  uuid.UUID
	carrier2UserID uuid.UUID
	operatorID     uuid.UUID
	adminID        uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := &testEnv{
		t:  t,
		db: db,

		bookings: repository.NewGormBookingRepository(db),
		slots:    repository.NewGormSlotRepository(db),
		gates:    repository.NewGormGateRepository(db),
		trucks:   repository.NewGormTruckRepository(db),
		audit:    repository.NewGormAuditRepository(db),

		notifier: &recordingNotifier{},
		notary:   &recordingNotary{},

		carrierUserID:  uuid.New(),
		carrier2UserID: uuid.New(),
		operatorID:     uuid.New(),
		adminID:        uuid.New(),
	}

	e.disp = dispatch.New(e.notifier, e.audit, e.notary)
	e.machine = NewBookingService(db, e.bookings, e.slots, e.gates, e.trucks, ledger.New(db), e.disp)

	e.gate = model.Gate{TerminalID: uuid.New(), Name: "Gate A", Lane: "1", IsActive: true}
	if err := db.Create(&e.gate).Error; err != nil {
		t.Fatalf("seed gate: %v", err)
	}

	e.carrier = model.Carrier{Name: "Northline Haulage", VAT: "NL-001"}
	e.carrier2 = model.Carrier{Name: "Baltic Freight", VAT: "BF-002"}
	for _, c := range []*model.Carrier{&e.carrier, &e.carrier2} {
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("seed carrier: %v", err)
		}
	}

	e.truck = model.Truck{CarrierID: e.carrier.ID, Plate: "NL-100-T"}
	e.truck2 = model.Truck{CarrierID: e.carrier2.ID, Plate: "BF-200-T"}
	for _, tr := range []*model.Truck{&e.truck, &e.truck2} {
		if err := db.Create(tr).Error; err != nil {
			t.Fatalf("seed truck: %v", err)
		}
	}

	return e
}

// makeSlot creates a slot on the default gate whose window surrounds the
// current time.
func (e *testEnv) makeSlot(capacity int) *model.TimeSlot {
	e.t.Helper()
	now := time.Now().UTC()
	slot := &model.TimeSlot{
		GateID:      e.gate.ID,
		StartsAt:    now.Add(-time.Hour),
		EndsAt:      now.Add(time.Hour),
		MaxCapacity: capacity,
	}
	if err := e.db.Create(slot).Error; err != nil {
		e.t.Fatalf("seed slot: %v", err)
	}
	return slot
}

func (e *testEnv) makeTruck(carrierID uuid.UUID, n int) *model.Truck {
	e.t.Helper()
	truck := &model.Truck{CarrierID: carrierID, Plate: fmt.Sprintf("XT-%03d", n)}
	if err := e.db.Create(truck).Error; err != nil {
		e.t.Fatalf("seed truck: %v", err)
	}
	return truck
}

func (e *testEnv) carrierActor() auth.Actor {
	return auth.Actor{ID: e.carrierUserID, Role: model.RoleCarrier, CarrierID: e.carrier.ID}
}

func (e *testEnv) carrier2Actor() auth.Actor {
	return auth.Actor{ID: e.carrier2UserID, Role: model.RoleCarrier, CarrierID: e.carrier2.ID}
}

func (e *testEnv) operatorActor() auth.Actor {
	return auth.Actor{ID: e.operatorID, Role: model.RoleOperator}
}

func (e *testEnv) adminActor() auth.Actor {
	return auth.Actor{ID: e.adminID, Role: model.RoleAdmin}
}

func (e *testEnv) gateActor(gateID uuid.UUID) auth.Actor {
	return auth.Actor{ID: gateID, Role: model.RoleGate}
}

func (e *testEnv) slotCounter(slotID uuid.UUID) int {
	e.t.Helper()
	var slot model.TimeSlot
	if err := e.db.First(&slot, "id = ?", slotID).Error; err != nil {
		e.t.Fatalf("reload slot: %v", err)
	}
	return slot.CurrentBookings
}

func (e *testEnv) bookingStatus(id uuid.UUID) model.BookingStatus {
	e.t.Helper()
	b, err := e.bookings.GetByID(context.Background(), id)
	if err != nil {
		e.t.Fatalf("reload booking: %v", err)
	}
	return b.Status
}

// auditActions returns the entity's trail actions in append order, after
// draining in-flight dispatcher handlers.
func (e *testEnv) auditActions(entityID string) []string {
	e.t.Helper()
	e.disp.Wait()

	entries, err := e.audit.ListByEntity(context.Background(), entityID, 0)
	if err != nil {
		e.t.Fatalf("list audit: %v", err)
	}
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func countAction(actions []string, action string) int {
	n := 0
	for _, a := range actions {
		if a == action {
			n++
		}
	}
	return n
}

// mustCreate books truck onto slot as the truck's owning carrier.
func (e *testEnv) mustCreate(slotID, truckID uuid.UUID, actor auth.Actor) *model.Booking {
	e.t.Helper()
	b, err := e.machine.Create(context.Background(), actor, CreateBookingRequest{SlotID: slotID, TruckID: truckID})
	if err != nil {
		e.t.Fatalf("create booking: %v", err)
	}
	return b
}

// mustConfirm drives a booking to CONFIRMED as an operator.
func (e *testEnv) mustConfirm(bookingID uuid.UUID) *model.Booking {
	e.t.Helper()
	b, err := e.machine.Transition(context.Background(), bookingID, ActionConfirm, e.operatorActor())
	if err != nil {
		e.t.Fatalf("confirm booking: %v", err)
	}
	return b
}
