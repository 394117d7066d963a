package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/auth"
	"github.com/harborline/portgate/internal/dispatch"
	"github.com/harborline/portgate/internal/ledger"
	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/repository"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrTruckNotFound   = errors.New("truck not found")
	// ErrForbidden - the actor's role or ownership does not permit the action.
	ErrForbidden = errors.New("action not permitted for actor")
	// ErrInvalidTransition - the action is not legal from the current status.
	ErrInvalidTransition = errors.New("transition not legal from current status")
	// ErrImmutable - the booking is CONSUMED; nothing may change anymore.
	ErrImmutable = errors.New("booking is consumed and immutable")
)

// errStaleTransition marks a lost per-booking race inside the commit
// transaction; it never leaves Transition.
var errStaleTransition = errors.New("stale transition")

// A slot filled to this ratio or beyond triggers a capacity alert. The
// policy lives here, not in the ledger.
const capacityAlertLoad = 0.90

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionConsume Action = "consume"
)

// transitionRule is one row of the authorization and legality matrix.
// All role and state checks for transitions are driven by this table;
// there are no per-endpoint permission branches.
type transitionRule struct {
	to    model.BookingStatus
	from  []model.BookingStatus
	roles []model.Role
	// ownerOnly lists roles restricted to bookings of their own carrier.
	ownerOnly []model.Role
	// releases - the transition returns the booking's reservation unit.
	releases bool
	// notarize - the decision is hashed and anchored on the external ledger.
	notarize bool
}

var transitionTable = map[Action]transitionRule{
	ActionConfirm: {
		to:       model.BookingStatusConfirmed,
		from:     []model.BookingStatus{model.BookingStatusPending},
		roles:    []model.Role{model.RoleOperator, model.RoleAdmin},
		notarize: true,
	},
	ActionReject: {
		to:       model.BookingStatusRejected,
		from:     []model.BookingStatus{model.BookingStatusPending},
		roles:    []model.Role{model.RoleOperator, model.RoleAdmin},
		releases: true,
		notarize: true,
	},
	// Operators may not cancel on a carrier's behalf; only the owning
	// carrier and admins. See DESIGN.md.
	ActionCancel: {
		to:        model.BookingStatusCancelled,
		from:      []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed},
		roles:     []model.Role{model.RoleCarrier, model.RoleAdmin},
		ownerOnly: []model.Role{model.RoleCarrier},
		releases:  true,
	},
	// Consume is reserved for the gate passage validator.
	ActionConsume: {
		to:       model.BookingStatusConsumed,
		from:     []model.BookingStatus{model.BookingStatusConfirmed},
		roles:    []model.Role{model.RoleGate},
		notarize: true,
	},
}

// BookingService owns the booking lifecycle. Status is written nowhere
// else; occupancy is only touched through the ledger.
type BookingService struct {
	db       *gorm.DB
	bookings repository.BookingRepository
	slots    repository.SlotRepository
	gates    repository.GateRepository
	trucks   repository.TruckRepository
	ledger   *ledger.Ledger
	dispatch *dispatch.Dispatcher

	now func() time.Time
}

func NewBookingService(
	db *gorm.DB,
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	gates repository.GateRepository,
	trucks repository.TruckRepository,
	led *ledger.Ledger,
	disp *dispatch.Dispatcher,
) *BookingService {
	return &BookingService{
		db:       db,
		bookings: bookings,
		slots:    slots,
		gates:    gates,
		trucks:   trucks,
		ledger:   led,
		dispatch: disp,
		now:      time.Now,
	}
}

type CreateBookingRequest struct {
	SlotID  uuid.UUID
	TruckID uuid.UUID
}

// Create reserves a unit on the slot and persists a PENDING booking.
//
// Reserve and persist are not one atomic unit: a failed persist after a
// successful reserve is compensated by an immediate release. A failed
// compensation is surfaced loudly - it means the counter no longer matches
// the bookings that hold it.
func (s *BookingService) Create(ctx context.Context, actor auth.Actor, req CreateBookingRequest) (*model.Booking, error) {
	if actor.Role != model.RoleCarrier && actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve slot: %w", err)
	}

	truck, err := s.trucks.GetByID(ctx, req.TruckID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTruckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve truck: %w", err)
	}
	if actor.Role == model.RoleCarrier && truck.CarrierID != actor.CarrierID {
		return nil, ErrForbidden
	}

	occ, err := s.ledger.Reserve(ctx, slot.ID)
	if err != nil {
		// Includes ErrSlotFull; a reserve that failed or timed out holds
		// nothing, so there is nothing to compensate.
		return nil, err
	}

	booking := &model.Booking{
		SlotID:    slot.ID,
		GateID:    slot.GateID,
		TruckID:   truck.ID,
		CarrierID: truck.CarrierID,
		UserID:    actor.ID,
		Status:    model.BookingStatusPending,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if relErr := s.ledger.Release(ctx, slot.ID); relErr != nil {
			return nil, fmt.Errorf("booking persist failed (%v); reservation compensation also failed: %w", err, relErr)
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.dispatch.Dispatch(dispatch.BookingCreated{
		BookingID: booking.ID,
		CarrierID: booking.CarrierID,
		ActorTag:  actorTag(actor),
		SlotTime:  slot.StartsAt,
	})

	if occ.Load() >= capacityAlertLoad {
		s.alertCapacity(ctx, slot.GateID, occ)
	}

	return booking, nil
}

// Transition applies one action from the transition table.
//
// Check order is fixed: Immutable, then Forbidden, then InvalidTransition.
// The commit is a conditional update guarded by the expected current
// status, so two racing transitions on one booking resolve to a single
// winner; release (when due) runs in the same transaction as the commit.
func (s *BookingService) Transition(ctx context.Context, bookingID uuid.UUID, action Action, actor auth.Actor) (*model.Booking, error) {
	rule, ok := transitionTable[action]
	if !ok {
		return nil, ErrInvalidTransition
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	if booking.Status == model.BookingStatusConsumed {
		return nil, ErrImmutable
	}
	if !roleAllowed(rule, actor, booking) {
		return nil, ErrForbidden
	}
	if !statusIn(booking.Status, rule.from) {
		return nil, ErrInvalidTransition
	}

	updates := map[string]any{"status": rule.to}
	if action == ActionConfirm {
		updates["qr_code"] = booking.QRPayload()
	}
	if action == ActionCancel {
		updates["cancelled_at"] = s.now().UTC()
	}

	var hash string
	if rule.notarize {
		hash, err = decisionHash(booking, action, rule.to)
		if err != nil {
			return nil, fmt.Errorf("decision hash: %w", err)
		}
		updates["notarization_hash"] = hash
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", booking.ID, booking.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStaleTransition
		}
		if rule.releases {
			return s.ledger.ReleaseTx(ctx, tx, booking.SlotID)
		}
		return nil
	})
	if errors.Is(err, errStaleTransition) {
		// Lost the race on this booking; report against what is true now.
		if cur, curErr := s.bookings.GetByID(ctx, bookingID); curErr == nil && cur.Status == model.BookingStatusConsumed {
			return nil, ErrImmutable
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("commit transition %s: %w", action, err)
	}

	updated, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}

	// Exactly one state-change event per successful transition, after commit.
	s.dispatch.Dispatch(dispatch.StatusChanged{
		BookingID: updated.ID,
		CarrierID: updated.CarrierID,
		ActorTag:  actorTag(actor),
		NewStatus: updated.Status,
	})
	if rule.notarize {
		s.dispatch.Dispatch(dispatch.NotarizationRequest{
			SubjectID: updated.ID,
			DataHash:  hash,
			Requestor: actorTag(actor),
		})
	}

	return updated, nil
}

// Get loads a booking with its associations, enforcing carrier ownership.
func (s *BookingService) Get(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.GetDetailed(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if actor.Role == model.RoleCarrier && booking.CarrierID != actor.CarrierID {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) alertCapacity(ctx context.Context, gateID uuid.UUID, occ ledger.Occupancy) {
	gate, err := s.gates.GetByID(ctx, gateID)
	if err != nil {
		log.Printf("[booking] capacity alert skipped, gate %s lookup: %v", gateID, err)
		return
	}
	s.dispatch.Dispatch(dispatch.CapacityAlert{
		GateID:      gate.ID,
		GateName:    gate.Name,
		CurrentLoad: occ.Load(),
		MaxCapacity: occ.Max,
	})
}

func roleAllowed(rule transitionRule, actor auth.Actor, booking *model.Booking) bool {
	if !roleIn(actor.Role, rule.roles) {
		return false
	}
	if roleIn(actor.Role, rule.ownerOnly) && booking.CarrierID != actor.CarrierID {
		return false
	}
	return true
}

func roleIn(role model.Role, list []model.Role) bool {
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}

func statusIn(status model.BookingStatus, list []model.BookingStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func actorTag(actor auth.Actor) string {
	if actor.Role == model.RoleGate {
		return "gate:" + actor.ID.String()
	}
	return "user:" + actor.ID.String()
}
