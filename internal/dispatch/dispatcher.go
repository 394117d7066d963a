package dispatch

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/notary"
	"github.com/harborline/portgate/internal/notify"
	"github.com/harborline/portgate/internal/repository"
)

const defaultHandlerTimeout = 15 * time.Second

// Dispatcher fans a committed event out to its handlers: notify operators,
// notify the carrier, append the audit record, submit notarization. Every
// handler is detached and best-effort. A handler failure is logged and
// written as its own audit record; it is never re-raised into the request
// that triggered the event, and no handler can mutate domain state.
type Dispatcher struct {
	notifier notify.Notifier
	audit    repository.AuditRepository
	notary   notary.Notary

	timeout time.Duration
	wg      sync.WaitGroup
}

func New(notifier notify.Notifier, audit repository.AuditRepository, ntr notary.Notary) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		audit:    audit,
		notary:   ntr,
		timeout:  defaultHandlerTimeout,
	}
}

// Dispatch hands the event to its handlers and returns immediately. Call
// only after the transition that produced the event has committed.
func (d *Dispatcher) Dispatch(ev Event) {
	switch e := ev.(type) {
	case BookingCreated:
		d.notifyTo(ev, notify.AudienceOperators)
		d.notifyTo(ev, carrierAudience(e.CarrierID.String()))
		d.appendAudit(ev, model.AuditTypeMutation, AuditActionFor(ev))

	case CapacityAlert:
		d.notifyTo(ev, notify.AudienceOperators)
		d.appendAudit(ev, model.AuditTypeSystem, AuditActionFor(ev))

	case StatusChanged:
		d.notifyTo(ev, notify.AudienceOperators)
		d.notifyTo(ev, carrierAudience(e.CarrierID.String()))
		d.appendAudit(ev, model.AuditTypeMutation, AuditActionFor(ev))

	case GatePassage:
		d.notifyTo(ev, notify.AudienceOperators)
		d.notifyTo(ev, carrierAudience(e.CarrierID.String()))
		d.appendAudit(ev, model.AuditTypeAccess, AuditActionFor(ev))

	case NotarizationRequest:
		d.submitNotarization(e)

	default:
		log.Printf("[dispatch] unknown event %T, dropped", ev)
	}
}

// Wait joins all in-flight handlers. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// AuditActionFor maps an event to the audit action recorded for it.
func AuditActionFor(ev Event) string {
	switch ev.(type) {
	case BookingCreated:
		return model.AuditBookingCreated
	case CapacityAlert:
		return model.AuditCapacityAlert
	case StatusChanged:
		return model.AuditBookingStatusChange
	case GatePassage:
		return model.AuditGatePassage
	default:
		return ev.Name()
	}
}

func carrierAudience(carrierID string) string {
	return notify.AudienceCarrier + "." + carrierID
}

func (d *Dispatcher) notifyTo(ev Event, audience string) {
	d.run("notify:"+audience, ev, func(ctx context.Context) error {
		return d.notifier.Notify(ctx, audience, ev.Name(), ev.Payload())
	})
}

func (d *Dispatcher) appendAudit(ev Event, actionType model.AuditActionType, action string) {
	d.run("append-audit", ev, func(ctx context.Context) error {
		return d.audit.Append(ctx, &model.AuditEntry{
			Actor:      ev.Actor(),
			ActionType: actionType,
			Action:     action,
			EntityType: "booking",
			EntityID:   ev.EntityID(),
			Details:    detailsJSON(ev.Payload()),
		})
	})
}

func (d *Dispatcher) submitNotarization(e NotarizationRequest) {
	d.run("submit-notarization", e, func(ctx context.Context) error {
		txID, err := d.notary.Notarize(ctx, e.SubjectID, e.DataHash)

		entry := &model.AuditEntry{
			Actor:      e.Actor(),
			ActionType: model.AuditTypeSystem,
			EntityType: "booking",
			EntityID:   e.EntityID(),
		}
		if err != nil {
			entry.Action = model.AuditNotaryFailed
			entry.Details = detailsJSON(map[string]any{
				"dataHash": e.DataHash,
				"error":    err.Error(),
			})
			log.Printf("[dispatch] notarization failed for %s: %v", e.SubjectID, err)
		} else {
			entry.Action = model.AuditNotarySubmitted
			entry.Details = detailsJSON(map[string]any{
				"dataHash": e.DataHash,
				"txId":     txID,
			})
		}

		// The outcome record is the deliverable here; its append error is
		// the handler failure.
		return d.audit.Append(ctx, entry)
	})
}

// run executes one handler in its own goroutine with panic recovery. The
// context is detached from the triggering request on purpose: the request
// has already returned to its caller.
func (d *Dispatcher) run(name string, ev Event, fn func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				log.Printf("[dispatch] %s panicked on %s: %v", name, ev.Name(), r)
				d.recordFailure(ctx, name, ev, "panic")
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("[dispatch] %s failed on %s: %v", name, ev.Name(), err)
			d.recordFailure(ctx, name, ev, err.Error())
		}
	}()
}

func (d *Dispatcher) recordFailure(ctx context.Context, handler string, ev Event, reason string) {
	err := d.audit.Append(ctx, &model.AuditEntry{
		Actor:      "dispatcher",
		ActionType: model.AuditTypeSystem,
		Action:     model.AuditSideEffectFailed,
		EntityType: "booking",
		EntityID:   ev.EntityID(),
		Details: detailsJSON(map[string]any{
			"handler": handler,
			"event":   ev.Name(),
			"error":   reason,
		}),
	})
	if err != nil {
		// Last resort: the failure of the failure record only gets a log line.
		log.Printf("[dispatch] audit append failed for %s/%s: %v", handler, ev.Name(), err)
	}
}

func detailsJSON(payload map[string]any) datatypes.JSON {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
