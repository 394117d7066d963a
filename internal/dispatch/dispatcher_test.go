package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/harborline/portgate/internal/model"
)

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (m *memAudit) Append(_ context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) ListByEntity(_ context.Context, entityID string, _ int) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range m.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAudit) ListRecent(_ context.Context, _ int) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditEntry(nil), m.entries...), nil
}

func (m *memAudit) actions(entityID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.EntityID == entityID {
			out = append(out, e.Action)
		}
	}
	return out
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []string // audience
	err  error
	// panicOn makes Notify panic for one audience, to exercise recovery.
	panicOn string
}

func (n *stubNotifier) Notify(_ context.Context, audience, _ string, _ map[string]any) error {
	if audience == n.panicOn {
		panic("notifier exploded")
	}
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, audience)
	return nil
}

func (n *stubNotifier) Close() error { return nil }

func (n *stubNotifier) audiences() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type stubNotary struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (n *stubNotary) Notarize(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.calls++
	return "tx-42", nil
}

func count(list []string, want string) int {
	n := 0
	for _, s := range list {
		if s == want {
			n++
		}
	}
	return n
}

func TestDispatch_FansOutBookingCreated(t *testing.T) {
	audit := &memAudit{}
	notifier := &stubNotifier{}
	d := New(notifier, audit, &stubNotary{})

	carrierID := uuid.New()
	ev := BookingCreated{BookingID: uuid.New(), CarrierID: carrierID, ActorTag: "user:x"}
	d.Dispatch(ev)
	d.Wait()

	audiences := notifier.audiences()
	require.Equal(t, 1, count(audiences, "operators"))
	require.Equal(t, 1, count(audiences, "carrier."+carrierID.String()))

	actions := audit.actions(ev.BookingID.String())
	require.Equal(t, []string{model.AuditBookingCreated}, actions)
}

func TestDispatch_HandlerFailureIsIsolated(t *testing.T) {
	audit := &memAudit{}
	notifier := &stubNotifier{err: errors.New("broker gone")}
	d := New(notifier, audit, &stubNotary{})

	ev := StatusChanged{BookingID: uuid.New(), CarrierID: uuid.New(), ActorTag: "user:x", NewStatus: model.BookingStatusConfirmed}
	// Dispatch must not propagate the broker failure.
	d.Dispatch(ev)
	d.Wait()

	actions := audit.actions(ev.BookingID.String())
	// Both notify handlers failed; the audit handler still ran.
	require.Equal(t, 2, count(actions, model.AuditSideEffectFailed))
	require.Equal(t, 1, count(actions, model.AuditBookingStatusChange))
}

func TestDispatch_PanickingHandlerIsRecovered(t *testing.T) {
	audit := &memAudit{}
	notifier := &stubNotifier{panicOn: "operators"}
	d := New(notifier, audit, &stubNotary{})

	ev := CapacityAlert{GateID: uuid.New(), GateName: "Gate A", CurrentLoad: 0.95, MaxCapacity: 20}
	d.Dispatch(ev)
	d.Wait()

	actions := audit.actions(ev.GateID.String())
	require.Equal(t, 1, count(actions, model.AuditSideEffectFailed))
	require.Equal(t, 1, count(actions, model.AuditCapacityAlert))
}

func TestDispatch_NotarizationOutcomes(t *testing.T) {
	audit := &memAudit{}
	notary := &stubNotary{}
	d := New(&stubNotifier{}, audit, notary)

	ok := NotarizationRequest{SubjectID: uuid.New(), DataHash: "abc", Requestor: "user:x"}
	d.Dispatch(ok)
	d.Wait()
	require.Equal(t, []string{model.AuditNotarySubmitted}, audit.actions(ok.SubjectID.String()))

	notary.err = errors.New("ledger unreachable")
	failed := NotarizationRequest{SubjectID: uuid.New(), DataHash: "def", Requestor: "user:x"}
	d.Dispatch(failed)
	d.Wait()
	require.Equal(t, []string{model.AuditNotaryFailed}, audit.actions(failed.SubjectID.String()))
}

func TestAuditActionFor(t *testing.T) {
	require.Equal(t, model.AuditBookingCreated, AuditActionFor(BookingCreated{}))
	require.Equal(t, model.AuditCapacityAlert, AuditActionFor(CapacityAlert{}))
	require.Equal(t, model.AuditBookingStatusChange, AuditActionFor(StatusChanged{}))
	require.Equal(t, model.AuditGatePassage, AuditActionFor(GatePassage{}))
	require.Equal(t, EventNotarize, AuditActionFor(NotarizationRequest{}))
}
