package notify

import (
	"context"
	"log"
)

// Audiences the core pushes to. Carrier audiences are scoped per carrier:
// AudienceCarrier + "." + carrierID.
const (
	AudienceOperators = "operators"
	AudienceCarrier   = "carrier"
)

// Notifier delivers an event to currently-connected recipients of an
// audience. Delivery is at-most-once and best-effort; nothing is persisted
// for recipients that are offline.
type Notifier interface {
	Notify(ctx context.Context, audience, event string, payload map[string]any) error
	Close() error
}

// ConsoleNotifier is the degraded implementation used when no broker is
// configured.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(_ context.Context, audience, event string, payload map[string]any) error {
	log.Printf("[notify] %s -> %s %v", event, audience, payload)
	return nil
}

func (c *ConsoleNotifier) Close() error { return nil }
