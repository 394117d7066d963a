package service

import (
	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/notary"
)

// decisionHash covers the decision-relevant fields of a booking transition.
// The hash is committed on the booking row together with the new status and
// submitted to the notarization ledger asynchronously.
func decisionHash(b *model.Booking, action Action, to model.BookingStatus) (string, error) {
	return notary.HashContent(map[string]string{
		"bookingId": b.ID.String(),
		"slotId":    b.SlotID.String(),
		"gateId":    b.GateID.String(),
		"truckId":   b.TruckID.String(),
		"carrierId": b.CarrierID.String(),
		"action":    string(action),
		"status":    string(to),
	})
}
