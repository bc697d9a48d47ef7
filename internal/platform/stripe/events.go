package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	stripego "github.com/stripe/stripe-go/v79"
)

// MetadataEscrowID is the metadata key carried on holds and transfers so
// webhook events can be routed back to the originating escrow row.
const MetadataEscrowID = "escrow_id"

type eventObject struct {
	ID          string            `json:"id"`
	Metadata    map[string]string `json:"metadata"`
	FailureCode string            `json:"failure_code"`

	ChargesEnabled   bool `json:"charges_enabled"`
	PayoutsEnabled   bool `json:"payouts_enabled"`
	DetailsSubmitted bool `json:"details_submitted"`
	Requirements     *struct {
		CurrentlyDue []string `json:"currently_due"`
	} `json:"requirements"`
}

// normalizeStripeEvent maps a verified stripe event onto the reconciler's
// event model. Unrecognized types come back as EventTypeUnknown so the
// webhook endpoint can acknowledge them without touching ledger state.
func normalizeStripeEvent(ev stripego.Event) (Event, error) {
	var obj eventObject
	if len(ev.Data.Raw) > 0 {
		if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil {
			return Event{}, fmt.Errorf("decode event object: %w", err)
		}
	}

	out := Event{
		ID:          ev.ID,
		Type:        EventTypeUnknown,
		ObjectID:    obj.ID,
		FailureCode: obj.FailureCode,
	}
	if raw, ok := obj.Metadata[MetadataEscrowID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			out.EscrowID = id
		}
	}

	switch string(ev.Type) {
	case "payment_intent.amount_capturable_updated", "payment_intent.succeeded":
		out.Type = EventTypeHoldConfirmed
	case "payment_intent.canceled":
		out.Type = EventTypeHoldCanceled
	case "transfer.created":
		out.Type = EventTypeTransferSucceeded
	case "transfer.reversed", "transfer.failed":
		out.Type = EventTypeTransferFailed
		if out.FailureCode == "" {
			out.FailureCode = string(ev.Type)
		}
	case "account.updated":
		out.Type = EventTypeAccountUpdated
		st := AccountStatus{
			AccountID:        obj.ID,
			ChargesEnabled:   obj.ChargesEnabled,
			PayoutsEnabled:   obj.PayoutsEnabled,
			DetailsSubmitted: obj.DetailsSubmitted,
		}
		if obj.Requirements != nil {
			st.OutstandingRequirements = obj.Requirements.CurrentlyDue
		}
		out.Account = &st
	}
	return out, nil
}
