package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrBadSignature rejects webhook payloads whose signature header does not verify.
var ErrBadSignature = errors.New("webhook signature verification failed")

// GatewayError codes the managers branch on.
const (
	CodeDestinationNotPayable = "destination_not_payable"
	CodeTimeout               = "gateway_timeout"
)

// GatewayError wraps a payment-processor failure. Retryable means the outcome
// is unknown or transient: the caller must not assume the operation failed
// remotely, only that it was not confirmed.
type GatewayError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway error (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

// IsAmbiguous reports whether err is a gateway failure whose remote outcome
// is unknown (timeout, connection loss). Such failures must leave the local
// row in its pending state for the reconciler.
func IsAmbiguous(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Hold is a confirmed fund reservation at the processor. ClientSecret is the
// continuation token the payer's client needs to complete authorization.
type Hold struct {
	HoldID       string
	ClientSecret string
}

type Transfer struct {
	TransferID string
}

type Account struct {
	AccountID string
}

// AccountStatus mirrors the processor's capability flags for a payee account.
type AccountStatus struct {
	AccountID               string   `json:"account_id"`
	ChargesEnabled          bool     `json:"charges_enabled"`
	PayoutsEnabled          bool     `json:"payouts_enabled"`
	DetailsSubmitted        bool     `json:"details_submitted"`
	OutstandingRequirements []string `json:"outstanding_requirements,omitempty"`
}

// Normalized webhook event types.
const (
	EventTypeHoldConfirmed     = "hold_confirmed"
	EventTypeHoldCanceled      = "hold_canceled"
	EventTypeTransferSucceeded = "transfer_succeeded"
	EventTypeTransferFailed    = "transfer_failed"
	EventTypeAccountUpdated    = "account_updated"
	EventTypeUnknown           = "unknown"
)

// Event is a verified, normalized gateway event consumed by the reconciler.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	ObjectID    string         `json:"object_id,omitempty"`
	EscrowID    uuid.UUID      `json:"escrow_id,omitempty"`
	FailureCode string         `json:"failure_code,omitempty"`
	Account     *AccountStatus `json:"account,omitempty"`
}

// Gateway is the capability surface the contract/escrow layers depend on.
// The stripe-backed client and the in-memory mock both satisfy it.
type Gateway interface {
	CreateHold(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Hold, error)
	CancelHold(ctx context.Context, holdID string) error
	Transfer(ctx context.Context, amount decimal.Decimal, currency string, payeeAccountID string, metadata map[string]string) (Transfer, error)
	CreatePayeeAccount(ctx context.Context, ownerID uuid.UUID, contactEmail string) (Account, error)
	GetPayeeAccountStatus(ctx context.Context, accountID string) (AccountStatus, error)
	VerifyWebhookSignature(payload []byte, sigHeader string) (Event, error)
}

// amountToCents converts a decimal currency amount to processor minor units.
func amountToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
