package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Escrow statuses. held is the only state user operations start from.
// release_pending / refund_pending are claim states: exactly one request can
// hold them for a row at a time, and a gateway call is only ever in flight
// while its row sits in one of them. An ambiguous (timed-out) transfer leaves
// the row in release_pending for the reconciler; it is never marked released
// without a confirmed transfer id.
const (
	EscrowStatusHeld           = "held"
	EscrowStatusReleasePending = "release_pending"
	EscrowStatusReleased       = "released"
	EscrowStatusReleaseFailed  = "release_failed"
	EscrowStatusRefundPending  = "refund_pending"
	EscrowStatusRefunded       = "refunded"
)

// EscrowPayment is a fund hold at the payment processor tied to a contract
// and optionally one of its milestones. GatewayRef stays nil until the
// processor confirms the hold; TransferRef stays nil until a transfer is
// confirmed. Rows are never hard-deleted once a gateway hold exists.
type EscrowPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContractID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	MilestoneID   *uuid.UUID      `gorm:"type:uuid;column:milestone_id;index" json:"milestone_id,omitempty"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"column:currency;not null;default:usd" json:"currency"`
	Status        string          `gorm:"column:status;not null;index" json:"status"`
	GatewayRef    *string         `gorm:"column:gateway_ref;index" json:"gateway_ref,omitempty"`
	TransferRef   *string         `gorm:"column:transfer_ref;index" json:"transfer_ref,omitempty"`
	ReleaseReason *string         `gorm:"column:release_reason" json:"release_reason,omitempty"`
	RefundReason  *string         `gorm:"column:refund_reason" json:"refund_reason,omitempty"`
	FailureCode   *string         `gorm:"column:failure_code" json:"failure_code,omitempty"`
	ReleasedAt    *time.Time      `gorm:"column:released_at" json:"released_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (EscrowPayment) TableName() string { return "escrow_payment" }
