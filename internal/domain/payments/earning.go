package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatorEarning is an append-only ledger entry crediting a creator. Entries
// are never updated or deleted; corrections are additional negative-amount
// entries. The sum over a creator's entries is their lifetime-earnings figure.
type CreatorEarning struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatorID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"creator_id"`
	ContractID  *uuid.UUID      `gorm:"type:uuid;column:contract_id;index" json:"contract_id,omitempty"`
	ContentID   *uuid.UUID      `gorm:"type:uuid;column:content_id;index" json:"content_id,omitempty"`
	EscrowID    *uuid.UUID      `gorm:"type:uuid;column:escrow_id;index" json:"escrow_id,omitempty"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Type        string          `gorm:"column:type;not null;index" json:"type"`
	Description string          `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:now();index" json:"created_at"`
}

func (CreatorEarning) TableName() string { return "creator_earning" }
