package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ContractStatusDraft            = "draft"
	ContractStatusPendingSignature = "pending_signature"
	ContractStatusActive           = "active"
	ContractStatusCompleted        = "completed"
	ContractStatusCancelled        = "cancelled"
)

// TermsSignaturesKey is the sub-map inside Contract.Terms holding one entry
// per signing party, keyed by user id.
const TermsSignaturesKey = "signatures"

// Contract is a bilateral agreement between a brand and a creator, created
// from an accepted brief application. Brand and creator are immutable after
// creation and rows are never hard-deleted (financial record).
type Contract struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BriefID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"brief_id"`
	BrandID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"brand_id"`
	CreatorID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title       string             `gorm:"column:title;not null" json:"title"`
	Description string             `gorm:"column:description" json:"description,omitempty"`
	Terms       datatypes.JSONMap  `gorm:"column:terms;type:jsonb" json:"terms"`
	Deliverables datatypes.JSON    `gorm:"column:deliverables;type:jsonb" json:"deliverables,omitempty"`
	TotalAmount decimal.Decimal    `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Currency    string             `gorm:"column:currency;not null;default:usd" json:"currency"`
	StartDate   *time.Time         `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time         `gorm:"column:end_date" json:"end_date,omitempty"`
	Status      string             `gorm:"column:status;not null;index" json:"status"`
	CreatedAt   time.Time          `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null;default:now()" json:"updated_at"`
}

func (Contract) TableName() string { return "contract" }

// SignatureCount reports how many distinct parties have signed.
func (c *Contract) SignatureCount() int {
	if c == nil || c.Terms == nil {
		return 0
	}
	sigs, ok := c.Terms[TermsSignaturesKey].(map[string]interface{})
	if !ok {
		return 0
	}
	return len(sigs)
}
