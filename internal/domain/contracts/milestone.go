package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MilestoneStatusPending    = "pending"
	MilestoneStatusInProgress = "in_progress"
	MilestoneStatusSubmitted  = "submitted"
	MilestoneStatusApproved   = "approved"
	MilestoneStatusPaid       = "paid"
)

// milestoneNext encodes the forward-only status chain.
var milestoneNext = map[string]string{
	MilestoneStatusPending:    MilestoneStatusInProgress,
	MilestoneStatusInProgress: MilestoneStatusSubmitted,
	MilestoneStatusSubmitted:  MilestoneStatusApproved,
	MilestoneStatusApproved:   MilestoneStatusPaid,
}

// MilestoneCanTransition reports whether from -> to is the single allowed
// forward step. Backward and skipping moves are rejected.
func MilestoneCanTransition(from, to string) bool {
	next, ok := milestoneNext[from]
	return ok && next == to
}

type Milestone struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContractID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description" json:"description,omitempty"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	DueDate     *time.Time      `gorm:"column:due_date" json:"due_date,omitempty"`
	Status      string          `gorm:"column:status;not null;index" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Milestone) TableName() string { return "milestone" }
