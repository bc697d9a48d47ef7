package profiles

import (
	"time"

	"github.com/google/uuid"
)

type BrandProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName string    `gorm:"column:company_name;not null" json:"company_name"`
	Website     string    `gorm:"column:website" json:"website,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (BrandProfile) TableName() string { return "brand_profile" }

// CreatorProfile carries the creator's registered payee account at the payment
// processor. PayoutsEnabled mirrors the gateway's capability flag and is
// refreshed by the webhook reconciler.
type CreatorProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DisplayName     string    `gorm:"column:display_name;not null" json:"display_name"`
	StripeAccountID *string   `gorm:"column:stripe_account_id;index" json:"stripe_account_id,omitempty"`
	PayoutsEnabled  bool      `gorm:"column:payouts_enabled;not null;default:false" json:"payouts_enabled"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CreatorProfile) TableName() string { return "creator_profile" }
