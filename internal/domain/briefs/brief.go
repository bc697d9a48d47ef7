package briefs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BriefStatusOpen   = "open"
	BriefStatusClosed = "closed"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

type Brief struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BrandID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"brand_id"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description" json:"description,omitempty"`
	Budget      decimal.Decimal `gorm:"column:budget;type:numeric(12,2)" json:"budget"`
	Status      string          `gorm:"column:status;not null;index" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Brief) TableName() string { return "brief" }

type BriefApplication struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BriefID   uuid.UUID `gorm:"type:uuid;not null;index:idx_brief_application_brief_creator,unique,priority:1" json:"brief_id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index:idx_brief_application_brief_creator,unique,priority:2" json:"creator_id"`
	Pitch     string    `gorm:"column:pitch" json:"pitch,omitempty"`
	Status    string    `gorm:"column:status;not null;index" json:"status"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (BriefApplication) TableName() string { return "brief_application" }
