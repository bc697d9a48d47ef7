package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/data/repos/briefs"
	"github.com/yungbote/collabmarket-backend/internal/data/repos/contracts"
	"github.com/yungbote/collabmarket-backend/internal/data/repos/payments"
	"github.com/yungbote/collabmarket-backend/internal/data/repos/profiles"
	"github.com/yungbote/collabmarket-backend/internal/data/repos/users"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type UserRepo = users.UserRepo

type BrandRepo = profiles.BrandRepo
type CreatorRepo = profiles.CreatorRepo

type BriefRepo = briefs.BriefRepo
type ApplicationRepo = briefs.ApplicationRepo

type ContractRepo = contracts.ContractRepo
type MilestoneRepo = contracts.MilestoneRepo

type EscrowRepo = payments.EscrowRepo
type EarningRepo = payments.EarningRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return users.NewUserRepo(db, baseLog)
}

func NewBrandRepo(db *gorm.DB, baseLog *logger.Logger) BrandRepo {
	return profiles.NewBrandRepo(db, baseLog)
}
func NewCreatorRepo(db *gorm.DB, baseLog *logger.Logger) CreatorRepo {
	return profiles.NewCreatorRepo(db, baseLog)
}

func NewBriefRepo(db *gorm.DB, baseLog *logger.Logger) BriefRepo {
	return briefs.NewBriefRepo(db, baseLog)
}
func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return briefs.NewApplicationRepo(db, baseLog)
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return contracts.NewContractRepo(db, baseLog)
}
func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return contracts.NewMilestoneRepo(db, baseLog)
}

func NewEscrowRepo(db *gorm.DB, baseLog *logger.Logger) EscrowRepo {
	return payments.NewEscrowRepo(db, baseLog)
}
func NewEarningRepo(db *gorm.DB, baseLog *logger.Logger) EarningRepo {
	return payments.NewEarningRepo(db, baseLog)
}
