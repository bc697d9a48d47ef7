package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/data/repos"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type Repos struct {
	User        repos.UserRepo
	Brand       repos.BrandRepo
	Creator     repos.CreatorRepo
	Brief       repos.BriefRepo
	Application repos.ApplicationRepo
	Contract    repos.ContractRepo
	Milestone   repos.MilestoneRepo
	Escrow      repos.EscrowRepo
	Earning     repos.EarningRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		Brand:       repos.NewBrandRepo(db, log),
		Creator:     repos.NewCreatorRepo(db, log),
		Brief:       repos.NewBriefRepo(db, log),
		Application: repos.NewApplicationRepo(db, log),
		Contract:    repos.NewContractRepo(db, log),
		Milestone:   repos.NewMilestoneRepo(db, log),
		Escrow:      repos.NewEscrowRepo(db, log),
		Earning:     repos.NewEarningRepo(db, log),
	}
}
