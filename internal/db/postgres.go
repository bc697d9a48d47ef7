package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/envutil"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := envutil.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := envutil.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := envutil.GetEnv("POSTGRES_NAME", "collabmarket", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.BrandProfile{},
		&types.CreatorProfile{},
		&types.Brief{},
		&types.BriefApplication{},
		&types.Contract{},
		&types.Milestone{},
		&types.EscrowPayment{},
		&types.CreatorEarning{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	// Financial rows are scoped to their contract but never cascade-deleted.
	constraints := []struct {
		name string
		sql  string
	}{
		{"fk_milestone_contract_id", `
			ALTER TABLE "milestone"
			ADD CONSTRAINT "fk_milestone_contract_id"
			FOREIGN KEY ("contract_id") REFERENCES "contract"("id")
			ON DELETE RESTRICT`},
		{"fk_escrow_payment_contract_id", `
			ALTER TABLE "escrow_payment"
			ADD CONSTRAINT "fk_escrow_payment_contract_id"
			FOREIGN KEY ("contract_id") REFERENCES "contract"("id")
			ON DELETE RESTRICT`},
		{"fk_escrow_payment_milestone_id", `
			ALTER TABLE "escrow_payment"
			ADD CONSTRAINT "fk_escrow_payment_milestone_id"
			FOREIGN KEY ("milestone_id") REFERENCES "milestone"("id")
			ON DELETE RESTRICT`},
		{"fk_brief_application_brief_id", `
			ALTER TABLE "brief_application"
			ADD CONSTRAINT "fk_brief_application_brief_id"
			FOREIGN KEY ("brief_id") REFERENCES "brief"("id")
			ON DELETE RESTRICT`},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists).Error; err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
