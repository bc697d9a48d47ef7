package contracts

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

// pgTestDB opens the throwaway database named by TEST_POSTGRES_DSN and
// migrates just the contract table. Covers the row-lock behavior the fakes
// cannot reproduce faithfully.
func pgTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run postgres repo tests")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		t.Fatalf("uuid-ossp: %v", err)
	}
	if err := db.AutoMigrate(&types.Contract{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`TRUNCATE "contract"`).Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestGetByIDForUpdateSerializesTermsMerge(t *testing.T) {
	db := pgTestDB(t)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	repo := NewContractRepo(db, log)

	row := &types.Contract{
		ID:          uuid.New(),
		BriefID:     uuid.New(),
		BrandID:     uuid.New(),
		CreatorID:   uuid.New(),
		Title:       "sponsored video",
		TotalAmount: decimal.RequireFromString("1000.00"),
		Currency:    "usd",
		Status:      types.ContractStatusDraft,
	}
	if _, err := repo.Create(dbctx.Context{Ctx: context.Background()}, []*types.Contract{row}); err != nil {
		t.Fatalf("seed contract: %v", err)
	}

	// Two parties merge their signature into terms concurrently. Each holds
	// the row lock from read to write, so neither merge is lost.
	var wg sync.WaitGroup
	for _, signer := range []string{row.BrandID.String(), row.CreatorID.String()} {
		wg.Add(1)
		go func(signer string) {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
				locked, err := repo.GetByIDForUpdate(dbc, row.ID)
				if err != nil {
					return err
				}
				terms := locked.Terms
				if terms == nil {
					terms = datatypes.JSONMap{}
				}
				sigs, _ := terms[types.TermsSignaturesKey].(map[string]interface{})
				if sigs == nil {
					sigs = map[string]interface{}{}
				}
				sigs[signer] = map[string]interface{}{"signature": "sig-" + signer}
				terms[types.TermsSignaturesKey] = sigs
				_, err = repo.UpdateFieldsIfStatusIn(dbc, row.ID,
					[]string{types.ContractStatusDraft, types.ContractStatusPendingSignature},
					map[string]interface{}{"terms": terms, "status": types.ContractStatusPendingSignature})
				return err
			})
			if err != nil {
				t.Errorf("signer %s: %v", signer, err)
			}
		}(signer)
	}
	wg.Wait()

	got, err := repo.GetByID(dbctx.Context{Ctx: context.Background()}, row.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n := got.SignatureCount(); n != 2 {
		t.Fatalf("signatures after concurrent merge: want=2 got=%d", n)
	}
}
