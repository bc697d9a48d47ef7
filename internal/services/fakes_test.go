package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/fees"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/requestdata"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// testDB hands out a gorm handle whose connection only ever sees transaction
// control statements; all reads and writes go through the fake repos. The
// service transaction wrappers need something that can Begin/Commit.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 32; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return gdb
}

func dbcBG() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func authedCtx(userID uuid.UUID, role string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
		Role:   role,
	})
}

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(dbc dbctx.Context, rows []*types.User) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeUserRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeUserRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	u, _ := f.GetByEmail(dbc, email)
	return u != nil, nil
}

type fakeBrandRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.BrandProfile
}

func newFakeBrandRepo() *fakeBrandRepo {
	return &fakeBrandRepo{rows: map[uuid.UUID]*types.BrandProfile{}}
}

func (f *fakeBrandRepo) Create(dbc dbctx.Context, rows []*types.BrandProfile) ([]*types.BrandProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeBrandRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.BrandProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeBrandRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.BrandProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID {
			return r, nil
		}
	}
	return nil, nil
}

type fakeCreatorRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.CreatorProfile
}

func newFakeCreatorRepo() *fakeCreatorRepo {
	return &fakeCreatorRepo{rows: map[uuid.UUID]*types.CreatorProfile{}}
}

func (f *fakeCreatorRepo) Create(dbc dbctx.Context, rows []*types.CreatorProfile) ([]*types.CreatorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeCreatorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CreatorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeCreatorRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.CreatorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeCreatorRepo) GetByStripeAccountID(dbc dbctx.Context, accountID string) (*types.CreatorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.StripeAccountID != nil && *r.StripeAccountID == accountID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeCreatorRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "stripe_account_id":
			s := v.(string)
			row.StripeAccountID = &s
		case "payouts_enabled":
			row.PayoutsEnabled = v.(bool)
		case "display_name":
			row.DisplayName = v.(string)
		}
	}
	row.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeBriefRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Brief
}

func newFakeBriefRepo() *fakeBriefRepo {
	return &fakeBriefRepo{rows: map[uuid.UUID]*types.Brief{}}
}

func (f *fakeBriefRepo) Create(dbc dbctx.Context, rows []*types.Brief) ([]*types.Brief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeBriefRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Brief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeBriefRepo) GetOwnedByBrand(dbc dbctx.Context, briefID, brandID uuid.UUID) (*types.Brief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[briefID]
	if !ok || row.BrandID != brandID {
		return nil, nil
	}
	return row, nil
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.BriefApplication
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{rows: map[uuid.UUID]*types.BriefApplication{}}
}

func (f *fakeApplicationRepo) Create(dbc dbctx.Context, rows []*types.BriefApplication) ([]*types.BriefApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeApplicationRepo) GetAccepted(dbc dbctx.Context, briefID, creatorID uuid.UUID) (*types.BriefApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.BriefID == briefID && r.CreatorID == creatorID && r.Status == types.ApplicationStatusAccepted {
			return r, nil
		}
	}
	return nil, nil
}

type fakeContractRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Contract

	// rowMu stands in for the FOR UPDATE lock: held from a locked read until
	// the next conditional write, so concurrent read-modify-write callers
	// serialize the way they would against postgres.
	rowMu    sync.Mutex
	lockHeld bool
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{rows: map[uuid.UUID]*types.Contract{}}
}

func (f *fakeContractRepo) Create(dbc dbctx.Context, rows []*types.Contract) ([]*types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeContractRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

// GetByIDForUpdate hands back a snapshot taken under the row lock. Later
// reads by other callers block until the holder writes.
func (f *fakeContractRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error) {
	f.rowMu.Lock()
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		f.rowMu.Unlock()
		return nil, nil
	}
	f.lockHeld = true
	cp := *row
	if row.Terms != nil {
		terms := datatypes.JSONMap{}
		for k, v := range row.Terms {
			terms[k] = v
		}
		cp.Terms = terms
	}
	return &cp, nil
}

func (f *fakeContractRepo) ListForParties(dbc dbctx.Context, brandID, creatorID uuid.UUID, status string) ([]*types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Contract
	for _, r := range f.rows {
		if r.BrandID != brandID && r.CreatorID != creatorID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeContractRepo) UpdateFieldsIfStatusIn(dbc dbctx.Context, id uuid.UUID, allowed []string, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockHeld {
		f.lockHeld = false
		defer f.rowMu.Unlock()
	}
	row, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range allowed {
		if row.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			row.Status = v.(string)
		case "terms":
			row.Terms = v.(datatypes.JSONMap)
		}
	}
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

type fakeMilestoneRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Milestone
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{rows: map[uuid.UUID]*types.Milestone{}}
}

func (f *fakeMilestoneRepo) Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeMilestoneRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeMilestoneRepo) ListByContract(dbc dbctx.Context, contractID uuid.UUID) ([]*types.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Milestone
	for _, r := range f.rows {
		if r.ContractID == contractID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMilestoneRepo) SumAmountByContract(dbc dbctx.Context, contractID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, r := range f.rows {
		if r.ContractID == contractID {
			sum = sum.Add(r.Amount)
		}
	}
	return sum, nil
}

func (f *fakeMilestoneRepo) applyUpdates(row *types.Milestone, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "title":
			row.Title = v.(string)
		case "description":
			row.Description = v.(string)
		case "amount":
			row.Amount = v.(decimal.Decimal)
		case "due_date":
			d := v.(time.Time)
			row.DueDate = &d
		case "status":
			row.Status = v.(string)
		}
	}
	row.UpdatedAt = time.Now().UTC()
}

func (f *fakeMilestoneRepo) UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, expected string, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != expected {
		return false, nil
	}
	f.applyUpdates(row, updates)
	return true, nil
}

func (f *fakeMilestoneRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil
	}
	f.applyUpdates(row, updates)
	return nil
}

type fakeEscrowRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.EscrowPayment

	claimErr error
}

func newFakeEscrowRepo() *fakeEscrowRepo {
	return &fakeEscrowRepo{rows: map[uuid.UUID]*types.EscrowPayment{}}
}

func (f *fakeEscrowRepo) Create(dbc dbctx.Context, rows []*types.EscrowPayment) ([]*types.EscrowPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeEscrowRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.EscrowPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeEscrowRepo) GetByGatewayRef(dbc dbctx.Context, gatewayRef string) (*types.EscrowPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.GatewayRef != nil && *r.GatewayRef == gatewayRef {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeEscrowRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.GatewayRef != nil {
		return nil
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeEscrowRepo) SetGatewayRef(dbc dbctx.Context, id uuid.UUID, gatewayRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok {
		row.GatewayRef = &gatewayRef
		row.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (f *fakeEscrowRepo) ClaimTransition(dbc dbctx.Context, id uuid.UUID, from []string, to string, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return false, f.claimErr
	}
	row, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if row.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	row.Status = to
	for k, v := range updates {
		switch k {
		case "transfer_ref":
			s := v.(string)
			row.TransferRef = &s
		case "released_at":
			at := v.(time.Time)
			row.ReleasedAt = &at
		case "release_reason":
			s := v.(string)
			row.ReleaseReason = &s
		case "refund_reason":
			s := v.(string)
			row.RefundReason = &s
		case "failure_code":
			if v == nil {
				row.FailureCode = nil
			} else {
				s := v.(string)
				row.FailureCode = &s
			}
		}
	}
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeEscrowRepo) ListForContracts(dbc dbctx.Context, contractIDs []uuid.UUID, status string) ([]*types.EscrowPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.EscrowPayment
	for _, r := range f.rows {
		inScope := false
		for _, id := range contractIDs {
			if r.ContractID == id {
				inScope = true
				break
			}
		}
		if !inScope {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEscrowRepo) CountByContract(dbc dbctx.Context, contractID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.ContractID == contractID {
			n++
		}
	}
	return n, nil
}

func (f *fakeEscrowRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeEarningRepo struct {
	mu   sync.Mutex
	rows []*types.CreatorEarning
}

func newFakeEarningRepo() *fakeEarningRepo {
	return &fakeEarningRepo{}
}

func (f *fakeEarningRepo) Append(dbc dbctx.Context, rows []*types.CreatorEarning) ([]*types.CreatorEarning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeEarningRepo) ListByCreator(dbc dbctx.Context, creatorID uuid.UUID, earningType string) ([]*types.CreatorEarning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.CreatorEarning
	for _, r := range f.rows {
		if r.CreatorID != creatorID {
			continue
		}
		if earningType != "" && r.Type != earningType {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEarningRepo) SumByCreator(dbc dbctx.Context, creatorID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, r := range f.rows {
		if r.CreatorID == creatorID {
			sum = sum.Add(r.Amount)
		}
	}
	return sum, nil
}

func (f *fakeEarningRepo) SumForEscrow(dbc dbctx.Context, escrowID uuid.UUID, earningType string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, r := range f.rows {
		if r.EscrowID == nil || *r.EscrowID != escrowID || r.Type != earningType {
			continue
		}
		sum = sum.Add(r.Amount)
	}
	return sum, nil
}

func (f *fakeEarningRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeAnalytics struct {
	metrics fees.Metrics
	err     error
	calls   int
}

func (f *fakeAnalytics) PerformanceMetrics(ctx context.Context, contentID uuid.UUID, from, to time.Time) (fees.Metrics, error) {
	f.calls++
	if f.err != nil {
		return fees.Metrics{}, f.err
	}
	return f.metrics, nil
}
