package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockSignatureHeader is the signature header the mock gateway accepts.
const MockSignatureHeader = "mock-signature"

// Mock is an in-memory gateway for local development and tests. Failures are
// scripted per operation; successful calls hand out sequential h_N/t_N ids.
type Mock struct {
	mu sync.Mutex

	holdSeq     int
	transferSeq int
	accountSeq  int

	holds     map[string]decimal.Decimal
	canceled  map[string]bool
	transfers map[string]decimal.Decimal
	accounts  map[string]AccountStatus

	CreateHoldErr error
	CancelHoldErr error
	TransferErr   error
	AccountErr    error

	HoldMetadata     map[string]map[string]string
	TransferMetadata map[string]map[string]string
}

func NewMock() *Mock {
	return &Mock{
		holds:            map[string]decimal.Decimal{},
		canceled:         map[string]bool{},
		transfers:        map[string]decimal.Decimal{},
		accounts:         map[string]AccountStatus{},
		HoldMetadata:     map[string]map[string]string{},
		TransferMetadata: map[string]map[string]string{},
	}
}

func (m *Mock) CreateHold(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateHoldErr != nil {
		return Hold{}, m.CreateHoldErr
	}
	m.holdSeq++
	id := fmt.Sprintf("h_%d", m.holdSeq)
	m.holds[id] = amount
	m.HoldMetadata[id] = metadata
	return Hold{HoldID: id, ClientSecret: id + "_secret"}, nil
}

func (m *Mock) CancelHold(ctx context.Context, holdID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelHoldErr != nil {
		return m.CancelHoldErr
	}
	if _, ok := m.holds[holdID]; !ok {
		return &GatewayError{Code: "resource_missing", Message: "no such hold: " + holdID}
	}
	m.canceled[holdID] = true
	return nil
}

func (m *Mock) Transfer(ctx context.Context, amount decimal.Decimal, currency string, payeeAccountID string, metadata map[string]string) (Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TransferErr != nil {
		return Transfer{}, m.TransferErr
	}
	if payeeAccountID == "" {
		return Transfer{}, &GatewayError{Code: CodeDestinationNotPayable, Message: "missing destination account"}
	}
	m.transferSeq++
	id := fmt.Sprintf("t_%d", m.transferSeq)
	m.transfers[id] = amount
	m.TransferMetadata[id] = metadata
	return Transfer{TransferID: id}, nil
}

func (m *Mock) CreatePayeeAccount(ctx context.Context, ownerID uuid.UUID, contactEmail string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AccountErr != nil {
		return Account{}, m.AccountErr
	}
	m.accountSeq++
	id := fmt.Sprintf("acct_%d", m.accountSeq)
	m.accounts[id] = AccountStatus{
		AccountID:        id,
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
	}
	return Account{AccountID: id}, nil
}

func (m *Mock) GetPayeeAccountStatus(ctx context.Context, accountID string) (AccountStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AccountErr != nil {
		return AccountStatus{}, m.AccountErr
	}
	if st, ok := m.accounts[accountID]; ok {
		return st, nil
	}
	return AccountStatus{AccountID: accountID, PayoutsEnabled: true, ChargesEnabled: true, DetailsSubmitted: true}, nil
}

// VerifyWebhookSignature accepts payloads that are already normalized Event
// JSON, guarded by the fixed mock header.
func (m *Mock) VerifyWebhookSignature(payload []byte, sigHeader string) (Event, error) {
	if sigHeader != MockSignatureHeader {
		return Event{}, ErrBadSignature
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if ev.Type == "" {
		ev.Type = EventTypeUnknown
	}
	return ev, nil
}

// HoldCount reports live (not canceled) holds; used by tests asserting the
// compensating delete leaves no orphaned processor state.
func (m *Mock) HoldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id := range m.holds {
		if !m.canceled[id] {
			n++
		}
	}
	return n
}

// TransferCount reports completed transfers.
func (m *Mock) TransferCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transfers)
}

// TransferAmount reports the amount moved by a transfer, or zero if the
// transfer id is unknown.
func (m *Mock) TransferAmount(transferID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transfers[transferID]
}

// Canceled reports whether the given hold was released back to the payer.
func (m *Mock) Canceled(holdID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canceled[holdID]
}
