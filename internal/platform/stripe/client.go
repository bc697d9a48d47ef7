package stripe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/yungbote/collabmarket-backend/internal/pkg/httpx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type gatewayClient struct {
	log           *logger.Logger
	api           *stripeclient.API
	webhookSecret string
}

// NewClient builds the stripe-backed gateway from STRIPE_SECRET_KEY and
// STRIPE_WEBHOOK_SECRET.
func NewClient(log *logger.Logger) (Gateway, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	secretKey := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	if secretKey == "" {
		return nil, fmt.Errorf("missing STRIPE_SECRET_KEY")
	}
	webhookSecret := strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET"))
	if webhookSecret == "" {
		return nil, fmt.Errorf("missing STRIPE_WEBHOOK_SECRET")
	}

	api := &stripeclient.API{}
	api.Init(secretKey, nil)

	return &gatewayClient{
		log:           log.With("client", "StripeGateway"),
		api:           api,
		webhookSecret: webhookSecret,
	}, nil
}

func (g *gatewayClient) CreateHold(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Hold, error) {
	params := &stripego.PaymentIntentParams{
		Params:             stripego.Params{Context: ctx},
		Amount:             stripego.Int64(amountToCents(amount)),
		Currency:           stripego.String(currency),
		CaptureMethod:      stripego.String(string(stripego.PaymentIntentCaptureMethodManual)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Hold{}, g.wrap("create hold", err)
	}
	return Hold{HoldID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *gatewayClient) CancelHold(ctx context.Context, holdID string) error {
	params := &stripego.PaymentIntentCancelParams{
		Params: stripego.Params{Context: ctx},
	}
	if _, err := g.api.PaymentIntents.Cancel(holdID, params); err != nil {
		return g.wrap("cancel hold", err)
	}
	return nil
}

func (g *gatewayClient) Transfer(ctx context.Context, amount decimal.Decimal, currency string, payeeAccountID string, metadata map[string]string) (Transfer, error) {
	params := &stripego.TransferParams{
		Params:      stripego.Params{Context: ctx},
		Amount:      stripego.Int64(amountToCents(amount)),
		Currency:    stripego.String(currency),
		Destination: stripego.String(payeeAccountID),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return Transfer{}, g.wrap("transfer", err)
	}
	return Transfer{TransferID: tr.ID}, nil
}

func (g *gatewayClient) CreatePayeeAccount(ctx context.Context, ownerID uuid.UUID, contactEmail string) (Account, error) {
	params := &stripego.AccountParams{
		Params: stripego.Params{Context: ctx},
		Type:   stripego.String(string(stripego.AccountTypeExpress)),
		Email:  stripego.String(contactEmail),
	}
	params.AddMetadata("owner_id", ownerID.String())
	acct, err := g.api.Accounts.New(params)
	if err != nil {
		return Account{}, g.wrap("create payee account", err)
	}
	return Account{AccountID: acct.ID}, nil
}

func (g *gatewayClient) GetPayeeAccountStatus(ctx context.Context, accountID string) (AccountStatus, error) {
	params := &stripego.AccountParams{Params: stripego.Params{Context: ctx}}
	acct, err := g.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return AccountStatus{}, g.wrap("get payee account", err)
	}
	return accountStatusFromStripe(acct), nil
}

func (g *gatewayClient) VerifyWebhookSignature(payload []byte, sigHeader string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return normalizeStripeEvent(ev)
}

func accountStatusFromStripe(acct *stripego.Account) AccountStatus {
	st := AccountStatus{
		AccountID:        acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	if acct.Requirements != nil {
		st.OutstandingRequirements = acct.Requirements.CurrentlyDue
	}
	return st
}

// wrap classifies a stripe error into a GatewayError. Ambiguous outcomes
// (timeouts, dropped connections, 5xx) are marked retryable so callers leave
// their pending state for the reconciler instead of reverting.
func (g *gatewayClient) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		g.log.Warn("Gateway call timed out", "op", op)
		return &GatewayError{Code: CodeTimeout, Message: op + " timed out", Retryable: true}
	}

	var sErr *stripego.Error
	if errors.As(err, &sErr) {
		code := string(sErr.Code)
		ge := &GatewayError{Code: code, Message: sErr.Msg}
		switch code {
		case "account_invalid", "insufficient_capabilities_for_transfer", "transfer_not_allowed":
			ge.Code = CodeDestinationNotPayable
		}
		if sErr.Type == stripego.ErrorTypeAPI || httpx.IsRetryableHTTPStatus(sErr.HTTPStatusCode) {
			ge.Retryable = true
		}
		g.log.Warn("Gateway call failed", "op", op, "code", ge.Code, "retryable", ge.Retryable)
		return ge
	}

	retryable := httpx.IsRetryableError(err)
	g.log.Warn("Gateway call failed", "op", op, "error", err, "retryable", retryable)
	return &GatewayError{Message: err.Error(), Retryable: retryable}
}
