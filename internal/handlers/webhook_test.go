package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
)

type fakeReconciler struct {
	events []stripe.Event
	err    error
}

func (f *fakeReconciler) HandleEvent(ctx context.Context, event stripe.Event) error {
	f.events = append(f.events, event)
	return f.err
}

func newWebhookRouter(t *testing.T, reconciler *fakeReconciler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewWebhookHandler(log, stripe.NewMock(), reconciler)
	r := gin.New()
	r.POST("/webhooks/gateway", h.HandleGatewayEvent)
	return r
}

func postEvent(r *gin.Engine, event stripe.Event, signature string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(event)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/gateway", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookDispatchesVerifiedEvent(t *testing.T) {
	reconciler := &fakeReconciler{}
	r := newWebhookRouter(t, reconciler)

	w := postEvent(r, stripe.Event{ID: "evt_1", Type: stripe.EventTypeTransferSucceeded, ObjectID: "t_1"}, stripe.MockSignatureHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, w.Code, w.Body.String())
	}
	if len(reconciler.events) != 1 || reconciler.events[0].ID != "evt_1" {
		t.Fatalf("dispatched events: got=%+v", reconciler.events)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	reconciler := &fakeReconciler{}
	r := newWebhookRouter(t, reconciler)

	w := postEvent(r, stripe.Event{ID: "evt_1", Type: stripe.EventTypeTransferSucceeded}, "forged")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusBadRequest, w.Code, w.Body.String())
	}
	if len(reconciler.events) != 0 {
		t.Fatalf("unverified event reached reconciler: %+v", reconciler.events)
	}
}

func TestWebhookSignalsRedeliveryOnReconcileFailure(t *testing.T) {
	reconciler := &fakeReconciler{err: errors.New("db down")}
	r := newWebhookRouter(t, reconciler)

	w := postEvent(r, stripe.Event{ID: "evt_1", Type: stripe.EventTypeTransferFailed}, stripe.MockSignatureHeader)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusInternalServerError, w.Code, w.Body.String())
	}
}
