package controller

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-comgate/app/entity"
)

func postWebhook(t *testing.T, ctrl *WebhookController, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook/status", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	if err := ctrl.HandleStatus(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return rec
}

func pendingPayment(transID string) *entity.Payment {
	return &entity.Payment{
		ID:           5,
		OrderID:      42,
		TotalCents:   1000,
		Currency:     "EUR",
		ChargeStatus: entity.ChargeStatusPending,
		IsActive:     true,
		PSPReference: &transID,
	}
}

func TestHandleStatusPaid(t *testing.T) {
	deps := newControllerDeps()
	deps.payments.active = pendingPayment("X1")
	var stored *entity.Order
	deps.orders.updateFn = func(_ context.Context, order *entity.Order) error {
		stored = order
		return nil
	}
	ctrl := NewWebhookController(deps.service())

	rec := postWebhook(t, ctrl, webhookBody(nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d %q", rec.Code, rec.Body.String())
	}
	if stored == nil || stored.PaymentStatus != entity.OrderPaymentStatusCaptured {
		t.Fatalf("expected captured order, got %+v", stored)
	}
}

func TestHandleStatusWrongSecret(t *testing.T) {
	deps := newControllerDeps()
	deps.orders.updateFn = func(context.Context, *entity.Order) error {
		t.Fatal("order must not be updated")
		return nil
	}
	ctrl := NewWebhookController(deps.service())

	rec := postWebhook(t, ctrl, webhookBody(map[string]string{"secret": "wrong"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleStatusUnknownTransaction(t *testing.T) {
	deps := newControllerDeps()
	deps.payments.active = pendingPayment("X1")
	deps.orders.updateFn = func(context.Context, *entity.Order) error {
		t.Fatal("order must not be updated")
		return nil
	}
	ctrl := NewWebhookController(deps.service())

	rec := postWebhook(t, ctrl, webhookBody(map[string]string{"transId": "ZZ"}))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d %q", rec.Code, rec.Body.String())
	}
	if deps.payments.active.ChargeStatus != entity.ChargeStatusPending {
		t.Fatalf("payment must not change: %+v", deps.payments.active)
	}
}

func TestHandleStatusUnknownOrder(t *testing.T) {
	ctrl := NewWebhookController(newControllerDeps().service())

	rec := postWebhook(t, ctrl, webhookBody(map[string]string{"refId": "missing"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleStatusUnknownStatusAndMalformedBody(t *testing.T) {
	deps := newControllerDeps()
	ctrl := NewWebhookController(deps.service())

	rec := postWebhook(t, ctrl, webhookBody(map[string]string{"status": "AUTHORIZED"}))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d", rec.Code)
	}

	rec = postWebhook(t, ctrl, "%zz")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 for malformed body, got %d", rec.Code)
	}
	if deps.payments.active != nil {
		t.Fatal("no payment may be created")
	}
}

func TestHandleStatusInternalError(t *testing.T) {
	deps := newControllerDeps()
	deps.orders.findFn = func(context.Context, string) (*entity.Order, error) {
		return nil, errors.New("db down")
	}
	ctrl := NewWebhookController(deps.service())

	rec := postWebhook(t, ctrl, webhookBody(nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
