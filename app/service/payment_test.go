package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vibast-solutions/ms-go-comgate/app/comgate"
	"github.com/vibast-solutions/ms-go-comgate/app/entity"
)

func TestInitiatePaymentSuccess(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 42)

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{
		OrderToken: "T1",
		Amount:     10.00,
		Currency:   "EUR",
	})

	if !resp.Success || resp.Kind != entity.TransactionKindPending {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.TransactionID == nil || *resp.TransactionID != "X1" {
		t.Fatalf("unexpected transaction id: %v", resp.TransactionID)
	}
	if resp.RedirectURL == nil || *resp.RedirectURL != "https://pay/X1" {
		t.Fatalf("unexpected redirect: %v", resp.RedirectURL)
	}
	if resp.Error != nil {
		t.Fatalf("expected no error, got %s", *resp.Error)
	}

	if len(f.gateway.requests) != 1 {
		t.Fatalf("expected one gateway call, got %d", len(f.gateway.requests))
	}
	req := f.gateway.requests[0]
	if req.Price != 1000 || req.Currency != "EUR" || req.RefID != "T1" {
		t.Fatalf("unexpected gateway request: %+v", req)
	}
	if req.Label != "Order ID 42" || req.Country != "SK" || req.Method != "ALL" || !req.PrepareOnly {
		t.Fatalf("unexpected gateway request: %+v", req)
	}
	if req.Email != "buyer@example.com" {
		t.Fatalf("expected order email fallback, got %q", req.Email)
	}

	order := f.store.orders["T1"]
	if order.Metadata[entity.MetadataRedirectURL] != "https://pay/X1" {
		t.Fatalf("redirect url not stored: %v", order.Metadata)
	}
	if order.Metadata[entity.MetadataTransactionID] != "X1" {
		t.Fatalf("transaction id not stored: %v", order.Metadata)
	}
	if order.PaymentStatus != entity.OrderPaymentStatusPending {
		t.Fatalf("unexpected order status: %d", order.PaymentStatus)
	}

	active := f.store.activePayments(42)
	if len(active) != 1 {
		t.Fatalf("expected one active payment, got %d", len(active))
	}
	if active[0].ChargeStatus != entity.ChargeStatusPending || active[0].PSPReference == nil || *active[0].PSPReference != "X1" {
		t.Fatalf("unexpected payment: %+v", active[0])
	}
	pending := f.store.transactionsOfKind(entity.TransactionKindPending)
	if len(pending) != 1 || pending[0].AmountCents != 1000 || pending[0].TransactionID != "X1" {
		t.Fatalf("unexpected pending transactions: %+v", pending)
	}
	if f.store.locks != 2 {
		t.Fatalf("expected order row to be locked twice, got %d", f.store.locks)
	}
}

func TestInitiatePaymentRoundsToMinorUnits(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 19.999, Currency: "eur"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if f.gateway.requests[0].Price != 2000 {
		t.Fatalf("expected price 2000, got %d", f.gateway.requests[0].Price)
	}
}

func TestInitiatePaymentDefaultsCurrency(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 5})
	if !resp.Success || resp.Currency != "EUR" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if f.gateway.requests[0].Currency != "EUR" {
		t.Fatalf("expected EUR, got %s", f.gateway.requests[0].Currency)
	}
}

func TestInitiatePaymentUnsupportedCurrency(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 5, Currency: "USD"})
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected failure, got %+v", resp)
	}
	if resp.Amount != 5 || resp.Currency != "USD" {
		t.Fatalf("amount/currency must be echoed, got %+v", resp)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestInitiatePaymentGatewayRejected(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 7)
	f.gateway.err = &comgate.RejectedError{Code: 1309, Message: "nesprávná částka"}

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})

	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Error == nil || *resp.Error != "Payment gateway error (Create request failed)" {
		t.Fatalf("unexpected error message: %v", resp.Error)
	}
	if resp.Amount != 10 || resp.Currency != "EUR" || resp.Kind != entity.TransactionKindPending {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RedirectURL != nil || resp.TransactionID != nil {
		t.Fatalf("expected no redirect or transaction id, got %+v", resp)
	}

	order := f.store.orders["T1"]
	if _, ok := order.Metadata[entity.MetadataRedirectURL]; ok {
		t.Fatal("redirect must not be stored on failure")
	}
	if order.PaymentStatus != entity.OrderPaymentStatusAwaitingConfirmation {
		t.Fatalf("unexpected order status: %d", order.PaymentStatus)
	}
	if len(f.store.events) != 1 || f.store.events[0].EventType != entity.OrderEventPaymentFailed {
		t.Fatalf("expected payment_failed event, got %+v", f.store.events)
	}
}

func TestInitiatePaymentGatewayUnavailable(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 7)
	f.gateway.err = &comgate.UnavailableError{Err: errors.New("timeout")}

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected failure, got %+v", resp)
	}
}

func TestInitiatePaymentOrderNotFound(t *testing.T) {
	f := newServiceFixture()

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "missing", Amount: 10, Currency: "EUR"})
	if resp.Success || resp.Error == nil || *resp.Error != "Order not found" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestInitiatePaymentInvalidAmount(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)

	for _, amount := range []float64{0, -1, 0.001, math.NaN(), math.Inf(1), 1e17, math.MaxFloat64} {
		resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: amount, Currency: "EUR"})
		if resp.Success {
			t.Fatalf("expected failure for amount %v", amount)
		}
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestInitiatePaymentRepositoryError(t *testing.T) {
	f := newServiceFixture()
	f.orders.err = errDatabaseDown

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})
	if resp.Success || resp.Error == nil || *resp.Error != "Payment could not be initialized" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInitiatePaymentSupersedesUnsettledPayment(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)

	first := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})
	f.gateway.result = &comgate.CreateResult{TransID: "X2", Redirect: "https://pay/X2"}
	second := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})

	if !first.Success || !second.Success {
		t.Fatalf("expected both to succeed: %+v %+v", first, second)
	}
	active := f.store.activePayments(1)
	if len(active) != 1 || *active[0].PSPReference != "X2" {
		t.Fatalf("expected only the second payment to be active, got %+v", active)
	}
	if f.store.orders["T1"].Metadata[entity.MetadataRedirectURL] != "https://pay/X2" {
		t.Fatalf("unexpected redirect: %v", f.store.orders["T1"].Metadata)
	}
}

func TestInitiatePaymentRefusesPaidOrder(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)
	f.store.payments[99] = &entity.Payment{ID: 99, OrderID: 1, IsActive: true, ChargeStatus: entity.ChargeStatusCaptured}

	resp := f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})
	if resp.Success || resp.Error == nil || *resp.Error != "Order is already paid" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestGetOrderPayment(t *testing.T) {
	f := newServiceFixture()
	f.store.addOrder("T1", 1)

	result, err := f.service.GetOrderPayment(context.Background(), "T1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Payment != nil || len(result.Transactions) != 0 {
		t.Fatalf("expected empty payment state, got %+v", result)
	}

	f.service.InitiatePayment(context.Background(), InitiatePaymentInput{OrderToken: "T1", Amount: 10, Currency: "EUR"})
	result, err = f.service.GetOrderPayment(context.Background(), "T1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Payment == nil || len(result.Transactions) != 1 {
		t.Fatalf("unexpected payment state: %+v", result)
	}

	if _, err := f.service.GetOrderPayment(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.service.GetOrderPayment(context.Background(), " "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
