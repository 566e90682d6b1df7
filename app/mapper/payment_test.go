package mapper

import (
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-comgate/app/entity"
	"github.com/vibast-solutions/ms-go-comgate/app/service"
)

func TestOrderPaymentToTypes(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ref := "X1"
	result := OrderPaymentToTypes(&service.OrderPayment{
		Order: &entity.Order{
			Token:         "T1",
			PaymentStatus: entity.OrderPaymentStatusCaptured,
			Metadata: map[string]string{
				entity.MetadataRedirectURL:   "https://pay/X1",
				entity.MetadataTransactionID: "X1",
			},
		},
		Payment: &entity.Payment{
			Token:        "pay-token",
			ChargeStatus: entity.ChargeStatusCaptured,
			PSPReference: &ref,
			CreatedAt:    created,
			UpdatedAt:    created,
		},
		Transactions: []*entity.PaymentTransaction{
			{Kind: entity.TransactionKindCapture, IsSuccess: true, TransactionID: "X1", CreatedAt: created},
		},
	})

	if result.OrderToken != "T1" || result.PaymentStatus != "captured" {
		t.Fatalf("unexpected order fields: %+v", result)
	}
	if result.RedirectUrl != "https://pay/X1" || result.TransactionId != "X1" {
		t.Fatalf("unexpected metadata fields: %+v", result)
	}
	if result.Payment == nil || result.Payment.ChargeStatus != "captured" || result.Payment.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected payment: %+v", result.Payment)
	}
	if len(result.Transactions) != 1 || result.Transactions[0].Kind != "capture" {
		t.Fatalf("unexpected transactions: %+v", result.Transactions)
	}
}

func TestGatewayResponseToTypes(t *testing.T) {
	message := "Payment gateway error (Create request failed)"
	result := GatewayResponseToTypes(&service.GatewayResponse{Kind: entity.TransactionKindPending, Amount: 10, Currency: "EUR", Error: &message})
	if result.Success || result.Error == nil || *result.Error != message || result.RedirectUrl != nil {
		t.Fatalf("unexpected response: %+v", result)
	}
	if GatewayResponseToTypes(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}
