package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-comgate/app/entity"
	"github.com/vibast-solutions/ms-go-comgate/app/service"
	"github.com/vibast-solutions/ms-go-comgate/app/types"
)

func GatewayResponseToTypes(item *service.GatewayResponse) *types.GatewayResponse {
	if item == nil {
		return nil
	}

	return &types.GatewayResponse{
		Success:       item.Success,
		Kind:          item.Kind,
		Amount:        item.Amount,
		Currency:      item.Currency,
		TransactionId: item.TransactionID,
		RedirectUrl:   item.RedirectURL,
		Error:         item.Error,
	}
}

func OrderPaymentToTypes(item *service.OrderPayment) *types.OrderPaymentResponse {
	if item == nil || item.Order == nil {
		return nil
	}

	result := &types.OrderPaymentResponse{
		OrderToken:    item.Order.Token,
		PaymentStatus: OrderPaymentStatusName(item.Order.PaymentStatus),
		RedirectUrl:   item.Order.Metadata[entity.MetadataRedirectURL],
		TransactionId: item.Order.Metadata[entity.MetadataTransactionID],
		Payment:       PaymentToTypes(item.Payment),
		Transactions:  make([]*types.Transaction, 0, len(item.Transactions)),
	}
	for _, txn := range item.Transactions {
		result.Transactions = append(result.Transactions, TransactionToTypes(txn))
	}
	return result
}

func PaymentToTypes(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		Token:         item.Token,
		Gateway:       item.Gateway,
		TotalCents:    item.TotalCents,
		CapturedCents: item.CapturedCents,
		Currency:      item.Currency,
		CustomerEmail: item.CustomerEmail,
		ChargeStatus:  ChargeStatusName(item.ChargeStatus),
		IsActive:      item.IsActive,
		PspReference:  item.PSPReference,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func TransactionToTypes(item *entity.PaymentTransaction) *types.Transaction {
	return &types.Transaction{
		Kind:          item.Kind,
		IsSuccess:     item.IsSuccess,
		AmountCents:   item.AmountCents,
		Currency:      item.Currency,
		TransactionId: item.TransactionID,
		Error:         item.Error,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func OrderPaymentStatusName(status int32) string {
	switch status {
	case entity.OrderPaymentStatusAwaitingConfirmation:
		return "awaiting_confirmation"
	case entity.OrderPaymentStatusPending:
		return "pending"
	case entity.OrderPaymentStatusCaptured:
		return "captured"
	case entity.OrderPaymentStatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func ChargeStatusName(status int32) string {
	switch status {
	case entity.ChargeStatusNotCharged:
		return "not_charged"
	case entity.ChargeStatusPending:
		return "pending"
	case entity.ChargeStatusCaptured:
		return "captured"
	case entity.ChargeStatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}
