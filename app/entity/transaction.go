package entity

import "time"

const (
	TransactionKindPending = "pending"
	TransactionKindCapture = "capture"
	TransactionKindCancel  = "cancel"
)

// PaymentTransaction is one gateway response recorded against a payment.
// (payment_id, kind, transaction_id) is unique.
type PaymentTransaction struct {
	ID uint64

	PaymentID uint64

	Kind      string
	IsSuccess bool

	AmountCents int64
	Currency    string

	TransactionID string
	Error         *string
	RawResponse   *string

	CreatedAt time.Time
}
