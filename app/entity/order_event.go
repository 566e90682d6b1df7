package entity

import "time"

const (
	OrderEventPaymentPending  = "payment_pending"
	OrderEventPaymentFailed   = "payment_failed"
	OrderEventPaymentCaptured = "payment_captured"
	OrderEventPaymentCanceled = "payment_canceled"
)

type OrderEvent struct {
	ID uint64

	OrderID   uint64
	PaymentID *uint64

	EventType string

	TransactionID *string
	Message       *string

	CreatedAt time.Time
}
