package entity

import "time"

const (
	OrderPaymentStatusAwaitingConfirmation int32 = 0
	OrderPaymentStatusPending              int32 = 1
	OrderPaymentStatusCaptured             int32 = 10
	OrderPaymentStatusCanceled             int32 = 20
)

const (
	MetadataRedirectURL   = "comgate_redirect_url"
	MetadataTransactionID = "comgate_transaction_id"
)

// Order is the part of the order record this service reads and writes. Orders
// are created by checkout; only payment status and metadata change here.
type Order struct {
	ID    uint64
	Token string

	CustomerEmail string
	TotalCents    int64
	Currency      string

	PaymentStatus int32

	Metadata map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}
