package entity

import "time"

const (
	WebhookOutcomeProcessed int32 = 10
	WebhookOutcomeDuplicate int32 = 11
	WebhookOutcomeIgnored   int32 = 20
	WebhookOutcomeRejected  int32 = 30
)

type WebhookDelivery struct {
	ID uint64

	OrderID *uint64

	RefID         string
	TransactionID string
	Status        string

	Payload string
	Outcome int32
	Error   *string

	CreatedAt time.Time
}
