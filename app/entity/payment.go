package entity

import "time"

const (
	ChargeStatusNotCharged int32 = 0
	ChargeStatusPending    int32 = 1
	ChargeStatusCaptured   int32 = 10
	ChargeStatusCanceled   int32 = 20
)

type Payment struct {
	ID uint64

	OrderID uint64
	Token   string
	Gateway string

	TotalCents    int64
	CapturedCents int64
	Currency      string

	CustomerEmail string

	ChargeStatus int32
	IsActive     bool

	PSPReference *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) Settled() bool {
	return p.ChargeStatus == ChargeStatusCaptured || p.ChargeStatus == ChargeStatusCanceled
}
