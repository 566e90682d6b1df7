package service

import (
	"math"

	"github.com/vibast-solutions/ms-go-comgate/app/entity"
)

// GatewayResponse is the normalized outcome of a gateway interaction. Kind is
// one of the entity.TransactionKind* values.
type GatewayResponse struct {
	Success  bool
	Kind     string
	Amount   float64
	Currency string

	TransactionID *string
	RedirectURL   *string
	Error         *string
}

func (r *GatewayResponse) fail(message string) *GatewayResponse {
	r.Success = false
	r.Error = &message
	return r
}

func newPendingResponse(amount float64, currency string) *GatewayResponse {
	return &GatewayResponse{
		Kind:     entity.TransactionKindPending,
		Amount:   amount,
		Currency: currency,
	}
}

// toMinorUnits assumes a two-decimal currency.
func toMinorUnits(amount float64) (int64, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, false
	}
	scaled := math.Round(amount * 100)
	if scaled >= math.MaxInt64 {
		return 0, false
	}
	cents := int64(scaled)
	return cents, cents > 0
}

func fromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}
