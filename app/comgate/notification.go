package comgate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	StatusPaid      = "PAID"
	StatusCanceled  = "CANCELED"
	StatusCancelled = "CANCELLED"
)

// StatusNotification is the form body the gateway posts to the status webhook.
type StatusNotification struct {
	Merchant string
	Test     bool
	Price    int64
	Currency string
	Label    string
	RefID    string
	Method   string
	Email    string
	Phone    string
	TransID  string
	Secret   string
	Status   string
}

func ParseStatusNotification(body string) (*StatusNotification, error) {
	values, err := url.ParseQuery(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}

	notification := &StatusNotification{
		Merchant: strings.TrimSpace(values.Get("merchant")),
		Test:     strings.EqualFold(strings.TrimSpace(values.Get("test")), "true"),
		Currency: strings.ToUpper(strings.TrimSpace(values.Get("curr"))),
		Label:    strings.TrimSpace(values.Get("label")),
		RefID:    strings.TrimSpace(values.Get("refId")),
		Method:   strings.TrimSpace(values.Get("method")),
		Email:    strings.TrimSpace(values.Get("email")),
		Phone:    strings.TrimSpace(values.Get("phone")),
		TransID:  strings.TrimSpace(values.Get("transId")),
		Secret:   values.Get("secret"),
		Status:   strings.ToUpper(strings.TrimSpace(values.Get("status"))),
	}

	if priceRaw := strings.TrimSpace(values.Get("price")); priceRaw != "" {
		price, err := strconv.ParseInt(priceRaw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid price %q", ErrMalformedNotification, priceRaw)
		}
		notification.Price = price
	}

	return notification, nil
}

// RedactSecret removes the shared secret from a raw notification body so it
// can be stored. Bodies that cannot be parsed are not stored at all.
func RedactSecret(body string) string {
	values, err := url.ParseQuery(strings.TrimSpace(body))
	if err != nil {
		return ""
	}
	if _, ok := values["secret"]; !ok {
		return body
	}
	values.Set("secret", "***")
	return values.Encode()
}
