package service

import (
	"errors"

	"github.com/vibast-solutions/ms-go-comgate/app/comgate"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyPaid      = errors.New("order already paid")
	ErrCallbackRejected      = errors.New("callback rejected")
	ErrMalformedNotification = comgate.ErrMalformedNotification
)
