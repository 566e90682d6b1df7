package types

import (
	"errors"
	"io"
	"math"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxNotificationBytes = 64 << 10

func NewInitiatePaymentRequestFromContext(ctx echo.Context) (*InitiatePaymentRequest, error) {
	var body InitiatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	if token := strings.TrimSpace(ctx.Param("token")); token != "" {
		body.OrderToken = token
	}
	body.OrderToken = strings.TrimSpace(body.OrderToken)
	body.RequestId = strings.TrimSpace(body.RequestId)
	if body.RequestId == "" {
		body.RequestId = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.CustomerEmail = strings.TrimSpace(body.CustomerEmail)

	return &body, nil
}

func (r *InitiatePaymentRequest) Validate() error {
	if r.GetOrderToken() == "" {
		return errors.New("order_token is required")
	}
	if math.IsNaN(r.GetAmount()) || math.IsInf(r.GetAmount(), 0) || r.GetAmount() <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.GetCurrency() != "" && len(r.GetCurrency()) != 3 {
		return errors.New("currency must be 3 letters")
	}
	return nil
}

func NewGetOrderPaymentRequestFromContext(ctx echo.Context) (*GetOrderPaymentRequest, error) {
	return &GetOrderPaymentRequest{OrderToken: strings.TrimSpace(ctx.Param("token"))}, nil
}

func (r *GetOrderPaymentRequest) Validate() error {
	if r.GetOrderToken() == "" {
		return errors.New("order_token is required")
	}
	return nil
}

// NewHandleStatusNotificationRequestFromContext keeps the raw form body; the
// gateway posts application/x-www-form-urlencoded.
func NewHandleStatusNotificationRequestFromContext(ctx echo.Context) (*HandleStatusNotificationRequest, error) {
	rawBody, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxNotificationBytes))
	if err != nil {
		return nil, err
	}

	requestID := strings.TrimSpace(ctx.Response().Header().Get(echo.HeaderXRequestID))
	if requestID == "" {
		requestID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}

	return &HandleStatusNotificationRequest{
		RequestId: requestID,
		Payload:   string(rawBody),
	}, nil
}
