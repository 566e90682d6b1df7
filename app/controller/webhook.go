package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-comgate/app/factory"
	"github.com/vibast-solutions/ms-go-comgate/app/service"
	"github.com/vibast-solutions/ms-go-comgate/app/types"
)

// WebhookController receives gateway status callbacks. Responses carry no
// body; the gateway only looks at the status code.
type WebhookController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewWebhookController(paymentService *service.PaymentService) *WebhookController {
	return &WebhookController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("webhook-controller"),
	}
}

func (c *WebhookController) HandleStatus(ctx echo.Context) error {
	l := factory.LoggerWithContext(c.logger, ctx)

	req, err := types.NewHandleStatusNotificationRequestFromContext(ctx)
	if err != nil {
		l.WithError(err).Warn("Failed to read status notification body")
		return ctx.NoContent(http.StatusOK)
	}

	_, err = c.paymentService.HandleStatusNotification(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCallbackRejected), errors.Is(err, service.ErrOrderNotFound):
			return ctx.NoContent(http.StatusBadRequest)
		default:
			l.WithError(err).Error("Handle status notification failed")
			return ctx.NoContent(http.StatusInternalServerError)
		}
	}

	return ctx.NoContent(http.StatusOK)
}
