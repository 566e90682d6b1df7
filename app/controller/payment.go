package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-comgate/app/factory"
	"github.com/vibast-solutions/ms-go-comgate/app/mapper"
	"github.com/vibast-solutions/ms-go-comgate/app/service"
	"github.com/vibast-solutions/ms-go-comgate/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// InitiatePayment answers 201 with the redirect on success and 422 with the
// failed gateway response otherwise.
func (c *PaymentController) InitiatePayment(ctx echo.Context) error {
	req, err := types.NewInitiatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	resp := c.paymentService.InitiatePayment(ctx.Request().Context(), req)
	if !resp.Success {
		factory.LoggerWithContext(c.logger, ctx).WithField("order_token", req.GetOrderToken()).Warn("Payment initiation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, mapper.GatewayResponseToTypes(resp))
	}

	return ctx.JSON(http.StatusCreated, mapper.GatewayResponseToTypes(resp))
}

func (c *PaymentController) GetOrderPayment(ctx echo.Context) error {
	req, err := types.NewGetOrderPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.GetOrderPayment(ctx.Request().Context(), req.GetOrderToken())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get order payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.OrderPaymentToTypes(item))
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
