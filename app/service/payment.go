package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-comgate/app/comgate"
	"github.com/vibast-solutions/ms-go-comgate/app/entity"
	"github.com/vibast-solutions/ms-go-comgate/app/factory"
	"github.com/vibast-solutions/ms-go-comgate/app/repository"
	"github.com/vibast-solutions/ms-go-comgate/config"
)

const (
	gatewayName = "comgate"

	userErrorCreateFailed    = "Payment gateway error (Create request failed)"
	userErrorOrderNotFound   = "Order not found"
	userErrorOrderPaid       = "Order is already paid"
	userErrorInvalidAmount   = "Invalid payment amount"
	userErrorInternal        = "Payment could not be initialized"
	userErrorRedirectNotSave = "Payment redirect could not be stored"
)

type initiatePaymentRequest interface {
	GetOrderToken() string
	GetAmount() float64
	GetCurrency() string
	GetCustomerEmail() string
}

// InitiatePaymentInput is the plain-struct form of an initiation request.
type InitiatePaymentInput struct {
	OrderToken    string
	Amount        float64
	Currency      string
	CustomerEmail string
}

func (in InitiatePaymentInput) GetOrderToken() string    { return in.OrderToken }
func (in InitiatePaymentInput) GetAmount() float64       { return in.Amount }
func (in InitiatePaymentInput) GetCurrency() string      { return in.Currency }
func (in InitiatePaymentInput) GetCustomerEmail() string { return in.CustomerEmail }

// OrderPayment is the payment state of one order.
type OrderPayment struct {
	Order        *entity.Order
	Payment      *entity.Payment
	Transactions []*entity.PaymentTransaction
}

type orderRepository interface {
	FindByToken(ctx context.Context, token string) (*entity.Order, error)
	FindByTokenForUpdate(ctx context.Context, token string) (*entity.Order, error)
	UpdatePaymentState(ctx context.Context, order *entity.Order) error
}

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindActiveByOrderID(ctx context.Context, orderID uint64) (*entity.Payment, error)
	FindByPSPReference(ctx context.Context, orderID uint64, pspReference string) (*entity.Payment, error)
}

type transactionRepository interface {
	Create(ctx context.Context, item *entity.PaymentTransaction) error
	ListByPaymentID(ctx context.Context, paymentID uint64) ([]*entity.PaymentTransaction, error)
}

type orderEventRepository interface {
	Create(ctx context.Context, event *entity.OrderEvent) error
}

type webhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.WebhookDelivery) error
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, req *comgate.TransactionRequest) (*comgate.CreateResult, error)
}

type PaymentService struct {
	tx           txRunner
	orderRepo    orderRepository
	paymentRepo  paymentRepository
	txnRepo      transactionRepository
	eventRepo    orderEventRepository
	deliveryRepo webhookDeliveryRepository
	gateway      transactionCreator
	comgateCfg   config.ComgateConfig
	currencies   []string
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewPaymentService(
	tx txRunner,
	orderRepo orderRepository,
	paymentRepo paymentRepository,
	txnRepo transactionRepository,
	eventRepo orderEventRepository,
	deliveryRepo webhookDeliveryRepository,
	gateway transactionCreator,
	comgateCfg config.ComgateConfig,
) *PaymentService {
	return &PaymentService{
		tx:           tx,
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		txnRepo:      txnRepo,
		eventRepo:    eventRepo,
		deliveryRepo: deliveryRepo,
		gateway:      gateway,
		comgateCfg:   comgateCfg,
		currencies:   comgateCfg.SupportedCurrencies(),
		logger:       factory.NewModuleLogger("payment-service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SupportedCurrencies returns the configured currency codes, default first.
func (s *PaymentService) SupportedCurrencies() []string {
	return append([]string(nil), s.currencies...)
}

// InitiatePayment creates a hosted payment page for the order. It never
// returns an error; failures are reported through the response.
func (s *PaymentService) InitiatePayment(ctx context.Context, req initiatePaymentRequest) *GatewayResponse {
	token := strings.TrimSpace(req.GetOrderToken())
	currency := strings.ToUpper(strings.TrimSpace(req.GetCurrency()))
	response := newPendingResponse(req.GetAmount(), req.GetCurrency())
	l := s.logger.WithField("order_token", token)

	if token == "" {
		return response.fail(userErrorOrderNotFound)
	}
	if currency == "" && len(s.currencies) > 0 {
		currency = s.currencies[0]
		response.Currency = currency
	}
	if !s.supportsCurrency(currency) {
		l.WithField("currency", currency).Warn("Payment requested in unsupported currency")
		return response.fail(fmt.Sprintf("Currency %s is not supported", currency))
	}
	price, ok := toMinorUnits(req.GetAmount())
	if !ok {
		return response.fail(userErrorInvalidAmount)
	}

	var (
		order   *entity.Order
		payment *entity.Payment
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		payment, err = s.openPayment(ctx, order, price, currency, strings.TrimSpace(req.GetCustomerEmail()))
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			return response.fail(userErrorOrderNotFound)
		case errors.Is(err, ErrOrderAlreadyPaid):
			return response.fail(userErrorOrderPaid)
		default:
			l.WithError(err).Error("Failed to prepare payment record")
			return response.fail(userErrorInternal)
		}
	}

	result, err := s.gateway.CreateTransaction(ctx, &comgate.TransactionRequest{
		Country:     s.comgateCfg.Country,
		Price:       price,
		Currency:    currency,
		Label:       fmt.Sprintf("Order ID %d", order.ID),
		RefID:       order.Token,
		Method:      s.comgateCfg.PaymentMethods,
		Email:       payment.CustomerEmail,
		PrepareOnly: true,
	})
	if err != nil {
		l.WithError(err).WithField("order_id", order.ID).Error("Comgate create request failed")
		s.recordInitiateFailure(ctx, order, payment, err)
		return response.fail(userErrorCreateFailed)
	}

	if err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.storeRedirect(ctx, token, payment.ID, price, currency, result)
	}); err != nil {
		l.WithError(err).WithField("trans_id", result.TransID).Error("Failed to store payment redirect")
		return response.fail(userErrorRedirectNotSave)
	}

	l.WithFields(logrus.Fields{
		"order_id": order.ID,
		"trans_id": result.TransID,
	}).Info("Comgate payment initiated")

	response.Success = true
	response.TransactionID = &result.TransID
	response.RedirectURL = &result.Redirect
	return response
}

func (s *PaymentService) GetOrderPayment(ctx context.Context, token string) (*OrderPayment, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidRequest
	}

	order, err := s.orderRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	result := &OrderPayment{Order: order, Transactions: []*entity.PaymentTransaction{}}
	payment, err := s.paymentRepo.FindActiveByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return result, nil
	}
	result.Payment = payment

	transactions, err := s.txnRepo.ListByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	result.Transactions = transactions
	return result, nil
}

// openPayment returns the payment record the create call is made for. An
// unsettled active payment is superseded by a new one.
func (s *PaymentService) openPayment(ctx context.Context, order *entity.Order, price int64, currency, email string) (*entity.Payment, error) {
	now := s.now()
	active, err := s.paymentRepo.FindActiveByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.ChargeStatus == entity.ChargeStatusCaptured {
			return nil, ErrOrderAlreadyPaid
		}
		active.IsActive = false
		active.UpdatedAt = now
		if err := s.paymentRepo.Update(ctx, active); err != nil {
			return nil, err
		}
	}

	if email == "" {
		email = order.CustomerEmail
	}
	payment := &entity.Payment{
		OrderID:       order.ID,
		Token:         uuid.NewString(),
		Gateway:       gatewayName,
		TotalCents:    price,
		Currency:      currency,
		CustomerEmail: email,
		ChargeStatus:  entity.ChargeStatusNotCharged,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// storeRedirect runs under the order row lock. A webhook may already have
// settled the payment, in which case statuses are left as they are.
func (s *PaymentService) storeRedirect(
	ctx context.Context,
	token string,
	paymentID uint64,
	price int64,
	currency string,
	result *comgate.CreateResult,
) error {
	now := s.now()
	order, err := s.orderRepo.FindByTokenForUpdate(ctx, token)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	payment, err := s.paymentRepo.FindActiveByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	current := payment != nil && payment.ID == paymentID && !payment.Settled()

	if order.Metadata == nil {
		order.Metadata = map[string]string{}
	}
	order.Metadata[entity.MetadataRedirectURL] = result.Redirect
	order.Metadata[entity.MetadataTransactionID] = result.TransID
	if current && order.PaymentStatus != entity.OrderPaymentStatusCaptured {
		order.PaymentStatus = entity.OrderPaymentStatusPending
	}
	order.UpdatedAt = now
	if err := s.orderRepo.UpdatePaymentState(ctx, order); err != nil {
		return err
	}

	if current {
		if payment.PSPReference == nil {
			payment.PSPReference = &result.TransID
		}
		if payment.ChargeStatus == entity.ChargeStatusNotCharged {
			payment.ChargeStatus = entity.ChargeStatusPending
		}
		payment.UpdatedAt = now
		if err := s.paymentRepo.Update(ctx, payment); err != nil {
			return err
		}
	}

	raw := url.Values{"transId": {result.TransID}, "redirect": {result.Redirect}}.Encode()
	err = s.txnRepo.Create(ctx, &entity.PaymentTransaction{
		PaymentID:     paymentID,
		Kind:          entity.TransactionKindPending,
		IsSuccess:     true,
		AmountCents:   price,
		Currency:      currency,
		TransactionID: result.TransID,
		RawResponse:   &raw,
		CreatedAt:     now,
	})
	if err != nil && !errors.Is(err, repository.ErrTransactionAlreadyRecorded) {
		return err
	}

	pid := paymentID
	transID := result.TransID
	return s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:       order.ID,
		PaymentID:     &pid,
		EventType:     entity.OrderEventPaymentPending,
		TransactionID: &transID,
		CreatedAt:     now,
	})
}

func (s *PaymentService) recordInitiateFailure(ctx context.Context, order *entity.Order, payment *entity.Payment, cause error) {
	message := truncate(cause.Error(), 1024)
	paymentID := payment.ID
	if err := s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:   order.ID,
		PaymentID: &paymentID,
		EventType: entity.OrderEventPaymentFailed,
		Message:   &message,
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to record payment failure event")
	}
}

func (s *PaymentService) supportsCurrency(currency string) bool {
	for _, item := range s.currencies {
		if item == currency {
			return true
		}
	}
	return false
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
