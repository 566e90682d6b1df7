package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-comgate/app/comgate"
	"github.com/vibast-solutions/ms-go-comgate/app/entity"
	"github.com/vibast-solutions/ms-go-comgate/app/repository"
)

type handleStatusNotificationRequest interface {
	GetPayload() string
}

// WebhookResult describes what a status notification did. Response is set
// for capture and cancel notifications that reached an order.
type WebhookResult struct {
	Outcome  int32
	OrderID  uint64
	Response *GatewayResponse

	reason string
}

// HandleStatusNotification applies a gateway status callback. Malformed bodies
// and unknown statuses are ignored without error; forged callbacks return
// ErrCallbackRejected and unknown orders ErrOrderNotFound.
func (s *PaymentService) HandleStatusNotification(ctx context.Context, req handleStatusNotificationRequest) (*WebhookResult, error) {
	payload := req.GetPayload()

	notification, err := comgate.ParseStatusNotification(payload)
	if err != nil {
		s.logger.WithError(err).Warn("Ignoring malformed Comgate notification")
		s.recordDelivery(ctx, nil, nil, payload, entity.WebhookOutcomeIgnored, err.Error())
		return &WebhookResult{Outcome: entity.WebhookOutcomeIgnored}, nil
	}

	l := s.logger.WithFields(logrus.Fields{
		"ref_id":   notification.RefID,
		"trans_id": notification.TransID,
		"status":   notification.Status,
	})

	if !s.authentic(notification) {
		l.Warn("Rejecting Comgate notification with invalid credentials")
		s.recordDelivery(ctx, nil, notification, payload, entity.WebhookOutcomeRejected, "secret or merchant mismatch")
		return nil, ErrCallbackRejected
	}

	kind := notificationKind(notification.Status)
	result := &WebhookResult{Outcome: entity.WebhookOutcomeIgnored}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindByTokenForUpdate(ctx, notification.RefID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		result.OrderID = order.ID
		if kind == "" {
			return nil
		}
		return s.applyNotification(ctx, order, notification, kind, payload, result)
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			l.Warn("Comgate notification for unknown order")
			s.recordDelivery(ctx, nil, notification, payload, entity.WebhookOutcomeRejected, "order not found")
			return nil, ErrOrderNotFound
		}
		l.WithError(err).Error("Failed to apply Comgate notification")
		return nil, err
	}

	orderID := result.OrderID
	message := result.reason
	if kind == "" {
		message = "unhandled status"
	}
	s.recordDelivery(ctx, &orderID, notification, payload, result.Outcome, message)

	l.WithFields(logrus.Fields{
		"order_id": orderID,
		"outcome":  result.Outcome,
	}).Info("Comgate notification handled")
	return result, nil
}

func (s *PaymentService) applyNotification(
	ctx context.Context,
	order *entity.Order,
	notification *comgate.StatusNotification,
	kind string,
	payload string,
	result *WebhookResult,
) error {
	now := s.now()
	payment, err := s.resolvePayment(ctx, order, notification)
	if err != nil {
		return err
	}
	if payment == nil {
		result.reason = "no matching payment"
		return nil
	}

	currency := notification.Currency
	if currency == "" {
		currency = payment.Currency
	}
	transID := notification.TransID
	response := &GatewayResponse{
		Success:       true,
		Kind:          kind,
		Amount:        fromMinorUnits(notification.Price),
		Currency:      currency,
		TransactionID: &transID,
	}
	result.Response = response

	failure := ""
	switch {
	case payment.Settled():
		failure = "payment already settled"
	case kind == entity.TransactionKindCapture && notification.Price != payment.TotalCents:
		failure = "amount mismatch"
	}

	txn := &entity.PaymentTransaction{
		PaymentID:     payment.ID,
		Kind:          kind,
		IsSuccess:     failure == "",
		AmountCents:   notification.Price,
		Currency:      currency,
		TransactionID: transID,
		CreatedAt:     now,
	}
	if failure != "" {
		txn.Error = &failure
	}
	redacted := comgate.RedactSecret(payload)
	txn.RawResponse = &redacted

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrTransactionAlreadyRecorded) {
			result.Outcome = entity.WebhookOutcomeDuplicate
			return nil
		}
		return err
	}
	if failure != "" {
		response.Success = false
		response.Error = &failure
		result.reason = failure
		result.Outcome = entity.WebhookOutcomeIgnored
		return nil
	}

	// Only the current payment of an order that is still open moves the order.
	// A superseded payment settles on its own row.
	orderOpen := order.PaymentStatus != entity.OrderPaymentStatusCaptured &&
		order.PaymentStatus != entity.OrderPaymentStatusCanceled
	current := payment.IsActive

	eventType := entity.OrderEventPaymentCaptured
	switch kind {
	case entity.TransactionKindCapture:
		payment.ChargeStatus = entity.ChargeStatusCaptured
		payment.CapturedCents = notification.Price
		if orderOpen {
			order.PaymentStatus = entity.OrderPaymentStatusCaptured
		}
	case entity.TransactionKindCancel:
		payment.ChargeStatus = entity.ChargeStatusCanceled
		payment.IsActive = false
		if orderOpen && current {
			order.PaymentStatus = entity.OrderPaymentStatusCanceled
		}
		eventType = entity.OrderEventPaymentCanceled
	}
	if payment.PSPReference == nil && transID != "" {
		payment.PSPReference = &transID
	}
	payment.UpdatedAt = now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return err
	}

	order.UpdatedAt = now
	if err := s.orderRepo.UpdatePaymentState(ctx, order); err != nil {
		return err
	}

	paymentID := payment.ID
	if err := s.eventRepo.Create(ctx, &entity.OrderEvent{
		OrderID:       order.ID,
		PaymentID:     &paymentID,
		EventType:     eventType,
		TransactionID: &transID,
		CreatedAt:     now,
	}); err != nil {
		return err
	}

	result.Outcome = entity.WebhookOutcomeProcessed
	return nil
}

// resolvePayment finds the payment created for the notified gateway
// transaction. The active payment matches only while its gateway reference is
// not stored yet, which covers callbacks racing the create call. Nil means the
// notification belongs to no payment of this order.
func (s *PaymentService) resolvePayment(ctx context.Context, order *entity.Order, notification *comgate.StatusNotification) (*entity.Payment, error) {
	if notification.TransID == "" {
		return nil, nil
	}

	payment, err := s.paymentRepo.FindByPSPReference(ctx, order.ID, notification.TransID)
	if err != nil || payment != nil {
		return payment, err
	}

	active, err := s.paymentRepo.FindActiveByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if active == nil || active.Settled() || active.PSPReference != nil {
		return nil, nil
	}
	return active, nil
}

func (s *PaymentService) authentic(notification *comgate.StatusNotification) bool {
	secretOK := subtle.ConstantTimeCompare([]byte(notification.Secret), []byte(s.comgateCfg.Secret)) == 1
	merchantOK := subtle.ConstantTimeCompare([]byte(notification.Merchant), []byte(s.comgateCfg.Merchant)) == 1
	return secretOK && merchantOK
}

func (s *PaymentService) recordDelivery(
	ctx context.Context,
	orderID *uint64,
	notification *comgate.StatusNotification,
	payload string,
	outcome int32,
	reason string,
) {
	delivery := &entity.WebhookDelivery{
		OrderID:   orderID,
		Payload:   comgate.RedactSecret(payload),
		Outcome:   outcome,
		CreatedAt: s.now(),
	}
	if notification != nil {
		delivery.RefID = notification.RefID
		delivery.TransactionID = notification.TransID
		delivery.Status = notification.Status
	}
	if outcome == entity.WebhookOutcomeDuplicate {
		reason = "duplicate notification"
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		trimmed := truncate(reason, 1024)
		delivery.Error = &trimmed
	}
	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		s.logger.WithError(err).Warn("Failed to record webhook delivery")
	}
}

func notificationKind(status string) string {
	switch status {
	case comgate.StatusPaid:
		return entity.TransactionKindCapture
	case comgate.StatusCanceled, comgate.StatusCancelled:
		return entity.TransactionKindCancel
	default:
		return ""
	}
}
