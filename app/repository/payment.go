package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-comgate/app/entity"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `id, order_id, token, gateway, total_cents, captured_cents, currency, customer_email,
			charge_status, is_active, psp_reference, created_at, updated_at`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			order_id, token, gateway, total_cents, captured_cents, currency, customer_email,
			charge_status, is_active, psp_reference, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		payment.OrderID,
		payment.Token,
		payment.Gateway,
		payment.TotalCents,
		payment.CapturedCents,
		payment.Currency,
		payment.CustomerEmail,
		payment.ChargeStatus,
		payment.IsActive,
		nullableStringValue(payment.PSPReference),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments SET
			total_cents = ?,
			captured_cents = ?,
			currency = ?,
			charge_status = ?,
			is_active = ?,
			psp_reference = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		payment.TotalCents,
		payment.CapturedCents,
		payment.Currency,
		payment.ChargeStatus,
		payment.IsActive,
		nullableStringValue(payment.PSPReference),
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) FindActiveByOrderID(ctx context.Context, orderID uint64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = ? AND is_active = TRUE
		ORDER BY id DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, orderID)
}

func (r *PaymentRepository) FindByPSPReference(ctx context.Context, orderID uint64, pspReference string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = ? AND psp_reference = ?
		ORDER BY id DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, orderID, pspReference)
}

func (r *PaymentRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Payment, error) {
	payment := &entity.Payment{}
	var pspReference sql.NullString

	err := conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Token,
		&payment.Gateway,
		&payment.TotalCents,
		&payment.CapturedCents,
		&payment.Currency,
		&payment.CustomerEmail,
		&payment.ChargeStatus,
		&payment.IsActive,
		&pspReference,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	payment.PSPReference = stringPtrFromNull(pspReference)
	return payment, nil
}
