package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-comgate/app/entity"
)

var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `id, token, customer_email, total_cents, currency, payment_status, metadata_json, created_at, updated_at`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByToken(ctx context.Context, token string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE token = ? LIMIT 1`
	return r.findOne(ctx, query, token)
}

// FindByTokenForUpdate locks the order row until the surrounding transaction
// ends. Outside of a transaction the lock is released immediately.
func (r *OrderRepository) FindByTokenForUpdate(ctx context.Context, token string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE token = ? LIMIT 1 FOR UPDATE`
	return r.findOne(ctx, query, token)
}

func (r *OrderRepository) UpdatePaymentState(ctx context.Context, order *entity.Order) error {
	metadataJSON, err := serializeMetadata(order.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders SET
			payment_status = ?,
			metadata_json = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		order.PaymentStatus,
		metadataJSON,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Order, error) {
	order := &entity.Order{}
	var metadataJSON string

	err := conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(
		&order.ID,
		&order.Token,
		&order.CustomerEmail,
		&order.TotalCents,
		&order.Currency,
		&order.PaymentStatus,
		&metadataJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	metadata, err := parseMetadata(metadataJSON)
	if err != nil {
		return nil, err
	}
	order.Metadata = metadata

	return order, nil
}
