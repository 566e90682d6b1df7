package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-comgate/app/entity"
)

// ErrTransactionAlreadyRecorded is returned when the same gateway transaction
// was already stored for the payment and kind.
var ErrTransactionAlreadyRecorded = errors.New("transaction already recorded")

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, item *entity.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			payment_id, kind, is_success, amount_cents, currency, transaction_id, error, raw_response, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		item.PaymentID,
		item.Kind,
		item.IsSuccess,
		item.AmountCents,
		item.Currency,
		item.TransactionID,
		nullableStringValue(item.Error),
		nullableStringValue(item.RawResponse),
		item.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrTransactionAlreadyRecorded
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

func (r *TransactionRepository) ListByPaymentID(ctx context.Context, paymentID uint64) ([]*entity.PaymentTransaction, error) {
	query := `
		SELECT id, payment_id, kind, is_success, amount_cents, currency, transaction_id, error, raw_response, created_at
		FROM payment_transactions
		WHERE payment_id = ?
		ORDER BY id ASC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.PaymentTransaction, 0)
	for rows.Next() {
		item, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanTransaction(scan rowScanner) (*entity.PaymentTransaction, error) {
	item := &entity.PaymentTransaction{}
	var errMessage sql.NullString
	var rawResponse sql.NullString

	if err := scan.Scan(
		&item.ID,
		&item.PaymentID,
		&item.Kind,
		&item.IsSuccess,
		&item.AmountCents,
		&item.Currency,
		&item.TransactionID,
		&errMessage,
		&rawResponse,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	item.Error = stringPtrFromNull(errMessage)
	item.RawResponse = stringPtrFromNull(rawResponse)
	return item, nil
}
