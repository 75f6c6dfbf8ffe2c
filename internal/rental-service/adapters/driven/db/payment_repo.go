package db

import (
	"context"
	"errors"
	"time"

	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type PaymentRepo struct {
	db *DB
}

func NewPaymentRepo(db *DB) ports.IPaymentRepo {
	return &PaymentRepo{
		db: db,
	}
}

func (pr *PaymentRepo) CreatePending(ctx context.Context, p model.Payment) error {
	q := `INSERT INTO payments(
			id,
			booking_id,
			channel,
			amount,
			currency,
			type,
			status,
			created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := pr.db.pool.Exec(ctx, q,
		p.ID,
		p.BookingID,
		p.Channel,
		p.Amount,
		p.Currency,
		string(p.Type),
		string(p.Status),
		p.CreatedAt,
	)
	return err
}

func (pr *PaymentRepo) SetProviderRef(ctx context.Context, paymentId, providerRef string) error {
	q := `UPDATE payments SET provider_ref = $2 WHERE id = $1`

	_, err := pr.db.pool.Exec(ctx, q, paymentId, providerRef)
	return err
}

const paymentColumns = `id, booking_id, channel, COALESCE(ref, ''), COALESCE(provider_ref, ''), amount, currency, type, status, paid_ts, created_at`

func (pr *PaymentRepo) FindPendingByProviderRef(ctx context.Context, providerRef string) (model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref = $1 AND status = 'pending'`

	p, err := scanPayment(pr.db.pool.QueryRow(ctx, q, providerRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Payment{}, myerrors.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (pr *PaymentRepo) FindPendingByAmount(ctx context.Context, amount int64, limit int) ([]model.Payment, error) {
	q := `
	SELECT ` + paymentColumns + `
	FROM payments
	WHERE status = 'pending' AND amount = $1
	ORDER BY paid_ts DESC NULLS FIRST, created_at DESC
	LIMIT $2`

	rows, err := pr.db.pool.Query(ctx, q, amount, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Settle flips a pending payment to its terminal status. The status guard in
// the WHERE clause makes a duplicate callback delivery a zero-row no-op.
func (pr *PaymentRepo) Settle(ctx context.Context, paymentId string, status model.PaymentStatus, ref string, paidTs time.Time) (bool, error) {
	q := `UPDATE payments SET status = $2, ref = $3, paid_ts = $4 WHERE id = $1 AND status = 'pending'`

	tag, err := pr.db.pool.Exec(ctx, q, paymentId, string(status), ref, paidTs)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanPayment(row pgx.Row) (model.Payment, error) {
	p := model.Payment{}
	err := row.Scan(
		&p.ID, &p.BookingID, &p.Channel, &p.Ref, &p.ProviderRef,
		&p.Amount, &p.Currency, &p.Type, &p.Status, &p.PaidTs, &p.CreatedAt,
	)
	return p, err
}
