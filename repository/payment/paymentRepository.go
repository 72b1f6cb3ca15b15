package paymentrepo

import (
	"clinicpay/model"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrPendingExists maps the partial unique index payments_one_pending_per_booking:
// a booking may carry at most one non-terminal payment attempt.
var ErrPendingExists = errors.New("pending payment already exists for booking")

type Repo interface {
	InsertPending(ctx context.Context, p *model.Payment) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]model.Payment, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]model.Payment, error)

	// MarkPaidAndConfirmBooking moves the payment pending->paid and, in the
	// same transaction, the owning booking pending->confirmed. Returns false
	// when the payment was already terminal (nothing changed).
	MarkPaidAndConfirmBooking(ctx context.Context, paymentID int64, paidAt time.Time) (bool, error)

	// MarkFailed moves the payment pending->failed. The booking is left
	// untouched so the customer can retry with a new payment.
	MarkFailed(ctx context.Context, paymentID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const paymentCols = `id, booking_id, user_id, amount, payment_method, payment_gateway, status, external_id, redirect_url, paid_at, created_at`

func (r *repo) InsertPending(ctx context.Context, p *model.Payment) (int64, error) {
	const q = `
INSERT INTO payments (booking_id, user_id, amount, payment_method, payment_gateway, status, external_id, redirect_url)
VALUES ($1,$2,$3,$4,$5,'pending',$6,$7)
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		p.BookingID, p.UserID, p.Amount, p.Method, p.Gateway, p.ExternalID, p.RedirectURL,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrPendingExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE external_id=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, externalID))
}

func (r *repo) ListByBooking(ctx context.Context, bookingID int64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE booking_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, q, bookingID)
}

func (r *repo) ListStalePending(ctx context.Context, olderThan time.Time) ([]model.Payment, error) {
	const q = `
SELECT ` + paymentCols + `
FROM payments
WHERE status='pending' AND payment_gateway <> 'manual' AND created_at < $1
ORDER BY created_at`
	return r.list(ctx, q, olderThan)
}

func (r *repo) MarkPaidAndConfirmBooking(ctx context.Context, paymentID int64, paidAt time.Time) (changed bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Conditional update is the concurrency control: two racing
	// notifications cannot both see rows affected.
	const qPay = `
UPDATE payments
SET status='paid', paid_at=$2
WHERE id=$1 AND status='pending'`
	res, err := tx.ExecContext(ctx, qPay, paymentID, paidAt)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	const qBooking = `
UPDATE bookings
SET status='confirmed', updated_at=now()
WHERE id=(SELECT booking_id FROM payments WHERE id=$1) AND status='pending'`
	if _, err = tx.ExecContext(ctx, qBooking, paymentID); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) MarkFailed(ctx context.Context, paymentID int64) (bool, error) {
	const q = `
UPDATE payments
SET status='failed'
WHERE id=$1 AND status='pending'`
	res, err := r.db.ExecContext(ctx, q, paymentID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) scanOne(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.UserID, &p.Amount, &p.Method, &p.Gateway,
		&p.Status, &p.ExternalID, &p.RedirectURL, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) list(ctx context.Context, q string, arg any) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(
			&p.ID, &p.BookingID, &p.UserID, &p.Amount, &p.Method, &p.Gateway,
			&p.Status, &p.ExternalID, &p.RedirectURL, &p.PaidAt, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
