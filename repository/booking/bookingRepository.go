package bookingrepo

import (
	"clinicpay/model"
	"context"
	"database/sql"
)

type Repo interface {
	Insert(ctx context.Context, b *model.Booking) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, b *model.Booking) (int64, error) {
	const q = `
INSERT INTO bookings (user_id, slot_id, type, status, total_amount, notes)
VALUES ($1,$2,$3,'pending',$4,$5)
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, b.UserID, b.SlotID, b.Type, b.TotalAmount, b.Notes).Scan(&id)
	return id, err
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	const q = `
SELECT id, user_id, slot_id, type, status, total_amount, notes, created_at, updated_at
FROM bookings
WHERE id=$1`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.SlotID, &b.Type, &b.Status, &b.TotalAmount, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
