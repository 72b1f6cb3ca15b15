package bookingsvc

import (
	"clinicpay/model"
	"context"
	"database/sql"
	"errors"
)

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrNotOwner ErrCode = "NOT_OWNER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type CreateReq struct {
	SlotID      int64
	Type        model.BookingType
	TotalAmount float64
	Notes       string
}

type Detail struct {
	Booking  *model.Booking  `json:"booking"`
	Payments []model.Payment `json:"payments"`
}

type Repo interface {
	Insert(ctx context.Context, b *model.Booking) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
}

type PaymentLister interface {
	ListByBooking(ctx context.Context, bookingID int64) ([]model.Payment, error)
}

type Service interface {
	Create(ctx context.Context, userID int64, req CreateReq) (*model.Booking, error)
	Get(ctx context.Context, userID, id int64) (*Detail, error)
}

type service struct {
	r  Repo
	pl PaymentLister
}

func New(r Repo, pl PaymentLister) Service { return &service{r: r, pl: pl} }

func (s *service) Create(ctx context.Context, userID int64, req CreateReq) (*model.Booking, error) {
	if req.Type != model.BookingConsultation && req.Type != model.BookingTreatment {
		return nil, errors.New("invalid booking type")
	}
	if req.SlotID <= 0 {
		return nil, errors.New("invalid slot")
	}
	if req.TotalAmount <= 0 {
		return nil, errors.New("invalid amount")
	}

	b := &model.Booking{
		UserID:      userID,
		SlotID:      req.SlotID,
		Type:        req.Type,
		Status:      model.BookingPending,
		TotalAmount: req.TotalAmount,
	}
	if req.Notes != "" {
		b.Notes = &req.Notes
	}

	id, err := s.r.Insert(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return b, nil
}

func (s *service) Get(ctx context.Context, userID, id int64) (*Detail, error) {
	b, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}

	payments, err := s.pl.ListByBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Booking: b, Payments: payments}, nil
}
