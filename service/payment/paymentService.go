package paymentsvc

import (
	"clinicpay/model"
	dokurepo "clinicpay/repository/doku"
	midtransrepo "clinicpay/repository/midtrans"
	paymentrepo "clinicpay/repository/payment"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookingNotFound    ErrCode = "BOOKING_NOT_FOUND"
	ErrPaymentNotFound    ErrCode = "PAYMENT_NOT_FOUND"
	ErrNotOwner           ErrCode = "NOT_OWNER"
	ErrBookingNotPending  ErrCode = "BOOKING_NOT_PENDING"
	ErrPendingExists      ErrCode = "PENDING_EXISTS"
	ErrGatewayUnavailable ErrCode = "GATEWAY_UNAVAILABLE"
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

// dto

type InitiateReq struct {
	BookingID  int64
	Gateway    model.PaymentGateway
	Method     string
	PayerEmail string
	PayerPhone string
}

type Initiated struct {
	PaymentID   int64
	ExternalID  string
	Status      model.PaymentStatus
	RedirectURL string
}

type BookingRepo interface {
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
}

type PaymentRepo interface {
	InsertPending(ctx context.Context, p *model.Payment) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
}

// Reconciler is the pull-path hook; push and pull converge on the same
// transition logic in the reconcile service.
type Reconciler interface {
	CheckPending(ctx context.Context, p *model.Payment) (bool, error)
}

type Service interface {
	// Initiate opens a hosted payment session and records the pending
	// attempt. The row is inserted only after the gateway confirms, so a
	// provider failure leaves nothing behind.
	Initiate(ctx context.Context, userID int64, req InitiateReq) (*Initiated, error)

	// Status returns the payment for client polling, first converging a
	// still-pending gateway payment through the reconciler.
	Status(ctx context.Context, userID, paymentID int64) (*model.Payment, error)
}

type service struct {
	b   BookingRepo
	p   PaymentRepo
	mid midtransrepo.Repo
	dok dokurepo.Repo
	rec Reconciler
}

func New(b BookingRepo, p PaymentRepo, mid midtransrepo.Repo, dok dokurepo.Repo, rec Reconciler) Service {
	return &service{b: b, p: p, mid: mid, dok: dok, rec: rec}
}

func (s *service) Initiate(ctx context.Context, userID int64, req InitiateReq) (*Initiated, error) {
	booking, err := s.b.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookingNotFound)
		}
		return nil, err
	}
	if booking.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	if booking.Status != model.BookingPending {
		return nil, makeErr(ErrBookingNotPending)
	}
	if booking.TotalAmount <= 0 {
		return nil, fmt.Errorf("booking %d has non-positive amount", booking.ID)
	}

	orderID := newOrderID(booking.ID)

	var redirect *string
	switch req.Gateway {
	case model.GatewayMidtrans:
		resp, gerr := s.mid.CreateTransaction(ctx, midtransrepo.CreateTransactionReq{
			OrderID:    orderID,
			Amount:     booking.TotalAmount,
			PayerEmail: req.PayerEmail,
			PayerPhone: req.PayerPhone,
		})
		if gerr != nil {
			return nil, makeErr(ErrGatewayUnavailable)
		}
		redirect = &resp.RedirectURL
	case model.GatewayDoku:
		resp, gerr := s.dok.CreatePayment(ctx, dokurepo.CreatePaymentReq{
			TransID:    orderID,
			Amount:     fmt.Sprintf("%.2f", booking.TotalAmount),
			PayerEmail: req.PayerEmail,
		})
		if gerr != nil {
			return nil, makeErr(ErrGatewayUnavailable)
		}
		redirect = &resp.PaymentURL
	case model.GatewayManual:
		// settled at the front desk; nothing to open at a provider
	default:
		return nil, fmt.Errorf("unknown gateway %q", req.Gateway)
	}

	payment := &model.Payment{
		BookingID:   booking.ID,
		UserID:      userID,
		Amount:      booking.TotalAmount,
		Method:      req.Method,
		Gateway:     req.Gateway,
		ExternalID:  orderID,
		RedirectURL: redirect,
	}
	id, err := s.p.InsertPending(ctx, payment)
	if err != nil {
		if errors.Is(err, paymentrepo.ErrPendingExists) {
			return nil, makeErr(ErrPendingExists)
		}
		return nil, err
	}

	out := &Initiated{PaymentID: id, ExternalID: orderID, Status: model.PaymentPending}
	if redirect != nil {
		out.RedirectURL = *redirect
	}
	return out, nil
}

func (s *service) Status(ctx context.Context, userID, paymentID int64) (*model.Payment, error) {
	p, err := s.p.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrPaymentNotFound)
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}

	if p.Status == model.PaymentPending && p.Gateway != model.GatewayManual {
		changed, cerr := s.rec.CheckPending(ctx, p)
		if cerr != nil {
			// provider unreachable: the poll answers with last known state
			return p, nil
		}
		if changed {
			return s.p.GetByID(ctx, paymentID)
		}
	}
	return p, nil
}

// newOrderID builds a process-unique order identifier: time component plus
// random suffix so concurrent initiations cannot collide.
func newOrderID(bookingID int64) string {
	return fmt.Sprintf("clinic-%d-%d-%s", bookingID, time.Now().UnixNano(), uuid.NewString()[:8])
}
