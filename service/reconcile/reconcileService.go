package reconcilesvc

import (
	"clinicpay/model"
	dokurepo "clinicpay/repository/doku"
	midtransrepo "clinicpay/repository/midtrans"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// errors used by the webhook controller

type ErrCode string

const (
	ErrBadSignature ErrCode = "BAD_SIGNATURE"
	ErrUnknownOrder ErrCode = "UNKNOWN_ORDER"
	ErrBadPayload   ErrCode = "BAD_PAYLOAD"
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

// Outcome is the internal translation of a provider's status vocabulary.
type Outcome int

const (
	OutcomeNone Outcome = iota // acknowledged, no state change
	OutcomePaid
	OutcomeFailed
)

// Explicit translation tables; a status missing here is OutcomeNone.
var midtransOutcomes = map[string]Outcome{
	"capture":    OutcomePaid,
	"settlement": OutcomePaid,
	"deny":       OutcomeFailed,
	"cancel":     OutcomeFailed,
	"expire":     OutcomeFailed,
}

var dokuOutcomes = map[string]Outcome{
	"SUCCESS": OutcomePaid,
	"FAILED":  OutcomeFailed,
	"EXPIRED": OutcomeFailed,
}

type PaymentRepo interface {
	FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
	MarkPaidAndConfirmBooking(ctx context.Context, paymentID int64, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, paymentID int64) (bool, error)
}

type Service interface {
	// HandleMidtrans processes a raw Midtrans HTTP notification body.
	HandleMidtrans(ctx context.Context, raw []byte) error

	// HandleDoku processes a raw DOKU notify body.
	HandleDoku(ctx context.Context, raw []byte) error

	// CheckPending asks the owning gateway for the current status of a
	// pending payment and applies the outcome. Returns whether state changed.
	CheckPending(ctx context.Context, p *model.Payment) (bool, error)
}

type service struct {
	repo PaymentRepo
	mid  midtransrepo.Repo
	doku dokurepo.Repo

	midServerKey  string
	dokuMallID    string
	dokuSharedKey string

	log *slog.Logger
}

func New(repo PaymentRepo, mid midtransrepo.Repo, doku dokurepo.Repo, midServerKey, dokuMallID, dokuSharedKey string, log *slog.Logger) Service {
	return &service{
		repo: repo, mid: mid, doku: doku,
		midServerKey: midServerKey, dokuMallID: dokuMallID, dokuSharedKey: dokuSharedKey,
		log: log,
	}
}

type midtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
}

func (s *service) HandleMidtrans(ctx context.Context, raw []byte) error {
	var n midtransNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return makeErr(ErrBadPayload)
	}
	if n.OrderID == "" || n.TransactionStatus == "" || n.SignatureKey == "" {
		return makeErr(ErrBadPayload)
	}

	// Only integrity check on inbound data; the sender is not a session user.
	if !midtransrepo.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, s.midServerKey, n.SignatureKey) {
		return makeErr(ErrBadSignature)
	}

	p, err := s.repo.FindByExternalID(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrUnknownOrder)
		}
		return err
	}

	if p.Gateway != model.GatewayMidtrans {
		s.log.Warn("midtrans notification for foreign payment", "order_id", n.OrderID, "gateway", p.Gateway)
		return makeErr(ErrUnknownOrder)
	}

	outcome, known := midtransOutcomes[n.TransactionStatus]
	if !known {
		s.log.Warn("unmapped midtrans status", "order_id", n.OrderID, "transaction_status", n.TransactionStatus)
		return nil
	}
	return s.apply(ctx, p, outcome)
}

type dokuNotification struct {
	TransIDMerchant string `json:"TRANSIDMERCHANT"`
	Amount          string `json:"AMOUNT"`
	Words           string `json:"WORDS"`
	ResultMsg       string `json:"RESULTMSG"`
}

func (s *service) HandleDoku(ctx context.Context, raw []byte) error {
	var n dokuNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return makeErr(ErrBadPayload)
	}
	if n.TransIDMerchant == "" || n.ResultMsg == "" || n.Words == "" {
		return makeErr(ErrBadPayload)
	}

	// Without a shared key every WORDS digest is reproducible from the
	// notification body alone, so an unconfigured gateway accepts nothing.
	if s.dokuSharedKey == "" || !dokurepo.VerifyWords(n.Amount, s.dokuMallID, s.dokuSharedKey, n.TransIDMerchant, n.Words) {
		return makeErr(ErrBadSignature)
	}

	p, err := s.repo.FindByExternalID(ctx, n.TransIDMerchant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrUnknownOrder)
		}
		return err
	}

	if p.Gateway != model.GatewayDoku {
		s.log.Warn("doku notification for foreign payment", "trans_id", n.TransIDMerchant, "gateway", p.Gateway)
		return makeErr(ErrUnknownOrder)
	}

	outcome, known := dokuOutcomes[n.ResultMsg]
	if !known {
		s.log.Warn("unmapped doku result", "trans_id", n.TransIDMerchant, "result_msg", n.ResultMsg)
		return nil
	}
	return s.apply(ctx, p, outcome)
}

func (s *service) CheckPending(ctx context.Context, p *model.Payment) (bool, error) {
	if p.Status != model.PaymentPending {
		return false, nil
	}

	var outcome Outcome
	switch p.Gateway {
	case model.GatewayMidtrans:
		st, err := s.mid.GetStatus(ctx, p.ExternalID)
		if err != nil {
			return false, err
		}
		outcome = midtransOutcomes[st.TransactionStatus]
	case model.GatewayDoku:
		st, err := s.doku.GetStatus(ctx, p.ExternalID)
		if err != nil {
			return false, err
		}
		outcome = dokuOutcomes[st.ResultMsg]
	default:
		// manual payments converge by staff action, not provider polling
		return false, nil
	}

	if outcome == OutcomeNone {
		return false, nil
	}
	if err := s.apply(ctx, p, outcome); err != nil {
		return false, err
	}
	return true, nil
}

// apply is the single transition point pending->paid / pending->failed.
// Both push (webhooks) and pull (poll, sweep) end here.
func (s *service) apply(ctx context.Context, p *model.Payment, outcome Outcome) error {
	switch outcome {
	case OutcomePaid:
		changed, err := s.repo.MarkPaidAndConfirmBooking(ctx, p.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			s.log.Info("payment already terminal, notification ignored", "payment_id", p.ID)
			return nil
		}
		s.log.Info("payment paid, booking confirmed", "payment_id", p.ID, "booking_id", p.BookingID)
	case OutcomeFailed:
		changed, err := s.repo.MarkFailed(ctx, p.ID)
		if err != nil {
			return err
		}
		if !changed {
			s.log.Info("payment already terminal, notification ignored", "payment_id", p.ID)
			return nil
		}
		s.log.Info("payment failed, booking left pending", "payment_id", p.ID, "booking_id", p.BookingID)
	}
	return nil
}
