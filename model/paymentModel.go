// model/payment.go
package model

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentGateway string

const (
	GatewayMidtrans PaymentGateway = "midtrans"
	GatewayDoku     PaymentGateway = "doku"
	GatewayManual   PaymentGateway = "manual"
)

// Payment is one attempt to collect money for a Booking. paid and failed
// are terminal; a retry creates a new row, it never reopens this one.
type Payment struct {
	ID          int64          `json:"id"`
	BookingID   int64          `json:"booking_id"`
	UserID      int64          `json:"user_id"`
	Amount      float64        `json:"amount"`
	Method      string         `json:"payment_method"`
	Gateway     PaymentGateway `json:"payment_gateway"`
	Status      PaymentStatus  `json:"status"`
	ExternalID  string         `json:"external_id"`
	RedirectURL *string        `json:"redirect_url,omitempty"`
	PaidAt      *time.Time     `json:"paid_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
