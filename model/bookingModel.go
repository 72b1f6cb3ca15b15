// model/booking.go
package model

import "time"

type BookingType string

const (
	BookingConsultation BookingType = "consultation"
	BookingTreatment    BookingType = "treatment"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

// Booking is a customer's reservation of a slot. TotalAmount is fixed at
// creation; the payment flow only ever moves Status.
type Booking struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	SlotID      int64         `json:"slot_id"`
	Type        BookingType   `json:"type"`
	Status      BookingStatus `json:"status"`
	TotalAmount float64       `json:"total_amount"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
