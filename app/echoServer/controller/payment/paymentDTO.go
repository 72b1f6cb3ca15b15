package payment

type InitiatePaymentReq struct {
	BookingID  int64  `json:"booking_id" validate:"required,gt=0"`
	Gateway    string `json:"payment_gateway" validate:"required,oneof=midtrans doku manual"`
	Method     string `json:"payment_method" validate:"required"`
	PayerEmail string `json:"payer_email" validate:"required,email"`
	PayerPhone string `json:"payer_phone"`
}
