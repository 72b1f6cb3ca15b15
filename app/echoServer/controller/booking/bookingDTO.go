package booking

type CreateBookingReq struct {
	SlotID      int64   `json:"slot_id" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=consultation treatment"`
	TotalAmount float64 `json:"total_amount" validate:"required,gt=0"`
	Notes       string  `json:"notes"`
}
