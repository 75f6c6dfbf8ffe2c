package messagebrokerdto

// BookingStatus is published on booking.status.<status> whenever a
// booking enters a new lifecycle state.
type BookingStatus struct {
	BookingId string `json:"booking_id"`
	Code      string `json:"code"`
	VehicleId string `json:"vehicle_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PaymentStatus is published on payment.status.<status> when a payment settles.
type PaymentStatus struct {
	PaymentId string `json:"payment_id"`
	BookingId string `json:"booking_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Ref       string `json:"ref"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
