package ports

import "context"

// StkPushRequest asks the provider to prompt the payer's phone for a payment.
type StkPushRequest struct {
	PhoneE164  string
	Amount     int64
	AccountRef string // booking code, truncated by the adapter to the provider limit
	BookingId  string
}

// StkPushAck is the provider's synchronous acknowledgment. CheckoutRequestID
// is the correlation key persisted against the pending payment.
type StkPushAck struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

type IPaymentProvider interface {
	RequestPayment(ctx context.Context, req StkPushRequest) (StkPushAck, error)
}
