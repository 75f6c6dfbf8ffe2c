package dto

type DepositInitiateRequestDto struct {
	BookingId      *string `json:"booking_id"`
	PhoneE164      *string `json:"phone_e164,omitempty"`
	AmountOverride *int64  `json:"amount_override,omitempty"`
}

type DepositInitiateResponseDto struct {
	PaymentId         string `json:"payment_id"`
	BookingId         string `json:"booking_id"`
	CheckoutRequestId string `json:"checkout_request_id"`
	MerchantRequestId string `json:"merchant_request_id"`
	Message           string `json:"message"`
}

// ProviderCallbackDto is the raw webhook body. The provider's shapes are
// loosely structured; only the STK callback is recognized. Anything else
// decodes with StkCallback == nil and is discarded by the caller.
type ProviderCallbackDto struct {
	Body struct {
		StkCallback *StkCallbackDto `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallbackDto struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []CallbackItemDto `json:"Item"`
	} `json:"CallbackMetadata"`
}

type CallbackItemDto struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// Items flattens the metadata list into a name -> value map.
func (c *StkCallbackDto) Items() map[string]any {
	items := make(map[string]any, len(c.CallbackMetadata.Item))
	for _, it := range c.CallbackMetadata.Item {
		items[it.Name] = it.Value
	}
	return items
}
