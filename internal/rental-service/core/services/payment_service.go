package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"

	messagebrokerdto "car-hire/internal/rental-service/core/domain/message_broker_dto"

	"github.com/google/uuid"
)

const (
	ChannelMpesa = "mpesa"

	// how many pending candidates the amount fallback inspects
	pendingMatchLimit = 5
)

type PaymentService struct {
	mylog       mylogger.Logger
	PaymentRepo ports.IPaymentRepo
	BookingRepo ports.IBookingRepo
	CatalogRepo ports.ICatalogRepo
	Provider    ports.IPaymentProvider
	Broker      ports.IEventsBroker
	ctx         context.Context
}

func NewPaymentService(ctx context.Context,
	log mylogger.Logger,
	paymentRepo ports.IPaymentRepo,
	bookingRepo ports.IBookingRepo,
	catalogRepo ports.ICatalogRepo,
	provider ports.IPaymentProvider,
	broker ports.IEventsBroker,
) ports.IPaymentService {
	return &PaymentService{
		ctx:         ctx,
		mylog:       log,
		PaymentRepo: paymentRepo,
		BookingRepo: bookingRepo,
		CatalogRepo: catalogRepo,
		Provider:    provider,
		Broker:      broker,
	}
}

func (ps *PaymentService) InitiateDeposit(req dto.DepositInitiateRequestDto) (dto.DepositInitiateResponseDto, error) {
	log := ps.mylog.Action("InitiateDeposit")

	if req.BookingId == nil || *req.BookingId == "" {
		return dto.DepositInitiateResponseDto{}, fmt.Errorf("booking_id is required: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(ps.ctx, time.Second*15)
	defer cancel()

	b, err := ps.BookingRepo.FindById(ctx, *req.BookingId)
	if err != nil {
		if errors.Is(err, myerrors.ErrBookingNotFound) {
			return dto.DepositInitiateResponseDto{}, myerrors.ErrBookingNotFound
		}
		log.Error("cannot fetch booking", err, "booking_id", *req.BookingId)
		return dto.DepositInitiateResponseDto{}, err
	}
	rp, err := ps.CatalogRepo.FindRatePlanById(ctx, b.RatePlanID)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.DepositInitiateResponseDto{}, myerrors.ErrInvalidRatePlan
		}
		log.Error("cannot fetch rate plan", err, "rate_plan_id", b.RatePlanID)
		return dto.DepositInitiateResponseDto{}, err
	}
	cust, err := ps.BookingRepo.FindCustomerById(ctx, b.CustomerID)
	if err != nil {
		log.Error("cannot fetch customer", err, "customer_id", b.CustomerID)
		return dto.DepositInitiateResponseDto{}, err
	}

	amount := rp.DepositAmount
	if req.AmountOverride != nil {
		amount = *req.AmountOverride
	}
	if amount <= 0 {
		return dto.DepositInitiateResponseDto{}, myerrors.ErrInvalidAmount
	}

	phone := cust.PhoneE164
	if req.PhoneE164 != nil && *req.PhoneE164 != "" {
		phone = *req.PhoneE164
	}

	p := model.Payment{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		Channel:   ChannelMpesa,
		Amount:    amount,
		Currency:  Currency,
		Type:      model.PaymentDeposit,
		Status:    model.PaymentPending,
		CreatedAt: time.Now(),
	}
	if err := ps.PaymentRepo.CreatePending(ctx, p); err != nil {
		log.Error("cannot create pending payment", err, "booking_id", b.ID)
		return dto.DepositInitiateResponseDto{}, err
	}

	// The pending row is committed before the provider call: a provider
	// outage leaves it behind for operator follow-up instead of rolling back.
	ack, err := ps.Provider.RequestPayment(ctx, ports.StkPushRequest{
		PhoneE164:  phone,
		Amount:     amount,
		AccountRef: b.Code,
		BookingId:  b.ID,
	})
	if err != nil {
		log.Error("payment provider request failed", err, "payment_id", p.ID, "booking_id", b.ID)
		return dto.DepositInitiateResponseDto{}, fmt.Errorf("%w: %w", myerrors.ErrPaymentProvider, err)
	}

	// Persist the provider's request id so the callback can be matched
	// precisely instead of by amount alone.
	if err := ps.PaymentRepo.SetProviderRef(ctx, p.ID, ack.CheckoutRequestID); err != nil {
		log.Error("cannot persist provider ref, callback will fall back to amount matching", err,
			"payment_id", p.ID, "checkout_request_id", ack.CheckoutRequestID)
	}

	log.Info("deposit initiated", "payment_id", p.ID, "booking_id", b.ID,
		"amount", amount, "checkout_request_id", ack.CheckoutRequestID)

	return dto.DepositInitiateResponseDto{
		PaymentId:         p.ID,
		BookingId:         b.ID,
		CheckoutRequestId: ack.CheckoutRequestID,
		MerchantRequestId: ack.MerchantRequestID,
		Message:           "STK push initiated. Prompt will appear on phone.",
	}, nil
}

// HandleProviderCallback reconciles an asynchronous provider notification.
// The HTTP layer has already acknowledged the delivery; from here every
// failure is logged and discarded, never surfaced to the provider.
func (ps *PaymentService) HandleProviderCallback(body []byte) {
	log := ps.mylog.Action("HandleProviderCallback")

	var payload dto.ProviderCallbackDto
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("unparseable provider callback, discarding", "err", err.Error())
		return
	}
	stk := payload.Body.StkCallback
	if stk == nil {
		log.Warn("unknown provider callback shape, discarding")
		return
	}

	items := stk.Items()
	receipt := itemString(items, "MpesaReceiptNumber", "ReceiptNumber")
	amount := itemAmount(items, "Amount")
	phone := itemString(items, "PhoneNumber", "MSISDN")
	transTs := itemString(items, "TransactionDate")

	ctx, cancel := context.WithTimeout(ps.ctx, time.Second*15)
	defer cancel()

	p, err := ps.matchPending(ctx, stk.CheckoutRequestID, amount)
	if err != nil {
		log.Warn("no pending payment matched, manual reconciliation needed",
			"checkout_request_id", stk.CheckoutRequestID, "amount", amount, "receipt", receipt)
		return
	}

	isSuccess := stk.ResultCode == 0
	ref := receipt
	if ref == "" {
		ref = phone
	}

	if isSuccess {
		ok, err := ps.PaymentRepo.Settle(ctx, p.ID, model.PaymentSuccess, ref, time.Now())
		if err != nil {
			log.Error("cannot settle payment", err, "payment_id", p.ID)
			return
		}
		if !ok {
			log.Info("payment already settled, duplicate delivery ignored", "payment_id", p.ID)
			return
		}

		// a successful deposit confirms the booking, but only out of hold
		if p.Type == model.PaymentDeposit {
			confirmed, err := ps.BookingRepo.UpdateStatus(ctx, p.BookingID, model.BookingHold, model.BookingConfirmed)
			if err != nil {
				log.Error("cannot confirm booking after deposit", err, "booking_id", p.BookingID)
			} else if confirmed {
				if b, err := ps.BookingRepo.FindById(ctx, p.BookingID); err == nil {
					ps.publishBookingStatus(b)
				}
			}
		}

		log.Info("payment success", "payment_id", p.ID, "booking_id", p.BookingID,
			"ref", ref, "transaction_ts", transTs)
		ps.publishPaymentStatus(p, model.PaymentSuccess, ref)
		return
	}

	if ref == "" {
		ref = fmt.Sprintf("code_%d", stk.ResultCode)
	}
	ok, err := ps.PaymentRepo.Settle(ctx, p.ID, model.PaymentFailed, ref, time.Now())
	if err != nil {
		log.Error("cannot mark payment failed", err, "payment_id", p.ID)
		return
	}
	if !ok {
		log.Info("payment already settled, duplicate delivery ignored", "payment_id", p.ID)
		return
	}

	log.Warn("payment failed", "payment_id", p.ID, "booking_id", p.BookingID,
		"result_code", stk.ResultCode, "result_desc", stk.ResultDesc)
	ps.publishPaymentStatus(p, model.PaymentFailed, ref)
}

// matchPending prefers the provider's own request id; amount matching is the
// fallback for payloads that carry no checkout id or rows initiated before
// the ref could be stored.
func (ps *PaymentService) matchPending(ctx context.Context, checkoutRequestId string, amount int64) (model.Payment, error) {
	if checkoutRequestId != "" {
		p, err := ps.PaymentRepo.FindPendingByProviderRef(ctx, checkoutRequestId)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, myerrors.ErrNotFound) {
			return model.Payment{}, err
		}
	}

	candidates, err := ps.PaymentRepo.FindPendingByAmount(ctx, amount, pendingMatchLimit)
	if err != nil {
		return model.Payment{}, err
	}
	if len(candidates) == 0 {
		return model.Payment{}, myerrors.ErrNotFound
	}
	return candidates[0], nil
}

func (ps *PaymentService) publishBookingStatus(b model.Booking) {
	if ps.Broker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ps.ctx, time.Second*5)
	defer cancel()

	msg := messagebrokerdto.BookingStatus{
		BookingId: b.ID,
		Code:      b.Code,
		VehicleId: b.VehicleID,
		Status:    string(b.Status),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := ps.Broker.PublishBookingStatus(ctx, msg); err != nil {
		ps.mylog.Action("publishBookingStatus").Warn("failed to publish booking event", "booking_id", b.ID, "err", err.Error())
	}
}

func (ps *PaymentService) publishPaymentStatus(p model.Payment, status model.PaymentStatus, ref string) {
	if ps.Broker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ps.ctx, time.Second*5)
	defer cancel()

	msg := messagebrokerdto.PaymentStatus{
		PaymentId: p.ID,
		BookingId: p.BookingID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Ref:       ref,
		Status:    string(status),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := ps.Broker.PublishPaymentStatus(ctx, msg); err != nil {
		ps.mylog.Action("publishPaymentStatus").Warn("failed to publish payment event", "payment_id", p.ID, "err", err.Error())
	}
}

// Metadata values arrive untyped: receipts as strings, amounts and phone
// numbers as JSON numbers.
func itemString(items map[string]any, names ...string) string {
	for _, name := range names {
		switch v := items[name].(type) {
		case string:
			return v
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func itemAmount(items map[string]any, name string) int64 {
	switch v := items[name].(type) {
	case float64:
		return int64(v)
	case string:
		var n float64
		if _, err := fmt.Sscanf(v, "%f", &n); err == nil {
			return int64(n)
		}
	}
	return 0
}
