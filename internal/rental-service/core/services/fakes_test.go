package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"
)

func testLogger(t *testing.T) mylogger.Logger {
	t.Helper()
	log, err := mylogger.New("test", mylogger.LevelError)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeBookingRepo mirrors the store semantics the service relies on: the
// overlap check and the inserts happen under one lock, status updates are
// compare-and-set, and inspections are unique per booking and phase.
type fakeBookingRepo struct {
	mu          sync.Mutex
	bookings    map[string]model.Booking
	customers   map[string]model.Customer
	vehicles    map[string]model.Vehicle
	inspections map[string][]model.Inspection
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:    map[string]model.Booking{},
		customers:   map[string]model.Customer{},
		vehicles:    map[string]model.Vehicle{},
		inspections: map[string][]model.Inspection{},
	}
}

func (f *fakeBookingRepo) CreateHold(ctx context.Context, cust model.Customer, b model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ex := range f.bookings {
		if strings.EqualFold(ex.Code, b.Code) {
			return myerrors.ErrCodeCollision
		}
	}
	for _, ex := range f.bookings {
		if ex.VehicleID != b.VehicleID {
			continue
		}
		if !isBlocking(ex.Status) {
			continue
		}
		if b.StartTs.Before(ex.EndTs) && b.EndTs.After(ex.StartTs) {
			return myerrors.ErrVehicleUnavailable
		}
	}

	f.customers[cust.ID] = cust
	f.bookings[b.ID] = b
	return nil
}

func isBlocking(s model.BookingStatus) bool {
	for _, blocking := range model.BlockingStatuses() {
		if s == blocking {
			return true
		}
	}
	return false
}

func (f *fakeBookingRepo) IsVehicleFree(ctx context.Context, vehicleId string, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ex := range f.bookings {
		if ex.VehicleID == vehicleId && isBlocking(ex.Status) &&
			start.Before(ex.EndTs) && end.After(ex.StartTs) {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeBookingRepo) FindById(ctx context.Context, bookingId string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[bookingId]
	if !ok {
		return model.Booking{}, myerrors.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) FindByCode(ctx context.Context, code string) (model.Booking, model.Customer, model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if strings.EqualFold(b.Code, code) {
			return b, f.customers[b.CustomerID], f.vehicles[b.VehicleID], nil
		}
	}
	return model.Booking{}, model.Customer{}, model.Vehicle{}, myerrors.ErrNotFound
}

func (f *fakeBookingRepo) FindCustomerById(ctx context.Context, customerId string) (model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cust, ok := f.customers[customerId]
	if !ok {
		return model.Customer{}, myerrors.ErrNotFound
	}
	return cust, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingId string, from, to model.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[bookingId]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	f.bookings[bookingId] = b
	return true, nil
}

func (f *fakeBookingRepo) RecordHandover(ctx context.Context, insp model.Inspection, from, to model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[insp.BookingID]
	if !ok {
		return myerrors.ErrBookingNotFound
	}
	if b.Status != from {
		return myerrors.ErrInvalidStateTransition
	}
	for _, ex := range f.inspections[insp.BookingID] {
		if ex.Phase == insp.Phase {
			return myerrors.ErrInvalidStateTransition
		}
	}

	b.Status = to
	f.bookings[insp.BookingID] = b
	f.inspections[insp.BookingID] = append(f.inspections[insp.BookingID], insp)
	return nil
}

type fakeCatalogRepo struct {
	mu       sync.Mutex
	plans    map[string]model.RatePlan
	vehicles map[string]model.Vehicle
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		plans:    map[string]model.RatePlan{},
		vehicles: map[string]model.Vehicle{},
	}
}

func (f *fakeCatalogRepo) CreateRatePlan(ctx context.Context, rp model.RatePlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[rp.ID] = rp
	return nil
}

func (f *fakeCatalogRepo) ListRatePlans(ctx context.Context) ([]model.RatePlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plans := make([]model.RatePlan, 0, len(f.plans))
	for _, rp := range f.plans {
		plans = append(plans, rp)
	}
	return plans, nil
}

func (f *fakeCatalogRepo) FindRatePlanById(ctx context.Context, ratePlanId string) (model.RatePlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rp, ok := f.plans[ratePlanId]
	if !ok {
		return model.RatePlan{}, myerrors.ErrNotFound
	}
	return rp, nil
}

func (f *fakeCatalogRepo) ToggleRatePlan(ctx context.Context, ratePlanId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rp, ok := f.plans[ratePlanId]
	if !ok {
		return false, myerrors.ErrNotFound
	}
	rp.Active = !rp.Active
	f.plans[ratePlanId] = rp
	return rp.Active, nil
}

func (f *fakeCatalogRepo) CreateVehicle(ctx context.Context, v model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.vehicles {
		if ex.Plate == v.Plate {
			return myerrors.ErrPlateRegistered
		}
	}
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeCatalogRepo) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicles := make([]model.Vehicle, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

func (f *fakeCatalogRepo) FindVehicleById(ctx context.Context, vehicleId string) (model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[vehicleId]
	if !ok {
		return model.Vehicle{}, myerrors.ErrNotFound
	}
	return v, nil
}

type fakePaymentRepo struct {
	mu          sync.Mutex
	payments    map[string]model.Payment
	failRefSave bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: map[string]model.Payment{},
	}
}

func (f *fakePaymentRepo) CreatePending(ctx context.Context, p model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = p
	return nil
}

func (f *fakePaymentRepo) SetProviderRef(ctx context.Context, paymentId, providerRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRefSave {
		return context.DeadlineExceeded
	}
	p := f.payments[paymentId]
	p.ProviderRef = providerRef
	f.payments[paymentId] = p
	return nil
}

func (f *fakePaymentRepo) FindPendingByProviderRef(ctx context.Context, providerRef string) (model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ProviderRef == providerRef && p.Status == model.PaymentPending {
			return p, nil
		}
	}
	return model.Payment{}, myerrors.ErrNotFound
}

func (f *fakePaymentRepo) FindPendingByAmount(ctx context.Context, amount int64, limit int) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []model.Payment
	for _, p := range f.payments {
		if p.Status == model.PaymentPending && p.Amount == amount {
			res = append(res, p)
		}
	}
	// newest pending first, matching the store's created_at tiebreaker
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (f *fakePaymentRepo) Settle(ctx context.Context, paymentId string, status model.PaymentStatus, ref string, paidTs time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentId]
	if !ok || p.Status != model.PaymentPending {
		return false, nil
	}
	p.Status = status
	p.Ref = ref
	p.PaidTs = &paidTs
	f.payments[paymentId] = p
	return true, nil
}

type fakeProvider struct {
	mu      sync.Mutex
	ack     ports.StkPushAck
	err     error
	lastReq ports.StkPushRequest
	calls   int
}

func (f *fakeProvider) RequestPayment(ctx context.Context, req ports.StkPushRequest) (ports.StkPushAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	f.calls++
	if f.err != nil {
		return ports.StkPushAck{}, f.err
	}
	return f.ack, nil
}
