package ports

import (
	"context"
	"time"

	"car-hire/internal/rental-service/core/domain/model"
)

type IBookingRepo interface {
	// CreateHold inserts the customer and the hold booking as one transaction.
	// The availability check runs inside the same transaction, serialized per
	// vehicle, so a lost race surfaces as myerrors.ErrVehicleUnavailable.
	CreateHold(ctx context.Context, cust model.Customer, b model.Booking) error

	IsVehicleFree(ctx context.Context, vehicleId string, start, end time.Time) (bool, error)

	FindById(ctx context.Context, bookingId string) (model.Booking, error)
	FindByCode(ctx context.Context, code string) (model.Booking, model.Customer, model.Vehicle, error)
	FindCustomerById(ctx context.Context, customerId string) (model.Customer, error)

	// UpdateStatus is a compare-and-set: it succeeds only while the booking
	// is still in the from status. false means zero rows matched.
	UpdateStatus(ctx context.Context, bookingId string, from, to model.BookingStatus) (bool, error)

	// RecordHandover inserts the inspection and advances the booking status
	// in one transaction. A status mismatch rolls back the inspection insert.
	RecordHandover(ctx context.Context, insp model.Inspection, from, to model.BookingStatus) error
}

type IPaymentRepo interface {
	CreatePending(ctx context.Context, p model.Payment) error
	SetProviderRef(ctx context.Context, paymentId, providerRef string) error

	FindPendingByProviderRef(ctx context.Context, providerRef string) (model.Payment, error)
	// FindPendingByAmount returns up to limit pending payments of the given
	// amount, most recently created first (null paid_ts sorts first).
	FindPendingByAmount(ctx context.Context, amount int64, limit int) ([]model.Payment, error)

	// Settle flips pending -> status and stores the reference. false means
	// the payment was no longer pending (duplicate delivery).
	Settle(ctx context.Context, paymentId string, status model.PaymentStatus, ref string, paidTs time.Time) (bool, error)
}

type ICatalogRepo interface {
	CreateRatePlan(ctx context.Context, rp model.RatePlan) error
	ListRatePlans(ctx context.Context) ([]model.RatePlan, error)
	FindRatePlanById(ctx context.Context, ratePlanId string) (model.RatePlan, error)
	ToggleRatePlan(ctx context.Context, ratePlanId string) (bool, error)

	CreateVehicle(ctx context.Context, v model.Vehicle) error
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	FindVehicleById(ctx context.Context, vehicleId string) (model.Vehicle, error)
}
