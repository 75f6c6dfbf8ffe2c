package ports

import (
	"context"

	messagebrokerdto "car-hire/internal/rental-service/core/domain/message_broker_dto"
)

type IEventsBroker interface {
	Close() error
	PublishBookingStatus(ctx context.Context, msg messagebrokerdto.BookingStatus) error
	PublishPaymentStatus(ctx context.Context, msg messagebrokerdto.PaymentStatus) error
}
