package ports

import (
	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/domain/model"
)

type IBookingService interface {
	Quote(req dto.QuoteRequestDto) (dto.QuoteResponseDto, error)
	Create(req dto.BookingCreateRequestDto) (dto.BookingCreateResponseDto, error)
	Confirm(bookingId string) (dto.BookingStatusResponseDto, error)
	Cancel(bookingId string) (dto.BookingStatusResponseDto, error)
	Close(bookingId string) (dto.BookingStatusResponseDto, error)
	LookupByCode(code string) (dto.BookingLookupResponseDto, error)
	CheckAvailability(vehicleId, startTs, endTs string) (dto.AvailabilityResponseDto, error)
	RecordHandover(bookingId string, phase model.InspectionPhase, req dto.InspectionRequestDto) (dto.HandoverResponseDto, error)
}

type IPaymentService interface {
	InitiateDeposit(req dto.DepositInitiateRequestDto) (dto.DepositInitiateResponseDto, error)

	// HandleProviderCallback processes an already-acknowledged webhook body.
	// It never returns an error: unusable payloads are logged and discarded.
	HandleProviderCallback(body []byte)
}

type ICatalogService interface {
	CreateRatePlan(req dto.RatePlanCreateRequestDto) (dto.RatePlanResponseDto, error)
	ListRatePlans() ([]dto.RatePlanResponseDto, error)
	ToggleRatePlan(ratePlanId string) (dto.RatePlanToggleResponseDto, error)

	CreateVehicle(req dto.VehicleCreateRequestDto) (dto.VehicleResponseDto, error)
	ListVehicles() ([]dto.VehicleResponseDto, error)
}
