package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
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
	MaxNotesLen    = 1000
	MaxPhotos      = 12
	CodeLen        = 6
	codeGenRetries = 5
)

type BookingService struct {
	mylog       mylogger.Logger
	BookingRepo ports.IBookingRepo
	CatalogRepo ports.ICatalogRepo
	Broker      ports.IEventsBroker
	ctx         context.Context
}

func NewBookingService(ctx context.Context,
	log mylogger.Logger,
	bookingRepo ports.IBookingRepo,
	catalogRepo ports.ICatalogRepo,
	broker ports.IEventsBroker,
) ports.IBookingService {
	return &BookingService{
		ctx:         ctx,
		mylog:       log,
		BookingRepo: bookingRepo,
		CatalogRepo: catalogRepo,
		Broker:      broker,
	}
}

func (bs *BookingService) Quote(req dto.QuoteRequestDto) (dto.QuoteResponseDto, error) {
	log := bs.mylog.Action("Quote")

	start, end, err := parseWindow(req.StartTs, req.EndTs)
	if err != nil {
		return dto.QuoteResponseDto{}, err
	}
	if req.VehicleId == nil || *req.VehicleId == "" || req.RatePlanId == nil || *req.RatePlanId == "" {
		return dto.QuoteResponseDto{}, fmt.Errorf("vehicle_id and rate_plan_id are required: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
	defer cancel()

	rp, err := bs.CatalogRepo.FindRatePlanById(ctx, *req.RatePlanId)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.QuoteResponseDto{}, myerrors.ErrInvalidRatePlan
		}
		log.Error("cannot fetch rate plan", err, "rate_plan_id", *req.RatePlanId)
		return dto.QuoteResponseDto{}, err
	}
	if !rp.Active {
		return dto.QuoteResponseDto{}, myerrors.ErrInvalidRatePlan
	}

	days := ChargeableDays(start, end)
	base := BasePrice(rp, days)

	log.Info("quote computed", "rate_plan_id", rp.ID, "days", days, "base", base)
	return dto.QuoteResponseDto{
		VehicleId:  *req.VehicleId,
		RatePlanId: rp.ID,
		StartTs:    dto.FormatTs(start),
		EndTs:      dto.FormatTs(end),
		Days:       days,
		Base:       base,
		Deposit:    rp.DepositAmount,
		Currency:   Currency,
	}, nil
}

func (bs *BookingService) Create(req dto.BookingCreateRequestDto) (dto.BookingCreateResponseDto, error) {
	log := bs.mylog.Action("CreateBooking")

	if err := validateCustomer(req.Customer); err != nil {
		return dto.BookingCreateResponseDto{}, err
	}
	start, end, err := parseWindow(req.StartTs, req.EndTs)
	if err != nil {
		return dto.BookingCreateResponseDto{}, err
	}
	if req.VehicleId == nil || *req.VehicleId == "" || req.RatePlanId == nil || *req.RatePlanId == "" {
		return dto.BookingCreateResponseDto{}, fmt.Errorf("vehicle_id and rate_plan_id are required: %w", myerrors.ErrEmptyField)
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}
	if len(notes) > MaxNotesLen {
		return dto.BookingCreateResponseDto{}, myerrors.ErrNotesTooLong
	}

	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
	defer cancel()

	if _, err := bs.CatalogRepo.FindVehicleById(ctx, *req.VehicleId); err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.BookingCreateResponseDto{}, myerrors.ErrInvalidVehicle
		}
		log.Error("cannot fetch vehicle", err, "vehicle_id", *req.VehicleId)
		return dto.BookingCreateResponseDto{}, err
	}
	rp, err := bs.CatalogRepo.FindRatePlanById(ctx, *req.RatePlanId)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.BookingCreateResponseDto{}, myerrors.ErrInvalidRatePlan
		}
		log.Error("cannot fetch rate plan", err, "rate_plan_id", *req.RatePlanId)
		return dto.BookingCreateResponseDto{}, err
	}
	if !rp.Active {
		return dto.BookingCreateResponseDto{}, myerrors.ErrInvalidRatePlan
	}

	cust := model.Customer{
		ID:        uuid.NewString(),
		FullName:  *req.Customer.FullName,
		PhoneE164: *req.Customer.PhoneE164,
	}
	if req.Customer.Email != nil {
		cust.Email = *req.Customer.Email
	}

	b := model.Booking{
		ID:         uuid.NewString(),
		CustomerID: cust.ID,
		VehicleID:  *req.VehicleId,
		RatePlanID: rp.ID,
		StartTs:    start,
		EndTs:      end,
		Status:     model.BookingHold,
		Notes:      notes,
	}

	// The short code carries a unique constraint; regenerate on collision.
	for attempt := 0; ; attempt++ {
		b.Code = generateBookingCode(CodeLen)

		ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
		err = bs.BookingRepo.CreateHold(ctx, cust, b)
		cancel()
		if err == nil {
			break
		}
		if errors.Is(err, myerrors.ErrCodeCollision) && attempt < codeGenRetries {
			continue
		}
		if errors.Is(err, myerrors.ErrVehicleUnavailable) {
			log.Warn("vehicle occupied for requested window", "vehicle_id", b.VehicleID)
			return dto.BookingCreateResponseDto{}, myerrors.ErrVehicleUnavailable
		}
		log.Error("cannot create hold booking", err, "vehicle_id", b.VehicleID)
		return dto.BookingCreateResponseDto{}, err
	}

	log.Info("booking held", "booking_id", b.ID, "code", b.Code, "vehicle_id", b.VehicleID)
	bs.publishBookingStatus(b)

	return dto.BookingCreateResponseDto{
		Id:     b.ID,
		Code:   b.Code,
		Status: string(model.BookingHold),
	}, nil
}

func (bs *BookingService) Confirm(bookingId string) (dto.BookingStatusResponseDto, error) {
	return bs.transition(bookingId, model.BookingHold, model.BookingConfirmed, "ConfirmBooking")
}

func (bs *BookingService) Cancel(bookingId string) (dto.BookingStatusResponseDto, error) {
	return bs.transition(bookingId, model.BookingHold, model.BookingCanceled, "CancelBooking")
}

func (bs *BookingService) Close(bookingId string) (dto.BookingStatusResponseDto, error) {
	return bs.transition(bookingId, model.BookingReturned, model.BookingClosed, "CloseBooking")
}

func (bs *BookingService) transition(bookingId string, from, to model.BookingStatus, action string) (dto.BookingStatusResponseDto, error) {
	log := bs.mylog.Action(action)

	if bookingId == "" {
		return dto.BookingStatusResponseDto{}, fmt.Errorf("booking id is required: %w", myerrors.ErrEmptyField)
	}
	if !model.CanTransition(from, to) {
		return dto.BookingStatusResponseDto{}, myerrors.ErrInvalidStateTransition
	}

	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
	defer cancel()

	ok, err := bs.BookingRepo.UpdateStatus(ctx, bookingId, from, to)
	if err != nil {
		log.Error("cannot update booking status", err, "booking_id", bookingId)
		return dto.BookingStatusResponseDto{}, err
	}
	if !ok {
		if _, err := bs.BookingRepo.FindById(ctx, bookingId); errors.Is(err, myerrors.ErrBookingNotFound) {
			return dto.BookingStatusResponseDto{}, myerrors.ErrBookingNotFound
		}
		return dto.BookingStatusResponseDto{}, myerrors.ErrInvalidStateTransition
	}

	log.Info("booking status updated", "booking_id", bookingId, "from", from, "to", to)
	if b, err := bs.BookingRepo.FindById(ctx, bookingId); err == nil {
		bs.publishBookingStatus(b)
	}

	return dto.BookingStatusResponseDto{Id: bookingId, Status: string(to)}, nil
}

func (bs *BookingService) LookupByCode(code string) (dto.BookingLookupResponseDto, error) {
	log := bs.mylog.Action("LookupByCode")

	if code == "" {
		return dto.BookingLookupResponseDto{}, fmt.Errorf("code is required: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
	defer cancel()

	b, cust, veh, err := bs.BookingRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.BookingLookupResponseDto{}, myerrors.ErrNotFound
		}
		log.Error("cannot look up booking by code", err, "code", code)
		return dto.BookingLookupResponseDto{}, err
	}

	return dto.BookingLookupResponseDto{
		Id:            b.ID,
		Code:          b.Code,
		Status:        string(b.Status),
		StartTs:       dto.FormatTs(b.StartTs),
		EndTs:         dto.FormatTs(b.EndTs),
		Notes:         b.Notes,
		CustomerName:  cust.FullName,
		CustomerPhone: cust.PhoneE164,
		VehiclePlate:  veh.Plate,
		VehicleMake:   veh.Make,
		VehicleModel:  veh.Model,
	}, nil
}

// CheckAvailability is the read-only pre-check. It carries no reservation:
// the authoritative check runs again inside the create transaction.
func (bs *BookingService) CheckAvailability(vehicleId, startTs, endTs string) (dto.AvailabilityResponseDto, error) {
	log := bs.mylog.Action("CheckAvailability")

	if vehicleId == "" {
		return dto.AvailabilityResponseDto{}, fmt.Errorf("vehicle id is required: %w", myerrors.ErrEmptyField)
	}
	start, end, err := parseWindow(&startTs, &endTs)
	if err != nil {
		return dto.AvailabilityResponseDto{}, err
	}

	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
	defer cancel()

	if _, err := bs.CatalogRepo.FindVehicleById(ctx, vehicleId); err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.AvailabilityResponseDto{}, myerrors.ErrInvalidVehicle
		}
		log.Error("cannot fetch vehicle", err, "vehicle_id", vehicleId)
		return dto.AvailabilityResponseDto{}, err
	}

	free, err := bs.BookingRepo.IsVehicleFree(ctx, vehicleId, start, end)
	if err != nil {
		log.Error("cannot check availability", err, "vehicle_id", vehicleId)
		return dto.AvailabilityResponseDto{}, err
	}

	return dto.AvailabilityResponseDto{
		VehicleId: vehicleId,
		StartTs:   dto.FormatTs(start),
		EndTs:     dto.FormatTs(end),
		Free:      free,
	}, nil
}

func (bs *BookingService) RecordHandover(bookingId string, phase model.InspectionPhase, req dto.InspectionRequestDto) (dto.HandoverResponseDto, error) {
	log := bs.mylog.Action("RecordHandover")

	if bookingId == "" {
		return dto.HandoverResponseDto{}, fmt.Errorf("booking id is required: %w", myerrors.ErrEmptyField)
	}

	var from, to model.BookingStatus
	switch phase {
	case model.InspectionCheckout:
		from, to = model.BookingConfirmed, model.BookingCheckedOut
	case model.InspectionCheckin:
		from, to = model.BookingCheckedOut, model.BookingReturned
	default:
		return dto.HandoverResponseDto{}, fmt.Errorf("unknown handover phase %q: %w", phase, myerrors.ErrInvalidInspection)
	}

	insp, err := buildInspection(bookingId, phase, req)
	if err != nil {
		return dto.HandoverResponseDto{}, err
	}

	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*15)
	defer cancel()

	if err := bs.BookingRepo.RecordHandover(ctx, insp, from, to); err != nil {
		if errors.Is(err, myerrors.ErrBookingNotFound) || errors.Is(err, myerrors.ErrInvalidStateTransition) {
			return dto.HandoverResponseDto{}, err
		}
		log.Error("cannot record handover", err, "booking_id", bookingId, "phase", phase)
		return dto.HandoverResponseDto{}, err
	}

	log.Info("handover recorded", "booking_id", bookingId, "phase", phase, "inspection_id", insp.ID)
	if b, err := bs.BookingRepo.FindById(ctx, bookingId); err == nil {
		bs.publishBookingStatus(b)
	}

	return dto.HandoverResponseDto{
		Id:           bookingId,
		Status:       string(to),
		InspectionId: insp.ID,
	}, nil
}

// events are advisory; a broker outage never fails the request
func (bs *BookingService) publishBookingStatus(b model.Booking) {
	if bs.Broker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(bs.ctx, time.Second*5)
	defer cancel()

	msg := messagebrokerdto.BookingStatus{
		BookingId: b.ID,
		Code:      b.Code,
		VehicleId: b.VehicleID,
		Status:    string(b.Status),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := bs.Broker.PublishBookingStatus(ctx, msg); err != nil {
		bs.mylog.Action("publishBookingStatus").Warn("failed to publish booking event", "booking_id", b.ID, "err", err.Error())
	}
}

var phoneE164Re = regexp.MustCompile(`^\+\d{7,15}$`)

func validateCustomer(c *dto.CustomerDto) error {
	if c == nil {
		return fmt.Errorf("customer is required: %w", myerrors.ErrEmptyField)
	}
	if c.FullName == nil || len(strings.TrimSpace(*c.FullName)) < 2 {
		return fmt.Errorf("invalid customer full name: %w", myerrors.ErrEmptyField)
	}
	if c.PhoneE164 == nil || !phoneE164Re.MatchString(*c.PhoneE164) {
		return myerrors.ErrInvalidPhoneNumber
	}
	if c.Email != nil && !strings.Contains(*c.Email, "@") {
		return fmt.Errorf("invalid customer email: %w", myerrors.ErrEmptyField)
	}
	return nil
}

func parseWindow(startTs, endTs *string) (time.Time, time.Time, error) {
	if startTs == nil || endTs == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_ts and end_ts are required: %w", myerrors.ErrEmptyField)
	}
	start, err := dto.ParseTs(*startTs)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_ts: %w", myerrors.ErrInvalidWindow)
	}
	end, err := dto.ParseTs(*endTs)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_ts: %w", myerrors.ErrInvalidWindow)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, myerrors.ErrInvalidWindow
	}
	return start, end, nil
}

var fuelLevelRe = regexp.MustCompile(`^([0-8])/8$`)

func buildInspection(bookingId string, phase model.InspectionPhase, req dto.InspectionRequestDto) (model.Inspection, error) {
	if req.OdoKm == nil || *req.OdoKm < 0 {
		return model.Inspection{}, fmt.Errorf("odometer must be a non-negative integer: %w", myerrors.ErrInvalidInspection)
	}
	if req.FuelLevel == nil {
		return model.Inspection{}, fmt.Errorf("fuel_level is required: %w", myerrors.ErrInvalidInspection)
	}
	m := fuelLevelRe.FindStringSubmatch(*req.FuelLevel)
	if m == nil {
		return model.Inspection{}, fmt.Errorf("fuel must be like '7/8' or '4/8': %w", myerrors.ErrInvalidInspection)
	}
	eighths, _ := strconv.Atoi(m[1])
	if len(req.Photos) > MaxPhotos {
		return model.Inspection{}, fmt.Errorf("at most %d photos allowed: %w", MaxPhotos, myerrors.ErrInvalidInspection)
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}
	if len(notes) > MaxNotesLen {
		return model.Inspection{}, fmt.Errorf("%w: %w", myerrors.ErrNotesTooLong, myerrors.ErrInvalidInspection)
	}
	checklist := req.Checklist
	if checklist == nil {
		checklist = map[string]bool{}
	}
	photos := req.Photos
	if photos == nil {
		photos = []string{}
	}

	return model.Inspection{
		ID:        uuid.NewString(),
		BookingID: bookingId,
		Phase:     phase,
		OdoKm:     *req.OdoKm,
		FuelLevel: eighths,
		Photos:    photos,
		Checklist: checklist,
		Notes:     notes,
	}, nil
}

const codeCharSet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// generateBookingCode builds a short uppercase code easy to dictate over
// the phone; ambiguous characters (I, L, O, 0, 1) are excluded.
func generateBookingCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeCharSet[rand.Intn(len(codeCharSet))]
	}
	return string(b)
}
