package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"
)

type BookingHandler struct {
	bookingService ports.IBookingService
	log            mylogger.Logger
}

func NewBookingHandler(bs ports.IBookingService, log mylogger.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bs,
		log:            log,
	}
}

func (bh *BookingHandler) Quote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.QuoteRequestDto{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := bh.bookingService.Quote(req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.BookingCreateRequestDto{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := bh.bookingService.Create(req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

var errBadStateOrNotFound = errors.New("bad_state_or_not_found")

func (bh *BookingHandler) Confirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingId := r.PathValue("booking_id")

		res, err := bh.bookingService.Confirm(bookingId)
		if err != nil {
			// a stale id and a wrong state are indistinguishable to the caller
			if errors.Is(err, myerrors.ErrBookingNotFound) || errors.Is(err, myerrors.ErrInvalidStateTransition) {
				jsonError(w, http.StatusBadRequest, errBadStateOrNotFound)
				return
			}
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingId := r.PathValue("booking_id")

		res, err := bh.bookingService.Cancel(bookingId)
		if err != nil {
			if errors.Is(err, myerrors.ErrBookingNotFound) || errors.Is(err, myerrors.ErrInvalidStateTransition) {
				jsonError(w, http.StatusBadRequest, errBadStateOrNotFound)
				return
			}
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingId := r.PathValue("booking_id")

		res, err := bh.bookingService.Close(bookingId)
		if err != nil {
			if errors.Is(err, myerrors.ErrBookingNotFound) || errors.Is(err, myerrors.ErrInvalidStateTransition) {
				jsonError(w, http.StatusBadRequest, errBadStateOrNotFound)
				return
			}
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) LookupByCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")

		res, err := bh.bookingService.LookupByCode(code)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) CheckAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleId := r.PathValue("vehicle_id")
		startTs := r.URL.Query().Get("start_ts")
		endTs := r.URL.Query().Get("end_ts")

		res, err := bh.bookingService.CheckAvailability(vehicleId, startTs, endTs)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) CheckOut() http.HandlerFunc {
	return bh.handover(model.InspectionCheckout)
}

func (bh *BookingHandler) CheckIn() http.HandlerFunc {
	return bh.handover(model.InspectionCheckin)
}

func (bh *BookingHandler) handover(phase model.InspectionPhase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingId := r.PathValue("booking_id")

		req := dto.InspectionRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := bh.bookingService.RecordHandover(bookingId, phase, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
