package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"car-hire/internal/rental-service/core/myerrors"
)

// jsonResponse writes the given data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// jsonError writes an error response as JSON with the specified HTTP status code.
func jsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// statusFor maps the core error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, myerrors.ErrVehicleUnavailable),
		errors.Is(err, myerrors.ErrPlateRegistered):
		return http.StatusConflict
	case errors.Is(err, myerrors.ErrBookingNotFound),
		errors.Is(err, myerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, myerrors.ErrPaymentProvider):
		return http.StatusBadGateway
	case errors.Is(err, myerrors.ErrEmptyField),
		errors.Is(err, myerrors.ErrInvalidWindow),
		errors.Is(err, myerrors.ErrInvalidPhoneNumber),
		errors.Is(err, myerrors.ErrInvalidRatePlan),
		errors.Is(err, myerrors.ErrInvalidVehicle),
		errors.Is(err, myerrors.ErrInvalidAmount),
		errors.Is(err, myerrors.ErrInvalidInspection),
		errors.Is(err, myerrors.ErrNotesTooLong),
		errors.Is(err, myerrors.ErrInvalidStateTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func serviceError(w http.ResponseWriter, err error) {
	jsonError(w, statusFor(err), err)
}
