package myerrors

import "errors"

var (
	// validation (HTTP 400)
	ErrEmptyField         = errors.New("field is empty")
	ErrInvalidWindow      = errors.New("end must be after start")
	ErrInvalidPhoneNumber = errors.New("invalid phone number (expected E.164, e.g. +254712345678)")
	ErrInvalidRatePlan    = errors.New("invalid rate plan")
	ErrInvalidVehicle     = errors.New("invalid vehicle")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidInspection  = errors.New("invalid inspection input")
	ErrNotesTooLong       = errors.New("notes too long")

	// not found (HTTP 404)
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotFound        = errors.New("not found")

	// conflict (HTTP 409 / 400)
	ErrVehicleUnavailable     = errors.New("vehicle unavailable")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPlateRegistered        = errors.New("plate is already registered")
	ErrCodeCollision          = errors.New("booking code already taken")

	// upstream (HTTP 502)
	ErrPaymentProvider = errors.New("payment provider request failed")
)
