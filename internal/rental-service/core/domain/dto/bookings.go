package dto

import "time"

// Naive local timestamps on the wire, no offset carried.
const TsLayout = "2006-01-02T15:04:05"

// ParseTs accepts a naive local timestamp, or RFC3339 with the offset dropped.
func ParseTs(s string) (time.Time, error) {
	if t, err := time.Parse(TsLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

func FormatTs(t time.Time) string {
	return t.Format(TsLayout)
}

type QuoteRequestDto struct {
	VehicleId  *string `json:"vehicle_id"`
	RatePlanId *string `json:"rate_plan_id"`
	StartTs    *string `json:"start_ts"`
	EndTs      *string `json:"end_ts"`
}

type QuoteResponseDto struct {
	VehicleId  string `json:"vehicle_id"`
	RatePlanId string `json:"rate_plan_id"`
	StartTs    string `json:"start_ts"`
	EndTs      string `json:"end_ts"`
	Days       int    `json:"days"`
	Base       int64  `json:"base"`
	Deposit    int64  `json:"deposit"`
	Currency   string `json:"currency"`
}

type CustomerDto struct {
	FullName  *string `json:"full_name"`
	PhoneE164 *string `json:"phone_e164"`
	Email     *string `json:"email,omitempty"`
}

type BookingCreateRequestDto struct {
	Customer   *CustomerDto `json:"customer"`
	VehicleId  *string      `json:"vehicle_id"`
	RatePlanId *string      `json:"rate_plan_id"`
	StartTs    *string      `json:"start_ts"`
	EndTs      *string      `json:"end_ts"`
	Notes      *string      `json:"notes,omitempty"`
}

type BookingCreateResponseDto struct {
	Id     string `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

type BookingStatusResponseDto struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type BookingLookupResponseDto struct {
	Id            string `json:"id"`
	Code          string `json:"code"`
	Status        string `json:"status"`
	StartTs       string `json:"start_ts"`
	EndTs         string `json:"end_ts"`
	Notes         string `json:"notes,omitempty"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	VehiclePlate  string `json:"vehicle_plate"`
	VehicleMake   string `json:"vehicle_make,omitempty"`
	VehicleModel  string `json:"vehicle_model,omitempty"`
}

type AvailabilityResponseDto struct {
	VehicleId string `json:"vehicle_id"`
	StartTs   string `json:"start_ts"`
	EndTs     string `json:"end_ts"`
	Free      bool   `json:"free"`
}

type InspectionRequestDto struct {
	OdoKm     *int64          `json:"odo_km"`
	FuelLevel *string         `json:"fuel_level"` // "0/8".."8/8"
	Photos    []string        `json:"photos"`
	Checklist map[string]bool `json:"checklist"`
	Notes     *string         `json:"notes,omitempty"`
}

type HandoverResponseDto struct {
	Id           string `json:"id"`
	Status       string `json:"status"`
	InspectionId string `json:"inspection_id"`
}
