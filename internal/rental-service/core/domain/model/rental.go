package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingHold       BookingStatus = "hold"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingReturned   BookingStatus = "returned"
	BookingClosed     BookingStatus = "closed"
	BookingCanceled   BookingStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentType string

const (
	PaymentDeposit PaymentType = "deposit"
	PaymentRental  PaymentType = "rental"
	PaymentRefund  PaymentType = "refund"
)

type InspectionPhase string

const (
	InspectionCheckout InspectionPhase = "checkout"
	InspectionCheckin  InspectionPhase = "checkin"
)

type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "available"
	VehicleBooked    VehicleStatus = "booked"
	VehicleOut       VehicleStatus = "out"
	VehicleService   VehicleStatus = "service"
)

type Customer struct {
	ID        string // uuid
	FullName  string
	PhoneE164 string
	Email     string
	CreatedAt time.Time
}

type Vehicle struct {
	ID     string // uuid
	Plate  string
	Make   string
	Model  string
	Year   int
	Color  string
	OdoKm  int64
	Status VehicleStatus
}

type RatePlan struct {
	ID                string // uuid
	Name              string
	DailyRate         int64 // minor currency units
	WeeklyRate        int64 // 0 means no weekly rate configured
	DepositAmount     int64
	KmIncludedPerDay  int
	ExtraKmRate       int64
	WeekendMultiplier decimal.Decimal
	Active            bool
}

type Booking struct {
	ID         string // uuid
	Code       string // short human-dictation code, unique
	CustomerID string
	VehicleID  string
	RatePlanID string
	StartTs    time.Time // naive local, half-open window [StartTs, EndTs)
	EndTs      time.Time
	Status     BookingStatus
	Notes      string
}

type Payment struct {
	ID          string // uuid
	BookingID   string
	Channel     string // mpesa
	Ref         string // provider receipt, set on settlement
	ProviderRef string // CheckoutRequestID, set right after initiation
	Amount      int64
	Currency    string
	Type        PaymentType
	Status      PaymentStatus
	PaidTs      *time.Time
	CreatedAt   time.Time
}

type Inspection struct {
	ID        string // uuid
	BookingID string
	Phase     InspectionPhase
	OdoKm     int64
	FuelLevel int // eighths, 0..8
	Photos    []string
	Checklist map[string]bool
	Notes     string
	CreatedAt time.Time
}
