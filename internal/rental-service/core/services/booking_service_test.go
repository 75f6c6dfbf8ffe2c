package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"
)

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }

const (
	testVehicleId  = "veh-1"
	testRatePlanId = "plan-1"
)

func newBookingFixture(t *testing.T) (*fakeBookingRepo, *fakeCatalogRepo, ports.IBookingService) {
	t.Helper()

	bookingRepo := newFakeBookingRepo()
	catalogRepo := newFakeCatalogRepo()

	veh := model.Vehicle{ID: testVehicleId, Plate: "KDA 123X", Make: "Toyota", Model: "Axio", Status: model.VehicleAvailable}
	catalogRepo.vehicles[veh.ID] = veh
	bookingRepo.vehicles[veh.ID] = veh

	catalogRepo.plans[testRatePlanId] = model.RatePlan{
		ID:            testRatePlanId,
		Name:          "Standard",
		DailyRate:     2000,
		WeeklyRate:    12000,
		DepositAmount: 5000,
		Active:        true,
	}

	svc := NewBookingService(context.Background(), testLogger(t), bookingRepo, catalogRepo, nil)
	return bookingRepo, catalogRepo, svc
}

func createReq(start, end string) dto.BookingCreateRequestDto {
	return dto.BookingCreateRequestDto{
		Customer: &dto.CustomerDto{
			FullName:  strPtr("Jane Wanjiku"),
			PhoneE164: strPtr("+254712345678"),
		},
		VehicleId:  strPtr(testVehicleId),
		RatePlanId: strPtr(testRatePlanId),
		StartTs:    strPtr(start),
		EndTs:      strPtr(end),
	}
}

func TestQuote(t *testing.T) {
	_, catalogRepo, svc := newBookingFixture(t)

	res, err := svc.Quote(dto.QuoteRequestDto{
		VehicleId:  strPtr(testVehicleId),
		RatePlanId: strPtr(testRatePlanId),
		StartTs:    strPtr("2025-03-10T09:00:00"),
		EndTs:      strPtr("2025-03-19T09:00:00"),
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.Days != 9 {
		t.Fatalf("expected 9 days, got %d", res.Days)
	}
	if res.Base != 16000 {
		t.Fatalf("expected base 16000, got %d", res.Base)
	}
	if res.Deposit != 5000 {
		t.Fatalf("expected deposit 5000, got %d", res.Deposit)
	}
	if res.Currency != "KES" {
		t.Fatalf("expected KES, got %s", res.Currency)
	}

	// inactive plans cannot be quoted
	rp := catalogRepo.plans[testRatePlanId]
	rp.Active = false
	catalogRepo.plans[testRatePlanId] = rp

	_, err = svc.Quote(dto.QuoteRequestDto{
		VehicleId:  strPtr(testVehicleId),
		RatePlanId: strPtr(testRatePlanId),
		StartTs:    strPtr("2025-03-10T09:00:00"),
		EndTs:      strPtr("2025-03-12T09:00:00"),
	})
	if !errors.Is(err, myerrors.ErrInvalidRatePlan) {
		t.Fatalf("expected ErrInvalidRatePlan, got %v", err)
	}
}

func TestCreateBooking(t *testing.T) {
	bookingRepo, _, svc := newBookingFixture(t)

	res, err := svc.Create(createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Status != "hold" {
		t.Fatalf("expected hold, got %s", res.Status)
	}
	if len(res.Code) != CodeLen || res.Code != strings.ToUpper(res.Code) {
		t.Fatalf("expected %d-char uppercase code, got %q", CodeLen, res.Code)
	}

	b, err := bookingRepo.FindById(context.Background(), res.Id)
	if err != nil {
		t.Fatalf("FindById: %v", err)
	}
	if b.Status != model.BookingHold {
		t.Fatalf("expected stored status hold, got %s", b.Status)
	}
}

func TestCreateBookingOverlap(t *testing.T) {
	_, _, svc := newBookingFixture(t)

	// Mon .. Wed
	if _, err := svc.Create(createReq("2025-03-10T00:00:00", "2025-03-12T00:00:00")); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Tue .. Thu overlaps
	_, err := svc.Create(createReq("2025-03-11T00:00:00", "2025-03-13T00:00:00"))
	if !errors.Is(err, myerrors.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got %v", err)
	}

	// Wed .. Fri touches the previous end, half-open windows do not overlap
	if _, err := svc.Create(createReq("2025-03-12T00:00:00", "2025-03-14T00:00:00")); err != nil {
		t.Fatalf("touching window rejected: %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	_, catalogRepo, svc := newBookingFixture(t)

	req := createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00")
	req.Customer.PhoneE164 = strPtr("0712345678")
	if _, err := svc.Create(req); !errors.Is(err, myerrors.ErrInvalidPhoneNumber) {
		t.Fatalf("expected ErrInvalidPhoneNumber, got %v", err)
	}

	req = createReq("2025-03-12T09:00:00", "2025-03-10T09:00:00")
	if _, err := svc.Create(req); !errors.Is(err, myerrors.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}

	req = createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00")
	req.VehicleId = strPtr("no-such-vehicle")
	if _, err := svc.Create(req); !errors.Is(err, myerrors.ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}

	rp := catalogRepo.plans[testRatePlanId]
	rp.Active = false
	catalogRepo.plans[testRatePlanId] = rp
	req = createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00")
	if _, err := svc.Create(req); !errors.Is(err, myerrors.ErrInvalidRatePlan) {
		t.Fatalf("expected ErrInvalidRatePlan, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	_, _, svc := newBookingFixture(t)

	res, err := svc.CheckAvailability(testVehicleId, "2025-03-10T00:00:00", "2025-03-12T00:00:00")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !res.Free {
		t.Fatal("expected free vehicle")
	}

	if _, err := svc.Create(createReq("2025-03-10T00:00:00", "2025-03-12T00:00:00")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err = svc.CheckAvailability(testVehicleId, "2025-03-11T00:00:00", "2025-03-13T00:00:00")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if res.Free {
		t.Fatal("expected occupied vehicle for overlapping window")
	}

	// touching windows do not overlap
	res, err = svc.CheckAvailability(testVehicleId, "2025-03-12T00:00:00", "2025-03-14T00:00:00")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !res.Free {
		t.Fatal("expected free vehicle for touching window")
	}

	if _, err := svc.CheckAvailability("no-such-vehicle", "2025-03-10T00:00:00", "2025-03-12T00:00:00"); !errors.Is(err, myerrors.ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	_, _, svc := newBookingFixture(t)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(createReq("2025-03-10T00:00:00", "2025-03-12T00:00:00"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	won, lost := 0, 0
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, myerrors.ErrVehicleUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != n-1 {
		t.Fatalf("expected exactly 1 winner of %d, got %d winners / %d conflicts", n, won, lost)
	}
}

func TestConfirmAndCancel(t *testing.T) {
	bookingRepo, _, svc := newBookingFixture(t)

	res, err := svc.Create(createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	confirmed, err := svc.Confirm(res.Id)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	// repeated confirm is rejected, not silently accepted
	if _, err := svc.Confirm(res.Id); !errors.Is(err, myerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	b, _ := bookingRepo.FindById(context.Background(), res.Id)
	if b.Status != model.BookingConfirmed {
		t.Fatalf("state changed on rejected transition: %s", b.Status)
	}

	if _, err := svc.Confirm("no-such-booking"); !errors.Is(err, myerrors.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	// confirmed bookings cannot be canceled
	if _, err := svc.Cancel(res.Id); !errors.Is(err, myerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition on cancel, got %v", err)
	}

	held, err := svc.Create(createReq("2025-04-01T09:00:00", "2025-04-03T09:00:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	canceled, err := svc.Cancel(held.Id)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if canceled.Status != "canceled" {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
}

func inspectionReq() dto.InspectionRequestDto {
	return dto.InspectionRequestDto{
		OdoKm:     i64Ptr(45210),
		FuelLevel: strPtr("6/8"),
		Photos:    []string{"front.jpg", "rear.jpg"},
		Checklist: map[string]bool{"spare_wheel": true, "jack": true},
	}
}

func TestHandoverFlow(t *testing.T) {
	bookingRepo, _, svc := newBookingFixture(t)

	res, err := svc.Create(createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// check-out from hold is out of order
	_, err = svc.RecordHandover(res.Id, model.InspectionCheckout, inspectionReq())
	if !errors.Is(err, myerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	b, _ := bookingRepo.FindById(context.Background(), res.Id)
	if b.Status != model.BookingHold {
		t.Fatalf("state changed on rejected handover: %s", b.Status)
	}

	if _, err := svc.Confirm(res.Id); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	out, err := svc.RecordHandover(res.Id, model.InspectionCheckout, inspectionReq())
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if out.Status != "checked_out" || out.InspectionId == "" {
		t.Fatalf("unexpected check-out result: %+v", out)
	}

	in, err := svc.RecordHandover(res.Id, model.InspectionCheckin, inspectionReq())
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if in.Status != "returned" {
		t.Fatalf("expected returned, got %s", in.Status)
	}

	// second check-in has nowhere to go
	_, err = svc.RecordHandover(res.Id, model.InspectionCheckin, inspectionReq())
	if !errors.Is(err, myerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	if got := len(bookingRepo.inspections[res.Id]); got != 2 {
		t.Fatalf("expected 2 inspections, got %d", got)
	}

	closed, err := svc.Close(res.Id)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != "closed" {
		t.Fatalf("expected closed, got %s", closed.Status)
	}

	// closed is terminal
	if _, err := svc.Close(res.Id); !errors.Is(err, myerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition on repeat close, got %v", err)
	}
}

func TestInspectionValidation(t *testing.T) {
	_, _, svc := newBookingFixture(t)

	res, err := svc.Create(createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Confirm(res.Id); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	bad := inspectionReq()
	bad.OdoKm = i64Ptr(-1)
	if _, err := svc.RecordHandover(res.Id, model.InspectionCheckout, bad); !errors.Is(err, myerrors.ErrInvalidInspection) {
		t.Fatalf("expected ErrInvalidInspection for negative odometer, got %v", err)
	}

	bad = inspectionReq()
	bad.FuelLevel = strPtr("9/8")
	if _, err := svc.RecordHandover(res.Id, model.InspectionCheckout, bad); !errors.Is(err, myerrors.ErrInvalidInspection) {
		t.Fatalf("expected ErrInvalidInspection for fuel 9/8, got %v", err)
	}

	bad = inspectionReq()
	bad.FuelLevel = strPtr("half")
	if _, err := svc.RecordHandover(res.Id, model.InspectionCheckout, bad); !errors.Is(err, myerrors.ErrInvalidInspection) {
		t.Fatalf("expected ErrInvalidInspection for fuel 'half', got %v", err)
	}

	bad = inspectionReq()
	bad.Photos = make([]string, MaxPhotos+1)
	if _, err := svc.RecordHandover(res.Id, model.InspectionCheckout, bad); !errors.Is(err, myerrors.ErrInvalidInspection) {
		t.Fatalf("expected ErrInvalidInspection for too many photos, got %v", err)
	}
}

func TestLookupByCode(t *testing.T) {
	_, _, svc := newBookingFixture(t)

	res, err := svc.Create(createReq("2025-03-10T09:00:00", "2025-03-12T09:00:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := svc.LookupByCode(strings.ToLower(res.Code))
	if err != nil {
		t.Fatalf("LookupByCode: %v", err)
	}
	if found.Id != res.Id {
		t.Fatalf("expected booking %s, got %s", res.Id, found.Id)
	}
	if found.CustomerName != "Jane Wanjiku" || found.VehiclePlate != "KDA 123X" {
		t.Fatalf("lookup missing joined identity: %+v", found)
	}

	if _, err := svc.LookupByCode("ZZZZZZ"); !errors.Is(err, myerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
