package services

import (
	"testing"
	"time"

	"car-hire/internal/rental-service/core/domain/model"
)

func window(days int) (time.Time, time.Time) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, days)
}

func TestChargeableDays(t *testing.T) {
	start, end := window(3)
	if got := ChargeableDays(start, end); got != 3 {
		t.Fatalf("expected 3 days, got %d", got)
	}

	// partial days round up
	if got := ChargeableDays(start, end.Add(time.Hour)); got != 4 {
		t.Fatalf("expected partial day to round up to 4, got %d", got)
	}

	// a window shorter than a day still charges one day
	if got := ChargeableDays(start, start.Add(2*time.Hour)); got != 1 {
		t.Fatalf("expected minimum of 1 day, got %d", got)
	}
}

func TestBasePriceWeeklySplit(t *testing.T) {
	rp := model.RatePlan{DailyRate: 2000, WeeklyRate: 12000, DepositAmount: 5000}

	// 9 days = 1 week + 2 days
	if got := BasePrice(rp, 9); got != 16000 {
		t.Fatalf("expected 16000 for 9 days, got %d", got)
	}

	// exact multiples of a week price as k * weeklyRate
	for k := 1; k <= 5; k++ {
		want := int64(k) * rp.WeeklyRate
		if got := BasePrice(rp, 7*k); got != want {
			t.Fatalf("expected %d for %d days, got %d", want, 7*k, got)
		}
	}

	// under a week the weekly rate never applies
	if got := BasePrice(rp, 6); got != 12000 {
		t.Fatalf("expected 6*2000 for 6 days, got %d", got)
	}
}

func TestBasePriceNoWeeklyRate(t *testing.T) {
	rp := model.RatePlan{DailyRate: 2000}
	if got := BasePrice(rp, 10); got != 20000 {
		t.Fatalf("expected 10*2000 without weekly rate, got %d", got)
	}
}

func TestBasePriceMonotonic(t *testing.T) {
	rp := model.RatePlan{DailyRate: 2000, WeeklyRate: 12000}
	prev := int64(0)
	for days := 1; days <= 30; days++ {
		got := BasePrice(rp, days)
		if got < prev {
			t.Fatalf("price decreased at %d days: %d < %d", days, got, prev)
		}
		prev = got
	}
}
