package services

import (
	"time"

	"car-hire/internal/rental-service/core/domain/model"
)

const Currency = "KES"

// ChargeableDays counts whole days in the half-open window [start, end),
// rounding partial days up, never below one day.
func ChargeableDays(start, end time.Time) int {
	const day = 24 * time.Hour
	d := end.Sub(start)
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// BasePrice prices a day count against a rate plan. A configured weekly
// rate applies to every full week once the rental reaches seven days;
// leftover days are charged at the daily rate.
func BasePrice(rp model.RatePlan, days int) int64 {
	if days >= 7 && rp.WeeklyRate > 0 {
		return int64(days/7)*rp.WeeklyRate + int64(days%7)*rp.DailyRate
	}
	return int64(days) * rp.DailyRate
}
