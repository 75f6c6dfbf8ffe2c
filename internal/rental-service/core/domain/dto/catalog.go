package dto

type RatePlanCreateRequestDto struct {
	Name              *string  `json:"name"`
	DailyRate         *int64   `json:"daily_rate"`
	WeeklyRate        *int64   `json:"weekly_rate,omitempty"`
	DepositAmount     *int64   `json:"deposit_amount"`
	KmIncludedPerDay  *int     `json:"km_included_per_day,omitempty"`
	ExtraKmRate       *int64   `json:"extra_km_rate,omitempty"`
	WeekendMultiplier *float64 `json:"weekend_multiplier,omitempty"`
	Active            *bool    `json:"active,omitempty"`
}

type RatePlanResponseDto struct {
	Id                string `json:"id"`
	Name              string `json:"name"`
	DailyRate         int64  `json:"daily_rate"`
	WeeklyRate        int64  `json:"weekly_rate,omitempty"`
	DepositAmount     int64  `json:"deposit_amount"`
	KmIncludedPerDay  int    `json:"km_included_per_day"`
	ExtraKmRate       int64  `json:"extra_km_rate"`
	WeekendMultiplier string `json:"weekend_multiplier"`
	Active            bool   `json:"active"`
}

type RatePlanToggleResponseDto struct {
	Id     string `json:"id"`
	Active bool   `json:"active"`
}

type VehicleCreateRequestDto struct {
	Plate *string `json:"plate"`
	Make  *string `json:"make,omitempty"`
	Model *string `json:"model,omitempty"`
	Year  *int    `json:"year,omitempty"`
	Color *string `json:"color,omitempty"`
	OdoKm *int64  `json:"odo_km,omitempty"`
}

type VehicleResponseDto struct {
	Id     string `json:"id"`
	Plate  string `json:"plate"`
	Make   string `json:"make,omitempty"`
	Model  string `json:"model,omitempty"`
	Year   int    `json:"year,omitempty"`
	Color  string `json:"color,omitempty"`
	OdoKm  int64  `json:"odo_km"`
	Status string `json:"status"`
}
