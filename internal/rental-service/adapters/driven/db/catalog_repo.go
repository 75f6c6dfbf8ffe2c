package db

import (
	"context"
	"errors"

	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) ports.ICatalogRepo {
	return &CatalogRepo{
		db: db,
	}
}

func (cr *CatalogRepo) CreateRatePlan(ctx context.Context, rp model.RatePlan) error {
	q := `INSERT INTO rate_plans(
			id,
			name,
			daily_rate,
			weekly_rate,
			deposit_amount,
			km_included_per_day,
			extra_km_rate,
			weekend_multiplier,
			active
			) VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8::numeric, $9)`

	_, err := cr.db.pool.Exec(ctx, q,
		rp.ID,
		rp.Name,
		rp.DailyRate,
		rp.WeeklyRate,
		rp.DepositAmount,
		rp.KmIncludedPerDay,
		rp.ExtraKmRate,
		rp.WeekendMultiplier.StringFixed(2),
		rp.Active,
	)
	return err
}

const ratePlanColumns = `id, name, daily_rate, COALESCE(weekly_rate, 0), deposit_amount, km_included_per_day, extra_km_rate, weekend_multiplier::text, active`

func (cr *CatalogRepo) ListRatePlans(ctx context.Context) ([]model.RatePlan, error) {
	q := `SELECT ` + ratePlanColumns + ` FROM rate_plans ORDER BY name`

	rows, err := cr.db.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []model.RatePlan
	for rows.Next() {
		rp, err := scanRatePlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, rp)
	}
	return plans, rows.Err()
}

func (cr *CatalogRepo) FindRatePlanById(ctx context.Context, ratePlanId string) (model.RatePlan, error) {
	q := `SELECT ` + ratePlanColumns + ` FROM rate_plans WHERE id = $1`

	rp, err := scanRatePlan(cr.db.pool.QueryRow(ctx, q, ratePlanId))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RatePlan{}, myerrors.ErrNotFound
	}
	if err != nil {
		return model.RatePlan{}, err
	}
	return rp, nil
}

func (cr *CatalogRepo) ToggleRatePlan(ctx context.Context, ratePlanId string) (bool, error) {
	q := `UPDATE rate_plans SET active = NOT active WHERE id = $1 RETURNING active`

	var active bool
	err := cr.db.pool.QueryRow(ctx, q, ratePlanId).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, myerrors.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

func (cr *CatalogRepo) CreateVehicle(ctx context.Context, v model.Vehicle) error {
	q := `INSERT INTO vehicles(
			id,
			plate,
			make,
			model,
			year,
			color,
			odo_km,
			status
			) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, 0), NULLIF($6, ''), $7, $8)`

	_, err := cr.db.pool.Exec(ctx, q,
		v.ID,
		v.Plate,
		v.Make,
		v.Model,
		v.Year,
		v.Color,
		v.OdoKm,
		string(v.Status),
	)
	if isUniqueViolation(err, "plate") {
		return myerrors.ErrPlateRegistered
	}
	return err
}

const vehicleColumns = `id, plate, COALESCE(make, ''), COALESCE(model, ''), COALESCE(year, 0), COALESCE(color, ''), odo_km, status`

func (cr *CatalogRepo) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY plate`

	rows, err := cr.db.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (cr *CatalogRepo) FindVehicleById(ctx context.Context, vehicleId string) (model.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(cr.db.pool.QueryRow(ctx, q, vehicleId))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Vehicle{}, myerrors.ErrNotFound
	}
	if err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

func scanRatePlan(row pgx.Row) (model.RatePlan, error) {
	rp := model.RatePlan{}
	var multiplier string
	err := row.Scan(
		&rp.ID, &rp.Name, &rp.DailyRate, &rp.WeeklyRate, &rp.DepositAmount,
		&rp.KmIncludedPerDay, &rp.ExtraKmRate, &multiplier, &rp.Active,
	)
	if err != nil {
		return model.RatePlan{}, err
	}
	rp.WeekendMultiplier, err = decimal.NewFromString(multiplier)
	if err != nil {
		return model.RatePlan{}, err
	}
	return rp, nil
}

func scanVehicle(row pgx.Row) (model.Vehicle, error) {
	v := model.Vehicle{}
	err := row.Scan(
		&v.ID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.Color, &v.OdoKm, &v.Status,
	)
	return v, err
}
