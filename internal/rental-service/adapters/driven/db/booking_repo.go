package db

import (
	"context"
	"errors"
	"time"

	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type BookingRepo struct {
	db *DB
}

func NewBookingRepo(db *DB) ports.IBookingRepo {
	return &BookingRepo{
		db: db,
	}
}

const overlapQuery = `
	SELECT 1 FROM bookings
	WHERE vehicle_id = $1
	  AND $2 < end_ts
	  AND $3 > start_ts
	  AND status IN ('hold','confirmed','checked_out')
	LIMIT 1`

// CreateHold runs the availability check and both inserts in one transaction.
// The advisory lock serializes concurrent holds per vehicle, so the overlap
// predicate cannot be violated by a lost check-then-insert race.
func (br *BookingRepo) CreateHold(ctx context.Context, cust model.Customer, b model.Booking) error {
	tx, err := br.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, b.VehicleID); err != nil {
		return err
	}

	var one int
	err = tx.QueryRow(ctx, overlapQuery, b.VehicleID, b.StartTs, b.EndTs).Scan(&one)
	if err == nil {
		return myerrors.ErrVehicleUnavailable
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	q1 := `INSERT INTO customers(
			id,
			full_name,
			phone_e164,
			email
			) VALUES ($1, $2, $3, NULLIF($4, ''))`
	if _, err := tx.Exec(ctx, q1, cust.ID, cust.FullName, cust.PhoneE164, cust.Email); err != nil {
		return err
	}

	q2 := `INSERT INTO bookings(
			id,
			code,
			customer_id,
			vehicle_id,
			rate_plan_id,
			start_ts,
			end_ts,
			status,
			notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))`
	if _, err := tx.Exec(ctx, q2,
		b.ID,
		b.Code,
		b.CustomerID,
		b.VehicleID,
		b.RatePlanID,
		b.StartTs,
		b.EndTs,
		string(b.Status),
		b.Notes,
	); err != nil {
		if isUniqueViolation(err, "code") {
			return myerrors.ErrCodeCollision
		}
		return err
	}

	return tx.Commit(ctx)
}

func (br *BookingRepo) IsVehicleFree(ctx context.Context, vehicleId string, start, end time.Time) (bool, error) {
	var one int
	err := br.db.pool.QueryRow(ctx, overlapQuery, vehicleId, start, end).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (br *BookingRepo) FindById(ctx context.Context, bookingId string) (model.Booking, error) {
	q := `
	SELECT id, code, customer_id, vehicle_id, rate_plan_id, start_ts, end_ts, status, COALESCE(notes, '')
	FROM bookings
	WHERE id = $1`

	b := model.Booking{}
	err := br.db.pool.QueryRow(ctx, q, bookingId).Scan(
		&b.ID, &b.Code, &b.CustomerID, &b.VehicleID, &b.RatePlanID,
		&b.StartTs, &b.EndTs, &b.Status, &b.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, myerrors.ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

func (br *BookingRepo) FindByCode(ctx context.Context, code string) (model.Booking, model.Customer, model.Vehicle, error) {
	q := `
	SELECT
		b.id, b.code, b.customer_id, b.vehicle_id, b.rate_plan_id,
		b.start_ts, b.end_ts, b.status, COALESCE(b.notes, ''),
		c.full_name, c.phone_e164, COALESCE(c.email, ''),
		v.plate, COALESCE(v.make, ''), COALESCE(v.model, '')
	FROM bookings b
	JOIN customers c ON c.id = b.customer_id
	JOIN vehicles v ON v.id = b.vehicle_id
	WHERE upper(b.code) = upper($1)`

	b := model.Booking{}
	cust := model.Customer{}
	veh := model.Vehicle{}
	err := br.db.pool.QueryRow(ctx, q, code).Scan(
		&b.ID, &b.Code, &b.CustomerID, &b.VehicleID, &b.RatePlanID,
		&b.StartTs, &b.EndTs, &b.Status, &b.Notes,
		&cust.FullName, &cust.PhoneE164, &cust.Email,
		&veh.Plate, &veh.Make, &veh.Model,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, model.Customer{}, model.Vehicle{}, myerrors.ErrNotFound
	}
	if err != nil {
		return model.Booking{}, model.Customer{}, model.Vehicle{}, err
	}
	cust.ID = b.CustomerID
	veh.ID = b.VehicleID
	return b, cust, veh, nil
}

func (br *BookingRepo) FindCustomerById(ctx context.Context, customerId string) (model.Customer, error) {
	q := `SELECT id, full_name, phone_e164, COALESCE(email, ''), created_at FROM customers WHERE id = $1`

	cust := model.Customer{}
	err := br.db.pool.QueryRow(ctx, q, customerId).Scan(
		&cust.ID, &cust.FullName, &cust.PhoneE164, &cust.Email, &cust.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Customer{}, myerrors.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return cust, nil
}

// UpdateStatus is the store-side guard of the lifecycle: the row only moves
// if it is still in the expected status.
func (br *BookingRepo) UpdateStatus(ctx context.Context, bookingId string, from, to model.BookingStatus) (bool, error) {
	q := `UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := br.db.pool.Exec(ctx, q, bookingId, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (br *BookingRepo) RecordHandover(ctx context.Context, insp model.Inspection, from, to model.BookingStatus) error {
	tx, err := br.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	tag, err := tx.Exec(ctx, `UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`,
		insp.BookingID, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, insp.BookingID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return myerrors.ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		return myerrors.ErrInvalidStateTransition
	}

	q := `INSERT INTO inspections(
			id,
			booking_id,
			phase,
			odo_km,
			fuel_level,
			photos,
			checklist,
			notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`
	if _, err := tx.Exec(ctx, q,
		insp.ID,
		insp.BookingID,
		string(insp.Phase),
		insp.OdoKm,
		insp.FuelLevel,
		insp.Photos,
		insp.Checklist,
		insp.Notes,
	); err != nil {
		// one checkout and at most one checkin per booking
		if isUniqueViolation(err, "booking_id_phase") {
			return myerrors.ErrInvalidStateTransition
		}
		return err
	}

	return tx.Commit(ctx)
}
