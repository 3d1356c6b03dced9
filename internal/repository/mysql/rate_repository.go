package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// RateRepo manages the administrative rate table.  One active row
// exists per vehicle class; billing falls back to built-in defaults
// for classes without a row, so an empty table is a valid state.
type RateRepo struct {
	db *sql.DB
}

// NewRateRepo returns a new RateRepo bound to the given database.
func NewRateRepo(db *sql.DB) *RateRepo { return &RateRepo{db: db} }

// Upsert creates or updates the rate row for a vehicle class and
// returns the stored row.
func (r *RateRepo) Upsert(ctx context.Context, vehicleType string, hourlyRate float64) (*model.ParkingCharge, error) {
	const q = `INSERT INTO parking_charges (vehicle_type, hourly_rate, active)
	           VALUES (?, ?, TRUE)
	           ON DUPLICATE KEY UPDATE hourly_rate = VALUES(hourly_rate), active = TRUE`
	if _, err := r.db.ExecContext(ctx, q, vehicleType, hourlyRate); err != nil {
		return nil, err
	}
	return r.FindActiveByType(ctx, vehicleType)
}

// FindActiveByType returns the active rate for a vehicle class, or
// repository.ErrNotFound when no row exists.
func (r *RateRepo) FindActiveByType(ctx context.Context, vehicleType string) (*model.ParkingCharge, error) {
	const q = `SELECT id, vehicle_type, hourly_rate, active FROM parking_charges WHERE vehicle_type = ? AND active = TRUE`
	var c model.ParkingCharge
	err := r.db.QueryRowContext(ctx, q, vehicleType).Scan(&c.ID, &c.VehicleType, &c.HourlyRate, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll returns every rate row ordered by vehicle class.
func (r *RateRepo) FindAll(ctx context.Context) ([]model.ParkingCharge, error) {
	const q = `SELECT id, vehicle_type, hourly_rate, active FROM parking_charges ORDER BY vehicle_type ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	charges := make([]model.ParkingCharge, 0)
	for rows.Next() {
		var c model.ParkingCharge
		if err := rows.Scan(&c.ID, &c.VehicleType, &c.HourlyRate, &c.Active); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return charges, nil
}
