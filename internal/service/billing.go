package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// Built-in hourly rates used when the rate table has no row for a
// vehicle class.  Unknown classes bill at the fallback rate rather
// than failing the exit.
var defaultHourlyRates = map[string]float64{
	model.VehicleBike:     50,
	model.VehicleCar:      100,
	model.VehicleMicrobus: 150,
	model.VehicleTruck:    200,
}

// fallbackHourlyRate applies to vehicle classes absent from both the
// rate table and the defaults.
const fallbackHourlyRate = 100.0

// overdueAfter is the stay length past which a vehicle is flagged as
// overdue on detail views.
const overdueAfter = 24 * time.Hour

// BillableHours converts an elapsed stay into charged hours.  Any
// stay up to one hour bills as one hour, including zero and negative
// durations from clock skew.  Beyond that, partial hours round up.
func BillableHours(minutes int64) int {
	if minutes <= 60 {
		return 1
	}
	hours := minutes / 60
	if minutes%60 != 0 {
		hours++
	}
	return int(hours)
}

// ChargePreview is a non-mutating view of what an exit would cost if
// it happened now.  Nothing is written to the ledger when one is
// computed.
type ChargePreview struct {
	DurationMinutes int64   `json:"duration_minutes"`
	BillableHours   int     `json:"billable_hours"`
	HourlyRate      float64 `json:"hourly_rate"`
	Amount          float64 `json:"amount"`
	Overdue         bool    `json:"overdue"`
}

// Billing computes parking charges from the rate table with built-in
// defaults behind it.  The same math runs for real exits, forced
// exits and previews, so a preview taken at the moment of exit always
// matches the billed amount.
type Billing struct {
	rates repository.RateRepository
}

// NewBilling returns a Billing backed by the given rate table.
func NewBilling(rates repository.RateRepository) *Billing {
	return &Billing{rates: rates}
}

// HourlyRate resolves the active rate for a vehicle class.  The rate
// table wins over the defaults; unknown classes get the fallback.
func (b *Billing) HourlyRate(ctx context.Context, vehicleType string) (float64, error) {
	if b.rates != nil {
		c, err := b.rates.FindActiveByType(ctx, vehicleType)
		if err == nil {
			return c.HourlyRate, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
	}
	if rate, ok := defaultHourlyRates[vehicleType]; ok {
		return rate, nil
	}
	return fallbackHourlyRate, nil
}

// Charge computes the billable hours and amount for a stay of the
// given length.
func (b *Billing) Charge(ctx context.Context, vehicleType string, minutes int64) (int, float64, error) {
	rate, err := b.HourlyRate(ctx, vehicleType)
	if err != nil {
		return 0, 0, err
	}
	hours := BillableHours(minutes)
	return hours, float64(hours) * rate, nil
}

// Preview computes what an open record would cost if it exited at
// the given instant.
func (b *Billing) Preview(ctx context.Context, rec *model.ParkingRecord, at time.Time) (*ChargePreview, error) {
	elapsed := at.Sub(rec.EntryTime)
	minutes := int64(elapsed.Minutes())
	hours, amount, err := b.Charge(ctx, rec.VehicleType, minutes)
	if err != nil {
		return nil, err
	}
	rate, err := b.HourlyRate(ctx, rec.VehicleType)
	if err != nil {
		return nil, err
	}
	return &ChargePreview{
		DurationMinutes: minutes,
		BillableHours:   hours,
		HourlyRate:      rate,
		Amount:          amount,
		Overdue:         elapsed > overdueAfter,
	}, nil
}
