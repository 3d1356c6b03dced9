package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository/memory"
)

func TestBillableHours(t *testing.T) {
	cases := []struct {
		minutes int64
		want    int
	}{
		{-5, 1}, // clock skew still bills the minimum
		{0, 1},
		{1, 1},
		{15, 1},
		{59, 1},
		{60, 1},
		{61, 2},
		{119, 2},
		{120, 2},
		{121, 3},
		{600, 10},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BillableHours(tc.minutes), "minutes=%d", tc.minutes)
	}
}

func TestHourlyRateDefaults(t *testing.T) {
	ctx := context.Background()
	b := NewBilling(memory.NewRateRepo(memory.NewStore()))

	for vt, want := range map[string]float64{
		model.VehicleBike:     50,
		model.VehicleCar:      100,
		model.VehicleMicrobus: 150,
		model.VehicleTruck:    200,
	} {
		rate, err := b.HourlyRate(ctx, vt)
		require.NoError(t, err)
		require.Equal(t, want, rate, "class %s", vt)
	}

	rate, err := b.HourlyRate(ctx, "HOVERCRAFT")
	require.NoError(t, err)
	require.Equal(t, fallbackHourlyRate, rate)
}

func TestHourlyRateTableOverridesDefaults(t *testing.T) {
	ctx := context.Background()
	rates := memory.NewRateRepo(memory.NewStore())
	b := NewBilling(rates)

	_, err := rates.Upsert(ctx, model.VehicleCar, 175)
	require.NoError(t, err)

	rate, err := b.HourlyRate(ctx, model.VehicleCar)
	require.NoError(t, err)
	require.Equal(t, 175.0, rate)

	// Other classes still use the defaults.
	rate, err = b.HourlyRate(ctx, model.VehicleTruck)
	require.NoError(t, err)
	require.Equal(t, 200.0, rate)
}

func TestCharge(t *testing.T) {
	ctx := context.Background()
	b := NewBilling(memory.NewRateRepo(memory.NewStore()))

	hours, amount, err := b.Charge(ctx, model.VehicleCar, 90)
	require.NoError(t, err)
	require.Equal(t, 2, hours)
	require.Equal(t, 200.0, amount)

	hours, amount, err = b.Charge(ctx, model.VehicleBike, 30)
	require.NoError(t, err)
	require.Equal(t, 1, hours)
	require.Equal(t, 50.0, amount)
}

func TestPreviewOverdue(t *testing.T) {
	ctx := context.Background()
	b := NewBilling(memory.NewRateRepo(memory.NewStore()))
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := &model.ParkingRecord{VehicleType: model.VehicleCar, EntryTime: entry}

	p, err := b.Preview(ctx, rec, entry.Add(90*time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(90), p.DurationMinutes)
	require.Equal(t, 2, p.BillableHours)
	require.Equal(t, 200.0, p.Amount)
	require.False(t, p.Overdue)

	p, err = b.Preview(ctx, rec, entry.Add(24*time.Hour))
	require.NoError(t, err)
	require.False(t, p.Overdue, "exactly 24h is not overdue")

	p, err = b.Preview(ctx, rec, entry.Add(24*time.Hour+time.Minute))
	require.NoError(t, err)
	require.True(t, p.Overdue)
	require.Equal(t, 25, p.BillableHours)
}
