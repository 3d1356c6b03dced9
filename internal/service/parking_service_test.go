package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

func TestParkVehicleScansInOrder(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	first, err := env.parking.ParkVehicle(ctx, "abc-1", "car")
	require.NoError(t, err)
	require.Equal(t, 2, first.SlotNumber, "lowest car slot first")
	require.Equal(t, "ABC-1", first.LicensePlate, "plate is canonicalized")

	second, err := env.parking.ParkVehicle(ctx, "abc-2", "CAR")
	require.NoError(t, err)
	require.Equal(t, 3, second.SlotNumber)

	_, err = env.parking.ParkVehicle(ctx, "abc-3", "CAR")
	require.ErrorIs(t, err, ErrNoSlotAvailable)

	// Other classes are unaffected by the car slots filling up.
	bike, err := env.parking.ParkVehicle(ctx, "bike-1", "BIKE")
	require.NoError(t, err)
	require.Equal(t, 1, bike.SlotNumber)
}

func TestParkVehicleRejectsBadInput(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicle(ctx, "  ", "CAR")
	require.ErrorIs(t, err, ErrInvalidPlate)

	_, err = env.parking.ParkVehicle(ctx, "ABC-1", "HOVERCRAFT")
	require.ErrorIs(t, err, ErrInvalidVehicleType)
}

func TestParkVehicleInSlotPreferred(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	rec, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 3, nil)
	require.NoError(t, err)
	require.Equal(t, 3, rec.SlotNumber)

	_, err = env.parking.ParkVehicleInSlot(ctx, "ABC-2", "CAR", 99, nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParkVehicleInSlotStrictMode(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	// Wrong class for the slot.
	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 1, nil)
	require.ErrorIs(t, err, ErrVehicleClassMismatch)

	// Occupied preferred slot.
	_, err = env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	_, err = env.parking.ParkVehicleInSlot(ctx, "ABC-2", "CAR", 2, nil)
	require.ErrorIs(t, err, repository.ErrSlotOccupied)
}

func TestParkVehicleInSlotFallbackMode(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	// Class mismatch falls back to the scan and lands in a car slot.
	rec, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 1, nil)
	require.NoError(t, err)
	require.Equal(t, 2, rec.SlotNumber)

	// Occupied preferred slot falls back too.
	rec, err = env.parking.ParkVehicleInSlot(ctx, "ABC-2", "CAR", 2, nil)
	require.NoError(t, err)
	require.Equal(t, 3, rec.SlotNumber)
}

func TestConcurrentParkSameSlotOneWinner(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, repository.ErrSlotOccupied)
		}
	}
	require.Equal(t, 1, wins, "exactly one caller gets the slot")
}

func TestExitBySlotBillsStay(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(90 * time.Minute)

	closed, err := env.parking.ExitBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.NotNil(t, closed.ExitTime)
	require.Equal(t, int64(90), closed.DurationMinutes)
	require.Equal(t, 2, closed.BillableHours)
	require.Equal(t, 200.0, closed.Charge)

	// The slot is free again.
	_, err = env.records.FindOpenBySlot(ctx, intPtr(1), 2)
	require.ErrorIs(t, err, repository.ErrNoOpenRecord)

	// A second exit for the same slot fails.
	_, err = env.parking.ExitBySlot(ctx, intPtr(1), 2)
	require.ErrorIs(t, err, repository.ErrNoOpenRecord)
}

func TestExitByPlate(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicle(ctx, "abc-1", "CAR")
	require.NoError(t, err)
	env.clock.Advance(30 * time.Minute)

	closed, err := env.parking.ExitByPlate(ctx, "abc-1")
	require.NoError(t, err)
	require.Equal(t, 1, closed.BillableHours, "short stay bills the minimum hour")
	require.Equal(t, 100.0, closed.Charge)

	_, err = env.parking.ExitByPlate(ctx, "abc-1")
	require.ErrorIs(t, err, repository.ErrNoOpenRecord)
}

func TestPreviewMatchesBilledCharge(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	open, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(90 * time.Minute)

	billing := NewBilling(env.rates)
	preview, err := billing.Preview(ctx, open, env.clock.Now())
	require.NoError(t, err)

	closed, err := env.parking.ExitBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.Equal(t, preview.Amount, closed.Charge, "preview at exit time equals the bill")
	require.Equal(t, preview.BillableHours, closed.BillableHours)
}

func TestListSlotsBoard(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(45 * time.Minute)

	views, err := env.parking.ListSlots(ctx)
	require.NoError(t, err)
	require.Len(t, views, 4)

	// Board is ordered by (floor, slot).
	for i, want := range []int{1, 2, 3, 4} {
		require.Equal(t, want, views[i].SlotNumber)
	}

	free := views[0]
	require.False(t, free.Occupied)
	require.Nil(t, free.LicensePlate)
	require.Nil(t, free.AllowedMinutes)

	taken := views[1]
	require.True(t, taken.Occupied)
	require.Equal(t, "ABC-1", *taken.LicensePlate)
	require.Equal(t, int64(45), *taken.DurationMinutes)
	require.Equal(t, allowedMinutes, *taken.AllowedMinutes)
}

func TestSlotDetail(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	det, err := env.parking.SlotDetail(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.False(t, det.Occupied)
	require.Equal(t, 0.0, det.CurrentCharge)

	_, err = env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(25 * time.Hour)

	det, err = env.parking.SlotDetail(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.True(t, det.Occupied)
	require.Equal(t, "ABC-1", *det.LicensePlate)
	require.Equal(t, 25.0*100, det.CurrentCharge)
	require.True(t, det.Overdue)

	_, err = env.parking.SlotDetail(ctx, nil, 99)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicle(ctx, "ABC-1", "CAR")
	require.NoError(t, err)
	_, err = env.parking.ParkVehicle(ctx, "ABC-2", "CAR")
	require.NoError(t, err)
	env.clock.Advance(2 * time.Hour)
	_, err = env.parking.ExitByPlate(ctx, "ABC-1")
	require.NoError(t, err)

	stats, err := env.parking.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalSlots)
	require.Equal(t, 1, stats.OccupiedSlots)
	require.Equal(t, 3, stats.AvailableSlots)
	require.Equal(t, 1, stats.CurrentlyParked)
	require.Equal(t, 2, stats.VehiclesToday)
	require.Equal(t, 200.0, stats.TodayRevenue)
}

func TestVehicleHistory(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicle(ctx, "ABC-1", "CAR")
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	_, err = env.parking.ExitByPlate(ctx, "ABC-1")
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	_, err = env.parking.ParkVehicle(ctx, "abc-1", "CAR")
	require.NoError(t, err)

	history, err := env.parking.VehicleHistory(ctx, "abc-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.True(t, history[0].Open(), "newest visit first")
	require.False(t, history[1].Open())
	for _, rec := range history {
		require.Equal(t, "ABC-1", rec.LicensePlate)
		require.Equal(t, model.VehicleCar, rec.VehicleType)
	}
}

func TestListSlotsByFloorFiltersBoard(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.admin.CreateFloor(ctx, "boss", 2, "upper deck")
	require.NoError(t, err)
	_, err = env.admin.AddSlots(ctx, "boss", 2, "CAR", 1, 2)
	require.NoError(t, err)

	_, err = env.parking.ParkVehicleInSlot(ctx, "UP-1", "CAR", 1, intPtr(2))
	require.NoError(t, err)

	upper, err := env.parking.ListSlotsByFloor(ctx, 2)
	require.NoError(t, err)
	require.Len(t, upper, 2)
	for _, v := range upper {
		require.Equal(t, 2, v.FloorNumber)
	}
	require.True(t, upper[0].Occupied)
	require.Equal(t, "UP-1", *upper[0].LicensePlate)
	require.False(t, upper[1].Occupied)

	ground, err := env.parking.ListSlotsByFloor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ground, 4)
	for _, v := range ground {
		require.False(t, v.Occupied)
	}

	// An unknown floor is an empty board, not an error.
	none, err := env.parking.ListSlotsByFloor(ctx, 9)
	require.NoError(t, err)
	require.Empty(t, none)
}
