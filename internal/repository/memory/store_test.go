package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

func TestOpenEnforcesOneOpenRecordPerSlot(t *testing.T) {
	records := NewRecordRepo(NewStore())
	ctx := context.Background()
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = records.Open(ctx, &model.ParkingRecord{
				LicensePlate: "ABC-1",
				VehicleType:  model.VehicleCar,
				FloorNumber:  1,
				SlotNumber:   2,
				EntryTime:    entry,
			})
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
	require.Equal(t, 1, wins)

	// Closing the winner frees the slot for a new open record.
	open, err := records.FindOpenBySlot(ctx, nil, 2)
	require.NoError(t, err)
	_, err = records.Close(ctx, open.ID, entry.Add(time.Hour), 60, 1, 100)
	require.NoError(t, err)
	_, err = records.Open(ctx, &model.ParkingRecord{
		LicensePlate: "ABC-2",
		VehicleType:  model.VehicleCar,
		FloorNumber:  1,
		SlotNumber:   2,
		EntryTime:    entry.Add(2 * time.Hour),
	})
	require.NoError(t, err)
}

func TestCloseIsFinal(t *testing.T) {
	records := NewRecordRepo(NewStore())
	ctx := context.Background()
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	open, err := records.Open(ctx, &model.ParkingRecord{
		LicensePlate: "ABC-1",
		VehicleType:  model.VehicleCar,
		FloorNumber:  1,
		SlotNumber:   2,
		EntryTime:    entry,
	})
	require.NoError(t, err)

	closed, err := records.Close(ctx, open.ID, entry.Add(90*time.Minute), 90, 2, 200)
	require.NoError(t, err)
	require.NotNil(t, closed.ExitTime)

	_, err = records.Close(ctx, open.ID, entry.Add(3*time.Hour), 180, 3, 300)
	require.ErrorIs(t, err, repository.ErrAlreadyClosed)

	// Closed records cannot be moved or corrected either.
	_, err = records.Reassign(ctx, open.ID, 1, 3)
	require.ErrorIs(t, err, repository.ErrRecordClosed)
	_, err = records.UpdatePlate(ctx, open.ID, "XYZ-9")
	require.ErrorIs(t, err, repository.ErrRecordClosed)

	// The stored amounts are untouched.
	kept, err := records.FindByID(ctx, open.ID)
	require.NoError(t, err)
	require.Equal(t, 200.0, kept.Charge)
	require.Equal(t, int64(90), kept.DurationMinutes)
}

func TestReassignRespectsTargetOccupancy(t *testing.T) {
	store := NewStore()
	records := NewRecordRepo(store)
	ctx := context.Background()
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	a, err := records.Open(ctx, &model.ParkingRecord{LicensePlate: "A", VehicleType: model.VehicleCar, FloorNumber: 1, SlotNumber: 2, EntryTime: entry})
	require.NoError(t, err)
	_, err = records.Open(ctx, &model.ParkingRecord{LicensePlate: "B", VehicleType: model.VehicleCar, FloorNumber: 1, SlotNumber: 3, EntryTime: entry})
	require.NoError(t, err)

	_, err = records.Reassign(ctx, a.ID, 1, 3)
	require.ErrorIs(t, err, repository.ErrTargetOccupied)

	moved, err := records.Reassign(ctx, a.ID, 1, 4)
	require.NoError(t, err)
	require.Equal(t, 4, moved.SlotNumber)
	require.Equal(t, entry, moved.EntryTime)
}

func TestSlotOrderingAndDuplicates(t *testing.T) {
	slots := NewSlotRepo(NewStore())
	ctx := context.Background()

	for _, s := range []struct{ floor, number int }{{2, 1}, {1, 2}, {1, 1}, {2, 2}} {
		_, err := slots.Create(ctx, &model.ParkingSlot{FloorNumber: s.floor, SlotNumber: s.number, VehicleType: model.VehicleCar})
		require.NoError(t, err)
	}

	_, err := slots.Create(ctx, &model.ParkingSlot{FloorNumber: 1, SlotNumber: 1, VehicleType: model.VehicleCar})
	require.ErrorIs(t, err, repository.ErrDuplicateSlot)

	all, err := slots.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	want := []struct{ floor, number int }{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	for i, w := range want {
		require.Equal(t, w.floor, all[i].FloorNumber)
		require.Equal(t, w.number, all[i].SlotNumber)
	}

	// FindBySlot without a floor picks the lowest floor.
	found, err := slots.FindBySlot(ctx, nil, 1)
	require.NoError(t, err)
	require.Equal(t, 1, found.FloorNumber)
}
