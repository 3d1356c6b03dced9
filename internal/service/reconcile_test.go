package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcileHealsStaleOccupiedCache(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	// Corrupt the cache: slot 2 claims a vehicle the ledger knows
	// nothing about.
	slot, err := env.slots.FindBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	ghost := "GHOST-1"
	require.NoError(t, env.slots.UpdateOccupancy(ctx, slot.ID, true, &ghost))

	// The board trusts the ledger and shows the slot free.
	views, err := env.parking.ListSlots(ctx)
	require.NoError(t, err)
	require.False(t, views[1].Occupied)
	require.Nil(t, views[1].LicensePlate)

	// And the read healed the cache.
	slot, err = env.slots.FindBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.False(t, slot.IsOccupied)
	require.Nil(t, slot.ParkedPlate)

	// A healed slot is allocatable again.
	rec, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	require.Equal(t, 2, rec.SlotNumber)
}

func TestReconcileHealsStaleFreeCache(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	rec, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)

	// Corrupt the cache the other way: wipe the occupancy flag while
	// the ledger still holds an open record.
	slot, err := env.slots.FindBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.NoError(t, env.slots.UpdateOccupancy(ctx, slot.ID, false, nil))

	views, err := env.parking.ListSlots(ctx)
	require.NoError(t, err)
	require.True(t, views[1].Occupied)
	require.Equal(t, rec.LicensePlate, *views[1].LicensePlate)

	slot, err = env.slots.FindBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.True(t, slot.IsOccupied)
	require.Equal(t, "ABC-1", *slot.ParkedPlate)
}

func TestReconcileSyncIdempotent(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()
	rec := NewReconciler(env.slots)

	slot, err := env.slots.FindBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	before := slot.UpdatedAt

	// Cache already agrees with the ledger; Sync must not write.
	rec.Sync(ctx, slot, nil)
	rec.Sync(ctx, slot, nil)

	slot, err = env.slots.FindBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.Equal(t, before, slot.UpdatedAt)
}
