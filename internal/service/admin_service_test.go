package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

func auditsByAction(t *testing.T, env *testEnv, action string) []model.AuditLog {
	t.Helper()
	all, err := env.audits.FindAll(context.Background())
	require.NoError(t, err)
	out := make([]model.AuditLog, 0)
	for _, e := range all {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func TestForceExitBillsLikeNormalExit(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(90 * time.Minute)

	closed, err := env.admin.ForceExit(ctx, "ops1", intPtr(1), 2)
	require.NoError(t, err)
	require.Equal(t, 2, closed.BillableHours)
	require.Equal(t, 200.0, closed.Charge, "forced exit bills exactly like a normal one")

	entries := auditsByAction(t, env, model.AuditForceExit)
	require.Len(t, entries, 1, "exactly one audit entry per override")
	require.Equal(t, "ops1", entries[0].AdminUsername)
	require.NotNil(t, entries[0].Details)

	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(*entries[0].Details), &details))
	require.Equal(t, "ABC-1", details["license_plate"])
	require.Equal(t, 200.0, details["charge"])

	_, err = env.admin.ForceExit(ctx, "ops1", intPtr(1), 2)
	require.ErrorIs(t, err, repository.ErrNoOpenRecord)
}

func TestMarkSlotAvailable(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	// A slot with a real vehicle cannot be marked available.
	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	err = env.admin.MarkSlotAvailable(ctx, "ops1", intPtr(1), 2)
	require.ErrorIs(t, err, ErrVehicleStillPresent)
	require.Empty(t, auditsByAction(t, env, model.AuditMarkSlotAvailable), "failed override writes no audit entry")

	// A slot with only stale cache state is cleaned up.
	slot, err := env.slots.FindBySlot(ctx, intPtr(1), 3)
	require.NoError(t, err)
	ghost := "GHOST-1"
	require.NoError(t, env.slots.UpdateOccupancy(ctx, slot.ID, true, &ghost))

	require.NoError(t, env.admin.MarkSlotAvailable(ctx, "ops1", intPtr(1), 3))
	slot, err = env.slots.FindBySlot(ctx, intPtr(1), 3)
	require.NoError(t, err)
	require.False(t, slot.IsOccupied)
	require.Nil(t, slot.ParkedPlate)

	// Marking an already-clean slot succeeds and is audited again.
	require.NoError(t, env.admin.MarkSlotAvailable(ctx, "ops1", intPtr(1), 3))
	require.Len(t, auditsByAction(t, env, model.AuditMarkSlotAvailable), 2)
}

func TestChangeSlot(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	open, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(time.Hour)

	moved, err := env.admin.ChangeSlot(ctx, "ops1", intPtr(1), 2, intPtr(1), 3)
	require.NoError(t, err)
	require.Equal(t, 3, moved.SlotNumber)
	require.Equal(t, open.EntryTime, moved.EntryTime, "entry time survives the move")
	require.True(t, moved.Open())

	// The old slot is free again and the new one holds the vehicle.
	_, err = env.records.FindOpenBySlot(ctx, intPtr(1), 2)
	require.ErrorIs(t, err, repository.ErrNoOpenRecord)
	found, err := env.records.FindOpenBySlot(ctx, intPtr(1), 3)
	require.NoError(t, err)
	require.Equal(t, "ABC-1", found.LicensePlate)

	require.Len(t, auditsByAction(t, env, model.AuditChangeSlot), 1)
}

func TestChangeSlotTargetOccupied(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	_, err = env.parking.ParkVehicleInSlot(ctx, "ABC-2", "CAR", 3, nil)
	require.NoError(t, err)

	_, err = env.admin.ChangeSlot(ctx, "ops1", intPtr(1), 2, intPtr(1), 3)
	require.ErrorIs(t, err, repository.ErrTargetOccupied)

	_, err = env.admin.ChangeSlot(ctx, "ops1", intPtr(1), 2, intPtr(1), 99)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateLicensePlate(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)

	updated, err := env.admin.UpdateLicensePlate(ctx, "ops1", intPtr(1), 2, "xyz-9")
	require.NoError(t, err)
	require.Equal(t, "XYZ-9", updated.LicensePlate)

	entries := auditsByAction(t, env, model.AuditUpdatePlate)
	require.Len(t, entries, 1)
	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(*entries[0].Details), &details))
	require.Equal(t, "ABC-1", details["old_plate"])
	require.Equal(t, "XYZ-9", details["new_plate"])

	// Closed records are immutable: once the vehicle exits there is no
	// open record on the slot to correct.
	_, err = env.parking.ExitBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	_, err = env.admin.UpdateLicensePlate(ctx, "ops1", intPtr(1), 2, "XYZ-10")
	require.ErrorIs(t, err, repository.ErrNoOpenRecord)
}

func TestUpdateRateAffectsFutureExits(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	// First visit billed at the default car rate.
	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(30 * time.Minute)
	first, err := env.parking.ExitBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.Equal(t, 100.0, first.Charge)

	_, err = env.admin.UpdateRate(ctx, "boss", "car", 250)
	require.NoError(t, err)

	// Second visit picks up the new rate; the first keeps its charge.
	_, err = env.parking.ParkVehicleInSlot(ctx, "ABC-2", "CAR", 2, nil)
	require.NoError(t, err)
	env.clock.Advance(30 * time.Minute)
	second, err := env.parking.ExitBySlot(ctx, intPtr(1), 2)
	require.NoError(t, err)
	require.Equal(t, 250.0, second.Charge)

	kept, err := env.records.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, kept.Charge)

	_, err = env.admin.UpdateRate(ctx, "boss", "CAR", -5)
	require.Error(t, err)
	_, err = env.admin.UpdateRate(ctx, "boss", "HOVERCRAFT", 50)
	require.ErrorIs(t, err, ErrInvalidVehicleType)
}

func TestAddSlotsBatch(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	created, err := env.admin.AddSlots(ctx, "boss", 1, "TRUCK", 10, 3)
	require.NoError(t, err)
	require.Len(t, created, 3)
	for i, s := range created {
		require.Equal(t, 10+i, s.SlotNumber)
		require.Equal(t, model.VehicleTruck, s.VehicleType)
	}

	// A collision stops the batch.
	_, err = env.admin.AddSlots(ctx, "boss", 1, "TRUCK", 11, 2)
	require.ErrorIs(t, err, repository.ErrDuplicateSlot)

	// An unknown floor rejects the whole request.
	_, err = env.admin.AddSlots(ctx, "boss", 9, "TRUCK", 1, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteSlot(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
	require.NoError(t, err)
	err = env.admin.DeleteSlot(ctx, "boss", intPtr(1), 2)
	require.ErrorIs(t, err, repository.ErrSlotOccupied)

	require.NoError(t, env.admin.DeleteSlot(ctx, "boss", intPtr(1), 3))
	_, err = env.slots.FindBySlot(ctx, intPtr(1), 3)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Len(t, auditsByAction(t, env, model.AuditDeleteSlot), 1)
}

func TestCreateFloorDuplicate(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.admin.CreateFloor(ctx, "boss", 2, "upper deck")
	require.NoError(t, err)
	_, err = env.admin.CreateFloor(ctx, "boss", 2, "again")
	require.ErrorIs(t, err, repository.ErrDuplicateFloor)

	floors, err := env.admin.Floors(ctx)
	require.NoError(t, err)
	require.Len(t, floors, 2)
	require.Len(t, auditsByAction(t, env, model.AuditCreateFloor), 1)
}

func TestAuditQueries(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.admin.CreateFloor(ctx, "alice", 2, "")
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	_, err = env.admin.UpdateRate(ctx, "bob", "CAR", 120)
	require.NoError(t, err)

	all, err := env.admin.AuditLogs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, model.AuditUpdateCharge, all[0].Action, "newest first")

	mine, err := env.admin.AuditLogsByAdmin(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, model.AuditCreateFloor, mine[0].Action)

	start := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	windowed, err := env.admin.AuditLogsBetween(ctx, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, "bob", windowed[0].AdminUsername)
}

func TestSlotHistory(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.parking.ParkVehicleInSlot(ctx, "ABC-1", "CAR", 2, nil)
		require.NoError(t, err)
		env.clock.Advance(time.Hour)
		_, err = env.parking.ExitBySlot(ctx, intPtr(1), 2)
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
	}

	history, err := env.admin.SlotHistory(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, history, 2, "limit applies")
	require.True(t, history[0].ExitTime.After(*history[1].ExitTime), "newest first")
}

func TestFloorAndSlotNumbersMustBePositive(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	_, err := env.admin.CreateFloor(ctx, "boss", 0, "basement zero")
	require.ErrorIs(t, err, ErrInvalidNumber)
	_, err = env.admin.CreateFloor(ctx, "boss", -2, "sub-basement")
	require.ErrorIs(t, err, ErrInvalidNumber)

	_, err = env.admin.AddSlots(ctx, "boss", 0, "CAR", 1, 2)
	require.ErrorIs(t, err, ErrInvalidNumber)
	_, err = env.admin.AddSlots(ctx, "boss", 1, "CAR", 0, 2)
	require.ErrorIs(t, err, ErrInvalidNumber)
	_, err = env.admin.AddSlots(ctx, "boss", 1, "CAR", 10, 0)
	require.ErrorIs(t, err, ErrInvalidNumber)

	// Rejected requests leave no trace in the catalog or the trail.
	floors, err := env.admin.Floors(ctx)
	require.NoError(t, err)
	require.Len(t, floors, 1)
	require.Empty(t, auditsByAction(t, env, model.AuditCreateFloor))
	require.Empty(t, auditsByAction(t, env, model.AuditAddSlots))
}

func TestRecordsHistoryFilters(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	// Three closed visits an hour apart: car in slot 2, car in
	// slot 3, bike in slot 1.  A fourth vehicle stays parked.
	for _, v := range []struct {
		plate string
		class string
		slot  int
	}{
		{"CAR-1", "CAR", 2},
		{"CAR-2", "CAR", 3},
		{"BIKE-1", "BIKE", 1},
	} {
		_, err := env.parking.ParkVehicleInSlot(ctx, v.plate, v.class, v.slot, nil)
		require.NoError(t, err)
		env.clock.Advance(30 * time.Minute)
		_, err = env.parking.ExitBySlot(ctx, intPtr(1), v.slot)
		require.NoError(t, err)
		env.clock.Advance(30 * time.Minute)
	}
	_, err := env.parking.ParkVehicleInSlot(ctx, "TRK-1", "TRUCK", 4, nil)
	require.NoError(t, err)

	dayStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	// No filters: every closed visit, newest first; the open truck
	// never appears.
	all, err := env.admin.RecordsHistory(ctx, dayStart, dayEnd, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "BIKE-1", all[0].LicensePlate)
	require.Equal(t, "CAR-2", all[1].LicensePlate)
	require.Equal(t, "CAR-1", all[2].LicensePlate)

	// Class filter, lower-cased input accepted.
	cars, err := env.admin.RecordsHistory(ctx, dayStart, dayEnd, "car", nil)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	for _, r := range cars {
		require.Equal(t, model.VehicleCar, r.VehicleType)
	}

	// Slot filter combined with the class filter.
	slot3, err := env.admin.RecordsHistory(ctx, dayStart, dayEnd, "CAR", intPtr(3))
	require.NoError(t, err)
	require.Len(t, slot3, 1)
	require.Equal(t, "CAR-2", slot3[0].LicensePlate)

	// The window is half-open on exit time: a window ending at the
	// first exit excludes it.
	firstExit := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	early, err := env.admin.RecordsHistory(ctx, dayStart, firstExit, "", nil)
	require.NoError(t, err)
	require.Empty(t, early)

	_, err = env.admin.RecordsHistory(ctx, dayStart, dayEnd, "HOVERCRAFT", nil)
	require.ErrorIs(t, err, ErrInvalidVehicleType)
}
