package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository/memory"
)

// fakeClock gives tests full control over time in both services.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	store   *memory.Store
	floors  *memory.FloorRepo
	slots   *memory.SlotRepo
	records *memory.RecordRepo
	rates   *memory.RateRepo
	audits  *memory.AuditRepo
	parking *ParkingService
	admin   *AdminService
	clock   *fakeClock
}

// newEnv builds a facility over the in-memory store: one floor with
// slot 1 (BIKE), slots 2 and 3 (CAR) and slot 4 (TRUCK).
func newEnv(t *testing.T, strict bool) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:   store,
		floors:  memory.NewFloorRepo(store),
		slots:   memory.NewSlotRepo(store),
		records: memory.NewRecordRepo(store),
		rates:   memory.NewRateRepo(store),
		audits:  memory.NewAuditRepo(store),
		clock:   &fakeClock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)},
	}
	billing := NewBilling(env.rates)
	rec := NewReconciler(env.slots)
	env.parking = NewParkingService(env.slots, env.records, billing, rec, strict)
	env.parking.now = env.clock.Now
	env.admin = NewAdminService(env.floors, env.slots, env.records, env.rates, env.audits, billing, rec, nil)
	env.admin.now = env.clock.Now

	ctx := context.Background()
	_, err := env.floors.Create(ctx, &model.Floor{FloorNumber: 1, Description: "ground"})
	require.NoError(t, err)
	for _, s := range []struct {
		number int
		class  string
	}{
		{1, model.VehicleBike},
		{2, model.VehicleCar},
		{3, model.VehicleCar},
		{4, model.VehicleTruck},
	} {
		_, err := env.slots.Create(ctx, &model.ParkingSlot{FloorNumber: 1, SlotNumber: s.number, VehicleType: s.class})
		require.NoError(t, err)
	}
	return env
}

func intPtr(n int) *int { return &n }
