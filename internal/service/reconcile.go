package service

import (
	"context"
	"log"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// Reconciler heals the cached occupancy columns on parking_slots so
// they agree with the ledger.  The cache is advisory only; every
// decision that matters reads the ledger directly, and the reconciler
// just keeps the board honest for display.  Sync never fails the
// calling operation: a slot that cannot be healed now is healed on
// the next read.
type Reconciler struct {
	slots repository.SlotRepository
}

// NewReconciler returns a Reconciler writing through the given slot
// repository.
func NewReconciler(slots repository.SlotRepository) *Reconciler {
	return &Reconciler{slots: slots}
}

// Sync rewrites one slot's cached occupancy from its open ledger
// record (nil means the slot is free).  It is idempotent; when the
// cache already matches nothing is written.
func (r *Reconciler) Sync(ctx context.Context, slot *model.ParkingSlot, open *model.ParkingRecord) {
	occupied := open != nil
	var plate *string
	if open != nil {
		p := open.LicensePlate
		plate = &p
	}
	if slot.IsOccupied == occupied && equalPlate(slot.ParkedPlate, plate) {
		return
	}
	log.Printf("reconcile: slot %d/%d cache drift (cached occupied=%v, ledger occupied=%v), healing",
		slot.FloorNumber, slot.SlotNumber, slot.IsOccupied, occupied)
	if err := r.slots.UpdateOccupancy(ctx, slot.ID, occupied, plate); err != nil {
		log.Printf("reconcile: slot %d/%d heal failed: %v", slot.FloorNumber, slot.SlotNumber, err)
		return
	}
	slot.IsOccupied = occupied
	slot.ParkedPlate = plate
}

func equalPlate(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
