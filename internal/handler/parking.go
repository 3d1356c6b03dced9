package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/service"
)

// ParkingHandler exposes the gate-facing endpoints: vehicle entry,
// exit, the slot board and the dashboard.
type ParkingHandler struct {
	Parking *service.ParkingService
}

func NewParkingHandler(p *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{Parking: p}
}

// ----- DTOs -----

type parkReq struct {
	LicensePlate  string `json:"license_plate"`
	VehicleType   string `json:"vehicle_type"`
	PreferredSlot *int   `json:"preferred_slot,omitempty"`
	FloorNumber   *int   `json:"floor_number,omitempty"`
}

type exitReq struct {
	SlotNumber   *int   `json:"slot_number,omitempty"`
	FloorNumber  *int   `json:"floor_number,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
}

// recordResp is the wire form of a parking record.  Billing fields
// are omitted while the record is still open.
type recordResp struct {
	ID              int64      `json:"id"`
	LicensePlate    string     `json:"license_plate"`
	VehicleType     string     `json:"vehicle_type"`
	SlotNumber      int        `json:"slot_number"`
	FloorNumber     int        `json:"floor_number"`
	EntryTime       time.Time  `json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
	BillableHours   *int       `json:"billable_hours,omitempty"`
	Charge          *float64   `json:"charge,omitempty"`
}

func recordJSON(rec *model.ParkingRecord) recordResp {
	out := recordResp{
		ID:           rec.ID,
		LicensePlate: rec.LicensePlate,
		VehicleType:  rec.VehicleType,
		SlotNumber:   rec.SlotNumber,
		FloorNumber:  rec.FloorNumber,
		EntryTime:    rec.EntryTime,
	}
	if rec.ExitTime != nil {
		t := *rec.ExitTime
		minutes := rec.DurationMinutes
		hours := rec.BillableHours
		charge := rec.Charge
		out.ExitTime = &t
		out.DurationMinutes = &minutes
		out.BillableHours = &hours
		out.Charge = &charge
	}
	return out
}

func recordsJSON(records []model.ParkingRecord) []recordResp {
	out := make([]recordResp, 0, len(records))
	for i := range records {
		out = append(out, recordJSON(&records[i]))
	}
	return out
}

// Park admits a vehicle.  When a preferred slot is given the request
// targets it; otherwise the facility picks the first free slot of
// the vehicle's class.
func (h *ParkingHandler) Park(c echo.Context) error {
	var req parkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.PreferredSlot != nil {
		rec, err := h.Parking.ParkVehicleInSlot(ctx, req.LicensePlate, req.VehicleType, *req.PreferredSlot, req.FloorNumber)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, recordJSON(rec))
	}
	rec, err := h.Parking.ParkVehicle(ctx, req.LicensePlate, req.VehicleType)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, recordJSON(rec))
}

// Exit closes the stay for a slot or a plate and returns the billed
// record.  Exactly one of slot_number and license_plate must be set.
func (h *ParkingHandler) Exit(c echo.Context) error {
	var req exitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case req.SlotNumber != nil:
		rec, err := h.Parking.ExitBySlot(ctx, req.FloorNumber, *req.SlotNumber)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, recordJSON(rec))
	case req.LicensePlate != "":
		rec, err := h.Parking.ExitByPlate(ctx, req.LicensePlate)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, recordJSON(rec))
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_number or license_plate required"})
	}
}

// ListSlots returns the slot board, optionally narrowed to one floor
// with the ?floor= query parameter.
func (h *ParkingHandler) ListSlots(c echo.Context) error {
	floor, err := optionalFloor(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	var views []model.SlotView
	if floor != nil {
		views, err = h.Parking.ListSlotsByFloor(ctx, *floor)
	} else {
		views, err = h.Parking.ListSlots(ctx)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

// SlotDetail returns one slot's occupancy and a live charge preview.
// The slot number rides in the path; an optional floor query
// parameter disambiguates multi-floor sites.
func (h *ParkingHandler) SlotDetail(c echo.Context) error {
	slotNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot number"})
	}
	floor, err := optionalFloor(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	det, err := h.Parking.SlotDetail(ctx, floor, slotNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Dashboard returns facility-wide statistics for the current day.
func (h *ParkingHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	stats, err := h.Parking.DashboardStats(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// VehicleHistory returns every recorded visit of one license plate.
func (h *ParkingHandler) VehicleHistory(c echo.Context) error {
	plate := c.Param("plate")
	if plate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	records, err := h.Parking.VehicleHistory(ctx, plate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recordsJSON(records))
}

// optionalFloor parses the ?floor= query parameter; absent means the
// caller did not specify one.
func optionalFloor(c echo.Context) (*int, error) {
	raw := c.QueryParam("floor")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
