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

// AdminHandler exposes the operator endpoints: catalog management,
// the rate table, the override workflow and the audit trail.  Every
// route is behind JWTAuth, so the acting operator's username is
// always present in the request context.
type AdminHandler struct {
	Admin *service.AdminService
}

func NewAdminHandler(a *service.AdminService) *AdminHandler {
	return &AdminHandler{Admin: a}
}

// actor returns the authenticated operator's username.
func actor(c echo.Context) string {
	if u, ok := c.Get("username").(string); ok {
		return u
	}
	return ""
}

// ----- DTOs -----

type createFloorReq struct {
	FloorNumber int    `json:"floor_number"`
	Description string `json:"description"`
}

type addSlotsReq struct {
	FloorNumber int    `json:"floor_number"`
	VehicleType string `json:"vehicle_type"`
	StartNumber int    `json:"start_number"`
	Count       int    `json:"count"`
}

type updateRateReq struct {
	VehicleType string  `json:"vehicle_type"`
	HourlyRate  float64 `json:"hourly_rate"`
}

type slotTargetReq struct {
	SlotNumber  int  `json:"slot_number"`
	FloorNumber *int `json:"floor_number,omitempty"`
}

type changeSlotReq struct {
	SlotNumber     int  `json:"slot_number"`
	FloorNumber    *int `json:"floor_number,omitempty"`
	NewSlotNumber  int  `json:"new_slot_number"`
	NewFloorNumber *int `json:"new_floor_number,omitempty"`
}

type updatePlateReq struct {
	SlotNumber   int    `json:"slot_number"`
	FloorNumber  *int   `json:"floor_number,omitempty"`
	LicensePlate string `json:"license_plate"`
}

type floorResp struct {
	FloorNumber int    `json:"floor_number"`
	Description string `json:"description"`
}

type slotResp struct {
	FloorNumber int    `json:"floor_number"`
	SlotNumber  int    `json:"slot_number"`
	VehicleType string `json:"vehicle_type"`
}

type rateResp struct {
	VehicleType string  `json:"vehicle_type"`
	HourlyRate  float64 `json:"hourly_rate"`
	Active      bool    `json:"active"`
}

type auditResp struct {
	ID            int64     `json:"id"`
	AdminUsername string    `json:"admin_username"`
	Action        string    `json:"action"`
	Description   string    `json:"description"`
	Details       *string   `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func auditsJSON(entries []model.AuditLog) []auditResp {
	out := make([]auditResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResp{
			ID:            e.ID,
			AdminUsername: e.AdminUsername,
			Action:        e.Action,
			Description:   e.Description,
			Details:       e.Details,
			Timestamp:     e.Timestamp,
		})
	}
	return out
}

// CreateFloor adds a floor to the facility.
func (h *AdminHandler) CreateFloor(c echo.Context) error {
	var req createFloorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	floor, err := h.Admin.CreateFloor(ctx, actor(c), req.FloorNumber, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, floorResp{FloorNumber: floor.FloorNumber, Description: floor.Description})
}

// ListFloors returns every floor.
func (h *AdminHandler) ListFloors(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	floors, err := h.Admin.Floors(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]floorResp, 0, len(floors))
	for _, f := range floors {
		out = append(out, floorResp{FloorNumber: f.FloorNumber, Description: f.Description})
	}
	return c.JSON(http.StatusOK, out)
}

// AddSlots provisions a batch of consecutively numbered slots.
func (h *AdminHandler) AddSlots(c echo.Context) error {
	var req addSlotsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Count <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "count must be positive"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	created, err := h.Admin.AddSlots(ctx, actor(c), req.FloorNumber, req.VehicleType, req.StartNumber, req.Count)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]slotResp, 0, len(created))
	for _, s := range created {
		out = append(out, slotResp{FloorNumber: s.FloorNumber, SlotNumber: s.SlotNumber, VehicleType: s.VehicleType})
	}
	return c.JSON(http.StatusCreated, out)
}

// DeleteSlot removes an empty slot from the catalog.
func (h *AdminHandler) DeleteSlot(c echo.Context) error {
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
	if err := h.Admin.DeleteSlot(ctx, actor(c), floor, slotNumber); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateRate sets the hourly rate for a vehicle class.
func (h *AdminHandler) UpdateRate(c echo.Context) error {
	var req updateRateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.HourlyRate <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hourly_rate must be positive"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	charge, err := h.Admin.UpdateRate(ctx, actor(c), req.VehicleType, req.HourlyRate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rateResp{VehicleType: charge.VehicleType, HourlyRate: charge.HourlyRate, Active: charge.Active})
}

// ListRates returns the configured rate table.
func (h *AdminHandler) ListRates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rates, err := h.Admin.Rates(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]rateResp, 0, len(rates))
	for _, r := range rates {
		out = append(out, rateResp{VehicleType: r.VehicleType, HourlyRate: r.HourlyRate, Active: r.Active})
	}
	return c.JSON(http.StatusOK, out)
}

// ForceExit closes a slot's open record on operator authority.
func (h *AdminHandler) ForceExit(c echo.Context) error {
	var req slotTargetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rec, err := h.Admin.ForceExit(ctx, actor(c), req.FloorNumber, req.SlotNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recordJSON(rec))
}

// MarkSlotAvailable clears a slot's cached occupancy after a manual
// check that the slot is physically empty.
func (h *AdminHandler) MarkSlotAvailable(c echo.Context) error {
	var req slotTargetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Admin.MarkSlotAvailable(ctx, actor(c), req.FloorNumber, req.SlotNumber); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "available"})
}

// ChangeSlot moves a parked vehicle to another slot.
func (h *AdminHandler) ChangeSlot(c echo.Context) error {
	var req changeSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rec, err := h.Admin.ChangeSlot(ctx, actor(c), req.FloorNumber, req.SlotNumber, req.NewFloorNumber, req.NewSlotNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recordJSON(rec))
}

// UpdateLicensePlate corrects the plate on a slot's open record.
func (h *AdminHandler) UpdateLicensePlate(c echo.Context) error {
	var req updatePlateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rec, err := h.Admin.UpdateLicensePlate(ctx, actor(c), req.FloorNumber, req.SlotNumber, req.LicensePlate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recordJSON(rec))
}

// AuditLogs returns the audit trail, optionally filtered by admin or
// a [from, to) time window in RFC3339.
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if username := c.QueryParam("admin"); username != "" {
		entries, err := h.Admin.AuditLogsByAdmin(ctx, username)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, auditsJSON(entries))
	}
	fromRaw, toRaw := c.QueryParam("from"), c.QueryParam("to")
	if fromRaw != "" && toRaw != "" {
		from, err1 := time.Parse(time.RFC3339, fromRaw)
		to, err2 := time.Parse(time.RFC3339, toRaw)
		if err1 != nil || err2 != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339"})
		}
		entries, err := h.Admin.AuditLogsBetween(ctx, from, to)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, auditsJSON(entries))
	}
	entries, err := h.Admin.AuditLogs(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, auditsJSON(entries))
}

// RecordsHistory returns closed visits that exited in a [from, to)
// window, optionally filtered by vehicle class and slot number.
// from and to ride in required RFC3339 query parameters.
func (h *AdminHandler) RecordsHistory(c echo.Context) error {
	from, err1 := time.Parse(time.RFC3339, c.QueryParam("from"))
	to, err2 := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339"})
	}
	var slotNumber *int
	if raw := c.QueryParam("slot"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot number"})
		}
		slotNumber = &n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	records, err := h.Admin.RecordsHistory(ctx, from, to, c.QueryParam("vehicle_type"), slotNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recordsJSON(records))
}

// SlotHistory returns recent closed visits for one slot number.
func (h *AdminHandler) SlotHistory(c echo.Context) error {
	slotNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot number"})
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	records, err := h.Admin.SlotHistory(ctx, slotNumber, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recordsJSON(records))
}
