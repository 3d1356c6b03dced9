package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smart-parking/internal/repository"
	"github.com/iliyamo/smart-parking/internal/service"
)

// writeError maps domain sentinels onto HTTP statuses so every
// handler reports the same way.  Unknown errors become a 500 with a
// generic message; sentinel text is safe to echo back.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrNoOpenRecord):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSlotOccupied),
		errors.Is(err, repository.ErrTargetOccupied),
		errors.Is(err, repository.ErrDuplicateFloor),
		errors.Is(err, repository.ErrDuplicateSlot),
		errors.Is(err, repository.ErrAlreadyClosed),
		errors.Is(err, repository.ErrRecordClosed),
		errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, service.ErrVehicleStillPresent),
		errors.Is(err, service.ErrVehicleClassMismatch),
		errors.Is(err, service.ErrNoSlotAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidPlate),
		errors.Is(err, service.ErrInvalidNumber):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
