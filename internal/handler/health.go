package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes from the gate terminals and any
// load balancer in front of the service.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
