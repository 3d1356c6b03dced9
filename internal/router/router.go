package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/smart-parking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/smart-parking/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/smart-parking/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the operator authentication routes.
// Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterParking registers the gate-facing routes.  Entry, exit and
// the board are open so the gate terminals need no credentials; the
// board optionally sits behind the response cache middleware when one
// is supplied.
func RegisterParking(e *echo.Echo, p *handler.ParkingHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/parking")
	g.POST("/entries", p.Park)
	g.POST("/exits", p.Exit)
	if cache != nil {
		g.GET("/slots", p.ListSlots, cache)
	} else {
		g.GET("/slots", p.ListSlots)
	}
	g.GET("/slots/:number", p.SlotDetail)
	g.GET("/vehicles/:plate/history", p.VehicleHistory)
}

// RegisterAdmin registers the operator routes behind JWT auth and
// role enforcement.  Both roles may run the day-to-day overrides;
// catalog and rate changes require ADMIN.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, p *handler.ParkingHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleOperator))

	// Dashboard and histories.
	g.GET("/dashboard", p.Dashboard)
	g.GET("/audit-logs", a.AuditLogs)
	g.GET("/records", a.RecordsHistory)
	g.GET("/slots/:number/history", a.SlotHistory)

	// Override workflow.
	g.POST("/force-exit", a.ForceExit)
	g.POST("/mark-available", a.MarkSlotAvailable)
	g.POST("/change-slot", a.ChangeSlot)
	g.POST("/update-plate", a.UpdateLicensePlate)

	// Catalog and rate management is ADMIN only.
	adm := g.Group("", middleware.RequireRole(model.RoleAdmin))
	adm.POST("/floors", a.CreateFloor)
	adm.GET("/floors", a.ListFloors)
	adm.POST("/slots", a.AddSlots)
	adm.DELETE("/slots/:number", a.DeleteSlot)
	adm.PUT("/rates", a.UpdateRate)
	adm.GET("/rates", a.ListRates)
}
