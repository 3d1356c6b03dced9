package main // Entry point package

import (
	"context" // Context for startup deadlines
	"log"     // Logging library
	"time"    // Timeouts

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/smart-parking/internal/config"                     // Internal config loader
	"github.com/iliyamo/smart-parking/internal/database"                   // MySQL connection and schema
	"github.com/iliyamo/smart-parking/internal/handler"                    // HTTP handlers
	"github.com/iliyamo/smart-parking/internal/middleware"                 // Response cache middleware
	"github.com/iliyamo/smart-parking/internal/queue"                      // RabbitMQ publisher and consumer
	mysqlrepo "github.com/iliyamo/smart-parking/internal/repository/mysql" // MySQL repositories
	"github.com/iliyamo/smart-parking/internal/router"                     // Internal router setup
	"github.com/iliyamo/smart-parking/internal/service"                    // Business logic
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is optional.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Open MySQL and make sure the schema exists before serving.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// Repositories over the shared connection pool.
	floors := mysqlrepo.NewFloorRepo(db)
	slots := mysqlrepo.NewSlotRepo(db)
	records := mysqlrepo.NewRecordRepo(db)
	rates := mysqlrepo.NewRateRepo(db)
	audits := mysqlrepo.NewAuditRepo(db)
	admins := mysqlrepo.NewAdminRepo(db)

	// Services.
	billing := service.NewBilling(rates)
	reconciler := service.NewReconciler(slots)
	parking := service.NewParkingService(slots, records, billing, reconciler, cfg.StrictSlotMatch)
	admin := service.NewAdminService(floors, slots, records, rates, audits, billing, reconciler, queue.NewAuditEventPublisher())

	// Background consumer archiving audit events to logs/audit.log.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// Response cache for the public slot board.  When Redis is down the
	// client is nil and the middleware becomes a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	parkingHandler := handler.NewParkingHandler(parking)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, admins, admin))
	router.RegisterParking(e, parkingHandler, cache)
	router.RegisterAdmin(e, handler.NewAdminHandler(admin), parkingHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
