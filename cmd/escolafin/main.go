package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/escolafin/EscolaFin/app/controllers"
	"github.com/escolafin/EscolaFin/app/repository"
	"github.com/escolafin/EscolaFin/internal/pkg/cache"
	"github.com/escolafin/EscolaFin/internal/pkg/database"
	"github.com/escolafin/EscolaFin/internal/pkg/env"
	"github.com/escolafin/EscolaFin/internal/pkg/metrics/counter"
	"github.com/escolafin/EscolaFin/internal/pkg/router"
	"github.com/escolafin/EscolaFin/internal/pkg/tuition"
)

const (
	sweepInterval        = 15 * time.Minute
	counterFlushInterval = 5 * time.Minute
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())

	service := tuition.NewService(repository.GetGlobalRepositories(), cache.NewStore())
	controllers.SetTuitionService(service)
	service.StartSweep(sweepInterval, make(chan struct{}))
	startCounterFlusher()

	app := fiber.New(fiber.Config{
		AppName: "EscolaFin",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}

// startCounterFlusher periodically drains the Redis billing counters into
// the daily stats table.
func startCounterFlusher() {
	go func() {
		ticker := time.NewTicker(counterFlushInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := counter.FlushAll(); err != nil {
				log.Printf("billing counter flush failed: %v", err)
			}
		}
	}()
}
