package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"

	"notepool/internal/config"
	"notepool/internal/core"
	"notepool/internal/database"
	"notepool/internal/database/repositories"
	"notepool/internal/storage"
)

type FiberServer struct {
	*fiber.App

	db   database.Service
	core *core.Coordinator
	pool *storage.Pool
	cfg  *config.Config
	log  *slog.Logger
}

func New(cfg *config.Config, db database.Service, pool *storage.Pool, log *slog.Logger) *FiberServer {
	coordinator := core.NewCoordinator(
		repositories.NewUserRepository(db.DB()),
		repositories.NewNoteRepository(db.DB()),
		repositories.NewImageRepository(db.DB()),
		pool,
		log,
	)
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "notepool",
			AppName:      "notepool",
			BodyLimit:    16 * 1024 * 1024,
		}),
		db:   db,
		core: coordinator,
		pool: pool,
		cfg:  cfg,
		log:  log,
	}
	server.App.Use(favicon.New())
	server.App.Use(helmet.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization,X-Requested-With",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		// Optional: Enable preflight request caching
		MaxAge: 3600,
	}))
	server.App.Use(logger.New())
	server.App.Use(pprof.New(pprof.Config{
		Next: nil, // Use this if you want to exclude specific routes
	}))
	return server
}
