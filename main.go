package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardona-dev/bean-quick/internal/cache"
	"github.com/cardona-dev/bean-quick/internal/config"
	"github.com/cardona-dev/bean-quick/internal/database"
	"github.com/cardona-dev/bean-quick/internal/handlers"
	"github.com/cardona-dev/bean-quick/internal/logger"
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/notify"
	"github.com/cardona-dev/bean-quick/internal/repositories"
	"github.com/cardona-dev/bean-quick/internal/services"
	"github.com/cardona-dev/bean-quick/internal/storage"
	"github.com/cardona-dev/bean-quick/pkg/kafka"
	"github.com/cardona-dev/bean-quick/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// --- Collaborators ---
	notifier, closeNotifier, err := newNotifier(ctx, cfg.Notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize notifier")
	}
	defer closeNotifier()

	dashboards, closeCache := newDashboardCache(ctx, cfg.Redis)
	defer closeCache()

	app, err := newApp(ctx, cfg, db, notifier, dashboards)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// newApp wires repositories, services and routes, and seeds the admin account.
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB, notifier notify.Notifier, dashboards cache.DashboardCache) (*fiber.App, error) {
	files, err := storage.NewLocal(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		return nil, err
	}

	store := repositories.NewGORMStore(db)
	authService := services.NewAuthService(store.Users(), cfg.JWT.Secret, cfg.JWT.TTL)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return nil, err
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    storage.MaxImageSize + 1<<20,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Static(cfg.Storage.BaseURL, files.Root())

	handlers.Mount(app.Group("/api/v1"), handlers.Services{
		DB:         db,
		Auth:       authService,
		Companies:  services.NewCompanyService(store, files, notifier),
		Products:   services.NewProductService(store, files, dashboards),
		Carts:      services.NewCartService(store),
		Orders:     services.NewOrderService(store, notifier, dashboards),
		Ratings:    services.NewRatingService(store, dashboards),
		Dashboards: services.NewDashboardService(store, dashboards, cfg.Location),
	})
	return app, nil
}

// errorHandler answers errors that escaped the handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	message := "internal server error"
	if code < fiber.StatusInternalServerError {
		message = err.Error()
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

// newNotifier picks the event transport. With RabbitMQ the e-mail consumer
// runs in the background until ctx is done.
func newNotifier(ctx context.Context, cfg config.Notifier) (notify.Notifier, func(), error) {
	switch cfg.Driver {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return nil, nil, err
		}
		go func() {
			if err := client.Consume(ctx, notify.MailHandler(notify.LogMailer{})); err != nil {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
		return notify.NewBrokerNotifier(client), closeWithLog("rabbitmq", client.Close), nil
	case "kafka":
		producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			return nil, nil, err
		}
		return notify.NewBrokerNotifier(producer), closeWithLog("kafka", producer.Close), nil
	default:
		return notify.LogNotifier{}, func() {}, nil
	}
}

// newDashboardCache connects to Redis when an address is configured. An
// unreachable server is tolerated: cache failures only cost recomputation.
func newDashboardCache(ctx context.Context, cfg config.Redis) (cache.DashboardCache, func()) {
	if cfg.Addr == "" {
		return cache.Noop{}, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis is not reachable, dashboards will be recomputed")
	}
	return cache.NewRedisCache(client, cfg.TTL), closeWithLog("redis", client.Close)
}

func closeWithLog(name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Str("component", name).Msg("failed to close")
		}
	}
}
