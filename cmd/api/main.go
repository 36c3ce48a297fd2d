package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-delivery/internal/api"
	"marketplace-delivery/internal/config"
	"marketplace-delivery/internal/logging"
	"marketplace-delivery/internal/modules/carts"
	"marketplace-delivery/internal/modules/delivery"
	"marketplace-delivery/internal/modules/orders"
	"marketplace-delivery/internal/modules/quotes"
	"marketplace-delivery/internal/notify"
	"marketplace-delivery/pkg/email"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}
	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}

	// 4. --- Session Store (Redis) ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Unable to ping redis: %v", err)
	}
	defer redisClient.Close()

	// 5. --- Outbound Notification Channels ---
	kafkaNotifier := notify.NewKafkaNotifier(cfg.BrokerList(), cfg.KafkaTopic)
	defer kafkaNotifier.Close()

	sesSender, err := email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
	if err != nil {
		log.Fatalf("Unable to initialize SES sender: %v", err)
	}
	templates, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Unable to parse email templates: %v", err)
	}
	// Provider contact addresses come from the identity service; the
	// static directory is the local stand-in.
	emailNotifier := notify.NewEmailNotifier(sesSender, templates, notify.StaticDirectory{})
	notifier := notify.NewMulti(logger, kafkaNotifier, emailNotifier)

	// 6. --- Dependency Injection (Wiring everything up) ---
	cartStore := carts.NewRedisStore(redisClient, cfg.CartTTL)
	cartService := carts.NewService(cartStore)
	cartHandler := carts.NewHandler(cartService)

	quoteRepo := quotes.NewRepository(dbPool)
	quoteService := quotes.NewService(quoteRepo, cartService, notifier, logger)
	quoteHandler := quotes.NewHandler(quoteService)

	deliveryRepo := delivery.NewRepository(dbPool)
	deliveryService := delivery.NewService(deliveryRepo, nil, logger)
	deliveryHandler := delivery.NewHandler(deliveryService)

	orderRepo := orders.NewRepository(dbPool)
	orderService := orders.NewService(orderRepo, quoteService, cartService, deliveryService, notifier, logger)
	orderHandler := orders.NewHandler(orderService)

	// 7. --- Housekeeping Sweep ---
	// Garbage-collects long-expired quote requests. Selectability is
	// always derived from expires_at, so nothing depends on this loop.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := quoteService.SweepExpired(sweepCtx); err != nil {
					logger.Error("expiry sweep failed", "error", err)
				}
			}
		}
	}()

	// 8. --- Initialize Router ---
	api.SetupRoutes(e, cfg.JWTSecret,
		cartHandler,
		quoteHandler,
		orderHandler,
		deliveryHandler,
	)

	// 9. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
