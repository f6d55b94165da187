package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brigade/internal/adapter/localtime"
	"brigade/internal/adapter/logger"
	"brigade/internal/adapter/postgres"
	"brigade/internal/adapter/rabbitmq"
	"brigade/internal/adapter/redisstore"
	"brigade/internal/app/analytics"
	"brigade/internal/app/board"
	"brigade/internal/app/history"
	"brigade/internal/app/transition"
	"brigade/internal/config"

	amqpAdapter "brigade/internal/adapter/amqp"
	httpAdapter "brigade/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: board-service, analytics-service, notifier")
	port := flag.Int("port", 3000, "HTTP port")
	prefetch := flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	lgr := logger.New(*mode)

	// The notifier only talks to RabbitMQ; everything else needs the database.
	var db postgres.DB
	if *mode != "notifier" {
		db, err = postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "board-service":
		runBoardService(ctx, db, mqConn, cfg, lgr, *port)

	case "analytics-service":
		runAnalyticsService(ctx, db, cfg, lgr, *port)

	case "notifier":
		runNotifier(ctx, mqConn, lgr, *prefetch)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

// runBoardService hosts the live and history boards plus the status
// transition endpoint, and runs the new-order poll loop.
func runBoardService(ctx context.Context, db postgres.DB, mqConn rabbitmq.Connection, cfg *config.Config, lgr logger.Logger, port int) {
	orderRepo := postgres.NewOrderRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	staffRepo := postgres.NewStaffRepository(db)

	publisher := rabbitmq.NewPublisher(mqConn)
	sessions := redisstore.NewSessionStore(cfg.Redis)

	pollInterval := time.Duration(cfg.Board.PollIntervalSeconds) * time.Second
	sessionTTL := time.Duration(cfg.Board.SessionTTLMinutes) * time.Minute

	transitionService := transition.NewService(orderRepo, staffRepo, publisher, lgr)
	boardService := board.NewService(orderRepo, publisher, pollInterval, lgr)
	historyService := history.NewService(eventRepo, orderRepo, lgr)

	actors := httpAdapter.NewActorResolver(staffRepo, sessions, lgr)
	transitionHandler := httpAdapter.NewTransitionHandler(transitionService, actors, lgr)
	boardHandler := httpAdapter.NewBoardHandler(
		boardService, historyService, sessions, actors,
		cfg.Restaurant.ID, sessionTTL, lgr,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", transitionHandler.HandleOrders)
	mux.HandleFunc("/board/", boardHandler.HandleBoard)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	pollCtx, stopPoller := context.WithCancel(ctx)
	go boardService.RunPoller(pollCtx, cfg.Restaurant.ID)

	lgr.Info("service_started", fmt.Sprintf("Board Service started on port %d", port), "startup", map[string]interface{}{
		"port":          port,
		"restaurant_id": cfg.Restaurant.ID,
		"poll_interval": pollInterval.String(),
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Board Service", "shutdown", nil)
		stopPoller()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runAnalyticsService(ctx context.Context, db postgres.DB, cfg *config.Config, lgr logger.Logger, port int) {
	orderRepo := postgres.NewOrderRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	resolver := localtime.NewResolver()

	analyticsService := analytics.NewService(orderRepo, staffRepo, resolver, cfg.Restaurant.Timezone, lgr)
	analyticsHandler := httpAdapter.NewAnalyticsHandler(
		analyticsService, resolver,
		cfg.Restaurant.ID, cfg.Restaurant.Timezone, lgr,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/analytics/report", analyticsHandler.HandleReport)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Analytics Service started on port %d", port), "startup", map[string]interface{}{
		"port":     port,
		"timezone": cfg.Restaurant.Timezone,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Analytics Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

// runNotifier consumes the status topic and the board fanout and dispatches
// each message to the side-effect handlers. Handler failures are logged by
// the handlers themselves and never stop consumption.
func runNotifier(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger, prefetch int) {
	consumer := rabbitmq.NewConsumer(mqConn, prefetch)

	refunds := amqpAdapter.NewRefundHandler(lgr)
	sms := amqpAdapter.NewSMSHandler(lgr)
	chime := amqpAdapter.NewNewOrderChimeHandler(lgr)

	consumeCtx, stop := context.WithCancel(ctx)

	go func() {
		if err := consumer.ConsumeStatusUpdates(consumeCtx, "refund_queue", "status.cancelled", refunds.Handle); err != nil {
			lgr.Error("consumer_error", "Refund consumer stopped", "runtime", nil, err)
		}
	}()
	go func() {
		if err := consumer.ConsumeStatusUpdates(consumeCtx, "sms_queue", "status.#", sms.Handle); err != nil {
			lgr.Error("consumer_error", "SMS consumer stopped", "runtime", nil, err)
		}
	}()
	go func() {
		if err := consumer.ConsumeNewOrders(consumeCtx, chime.Handle); err != nil {
			lgr.Error("consumer_error", "New-order consumer stopped", "runtime", nil, err)
		}
	}()

	lgr.Info("service_started", "Notifier started", "startup", map[string]interface{}{
		"prefetch": prefetch,
	})

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("graceful_shutdown", "Shutting down Notifier", "shutdown", nil)
	stop()
}
