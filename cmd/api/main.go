package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/lead-caller/internal/config"
	"github.com/xavierca1/lead-caller/internal/infra/http/handlers"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
	"github.com/xavierca1/lead-caller/internal/usecase"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Store
	store, closeStore, err := openLeadStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open lead store", "store", cfg.LeadStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 2. Optional call-event publishing
	var (
		producer usecase.QueueProducerInterface
		amqpConn interface{ IsClosed() bool }
	)
	if cfg.AMQPURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		producer = queue.NewProducer(rabbitMQ.Ch)
		amqpConn = rabbitMQ.Conn
	} else {
		logger.Info("AMQP_URL not set, call events will not be published")
	}

	// 3. Voice API
	vapiClient := vapi.NewClient(cfg.VapiAPIURL, cfg.VapiAPIKey, logger)
	if !vapiClient.Configured() {
		logger.Warn("VAPI_API_URL or VAPI_API_KEY not set, enquiries will fail")
	}

	// 4. Use cases
	enquireUC := usecase.NewEnquireUseCase(store, vapiClient, usecase.CallSettings{
		CallerID:          cfg.CallerID,
		WebhookPublicBase: cfg.WebhookPublicBase,
	}, logger)
	recordUC := usecase.NewRecordCallEventUseCase(store, producer, logger)

	// 5. Router
	router := newRouter(routeHandlers{
		Enquiry: handlers.NewEnquiryHandler(enquireUC, cfg.EnquireRateLimit, logger),
		Webhook: handlers.NewWebhookHandler(recordUC, logger),
		Leads:   handlers.NewLeadsHandler(store, logger),
		Health:  handlers.NewHealthHandler(store, amqpConn, vapiClient.Configured()),
	}, cfg.CORSAllowedOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "store", cfg.LeadStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
