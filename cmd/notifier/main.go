package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/xavierca1/lead-caller/internal/config"
	"github.com/xavierca1/lead-caller/internal/infra/mail"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

// The notifier consumes call events published by the API and emails the
// final outcome of each call.
func main() {
	godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.AMQPURL == "" || cfg.NotifyEmail == "" || cfg.MailHost == "" {
		logger.Error("notifier requires AMQP_URL, NOTIFY_EMAIL and MAIL_HOST")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPURL)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	notifier := mail.NewCallOutcomeNotifier(sender, cfg.NotifyEmail, logger)

	worker := queue.NewWorker(rabbitMQ.Ch, notifier, logger)
	if err := worker.Start(ctx, queue.QueueName); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}
