package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smukkama/vitalcheck/internal/logger"
	"github.com/smukkama/vitalcheck/internal/notification"
	"github.com/smukkama/vitalcheck/internal/protocol"
	"github.com/smukkama/vitalcheck/internal/queue"
	"github.com/smukkama/vitalcheck/pkg/config"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "vitalcheck-notification")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting notification service")

	notifier := notification.NewEmailNotifier(&cfg.SMTP, log)

	// Test SMTP connection (optional, will skip if not configured)
	if err := notifier.TestConnection(); err != nil {
		log.Warn("SMTP unavailable, notifications will be logged only", zap.Error(err))
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, "notification-group")
	defer consumer.Close()
	log.Info("kafka consumer initialized", zap.String("topic", cfg.Kafka.TopicAlerts))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := consumer.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Error("failed to consume message", zap.Error(err))
				continue
			}

			decoded, err := protocol.DecodeMessage(msg.Value)
			if err != nil {
				log.Warn("dropping undecodable message", zap.ByteString("key", msg.Key), zap.Error(err))
				consumer.Commit(ctx, msg)
				continue
			}

			if err := notifier.Notify(decoded); err != nil {
				// Don't commit on error - retry
				log.Error("failed to send notification", zap.ByteString("key", msg.Key), zap.Error(err))
				continue
			}

			if err := consumer.Commit(ctx, msg); err != nil {
				log.Error("failed to commit offset", zap.Error(err))
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down gracefully")
	cancel()
	<-done
}
