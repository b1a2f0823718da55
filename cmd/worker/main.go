// cmd/worker consumes campaign events from RabbitMQ and writes them to the
// audit log. Run it when the server is configured with AMQP_URL.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/campaign-mailer/internal/config"
	"github.com/unclebandit/campaign-mailer/internal/db"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/queue"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

func main() {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		logger.L().Fatal("invalid configuration", logger.Err(err))
	}
	logger.Init(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel, ServiceName: "campaign-worker"})
	defer logger.Sync()
	log := logger.L()
	if !foundEnv {
		log.Warn("no .env file found, relying on OS environment variables")
	}
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	conn, err := db.Open(cfg.DBConfig)
	if err != nil {
		log.Fatal("database unavailable", logger.Err(err))
	}
	defer conn.Close()

	q, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", logger.Err(err))
	}
	defer q.Close()

	if err := queue.StartAuditSubscriber(q, &repository.AuditRepository{DB: conn}); err != nil {
		log.Fatal("failed to register consumer", logger.Err(err))
	}

	log.Info("worker running, waiting for campaign events")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("worker stopped")
}
