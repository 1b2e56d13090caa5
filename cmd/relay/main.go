package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/config"
	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/consumer"
	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/routes"
	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/services"
	"github.com/kisimediaDE/capacitor-live-activity-relay/pkg/logger"
	"github.com/kisimediaDE/capacitor-live-activity-relay/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	logr.Info("starting live activity relay", slog.String("app", cfg.AppName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := services.NewFCMClient(ctx, cfg.CredentialsPath, cfg.ProjectID, cfg.FCMEndpoint, cfg.AppBundleID, cfg.ProviderTimeout, logr)
	if err != nil {
		logr.Error("failed to initialize fcm client", slog.Any("error", err))
		os.Exit(1)
	}

	metricsCollector := metrics.New()
	builder := services.NewPayloadBuilder(time.Now)
	relay := services.NewRelay(sender, builder, metricsCollector, logr, cfg.DefaultAttributesType, cfg.ImageMaxDimension)

	gin.SetMode(gin.ReleaseMode)
	started := time.Now()
	router := routes.NewRouter(relay, metricsCollector, logr, started)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}
	go func() {
		logr.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("http server error", slog.Any("error", err))
			stop()
		}
	}()

	var wg sync.WaitGroup
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			logr.Error("failed to connect rabbitmq", slog.Any("error", err))
			os.Exit(1)
		}
		defer conn.Close()

		base := consumer.NewBaseConsumer(conn, cfg.IntentQueue, cfg.DeadLetterQueue, cfg.PrefetchCount, cfg.WorkerCount, logr)
		intents := consumer.NewIntentConsumer(base, relay, logr)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := intents.Start(ctx); err != nil {
				logr.Error("intent consumer exited", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()
	shutdownHTTP(srv, logr)
	wg.Wait()
	logr.Info("relay stopped")
}

func shutdownHTTP(srv *http.Server, logr *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("failed to shutdown http server", slog.Any("error", err))
	}
}
