package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/vidtube/internal/config"
	"github.com/vidtube/vidtube/internal/db"
	"github.com/vidtube/vidtube/internal/events"
	"github.com/vidtube/vidtube/internal/httpserver"
	"github.com/vidtube/vidtube/internal/logging"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/repo"
	"github.com/vidtube/vidtube/internal/service"
	"github.com/vidtube/vidtube/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DSN())
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		cancel()
		log.Fatalf("db migrate error: %v", err)
	}

	media, err := storage.NewS3Store(initCtx, storage.S3Config{
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		BaseEndpoint: cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		PublicURL:    cfg.S3PublicURL,
	})
	if err != nil {
		cancel()
		log.Fatalf("media storage init error: %v", err)
	}
	cancel()

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer(cfg.KafkaAddress, cfg.KafkaTopic)
		defer producer.Close()
	}

	gormRepo := repo.GormRepo{DB: gdb}
	tokenSvc := &service.TokenService{
		Repo:          gormRepo,
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	userSvc := &service.UserService{
		Repo:     gormRepo,
		Tokens:   tokenSvc,
		Media:    media,
		Producer: producer,
	}
	viewSvc := &service.ViewService{Repo: gormRepo}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Users: &httpserver.UserHTTP{
			Users:   userSvc,
			Views:   viewSvc,
			TempDir: cfg.TempDir,
		},
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
