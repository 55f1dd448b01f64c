// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ride-marketplace-api-server/config"
	"ride-marketplace-api-server/internal/api/routes"
	"ride-marketplace-api-server/internal/database"
	"ride-marketplace-api-server/internal/o11y"
	"ride-marketplace-api-server/internal/repository"
	"ride-marketplace-api-server/internal/rides"
	"ride-marketplace-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. .env is optional, real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Could not read .env file: %v", err)
	}

	// 2. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Every resource it
// opens is released before it returns.
func run(ctx context.Context, cfg config.Config) error {
	// 3. Logging, metrics, tracing
	obs, shutdownObs, err := o11y.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("set up observability: %w", err)
	}
	defer shutdownObs()
	logger := obs.Logger
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.Mode)

	// 4. Ride store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s ride store: %w", cfg.Store.Driver, err)
	}
	defer closeStore()

	// 5. Optional S3 uploader for snapshot exports
	var uploader *s3.Uploader
	if cfg.S3.Enabled() {
		uploader, err = s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("create S3 uploader: %w", err)
		}
		logger.Info("ride snapshot export enabled", "bucket", cfg.S3.Bucket)
	}

	// 6. Router
	svc := rides.NewService(store, obs.Metrics)
	router := routes.SetupRouter(cfg, svc, uploader, obs)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 7. Start server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", "port", cfg.Server.Port, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.RideStore, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		logger.Warn("using in-memory ride store, data is lost on restart")
		return repository.NewMemoryRideRepository(), func() {}, nil
	}

	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := database.Disconnect(context.Background(), client); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}

	coll := client.Database(cfg.Mongo.DBName).Collection(cfg.Mongo.Collection)
	if err := database.EnsureRideIndexes(ctx, coll); err != nil {
		closeFn()
		return nil, nil, err
	}

	logger.Info("connected to MongoDB", "db", cfg.Mongo.DBName, "collection", cfg.Mongo.Collection)
	db := client.Database(cfg.Mongo.DBName)
	return repository.NewMongoRideRepository(db, cfg.Mongo.Collection, cfg.Mongo.OperationTimeout), closeFn, nil
}
