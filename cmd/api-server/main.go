package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/carepulse/patient-booking/internal/api"
	"github.com/carepulse/patient-booking/internal/appointment"
	"github.com/carepulse/patient-booking/internal/config"
	"github.com/carepulse/patient-booking/internal/db"
	"github.com/carepulse/patient-booking/internal/identity"
	"github.com/carepulse/patient-booking/internal/patient"
	redisclient "github.com/carepulse/patient-booking/internal/redis"
	"github.com/carepulse/patient-booking/internal/storage"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("running", "env", cfg.Env, "http_port", cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, logger)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to Redis")

	// Object storage client
	s3Client, err := newObjectClient(rootCtx, cfg)
	if err != nil {
		log.Fatalf("object storage setup error: %v", err)
	}
	docs := storage.NewClient(s3Client, cfg.StorageEndpoint, cfg.StorageBucket, cfg.StorageProjectID, logger)

	// Services
	persons := identity.NewService(identity.NewPgRepository(pgPool), logger)
	patients := patient.NewService(patient.NewPgRepository(pgPool), docs, logger)
	locker := redisclient.NewRedisAppointmentLocker(rdb, cfg.LockTTL)
	appointments := appointment.NewService(appointment.NewPgRepository(pgPool), locker, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Persons:        persons,
		Patients:       patients,
		Appointments:   appointments,
		PgPool:         pgPool,
		Redis:          rdb,
		Storage:        docs,
		Env:            cfg.Env,
		Version:        version,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Info("server stopped")
}

// newObjectClient builds the S3 client against the configured endpoint.
// Static credentials are used when provided; otherwise the default chain
// applies (instance roles, env, shared config).
func newObjectClient(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.StorageRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	}), nil
}
