package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/dse-2025.net/internal/adapter/badgerstore"
	"gitlab.com/dse-2025.net/internal/adapter/filestore"
	"gitlab.com/dse-2025.net/internal/adapter/postgres/resultrepository"
	"gitlab.com/dse-2025.net/internal/adapter/redis/resultport"
	"gitlab.com/dse-2025.net/internal/config"
	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	"gitlab.com/dse-2025.net/internal/core/ports/secondary"
	"gitlab.com/dse-2025.net/internal/core/services/results"
	logger2 "gitlab.com/dse-2025.net/internal/global/logger"
	"gitlab.com/dse-2025.net/internal/handlers"
	resultsapi "gitlab.com/dse-2025.net/internal/handlers/results"
	http2 "gitlab.com/dse-2025.net/internal/http"
	"gitlab.com/dse-2025.net/internal/static/errs"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting result store service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()
	if sysCfg.StoreConfig.DBFileDefaulted {
		logger.Warn("No file name was given for dumping the database",
			"dumpingTo", sysCfg.StoreConfig.DBFilePath)
	}

	ctxBg := context.Background()

	backend, err := setupBackend(ctxBg, sysCfg, logger)
	if err != nil {
		logger.Error("Failed to set up the backend", "error", err)
		fmt.Println("Error: Database connection error")
		os.Exit(1)
	}

	store := results.NewResultStore(backend, logger)
	if err := store.Load(ctxBg); err != nil {
		logger.Error("Failed to initialize the database", "error", err)
		if errs.IsFatal(err) {
			fmt.Println("Error: Database connection error")
		}
		os.Exit(1)
	}

	middleware := handlers.New(sysCfg.JwtConfig.Secret)
	info := resultsapi.StoreInfo{
		Name:    sysCfg.StoreConfig.Name,
		Backend: sysCfg.StoreConfig.Backend,
	}

	httServer := http2.NewServer(sysCfg.HTTPConfig.Port, "resultStore", store, middleware, info, logger)
	if err := httServer.Init(); err != nil {
		panic(err)
	}
	httServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	httServer.Stop(ctx)

	if err := store.Persist(ctx); err != nil {
		logger.Error("Failed to persist the database on shutdown", "error", err)
	}
	if err := backend.Close(ctx); err != nil {
		logger.Warn("Failed to close the backend", "error", err)
	}

	logger.Info("successfully shutdown server")
}

// setupBackend builds the key-value backend selected by STORE_BACKEND.
func setupBackend(ctx context.Context, sysCfg *config.AppConfig, logger primary.Logger) (secondary.KeyValueBackend, error) {
	storeCfg := sysCfg.StoreConfig

	switch storeCfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     sysCfg.RedisConfig.Url,
			Password: sysCfg.RedisConfig.Password,
			DB:       sysCfg.RedisConfig.DB,
		})
		return resultport.NewRedisBackend(ctx, client, storeCfg.Name, storeCfg.DBFilePath, logger)

	case config.BackendFile:
		return filestore.NewFileBackend(storeCfg.DBFilePath, logger)

	case config.BackendPostgres:
		db, err := sqlx.Open("postgres", sysCfg.PostgresConfig.Url)
		if err != nil {
			return nil, err
		}
		return resultrepository.NewPostgresBackend(ctx, db, storeCfg.Name, logger)

	case config.BackendBadger:
		return badgerstore.NewBadgerBackend(badgerstore.Config{
			Path:       sysCfg.BadgerConfig.Path,
			SyncWrites: sysCfg.BadgerConfig.SyncWrites,
		}, storeCfg.Name, logger)

	default:
		return nil, fmt.Errorf("unknown backend %q", storeCfg.Backend)
	}
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
