package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/query-explorer/internal/cache"
	"github.com/maxviazov/query-explorer/internal/config"
	"github.com/maxviazov/query-explorer/internal/handler"
	"github.com/maxviazov/query-explorer/internal/logger"
	"github.com/maxviazov/query-explorer/internal/repository"
	"github.com/maxviazov/query-explorer/internal/repository/memory"
	"github.com/maxviazov/query-explorer/internal/repository/postgres"
	"github.com/maxviazov/query-explorer/internal/service"
	"github.com/maxviazov/query-explorer/migrations"
)

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
	appLogger.Info().Msg("service stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	ready := map[string]handler.Pinger{}

	store, closeStore, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()
	ready["store"] = store.pinger

	var fragments cache.FragmentCache = cache.Nop{}
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		rc := cache.NewRedis(rdb, cfg.Redis.TTL)
		fragments = rc
		ready["redis"] = rc
		appLogger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("fragment cache enabled")
	}

	if cfg.Logger.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.Deps{
		Tables:         service.NewTableService(store.tables, store.readTx, fragments, appLogger),
		Ready:          ready,
		DefaultPerPage: cfg.App.DefaultRecordsPerPage,
		Logger:         appLogger,
	})
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		appLogger.Info().Dur("timeout", cfg.App.ShutdownTimeout).Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type backend struct {
	tables repository.TableRepository
	readTx repository.TxManager
	pinger handler.Pinger
}

// openStore builds the configured table store and returns its closer.
func openStore(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (backend, func(), error) {
	if cfg.Storage.Driver != config.DriverPostgres {
		mem := memory.NewTableRepository()
		return backend{tables: mem, readTx: mem.ReadTx(), pinger: mem}, func() {}, nil
	}

	pg, err := repository.NewPostgres(ctx, cfg.Postgres, appLogger)
	if err != nil {
		return backend{}, nil, err
	}
	if cfg.Postgres.AutoMigrate {
		if err := migrate(pg, appLogger); err != nil {
			pg.Close()
			return backend{}, nil, err
		}
	}
	return backend{
		tables: postgres.NewTableRepository(pg.Pool()),
		readTx: postgres.NewReadTxManager(pg.Pool()),
		pinger: postgres.NewPinger(pg.Pool()),
	}, pg.Close, nil
}

func migrate(pg *repository.Postgres, appLogger zerolog.Logger) error {
	db := stdlib.OpenDBFromPool(pg.Pool())

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, migrations.Dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	appLogger.Info().Int64("version", version).Msg("migrations applied")
	return nil
}
