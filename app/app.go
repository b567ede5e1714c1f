package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"pooled-auction-api/internal/controller"
	"pooled-auction-api/internal/repo"
	"pooled-auction-api/internal/repo/memdb"
	"pooled-auction-api/internal/service"
	"pooled-auction-api/pkg/http_server"
	"pooled-auction-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
)

func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

func runMigrations(postgresDB *postgres.Postgres, cfg *Config, log logrus.FieldLogger) error {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{DatabaseName: cfg.PostgresDatabase})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrations, err := migrate.NewWithDatabaseInstance(cfg.MigrationsSource, cfg.PostgresDatabase, driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	if err := migrations.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no change made by migration scripts")
			return nil
		}

		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("migrations applied")

	return nil
}

// openStorage returns the repositories for the configured storage and a
// function releasing them.
func openStorage(ctx context.Context, cfg *Config, log logrus.FieldLogger) (*repo.Repositories, func(), error) {
	if cfg.Storage == StorageMemory {
		log.Warn("using in-memory storage, data is lost on exit")
		return memdb.NewRepositories(memdb.NewStore()), func() {}, nil
	}

	log.Info("connecting database...")
	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := postgresDB.Close(); err != nil {
			log.WithError(err).Error("close database")
		}
	}

	if err := postgresDB.Database.PingContext(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("running migrations...")
	if err := runMigrations(postgresDB, cfg, log); err != nil {
		closeDB()
		return nil, nil, err
	}

	return repo.NewRepositories(postgresDB), closeDB, nil
}

func newServices(cfg *Config, repositories *repo.Repositories, log logrus.FieldLogger) *service.Services {
	return service.NewServices(service.Deps{
		Repos:            repositories,
		Log:              log,
		MinBidDecrement:  cfg.MinBidDecrement,
		AwardConcurrency: cfg.AwardConcurrency,
	})
}

// Serve runs the HTTP API until ctx is cancelled or the listener fails.
func Serve(ctx context.Context, cfg *Config, log *logrus.Logger) error {
	repositories, release, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer release()

	services := newServices(cfg, repositories, log)
	handler := echo.New()
	handler.HideBanner = true

	log.Info("setup routes...")
	controller.SetupRoutesHandlers(handler, services, log)

	log.WithField("address", cfg.ServerAddress).Info("starting server...")
	httpServer := http_server.New(handler, cfg.ServerAddress)

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err, ok := <-httpServer.Notify():
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("shutting down...")
	if err := httpServer.Shutdown(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("successful shutdown")

	return nil
}

// AwardExpired awards every open auction whose deadline has passed. It is
// meant to be run by an external scheduler.
func AwardExpired(ctx context.Context, cfg *Config, log *logrus.Logger) error {
	if cfg.Storage != StoragePostgres {
		return errors.New("awarding expired auctions needs postgres storage")
	}

	repositories, release, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer release()

	orders, err := newServices(cfg, repositories, log).Auction.AwardExpiredAuctions(ctx)
	log.WithField("processed", len(orders)).Info("expired auctions processed")

	return err
}

// Migrate applies pending migrations and exits.
func Migrate(ctx context.Context, cfg *Config, log *logrus.Logger) error {
	if cfg.Storage != StoragePostgres {
		return errors.New("migrations need postgres storage")
	}

	_, release, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	release()

	return nil
}
