package db

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/models"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectAndMigrate opens the store and brings the schema up to date.
// Postgres when DATABASE_DSN points at one, an on-disk sqlite file
// otherwise (dev default). Schema setup runs golang-migrate SQL
// migrations when MIGRATIONS=1, falling back to AutoMigrate for dev.
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = open(dsn, cfg)
		if err == nil {
			break
		}
		config.Logger().WithError(err).Warn("retrying database connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after retries: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if migrationsRequested() && IsPostgresDSN(dsn) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(conn); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"products", "clients", "business_profiles", "bills", "bill_items"} {
		if !conn.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	return conn, nil
}

// AutoMigrate creates/updates the schema directly from the models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range []any{
		&models.Product{}, &models.Client{}, &models.BusinessProfile{},
		&models.Bill{}, &models.BillItem{},
	} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if IsPostgresDSN(dsn) {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	if dsn == "" {
		dsn = "file:billing.db"
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

func migrationsRequested() bool {
	v := strings.ToLower(os.Getenv("MIGRATIONS"))
	return v == "1" || v == "true" || v == "yes"
}

func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
