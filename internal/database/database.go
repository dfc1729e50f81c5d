package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/tastetab/internal/models"
)

// Kind identifies which backend a DATABASE_URL points at.
type Kind string

const (
	KindMongo    Kind = "mongo"
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
)

// DetectKind classifies a connection string by its scheme. Anything that is
// not a mongo or postgres URL is treated as a sqlite path/DSN.
func DetectKind(dsn string) Kind {
	switch {
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return KindMongo
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return KindPostgres
	default:
		return KindSQLite
	}
}

// Open connects gorm to a postgres or sqlite database and runs migrations.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch DetectKind(dsn) {
	case KindPostgres:
		if err := ensureDatabase(dsn); err != nil {
			return nil, fmt.Errorf("ensure database: %w", err)
		}
		dialector = postgres.Open(dsn)
	case KindSQLite:
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	default:
		return nil, fmt.Errorf("gorm cannot open %q", dsn)
	}

	// Driver errors are kept raw so unique violations still name the column.
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if DetectKind(dsn) == KindSQLite {
		// in-memory sqlite databases live per connection
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return conn, nil
}

// Migrate creates or updates the tables.
func Migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.User{},
		&models.Item{},
		&models.Bill{},
		&models.BillItem{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

func ensureDatabase(dsn string) error {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
