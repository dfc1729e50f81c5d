// Package bootstrap opens the configured storage backend for the server and
// the operator CLI.
package bootstrap

import (
	"context"
	"strings"

	"gorm.io/gorm/logger"

	"github.com/example/tastetab/internal/database"
	"github.com/example/tastetab/internal/store"
	"github.com/example/tastetab/internal/store/mongostore"
)

// OpenStore picks the backend from the DATABASE_URL scheme: mongodb URLs get
// the document store, everything else a migrated gorm store.
func OpenStore(ctx context.Context, dsn, logLevel string) (store.Store, error) {
	if database.DetectKind(dsn) == database.KindMongo {
		return mongostore.Connect(ctx, dsn)
	}

	db, err := database.Open(dsn, GormLogLevel(logLevel))
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}

// GormLogLevel maps LOG_LEVEL onto the gorm logger: SQL statements are only
// logged at debug.
func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
