// Package storage provides the gorm-backed repository implementations
// and database bootstrap.
package storage

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/classattend/attendance-server/attendance"
	"github.com/classattend/attendance-server/sessions"
	"github.com/classattend/attendance-server/users"
)

// Open connects to the SQLite database at path and runs migrations.
func Open(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "[storage.Open] failed to create data directory")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[storage.Open] failed to connect to database")
	}

	if err := db.AutoMigrate(
		&users.User{},
		&sessions.Session{},
		&attendance.Record{},
	); err != nil {
		return nil, errors.Wrap(err, "[storage.Open] failed to run migrations")
	}

	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
