package drivers

import (
	"database/sql"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type SQLiteDriver struct{}

func NewSQLiteDriver() *SQLiteDriver {
	return &SQLiteDriver{}
}

func (s *SQLiteDriver) Name() string {
	return "sqlite"
}

func (s *SQLiteDriver) Connect(connectionString string) (*gorm.DB, error) {
	return s.ConnectWithLogger(connectionString, "silent")
}

func (s *SQLiteDriver) ConnectWithLogger(connectionString string, logLevel string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: configureLogger(logLevel),
	})
}

func (s *SQLiteDriver) GetSQLDB(db *gorm.DB) (*sql.DB, error) {
	return db.DB()
}

func (s *SQLiteDriver) SupportsTransactions() bool {
	return true
}
