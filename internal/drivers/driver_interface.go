package drivers

import (
	"database/sql"

	"gorm.io/gorm"
)

// DatabaseDriver opens GORM connections for one backing store.
type DatabaseDriver interface {
	Name() string
	Connect(connectionString string) (*gorm.DB, error)
	ConnectWithLogger(connectionString string, logLevel string) (*gorm.DB, error)
	GetSQLDB(db *gorm.DB) (*sql.DB, error)
	SupportsTransactions() bool
}
