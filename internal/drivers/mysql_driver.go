package drivers

import (
	"database/sql"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type MySQLDriver struct{}

func NewMySQLDriver() *MySQLDriver {
	return &MySQLDriver{}
}

func (m *MySQLDriver) Name() string {
	return "mysql"
}

func (m *MySQLDriver) Connect(connectionString string) (*gorm.DB, error) {
	return m.ConnectWithLogger(connectionString, "silent")
}

func (m *MySQLDriver) ConnectWithLogger(connectionString string, logLevel string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(connectionString), &gorm.Config{
		Logger: configureLogger(logLevel),
	})
}

func (m *MySQLDriver) GetSQLDB(db *gorm.DB) (*sql.DB, error) {
	return db.DB()
}

func (m *MySQLDriver) SupportsTransactions() bool {
	return true
}
