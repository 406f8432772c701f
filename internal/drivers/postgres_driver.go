package drivers

import (
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shepherrrd/goshape/internal/query"
)

type PostgreSQLDriver struct {
	plugin *query.PostgreSQLPlugin
}

func NewPostgreSQLDriver() *PostgreSQLDriver {
	return &PostgreSQLDriver{
		plugin: query.NewPostgreSQLPlugin(),
	}
}

func (p *PostgreSQLDriver) Name() string {
	return "postgres"
}

func (p *PostgreSQLDriver) Connect(connectionString string) (*gorm.DB, error) {
	return p.ConnectWithLogger(connectionString, "silent")
}

func (p *PostgreSQLDriver) ConnectWithLogger(connectionString string, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{
		NamingStrategy: query.NewPostgreSQLNamingStrategy(),
		Logger:         configureLogger(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(p.plugin); err != nil {
		return nil, err
	}

	return db, nil
}

// GetPlugin returns the plugin carrying the shared query translator.
func (p *PostgreSQLDriver) GetPlugin() *query.PostgreSQLPlugin {
	return p.plugin
}

func (p *PostgreSQLDriver) GetSQLDB(db *gorm.DB) (*sql.DB, error) {
	return db.DB()
}

func (p *PostgreSQLDriver) SupportsTransactions() bool {
	return true
}
