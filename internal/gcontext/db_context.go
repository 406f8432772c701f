package gcontext

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"

	"github.com/shepherrrd/goshape/internal/drivers"
	"github.com/shepherrrd/goshape/internal/query"
)

// DbContext owns one database connection and the registry of row types
// queried through it. It is the read-side context projections run against.
type DbContext struct {
	db       *gorm.DB
	driver   drivers.DatabaseDriver
	entities map[reflect.Type]*EntityModel
	mu       sync.RWMutex
}

type DbContextOptions struct {
	ConnectionString string
	Driver           drivers.DatabaseDriver
	LogLevel         string
}

func NewDbContext(options DbContextOptions) (*DbContext, error) {
	logLevel := options.LogLevel
	if logLevel == "" {
		logLevel = "silent"
	}
	db, err := options.Driver.ConnectWithLogger(options.ConnectionString, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DbContext{
		db:       db,
		driver:   options.Driver,
		entities: make(map[reflect.Type]*EntityModel),
	}, nil
}

// RegisterEntity records a row type so its declared properties can be
// resolved, and feeds the PostgreSQL translator when applicable.
func (ctx *DbContext) RegisterEntity(entity interface{}) *EntityModel {
	entityType := reflect.TypeOf(entity)
	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if model, exists := ctx.entities[entityType]; exists {
		return model
	}

	model := NewEntityModel(entityType)
	if tabler, ok := entity.(interface{ TableName() string }); ok {
		model.TableName = tabler.TableName()
	}
	ctx.entities[entityType] = model

	if pg, ok := ctx.driver.(interface{ GetPlugin() *query.PostgreSQLPlugin }); ok {
		pg.GetPlugin().RegisterEntity(entityType, model.TableName, model.FieldNames())
	}

	return model
}

// EntityModelFor returns the registered model for a row type, if any.
func (ctx *DbContext) EntityModelFor(entityType reflect.Type) *EntityModel {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}
	return ctx.entities[entityType]
}

func (ctx *DbContext) GetDB() *gorm.DB {
	return ctx.db
}

func (ctx *DbContext) GetDriver() drivers.DatabaseDriver {
	return ctx.driver
}

// EnsureCreated migrates the schema for every registered entity.
func (ctx *DbContext) EnsureCreated() error {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	for _, entity := range ctx.entities {
		if err := ctx.db.AutoMigrate(reflect.New(entity.Type).Interface()); err != nil {
			return fmt.Errorf("migrate %s: %w", entity.Name, err)
		}
	}
	return nil
}

func (ctx *DbContext) Close() error {
	sqlDB, err := ctx.driver.GetSQLDB(ctx.db)
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
