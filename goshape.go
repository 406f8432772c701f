// Package goshape projects query rows into runtime-chosen shapes: a subset
// of named fields picked per call, or the original row type with related
// collections loaded through independent sub-queries.
package goshape

import (
	"fmt"

	"github.com/shepherrrd/goshape/internal/drivers"
	"github.com/shepherrrd/goshape/internal/engine"
	"github.com/shepherrrd/goshape/internal/gcontext"
)

type DbContext = gcontext.DbContext
type DbContextOptions = gcontext.DbContextOptions
type EntityModel = gcontext.EntityModel

// Query is the GORM-backed deferred query over rows of T.
type Query[T any] = engine.GormQuery[T]

// MemorySource is a slice-backed deferred query, useful for tests and for
// projecting rows that are already in memory.
type MemorySource[T any] = engine.MemorySource[T]

// DeferredQuery is the contract both operations run against.
type DeferredQuery[R any] = engine.DeferredQuery[R]

type NavigationHint = engine.NavigationHint
type NavigationOp = engine.NavigationOp

func NewDbContext(connectionString string, driverType string) (*DbContext, error) {
	return NewDbContextWithLogger(connectionString, driverType, "silent")
}

func NewDbContextWithLogger(connectionString string, driverType string, logLevel string) (*DbContext, error) {
	var driver drivers.DatabaseDriver

	switch driverType {
	case "postgres", "postgresql":
		driver = drivers.NewPostgreSQLDriver()
	case "mysql":
		driver = drivers.NewMySQLDriver()
	case "sqlite", "sqlite3":
		driver = drivers.NewSQLiteDriver()
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driverType)
	}

	options := DbContextOptions{
		ConnectionString: connectionString,
		Driver:           driver,
		LogLevel:         logLevel,
	}

	return gcontext.NewDbContext(options)
}

type Tabler interface {
	TableName() string
}

// RegisterEntity records T on the context and returns a deferred query over
// it.
func RegisterEntity[T any](ctx *DbContext) *Query[T] {
	var zero T
	ctx.RegisterEntity(zero)
	return engine.NewGormQuery[T](ctx.GetDB())
}

// NewQuery returns a deferred query over T without registering it.
func NewQuery[T any](ctx *DbContext) *Query[T] {
	return engine.NewGormQuery[T](ctx.GetDB())
}

// NewMemorySource wraps in-memory rows as a deferred query.
func NewMemorySource[T any](rows []T) *MemorySource[T] {
	return engine.NewMemorySource(rows)
}
