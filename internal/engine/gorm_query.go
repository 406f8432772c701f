package engine

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"

	"github.com/shepherrrd/goshape/internal/query"
)

// GormQuery is the GORM-backed deferred query. Chainers return a fresh query
// instead of mutating the receiver; GORM's preloader supplies the
// identity-fixup behavior for pushed navigations.
type GormQuery[T any] struct {
	db         *gorm.DB
	entityType reflect.Type
	translator *query.PostgreSQLQueryTranslator
	namer      gormschema.Namer
	tableName  string
}

func NewGormQuery[T any](db *gorm.DB) *GormQuery[T] {
	var zero T
	entityType := reflect.TypeOf(zero)
	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}

	tableName := entityType.Name()
	if tabler, ok := interface{}(zero).(interface{ TableName() string }); ok {
		tableName = tabler.TableName()
	}

	// PostgreSQL keeps Pascal-case identifiers, which need quoting.
	var translator *query.PostgreSQLQueryTranslator
	if db.Dialector.Name() == "postgres" {
		translator = query.NewPostgreSQLQueryTranslator()
		var fieldNames []string
		for i := 0; i < entityType.NumField(); i++ {
			field := entityType.Field(i)
			if field.PkgPath == "" {
				fieldNames = append(fieldNames, field.Name)
			}
		}
		translator.RegisterEntityFields(tableName, fieldNames)
	}

	return &GormQuery[T]{
		db:         db.Model(new(T)),
		entityType: entityType,
		translator: translator,
		namer:      db.NamingStrategy,
		tableName:  tableName,
	}
}

func (q *GormQuery[T]) clone(db *gorm.DB) *GormQuery[T] {
	return &GormQuery[T]{
		db:         db,
		entityType: q.entityType,
		translator: q.translator,
		namer:      q.namer,
		tableName:  q.tableName,
	}
}

// Where adds a SQL condition: Where("Age > ?", 21).
func (q *GormQuery[T]) Where(condition string, args ...any) *GormQuery[T] {
	if q.translator != nil {
		condition = q.translator.TranslateQuery(q.tableName, condition)
	}
	return q.clone(q.db.Where(condition, args...))
}

// WhereField adds an equality condition on one field.
func (q *GormQuery[T]) WhereField(fieldName string, value any) *GormQuery[T] {
	return q.clone(q.db.Where(fmt.Sprintf("%s = ?", q.quote(fieldName)), value))
}

func (q *GormQuery[T]) OrderBy(fieldName string) *GormQuery[T] {
	return q.clone(q.db.Order(q.quote(fieldName) + " ASC"))
}

func (q *GormQuery[T]) OrderByDescending(fieldName string) *GormQuery[T] {
	return q.clone(q.db.Order(q.quote(fieldName) + " DESC"))
}

func (q *GormQuery[T]) Take(count int) *GormQuery[T] {
	return q.clone(q.db.Limit(count))
}

func (q *GormQuery[T]) Skip(count int) *GormQuery[T] {
	return q.clone(q.db.Offset(count))
}

func (q *GormQuery[T]) RowType() reflect.Type {
	return q.entityType
}

// Materialize executes the query once. Any pushed navigations load in the
// same call and GORM attaches them to the returned rows.
func (q *GormQuery[T]) Materialize(ctx context.Context) ([]T, error) {
	var results []T
	err := q.db.WithContext(ctx).Find(&results).Error
	return results, err
}

// WithColumns restricts the fetched columns to a projected field subset on a
// fresh query; the receiver is untouched.
func (q *GormQuery[T]) WithColumns(columns []string) DeferredQuery[T] {
	return q.clone(q.db.Select(q.columnNames(columns)))
}

// columnNames maps projected Go field names onto column identifiers: quoted
// Pascal-case on PostgreSQL, the dialect's naming strategy otherwise.
func (q *GormQuery[T]) columnNames(columns []string) []string {
	if q.translator != nil {
		return q.translator.QuoteColumns(columns)
	}
	if q.namer == nil {
		return columns
	}
	named := make([]string, len(columns))
	for i, column := range columns {
		named[i] = q.namer.ColumnName(q.tableName, column)
	}
	return named
}

// WithNavigation preloads one related collection on a fresh query, with the
// hint's modifiers translated onto the preload query.
func (q *GormQuery[T]) WithNavigation(hint NavigationHint) DeferredQuery[T] {
	if len(hint.Ops) == 0 {
		return q.clone(q.db.Preload(hint.Path))
	}
	ops := hint.Ops
	return q.clone(q.db.Preload(hint.Path, func(db *gorm.DB) *gorm.DB {
		for _, op := range ops {
			switch op.Kind {
			case NavWhere:
				db = db.Where(fmt.Sprintf("%s = ?", q.quote(op.Field)), op.Value)
			case NavOrder:
				db = db.Order(q.quote(op.Field) + " ASC")
			case NavOrderDesc:
				db = db.Order(q.quote(op.Field) + " DESC")
			case NavLimit:
				db = db.Limit(op.Count)
			case NavOffset:
				db = db.Offset(op.Count)
			}
		}
		return db
	}))
}

func (q *GormQuery[T]) quote(fieldName string) string {
	if q.translator != nil {
		return q.translator.GetQuotedFieldName(fieldName)
	}
	if q.namer != nil {
		return q.namer.ColumnName(q.tableName, fieldName)
	}
	return fieldName
}

// DB exposes the underlying GORM query for advanced usage.
func (q *GormQuery[T]) DB() *gorm.DB {
	return q.db
}
