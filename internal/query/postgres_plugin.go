package query

import (
	"reflect"

	"gorm.io/gorm"
)

// PostgreSQLPlugin carries one shared translator per connection and the
// entity registrations that feed it.
type PostgreSQLPlugin struct {
	translator *PostgreSQLQueryTranslator
	entityMap  map[string]reflect.Type // table name -> entity type
}

func NewPostgreSQLPlugin() *PostgreSQLPlugin {
	return &PostgreSQLPlugin{
		translator: NewPostgreSQLQueryTranslator(),
		entityMap:  make(map[string]reflect.Type),
	}
}

// Name returns the plugin name.
func (p *PostgreSQLPlugin) Name() string {
	return "goshape:postgres-pascal-case"
}

// Initialize satisfies gorm.Plugin. Translation happens in the query layer,
// before conditions reach GORM, so no callbacks are registered.
func (p *PostgreSQLPlugin) Initialize(db *gorm.DB) error {
	return nil
}

// RegisterEntity records an entity's exported fields for query translation.
func (p *PostgreSQLPlugin) RegisterEntity(entityType reflect.Type, tableName string, fieldNames []string) {
	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}
	p.entityMap[tableName] = entityType
	p.translator.RegisterEntityFields(tableName, fieldNames)
}

// TranslateCondition quotes field names in a condition for the given table.
func (p *PostgreSQLPlugin) TranslateCondition(tableName, condition string) string {
	return p.translator.TranslateQuery(tableName, condition)
}

// GetTranslator returns the shared query translator.
func (p *PostgreSQLPlugin) GetTranslator() *PostgreSQLQueryTranslator {
	return p.translator
}
