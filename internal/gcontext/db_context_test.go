package gcontext

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shepherrrd/goshape/internal/query"
)

// translatingDriver stands in for the postgres driver: it carries a plugin
// without opening a connection.
type translatingDriver struct {
	plugin *query.PostgreSQLPlugin
}

func (d *translatingDriver) Name() string { return "postgres" }

func (d *translatingDriver) Connect(connectionString string) (*gorm.DB, error) {
	return nil, nil
}

func (d *translatingDriver) ConnectWithLogger(connectionString string, logLevel string) (*gorm.DB, error) {
	return nil, nil
}

func (d *translatingDriver) GetSQLDB(db *gorm.DB) (*sql.DB, error) { return nil, nil }

func (d *translatingDriver) SupportsTransactions() bool { return true }

func (d *translatingDriver) GetPlugin() *query.PostgreSQLPlugin { return d.plugin }

func newTestContext(driver *translatingDriver) *DbContext {
	return &DbContext{
		driver:   driver,
		entities: make(map[reflect.Type]*EntityModel),
	}
}

func TestRegisterEntityFeedsTranslator(t *testing.T) {
	driver := &translatingDriver{plugin: query.NewPostgreSQLPlugin()}
	ctx := newTestContext(driver)

	ctx.RegisterEntity(modelUser{})

	translated := driver.plugin.TranslateCondition("modelUser", "Name = ?")
	assert.Equal(t, `"Name" = ?`, translated)
}

func TestRegisterEntityIsIdempotent(t *testing.T) {
	ctx := newTestContext(&translatingDriver{plugin: query.NewPostgreSQLPlugin()})

	first := ctx.RegisterEntity(modelUser{})
	second := ctx.RegisterEntity(&modelUser{})

	assert.Same(t, first, second)
}

func TestEntityModelFor(t *testing.T) {
	ctx := newTestContext(&translatingDriver{plugin: query.NewPostgreSQLPlugin()})
	registered := ctx.RegisterEntity(modelUser{})

	model := ctx.EntityModelFor(reflect.TypeOf(&modelUser{}))
	require.NotNil(t, model)
	assert.Same(t, registered, model)

	assert.Nil(t, ctx.EntityModelFor(reflect.TypeOf(struct{ X int }{})))
}
