package gcontext

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modelUser struct {
	ID       uuid.UUID `gorm:"primaryKey"`
	Name     string    `gorm:"not null"`
	Email    *string
	Tags     []string
	internal int
}

func TestNewEntityModel(t *testing.T) {
	model := NewEntityModel(reflect.TypeOf(modelUser{}))

	assert.Equal(t, "modelUser", model.Name)
	assert.Equal(t, "modelUser", model.TableName)
	assert.Equal(t, []string{"ID"}, model.PrimaryKey)

	require.Contains(t, model.Fields, "Name")
	assert.False(t, model.Fields["Name"].IsNullable)
	assert.True(t, model.Fields["Email"].IsNullable)
	assert.True(t, model.Fields["ID"].IsPrimary)
	assert.NotContains(t, model.Fields, "internal")
}

func TestFieldNamesKeepDeclarationOrder(t *testing.T) {
	model := NewEntityModel(reflect.TypeOf(modelUser{}))

	assert.Equal(t, []string{"ID", "Name", "Email", "Tags"}, model.FieldNames())
}
