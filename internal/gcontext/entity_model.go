package gcontext

import (
	"reflect"
	"strings"
)

// EntityModel is the reflected shape of one registered row type: the
// declared property names and types requested field names resolve against.
type EntityModel struct {
	Name       string
	TableName  string
	Type       reflect.Type
	Fields     map[string]FieldModel
	PrimaryKey []string
}

type FieldModel struct {
	Name       string
	ColumnName string
	GoType     reflect.Type
	Tags       map[string]string
	IsPrimary  bool
	IsNullable bool
}

func NewEntityModel(entityType reflect.Type) *EntityModel {
	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}

	entity := &EntityModel{
		Name:      entityType.Name(),
		TableName: entityType.Name(),
		Type:      entityType,
		Fields:    make(map[string]FieldModel),
	}

	for i := 0; i < entityType.NumField(); i++ {
		field := entityType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		fieldModel := parseFieldModel(field)
		entity.Fields[field.Name] = fieldModel

		if fieldModel.IsPrimary {
			entity.PrimaryKey = append(entity.PrimaryKey, fieldModel.ColumnName)
		}
	}

	return entity
}

// FieldNames returns the exported field names in declaration order.
func (e *EntityModel) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for i := 0; i < e.Type.NumField(); i++ {
		field := e.Type.Field(i)
		if field.PkgPath == "" {
			names = append(names, field.Name)
		}
	}
	return names
}

func parseFieldModel(field reflect.StructField) FieldModel {
	fieldModel := FieldModel{
		Name:       field.Name,
		ColumnName: field.Name,
		GoType:     field.Type,
		Tags:       make(map[string]string),
		IsNullable: isNullableType(field.Type),
	}

	gormTag := field.Tag.Get("gorm")
	if gormTag != "" {
		parseTags(gormTag, fieldModel.Tags)
	}

	if _, exists := fieldModel.Tags["primaryKey"]; exists {
		fieldModel.IsPrimary = true
		fieldModel.IsNullable = false
	}
	if _, exists := fieldModel.Tags["primary_key"]; exists {
		fieldModel.IsPrimary = true
		fieldModel.IsNullable = false
	}
	if _, exists := fieldModel.Tags["not null"]; exists {
		fieldModel.IsNullable = false
	}

	return fieldModel
}

func parseTags(tagStr string, tags map[string]string) {
	parts := strings.Split(tagStr, ";")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, ":") {
			kv := strings.SplitN(part, ":", 2)
			tags[kv[0]] = kv[1]
		} else {
			tags[part] = ""
		}
	}
}

func isNullableType(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr ||
		t.Kind() == reflect.Interface ||
		t.Kind() == reflect.Slice ||
		t.Kind() == reflect.Map
}
