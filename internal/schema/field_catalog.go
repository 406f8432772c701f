package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldDescriptor is one named, typed slot in a projection shape.
type FieldDescriptor struct {
	Name string
	Type reflect.Type
}

// FieldCatalog is an ordered, name-unique set of field descriptors. It is
// built per projection call and consumed by RecordTypeFor; order is the
// caller's input order.
type FieldCatalog struct {
	fields []FieldDescriptor
	index  map[string]int
}

func NewFieldCatalog() *FieldCatalog {
	return &FieldCatalog{
		index: make(map[string]int),
	}
}

// Add appends a descriptor. Duplicate names within one catalog are a caller
// error.
func (c *FieldCatalog) Add(name string, fieldType reflect.Type) error {
	if name == "" {
		return fmt.Errorf("field name must not be empty")
	}
	if fieldType == nil {
		return fmt.Errorf("field %q has no type", name)
	}
	if _, exists := c.index[name]; exists {
		return fmt.Errorf("duplicate field %q in catalog", name)
	}
	c.index[name] = len(c.fields)
	c.fields = append(c.fields, FieldDescriptor{Name: name, Type: fieldType})
	return nil
}

func (c *FieldCatalog) Len() int {
	return len(c.fields)
}

// Fields returns the descriptors in insertion order.
func (c *FieldCatalog) Fields() []FieldDescriptor {
	result := make([]FieldDescriptor, len(c.fields))
	copy(result, c.fields)
	return result
}

func (c *FieldCatalog) Contains(name string) bool {
	_, exists := c.index[name]
	return exists
}

// Signature returns the ordered (name, type) key of this catalog. Two
// catalogs with equal signatures describe the same record shape and may
// share one synthesized type.
func (c *FieldCatalog) Signature() string {
	var b strings.Builder
	for i, f := range c.fields {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Type.String())
	}
	return b.String()
}
