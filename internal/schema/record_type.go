package schema

import (
	"reflect"
	"sync"
)

// RecordType is a runtime-synthesized record shape: a fixed, ordered list of
// named, typed, settable fields plus a parameterless constructor. It is
// immutable after synthesis and safe to share between calls.
type RecordType struct {
	fields    []FieldDescriptor
	index     map[string]int
	signature string
}

// typeCache memoizes synthesized record types process-wide, keyed by the
// catalog signature. Populated lazily, never evicted; the key space is
// bounded by the distinct shapes callers actually request.
var typeCache = struct {
	mu    sync.RWMutex
	types map[string]*RecordType
}{
	types: make(map[string]*RecordType),
}

// RecordTypeFor returns the record type for the given catalog, synthesizing
// it on first use. Calls with identical catalogs observe the same *RecordType.
func RecordTypeFor(catalog *FieldCatalog) *RecordType {
	signature := catalog.Signature()

	typeCache.mu.RLock()
	rt, exists := typeCache.types[signature]
	typeCache.mu.RUnlock()
	if exists {
		return rt
	}

	typeCache.mu.Lock()
	defer typeCache.mu.Unlock()
	if rt, exists := typeCache.types[signature]; exists {
		return rt
	}

	fields := catalog.Fields()
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	rt = &RecordType{
		fields:    fields,
		index:     index,
		signature: signature,
	}
	typeCache.types[signature] = rt
	return rt
}

// New is the parameterless constructor: every field starts at the zero value
// of its declared type.
func (rt *RecordType) New() *Record {
	values := make([]any, len(rt.fields))
	for i, f := range rt.fields {
		values[i] = reflect.Zero(f.Type).Interface()
	}
	return &Record{rtype: rt, values: values}
}

// Fields returns the descriptors in declaration order.
func (rt *RecordType) Fields() []FieldDescriptor {
	result := make([]FieldDescriptor, len(rt.fields))
	copy(result, rt.fields)
	return result
}

func (rt *RecordType) NumFields() int {
	return len(rt.fields)
}

// Field looks up a descriptor by name.
func (rt *RecordType) Field(name string) (FieldDescriptor, bool) {
	i, exists := rt.index[name]
	if !exists {
		return FieldDescriptor{}, false
	}
	return rt.fields[i], true
}

func (rt *RecordType) Signature() string {
	return rt.signature
}
