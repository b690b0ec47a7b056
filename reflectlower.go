package routeprobe

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/routeprobe/routeprobe/internal/meta"
)

// FromGoType derives a TypeRef (and any recursively-referenced schemas)
// describing the shape of a Go type, for callers building RouteSpecs
// from hand-written Go request/response structs rather than from an
// OpenAPI document, using Go's reflect package to walk the struct
// shape.
//
// Struct fields tagged `routeprobe:"-"` are skipped; fields tagged
// `routeprobe:"name"` use name as their TypeRef field name instead of
// the Go field name.
func FromGoType(t reflect.Type) (TypeRef, SchemaTable, error) {
	table := SchemaTable{}
	cache := meta.NewTypeCache()
	ref, err := lower(t, table, cache)
	if err != nil {
		return TypeRef{}, nil, err
	}
	return ref, table, nil
}

var (
	uuidType     = reflect.TypeOf(uuid.UUID{})
	timeType     = reflect.TypeOf(time.Time{})
	byteSliceTyp = reflect.TypeOf([]byte(nil))
)

func lower(t reflect.Type, table SchemaTable, cache *meta.TypeCache) (TypeRef, error) {
	if t.Kind() == reflect.Ptr {
		inner, err := lower(t.Elem(), table, cache)
		if err != nil {
			return TypeRef{}, err
		}
		return Optional(inner), nil
	}

	switch {
	case t == uuidType:
		return Uuid(), nil
	case t == timeType:
		return DateTime(), nil
	case t == byteSliceTyp:
		return Bytes(), nil
	}

	switch t.Kind() {
	case reflect.String:
		return Str(), nil
	case reflect.Bool:
		return Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(), nil
	case reflect.Float32, reflect.Float64:
		return Float(), nil
	case reflect.Slice, reflect.Array:
		elem, err := lower(t.Elem(), table, cache)
		if err != nil {
			return TypeRef{}, err
		}
		return Seq(elem, 0, -1), nil
	case reflect.Map:
		key, err := lower(t.Key(), table, cache)
		if err != nil {
			return TypeRef{}, err
		}
		val, err := lower(t.Elem(), table, cache)
		if err != nil {
			return TypeRef{}, err
		}
		return Map(key, val, 0, -1), nil
	case reflect.Struct:
		return lowerStruct(t, table, cache)
	default:
		return TypeRef{}, &UnsupportedTypeError{Detail: fmt.Sprintf("cannot lower Go type %s", t)}
	}
}

func lowerStruct(t reflect.Type, table SchemaTable, cache *meta.TypeCache) (TypeRef, error) {
	name, alreadySeen := cache.NameFor(t)
	if alreadySeen {
		return Ref(name), nil
	}
	if _, ok := table[name]; ok {
		return Ref(name), nil
	}
	// Reserve the slot before recursing into fields, so a field that
	// refers back to t resolves to Ref(name) instead of recursing.
	table[name] = TypeRef{Kind: KindRecord}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("routeprobe")
		if tag == "-" {
			continue
		}
		fieldName := f.Name
		required := true
		if tag != "" {
			fieldName = tag
		}
		if f.Type.Kind() == reflect.Ptr {
			required = false
		}
		ft, err := lower(f.Type, table, cache)
		if err != nil {
			return TypeRef{}, err
		}
		fields = append(fields, Field{Name: fieldName, Type: ft, Required: required})
	}

	table[name] = Record(fields...)
	return Ref(name), nil
}
