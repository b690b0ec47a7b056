package routeprobe

// PrimitiveKind enumerates the leaf scalar types a TypeRef can describe,
// narrowed to the set the generation engine ships built-in generators for.
type PrimitiveKind int

const (
	PStr PrimitiveKind = iota
	PInt
	PFloat
	PBool
	PBytes
	PUuid
	PDateTime
	PDate
)

// String returns a human-readable name, used in error messages and
// FailureReport rendering.
func (k PrimitiveKind) String() string {
	switch k {
	case PStr:
		return "str"
	case PInt:
		return "int"
	case PFloat:
		return "float"
	case PBool:
		return "bool"
	case PBytes:
		return "bytes"
	case PUuid:
		return "uuid"
	case PDateTime:
		return "datetime"
	case PDate:
		return "date"
	default:
		return "unknown"
	}
}

// TypeRefKind tags which variant of the TypeRef sum a value holds.
type TypeRefKind int

const (
	KindPrimitive TypeRefKind = iota
	KindOptional
	KindSeq
	KindMap
	KindEnum
	KindRecord
	KindOneOf
	KindRef
)

// Field describes one member of a Record TypeRef.
type Field struct {
	Name     string
	Type     TypeRef
	Required bool
}

// TypeRef is the tagged-variant schema node used throughout this
// module. It is the only vocabulary TypeRegistry, generator
// composition, and PathEncoder share — none of them inspect Go's own
// type system.
//
// TypeRef is a value type (safe to copy); slices/maps it holds (Fields,
// Enum values, OneOf variants) should be treated as immutable once a
// TypeRef is constructed, the same convention RouteSpec relies on.
type TypeRef struct {
	Kind TypeRefKind

	Primitive PrimitiveKind // valid when Kind == KindPrimitive

	Elem *TypeRef // valid when Kind == KindOptional | KindSeq | KindMap (value type)
	Key  *TypeRef // valid when Kind == KindMap

	Min, Max int // valid when Kind == KindSeq | KindMap; Max < 0 means unbounded

	EnumValues []string // valid when Kind == KindEnum

	Fields []Field // valid when Kind == KindRecord

	Variants []TypeRef // valid when Kind == KindOneOf

	RefName string // valid when Kind == KindRef
}

// Convenience constructors for building TypeRef values by hand.

func Str() TypeRef      { return TypeRef{Kind: KindPrimitive, Primitive: PStr} }
func Int() TypeRef      { return TypeRef{Kind: KindPrimitive, Primitive: PInt} }
func Float() TypeRef    { return TypeRef{Kind: KindPrimitive, Primitive: PFloat} }
func Bool() TypeRef     { return TypeRef{Kind: KindPrimitive, Primitive: PBool} }
func Bytes() TypeRef    { return TypeRef{Kind: KindPrimitive, Primitive: PBytes} }
func Uuid() TypeRef     { return TypeRef{Kind: KindPrimitive, Primitive: PUuid} }
func DateTime() TypeRef { return TypeRef{Kind: KindPrimitive, Primitive: PDateTime} }
func Date() TypeRef     { return TypeRef{Kind: KindPrimitive, Primitive: PDate} }

// Optional wraps t as Optional(t).
func Optional(t TypeRef) TypeRef {
	return TypeRef{Kind: KindOptional, Elem: &t}
}

// Seq describes a Seq(t, min, max). max < 0 means unbounded (the engine
// caps unbounded sequences at a generous default; see maxUnboundedSeq
// in combinators.go).
func Seq(t TypeRef, min, max int) TypeRef {
	return TypeRef{Kind: KindSeq, Elem: &t, Min: min, Max: max}
}

// Map describes a Map(k, v, min, max), drawn as a deduplicated Seq((k,v)).
func Map(k, v TypeRef, min, max int) TypeRef {
	return TypeRef{Kind: KindMap, Key: &k, Elem: &v, Min: min, Max: max}
}

// Enum describes a closed set of string values.
func Enum(values ...string) TypeRef {
	return TypeRef{Kind: KindEnum, EnumValues: values}
}

// Record describes an ordered-field product type.
func Record(fields ...Field) TypeRef {
	return TypeRef{Kind: KindRecord, Fields: fields}
}

// OneOfTypes describes a sum type over the given variants.
func OneOfTypes(variants ...TypeRef) TypeRef {
	return TypeRef{Kind: KindOneOf, Variants: variants}
}

// Ref describes a named reference resolved against a SchemaTable
// carried alongside the RouteSpec/TypeRef set it appears in.
func Ref(name string) TypeRef {
	return TypeRef{Kind: KindRef, RefName: name}
}

// SchemaTable resolves Ref(name) nodes for mutually recursive schemas.
// It is the sole owner of recursive bodies, letting two structs refer
// to each other by name without either embedding the other directly.
type SchemaTable map[string]TypeRef

// Resolve looks up name, returning ok=false if undefined.
func (s SchemaTable) Resolve(name string) (TypeRef, bool) {
	t, ok := s[name]
	return t, ok
}
