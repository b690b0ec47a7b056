package routeprobe

import (
	"fmt"
	"strconv"
)

// JSONSchema is a minimal subset of JSON Schema: the constraints
// SchemaValidator actually checks against a decoded response body
// (type, properties, required, items, enum), since routeprobe checks
// conformance rather than authoring schemas.
type JSONSchema struct {
	Type       string                `json:"type,omitempty"`
	Properties map[string]JSONSchema `json:"properties,omitempty"`
	Required   []string              `json:"required,omitempty"`
	Items      *JSONSchema           `json:"items,omitempty"`
	Enum       []any                 `json:"enum,omitempty"`
}

// ConformanceError describes one schema-conformance violation found
// while checking a decoded value, with enough path context to locate it
// in a FailureReport.
type ConformanceError struct {
	Path string
	Msg  string
}

func (e *ConformanceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Check walks value against the schema, returning every violation found
// (not just the first), so FailureReport can list them all.
func (s JSONSchema) Check(value any) []*ConformanceError {
	var errs []*ConformanceError
	s.check("$", value, &errs)
	return errs
}

func (s JSONSchema) check(path string, value any, errs *[]*ConformanceError) {
	if len(s.Enum) > 0 && !enumContains(s.Enum, value) {
		*errs = append(*errs, &ConformanceError{Path: path, Msg: "value not in enum"})
	}
	switch s.Type {
	case "":
		// untyped: only the enum check applies
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected object"})
			return
		}
		for _, req := range s.Required {
			if _, present := obj[req]; !present {
				*errs = append(*errs, &ConformanceError{Path: path + "." + req, Msg: "required property missing"})
			}
		}
		for name, sub := range s.Properties {
			if v, present := obj[name]; present {
				sub.check(path+"."+name, v, errs)
			}
		}
	case "array":
		arr, ok := value.([]any)
		if !ok {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected array"})
			return
		}
		if s.Items != nil {
			for i, v := range arr {
				s.Items.check(path+"["+strconv.Itoa(i)+"]", v, errs)
			}
		}
	case "string":
		if _, ok := value.(string); !ok {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected string"})
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != float64(int64(f)) {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected integer"})
		}
	case "number":
		if _, ok := value.(float64); !ok {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected number"})
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected boolean"})
		}
	case "null":
		if value != nil {
			*errs = append(*errs, &ConformanceError{Path: path, Msg: "expected null"})
		}
	default:
		*errs = append(*errs, &ConformanceError{Path: path, Msg: fmt.Sprintf("unknown schema type %q", s.Type)})
	}
}

func enumContains(enum []any, value any) bool {
	for _, e := range enum {
		if fmt.Sprint(e) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}

// SchemaFromTypeRef derives a JSONSchema describing the shape a TypeRef
// would marshal to, for callers that have no explicit response schema
// but still want structural conformance checking against a TypeRef's
// own shape. Nothing in this package calls it.
func SchemaFromTypeRef(t TypeRef) JSONSchema {
	switch t.Kind {
	case KindPrimitive:
		switch t.Primitive {
		case PInt:
			return JSONSchema{Type: "integer"}
		case PFloat:
			return JSONSchema{Type: "number"}
		case PBool:
			return JSONSchema{Type: "boolean"}
		default:
			return JSONSchema{Type: "string"}
		}
	case KindOptional:
		return SchemaFromTypeRef(*t.Elem)
	case KindSeq:
		inner := SchemaFromTypeRef(*t.Elem)
		return JSONSchema{Type: "array", Items: &inner}
	case KindMap:
		return JSONSchema{Type: "object"}
	case KindEnum:
		vals := make([]any, len(t.EnumValues))
		for i, v := range t.EnumValues {
			vals[i] = v
		}
		return JSONSchema{Type: "string", Enum: vals}
	case KindRecord:
		props := make(map[string]JSONSchema, len(t.Fields))
		var required []string
		for _, f := range t.Fields {
			props[f.Name] = SchemaFromTypeRef(f.Type)
			if f.Required {
				required = append(required, f.Name)
			}
		}
		return JSONSchema{Type: "object", Properties: props, Required: required}
	case KindOneOf:
		if len(t.Variants) > 0 {
			return SchemaFromTypeRef(t.Variants[0])
		}
		return JSONSchema{}
	default:
		return JSONSchema{}
	}
}
