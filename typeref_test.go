package routeprobe

import "testing"

func TestSchemaTableResolve(t *testing.T) {
	table := SchemaTable{
		"User": Record(Field{Name: "id", Type: Uuid(), Required: true}),
	}

	ref, ok := table.Resolve("User")
	if !ok {
		t.Fatalf("expected User to resolve")
	}
	if ref.Kind != KindRecord {
		t.Fatalf("expected KindRecord, got %v", ref.Kind)
	}

	if _, ok := table.Resolve("Missing"); ok {
		t.Fatalf("expected Missing to not resolve")
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		name string
		ref  TypeRef
		want TypeRefKind
	}{
		{"str", Str(), KindPrimitive},
		{"optional", Optional(Int()), KindOptional},
		{"seq", Seq(Bool(), 0, 5), KindSeq},
		{"map", Map(Str(), Int(), 0, 5), KindMap},
		{"enum", Enum("a", "b"), KindEnum},
		{"record", Record(Field{Name: "x", Type: Int(), Required: true}), KindRecord},
		{"oneof", OneOfTypes(Str(), Int()), KindOneOf},
		{"ref", Ref("Foo"), KindRef},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.ref.Kind != c.want {
				t.Fatalf("%s: got kind %v, want %v", c.name, c.ref.Kind, c.want)
			}
		})
	}
}
