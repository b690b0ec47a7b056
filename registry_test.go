package routeprobe

import "testing"

func TestTypeRegistryResolveFallsBackToSynthesis(t *testing.T) {
	reg := NewTypeRegistry()
	gen, err := reg.Resolve(Int())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := gen.Draw(NewSplitRNG(1), 10)
	if _, ok := v.(int64); !ok {
		t.Fatalf("expected int64, got %T", v)
	}
}

func TestTypeRegistryRegisterOverridesSynthesis(t *testing.T) {
	reg := NewTypeRegistry()
	sentinel := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(999), leafInt(999) },
		nil,
	)
	if err := reg.Register(Int(), sentinel, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gen, err := reg.Resolve(Int())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := gen.Draw(NewSplitRNG(1), 10)
	if v != int64(999) {
		t.Fatalf("expected overridden generator value 999, got %v", v)
	}
}

func TestTypeRegistryRegisterRejectsDuplicateWithoutOverride(t *testing.T) {
	reg := NewTypeRegistry()
	first := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(1), leafInt(1) },
		nil,
	)
	second := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(2), leafInt(2) },
		nil,
	)
	if err := reg.Register(Int(), first, false); err != nil {
		t.Fatalf("unexpected error on first registration: %v", err)
	}
	err := reg.Register(Int(), second, false)
	if err == nil {
		t.Fatalf("expected AlreadyRegisteredError on duplicate registration")
	}
	if _, ok := err.(*AlreadyRegisteredError); !ok {
		t.Fatalf("expected *AlreadyRegisteredError, got %T", err)
	}

	if err := reg.Register(Int(), second, true); err != nil {
		t.Fatalf("unexpected error overriding with override=true: %v", err)
	}
	gen, _ := reg.Resolve(Int())
	v, _ := gen.Draw(NewSplitRNG(1), 10)
	if v != int64(2) {
		t.Fatalf("expected override to replace generator, got %v", v)
	}
}

func TestTypeRegistryRegisterManyIsAtomic(t *testing.T) {
	reg := NewTypeRegistry()
	existing := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(1), leafInt(1) },
		nil,
	)
	if err := reg.Register(Int(), existing, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(2), leafInt(2) },
		nil,
	)
	newGen := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return true, &DrawTree{NodeType: NodeLeaf} },
		nil,
	)
	err := reg.RegisterMany([]RegistrationEntry{
		{Type: Bool(), Gen: newGen},
		{Type: Int(), Gen: replacement}, // conflicts, Override defaults to false
	})
	if err == nil {
		t.Fatalf("expected AlreadyRegisteredError from a conflicting batch entry")
	}

	// The whole batch must have been rolled back, including the Bool()
	// entry that had no conflict of its own: no override should be
	// registered for it.
	for _, k := range reg.RegisteredTypes() {
		if k == "primitive:bool" {
			t.Fatalf("expected atomic RegisterMany to leave Bool() unregistered after rollback")
		}
	}
}

func TestTypeRegistryUnregisterRevertsToSynthesis(t *testing.T) {
	reg := NewTypeRegistry()
	sentinel := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(999), leafInt(999) },
		nil,
	)
	reg.Register(Int(), sentinel, false)
	reg.Unregister(Int())

	gen, _ := reg.Resolve(Int())
	v, _ := gen.Draw(NewSplitRNG(1), 10)
	if v == int64(999) {
		t.Fatalf("expected Unregister to remove override")
	}
}

func TestTypeRegistryScopedReleasesOnce(t *testing.T) {
	reg := NewTypeRegistry()
	original := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(1), leafInt(1) },
		nil,
	)
	reg.Register(Int(), original, false)

	override := GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) { return int64(2), leafInt(2) },
		nil,
	)
	scope := reg.Scoped(Int(), override)

	gen, _ := reg.Resolve(Int())
	v, _ := gen.Draw(NewSplitRNG(1), 10)
	if v != int64(2) {
		t.Fatalf("expected scoped override value 2, got %v", v)
	}

	scope.Release()
	scope.Release() // must be idempotent

	gen, _ = reg.Resolve(Int())
	v, _ = gen.Draw(NewSplitRNG(1), 10)
	if v != int64(1) {
		t.Fatalf("expected original value 1 restored, got %v", v)
	}
}

func TestTypeRegistryWithSchemasResolvesRef(t *testing.T) {
	reg := NewTypeRegistry().WithSchemas(SchemaTable{"Count": Int()})
	gen, err := reg.Resolve(Ref("Count"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := gen.Draw(NewSplitRNG(1), 10)
	if _, ok := v.(int64); !ok {
		t.Fatalf("expected int64, got %T", v)
	}
}
