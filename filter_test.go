package routeprobe

import "testing"

func TestFilterDefaultIncludesEverything(t *testing.T) {
	f := NewFilter(nil, nil, nil)
	if !f.Matches("GET", "/users") {
		t.Fatalf("expected empty Include to match everything")
	}
}

func TestFilterIncludeWildcard(t *testing.T) {
	f := NewFilter([]string{"/users/*"}, nil, nil)
	if !f.Matches("GET", "/users/123") {
		t.Fatalf("expected single-segment wildcard to match")
	}
	if f.Matches("GET", "/users/123/posts") {
		t.Fatalf("expected single-segment wildcard to not cross a '/'")
	}
}

func TestFilterDoubleStarMatchesNested(t *testing.T) {
	f := NewFilter([]string{"/admin/**"}, nil, nil)
	if !f.Matches("GET", "/admin") {
		t.Fatalf("expected /** to match the prefix itself")
	}
	if !f.Matches("GET", "/admin/users/123") {
		t.Fatalf("expected /** to match arbitrarily nested paths")
	}
}

func TestFilterExcludeOverridesInclude(t *testing.T) {
	f := NewFilter([]string{"/**"}, []string{"/internal/**"}, nil)
	if !f.Matches("GET", "/users") {
		t.Fatalf("expected non-excluded route to match")
	}
	if f.Matches("GET", "/internal/debug") {
		t.Fatalf("expected excluded route to not match")
	}
}

func TestFilterBarePathMatchesAnyMethod(t *testing.T) {
	// The literal motivating case: a path-only pattern with no method
	// token at all must match that path under every method.
	f := NewFilter([]string{"/users/**"}, nil, nil)
	for _, m := range []string{"GET", "POST", "DELETE"} {
		if !f.Matches(m, "/users/123") {
			t.Fatalf("expected bare path pattern to match method %s", m)
		}
	}
}

func TestFilterMethodsIsIndependentOfPathGlobs(t *testing.T) {
	f := NewFilter([]string{"/users/**"}, nil, []string{"GET", "POST"})
	if !f.Matches("GET", "/users/123") {
		t.Fatalf("expected GET to be allowed")
	}
	if f.Matches("DELETE", "/users/123") {
		t.Fatalf("expected DELETE to be rejected by the method set")
	}
}

func TestFilterMethodMatchIsCaseInsensitive(t *testing.T) {
	f := NewFilter(nil, nil, []string{"get"})
	if !f.Matches("GET", "/users") {
		t.Fatalf("expected case-insensitive method match")
	}
}

func TestApplyReturnsErrorOnEmptySelection(t *testing.T) {
	f := NewFilter([]string{"/nope"}, nil, nil)
	_, err := Apply(f, []string{"GET"}, []string{"/users"}, []int{1})
	if err == nil {
		t.Fatalf("expected FilterAllEmptyError")
	}
	if _, ok := err.(*FilterAllEmptyError); !ok {
		t.Fatalf("expected *FilterAllEmptyError, got %T", err)
	}
}
