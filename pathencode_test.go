package routeprobe

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRenderScalarTypes(t *testing.T) {
	enc := NewPathEncoder()

	cases := []struct {
		in   any
		want string
	}{
		{"hello", "hello"},
		{true, "true"},
		{int64(42), "42"},
		{3.5, "3.5"},
	}
	for _, c := range cases {
		got, err := enc.RenderScalar(c.in)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("RenderScalar(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderScalarUUID(t *testing.T) {
	enc := NewPathEncoder()
	id := uuid.MustParse("00000000-0000-4000-8000-000000000000")
	got, err := enc.RenderScalar(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id.String() {
		t.Fatalf("got %q, want %q", got, id.String())
	}
}

func TestRenderScalarTime(t *testing.T) {
	enc := NewPathEncoder()
	tm := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := enc.RenderScalar(tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tm.Format(time.RFC3339)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderScalarRejectsComposite(t *testing.T) {
	enc := NewPathEncoder()
	_, err := enc.RenderScalar([]any{1, 2})
	if err == nil {
		t.Fatalf("expected error for composite value")
	}
}

func TestRenderPathSubstitutesAndEscapes(t *testing.T) {
	enc := NewPathEncoder()
	got := enc.RenderPath("/users/{id}/posts/{slug}", map[string]string{
		"id":   "abc 123",
		"slug": "hello/world",
	})
	want := "/users/abc%20123/posts/hello%2Fworld"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderQuerySortsKeys(t *testing.T) {
	enc := NewPathEncoder()
	got := enc.RenderQuery(map[string]string{"b": "2", "a": "1"})
	want := "a=1&b=2"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderHeadersStripsControlChars(t *testing.T) {
	enc := NewPathEncoder()
	got := enc.RenderHeaders(map[string]string{"X": "foo\x00bar"})
	if got["X"] != "foobar" {
		t.Fatalf("got %q, want %q", got["X"], "foobar")
	}
}
