package routeprobe

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestStateMachineRunnerThreadsBundleValues(t *testing.T) {
	mux := chi.NewRouter()
	nextID := 0
	created := map[string]bool{}

	mux.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		nextID++
		id := "user-" + itoaForTest(nextID)
		created[id] = true
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
	mux.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !created[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	createRoute, err := NewRouteSpec("/users", []string{"POST"}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	getRoute, err := NewRouteSpec("/users/{id}", []string{"GET"}, map[string]TypeRef{"id": Str()}, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner := &StateMachineRunner{
		Registry:  NewTypeRegistry(),
		Transport: NewFixtureTransport(mux),
		Validator: NewFailOn5xxValidator(),
		Encoder:   NewPathEncoder(),
		BaseURL:   "http://fixture",
		Rules: []OperationRule{
			{Route: createRoute, Method: "POST", Produces: "user_ids", ExtractField: "id"},
			{Route: getRoute, Method: "GET", Consumes: []string{"user_ids"}},
		},
		Links: []ExplicitLink{
			{ProducerRoute: "POST /users", ConsumerRoute: "GET /users/{id}", Parameter: "id"},
		},
		MaxSequenceLength: 5,
	}

	results, err := runner.RunSequences(context.Background(), 3, NewSplitRNG(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 sequences, got %d", len(results))
	}
	for _, r := range results {
		if r.Failure != nil {
			t.Fatalf("expected no failures when bundle values are threaded correctly: %v", r.Failure)
		}
	}
}

func TestExtractFieldFlatName(t *testing.T) {
	body := []byte(`{"id": "user-1", "count": 3}`)
	v, ok := extractField(body, "id")
	if !ok || v != "user-1" {
		t.Fatalf("expected id=user-1, got %v ok=%v", v, ok)
	}
}

func TestExtractFieldJSONPointerNested(t *testing.T) {
	body := []byte(`{"user": {"id": "user-1", "roles": ["admin", "editor"]}}`)
	v, ok := extractField(body, "$.body#/user/id")
	if !ok || v != "user-1" {
		t.Fatalf("expected user/id=user-1, got %v ok=%v", v, ok)
	}

	v, ok = extractField(body, "$.body#/user/roles/1")
	if !ok || v != "editor" {
		t.Fatalf("expected user/roles/1=editor, got %v ok=%v", v, ok)
	}
}

func TestExtractFieldJSONPointerMissingPath(t *testing.T) {
	body := []byte(`{"user": {"id": "user-1"}}`)
	if _, ok := extractField(body, "$.body#/user/missing"); ok {
		t.Fatalf("expected missing nested field to report ok=false")
	}
}

func itoaForTest(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
