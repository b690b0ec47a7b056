package routeprobe

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestTrialRunnerRunRouteHappyPath(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q}`, chi.URLParam(r, "id"))
	})

	route, err := NewRouteSpec("/items/{id}", []string{"GET"}, map[string]TypeRef{"id": Str()}, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner := &TrialRunner{
		Registry:       NewTypeRegistry(),
		Transport:      NewFixtureTransport(mux),
		Validator:      NewFailOn5xxValidator(),
		Encoder:        NewPathEncoder(),
		TrialsPerRoute: 10,
		BaseURL:        "http://fixture",
	}

	failures, err := runner.RunRoute(context.Background(), route, "GET", 0, NewSplitRNG(123))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failures against an always-200 handler, got %d", len(failures))
	}
}

func TestTrialRunnerDetectsAndShrinksFailure(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if len(id) > 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	route, err := NewRouteSpec("/items/{id}", []string{"GET"}, map[string]TypeRef{"id": Str()}, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner := &TrialRunner{
		Registry:       NewTypeRegistry(),
		Transport:      NewFixtureTransport(mux),
		Validator:      NewFailOn5xxValidator(),
		Encoder:        NewPathEncoder(),
		TrialsPerRoute: 50,
		BaseURL:        "http://fixture",
	}

	failures, err := runner.RunRoute(context.Background(), route, "GET", 0, NewSplitRNG(123))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) == 0 {
		t.Skip("no failing draw found for this seed; str generator default range makes >3-char values likely but not guaranteed")
	}

	for _, f := range failures {
		inputs := f.Value.(routeInputs)
		idVal, ok := inputs.PathValues["id"].(string)
		if !ok {
			t.Fatalf("expected string id value")
		}
		if len(idVal) <= 3 {
			t.Fatalf("shrunk failing value %q should still be >3 chars to reproduce the failure", idVal)
		}
	}
}
