package routeprobe

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestEngineRunAggregatesAcrossRoutes(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/a", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Get("/b", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	routeA, _ := NewRouteSpec("/a", []string{"GET"}, nil, nil, nil, nil)
	routeB, _ := NewRouteSpec("/b", []string{"GET"}, nil, nil, nil, nil)

	settings := DefaultSettings("http://fixture")
	settings.TrialsPerRoute = 5
	settings.Concurrency = 2

	engine, err := NewEngine(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Transport = NewFixtureTransport(mux)

	result, err := engine.Run(context.Background(), []*RouteSpec{routeA, routeB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Counters.RoutesCovered != 2 {
		t.Fatalf("expected 2 routes covered, got %d", result.Counters.RoutesCovered)
	}
	if result.Counters.TrialsRun != 10 {
		t.Fatalf("expected 10 total trials, got %d", result.Counters.TrialsRun)
	}
	if result.Failed() {
		t.Fatalf("expected no failures against always-200 handlers: %v", result.Failures)
	}
}

func TestEngineRunRespectsFilter(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/a", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Get("/b", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	routeA, _ := NewRouteSpec("/a", []string{"GET"}, nil, nil, nil, nil)
	routeB, _ := NewRouteSpec("/b", []string{"GET"}, nil, nil, nil, nil)

	settings := DefaultSettings("http://fixture")
	settings.TrialsPerRoute = 3
	settings.Concurrency = 2
	settings.Include = []string{"/a"}

	engine, err := NewEngine(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Transport = NewFixtureTransport(mux)

	result, err := engine.Run(context.Background(), []*RouteSpec{routeA, routeB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Counters.RoutesCovered != 1 {
		t.Fatalf("expected filter to restrict to 1 route, got %d", result.Counters.RoutesCovered)
	}
}

func TestEngineRunRespectsMethodFilterIndependentlyOfPath(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/a", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Post("/a", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	routeA, _ := NewRouteSpec("/a", []string{"GET", "POST"}, nil, nil, nil, nil)

	settings := DefaultSettings("http://fixture")
	settings.TrialsPerRoute = 3
	settings.Concurrency = 2
	settings.Include = []string{"/a"}
	settings.Methods = []string{"GET"}

	engine, err := NewEngine(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Transport = NewFixtureTransport(mux)

	result, err := engine.Run(context.Background(), []*RouteSpec{routeA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Counters.RoutesCovered != 1 {
		t.Fatalf("expected method filter to restrict to 1 (route, method) pair, got %d", result.Counters.RoutesCovered)
	}
}

func TestNewEngineRejectsInvalidSettings(t *testing.T) {
	_, err := NewEngine(Settings{})
	if err == nil {
		t.Fatalf("expected validation error for empty Settings")
	}
}
